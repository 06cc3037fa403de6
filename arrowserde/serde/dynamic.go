// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package serde

import (
	"sort"

	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
)

// Dynamic values. nil is None (and unit), Go scalars, string and []byte
// map onto the matching events, []any is a sequence, and the types below
// cover tuples, maps, records and enum variants.

// Tuple is a fixed-length heterogeneous sequence.
type Tuple []any

// Entry is one key/value pair of a Map.
type Entry struct {
	Key   any
	Value any
}

// Map is an ordered list of entries.
type Map []Entry

// Field is one named member of a Record.
type Field struct {
	Name  string
	Value any
}

// Record is an ordered list of named fields.
type Record []Field

// Get returns the value of the first field with the given name.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Variant is one case of an enum. A nil Value is a unit variant, a Record a
// struct variant, a Tuple a tuple variant and anything else a newtype
// variant.
type Variant struct {
	Name  string
	Index uint32
	Value any
}

// Dynamic wraps a dynamic value as a Serializable. Values that are not
// dynamic are emitted through Reflect.
func Dynamic(v any) Serializable { return dynamic{v} }

type dynamic struct{ v any }

func (d dynamic) Serialize(s Serializer) error { return serializeDynamic(s, d.v) }

func serializeDynamic(s Serializer, v any) error {
	switch x := v.(type) {
	case nil:
		return s.None()
	case Serializable:
		return x.Serialize(s)
	case bool:
		return s.Bool(x)
	case int:
		return s.I64(int64(x))
	case int8:
		return s.I8(x)
	case int16:
		return s.I16(x)
	case int32:
		return s.I32(x)
	case int64:
		return s.I64(x)
	case uint:
		return s.U64(uint64(x))
	case uint8:
		return s.U8(x)
	case uint16:
		return s.U16(x)
	case uint32:
		return s.U32(x)
	case uint64:
		return s.U64(x)
	case float32:
		return s.F32(x)
	case float64:
		return s.F64(x)
	case string:
		return s.Str(x)
	case []byte:
		return s.Bytes(x)
	case []any:
		if err := s.SeqStart(len(x)); err != nil {
			return err
		}
		for _, e := range x {
			if err := s.SeqElement(Dynamic(e)); err != nil {
				return err
			}
		}
		return s.SeqEnd()
	case Tuple:
		if err := s.TupleStart(len(x)); err != nil {
			return err
		}
		for _, e := range x {
			if err := s.TupleElement(Dynamic(e)); err != nil {
				return err
			}
		}
		return s.TupleEnd()
	case Map:
		if err := s.MapStart(len(x)); err != nil {
			return err
		}
		for _, e := range x {
			if err := s.MapKey(Dynamic(e.Key)); err != nil {
				return err
			}
			if err := s.MapValue(Dynamic(e.Value)); err != nil {
				return err
			}
		}
		return s.MapEnd()
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if err := s.MapStart(len(x)); err != nil {
			return err
		}
		for _, k := range keys {
			if err := s.MapKey(Dynamic(k)); err != nil {
				return err
			}
			if err := s.MapValue(Dynamic(x[k])); err != nil {
				return err
			}
		}
		return s.MapEnd()
	case Record:
		if err := s.StructStart("", len(x)); err != nil {
			return err
		}
		for _, f := range x {
			if err := s.StructField(f.Name, Dynamic(f.Value)); err != nil {
				return err
			}
		}
		return s.StructEnd()
	case Variant:
		return serializeVariant(s, x)
	default:
		return Reflect(v).Serialize(s)
	}
}

func serializeVariant(s Serializer, x Variant) error {
	switch p := x.Value.(type) {
	case nil:
		return s.UnitVariant("", x.Index, x.Name)
	case Record:
		inner, err := s.StructVariantStart("", x.Index, x.Name, len(p))
		if err != nil {
			return err
		}
		for _, f := range p {
			if err := inner.StructField(f.Name, Dynamic(f.Value)); err != nil {
				return err
			}
		}
		return inner.StructEnd()
	case Tuple:
		inner, err := s.TupleVariantStart("", x.Index, x.Name, len(p))
		if err != nil {
			return err
		}
		for _, e := range p {
			if err := inner.TupleElement(Dynamic(e)); err != nil {
				return err
			}
		}
		return inner.TupleEnd()
	default:
		return s.NewtypeVariant("", x.Index, x.Name, Dynamic(p))
	}
}

// Decode reads one value from d as a dynamic value. Structs decode to
// Record, maps to Map, sequences to []any, enums to Variant and null
// values to nil.
func Decode(d Deserializer) (any, error) {
	var dv dynamicVisitor
	if err := d.Any(&dv); err != nil {
		return nil, err
	}
	return dv.value, nil
}

// DecodeSeed is a Seed storing a dynamic value in *dst.
func DecodeSeed(dst *any) Seed {
	return SeedFunc(func(d Deserializer) error {
		v, err := Decode(d)
		*dst = v
		return err
	})
}

type dynamicVisitor struct {
	value any
}

func (v *dynamicVisitor) VisitNone() error { v.value = nil; return nil }
func (v *dynamicVisitor) VisitUnit() error { v.value = nil; return nil }

func (v *dynamicVisitor) VisitSome(d Deserializer) error {
	val, err := Decode(d)
	v.value = val
	return err
}

func (v *dynamicVisitor) VisitBool(x bool) error { v.value = x; return nil }
func (v *dynamicVisitor) VisitI8(x int8) error { v.value = x; return nil }
func (v *dynamicVisitor) VisitI16(x int16) error { v.value = x; return nil }
func (v *dynamicVisitor) VisitI32(x int32) error { v.value = x; return nil }
func (v *dynamicVisitor) VisitI64(x int64) error { v.value = x; return nil }
func (v *dynamicVisitor) VisitU8(x uint8) error { v.value = x; return nil }
func (v *dynamicVisitor) VisitU16(x uint16) error { v.value = x; return nil }
func (v *dynamicVisitor) VisitU32(x uint32) error { v.value = x; return nil }
func (v *dynamicVisitor) VisitU64(x uint64) error { v.value = x; return nil }
func (v *dynamicVisitor) VisitF32(x float32) error { v.value = x; return nil }
func (v *dynamicVisitor) VisitF64(x float64) error { v.value = x; return nil }
func (v *dynamicVisitor) VisitString(x string) error { v.value = x; return nil }

func (v *dynamicVisitor) VisitBytes(x []byte) error {
	v.value = append([]byte{}, x...)
	return nil
}

func (v *dynamicVisitor) VisitSeq(a SeqAccess) error {
	n, _ := a.Remaining()
	out := make([]any, 0, n)
	for {
		var elem any
		ok, err := a.NextElement(DecodeSeed(&elem))
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		out = append(out, elem)
	}
	v.value = out
	return nil
}

func (v *dynamicVisitor) VisitMap(a MapAccess) error {
	out := Map{}
	for {
		var e Entry
		ok, err := a.NextKey(DecodeSeed(&e.Key))
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := a.NextValue(DecodeSeed(&e.Value)); err != nil {
			return err
		}
		out = append(out, e)
	}
	v.value = out
	return nil
}

func (v *dynamicVisitor) VisitStruct(a MapAccess) error {
	out := Record{}
	for {
		var key any
		ok, err := a.NextKey(DecodeSeed(&key))
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		name, isStr := key.(string)
		if !isStr {
			return errs.Protocolf("struct field name must be a string, got %T", key)
		}
		f := Field{Name: name}
		if err := a.NextValue(DecodeSeed(&f.Value)); err != nil {
			return err
		}
		out = append(out, f)
	}
	v.value = out
	return nil
}

func (v *dynamicVisitor) VisitEnum(a EnumAccess) error {
	name, index, va, err := a.Variant()
	if err != nil {
		return err
	}
	out := Variant{Name: name, Index: index}
	if err := va.Newtype(DecodeSeed(&out.Value)); err != nil {
		return err
	}
	v.value = out
	return nil
}
