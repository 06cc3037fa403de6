// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package serde

import (
	"reflect"
	"strings"
	"time"

	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/internal/tags"
)

var deserializableType = reflect.TypeOf((*Deserializable)(nil)).Elem()

// Into reads one value from d into the Go value ptr points to. It is the
// inverse of Reflect: struct fields are matched by their `arrow` tag names
// (unknown names are skipped), pointers are allocated for present values
// and set to nil for missing ones, and empty interfaces receive the result
// of Decode.
func Into(d Deserializer, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errs.Protocolf("Into requires a non-nil pointer, got %T", ptr)
	}
	return intoValue(d, rv.Elem())
}

// IntoSeed is a Seed filling the Go value ptr points to.
func IntoSeed(ptr any) Seed {
	return SeedFunc(func(d Deserializer) error { return Into(d, ptr) })
}

func intoValue(d Deserializer, v reflect.Value) error {
	if v.CanAddr() && v.Addr().Type().Implements(deserializableType) {
		return v.Addr().Interface().(Deserializable).Deserialize(d)
	}
	switch {
	case v.Kind() == reflect.Interface && v.NumMethod() == 0:
		val, err := Decode(d)
		if err != nil {
			return err
		}
		if val == nil {
			v.Set(reflect.Zero(v.Type()))
		} else {
			v.Set(reflect.ValueOf(val))
		}
		return nil
	case v.Kind() == reflect.Ptr:
		return d.Option(&intoVisitor{v: v})
	case v.Type() == timeType:
		return d.String(&intoVisitor{v: v})
	default:
		return d.Any(&intoVisitor{v: v})
	}
}

type intoVisitor struct {
	v reflect.Value
}

func (iv *intoVisitor) mismatch(got string) error {
	return errs.Protocolf("cannot store %s in Go value of type %v", got, iv.v.Type())
}

func (iv *intoVisitor) VisitNone() error {
	iv.v.Set(reflect.Zero(iv.v.Type()))
	return nil
}

func (iv *intoVisitor) VisitUnit() error { return iv.VisitNone() }

func (iv *intoVisitor) VisitSome(d Deserializer) error {
	if iv.v.Kind() != reflect.Ptr {
		return intoValue(d, iv.v)
	}
	elem := reflect.New(iv.v.Type().Elem())
	if err := intoValue(d, elem.Elem()); err != nil {
		return err
	}
	iv.v.Set(elem)
	return nil
}

func (iv *intoVisitor) VisitBool(x bool) error {
	if iv.v.Kind() != reflect.Bool {
		return iv.mismatch("bool")
	}
	iv.v.SetBool(x)
	return nil
}

func (iv *intoVisitor) setInt(x int64, got string) error {
	switch iv.v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if iv.v.OverflowInt(x) {
			return errs.Conversionf("%s %d overflows Go type %v", got, x, iv.v.Type())
		}
		iv.v.SetInt(x)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if x < 0 || iv.v.OverflowUint(uint64(x)) {
			return errs.Conversionf("%s %d overflows Go type %v", got, x, iv.v.Type())
		}
		iv.v.SetUint(uint64(x))
	case reflect.Float32, reflect.Float64:
		iv.v.SetFloat(float64(x))
	default:
		return iv.mismatch(got)
	}
	return nil
}

func (iv *intoVisitor) setUint(x uint64, got string) error {
	switch iv.v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if iv.v.OverflowUint(x) {
			return errs.Conversionf("%s %d overflows Go type %v", got, x, iv.v.Type())
		}
		iv.v.SetUint(x)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if x > 1<<63-1 || iv.v.OverflowInt(int64(x)) {
			return errs.Conversionf("%s %d overflows Go type %v", got, x, iv.v.Type())
		}
		iv.v.SetInt(int64(x))
	case reflect.Float32, reflect.Float64:
		iv.v.SetFloat(float64(x))
	default:
		return iv.mismatch(got)
	}
	return nil
}

func (iv *intoVisitor) setFloat(x float64, got string) error {
	switch iv.v.Kind() {
	case reflect.Float32, reflect.Float64:
		iv.v.SetFloat(x)
		return nil
	default:
		return iv.mismatch(got)
	}
}

func (iv *intoVisitor) VisitI8(x int8) error { return iv.setInt(int64(x), "i8") }
func (iv *intoVisitor) VisitI16(x int16) error { return iv.setInt(int64(x), "i16") }
func (iv *intoVisitor) VisitI32(x int32) error { return iv.setInt(int64(x), "i32") }
func (iv *intoVisitor) VisitI64(x int64) error { return iv.setInt(x, "i64") }
func (iv *intoVisitor) VisitU8(x uint8) error { return iv.setUint(uint64(x), "u8") }
func (iv *intoVisitor) VisitU16(x uint16) error { return iv.setUint(uint64(x), "u16") }
func (iv *intoVisitor) VisitU32(x uint32) error { return iv.setUint(uint64(x), "u32") }
func (iv *intoVisitor) VisitU64(x uint64) error { return iv.setUint(x, "u64") }
func (iv *intoVisitor) VisitF32(x float32) error { return iv.setFloat(float64(x), "f32") }
func (iv *intoVisitor) VisitF64(x float64) error { return iv.setFloat(x, "f64") }

func (iv *intoVisitor) VisitString(x string) error {
	if iv.v.Type() == timeType {
		ts, err := parseTime(x)
		if err != nil {
			return err
		}
		iv.v.Set(reflect.ValueOf(ts))
		return nil
	}
	switch {
	case iv.v.Kind() == reflect.String:
		iv.v.SetString(x)
	case iv.v.Kind() == reflect.Slice && iv.v.Type().Elem().Kind() == reflect.Uint8:
		iv.v.SetBytes([]byte(x))
	default:
		return iv.mismatch("string")
	}
	return nil
}

// parseTime accepts the UTC and naive datetime layouts and plain dates.
// Naive values are interpreted as UTC.
func parseTime(s string) (time.Time, error) {
	layout := NaiveLayout
	switch {
	case strings.HasSuffix(s, "Z"):
		layout = UTCLayout
	case len(s) == len("2006-01-02"):
		layout = "2006-01-02"
	}
	ts, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, errs.Wrap(errs.KindConversion, err, "cannot parse %q as a datetime", s)
	}
	return ts, nil
}

func (iv *intoVisitor) VisitBytes(x []byte) error {
	t := iv.v.Type()
	switch {
	case iv.v.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		iv.v.SetBytes(append([]byte{}, x...))
	case iv.v.Kind() == reflect.Array && t.Elem().Kind() == reflect.Uint8:
		if len(x) != iv.v.Len() {
			return errs.Conversionf("cannot store %d bytes in Go value of type %v", len(x), t)
		}
		reflect.Copy(iv.v, reflect.ValueOf(x))
	case iv.v.Kind() == reflect.String:
		iv.v.SetString(string(x))
	default:
		return iv.mismatch("bytes")
	}
	return nil
}

func (iv *intoVisitor) VisitSeq(a SeqAccess) error {
	t := iv.v.Type()
	switch iv.v.Kind() {
	case reflect.Slice:
		n, _ := a.Remaining()
		out := reflect.MakeSlice(t, 0, n)
		for {
			elem := reflect.New(t.Elem()).Elem()
			ok, err := a.NextElement(SeedFunc(func(d Deserializer) error { return intoValue(d, elem) }))
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			out = reflect.Append(out, elem)
		}
		iv.v.Set(out)
		return nil
	case reflect.Array:
		for i := 0; ; i++ {
			var elem reflect.Value
			if i < iv.v.Len() {
				elem = iv.v.Index(i)
			} else {
				elem = reflect.New(t.Elem()).Elem()
			}
			ok, err := a.NextElement(SeedFunc(func(d Deserializer) error { return intoValue(d, elem) }))
			if err != nil {
				return err
			}
			if !ok {
				if i != iv.v.Len() {
					return errs.Conversionf("expected %d elements for Go value of type %v, got %d", iv.v.Len(), t, i)
				}
				return nil
			}
			if i >= iv.v.Len() {
				return errs.Conversionf("too many elements for Go value of type %v", t)
			}
		}
	default:
		return iv.mismatch("sequence")
	}
}

func (iv *intoVisitor) VisitMap(a MapAccess) error {
	switch iv.v.Kind() {
	case reflect.Map:
		t := iv.v.Type()
		out := reflect.MakeMap(t)
		for {
			key := reflect.New(t.Key()).Elem()
			ok, err := a.NextKey(SeedFunc(func(d Deserializer) error { return intoValue(d, key) }))
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			val := reflect.New(t.Elem()).Elem()
			if err := a.NextValue(SeedFunc(func(d Deserializer) error { return intoValue(d, val) })); err != nil {
				return err
			}
			out.SetMapIndex(key, val)
		}
		iv.v.Set(out)
		return nil
	case reflect.Struct:
		return iv.fillStruct(a)
	default:
		return iv.mismatch("map")
	}
}

func (iv *intoVisitor) VisitStruct(a MapAccess) error {
	if iv.v.Kind() == reflect.Map {
		return iv.VisitMap(a)
	}
	if iv.v.Kind() != reflect.Struct {
		return iv.mismatch("struct")
	}
	return iv.fillStruct(a)
}

func (iv *intoVisitor) fillStruct(a MapAccess) error {
	byName := map[string][]int{}
	for _, f := range tags.Fields(iv.v.Type()) {
		byName[f.Tag.Name] = f.Index
	}
	out := reflect.New(iv.v.Type()).Elem()
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
		index, known := byName[name]
		if !known {
			if err := a.NextValue(ignoredSeed); err != nil {
				return err
			}
			continue
		}
		field := out.FieldByIndex(index)
		if err := a.NextValue(SeedFunc(func(d Deserializer) error { return intoValue(d, field) })); err != nil {
			return err
		}
	}
	iv.v.Set(out)
	return nil
}

func (iv *intoVisitor) VisitEnum(a EnumAccess) error {
	name, _, va, err := a.Variant()
	if err != nil {
		return err
	}
	if iv.v.Kind() != reflect.String {
		return iv.mismatch("enum")
	}
	if err := va.Unit(); err != nil {
		return err
	}
	iv.v.SetString(name)
	return nil
}
