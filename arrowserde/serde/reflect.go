// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package serde

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/internal/tags"
)

// Datetime layouts used for time.Time values. Naive values carry no zone;
// UTC values end in "Z".
const (
	NaiveLayout = "2006-01-02T15:04:05.999999999"
	UTCLayout   = NaiveLayout + "Z"
)

var (
	serializableType = reflect.TypeOf((*Serializable)(nil)).Elem()
	timeType         = reflect.TypeOf(time.Time{})
	durationType     = reflect.TypeOf(time.Duration(0))
)

// Reflect returns a Serializable that emits the Go value v.
//
// Nil pointers and interfaces emit None; non-nil pointers emit Some. Nil
// slices and maps are empty. Structs emit struct events named by their
// `arrow` tags, maps emit map events with keys in sorted order, []byte and
// [N]byte emit bytes, other slices and arrays emit sequences. time.Time is emitted as a UTC
// string (or a naive one with the `naive` tag option) and time.Duration as
// nanoseconds. Values implementing Serializable emit themselves.
func Reflect(v any) Serializable {
	return reflected{rv: reflect.ValueOf(v)}
}

// Sequence returns a Serializable emitting the elements of items as a
// sequence.
func Sequence[T any](items []T) Serializable {
	return SerializableFunc(reflected{rv: reflect.ValueOf(items)}.serializeSeq)
}

type reflected struct {
	rv  reflect.Value
	tag tags.Info
}

func (r reflected) Serialize(s Serializer) error {
	rv := r.rv
	if !rv.IsValid() {
		return s.None()
	}
	t := rv.Type()
	if t.Implements(serializableType) {
		if (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) && rv.IsNil() {
			return s.None()
		}
		return rv.Interface().(Serializable).Serialize(s)
	}
	if rv.CanAddr() && reflect.PointerTo(t).Implements(serializableType) {
		return rv.Addr().Interface().(Serializable).Serialize(s)
	}

	switch t {
	case timeType:
		ts := rv.Interface().(time.Time)
		if r.tag.Has("naive") {
			return s.Str(ts.Format(NaiveLayout))
		}
		return s.Str(ts.UTC().Format(UTCLayout))
	case durationType:
		return s.I64(rv.Int())
	}

	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return s.None()
		}
		return s.Some(reflected{rv: rv.Elem(), tag: r.tag})
	case reflect.Interface:
		if rv.IsNil() {
			return s.None()
		}
		return serializeDynamic(s, rv.Elem().Interface())
	case reflect.Bool:
		return s.Bool(rv.Bool())
	case reflect.Int8:
		return s.I8(int8(rv.Int()))
	case reflect.Int16:
		return s.I16(int16(rv.Int()))
	case reflect.Int32:
		return s.I32(int32(rv.Int()))
	case reflect.Int, reflect.Int64:
		return s.I64(rv.Int())
	case reflect.Uint8:
		return s.U8(uint8(rv.Uint()))
	case reflect.Uint16:
		return s.U16(uint16(rv.Uint()))
	case reflect.Uint32:
		return s.U32(uint32(rv.Uint()))
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return s.U64(rv.Uint())
	case reflect.Float32:
		return s.F32(float32(rv.Float()))
	case reflect.Float64:
		return s.F64(rv.Float())
	case reflect.String:
		return s.Str(rv.String())
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return s.Bytes(rv.Bytes())
		}
		return r.serializeSeq(s)
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return s.Bytes(b)
		}
		return r.serializeSeq(s)
	case reflect.Map:
		return r.serializeMap(s)
	case reflect.Struct:
		return r.serializeStruct(s)
	default:
		return errs.Protocolf("cannot serialize Go value of type %v", t)
	}
}

func (r reflected) serializeSeq(s Serializer) error {
	n := r.rv.Len()
	if err := s.SeqStart(n); err != nil {
		return err
	}
	for i := range n {
		if err := s.SeqElement(reflected{rv: r.rv.Index(i)}); err != nil {
			return err
		}
	}
	return s.SeqEnd()
}

func (r reflected) serializeMap(s Serializer) error {
	keys := r.rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprintf("%v", keys[i].Interface()) < fmt.Sprintf("%v", keys[j].Interface())
	})
	if err := s.MapStart(len(keys)); err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.MapKey(reflected{rv: k}); err != nil {
			return err
		}
		if err := s.MapValue(reflected{rv: r.rv.MapIndex(k)}); err != nil {
			return err
		}
	}
	return s.MapEnd()
}

func (r reflected) serializeStruct(s Serializer) error {
	t := r.rv.Type()
	fields := tags.Fields(t)
	if err := s.StructStart(t.Name(), len(fields)); err != nil {
		return err
	}
	for _, f := range fields {
		if err := s.StructField(f.Tag.Name, reflected{rv: r.rv.FieldByIndex(f.Index), tag: f.Tag}); err != nil {
			return err
		}
	}
	return s.StructEnd()
}
