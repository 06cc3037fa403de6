// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/internal/tags"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// FieldsFor traces the fields of the Go struct type T.
func FieldsFor[T any](overwrites Overwrites) ([]Field, error) {
	return FromType(reflect.TypeOf((*T)(nil)).Elem(), overwrites)
}

// FromType traces the fields of a Go struct type. Each exported field
// becomes one column, named by its `arrow` tag or its Go name. Overwrites
// are applied to the result.
//
// Tag options override the traced type: int8 ... uint64, float16, float32,
// float64, large (LargeUtf8, LargeBinary, LargeList), enum (dictionary
// encoded string), date32, decimal=P:S (decimal string), naive (time.Time
// as a naive Date64), map_as_struct.
func FromType(t reflect.Type, overwrites Overwrites) ([]Field, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t == timeType {
		return nil, errs.Schemaf("expected struct type, got %v", t)
	}
	tr := tracer{seen: map[reflect.Type]bool{}}
	children, err := tr.structFields(t, RootPath)
	if err != nil {
		return nil, err
	}
	fields, err := ApplyOverwrites(children, overwrites)
	if err != nil {
		return nil, err
	}
	if err := Validate(fields); err != nil {
		return nil, err
	}
	return fields, nil
}

type tracer struct {
	seen map[reflect.Type]bool
}

func (tr tracer) structFields(t reflect.Type, path string) ([]Field, error) {
	if tr.seen[t] {
		return nil, errs.Annotate(errs.Schemaf("recursive type %v", t), "field", path)
	}
	tr.seen[t] = true
	defer delete(tr.seen, t)

	var out []Field
	for _, sf := range tags.Fields(t) {
		f, err := tr.field(sf.Tag.Name, sf.Type, sf.Tag, ChildPath(path, sf.Tag.Name))
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

var overrideKinds = map[string]Kind{
	"int8": Int8, "int16": Int16, "int32": Int32, "int64": Int64,
	"uint8": UInt8, "uint16": UInt16, "uint32": UInt32, "uint64": UInt64,
	"float16": Float16, "float32": Float32, "float64": Float64,
	"binary": Binary, "utf8": Utf8,
}

// field maps a Go type to a Field. Pointers become nullable.
func (tr tracer) field(name string, t reflect.Type, tag tags.Info, path string) (Field, error) {
	f := Field{Name: name}
	if t.Kind() == reflect.Ptr {
		f.Nullable = true
		t = t.Elem()
	}
	large := tag.Has("large")

	for _, opt := range tag.Options {
		if k, ok := overrideKinds[opt]; ok {
			f.DataType = Of(k)
			if large && k == Binary {
				f.DataType = Of(LargeBinary)
			}
			if large && k == Utf8 {
				f.DataType = Of(LargeUtf8)
			}
			return f, nil
		}
	}
	if tag.Has("enum") {
		d := DictionaryStringOf(name, Int16, f.Nullable)
		return d, nil
	}
	if tag.Has("date32") {
		f.DataType = Of(Date32)
		return f, nil
	}
	if spec, ok := tag.Value("decimal"); ok {
		p, s, found := strings.Cut(spec, ":")
		precision, err1 := strconv.ParseInt(p, 10, 32)
		scale, err2 := strconv.ParseInt(s, 10, 32)
		if !found || err1 != nil || err2 != nil {
			return Field{}, errs.Annotate(errs.Schemaf("invalid decimal option %q", spec), "field", path)
		}
		f.DataType = DecimalOf(int32(precision), int32(scale))
		return f, nil
	}

	switch t {
	case timeType:
		if tag.Has("naive") {
			f.DataType = Of(Date64)
			f.Strategy = NaiveStrAsDate64
			return f, nil
		}
		f.DataType = TimestampOf(arrow.Millisecond, "UTC")
		f.Strategy = UtcStrAsDate64
		return f, nil
	case durationType:
		f.DataType = DataType{Kind: Duration, Unit: arrow.Nanosecond}
		return f, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		f.DataType = Of(Bool)
	case reflect.Int8:
		f.DataType = Of(Int8)
	case reflect.Int16:
		f.DataType = Of(Int16)
	case reflect.Int32:
		f.DataType = Of(Int32)
	case reflect.Int64, reflect.Int:
		f.DataType = Of(Int64)
	case reflect.Uint8:
		f.DataType = Of(UInt8)
	case reflect.Uint16:
		f.DataType = Of(UInt16)
	case reflect.Uint32:
		f.DataType = Of(UInt32)
	case reflect.Uint64, reflect.Uint, reflect.Uintptr:
		f.DataType = Of(UInt64)
	case reflect.Float32:
		f.DataType = Of(Float32)
	case reflect.Float64:
		f.DataType = Of(Float64)
	case reflect.String:
		f.DataType = Of(Utf8)
		if large {
			f.DataType = Of(LargeUtf8)
		}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			f.DataType = Of(Binary)
			if large {
				f.DataType = Of(LargeBinary)
			}
			return f, nil
		}
		elem, err := tr.field("element", t.Elem(), tags.Info{}, ChildPath(path, "element"))
		if err != nil {
			return Field{}, err
		}
		f.DataType = Of(List)
		if large {
			f.DataType = Of(LargeList)
		}
		f.Children = []Field{elem}
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			f.DataType = DataType{Kind: FixedSizeBinary, Size: int32(t.Len())}
			return f, nil
		}
		elem, err := tr.field("element", t.Elem(), tags.Info{}, ChildPath(path, "element"))
		if err != nil {
			return Field{}, err
		}
		f.DataType = DataType{Kind: FixedSizeList, Size: int32(t.Len())}
		f.Children = []Field{elem}
	case reflect.Map:
		key, err := tr.field("key", t.Key(), tags.Info{}, ChildPath(path, "key"))
		if err != nil {
			return Field{}, err
		}
		value, err := tr.field("value", t.Elem(), tags.Info{}, ChildPath(path, "value"))
		if err != nil {
			return Field{}, err
		}
		m := MapOf(name, key, value, f.Nullable)
		return m, nil
	case reflect.Struct:
		children, err := tr.structFields(t, path)
		if err != nil {
			return Field{}, err
		}
		f.DataType = Of(Struct)
		f.Children = children
		if tag.Has("map_as_struct") {
			f.Strategy = MapAsStruct
		}
	default:
		return Field{}, errs.Annotate(
			errs.Schemaf("unsupported Go type: %v (kind: %v)", t, t.Kind()),
			"field", path,
		)
	}
	return f, nil
}

// MustFieldsFor is FieldsFor that panics on error. Intended for package
// level variables.
func MustFieldsFor[T any]() []Field {
	fields, err := FieldsFor[T](nil)
	if err != nil {
		panic(fmt.Sprintf("arrowserde: tracing %T: %v", *new(T), err))
	}
	return fields
}
