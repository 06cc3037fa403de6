// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package schema describes the columns the codec reads and writes.
//
// A Field is a tree: list-like kinds have one child (the element), maps one
// "entries" struct child holding key and value, structs and unions one
// child per member, and dictionaries one child describing the values.
package schema

import (
	"strings"

	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
)

// RootPath is the path of the record that top-level fields belong to.
const RootPath = "$"

// ChildPath joins a parent path and a child name.
func ChildPath(parent, name string) string {
	return parent + "." + name
}

// Field describes one column.
type Field struct {
	Name     string            `json:"name" yaml:"name"`
	DataType DataType          `json:"data_type" yaml:"data_type"`
	Nullable bool              `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Strategy Strategy          `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Children []Field           `json:"children,omitempty" yaml:"children,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// New returns a non-nullable field without children.
func New(name string, dt DataType) Field {
	return Field{Name: name, DataType: dt}
}

// Scalar returns a field of a parameterless kind.
func Scalar(name string, k Kind, nullable bool) Field {
	return Field{Name: name, DataType: Of(k), Nullable: nullable}
}

// ListOf returns a List field with the given element.
func ListOf(name string, elem Field, nullable bool) Field {
	return Field{Name: name, DataType: Of(List), Nullable: nullable, Children: []Field{elem}}
}

// LargeListOf returns a LargeList field with the given element.
func LargeListOf(name string, elem Field, nullable bool) Field {
	return Field{Name: name, DataType: Of(LargeList), Nullable: nullable, Children: []Field{elem}}
}

// FixedSizeListOf returns a FixedSizeList field of n elements.
func FixedSizeListOf(name string, n int32, elem Field, nullable bool) Field {
	return Field{Name: name, DataType: DataType{Kind: FixedSizeList, Size: n}, Nullable: nullable, Children: []Field{elem}}
}

// StructOf returns a Struct field.
func StructOf(name string, nullable bool, children ...Field) Field {
	return Field{Name: name, DataType: Of(Struct), Nullable: nullable, Children: children}
}

// MapOf returns a Map field. The key is forced to be non-nullable.
func MapOf(name string, key, value Field, nullable bool) Field {
	key.Nullable = false
	entries := Field{Name: "entries", DataType: Of(Struct), Children: []Field{key, value}}
	return Field{Name: name, DataType: Of(Map), Nullable: nullable, Children: []Field{entries}}
}

// UnionOf returns a dense Union field; variant i has type id i.
func UnionOf(name string, variants ...Field) Field {
	return Field{Name: name, DataType: Of(Union), Children: variants}
}

// DictionaryStringOf returns a string Dictionary field.
func DictionaryStringOf(name string, index Kind, nullable bool) Field {
	return Field{
		Name:     name,
		DataType: DictionaryOf(index),
		Nullable: nullable,
		Children: []Field{{Name: "value", DataType: Of(Utf8)}},
	}
}

// Child returns the child with the given name.
func (f Field) Child(name string) (Field, bool) {
	for _, c := range f.Children {
		if c.Name == name {
			return c, true
		}
	}
	return Field{}, false
}

// Validate checks the child arity and parameters of f and its descendants.
func (f Field) Validate() error {
	return f.validate(ChildPath(RootPath, f.Name))
}

func (f Field) validate(path string) error {
	fail := func(format string, args ...any) error {
		return errs.Annotate(errs.Schemaf(format, args...), "field", path, "data_type", f.DataType.String())
	}
	if !f.Strategy.valid() {
		return fail("unknown strategy %q", f.Strategy)
	}
	dt := f.DataType
	wantChildren := -1
	switch dt.Kind {
	case List, LargeList, Map:
		wantChildren = 1
	case FixedSizeList:
		wantChildren = 1
		if dt.Size < 0 {
			return fail("fixed-size list length must not be negative, got %d", dt.Size)
		}
	case Dictionary:
		wantChildren = 1
		if !dt.Index.IsInteger() {
			return fail("dictionary keys must be an integer kind, got %s", dt.Index)
		}
		if v := f.Children; len(v) == 1 {
			if v[0].DataType.Kind != Utf8 && v[0].DataType.Kind != LargeUtf8 {
				return fail("dictionary values must be Utf8 or LargeUtf8, got %s", v[0].DataType)
			}
			if v[0].Nullable {
				return fail("dictionary values must not be nullable")
			}
		}
	case Struct:
	case Union:
		if len(f.Children) == 0 {
			return fail("union needs at least one variant")
		}
		if len(f.Children) > 127 {
			return fail("union supports at most 127 variants, got %d", len(f.Children))
		}
		if f.Nullable {
			return fail("union fields cannot be nullable")
		}
	case FixedSizeBinary:
		wantChildren = 0
		if dt.Size < 0 {
			return fail("fixed-size binary width must not be negative, got %d", dt.Size)
		}
	case Decimal128:
		wantChildren = 0
		if dt.Precision < 1 || dt.Precision > 38 {
			return fail("decimal precision must be in [1, 38], got %d", dt.Precision)
		}
	default:
		wantChildren = 0
	}
	if wantChildren >= 0 && len(f.Children) != wantChildren {
		return fail("%s expects %d children, got %d", dt.Kind, wantChildren, len(f.Children))
	}
	if dt.Kind == Map {
		entries := f.Children[0]
		if entries.DataType.Kind != Struct || len(entries.Children) != 2 {
			return fail("map entries must be a struct with key and value children")
		}
		if entries.Children[0].Nullable {
			return fail("map keys must not be nullable")
		}
		if entries.Children[0].Name != "key" || entries.Children[1].Name != "value" {
			return fail("map entries must be named key and value, got %q and %q", entries.Children[0].Name, entries.Children[1].Name)
		}
	}
	if dt.Kind == Struct {
		seen := make(map[string]struct{}, len(f.Children))
		for _, c := range f.Children {
			if _, dup := seen[c.Name]; dup {
				return fail("duplicate child %q", c.Name)
			}
			seen[c.Name] = struct{}{}
		}
	}
	switch f.Strategy {
	case MapAsStruct, TupleAsStruct:
		if dt.Kind != Struct {
			return fail("strategy %s requires a Struct field", f.Strategy)
		}
	case UnknownVariant:
		if dt.Kind != Null {
			return fail("strategy %s requires a Null field", f.Strategy)
		}
	case NaiveStrAsDate64, UtcStrAsDate64:
		if dt.Kind != Date64 && dt.Kind != Timestamp {
			return fail("strategy %s requires a Date64 or Timestamp field", f.Strategy)
		}
		if f.Strategy == UtcStrAsDate64 && dt.Kind == Timestamp && !isUTC(dt.Timezone) {
			return fail("strategy %s requires a UTC timestamp, got timezone %q", f.Strategy, dt.Timezone)
		}
		if f.Strategy == NaiveStrAsDate64 && dt.Kind == Timestamp && dt.Timezone != "" {
			return fail("strategy %s requires a timestamp without timezone", f.Strategy)
		}
	}
	for _, c := range f.Children {
		if err := c.validate(ChildPath(path, c.Name)); err != nil {
			return err
		}
	}
	return nil
}

func isUTC(tz string) bool {
	switch strings.ToUpper(tz) {
	case "UTC", "Z", "+00:00", "ETC/UTC":
		return true
	}
	return false
}

// Validate checks every field of a field list.
func Validate(fields []Field) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			return errs.Annotate(errs.Schemaf("duplicate field %q", f.Name), "field", ChildPath(RootPath, f.Name))
		}
		seen[f.Name] = struct{}{}
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}
