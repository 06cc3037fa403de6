// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package tags parses the `arrow` struct tags shared by the type tracer and
// the reflection bridge.
package tags

import (
	"reflect"
	"strings"
)

// Info holds the parsed contents of an `arrow` struct tag such as
// `arrow:"name,int32,large"`.
type Info struct {
	Name    string
	Options []string
	Skip    bool
}

// Has reports whether opt was given.
func (i Info) Has(opt string) bool {
	for _, o := range i.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// Value returns the value of a key=value option.
func (i Info) Value(key string) (string, bool) {
	for _, o := range i.Options {
		if v, ok := strings.CutPrefix(o, key+"="); ok {
			return v, true
		}
	}
	return "", false
}

// Parse parses the tag of a struct field. Fields without a name in the tag
// use the Go field name.
func Parse(f reflect.StructField) Info {
	tag, ok := f.Tag.Lookup("arrow")
	if ok && tag == "-" {
		return Info{Skip: true}
	}
	parts := strings.Split(tag, ",")
	info := Info{Name: parts[0]}
	if len(parts) > 1 {
		info.Options = parts[1:]
	}
	if info.Name == "" {
		info.Name = f.Name
	}
	return info
}

// Field is an exported struct field together with its tag.
type Field struct {
	Index []int
	Type  reflect.Type
	Tag   Info
}

// Fields lists the exported, non-skipped fields of struct type t in
// declaration order.
func Fields(t reflect.Type) []Field {
	var out []Field
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		info := Parse(f)
		if info.Skip {
			continue
		}
		out = append(out, Field{Index: f.Index, Type: f.Type, Tag: info})
	}
	return out
}
