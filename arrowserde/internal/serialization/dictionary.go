// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/Query-farm/arrowserde/arrowserde/internal/buffers"
	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/schema"
)

// dictionaryBuilder stores string Dictionary columns. Each distinct string
// is stored once, in order of first appearance; the index column refers
// to it by position.
type dictionaryBuilder struct {
	unsupported
	dt      *arrow.DictionaryType
	indices *ArrayBuilder
	large   bool
	small   buffers.Bytes[int32]
	big     buffers.Bytes[int64]
	lookup  map[string]uint64
}

func newDictionaryBuilder(field schema.Field, dt arrow.DataType, path string) (*dictionaryBuilder, error) {
	dict, ok := dt.(*arrow.DictionaryType)
	if !ok {
		return nil, errs.Schemaf("dictionary field has arrow type %s", dt)
	}
	if len(field.Children) != 1 {
		return nil, errs.Schemaf("dictionary field must have exactly one child, got %d", len(field.Children))
	}
	var large bool
	switch field.Children[0].DataType.Kind {
	case schema.Utf8:
	case schema.LargeUtf8:
		large = true
	default:
		return nil, errs.Schemaf("dictionary values must be Utf8 or LargeUtf8, got %s", field.Children[0].DataType)
	}
	if !field.DataType.Index.IsInteger() {
		return nil, errs.Schemaf("dictionary index must be an integer type, got %s", field.DataType.Index)
	}
	indexField := schema.Scalar("index", field.DataType.Index, field.Nullable)
	indices, err := New(indexField, schema.ChildPath(path, "index"))
	if err != nil {
		return nil, err
	}
	return &dictionaryBuilder{
		unsupported: unsupported{name: dt.String()},
		dt:          dict,
		indices:     indices,
		large:       large,
		small:       buffers.NewBytes[int32](),
		big:         buffers.NewBytes[int64](),
		lookup:      map[string]uint64{},
	}, nil
}

func (b *dictionaryBuilder) Str(v string) error {
	idx, ok := b.lookup[v]
	if !ok {
		idx = uint64(len(b.lookup))
		var err error
		if b.large {
			err = b.big.PushString(v)
		} else {
			err = b.small.PushString(v)
		}
		if err != nil {
			return err
		}
		b.lookup[v] = idx
	}
	return b.indices.U64(idx)
}

func (b *dictionaryBuilder) UnitVariant(_ string, _ uint32, variant string) error {
	return b.Str(variant)
}

func (b *dictionaryBuilder) Default() error { return b.Str("") }
func (b *dictionaryBuilder) None() error { return b.indices.None() }

func (b *dictionaryBuilder) take() arrayBuilder {
	t := *b
	t.indices = b.indices.Take()
	t.small = b.small.Take()
	t.big = b.big.Take()
	b.lookup = map[string]uint64{}
	return &t
}

func (b *dictionaryBuilder) intoData() (*array.Data, error) {
	idx, err := b.indices.IntoData()
	if err != nil {
		return nil, err
	}
	defer idx.Release()

	var offsets, data *memory.Buffer
	n := len(b.lookup)
	if b.large {
		offsets, data = b.big.Buffers()
	} else {
		offsets, data = b.small.Buffers()
	}
	values := array.NewData(b.dt.ValueType, n, []*memory.Buffer{nil, offsets, data}, nil, 0, 0)
	defer values.Release()
	return array.NewDataWithDictionary(b.dt, idx.Len(), idx.Buffers(), idx.NullN(), 0, values), nil
}

func (b *dictionaryBuilder) isNullable() bool { return b.indices.IsNullable() }
func (b *dictionaryBuilder) length() int { return b.indices.Len() }
