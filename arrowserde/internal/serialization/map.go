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
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// mapBuilder stores Map columns. Map events must alternate strictly
// between keys and values. Struct events are accepted as maps with string
// keys.
type mapBuilder struct {
	unsupported
	dt         *arrow.MapType
	validity   *buffers.Bitmap
	offsets    buffers.Offsets[int32]
	keys       *ArrayBuilder
	values     *ArrayBuilder
	expectKey  bool
	inProgress bool
}

func newMapBuilder(field schema.Field, dt arrow.DataType, path string) (*mapBuilder, error) {
	mt, ok := dt.(*arrow.MapType)
	if !ok {
		return nil, errs.Schemaf("map field has arrow type %s", dt)
	}
	if len(field.Children) != 1 || len(field.Children[0].Children) != 2 {
		return nil, errs.Schemaf("map field must have one entries child with key and value")
	}
	entries := field.Children[0]
	entriesPath := schema.ChildPath(path, entries.Name)
	key, val := entries.Children[0], entries.Children[1]
	keys, err := New(key, schema.ChildPath(entriesPath, key.Name))
	if err != nil {
		return nil, err
	}
	values, err := New(val, schema.ChildPath(entriesPath, val.Name))
	if err != nil {
		return nil, err
	}
	return &mapBuilder{
		unsupported: unsupported{name: dt.String()},
		dt:          mt,
		validity:    newValidity(field.Nullable),
		offsets:     buffers.NewOffsets[int32](),
		keys:        keys,
		values:      values,
		expectKey:   true,
	}, nil
}

func (b *mapBuilder) empty(valid bool) error {
	if err := pushValidity(b.validity, valid); err != nil {
		return err
	}
	b.offsets.PushEmpty()
	return nil
}

func (b *mapBuilder) Default() error { return b.empty(true) }
func (b *mapBuilder) None() error { return b.empty(false) }

func (b *mapBuilder) MapStart(int) error {
	b.offsets.StartSeq()
	b.expectKey = true
	b.inProgress = true
	return nil
}

func (b *mapBuilder) MapKey(v serde.Serializable) error {
	if !b.inProgress {
		return errs.Protocolf("map key outside of a map")
	}
	if !b.expectKey {
		return errs.Protocolf("map key without value")
	}
	b.expectKey = false
	b.offsets.PushElements(1)
	return v.Serialize(b.keys)
}

func (b *mapBuilder) MapValue(v serde.Serializable) error {
	if !b.inProgress {
		return errs.Protocolf("map value outside of a map")
	}
	if b.expectKey {
		return errs.Protocolf("map value without key")
	}
	b.expectKey = true
	return v.Serialize(b.values)
}

func (b *mapBuilder) MapEnd() error {
	if !b.expectKey {
		return errs.Protocolf("map key without value")
	}
	b.inProgress = false
	if err := b.offsets.EndSeq(); err != nil {
		return err
	}
	return pushValidity(b.validity, true)
}

func (b *mapBuilder) StructStart(_ string, n int) error { return b.MapStart(n) }

func (b *mapBuilder) StructField(key string, v serde.Serializable) error {
	if err := b.MapKey(serde.SerializableFunc(func(s serde.Serializer) error { return s.Str(key) })); err != nil {
		return err
	}
	return b.MapValue(v)
}

func (b *mapBuilder) StructEnd() error { return b.MapEnd() }

func (b *mapBuilder) take() arrayBuilder {
	t := *b
	t.validity = takeValidity(b.validity)
	t.offsets = b.offsets.Take()
	t.keys = b.keys.Take()
	t.values = b.values.Take()
	return &t
}

func (b *mapBuilder) intoData() (*array.Data, error) {
	keys, err := b.keys.IntoData()
	if err != nil {
		return nil, err
	}
	defer keys.Release()
	values, err := b.values.IntoData()
	if err != nil {
		return nil, err
	}
	defer values.Release()
	n := int(b.offsets.Last())
	if keys.Len() != n || values.Len() != n {
		return nil, errs.Protocolf("map holds %d entries but %d keys and %d values", n, keys.Len(), values.Len())
	}
	entries := array.NewData(b.dt.Elem(), n, []*memory.Buffer{nil}, []arrow.ArrayData{keys, values}, 0, 0)
	defer entries.Release()
	bufs := []*memory.Buffer{b.validity.ValidityBuffer(), b.offsets.Buffer()}
	return array.NewData(b.dt, b.offsets.Len(), bufs, []arrow.ArrayData{entries}, b.validity.NullCount(), 0), nil
}

func (b *mapBuilder) isNullable() bool { return b.validity != nil }
func (b *mapBuilder) length() int { return b.offsets.Len() }
