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

// structBuilder stores Struct columns. Struct events are matched to
// children by name. With MapAsStruct, map events with string keys are
// accepted too; with TupleAsStruct, tuple elements fill the children in
// order.
//
// Fields missing from a value are null when the child is nullable and an
// error otherwise. After every value all children have grown by exactly
// one slot.
type structBuilder struct {
	unsupported
	dt       arrow.DataType
	strategy schema.Strategy
	names    []string
	index    map[string]int
	fields   []*ArrayBuilder
	validity *buffers.Bitmap
	n        int

	seen    []bool
	pos     int
	key     string
	haveKey bool
}

func newStructBuilder(field schema.Field, dt arrow.DataType, path string) (*structBuilder, error) {
	b := &structBuilder{
		unsupported: unsupported{name: dt.String()},
		dt:          dt,
		strategy:    field.Strategy,
		index:       make(map[string]int, len(field.Children)),
		validity:    newValidity(field.Nullable),
		seen:        make([]bool, len(field.Children)),
	}
	for i, child := range field.Children {
		if _, dup := b.index[child.Name]; dup {
			return nil, errs.Schemaf("duplicate struct field %q", child.Name)
		}
		cb, err := New(child, schema.ChildPath(path, child.Name))
		if err != nil {
			return nil, err
		}
		b.names = append(b.names, child.Name)
		b.index[child.Name] = i
		b.fields = append(b.fields, cb)
	}
	return b, nil
}

func (b *structBuilder) fill(valid bool) error {
	for _, f := range b.fields {
		if err := f.Default(); err != nil {
			return err
		}
	}
	if err := pushValidity(b.validity, valid); err != nil {
		return err
	}
	b.n++
	return nil
}

func (b *structBuilder) Default() error { return b.fill(true) }
func (b *structBuilder) None() error { return b.fill(false) }

func (b *structBuilder) start() {
	for i := range b.seen {
		b.seen[i] = false
	}
	b.pos = 0
	b.haveKey = false
}

func (b *structBuilder) field(i int, v serde.Serializable) error {
	if b.seen[i] {
		return errs.Protocolf("duplicate field %q", b.names[i])
	}
	b.seen[i] = true
	return v.Serialize(b.fields[i])
}

func (b *structBuilder) end() error {
	for i, f := range b.fields {
		if b.seen[i] {
			continue
		}
		if !f.IsNullable() {
			return errs.Protocolf("missing non-nullable field %q", b.names[i])
		}
		if err := f.None(); err != nil {
			return err
		}
	}
	for i, f := range b.fields {
		if f.Len() != b.n+1 {
			return errs.Protocolf("field %q holds %d values, expected %d", b.names[i], f.Len(), b.n+1)
		}
	}
	if err := pushValidity(b.validity, true); err != nil {
		return err
	}
	b.n++
	return nil
}

func (b *structBuilder) StructStart(string, int) error {
	b.start()
	return nil
}

func (b *structBuilder) StructField(key string, v serde.Serializable) error {
	i, ok := b.index[key]
	if !ok {
		return errs.Protocolf("unknown field %q", key)
	}
	return b.field(i, v)
}

func (b *structBuilder) StructEnd() error { return b.end() }

func (b *structBuilder) MapStart(int) error {
	if b.strategy != schema.MapAsStruct {
		return b.fail("map")
	}
	b.start()
	return nil
}

func (b *structBuilder) MapKey(v serde.Serializable) error {
	if b.haveKey {
		return errs.Protocolf("map key without value")
	}
	kc := keyCapture{unsupported: unsupported{name: "struct field name"}}
	if err := v.Serialize(&kc); err != nil {
		return err
	}
	b.key, b.haveKey = kc.key, true
	return nil
}

func (b *structBuilder) MapValue(v serde.Serializable) error {
	if !b.haveKey {
		return errs.Protocolf("map value without key")
	}
	b.haveKey = false
	return b.StructField(b.key, v)
}

func (b *structBuilder) MapEnd() error {
	if b.haveKey {
		return errs.Protocolf("map key without value")
	}
	return b.end()
}

func (b *structBuilder) TupleStart(int) error {
	if b.strategy != schema.TupleAsStruct {
		return b.fail("tuple")
	}
	b.start()
	return nil
}

func (b *structBuilder) TupleElement(v serde.Serializable) error {
	if b.pos >= len(b.fields) {
		return errs.Protocolf("tuple has more than %d elements", len(b.fields))
	}
	b.pos++
	return b.field(b.pos-1, v)
}

func (b *structBuilder) TupleEnd() error { return b.end() }

func (b *structBuilder) take() arrayBuilder {
	t := *b
	t.validity = takeValidity(b.validity)
	t.fields = make([]*ArrayBuilder, len(b.fields))
	for i, f := range b.fields {
		t.fields[i] = f.Take()
	}
	t.seen = make([]bool, len(b.seen))
	b.n = 0
	return &t
}

func (b *structBuilder) intoData() (*array.Data, error) {
	children := make([]arrow.ArrayData, 0, len(b.fields))
	defer func() {
		for _, c := range children {
			c.Release()
		}
	}()
	for i, f := range b.fields {
		child, err := f.IntoData()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		if child.Len() != b.n {
			return nil, errs.Protocolf("field %q holds %d values, expected %d", b.names[i], child.Len(), b.n)
		}
	}
	bufs := []*memory.Buffer{b.validity.ValidityBuffer()}
	return array.NewData(b.dt, b.n, bufs, children, b.validity.NullCount(), 0), nil
}

func (b *structBuilder) isNullable() bool { return b.validity != nil }
func (b *structBuilder) length() int { return b.n }

// keyCapture receives a struct field name sent as a map key.
type keyCapture struct {
	unsupported
	key string
}

func (k *keyCapture) Str(v string) error {
	k.key = v
	return nil
}

func (k *keyCapture) UnitVariant(_ string, _ uint32, variant string) error {
	return k.Str(variant)
}
