// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/schema"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// unionBuilder stores dense Union columns. The variant index of an enum
// event selects the child; child i has type id i. Each slot records the
// type id and the position of the value within its child.
type unionBuilder struct {
	unsupported
	dt       arrow.DataType
	variants []*ArrayBuilder
	typeIDs  []int8
	offsets  []int32
}

func newUnionBuilder(field schema.Field, dt arrow.DataType, path string) (*unionBuilder, error) {
	if len(field.Children) == 0 || len(field.Children) > 127 {
		return nil, errs.Schemaf("union must have between 1 and 127 variants, got %d", len(field.Children))
	}
	b := &unionBuilder{unsupported: unsupported{name: dt.String()}, dt: dt}
	for _, child := range field.Children {
		vb, err := New(child, schema.ChildPath(path, child.Name))
		if err != nil {
			return nil, err
		}
		b.variants = append(b.variants, vb)
	}
	return b, nil
}

// selectVariant records the slot for variant index and returns its child.
func (b *unionBuilder) selectVariant(index uint32, variant string) (*ArrayBuilder, error) {
	if int(index) >= len(b.variants) {
		return nil, errs.Protocolf("variant %q has index %d, union has %d variants", variant, index, len(b.variants))
	}
	child := b.variants[index]
	b.typeIDs = append(b.typeIDs, int8(index))
	b.offsets = append(b.offsets, int32(child.Len()))
	return child, nil
}

func (b *unionBuilder) Default() error {
	child, err := b.selectVariant(0, "default")
	if err != nil {
		return err
	}
	return child.Default()
}

func (b *unionBuilder) UnitVariant(_ string, index uint32, variant string) error {
	child, err := b.selectVariant(index, variant)
	if err != nil {
		return err
	}
	return child.Unit()
}

func (b *unionBuilder) NewtypeVariant(_ string, index uint32, variant string, v serde.Serializable) error {
	child, err := b.selectVariant(index, variant)
	if err != nil {
		return err
	}
	return v.Serialize(child)
}

func (b *unionBuilder) TupleVariantStart(_ string, index uint32, variant string, n int) (serde.Serializer, error) {
	child, err := b.selectVariant(index, variant)
	if err != nil {
		return nil, err
	}
	return child, child.TupleStart(n)
}

func (b *unionBuilder) StructVariantStart(_ string, index uint32, variant string, n int) (serde.Serializer, error) {
	child, err := b.selectVariant(index, variant)
	if err != nil {
		return nil, err
	}
	return child, child.StructStart(variant, n)
}

func (b *unionBuilder) take() arrayBuilder {
	t := &unionBuilder{unsupported: b.unsupported, dt: b.dt, typeIDs: b.typeIDs, offsets: b.offsets}
	for _, v := range b.variants {
		t.variants = append(t.variants, v.Take())
	}
	b.typeIDs, b.offsets = nil, nil
	return t
}

func (b *unionBuilder) intoData() (*array.Data, error) {
	children := make([]arrow.ArrayData, 0, len(b.variants))
	defer func() {
		for _, c := range children {
			c.Release()
		}
	}()
	counts := make([]int, len(b.variants))
	for _, id := range b.typeIDs {
		counts[id]++
	}
	for i, v := range b.variants {
		child, err := v.IntoData()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		if child.Len() != counts[i] {
			return nil, errs.Protocolf("variant %d holds %d values but %d slots select it", i, child.Len(), counts[i])
		}
	}
	bufs := []*memory.Buffer{
		nil,
		memory.NewBufferBytes(arrow.GetBytes(b.typeIDs)),
		memory.NewBufferBytes(arrow.GetBytes(b.offsets)),
	}
	return array.NewData(b.dt, len(b.typeIDs), bufs, children, 0, 0), nil
}

func (b *unionBuilder) isNullable() bool { return false }
func (b *unionBuilder) length() int { return len(b.typeIDs) }
