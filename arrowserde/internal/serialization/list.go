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

// listBuilder stores List and LargeList columns. Sequences, tuples and
// byte strings all become one list slot each.
type listBuilder[O buffers.Offset] struct {
	unsupported
	dt       arrow.DataType
	validity *buffers.Bitmap
	offsets  buffers.Offsets[O]
	element  *ArrayBuilder
}

func newListBuilder[O buffers.Offset](field schema.Field, dt arrow.DataType, path string) (*listBuilder[O], error) {
	if len(field.Children) != 1 {
		return nil, errs.Schemaf("list field must have exactly one child, got %d", len(field.Children))
	}
	elem := field.Children[0]
	element, err := New(elem, schema.ChildPath(path, elem.Name))
	if err != nil {
		return nil, err
	}
	return &listBuilder[O]{
		unsupported: unsupported{name: dt.String()},
		dt:          dt,
		validity:    newValidity(field.Nullable),
		offsets:     buffers.NewOffsets[O](),
		element:     element,
	}, nil
}

func (b *listBuilder[O]) Default() error {
	if err := pushValidity(b.validity, true); err != nil {
		return err
	}
	b.offsets.PushEmpty()
	return nil
}

func (b *listBuilder[O]) None() error {
	if err := pushValidity(b.validity, false); err != nil {
		return err
	}
	b.offsets.PushEmpty()
	return nil
}

func (b *listBuilder[O]) SeqStart(int) error {
	b.offsets.StartSeq()
	return nil
}

func (b *listBuilder[O]) SeqElement(v serde.Serializable) error {
	b.offsets.PushElements(1)
	return v.Serialize(b.element)
}

func (b *listBuilder[O]) SeqEnd() error {
	if err := b.offsets.EndSeq(); err != nil {
		return err
	}
	return pushValidity(b.validity, true)
}

func (b *listBuilder[O]) TupleStart(n int) error { return b.SeqStart(n) }
func (b *listBuilder[O]) TupleElement(v serde.Serializable) error { return b.SeqElement(v) }
func (b *listBuilder[O]) TupleEnd() error { return b.SeqEnd() }

func (b *listBuilder[O]) Bytes(v []byte) error {
	b.offsets.StartSeq()
	for _, c := range v {
		b.offsets.PushElements(1)
		if err := b.element.U8(c); err != nil {
			return err
		}
	}
	return b.SeqEnd()
}

func (b *listBuilder[O]) take() arrayBuilder {
	return &listBuilder[O]{
		unsupported: b.unsupported,
		dt:          b.dt,
		validity:    takeValidity(b.validity),
		offsets:     b.offsets.Take(),
		element:     b.element.Take(),
	}
}

func (b *listBuilder[O]) intoData() (*array.Data, error) {
	child, err := b.element.IntoData()
	if err != nil {
		return nil, err
	}
	defer child.Release()
	if int(b.offsets.Last()) != child.Len() {
		return nil, errs.Protocolf("list offsets end at %d but the element column holds %d values", b.offsets.Last(), child.Len())
	}
	bufs := []*memory.Buffer{b.validity.ValidityBuffer(), b.offsets.Buffer()}
	return array.NewData(b.dt, b.offsets.Len(), bufs, []arrow.ArrayData{child}, b.validity.NullCount(), 0), nil
}

func (b *listBuilder[O]) isNullable() bool { return b.validity != nil }
func (b *listBuilder[O]) length() int { return b.offsets.Len() }

// fixedSizeListBuilder stores FixedSizeList columns. Every slot, null or
// not, holds exactly n elements; null and default slots are filled with
// element defaults.
type fixedSizeListBuilder struct {
	unsupported
	dt       arrow.DataType
	n        int
	validity *buffers.Bitmap
	count    int
	slots    int
	element  *ArrayBuilder
}

func newFixedSizeListBuilder(field schema.Field, dt arrow.DataType, path string) (*fixedSizeListBuilder, error) {
	if len(field.Children) != 1 {
		return nil, errs.Schemaf("fixed-size list field must have exactly one child, got %d", len(field.Children))
	}
	elem := field.Children[0]
	element, err := New(elem, schema.ChildPath(path, elem.Name))
	if err != nil {
		return nil, err
	}
	return &fixedSizeListBuilder{
		unsupported: unsupported{name: dt.String()},
		dt:          dt,
		n:           int(field.DataType.Size),
		validity:    newValidity(field.Nullable),
		element:     element,
	}, nil
}

func (b *fixedSizeListBuilder) fill(valid bool) error {
	if err := pushValidity(b.validity, valid); err != nil {
		return err
	}
	for range b.n {
		if err := b.element.Default(); err != nil {
			return err
		}
	}
	b.slots++
	return nil
}

func (b *fixedSizeListBuilder) Default() error { return b.fill(true) }
func (b *fixedSizeListBuilder) None() error { return b.fill(false) }

func (b *fixedSizeListBuilder) SeqStart(int) error {
	b.count = 0
	return nil
}

func (b *fixedSizeListBuilder) SeqElement(v serde.Serializable) error {
	b.count++
	return v.Serialize(b.element)
}

func (b *fixedSizeListBuilder) SeqEnd() error {
	if b.count != b.n {
		return errs.Protocolf("fixed-size list expects %d elements, got %d", b.n, b.count)
	}
	b.count = 0
	b.slots++
	return pushValidity(b.validity, true)
}

func (b *fixedSizeListBuilder) TupleStart(n int) error { return b.SeqStart(n) }
func (b *fixedSizeListBuilder) TupleElement(v serde.Serializable) error {
	return b.SeqElement(v)
}
func (b *fixedSizeListBuilder) TupleEnd() error { return b.SeqEnd() }

func (b *fixedSizeListBuilder) Bytes(v []byte) error {
	b.count = 0
	for _, c := range v {
		b.count++
		if err := b.element.U8(c); err != nil {
			return err
		}
	}
	return b.SeqEnd()
}

func (b *fixedSizeListBuilder) take() arrayBuilder {
	t := &fixedSizeListBuilder{
		unsupported: b.unsupported,
		dt:          b.dt,
		n:           b.n,
		validity:    takeValidity(b.validity),
		slots:       b.slots,
		element:     b.element.Take(),
	}
	b.slots = 0
	return t
}

func (b *fixedSizeListBuilder) intoData() (*array.Data, error) {
	child, err := b.element.IntoData()
	if err != nil {
		return nil, err
	}
	defer child.Release()
	if child.Len() != b.slots*b.n {
		return nil, errs.Protocolf("fixed-size list of %d slots needs %d elements, got %d", b.slots, b.slots*b.n, child.Len())
	}
	bufs := []*memory.Buffer{b.validity.ValidityBuffer()}
	return array.NewData(b.dt, b.slots, bufs, []arrow.ArrayData{child}, b.validity.NullCount(), 0), nil
}

func (b *fixedSizeListBuilder) isNullable() bool { return b.validity != nil }
func (b *fixedSizeListBuilder) length() int { return b.slots }
