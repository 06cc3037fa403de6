// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package buffers

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
)

// Offset is the integer width of an offsets buffer.
type Offset interface {
	int32 | int64
}

// Offsets accumulates the N+1 offsets of a variable-length column. Between
// StartSeq and EndSeq the pending element count grows with PushElements.
type Offsets[O Offset] struct {
	offsets []O
	current int64
}

// NewOffsets returns offsets holding the initial zero.
func NewOffsets[O Offset]() Offsets[O] {
	return Offsets[O]{offsets: []O{0}}
}

// Len returns the number of committed slots.
func (o *Offsets[O]) Len() int { return len(o.offsets) - 1 }

// Last returns the final committed offset.
func (o *Offsets[O]) Last() O { return o.offsets[len(o.offsets)-1] }

// Values returns the committed offsets.
func (o *Offsets[O]) Values() []O { return o.offsets }

// StartSeq opens a new slot.
func (o *Offsets[O]) StartSeq() { o.current = 0 }

// PushElements adds n elements to the open slot.
func (o *Offsets[O]) PushElements(n int) { o.current += int64(n) }

// EndSeq commits the open slot.
func (o *Offsets[O]) EndSeq() error {
	err := o.PushLen(o.current)
	o.current = 0
	return err
}

// PushEmpty commits a zero-width slot.
func (o *Offsets[O]) PushEmpty() {
	o.offsets = append(o.offsets, o.Last())
}

// PushLen commits a slot of width n.
func (o *Offsets[O]) PushLen(n int64) error {
	next := int64(o.Last()) + n
	if int64(O(next)) != next {
		return errs.Conversionf("offset %d overflows the %d-bit offsets buffer", next, sizeOf[O]()*8)
	}
	o.offsets = append(o.offsets, O(next))
	return nil
}

// Take returns the accumulated offsets and resets o.
func (o *Offsets[O]) Take() Offsets[O] {
	t := *o
	*o = NewOffsets[O]()
	return t
}

// Buffer wraps the offsets without copying.
func (o *Offsets[O]) Buffer() *memory.Buffer {
	return memory.NewBufferBytes(arrow.GetBytes(o.offsets))
}

func sizeOf[O Offset]() int {
	var z O
	switch any(z).(type) {
	case int32:
		return 4
	default:
		return 8
	}
}

// Bytes accumulates the offsets and data of a utf8 or binary column.
type Bytes[O Offset] struct {
	Offsets Offsets[O]
	data    []byte
}

// NewBytes returns an empty byte column.
func NewBytes[O Offset]() Bytes[O] {
	return Bytes[O]{Offsets: NewOffsets[O]()}
}

// Len returns the number of slots.
func (b *Bytes[O]) Len() int { return b.Offsets.Len() }

// Push appends one value.
func (b *Bytes[O]) Push(v []byte) error {
	if err := b.Offsets.PushLen(int64(len(v))); err != nil {
		return err
	}
	b.data = append(b.data, v...)
	return nil
}

// PushString appends one string value.
func (b *Bytes[O]) PushString(v string) error {
	if err := b.Offsets.PushLen(int64(len(v))); err != nil {
		return err
	}
	b.data = append(b.data, v...)
	return nil
}

// PushEmpty appends a zero-width value.
func (b *Bytes[O]) PushEmpty() { b.Offsets.PushEmpty() }

// Take returns the accumulated column and resets b.
func (b *Bytes[O]) Take() Bytes[O] {
	t := *b
	*b = NewBytes[O]()
	return t
}

// Buffers returns the offsets and data buffers.
func (b *Bytes[O]) Buffers() (*memory.Buffer, *memory.Buffer) {
	return b.Offsets.Buffer(), memory.NewBufferBytes(b.data)
}

// FixedBytes accumulates a fixed-size binary column.
type FixedBytes struct {
	width int
	n     int
	data  []byte
}

// NewFixedBytes returns an empty column of the given width.
func NewFixedBytes(width int) FixedBytes {
	return FixedBytes{width: width}
}

// Width returns the element size in bytes.
func (f *FixedBytes) Width() int { return f.width }

// Len returns the number of values.
func (f *FixedBytes) Len() int { return f.n }

// Push appends one value; it must be exactly Width bytes long.
func (f *FixedBytes) Push(v []byte) error {
	if len(v) != f.width {
		return errs.Conversionf("cannot push %d bytes into a fixed-size binary of width %d", len(v), f.width)
	}
	f.data = append(f.data, v...)
	f.n++
	return nil
}

// PushZero appends Width zero bytes.
func (f *FixedBytes) PushZero() {
	f.data = append(f.data, make([]byte, f.width)...)
	f.n++
}

// Take returns the accumulated column and resets f.
func (f *FixedBytes) Take() FixedBytes {
	t := *f
	*f = NewFixedBytes(f.width)
	return t
}

// Buffer wraps the data without copying.
func (f *FixedBytes) Buffer() *memory.Buffer { return memory.NewBufferBytes(f.data) }
