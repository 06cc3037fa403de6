// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/Query-farm/arrowserde/arrowserde/internal/buffers"
	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// utf8Builder stores Utf8 and LargeUtf8 columns. Unit variants are stored
// by name.
type utf8Builder[O buffers.Offset] struct {
	unsupported
	dt       arrow.DataType
	validity *buffers.Bitmap
	values   buffers.Bytes[O]
}

func newUtf8Builder[O buffers.Offset](dt arrow.DataType, nullable bool) *utf8Builder[O] {
	return &utf8Builder[O]{
		unsupported: unsupported{name: dt.String()},
		dt:          dt,
		validity:    newValidity(nullable),
		values:      buffers.NewBytes[O](),
	}
}

func (b *utf8Builder[O]) Default() error {
	if err := pushValidity(b.validity, true); err != nil {
		return err
	}
	b.values.PushEmpty()
	return nil
}

func (b *utf8Builder[O]) None() error {
	if err := pushValidity(b.validity, false); err != nil {
		return err
	}
	b.values.PushEmpty()
	return nil
}

func (b *utf8Builder[O]) Str(v string) error {
	if err := b.values.PushString(v); err != nil {
		return err
	}
	return pushValidity(b.validity, true)
}

func (b *utf8Builder[O]) UnitVariant(_ string, _ uint32, variant string) error {
	return b.Str(variant)
}

func (b *utf8Builder[O]) take() arrayBuilder {
	return &utf8Builder[O]{unsupported: b.unsupported, dt: b.dt, validity: takeValidity(b.validity), values: b.values.Take()}
}

func (b *utf8Builder[O]) intoData() (*array.Data, error) {
	offsets, data := b.values.Buffers()
	bufs := []*memory.Buffer{b.validity.ValidityBuffer(), offsets, data}
	return array.NewData(b.dt, b.values.Len(), bufs, nil, b.validity.NullCount(), 0), nil
}

func (b *utf8Builder[O]) isNullable() bool { return b.validity != nil }
func (b *utf8Builder[O]) length() int { return b.values.Len() }

// binaryBuilder stores Binary and LargeBinary columns. Besides byte
// strings it accepts strings and sequences of small integers.
type binaryBuilder[O buffers.Offset] struct {
	unsupported
	dt       arrow.DataType
	validity *buffers.Bitmap
	values   buffers.Bytes[O]
	pending  *byteCollector
}

func newBinaryBuilder[O buffers.Offset](dt arrow.DataType, nullable bool) *binaryBuilder[O] {
	return &binaryBuilder[O]{
		unsupported: unsupported{name: dt.String()},
		dt:          dt,
		validity:    newValidity(nullable),
		values:      buffers.NewBytes[O](),
	}
}

func (b *binaryBuilder[O]) Default() error {
	if err := pushValidity(b.validity, true); err != nil {
		return err
	}
	b.values.PushEmpty()
	return nil
}

func (b *binaryBuilder[O]) None() error {
	if err := pushValidity(b.validity, false); err != nil {
		return err
	}
	b.values.PushEmpty()
	return nil
}

func (b *binaryBuilder[O]) Bytes(v []byte) error {
	if err := b.values.Push(v); err != nil {
		return err
	}
	return pushValidity(b.validity, true)
}

func (b *binaryBuilder[O]) Str(v string) error {
	if err := b.values.PushString(v); err != nil {
		return err
	}
	return pushValidity(b.validity, true)
}

func (b *binaryBuilder[O]) SeqStart(n int) error {
	b.pending = newByteCollector(n)
	return nil
}

func (b *binaryBuilder[O]) SeqElement(v serde.Serializable) error {
	if b.pending == nil {
		return b.fail("seq_element without seq_start")
	}
	return v.Serialize(b.pending)
}

func (b *binaryBuilder[O]) SeqEnd() error {
	if b.pending == nil {
		return b.fail("seq_end without seq_start")
	}
	data := b.pending.data
	b.pending = nil
	return b.Bytes(data)
}

func (b *binaryBuilder[O]) TupleStart(n int) error { return b.SeqStart(n) }
func (b *binaryBuilder[O]) TupleElement(v serde.Serializable) error { return b.SeqElement(v) }
func (b *binaryBuilder[O]) TupleEnd() error { return b.SeqEnd() }

func (b *binaryBuilder[O]) take() arrayBuilder {
	return &binaryBuilder[O]{unsupported: b.unsupported, dt: b.dt, validity: takeValidity(b.validity), values: b.values.Take()}
}

func (b *binaryBuilder[O]) intoData() (*array.Data, error) {
	offsets, data := b.values.Buffers()
	bufs := []*memory.Buffer{b.validity.ValidityBuffer(), offsets, data}
	return array.NewData(b.dt, b.values.Len(), bufs, nil, b.validity.NullCount(), 0), nil
}

func (b *binaryBuilder[O]) isNullable() bool { return b.validity != nil }
func (b *binaryBuilder[O]) length() int { return b.values.Len() }

// fixedSizeBinaryBuilder stores FixedSizeBinary columns. Null slots are
// zero-filled.
type fixedSizeBinaryBuilder struct {
	unsupported
	dt       arrow.DataType
	validity *buffers.Bitmap
	values   buffers.FixedBytes
	pending  *byteCollector
}

func newFixedSizeBinaryBuilder(dt arrow.DataType, width int, nullable bool) *fixedSizeBinaryBuilder {
	return &fixedSizeBinaryBuilder{
		unsupported: unsupported{name: dt.String()},
		dt:          dt,
		validity:    newValidity(nullable),
		values:      buffers.NewFixedBytes(width),
	}
}

func (b *fixedSizeBinaryBuilder) Default() error {
	if err := pushValidity(b.validity, true); err != nil {
		return err
	}
	b.values.PushZero()
	return nil
}

func (b *fixedSizeBinaryBuilder) None() error {
	if err := pushValidity(b.validity, false); err != nil {
		return err
	}
	b.values.PushZero()
	return nil
}

func (b *fixedSizeBinaryBuilder) Bytes(v []byte) error {
	if err := b.values.Push(v); err != nil {
		return err
	}
	return pushValidity(b.validity, true)
}

func (b *fixedSizeBinaryBuilder) SeqStart(n int) error {
	b.pending = newByteCollector(n)
	return nil
}

func (b *fixedSizeBinaryBuilder) SeqElement(v serde.Serializable) error {
	if b.pending == nil {
		return b.fail("seq_element without seq_start")
	}
	return v.Serialize(b.pending)
}

func (b *fixedSizeBinaryBuilder) SeqEnd() error {
	if b.pending == nil {
		return b.fail("seq_end without seq_start")
	}
	data := b.pending.data
	b.pending = nil
	return b.Bytes(data)
}

func (b *fixedSizeBinaryBuilder) TupleStart(n int) error { return b.SeqStart(n) }
func (b *fixedSizeBinaryBuilder) TupleElement(v serde.Serializable) error {
	return b.SeqElement(v)
}
func (b *fixedSizeBinaryBuilder) TupleEnd() error { return b.SeqEnd() }

func (b *fixedSizeBinaryBuilder) take() arrayBuilder {
	return &fixedSizeBinaryBuilder{unsupported: b.unsupported, dt: b.dt, validity: takeValidity(b.validity), values: b.values.Take()}
}

func (b *fixedSizeBinaryBuilder) intoData() (*array.Data, error) {
	bufs := []*memory.Buffer{b.validity.ValidityBuffer(), b.values.Buffer()}
	return array.NewData(b.dt, b.values.Len(), bufs, nil, b.validity.NullCount(), 0), nil
}

func (b *fixedSizeBinaryBuilder) isNullable() bool { return b.validity != nil }
func (b *fixedSizeBinaryBuilder) length() int { return b.values.Len() }

// byteCollector gathers the elements of a byte sequence.
type byteCollector struct {
	unsupported
	data []byte
}

func newByteCollector(n int) *byteCollector {
	return &byteCollector{unsupported: unsupported{name: "byte"}, data: make([]byte, 0, n)}
}

func (c *byteCollector) push(v int64) error {
	if v < 0 || v > 255 {
		return errs.Conversionf("value %d out of range for a byte", v)
	}
	c.data = append(c.data, byte(v))
	return nil
}

func (c *byteCollector) U8(v uint8) error { return c.push(int64(v)) }
func (c *byteCollector) U16(v uint16) error { return c.push(int64(v)) }
func (c *byteCollector) U32(v uint32) error { return c.push(int64(v)) }
func (c *byteCollector) I8(v int8) error { return c.push(int64(v)) }
func (c *byteCollector) I16(v int16) error { return c.push(int64(v)) }
func (c *byteCollector) I32(v int32) error { return c.push(int64(v)) }
func (c *byteCollector) I64(v int64) error { return c.push(v) }

func (c *byteCollector) U64(v uint64) error {
	if v > 255 {
		return errs.Conversionf("value %d out of range for a byte", v)
	}
	return c.push(int64(v))
}
