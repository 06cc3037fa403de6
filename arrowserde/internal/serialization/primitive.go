// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/float16"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/Query-farm/arrowserde/arrowserde/internal/buffers"
	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
)

// nullBuilder counts values; every slot is null.
type nullBuilder struct {
	unsupported
	n int
}

func (b *nullBuilder) push() error {
	b.n++
	return nil
}

func (b *nullBuilder) Default() error { return b.push() }
func (b *nullBuilder) None() error { return b.push() }
func (b *nullBuilder) unitValue() error { return b.push() }

func (b *nullBuilder) take() arrayBuilder {
	t := &nullBuilder{unsupported: unsupported{name: "Null"}, n: b.n}
	b.n = 0
	return t
}

func (b *nullBuilder) intoData() (*array.Data, error) {
	return array.NewData(arrow.Null, b.n, []*memory.Buffer{nil}, nil, b.n, 0), nil
}

func (b *nullBuilder) isNullable() bool { return true }
func (b *nullBuilder) length() int { return b.n }

type boolBuilder struct {
	unsupported
	validity *buffers.Bitmap
	values   buffers.Bitmap
}

func newBoolBuilder(nullable bool) *boolBuilder {
	return &boolBuilder{unsupported: unsupported{name: "Bool"}, validity: newValidity(nullable)}
}

func (b *boolBuilder) push(v, valid bool) error {
	if err := pushValidity(b.validity, valid); err != nil {
		return err
	}
	b.values.Push(v)
	return nil
}

func (b *boolBuilder) Default() error { return b.push(false, true) }
func (b *boolBuilder) None() error { return b.push(false, false) }
func (b *boolBuilder) Bool(v bool) error { return b.push(v, true) }

func (b *boolBuilder) take() arrayBuilder {
	return &boolBuilder{unsupported: b.unsupported, validity: takeValidity(b.validity), values: b.values.Take()}
}

func (b *boolBuilder) intoData() (*array.Data, error) {
	bufs := []*memory.Buffer{b.validity.ValidityBuffer(), b.values.Buffer()}
	return array.NewData(arrow.FixedWidthTypes.Boolean, b.values.Len(), bufs, nil, b.validity.NullCount(), 0), nil
}

func (b *boolBuilder) isNullable() bool { return b.validity != nil }
func (b *boolBuilder) length() int { return b.values.Len() }

type integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// intBuilder stores any integer column, including Duration. Values of
// other integer widths are converted with a range check.
type intBuilder[T integer] struct {
	unsupported
	dt       arrow.DataType
	validity *buffers.Bitmap
	values   []T
}

func newIntBuilder[T integer](dt arrow.DataType, nullable bool) *intBuilder[T] {
	return &intBuilder[T]{unsupported: unsupported{name: dt.String()}, dt: dt, validity: newValidity(nullable)}
}

func (b *intBuilder[T]) push(v T, valid bool) error {
	if err := pushValidity(b.validity, valid); err != nil {
		return err
	}
	b.values = append(b.values, v)
	return nil
}

func (b *intBuilder[T]) pushInt(v int64) error {
	t := T(v)
	if int64(t) != v || (t < 0) != (v < 0) {
		return errs.Conversionf("value %d out of range for %s", v, b.dt)
	}
	return b.push(t, true)
}

func (b *intBuilder[T]) pushUint(v uint64) error {
	t := T(v)
	if uint64(t) != v || t < 0 {
		return errs.Conversionf("value %d out of range for %s", v, b.dt)
	}
	return b.push(t, true)
}

func (b *intBuilder[T]) Default() error { return b.push(0, true) }
func (b *intBuilder[T]) None() error { return b.push(0, false) }

func (b *intBuilder[T]) Bool(v bool) error {
	if v {
		return b.push(1, true)
	}
	return b.push(0, true)
}

func (b *intBuilder[T]) I8(v int8) error { return b.pushInt(int64(v)) }
func (b *intBuilder[T]) I16(v int16) error { return b.pushInt(int64(v)) }
func (b *intBuilder[T]) I32(v int32) error { return b.pushInt(int64(v)) }
func (b *intBuilder[T]) I64(v int64) error { return b.pushInt(v) }
func (b *intBuilder[T]) U8(v uint8) error { return b.pushUint(uint64(v)) }
func (b *intBuilder[T]) U16(v uint16) error { return b.pushUint(uint64(v)) }
func (b *intBuilder[T]) U32(v uint32) error { return b.pushUint(uint64(v)) }
func (b *intBuilder[T]) U64(v uint64) error { return b.pushUint(v) }

func (b *intBuilder[T]) take() arrayBuilder {
	t := &intBuilder[T]{unsupported: b.unsupported, dt: b.dt, validity: takeValidity(b.validity), values: b.values}
	b.values = nil
	return t
}

func (b *intBuilder[T]) intoData() (*array.Data, error) {
	bufs := []*memory.Buffer{b.validity.ValidityBuffer(), memory.NewBufferBytes(arrow.GetBytes(b.values))}
	return array.NewData(b.dt, len(b.values), bufs, nil, b.validity.NullCount(), 0), nil
}

func (b *intBuilder[T]) isNullable() bool { return b.validity != nil }
func (b *intBuilder[T]) length() int { return len(b.values) }

// floatBuilder stores Float32 and Float64 columns. Integers are accepted
// and converted.
type floatBuilder[T ~float32 | ~float64] struct {
	unsupported
	dt       arrow.DataType
	validity *buffers.Bitmap
	values   []T
}

func newFloatBuilder[T ~float32 | ~float64](dt arrow.DataType, nullable bool) *floatBuilder[T] {
	return &floatBuilder[T]{unsupported: unsupported{name: dt.String()}, dt: dt, validity: newValidity(nullable)}
}

func (b *floatBuilder[T]) push(v T, valid bool) error {
	if err := pushValidity(b.validity, valid); err != nil {
		return err
	}
	b.values = append(b.values, v)
	return nil
}

func (b *floatBuilder[T]) Default() error { return b.push(0, true) }
func (b *floatBuilder[T]) None() error { return b.push(0, false) }
func (b *floatBuilder[T]) F32(v float32) error { return b.push(T(v), true) }
func (b *floatBuilder[T]) F64(v float64) error { return b.push(T(v), true) }
func (b *floatBuilder[T]) I8(v int8) error { return b.push(T(v), true) }
func (b *floatBuilder[T]) I16(v int16) error { return b.push(T(v), true) }
func (b *floatBuilder[T]) I32(v int32) error { return b.push(T(v), true) }
func (b *floatBuilder[T]) I64(v int64) error { return b.push(T(v), true) }
func (b *floatBuilder[T]) U8(v uint8) error { return b.push(T(v), true) }
func (b *floatBuilder[T]) U16(v uint16) error { return b.push(T(v), true) }
func (b *floatBuilder[T]) U32(v uint32) error { return b.push(T(v), true) }
func (b *floatBuilder[T]) U64(v uint64) error { return b.push(T(v), true) }

func (b *floatBuilder[T]) take() arrayBuilder {
	t := &floatBuilder[T]{unsupported: b.unsupported, dt: b.dt, validity: takeValidity(b.validity), values: b.values}
	b.values = nil
	return t
}

func (b *floatBuilder[T]) intoData() (*array.Data, error) {
	bufs := []*memory.Buffer{b.validity.ValidityBuffer(), memory.NewBufferBytes(arrow.GetBytes(b.values))}
	return array.NewData(b.dt, len(b.values), bufs, nil, b.validity.NullCount(), 0), nil
}

func (b *floatBuilder[T]) isNullable() bool { return b.validity != nil }
func (b *floatBuilder[T]) length() int { return len(b.values) }

// float16Builder keeps the half-precision bit patterns.
type float16Builder struct {
	unsupported
	validity *buffers.Bitmap
	values   []uint16
}

func newFloat16Builder(nullable bool) *float16Builder {
	return &float16Builder{unsupported: unsupported{name: "Float16"}, validity: newValidity(nullable)}
}

func (b *float16Builder) push(v float32, valid bool) error {
	if err := pushValidity(b.validity, valid); err != nil {
		return err
	}
	b.values = append(b.values, float16.New(v).Uint16())
	return nil
}

func (b *float16Builder) Default() error { return b.push(0, true) }
func (b *float16Builder) None() error { return b.push(0, false) }
func (b *float16Builder) F32(v float32) error { return b.push(v, true) }
func (b *float16Builder) F64(v float64) error { return b.push(float32(v), true) }

func (b *float16Builder) take() arrayBuilder {
	t := &float16Builder{unsupported: b.unsupported, validity: takeValidity(b.validity), values: b.values}
	b.values = nil
	return t
}

func (b *float16Builder) intoData() (*array.Data, error) {
	bufs := []*memory.Buffer{b.validity.ValidityBuffer(), memory.NewBufferBytes(arrow.GetBytes(b.values))}
	return array.NewData(arrow.FixedWidthTypes.Float16, len(b.values), bufs, nil, b.validity.NullCount(), 0), nil
}

func (b *float16Builder) isNullable() bool { return b.validity != nil }
func (b *float16Builder) length() int { return len(b.values) }
