// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/Query-farm/arrowserde/arrowserde/internal/buffers"
	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/schema"
)

// decimalBuilder stores Decimal128 columns. Strings and floats are
// rounded to the column scale; integers are scaled up. Values that do not
// fit the precision are rejected.
type decimalBuilder struct {
	unsupported
	dt        arrow.DataType
	precision int32
	scale     int32
	validity  *buffers.Bitmap
	// lo, hi pairs in little-endian order
	values []uint64
}

func newDecimalBuilder(dt arrow.DataType, t schema.DataType, nullable bool) *decimalBuilder {
	return &decimalBuilder{
		unsupported: unsupported{name: dt.String()},
		dt:          dt,
		precision:   t.Precision,
		scale:       t.Scale,
		validity:    newValidity(nullable),
	}
}

func (b *decimalBuilder) push(n decimal128.Num, valid bool) error {
	if valid && !n.FitsInPrecision(b.precision) {
		return errs.Conversionf("value %s does not fit %s", n.ToString(b.scale), b.dt)
	}
	if err := pushValidity(b.validity, valid); err != nil {
		return err
	}
	b.values = append(b.values, n.LowBits(), uint64(n.HighBits()))
	return nil
}

func (b *decimalBuilder) Default() error { return b.push(decimal128.Num{}, true) }
func (b *decimalBuilder) None() error { return b.push(decimal128.Num{}, false) }

func (b *decimalBuilder) Str(v string) error {
	n, err := decimal128.FromString(v, b.precision, b.scale)
	if err != nil {
		return errs.Wrap(errs.KindConversion, err, "cannot parse %q as %s", v, b.dt)
	}
	return b.push(n, true)
}

func (b *decimalBuilder) F64(v float64) error {
	n, err := decimal128.FromFloat64(v, b.precision, b.scale)
	if err != nil {
		return errs.Wrap(errs.KindConversion, err, "cannot convert %v to %s", v, b.dt)
	}
	return b.push(n, true)
}

func (b *decimalBuilder) F32(v float32) error { return b.F64(float64(v)) }

func (b *decimalBuilder) scaled(n decimal128.Num) error {
	if b.scale > 0 {
		n = n.IncreaseScaleBy(b.scale)
	}
	return b.push(n, true)
}

func (b *decimalBuilder) I8(v int8) error { return b.scaled(decimal128.FromI64(int64(v))) }
func (b *decimalBuilder) I16(v int16) error { return b.scaled(decimal128.FromI64(int64(v))) }
func (b *decimalBuilder) I32(v int32) error { return b.scaled(decimal128.FromI64(int64(v))) }
func (b *decimalBuilder) I64(v int64) error { return b.scaled(decimal128.FromI64(v)) }
func (b *decimalBuilder) U8(v uint8) error { return b.scaled(decimal128.FromU64(uint64(v))) }
func (b *decimalBuilder) U16(v uint16) error { return b.scaled(decimal128.FromU64(uint64(v))) }
func (b *decimalBuilder) U32(v uint32) error { return b.scaled(decimal128.FromU64(uint64(v))) }
func (b *decimalBuilder) U64(v uint64) error { return b.scaled(decimal128.FromU64(v)) }

func (b *decimalBuilder) take() arrayBuilder {
	t := *b
	t.validity = takeValidity(b.validity)
	b.values = nil
	return &t
}

func (b *decimalBuilder) intoData() (*array.Data, error) {
	bufs := []*memory.Buffer{b.validity.ValidityBuffer(), memory.NewBufferBytes(arrow.GetBytes(b.values))}
	return array.NewData(b.dt, b.length(), bufs, nil, b.validity.NullCount(), 0), nil
}

func (b *decimalBuilder) isNullable() bool { return b.validity != nil }
func (b *decimalBuilder) length() int { return len(b.values) / 2 }
