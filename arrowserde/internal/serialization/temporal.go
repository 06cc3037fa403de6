// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/schema"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05.999999999"
)

// date32Builder stores days since the epoch. Strings are parsed as
// "YYYY-MM-DD".
type date32Builder struct {
	*intBuilder[int32]
}

func newDate32Builder(nullable bool) *date32Builder {
	b := newIntBuilder[int32](arrow.FixedWidthTypes.Date32, nullable)
	return &date32Builder{b}
}

func (b *date32Builder) Str(v string) error {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return errs.Wrap(errs.KindConversion, err, "cannot parse %q as a date", v)
	}
	return b.push(int32(arrow.Date32FromTime(t)), true)
}

func (b *date32Builder) take() arrayBuilder {
	return &date32Builder{b.intBuilder.take().(*intBuilder[int32])}
}

// date64Builder stores Date64 and Timestamp columns. Strings are parsed
// as UTC datetimes when the field uses UtcStrAsDate64 or carries a
// timezone, and as naive datetimes otherwise.
type date64Builder struct {
	*intBuilder[int64]
	unit arrow.TimeUnit
	utc  bool
}

func newDate64Builder(field schema.Field, dt arrow.DataType) *date64Builder {
	unit := arrow.Millisecond
	if field.DataType.Kind == schema.Timestamp {
		unit = field.DataType.Unit
	}
	return &date64Builder{
		intBuilder: newIntBuilder[int64](dt, field.Nullable),
		unit:       unit,
		utc:        field.Strategy == schema.UtcStrAsDate64 || field.DataType.Timezone != "",
	}
}

func (b *date64Builder) Str(v string) error {
	var (
		t   time.Time
		err error
	)
	if b.utc {
		t, err = time.Parse(time.RFC3339Nano, v)
	} else {
		t, err = time.Parse(serde.NaiveLayout, v)
	}
	if err != nil {
		return errs.Wrap(errs.KindConversion, err, "cannot parse %q as a datetime", v)
	}
	return b.push(fromTime(t, b.unit), true)
}

func (b *date64Builder) take() arrayBuilder {
	return &date64Builder{intBuilder: b.intBuilder.take().(*intBuilder[int64]), unit: b.unit, utc: b.utc}
}

func fromTime(t time.Time, unit arrow.TimeUnit) int64 {
	switch unit {
	case arrow.Second:
		return t.Unix()
	case arrow.Millisecond:
		return t.UnixMilli()
	case arrow.Microsecond:
		return t.UnixMicro()
	default:
		return t.UnixNano()
	}
}

// unitNanos is the length of one tick of unit.
func unitNanos(unit arrow.TimeUnit) int64 {
	switch unit {
	case arrow.Second:
		return int64(time.Second)
	case arrow.Millisecond:
		return int64(time.Millisecond)
	case arrow.Microsecond:
		return int64(time.Microsecond)
	default:
		return 1
	}
}

// timeBuilder stores Time32 and Time64 columns. Strings are parsed as
// "HH:MM:SS[.fraction]".
type timeBuilder[T int32 | int64] struct {
	*intBuilder[T]
	unit arrow.TimeUnit
}

func newTimeBuilder[T int32 | int64](dt arrow.DataType, unit arrow.TimeUnit, nullable bool) *timeBuilder[T] {
	return &timeBuilder[T]{intBuilder: newIntBuilder[T](dt, nullable), unit: unit}
}

func (b *timeBuilder[T]) Str(v string) error {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return errs.Wrap(errs.KindConversion, err, "cannot parse %q as a time of day", v)
	}
	ns := int64(t.Hour())*int64(time.Hour) + int64(t.Minute())*int64(time.Minute) +
		int64(t.Second())*int64(time.Second) + int64(t.Nanosecond())
	return b.pushInt(ns / unitNanos(b.unit))
}

func (b *timeBuilder[T]) take() arrayBuilder {
	return &timeBuilder[T]{intBuilder: b.intBuilder.take().(*intBuilder[T]), unit: b.unit}
}

var _ = []arrayBuilder{(*date32Builder)(nil), (*date64Builder)(nil), (*timeBuilder[int32])(nil)}
