// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package deserialization

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/Query-farm/arrowserde/arrowserde/schema"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// date32Deserializer reads days since the epoch. A string request renders
// the calendar date as "YYYY-MM-DD".
type date32Deserializer struct {
	*intDeserializer[int32]
}

func newDate32Deserializer(data arrow.ArrayData) (*date32Deserializer, error) {
	d, err := newIntDeserializer[int32](data)
	if err != nil {
		return nil, err
	}
	return &date32Deserializer{d}, nil
}

func (d *date32Deserializer) visit(i int, h hint, v serde.Visitor) error {
	if h == hintString {
		return v.VisitString(FormatDate32(d.values[i]))
	}
	return v.VisitI32(d.values[i])
}

// FormatDate32 renders days since 1970-01-01 as a calendar date.
func FormatDate32(days int32) string {
	return arrow.Date32(days).ToTime().Format("2006-01-02")
}

// date64Deserializer reads Date64 and Timestamp columns. Columns with a
// date strategy answer any request with the datetime string; the others
// only render strings on request.
type date64Deserializer struct {
	*intDeserializer[int64]
	unit     arrow.TimeUnit
	utc      bool
	asString bool
}

func newDate64Deserializer(field schema.Field, data arrow.ArrayData) (*date64Deserializer, error) {
	d, err := newIntDeserializer[int64](data)
	if err != nil {
		return nil, err
	}
	unit := arrow.Millisecond
	if field.DataType.Kind == schema.Timestamp {
		unit = field.DataType.Unit
	}
	return &date64Deserializer{
		intDeserializer: d,
		unit:            unit,
		utc:             field.Strategy == schema.UtcStrAsDate64 || field.DataType.Timezone != "",
		asString:        field.Strategy == schema.UtcStrAsDate64 || field.Strategy == schema.NaiveStrAsDate64,
	}, nil
}

func (d *date64Deserializer) visit(i int, h hint, v serde.Visitor) error {
	if h == hintString || (h == hintAny && d.asString) {
		return v.VisitString(FormatDatetime(d.values[i], d.unit, d.utc))
	}
	return v.VisitI64(d.values[i])
}

// FormatDatetime renders a count of unit ticks since the epoch. UTC values
// end in "Z"; naive values carry no zone.
func FormatDatetime(ticks int64, unit arrow.TimeUnit, utc bool) string {
	t := arrow.Timestamp(ticks).ToTime(unit).UTC()
	if utc {
		return t.Format(serde.UTCLayout)
	}
	return t.Format(serde.NaiveLayout)
}

// timeDeserializer reads Time32 and Time64 columns. A string request
// renders the time of day as "HH:MM:SS[.fraction]".
type timeDeserializer[T int32 | int64] struct {
	*intDeserializer[T]
	unit arrow.TimeUnit
}

func newTimeDeserializer[T int32 | int64](data arrow.ArrayData, unit arrow.TimeUnit) (*timeDeserializer[T], error) {
	d, err := newIntDeserializer[T](data)
	if err != nil {
		return nil, err
	}
	return &timeDeserializer[T]{intDeserializer: d, unit: unit}, nil
}

func (d *timeDeserializer[T]) visit(i int, h hint, v serde.Visitor) error {
	if h == hintString {
		return v.VisitString(FormatTime(int64(d.values[i]), d.unit))
	}
	return visitInteger(v, d.values[i])
}

// FormatTime renders a count of unit ticks since midnight.
func FormatTime(ticks int64, unit arrow.TimeUnit) string {
	ns := ticks * int64(unit.Multiplier())
	return time.Unix(0, ns).UTC().Format("15:04:05.999999999")
}
