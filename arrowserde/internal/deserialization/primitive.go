// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package deserialization

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/float16"

	"github.com/Query-farm/arrowserde/arrowserde/internal/buffers"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

type nullDeserializer struct {
	n int
}

func (d *nullDeserializer) length() int { return d.n }
func (*nullDeserializer) valid(int) bool { return false }

func (*nullDeserializer) visit(_ int, _ hint, v serde.Visitor) error { return v.VisitUnit() }

type boolDeserializer struct {
	validity buffers.BitsView
	values   buffers.BitsView
}

func newBoolDeserializer(data arrow.ArrayData) *boolDeserializer {
	return &boolDeserializer{validity: validityOf(data), values: buffers.BoolValues(data, 0, data.Len())}
}

func (d *boolDeserializer) length() int { return d.values.Len() }
func (d *boolDeserializer) valid(i int) bool { return d.validity.IsSet(i) }

func (d *boolDeserializer) visit(i int, _ hint, v serde.Visitor) error {
	return v.VisitBool(d.values.IsSet(i))
}

type integer interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64
}

// visitInteger reports x with the visitor method of its own width.
func visitInteger[T integer](v serde.Visitor, x T) error {
	switch x := any(x).(type) {
	case int8:
		return v.VisitI8(x)
	case int16:
		return v.VisitI16(x)
	case int32:
		return v.VisitI32(x)
	case int64:
		return v.VisitI64(x)
	case uint8:
		return v.VisitU8(x)
	case uint16:
		return v.VisitU16(x)
	case uint32:
		return v.VisitU32(x)
	default:
		return v.VisitU64(any(x).(uint64))
	}
}

// intDeserializer reads integer and Duration columns.
type intDeserializer[T integer] struct {
	validity buffers.BitsView
	values   []T
}

func newIntDeserializer[T integer](data arrow.ArrayData) (*intDeserializer[T], error) {
	values, err := buffers.Values[T](data, 1, 0, data.Len())
	if err != nil {
		return nil, err
	}
	return &intDeserializer[T]{validity: validityOf(data), values: values}, nil
}

func (d *intDeserializer[T]) length() int { return d.validity.Len() }
func (d *intDeserializer[T]) valid(i int) bool { return d.validity.IsSet(i) }

func (d *intDeserializer[T]) visit(i int, _ hint, v serde.Visitor) error {
	return visitInteger(v, d.values[i])
}

type floatDeserializer[T float32 | float64] struct {
	validity buffers.BitsView
	values   []T
}

func newFloatDeserializer[T float32 | float64](data arrow.ArrayData) (*floatDeserializer[T], error) {
	values, err := buffers.Values[T](data, 1, 0, data.Len())
	if err != nil {
		return nil, err
	}
	return &floatDeserializer[T]{validity: validityOf(data), values: values}, nil
}

func (d *floatDeserializer[T]) length() int { return d.validity.Len() }
func (d *floatDeserializer[T]) valid(i int) bool { return d.validity.IsSet(i) }

func (d *floatDeserializer[T]) visit(i int, _ hint, v serde.Visitor) error {
	switch x := any(d.values[i]).(type) {
	case float32:
		return v.VisitF32(x)
	default:
		return v.VisitF64(any(d.values[i]).(float64))
	}
}

type float16Deserializer struct {
	validity buffers.BitsView
	values   []uint16
}

func newFloat16Deserializer(data arrow.ArrayData) (*float16Deserializer, error) {
	values, err := buffers.Values[uint16](data, 1, 0, data.Len())
	if err != nil {
		return nil, err
	}
	return &float16Deserializer{validity: validityOf(data), values: values}, nil
}

func (d *float16Deserializer) length() int { return d.validity.Len() }
func (d *float16Deserializer) valid(i int) bool { return d.validity.IsSet(i) }

func (d *float16Deserializer) visit(i int, _ hint, v serde.Visitor) error {
	return v.VisitF32(float16.FromBits(d.values[i]).Float32())
}

// decimalDeserializer reads Decimal128 columns. Values are rendered as
// decimal strings unless a float is requested.
type decimalDeserializer struct {
	validity buffers.BitsView
	// lo, hi pairs
	words []uint64
	scale int32
}

func newDecimalDeserializer(data arrow.ArrayData, scale int32) (*decimalDeserializer, error) {
	// Each value spans two words: starting the window at the array offset
	// puts it at twice the offset in words.
	words, err := buffers.Values[uint64](data, 1, data.Offset(), 2*data.Len())
	if err != nil {
		return nil, err
	}
	return &decimalDeserializer{validity: validityOf(data), words: words, scale: scale}, nil
}

func (d *decimalDeserializer) length() int { return d.validity.Len() }
func (d *decimalDeserializer) valid(i int) bool { return d.validity.IsSet(i) }

func (d *decimalDeserializer) visit(i int, h hint, v serde.Visitor) error {
	n := decimal128.New(int64(d.words[2*i+1]), d.words[2*i])
	if h == hintFloat {
		return v.VisitF64(n.ToFloat64(d.scale))
	}
	return v.VisitString(n.ToString(d.scale))
}
