// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package deserialization

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/Query-farm/arrowserde/arrowserde/internal/buffers"
	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/schema"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// dictionaryDeserializer reads string Dictionary columns. Row i is the
// dictionary value at the index stored in row i.
type dictionaryDeserializer struct {
	validity buffers.BitsView
	indices  []int
	values   []string
}

func newDictionaryDeserializer(field schema.Field, data arrow.ArrayData) (*dictionaryDeserializer, error) {
	dict := data.Dictionary()
	if dict == nil {
		return nil, errs.Schemaf("dictionary array has no dictionary")
	}
	if dict.NullN() != 0 {
		return nil, errs.Schemaf("dictionary values must not contain nulls, found %d", dict.NullN())
	}
	values, err := dictionaryValues(dict)
	if err != nil {
		return nil, err
	}
	indices, err := dictionaryIndices(field.DataType.Index, data)
	if err != nil {
		return nil, err
	}
	d := &dictionaryDeserializer{validity: validityOf(data), indices: indices, values: values}
	for i, idx := range indices {
		if d.validity.IsSet(i) && (idx < 0 || idx >= len(values)) {
			return nil, errs.Schemaf("row %d has dictionary index %d, dictionary holds %d values", i, idx, len(values))
		}
	}
	return d, nil
}

func dictionaryValues(dict arrow.ArrayData) ([]string, error) {
	var out []string
	switch dict.DataType().ID() {
	case arrow.STRING:
		r, err := newByteRanges[int32](dict)
		if err != nil {
			return nil, err
		}
		for i := 0; i < r.length(); i++ {
			out = append(out, string(r.at(i)))
		}
	case arrow.LARGE_STRING:
		r, err := newByteRanges[int64](dict)
		if err != nil {
			return nil, err
		}
		for i := 0; i < r.length(); i++ {
			out = append(out, string(r.at(i)))
		}
	default:
		return nil, errs.Schemaf("dictionary values must be Utf8 or LargeUtf8, got %s", dict.DataType())
	}
	return out, nil
}

func dictionaryIndices(kind schema.Kind, data arrow.ArrayData) ([]int, error) {
	switch kind {
	case schema.Int8:
		return widen[int8](data)
	case schema.Int16:
		return widen[int16](data)
	case schema.Int32:
		return widen[int32](data)
	case schema.Int64:
		return widen[int64](data)
	case schema.UInt8:
		return widen[uint8](data)
	case schema.UInt16:
		return widen[uint16](data)
	case schema.UInt32:
		return widen[uint32](data)
	case schema.UInt64:
		return widen[uint64](data)
	}
	return nil, errs.Schemaf("dictionary index must be an integer type, got %s", kind)
}

func widen[T integer](data arrow.ArrayData) ([]int, error) {
	raw, err := buffers.Values[T](data, 1, 0, data.Len())
	if err != nil {
		return nil, err
	}
	out := make([]int, len(raw))
	for i, v := range raw {
		if uint64(v) > uint64(^uint(0)>>1) && v > 0 {
			out[i] = -1
			continue
		}
		out[i] = int(v)
	}
	return out, nil
}

func (d *dictionaryDeserializer) length() int { return d.validity.Len() }
func (d *dictionaryDeserializer) valid(i int) bool { return d.validity.IsSet(i) }

func (d *dictionaryDeserializer) visit(i int, h hint, v serde.Visitor) error {
	s := d.values[d.indices[i]]
	switch h {
	case hintEnum:
		return v.VisitEnum(unitEnum{name: s})
	case hintBytes:
		return v.VisitBytes([]byte(s))
	default:
		return v.VisitString(s)
	}
}
