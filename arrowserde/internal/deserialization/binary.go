// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package deserialization

import (
	"unicode/utf8"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/Query-farm/arrowserde/arrowserde/internal/buffers"
	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// byteRanges addresses the values of a utf8 or binary column.
type byteRanges[O buffers.Offset] struct {
	validity buffers.BitsView
	offsets  []O
	data     []byte
}

func newByteRanges[O buffers.Offset](data arrow.ArrayData) (byteRanges[O], error) {
	offsets, err := buffers.OffsetsOf[O](data, 0, data.Len())
	if err != nil {
		return byteRanges[O]{}, err
	}
	validity := validityOf(data)
	if err := buffers.CheckListLayout(offsets, validity); err != nil {
		return byteRanges[O]{}, err
	}
	values := buffers.ValueBytes(data)
	if last := int(offsets[len(offsets)-1]); last > len(values) {
		return byteRanges[O]{}, errs.Schemaf("offsets end at %d but the data buffer holds %d bytes", last, len(values))
	}
	return byteRanges[O]{validity: validity, offsets: offsets, data: values}, nil
}

func (r *byteRanges[O]) length() int { return r.validity.Len() }
func (r *byteRanges[O]) valid(i int) bool { return r.validity.IsSet(i) }

func (r *byteRanges[O]) at(i int) []byte {
	return r.data[r.offsets[i]:r.offsets[i+1]]
}

// utf8Deserializer reads Utf8 and LargeUtf8 columns. Enum requests see the
// string as the name of a unit variant.
type utf8Deserializer[O buffers.Offset] struct {
	byteRanges[O]
}

func newUtf8Deserializer[O buffers.Offset](data arrow.ArrayData) (*utf8Deserializer[O], error) {
	r, err := newByteRanges[O](data)
	if err != nil {
		return nil, err
	}
	return &utf8Deserializer[O]{r}, nil
}

func (d *utf8Deserializer[O]) visit(i int, h hint, v serde.Visitor) error {
	b := d.at(i)
	switch h {
	case hintBytes:
		return v.VisitBytes(b)
	case hintEnum:
		return v.VisitEnum(unitEnum{name: string(b)})
	default:
		return v.VisitString(string(b))
	}
}

// binaryDeserializer reads Binary and LargeBinary columns. Sequence
// requests see the value as a sequence of u8.
type binaryDeserializer[O buffers.Offset] struct {
	byteRanges[O]
}

func newBinaryDeserializer[O buffers.Offset](data arrow.ArrayData) (*binaryDeserializer[O], error) {
	r, err := newByteRanges[O](data)
	if err != nil {
		return nil, err
	}
	return &binaryDeserializer[O]{r}, nil
}

func (d *binaryDeserializer[O]) visit(i int, h hint, v serde.Visitor) error {
	return visitBytes(d.at(i), h, v)
}

func visitBytes(b []byte, h hint, v serde.Visitor) error {
	switch h {
	case hintSeq, hintTuple:
		return v.VisitSeq(&byteSeqAccess{data: b})
	case hintString:
		if !utf8.Valid(b) {
			return errs.Conversionf("binary value is not valid UTF-8")
		}
		return v.VisitString(string(b))
	default:
		return v.VisitBytes(b)
	}
}

type fixedSizeBinaryDeserializer struct {
	validity buffers.BitsView
	width    int
	data     []byte
}

func newFixedSizeBinaryDeserializer(data arrow.ArrayData, width int) (*fixedSizeBinaryDeserializer, error) {
	var values []byte
	if bufs := data.Buffers(); len(bufs) > 1 && bufs[1] != nil {
		values = bufs[1].Bytes()
	}
	lo, hi := data.Offset()*width, (data.Offset()+data.Len())*width
	if hi > len(values) {
		return nil, errs.Schemaf("fixed-size binary of %d values needs %d bytes, buffer holds %d", data.Len(), hi, len(values))
	}
	return &fixedSizeBinaryDeserializer{validity: validityOf(data), width: width, data: values[lo:hi]}, nil
}

func (d *fixedSizeBinaryDeserializer) length() int { return d.validity.Len() }
func (d *fixedSizeBinaryDeserializer) valid(i int) bool { return d.validity.IsSet(i) }

func (d *fixedSizeBinaryDeserializer) visit(i int, h hint, v serde.Visitor) error {
	return visitBytes(d.data[i*d.width:(i+1)*d.width], h, v)
}

// byteSeqAccess yields the bytes of a binary value as u8 elements.
type byteSeqAccess struct {
	data []byte
	pos  int
}

func (a *byteSeqAccess) NextElement(seed serde.Seed) (bool, error) {
	if a.pos >= len(a.data) {
		return false, nil
	}
	b := a.data[a.pos]
	a.pos++
	return true, seed.Deserialize(valueDeserializer(func(v serde.Visitor) error { return v.VisitU8(b) }))
}

func (a *byteSeqAccess) Remaining() (int, bool) { return len(a.data) - a.pos, true }
