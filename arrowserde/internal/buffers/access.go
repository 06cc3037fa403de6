// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package buffers

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
)

// The accessors below address a window [start, start+n) of an array's
// logical elements. The array's own offset is added to start.

// Validity returns the validity view for a window of data. Arrays without
// nulls yield a view without bytes.
func Validity(data arrow.ArrayData, start, n int) BitsView {
	bufs := data.Buffers()
	if len(bufs) == 0 || bufs[0] == nil || data.NullN() == 0 {
		return BitsView{n: n}
	}
	return NewBitsView(bufs[0].Bytes(), data.Offset()+start, n)
}

// BoolValues returns the view of a boolean array's value bits.
func BoolValues(data arrow.ArrayData, start, n int) BitsView {
	bufs := data.Buffers()
	if len(bufs) < 2 || bufs[1] == nil {
		return NewBitsView(make([]byte, (n+7)/8), 0, n)
	}
	return NewBitsView(bufs[1].Bytes(), data.Offset()+start, n)
}

// Values returns the fixed-width values stored in buffer index buf.
func Values[T arrow.FixedWidthType](data arrow.ArrayData, buf, start, n int) ([]T, error) {
	if n == 0 {
		return nil, nil
	}
	bufs := data.Buffers()
	if len(bufs) <= buf || bufs[buf] == nil {
		return nil, errs.Schemaf("array of type %s has no buffer %d", data.DataType(), buf)
	}
	all := arrow.GetData[T](bufs[buf].Bytes())
	lo := data.Offset() + start
	if lo+n > len(all) {
		return nil, errs.Schemaf("buffer %d of %s holds %d values, need %d", buf, data.DataType(), len(all), lo+n)
	}
	return all[lo : lo+n], nil
}

// OffsetsOf returns the n+1 offsets of a variable-length window.
func OffsetsOf[O Offset](data arrow.ArrayData, start, n int) ([]O, error) {
	bufs := data.Buffers()
	if len(bufs) < 2 || bufs[1] == nil {
		if n == 0 {
			return []O{0}, nil
		}
		return nil, errs.Schemaf("array of type %s has no offsets buffer", data.DataType())
	}
	all := arrow.GetData[O](bufs[1].Bytes())
	lo := data.Offset() + start
	if lo+n+1 > len(all) {
		return nil, errs.Schemaf("offsets buffer of %s holds %d entries, need %d", data.DataType(), len(all), lo+n+1)
	}
	return all[lo : lo+n+1], nil
}

// ValueBytes returns the data buffer of a utf8 or binary array.
func ValueBytes(data arrow.ArrayData) []byte {
	bufs := data.Buffers()
	if len(bufs) < 3 || bufs[2] == nil {
		return nil
	}
	return bufs[2].Bytes()
}

// CheckListLayout verifies that offsets cover exactly one slot per validity
// bit, start at a non-negative position and never decrease.
func CheckListLayout[O Offset](offsets []O, validity BitsView) error {
	if len(offsets) == 0 {
		return errs.Schemaf("unsupported list layout: offsets must contain at least one entry")
	}
	if len(offsets) != validity.Len()+1 {
		return errs.Schemaf("unsupported list layout: %d offsets for %d elements", len(offsets), validity.Len())
	}
	if offsets[0] < 0 {
		return errs.Schemaf("unsupported list layout: first offset is negative (%d)", offsets[0])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] < offsets[i-1] {
			return errs.Schemaf("unsupported list layout: offsets decrease at position %d (%d < %d)", i, offsets[i], offsets[i-1])
		}
	}
	return nil
}
