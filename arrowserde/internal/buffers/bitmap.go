// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package buffers contains the owned and borrowed buffer primitives the
// builders write into and the deserializers read from.
package buffers

import (
	"github.com/apache/arrow-go/v18/arrow/bitutil"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Bitmap is an append-only, LSB-ordered bitmap. It backs validity buffers
// and the values of boolean columns.
type Bitmap struct {
	bits []byte
	n    int
	set  int
}

// Push appends one bit.
func (b *Bitmap) Push(v bool) {
	if b.n%8 == 0 {
		b.bits = append(b.bits, 0)
	}
	if v {
		bitutil.SetBit(b.bits, b.n)
		b.set++
	}
	b.n++
}

// Len returns the number of bits pushed.
func (b *Bitmap) Len() int { return b.n }

// SetCount returns the number of 1 bits.
func (b *Bitmap) SetCount() int { return b.set }

// UnsetCount returns the number of 0 bits; for a validity bitmap this is
// the null count.
func (b *Bitmap) UnsetCount() int { return b.n - b.set }

// Bytes returns the packed bits.
func (b *Bitmap) Bytes() []byte { return b.bits }

// Take returns the accumulated bitmap and resets b.
func (b *Bitmap) Take() Bitmap {
	t := *b
	*b = Bitmap{}
	return t
}

// Buffer wraps the bits without copying.
func (b *Bitmap) Buffer() *memory.Buffer {
	return memory.NewBufferBytes(b.bits)
}

// ValidityBuffer returns the buffer to use as a validity bitmap. A nil
// bitmap or one without nulls yields a nil buffer.
func (b *Bitmap) ValidityBuffer() *memory.Buffer {
	if b == nil || b.UnsetCount() == 0 {
		return nil
	}
	return b.Buffer()
}

// NullCount is UnsetCount, tolerating a nil bitmap.
func (b *Bitmap) NullCount() int {
	if b == nil {
		return 0
	}
	return b.UnsetCount()
}

// BitsView is a borrowed window onto a packed bitmap. A view without bytes
// reports every bit as set.
type BitsView struct {
	data   []byte
	offset int
	n      int
}

// NewBitsView returns a view of n bits starting at bit offset.
func NewBitsView(data []byte, offset, n int) BitsView {
	return BitsView{data: data, offset: offset, n: n}
}

// Len returns the number of bits in the view.
func (v BitsView) Len() int { return v.n }

// HasBitmap reports whether the view is backed by bytes.
func (v BitsView) HasBitmap() bool { return v.data != nil }

// IsSet tests bit i of the view.
func (v BitsView) IsSet(i int) bool {
	if v.data == nil {
		return true
	}
	return bitutil.BitIsSet(v.data, v.offset+i)
}

// CountSet returns the number of set bits in the view.
func (v BitsView) CountSet() int {
	if v.data == nil {
		return v.n
	}
	return bitutil.CountSetBits(v.data, v.offset, v.n)
}
