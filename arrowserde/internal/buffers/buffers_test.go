// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package buffers

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
)

func TestBitmapPush(t *testing.T) {
	var b Bitmap
	for _, v := range []bool{true, false, true, true, false, false, false, true, true} {
		b.Push(v)
	}
	require.Equal(t, 9, b.Len())
	require.Equal(t, 5, b.SetCount())
	require.Equal(t, 4, b.UnsetCount())
	require.Equal(t, []byte{0b10001101, 0b00000001}, b.Bytes())

	taken := b.Take()
	require.Equal(t, 9, taken.Len())
	require.Equal(t, 0, b.Len())
	require.Nil(t, b.ValidityBuffer())
}

func TestNilBitmapHasNoNulls(t *testing.T) {
	var b *Bitmap
	require.Nil(t, b.ValidityBuffer())
	require.Equal(t, 0, b.NullCount())
}

func TestBitsViewOffset(t *testing.T) {
	v := NewBitsView([]byte{0b10110100}, 2, 5)
	got := make([]bool, v.Len())
	for i := range got {
		got[i] = v.IsSet(i)
	}
	require.Equal(t, []bool{true, false, true, true, false}, got)
	require.Equal(t, 3, v.CountSet())

	all := BitsView{n: 3}
	require.True(t, all.IsSet(2))
	require.Equal(t, 3, all.CountSet())
	require.False(t, all.HasBitmap())
}

func TestOffsets(t *testing.T) {
	o := NewOffsets[int32]()
	o.StartSeq()
	o.PushElements(1)
	o.PushElements(1)
	require.NoError(t, o.EndSeq())
	o.StartSeq()
	require.NoError(t, o.EndSeq())
	o.PushEmpty()
	require.Equal(t, []int32{0, 2, 2, 2}, o.Values())
	require.Equal(t, 3, o.Len())

	taken := o.Take()
	require.Equal(t, 3, taken.Len())
	require.Equal(t, []int32{0}, o.Values())
}

func TestOffsetsOverflow(t *testing.T) {
	o := NewOffsets[int32]()
	require.NoError(t, o.PushLen(math.MaxInt32))
	err := o.PushLen(1)
	require.ErrorIs(t, err, errs.ErrConversion)

	large := NewOffsets[int64]()
	require.NoError(t, large.PushLen(math.MaxInt32))
	require.NoError(t, large.PushLen(1))
}

func TestBytesAndFixedBytes(t *testing.T) {
	b := NewBytes[int32]()
	require.NoError(t, b.PushString("ab"))
	b.PushEmpty()
	require.NoError(t, b.Push([]byte("c")))
	require.Equal(t, []int32{0, 2, 2, 3}, b.Offsets.Values())
	_, data := b.Buffers()
	require.Equal(t, []byte("abc"), data.Bytes())

	f := NewFixedBytes(2)
	require.NoError(t, f.Push([]byte{1, 2}))
	f.PushZero()
	require.ErrorIs(t, f.Push([]byte{1}), errs.ErrConversion)
	require.Equal(t, 2, f.Len())
	require.Equal(t, []byte{1, 2, 0, 0}, f.Buffer().Bytes())
}

func TestAccessorsRespectArrayOffset(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	bld := array.NewInt32Builder(mem)
	defer bld.Release()
	bld.AppendValues([]int32{1, 2, 3, 4}, []bool{true, false, true, true})
	arr := bld.NewInt32Array()
	defer arr.Release()

	sliced := array.NewSlice(arr, 1, 4)
	defer sliced.Release()

	vals, err := Values[int32](sliced.Data(), 1, 1, 2)
	require.NoError(t, err)
	require.Equal(t, []int32{3, 4}, vals)

	validity := Validity(sliced.Data(), 0, 3)
	require.False(t, validity.IsSet(0))
	require.True(t, validity.IsSet(1))
}

func TestOffsetsOfAndListLayout(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	bld := array.NewStringBuilder(mem)
	defer bld.Release()
	bld.AppendValues([]string{"a", "", "bcd"}, []bool{true, false, true})
	arr := bld.NewStringArray()
	defer arr.Release()

	offs, err := OffsetsOf[int32](arr.Data(), 0, arr.Len())
	require.NoError(t, err)
	require.Equal(t, []int32{0, 1, 1, 4}, offs)
	require.NoError(t, CheckListLayout(offs, Validity(arr.Data(), 0, arr.Len())))
	require.Equal(t, "abcd", string(ValueBytes(arr.Data())))

	require.Error(t, CheckListLayout([]int32{}, BitsView{}))
	require.Error(t, CheckListLayout([]int32{0, 2, 1}, BitsView{n: 2}))
	require.Error(t, CheckListLayout([]int32{0, 1}, BitsView{n: 2}))
	require.ErrorContains(t, CheckListLayout([]int32{-1, 1}, BitsView{n: 1}), "negative")
}

func TestBoolValues(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	bld := array.NewBooleanBuilder(mem)
	defer bld.Release()
	bld.AppendValues([]bool{true, false, true}, nil)
	arr := bld.NewBooleanArray()
	defer arr.Release()

	v := BoolValues(arr.Data(), 1, 2)
	require.False(t, v.IsSet(0))
	require.True(t, v.IsSet(1))
}

func TestCursor(t *testing.T) {
	c := NewCursor(2)
	i, err := c.Next()
	require.NoError(t, err)
	require.Equal(t, 0, i)
	_, ok := c.Peek()
	require.True(t, ok)
	_, err = c.Next()
	require.NoError(t, err)
	_, ok = c.Peek()
	require.False(t, ok)
	_, err = c.Next()
	require.ErrorIs(t, err, errs.ErrExhausted)
	require.Equal(t, 0, c.Remaining())
}
