// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package deserialization

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/internal/serialization"
	"github.com/Query-farm/arrowserde/arrowserde/schema"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

func build(t *testing.T, field schema.Field, values ...any) arrow.Array {
	t.Helper()
	b, err := serialization.New(field, schema.ChildPath(schema.RootPath, field.Name))
	require.NoError(t, err)
	for _, v := range values {
		require.NoError(t, serde.Dynamic(v).Serialize(b))
	}
	arr, err := b.IntoArray()
	require.NoError(t, err)
	t.Cleanup(arr.Release)
	return arr
}

func column(t *testing.T, field schema.Field, arr arrow.Array) *ArrayDeserializer {
	t.Helper()
	d, err := New(field, arr.Data(), schema.ChildPath(schema.RootPath, field.Name))
	require.NoError(t, err)
	return d
}

// readAll decodes every row of d through its cursor.
func readAll(t *testing.T, d *ArrayDeserializer) []any {
	t.Helper()
	var out []any
	for d.Remaining() > 0 {
		v, err := serde.Decode(d)
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func roundTrip(t *testing.T, field schema.Field, values ...any) []any {
	t.Helper()
	return readAll(t, column(t, field, build(t, field, values...)))
}

func TestRoundTripScalars(t *testing.T) {
	tests := []struct {
		name   string
		field  schema.Field
		values []any
	}{
		{"nullable int32", schema.Scalar("x", schema.Int32, true), []any{int32(1), nil, int32(3)}},
		{"uint64", schema.Scalar("x", schema.UInt64, false), []any{uint64(0), uint64(1 << 63)}},
		{"int8", schema.Scalar("x", schema.Int8, true), []any{int8(-128), nil, int8(127)}},
		{"bool", schema.Scalar("x", schema.Bool, true), []any{true, nil, false}},
		{"float32", schema.Scalar("x", schema.Float32, false), []any{float32(1.5), float32(-2)}},
		{"float64", schema.Scalar("x", schema.Float64, true), []any{nil, 3.25}},
		{"utf8", schema.Scalar("x", schema.Utf8, true), []any{"a", nil, "", "héllo"}},
		{"large utf8", schema.Scalar("x", schema.LargeUtf8, false), []any{"x", "yz"}},
		{"binary", schema.Scalar("x", schema.Binary, true), []any{[]byte{1, 2}, nil, []byte{}}},
		{"null", schema.Scalar("x", schema.Null, true), []any{nil, nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, tt.field, tt.values...)
			if diff := cmp.Diff(tt.values, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExhaustionIsFatal(t *testing.T) {
	field := schema.Scalar("x", schema.Int32, true)
	d := column(t, field, build(t, field, int32(1), nil, int32(3)))
	assert.Equal(t, []any{int32(1), nil, int32(3)}, readAll(t, d))

	_, err := serde.Decode(d)
	require.ErrorIs(t, err, errs.ErrExhausted)
	assert.Contains(t, err.Error(), "exhausted deserializer")

	// Direct row access does not move the cursor and still checks bounds.
	v, err := serde.Decode(d.At(0))
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)
	_, err = serde.Decode(d.At(3))
	require.ErrorIs(t, err, errs.ErrExhausted)
}

func TestOptionRequests(t *testing.T) {
	field := schema.Scalar("x", schema.Int64, true)
	d := column(t, field, build(t, field, int64(7), nil))

	var a, b *int64
	require.NoError(t, serde.Into(d, &a))
	require.NoError(t, serde.Into(d, &b))
	require.NotNil(t, a)
	assert.Equal(t, int64(7), *a)
	assert.Nil(t, b)
}

func TestListRows(t *testing.T) {
	field := schema.StructOf("s", false,
		schema.ListOf("a", schema.Scalar("element", schema.Int64, false), true))
	got := roundTrip(t, field,
		serde.Record{{Name: "a", Value: []any{int64(1), int64(2)}}},
		serde.Record{{Name: "a", Value: []any{}}},
		serde.Record{{Name: "a", Value: nil}},
	)
	want := []any{
		serde.Record{{Name: "a", Value: []any{int64(1), int64(2)}}},
		serde.Record{{Name: "a", Value: []any{}}},
		serde.Record{{Name: "a", Value: nil}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestListBytes(t *testing.T) {
	field := schema.ListOf("b", schema.Scalar("element", schema.UInt8, false), false)
	d := column(t, field, build(t, field, []byte("hi")))
	var out []byte
	require.NoError(t, serde.Into(d, &out))
	assert.Equal(t, []byte("hi"), out)
}

func TestFixedSizeListRows(t *testing.T) {
	field := schema.FixedSizeListOf("p", 2, schema.Scalar("element", schema.Int32, false), true)
	got := roundTrip(t, field, []any{int32(1), int32(2)}, nil, []any{int32(5), int32(6)})
	assert.Equal(t, []any{[]any{int32(1), int32(2)}, nil, []any{int32(5), int32(6)}}, got)
}

func TestStructStrategies(t *testing.T) {
	t.Run("tuple as struct", func(t *testing.T) {
		field := schema.StructOf("t", false, schema.Scalar("0", schema.Int32, false), schema.Scalar("1", schema.Utf8, false))
		field.Strategy = schema.TupleAsStruct
		got := roundTrip(t, field, serde.Tuple{int32(1), "a"})
		assert.Equal(t, []any{[]any{int32(1), "a"}}, got)
	})
	t.Run("map as struct", func(t *testing.T) {
		field := schema.StructOf("m", false, schema.Scalar("a", schema.Int32, true))
		field.Strategy = schema.MapAsStruct
		got := roundTrip(t, field, serde.Map{{Key: "a", Value: int32(4)}})
		assert.Equal(t, []any{serde.Map{{Key: "a", Value: int32(4)}}}, got)
	})
}

func TestUnknownVariantColumnIsSkipped(t *testing.T) {
	field := schema.StructOf("s", false,
		schema.Scalar("a", schema.Int32, false),
		schema.Field{Name: "extra", DataType: schema.Of(schema.Null), Nullable: true, Strategy: schema.UnknownVariant},
	)
	got := roundTrip(t, field, serde.Record{{Name: "a", Value: int32(1)}, {Name: "extra", Value: "dropped"}})
	assert.Equal(t, []any{serde.Record{{Name: "a", Value: int32(1)}}}, got)

	unknown := column(t, field.Children[1], build(t, field.Children[1], "x"))
	_, err := serde.Decode(unknown)
	require.ErrorIs(t, err, errs.ErrProtocol)
	assert.Contains(t, err.Error(), "cannot deserialize unknown variant")
}

func TestMapRows(t *testing.T) {
	field := schema.MapOf("m", schema.Scalar("key", schema.Utf8, false), schema.Scalar("value", schema.Int32, true), true)
	got := roundTrip(t, field,
		serde.Map{{Key: "a", Value: int32(1)}, {Key: "b", Value: nil}},
		nil,
		serde.Map{},
	)
	want := []any{
		serde.Map{{Key: "a", Value: int32(1)}, {Key: "b", Value: nil}},
		nil,
		serde.Map{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestUnionRows(t *testing.T) {
	field := schema.UnionOf("u",
		schema.Scalar("Int", schema.Int32, false),
		schema.Scalar("Str", schema.Utf8, false),
		schema.StructOf("Point", false, schema.Scalar("x", schema.Float64, false)),
	)
	values := []any{
		serde.Variant{Name: "Int", Index: 0, Value: int32(5)},
		serde.Variant{Name: "Str", Index: 1, Value: "x"},
		serde.Variant{Name: "Point", Index: 2, Value: serde.Record{{Name: "x", Value: 1.5}}},
		serde.Variant{Name: "Int", Index: 0, Value: int32(6)},
	}
	got := roundTrip(t, field, values...)
	if diff := cmp.Diff(values, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestUnionTypeIDOutOfRange(t *testing.T) {
	field := schema.UnionOf("u", schema.Scalar("Int", schema.Int32, false), schema.Scalar("Str", schema.Utf8, false))
	arr := build(t, field,
		serde.Variant{Name: "Int", Index: 0, Value: int32(5)},
		serde.Variant{Name: "Str", Index: 1, Value: "x"},
	)
	src := arr.Data()
	bad := array.NewData(src.DataType(), src.Len(), []*memory.Buffer{
		nil,
		memory.NewBufferBytes(arrow.GetBytes([]int8{0, 5})),
		src.Buffers()[2],
	}, src.Children(), 0, 0)
	defer bad.Release()

	_, err := New(field, bad, "$.u")
	require.ErrorIs(t, err, errs.ErrSchema)
	assert.Contains(t, err.Error(), "type id 5")
}

func TestUnionOffsetsMayHaveGaps(t *testing.T) {
	field := schema.UnionOf("u", schema.Scalar("Int", schema.Int32, false), schema.Scalar("Str", schema.Utf8, false))
	arr := build(t, field,
		serde.Variant{Name: "Int", Index: 0, Value: int32(5)},
		serde.Variant{Name: "Int", Index: 0, Value: int32(6)},
		serde.Variant{Name: "Str", Index: 1, Value: "x"},
	)
	src := arr.Data()
	gapped := array.NewData(src.DataType(), 2, []*memory.Buffer{
		nil,
		memory.NewBufferBytes(arrow.GetBytes([]int8{0, 1})),
		memory.NewBufferBytes(arrow.GetBytes([]int32{1, 0})),
	}, src.Children(), 0, 0)
	defer gapped.Release()

	d, err := New(field, gapped, "$.u")
	require.NoError(t, err)
	want := []any{
		serde.Variant{Name: "Int", Index: 0, Value: int32(6)},
		serde.Variant{Name: "Str", Index: 1, Value: "x"},
	}
	if diff := cmp.Diff(want, readAll(t, d)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	repeated := array.NewData(src.DataType(), 2, []*memory.Buffer{
		nil,
		memory.NewBufferBytes(arrow.GetBytes([]int8{0, 0})),
		memory.NewBufferBytes(arrow.GetBytes([]int32{1, 1})),
	}, src.Children(), 0, 0)
	defer repeated.Release()
	_, err = New(field, repeated, "$.u")
	require.ErrorIs(t, err, errs.ErrSchema)
	assert.Contains(t, err.Error(), "do not increase")
}

func TestDictionaryRows(t *testing.T) {
	field := schema.DictionaryStringOf("d", schema.UInt16, true)
	got := roundTrip(t, field, "a", "b", nil, "a")
	assert.Equal(t, []any{"a", "b", nil, "a"}, got)
}

func TestDictionaryRejectsNullValues(t *testing.T) {
	field := schema.DictionaryStringOf("d", schema.Int32, false)
	bldr := array.NewStringBuilder(memory.DefaultAllocator)
	defer bldr.Release()
	bldr.Append("a")
	bldr.AppendNull()
	values := bldr.NewStringArray()
	defer values.Release()

	dt := &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int32, ValueType: arrow.BinaryTypes.String}
	data := array.NewDataWithDictionary(dt, 1, []*memory.Buffer{
		nil, memory.NewBufferBytes(arrow.GetBytes([]int32{0})),
	}, 0, 0, values.Data().(*array.Data))
	defer data.Release()

	_, err := New(field, data, "$.d")
	require.ErrorIs(t, err, errs.ErrSchema)
	assert.Contains(t, err.Error(), "must not contain nulls")
}

func TestListLayoutCheck(t *testing.T) {
	field := schema.ListOf("l", schema.Scalar("element", schema.Int32, false), false)
	arr := build(t, field, []any{int32(1), int32(2)}, []any{int32(3)})
	src := arr.Data()
	bad := array.NewData(src.DataType(), 2, []*memory.Buffer{
		nil, memory.NewBufferBytes(arrow.GetBytes([]int32{0, 2, 1})),
	}, src.Children(), 0, 0)
	defer bad.Release()

	_, err := New(field, bad, "$.l")
	require.ErrorIs(t, err, errs.ErrSchema)
	assert.Contains(t, err.Error(), "unsupported list layout")

	t.Run("negative first offset", func(t *testing.T) {
		utf8 := schema.Scalar("s", schema.Utf8, false)
		bad := array.NewData(arrow.BinaryTypes.String, 1, []*memory.Buffer{
			nil,
			memory.NewBufferBytes(arrow.GetBytes([]int32{-1, 1})),
			memory.NewBufferBytes([]byte("ab")),
		}, nil, 0, 0)
		defer bad.Release()

		_, err := New(utf8, bad, "$.s")
		require.ErrorIs(t, err, errs.ErrSchema)
		assert.Contains(t, err.Error(), "first offset is negative")
	})
}

func TestTypeMismatch(t *testing.T) {
	arr := build(t, schema.Scalar("x", schema.Int32, false), int32(1))
	_, err := New(schema.Scalar("x", schema.Int64, false), arr.Data(), "$.x")
	require.ErrorIs(t, err, errs.ErrSchema)
	e := new(errs.Error)
	require.ErrorAs(t, err, &e)
	path, _ := e.Annotation("field")
	assert.Equal(t, "$.x", path)
}

func TestNestedTypeMismatch(t *testing.T) {
	tests := []struct {
		name    string
		written schema.Field
		values  []any
		read    schema.Field
		wantErr string
	}{
		{
			name:    "dictionary key width",
			written: schema.DictionaryStringOf("d", schema.Int32, false),
			values:  []any{"a", "b", "c"},
			read:    schema.DictionaryStringOf("d", schema.Int8, false),
			wantErr: "keys",
		},
		{
			name:    "dictionary value type",
			written: schema.DictionaryStringOf("d", schema.Int32, false),
			values:  []any{"a"},
			read: schema.Field{Name: "d", DataType: schema.DictionaryOf(schema.Int32),
				Children: []schema.Field{schema.Scalar("value", schema.LargeUtf8, false)}},
			wantErr: "values",
		},
		{
			name:    "fixed-size list length",
			written: schema.FixedSizeListOf("p", 3, schema.Scalar("element", schema.Int32, false), false),
			values:  []any{[]any{int32(1), int32(2), int32(3)}, []any{int32(4), int32(5), int32(6)}},
			read:    schema.FixedSizeListOf("p", 2, schema.Scalar("element", schema.Int32, false), false),
			wantErr: "length 2",
		},
		{
			name:    "struct child order",
			written: schema.StructOf("s", false, schema.Scalar("a", schema.Int32, false), schema.Scalar("b", schema.Int32, false)),
			values:  []any{serde.Record{{Name: "a", Value: int32(1)}, {Name: "b", Value: int32(2)}}},
			read:    schema.StructOf("s", false, schema.Scalar("b", schema.Int32, false), schema.Scalar("a", schema.Int32, false)),
			wantErr: `named "b"`,
		},
		{
			name:    "struct child name",
			written: schema.StructOf("s", false, schema.Scalar("a", schema.Int32, false)),
			values:  []any{serde.Record{{Name: "a", Value: int32(1)}}},
			read:    schema.StructOf("s", false, schema.Scalar("z", schema.Int32, false)),
			wantErr: `named "z"`,
		},
		{
			name:    "union variant name",
			written: schema.UnionOf("u", schema.Scalar("Int", schema.Int32, false), schema.Scalar("Str", schema.Utf8, false)),
			values:  []any{serde.Variant{Name: "Int", Index: 0, Value: int32(1)}},
			read:    schema.UnionOf("u", schema.Scalar("Num", schema.Int32, false), schema.Scalar("Str", schema.Utf8, false)),
			wantErr: `named "Num"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arr := build(t, tt.written, tt.values...)
			_, err := New(tt.read, arr.Data(), "$."+tt.read.Name)
			require.ErrorIs(t, err, errs.ErrSchema)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMapEntryNamesAreFixed(t *testing.T) {
	field := schema.MapOf("m", schema.Scalar("key", schema.Utf8, false), schema.Scalar("value", schema.Int32, false), false)
	arr := build(t, field, serde.Map{{Key: "a", Value: int32(1)}})

	renamed := field
	renamed.Children = []schema.Field{{
		Name: "entries", DataType: schema.Of(schema.Struct),
		Children: []schema.Field{schema.Scalar("k", schema.Utf8, false), schema.Scalar("value", schema.Int32, false)},
	}}
	_, err := New(renamed, arr.Data(), "$.m")
	require.ErrorIs(t, err, errs.ErrSchema)
	assert.Contains(t, err.Error(), "named key and value")
}

func TestSlicedArrays(t *testing.T) {
	t.Run("primitive", func(t *testing.T) {
		field := schema.Scalar("x", schema.Int32, true)
		arr := build(t, field, int32(1), nil, int32(3), int32(4))
		sliced := array.NewSlice(arr, 1, 3)
		defer sliced.Release()
		assert.Equal(t, []any{nil, int32(3)}, readAll(t, column(t, field, sliced)))
	})
	t.Run("struct", func(t *testing.T) {
		field := schema.StructOf("s", true, schema.Scalar("a", schema.Utf8, false))
		arr := build(t, field,
			serde.Record{{Name: "a", Value: "x"}},
			serde.Record{{Name: "a", Value: "y"}},
			serde.Record{{Name: "a", Value: "z"}},
		)
		sliced := array.NewSlice(arr, 1, 3)
		defer sliced.Release()
		got := readAll(t, column(t, field, sliced))
		assert.Equal(t, []any{serde.Record{{Name: "a", Value: "y"}}, serde.Record{{Name: "a", Value: "z"}}}, got)
	})
}

func TestTemporalRendering(t *testing.T) {
	assert.Equal(t, "1970-01-01", FormatDate32(0))
	assert.Equal(t, "2024-03-01", FormatDate32(19783))
	assert.Equal(t, "1970-01-01T00:00:01.5Z", FormatDatetime(1500, arrow.Millisecond, true))
	assert.Equal(t, "1970-01-01T00:00:01", FormatDatetime(1, arrow.Second, false))
	assert.Equal(t, "01:02:03.25", FormatTime(3723250, arrow.Millisecond))

	field := schema.Scalar("ts", schema.Date64, false)
	field.Strategy = schema.UtcStrAsDate64
	got := roundTrip(t, field, "2024-01-02T03:04:05Z")
	assert.Equal(t, []any{"2024-01-02T03:04:05Z"}, got)

	date := schema.Scalar("d", schema.Date32, false)
	d := column(t, date, build(t, date, "2024-03-01"))
	var s string
	require.NoError(t, d.At(0).String(stringVisitor{&s}))
	assert.Equal(t, "2024-03-01", s)
}

type stringVisitor struct{ out *string }

func (stringVisitor) fail() error { return errs.Protocolf("expected a string") }

func (v stringVisitor) VisitString(s string) error { *v.out = s; return nil }

func (v stringVisitor) VisitNone() error { return v.fail() }
func (v stringVisitor) VisitSome(serde.Deserializer) error { return v.fail() }
func (v stringVisitor) VisitUnit() error { return v.fail() }
func (v stringVisitor) VisitBool(bool) error { return v.fail() }
func (v stringVisitor) VisitI8(int8) error { return v.fail() }
func (v stringVisitor) VisitI16(int16) error { return v.fail() }
func (v stringVisitor) VisitI32(int32) error { return v.fail() }
func (v stringVisitor) VisitI64(int64) error { return v.fail() }
func (v stringVisitor) VisitU8(uint8) error { return v.fail() }
func (v stringVisitor) VisitU16(uint16) error { return v.fail() }
func (v stringVisitor) VisitU32(uint32) error { return v.fail() }
func (v stringVisitor) VisitU64(uint64) error { return v.fail() }
func (v stringVisitor) VisitF32(float32) error { return v.fail() }
func (v stringVisitor) VisitF64(float64) error { return v.fail() }
func (v stringVisitor) VisitBytes([]byte) error { return v.fail() }
func (v stringVisitor) VisitSeq(serde.SeqAccess) error { return v.fail() }
func (v stringVisitor) VisitMap(serde.MapAccess) error { return v.fail() }
func (v stringVisitor) VisitStruct(serde.MapAccess) error { return v.fail() }
func (v stringVisitor) VisitEnum(serde.EnumAccess) error { return v.fail() }

func TestDecimalRows(t *testing.T) {
	field := schema.New("d", schema.DecimalOf(10, 2))
	field.Nullable = true
	got := roundTrip(t, field, "12.34", nil, -1.5)
	assert.Equal(t, []any{"12.34", nil, "-1.50"}, got)
}

func TestOuterSequence(t *testing.T) {
	fields := []schema.Field{
		schema.Scalar("id", schema.Int64, false),
		schema.Scalar("name", schema.Utf8, true),
	}
	ids := build(t, fields[0], int64(1), int64(2))
	names := build(t, fields[1], "a", nil)

	d, err := NewOuter(fields, []arrow.ArrayData{ids.Data(), names.Data()})
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())

	got, err := serde.Decode(d)
	require.NoError(t, err)
	want := []any{
		serde.Record{{Name: "id", Value: int64(1)}, {Name: "name", Value: "a"}},
		serde.Record{{Name: "id", Value: int64(2)}, {Name: "name", Value: nil}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	err = d.NextRecord(serde.DecodeSeed(new(any)))
	require.ErrorIs(t, err, errs.ErrExhausted)
}

func TestOuterSequenceChecks(t *testing.T) {
	fields := []schema.Field{
		schema.Scalar("a", schema.Int64, false),
		schema.Scalar("b", schema.Int64, false),
	}
	a := build(t, fields[0], int64(1), int64(2))
	b := build(t, fields[1], int64(1))

	_, err := NewOuter(fields, []arrow.ArrayData{a.Data()})
	require.ErrorIs(t, err, errs.ErrSchema)

	_, err = NewOuter(fields, []arrow.ArrayData{a.Data(), b.Data()})
	require.ErrorIs(t, err, errs.ErrSchema)
	assert.Contains(t, err.Error(), "different lengths")
}
