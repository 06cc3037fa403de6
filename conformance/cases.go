// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/Query-farm/arrowserde/arrowserde/schema"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

func row(kv ...any) serde.Record {
	r := make(serde.Record, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		r = append(r, serde.Field{Name: kv[i].(string), Value: kv[i+1]})
	}
	return r
}

func rows(rs ...serde.Record) []any {
	out := make([]any, len(rs))
	for i, r := range rs {
		out[i] = r
	}
	return out
}

func ptr[T any](v T) *T { return &v }

// Catalogue returns every conformance case.
func Catalogue() []Case {
	return []Case{
		primitives(),
		float16s(),
		stringsAndBinaries(),
		fixedSizeBinary(),
		binaryFromSequence(),
		temporals(),
		decimals(),
		nulls(),
		lists(),
		fixedSizeLists(),
		structs(),
		tupleStructs(),
		mapStructs(),
		maps(),
		unions(),
		dictionaries(),
		unknownVariants(),
		typedCase("typed_point", "flat struct", []Point{{X: 1, Y: 2}, {X: -0.5, Y: 1e10}}),
		typedCase("typed_bounding_box", "nested structs", []BoundingBox{
			{TopLeft: Point{X: 0, Y: 10}, BottomRight: Point{X: 10, Y: 0}, Label: "square"},
			{Label: "empty"},
		}),
		typedCase("typed_task", "enum and UTC timestamp", []Task{
			{ID: 1, Status: StatusPending, Created: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
			{ID: 2, Status: StatusClosed, Created: time.Date(1999, 12, 31, 23, 59, 59, 250_000_000, time.UTC)},
		}),
		typedCase("typed_all_types", "every traced Go type", []AllTypes{allTypesSample(), {Price: "0.00"}}),
	}
}

func primitives() Case {
	fields := []schema.Field{
		schema.Scalar("b", schema.Bool, false),
		schema.Scalar("i8", schema.Int8, false),
		schema.Scalar("i16", schema.Int16, false),
		schema.Scalar("i32", schema.Int32, true),
		schema.Scalar("i64", schema.Int64, false),
		schema.Scalar("u8", schema.UInt8, false),
		schema.Scalar("u16", schema.UInt16, false),
		schema.Scalar("u32", schema.UInt32, false),
		schema.Scalar("u64", schema.UInt64, true),
		schema.Scalar("f32", schema.Float32, false),
		schema.Scalar("f64", schema.Float64, true),
	}
	return dynamicCase("primitives", "booleans, integers and floats with nulls", fields, rows(
		row("b", true, "i8", int8(-128), "i16", int16(32767), "i32", int32(-1), "i64", int64(1)<<40,
			"u8", uint8(255), "u16", uint16(1), "u32", uint32(4_000_000_000), "u64", uint64(1)<<63,
			"f32", float32(0.25), "f64", 3.5),
		row("b", false, "i8", int8(0), "i16", int16(-32768), "i32", nil, "i64", int64(-7),
			"u8", uint8(0), "u16", uint16(65535), "u32", uint32(0), "u64", nil,
			"f32", float32(-1), "f64", nil),
	), nil)
}

func float16s() Case {
	fields := []schema.Field{schema.Scalar("h", schema.Float16, true)}
	return dynamicCase("float16", "half-precision floats decode as float32", fields,
		rows(row("h", float32(1.5)), row("h", nil), row("h", float32(-2))),
		nil)
}

func stringsAndBinaries() Case {
	fields := []schema.Field{
		schema.Scalar("s", schema.Utf8, true),
		schema.Scalar("ls", schema.LargeUtf8, false),
		schema.Scalar("bin", schema.Binary, true),
		schema.Scalar("lbin", schema.LargeBinary, false),
	}
	return dynamicCase("strings_and_binaries", "32- and 64-bit offset byte columns", fields, rows(
		row("s", "héllo", "ls", "", "bin", []byte{0, 1, 2}, "lbin", []byte("large")),
		row("s", nil, "ls", "wörld", "bin", nil, "lbin", []byte{}),
		row("s", "", "ls", "x", "bin", []byte{}, "lbin", []byte{0xff}),
	), nil)
}

func fixedSizeBinary() Case {
	fields := []schema.Field{{Name: "digest", DataType: schema.DataType{Kind: schema.FixedSizeBinary, Size: 4}, Nullable: true}}
	return dynamicCase("fixed_size_binary", "fixed-width byte strings", fields,
		rows(row("digest", []byte{1, 2, 3, 4}), row("digest", nil), row("digest", []byte("abcd"))),
		nil)
}

func binaryFromSequence() Case {
	fields := []schema.Field{schema.Scalar("b", schema.Binary, false)}
	return dynamicCase("binary_from_sequence", "byte columns accept sequences of u8", fields,
		rows(row("b", []any{uint8(104), uint8(105)}), row("b", []any{})),
		rows(row("b", []byte("hi")), row("b", []byte{})))
}

func temporals() Case {
	fields := []schema.Field{
		schema.Scalar("day", schema.Date32, false),
		{Name: "naive", DataType: schema.Of(schema.Date64), Strategy: schema.NaiveStrAsDate64},
		{Name: "utc", DataType: schema.TimestampOf(arrow.Millisecond, "UTC"), Strategy: schema.UtcStrAsDate64, Nullable: true},
		schema.New("ms", schema.Of(schema.Date64)),
		schema.New("t32", schema.DataType{Kind: schema.Time32, Unit: arrow.Second}),
		schema.New("t64", schema.DataType{Kind: schema.Time64, Unit: arrow.Microsecond}),
		schema.New("dur", schema.DataType{Kind: schema.Duration, Unit: arrow.Millisecond}),
	}
	in := rows(
		row("day", "2024-03-01", "naive", "2024-03-01T12:30:00", "utc", "2024-03-01T12:30:00.5Z",
			"ms", int64(86_400_000), "t32", "12:30:00", "t64", "08:15:30.25", "dur", int64(1500)),
		row("day", int32(0), "naive", "1970-01-01T00:00:00", "utc", nil,
			"ms", int64(0), "t32", int32(1), "t64", int64(0), "dur", int64(-1)),
	)
	want := rows(
		row("day", int32(19783), "naive", "2024-03-01T12:30:00", "utc", "2024-03-01T12:30:00.5Z",
			"ms", int64(86_400_000), "t32", int32(45_000), "t64", int64(29_730_250_000), "dur", int64(1500)),
		row("day", int32(0), "naive", "1970-01-01T00:00:00", "utc", nil,
			"ms", int64(0), "t32", int32(1), "t64", int64(0), "dur", int64(-1)),
	)
	return dynamicCase("temporal", "dates, timestamps, times and durations", fields, in, want)
}

func decimals() Case {
	fields := []schema.Field{{Name: "price", DataType: schema.DecimalOf(10, 2), Nullable: true}}
	return dynamicCase("decimal128", "decimal strings, floats and integers", fields,
		rows(row("price", "12.34"), row("price", nil), row("price", -1.5), row("price", int64(7))),
		rows(row("price", "12.34"), row("price", nil), row("price", "-1.50"), row("price", "7.00")))
}

func nulls() Case {
	fields := []schema.Field{schema.Scalar("n", schema.Null, true), schema.Scalar("id", schema.Int64, false)}
	return dynamicCase("null", "all-null columns", fields,
		rows(row("n", nil, "id", int64(1)), row("n", nil, "id", int64(2))),
		nil)
}

func lists() Case {
	point := schema.StructOf("element", false, schema.Scalar("x", schema.Float64, false), schema.Scalar("y", schema.Float64, false))
	fields := []schema.Field{
		schema.ListOf("ints", schema.Scalar("element", schema.Int64, false), false),
		schema.LargeListOf("strs", schema.Scalar("element", schema.Utf8, true), true),
		schema.ListOf("points", point, true),
		schema.ListOf("nested", schema.ListOf("element", schema.Scalar("element", schema.Int32, false), false), false),
	}
	return dynamicCase("lists", "list, large list, list of struct and list of list", fields, rows(
		row("ints", []any{int64(1), int64(2), int64(3)}, "strs", []any{"a", nil},
			"points", []any{row("x", 1.0, "y", 2.0)}, "nested", []any{[]any{int32(1)}, []any{}}),
		row("ints", []any{}, "strs", nil, "points", nil, "nested", []any{}),
		row("ints", []any{int64(-1)}, "strs", []any{}, "points", []any{}, "nested", []any{[]any{int32(2), int32(3)}}),
	), nil)
}

func fixedSizeLists() Case {
	fields := []schema.Field{schema.FixedSizeListOf("pair", 2, schema.Scalar("element", schema.Float64, true), true)}
	return dynamicCase("fixed_size_list", "fixed-length lists with null rows and elements", fields,
		rows(row("pair", []any{1.0, nil}), row("pair", nil), row("pair", []any{3.0, 4.0})),
		nil)
}

func structs() Case {
	point := func(name string, nullable bool) schema.Field {
		return schema.StructOf(name, nullable, schema.Scalar("x", schema.Float64, false), schema.Scalar("y", schema.Float64, false))
	}
	fields := []schema.Field{
		schema.StructOf("box", false, point("top_left", false), point("bottom_right", true), schema.Scalar("label", schema.Utf8, false)),
	}
	return dynamicCase("structs", "nested and nullable structs", fields, rows(
		row("box", row("top_left", row("x", 0.0, "y", 1.0), "bottom_right", row("x", 1.0, "y", 0.0), "label", "a")),
		row("box", row("top_left", row("x", 2.0, "y", 3.0), "bottom_right", nil, "label", "b")),
	), nil)
}

func tupleStructs() Case {
	pair := schema.StructOf("pair", false, schema.Scalar("0", schema.Int64, false), schema.Scalar("1", schema.Utf8, true))
	pair.Strategy = schema.TupleAsStruct
	return dynamicCase("tuple_as_struct", "tuples stored positionally in struct columns", []schema.Field{pair},
		rows(row("pair", serde.Tuple{int64(1), "one"}), row("pair", serde.Tuple{int64(2), nil})),
		rows(row("pair", []any{int64(1), "one"}), row("pair", []any{int64(2), nil})))
}

func mapStructs() Case {
	attrs := schema.StructOf("attrs", false, schema.Scalar("color", schema.Utf8, true), schema.Scalar("size", schema.Int32, false))
	attrs.Strategy = schema.MapAsStruct
	return dynamicCase("map_as_struct", "string-keyed maps stored in struct columns", []schema.Field{attrs},
		rows(row("attrs", map[string]any{"size": int32(3), "color": "red"}), row("attrs", serde.Map{{Key: "size", Value: int32(1)}})),
		rows(
			row("attrs", serde.Map{{Key: "color", Value: "red"}, {Key: "size", Value: int32(3)}}),
			row("attrs", serde.Map{{Key: "color", Value: nil}, {Key: "size", Value: int32(1)}}),
		))
}

func maps() Case {
	fields := []schema.Field{
		schema.MapOf("counts", schema.Scalar("key", schema.Utf8, false), schema.Scalar("value", schema.Int64, true), true),
		schema.MapOf("ids", schema.Scalar("key", schema.Int32, false), schema.Scalar("value", schema.Utf8, false), false),
	}
	return dynamicCase("maps", "maps with string and integer keys", fields, rows(
		row("counts", serde.Map{{Key: "a", Value: int64(1)}, {Key: "b", Value: nil}}, "ids", serde.Map{{Key: int32(7), Value: "seven"}}),
		row("counts", nil, "ids", serde.Map{}),
		row("counts", serde.Map{}, "ids", serde.Map{{Key: int32(1), Value: "one"}, {Key: int32(2), Value: "two"}}),
	), nil)
}

func unions() Case {
	fields := []schema.Field{schema.UnionOf("shape",
		schema.Scalar("Empty", schema.Null, true),
		schema.StructOf("Circle", false, schema.Scalar("r", schema.Float64, false)),
		schema.Scalar("Label", schema.Utf8, false),
	)}
	return dynamicCase("dense_union", "unit, struct and newtype variants", fields, rows(
		row("shape", serde.Variant{Name: "Circle", Index: 1, Value: row("r", 1.5)}),
		row("shape", serde.Variant{Name: "Empty", Index: 0}),
		row("shape", serde.Variant{Name: "Label", Index: 2, Value: "x"}),
		row("shape", serde.Variant{Name: "Circle", Index: 1, Value: row("r", 2.5)}),
	), nil)
}

func dictionaries() Case {
	fields := []schema.Field{
		schema.DictionaryStringOf("color", schema.Int8, true),
		schema.DictionaryStringOf("size", schema.UInt32, false),
	}
	return dynamicCase("dictionary", "dictionary-encoded strings", fields, rows(
		row("color", "red", "size", "S"),
		row("color", nil, "size", "M"),
		row("color", "red", "size", "S"),
		row("color", "blue", "size", "L"),
	), nil)
}

func unknownVariants() Case {
	fields := []schema.Field{
		schema.Scalar("id", schema.Int64, false),
		{Name: "legacy", DataType: schema.Of(schema.Null), Nullable: true, Strategy: schema.UnknownVariant},
	}
	return dynamicCase("unknown_variant", "placeholder columns discard values and are skipped on decode", fields,
		rows(row("id", int64(1), "legacy", "dropped"), row("id", int64(2), "legacy", []any{int64(1)})),
		rows(row("id", int64(1)), row("id", int64(2))))
}

func allTypesSample() AllTypes {
	return AllTypes{
		StrField:       "hello",
		BytesField:     []byte{0xde, 0xad},
		IntField:       -42,
		FloatField:     2.75,
		BoolField:      true,
		ListOfInt:      []int64{1, 2, 3},
		ListOfStr:      []string{"a", "b"},
		DictField:      map[string]int64{"one": 1, "two": 2},
		EnumField:      StatusActive,
		NestedPoint:    Point{X: 1, Y: -1},
		OptionalStr:    ptr("maybe"),
		OptionalInt:    ptr(int64(9)),
		OptionalNested: &Point{X: 3, Y: 4},
		ListOfNested:   []Point{{X: 5, Y: 6}},
		AnnotatedInt32: 123,
		AnnotatedFloat: 0.5,
		NestedList:     [][]int64{{1}, {}, {2, 3}},
		DictStrStr:     map[string]string{"k": "v"},
		Digest:         [4]byte{1, 2, 3, 4},
		Pair:           [2]int16{-1, 1},
		Elapsed:        1500 * time.Millisecond,
		Price:          "19.99",
	}
}
