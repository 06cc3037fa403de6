// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
)

func TestDataTypeString(t *testing.T) {
	cases := []struct {
		dt   DataType
		want string
	}{
		{Of(Int32), "Int32"},
		{TimestampOf(arrow.Millisecond, "UTC"), "Timestamp(ms, UTC)"},
		{TimestampOf(arrow.Nanosecond, ""), "Timestamp(ns)"},
		{DataType{Kind: Time64, Unit: arrow.Microsecond}, "Time64(us)"},
		{DecimalOf(10, 2), "Decimal128(10, 2)"},
		{DataType{Kind: FixedSizeBinary, Size: 16}, "FixedSizeBinary(16)"},
		{DictionaryOf(UInt16), "Dictionary(UInt16)"},
		{DataType{Kind: Map, Sorted: true}, "Map(sorted)"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			require.Equal(t, tc.want, tc.dt.String())
			parsed, err := ParseDataType(tc.want)
			require.NoError(t, err)
			require.Equal(t, tc.dt, parsed)
		})
	}
}

func TestParseDataTypeErrors(t *testing.T) {
	for _, s := range []string{"Int33", "Timestamp", "Decimal128(10)", "Int32(1)", "Time32(days)", "Dictionary(Foo)"} {
		_, err := ParseDataType(s)
		require.ErrorIs(t, err, errs.ErrSchema, s)
	}
	dt, err := ParseDataType("dictionary")
	require.NoError(t, err)
	require.Equal(t, DictionaryOf(UInt32), dt)
}

func sampleFields() []Field {
	return []Field{
		Scalar("id", Int64, false),
		Scalar("name", Utf8, true),
		ListOf("tags", Scalar("element", Utf8, false), true),
		StructOf("point", false, Scalar("x", Float64, false), Scalar("y", Float64, false)),
		MapOf("attrs", Scalar("key", Utf8, false), Scalar("value", Int32, true), false),
		UnionOf("shape", Scalar("Circle", Float32, false), Scalar("Label", Utf8, false)),
		DictionaryStringOf("level", UInt8, true),
		{Name: "at", DataType: TimestampOf(arrow.Millisecond, "UTC"), Strategy: UtcStrAsDate64},
		{Name: "price", DataType: DecimalOf(10, 2), Nullable: true},
		FixedSizeListOf("rgb", 3, Scalar("element", UInt8, false), false),
	}
}

func TestArrowRoundTrip(t *testing.T) {
	fields := sampleFields()
	s, err := ToArrowSchema(fields)
	require.NoError(t, err)
	require.Equal(t, len(fields), s.NumFields())

	at := s.Field(7)
	require.Equal(t, "UtcStrAsDate64", at.Metadata.Values()[at.Metadata.FindKey(MetaStrategy)])

	back, err := FieldsFromArrow(s)
	require.NoError(t, err)
	if diff := cmp.Diff(fields, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFromArrowRejectsSparseUnion(t *testing.T) {
	sparse := arrow.SparseUnionOf([]arrow.Field{{Name: "a", Type: arrow.PrimitiveTypes.Int32}}, []arrow.UnionTypeCode{0})
	_, err := FromArrow(arrow.Field{Name: "u", Type: sparse})
	require.ErrorIs(t, err, errs.ErrSchema)
	require.Contains(t, err.Error(), "sparse unions")
}

func TestValidate(t *testing.T) {
	cases := map[string]Field{
		"list without child":   {Name: "l", DataType: Of(List)},
		"scalar with child":    {Name: "i", DataType: Of(Int32), Children: []Field{Scalar("x", Int32, false)}},
		"nullable dict values": {Name: "d", DataType: DictionaryOf(Int32), Children: []Field{Scalar("value", Utf8, true)}},
		"float dict keys":      {Name: "d", DataType: DictionaryOf(Float32), Children: []Field{Scalar("value", Utf8, false)}},
		"strategy mismatch":    {Name: "s", DataType: Of(Int32), Strategy: MapAsStruct},
		"duplicate child":      StructOf("s", false, Scalar("a", Int32, false), Scalar("a", Int32, false)),
		"empty union":          UnionOf("u"),
		"bad precision":        {Name: "d", DataType: DecimalOf(40, 2)},
		"unknown strategy":     {Name: "s", DataType: Of(Struct), Strategy: "Nope"},
		"renamed map key":      MapOf("m", Scalar("k", Utf8, false), Scalar("value", Int32, false), false),
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, f.Validate(), errs.ErrSchema)
		})
	}
	require.NoError(t, Validate(sampleFields()))
	require.Error(t, Validate([]Field{Scalar("a", Int32, false), Scalar("a", Int32, false)}))
}

func TestApplyOverwrites(t *testing.T) {
	fields := sampleFields()
	out, err := ApplyOverwrites(fields, Overwrites{
		"$.point.x": {DataType: Of(Float32)},
		"name":      Scalar("name", LargeUtf8, true),
	})
	require.NoError(t, err)
	require.Equal(t, Of(LargeUtf8), out[1].DataType)
	require.Equal(t, "x", out[3].Children[0].Name)
	require.Equal(t, Of(Float32), out[3].Children[0].DataType)
	require.Equal(t, Of(Float64), fields[3].Children[0].DataType, "input must not be modified")

	_, err = ApplyOverwrites(fields, Overwrites{"$.missing": Scalar("missing", Int8, false)})
	require.ErrorIs(t, err, errs.ErrSchema)
	require.Contains(t, err.Error(), "$.missing")
}

func TestParseFields(t *testing.T) {
	jsonDoc := `{
		"fields": [
			{"name": "a", "data_type": "Int32", "nullable": true},
			{"name": "b", "data_type": "List", "children": [{"name": "element", "data_type": "Utf8"}]}
		],
		"overwrites": {"$.a": {"data_type": "Int64"}}
	}`
	fields, err := ParseFieldsJSON([]byte(jsonDoc))
	require.NoError(t, err)
	require.Equal(t, Of(Int64), fields[0].DataType)
	require.Equal(t, "a", fields[0].Name)
	require.Equal(t, Of(List), fields[1].DataType)

	yamlDoc := `
- name: at
  data_type: Timestamp(ms, UTC)
  strategy: UtcStrAsDate64
- name: level
  data_type: Dictionary(UInt8)
  children:
    - name: value
      data_type: Utf8
`
	fields, err = ParseFieldsYAML([]byte(yamlDoc))
	require.NoError(t, err)
	require.Equal(t, TimestampOf(arrow.Millisecond, "UTC"), fields[0].DataType)
	require.Equal(t, UtcStrAsDate64, fields[0].Strategy)
	require.Equal(t, DictionaryOf(UInt8), fields[1].DataType)

	_, err = ParseFieldsJSON([]byte(`[{"name": "x", "data_type": "Nope"}]`))
	require.Error(t, err)
}

func TestLoadFieldsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fields := sampleFields()

	data, err := MarshalFieldsJSON(fields)
	require.NoError(t, err)
	jsonPath := filepath.Join(dir, "fields.json")
	require.NoError(t, os.WriteFile(jsonPath, data, 0o644))
	loaded, err := LoadFields(jsonPath)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(fields, loaded))

	data, err = MarshalFieldsYAML(fields)
	require.NoError(t, err)
	yamlPath := filepath.Join(dir, "fields.yaml")
	require.NoError(t, os.WriteFile(yamlPath, data, 0o644))
	loaded, err = LoadFields(yamlPath)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(fields, loaded))
}

type address struct {
	City string `arrow:"city"`
	Zip  *string
}

type person struct {
	ID       int64             `arrow:"id"`
	Age      int               `arrow:"age,int32"`
	Name     string            `arrow:"name,large"`
	Email    *string           `arrow:"email"`
	Tags     []string          `arrow:"tags"`
	Scores   map[string]int64  `arrow:"scores"`
	Address  address           `arrow:"address"`
	Created  time.Time         `arrow:"created"`
	Timeout  time.Duration     `arrow:"timeout"`
	Avatar   []byte            `arrow:"avatar"`
	Hash     [4]byte           `arrow:"hash"`
	Level    string            `arrow:"level,enum"`
	Price    string            `arrow:"price,decimal=10:2"`
	Ignored  string            `arrow:"-"`
	internal int
}

func TestFieldsFor(t *testing.T) {
	fields, err := FieldsFor[person](Overwrites{"$.address.city": Scalar("", LargeUtf8, false)})
	require.NoError(t, err)

	want := []Field{
		Scalar("id", Int64, false),
		Scalar("age", Int32, false),
		Scalar("name", LargeUtf8, false),
		Scalar("email", Utf8, true),
		ListOf("tags", Scalar("element", Utf8, false), false),
		MapOf("scores", Scalar("key", Utf8, false), Scalar("value", Int64, false), false),
		StructOf("address", false, Scalar("city", LargeUtf8, false), Scalar("Zip", Utf8, true)),
		{Name: "created", DataType: TimestampOf(arrow.Millisecond, "UTC"), Strategy: UtcStrAsDate64},
		{Name: "timeout", DataType: DataType{Kind: Duration, Unit: arrow.Nanosecond}},
		Scalar("avatar", Binary, false),
		{Name: "hash", DataType: DataType{Kind: FixedSizeBinary, Size: 4}},
		DictionaryStringOf("level", Int16, false),
		{Name: "price", DataType: DecimalOf(10, 2)},
	}
	require.Empty(t, cmp.Diff(want, fields))
	_ = person{}.internal
}

type node struct {
	Next *node
}

func TestFromTypeErrors(t *testing.T) {
	_, err := FieldsFor[int](nil)
	require.ErrorIs(t, err, errs.ErrSchema)

	_, err = FieldsFor[node](nil)
	require.ErrorIs(t, err, errs.ErrSchema)
	require.Contains(t, err.Error(), "recursive")

	_, err = FieldsFor[struct{ C chan int }](nil)
	require.ErrorIs(t, err, errs.ErrSchema)
}
