// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package serde

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
)

// recorder logs every event it receives.
type recorder struct {
	events []string
}

func (r *recorder) log(format string, args ...any) error {
	r.events = append(r.events, fmt.Sprintf(format, args...))
	return nil
}

func (r *recorder) Default() error { return r.log("default") }
func (r *recorder) None() error { return r.log("none") }
func (r *recorder) Some(v Serializable) error {
	r.log("some")
	return v.Serialize(r)
}
func (r *recorder) Unit() error { return r.log("unit") }
func (r *recorder) Bool(v bool) error { return r.log("bool %v", v) }
func (r *recorder) I8(v int8) error { return r.log("i8 %d", v) }
func (r *recorder) I16(v int16) error { return r.log("i16 %d", v) }
func (r *recorder) I32(v int32) error { return r.log("i32 %d", v) }
func (r *recorder) I64(v int64) error { return r.log("i64 %d", v) }
func (r *recorder) U8(v uint8) error { return r.log("u8 %d", v) }
func (r *recorder) U16(v uint16) error { return r.log("u16 %d", v) }
func (r *recorder) U32(v uint32) error { return r.log("u32 %d", v) }
func (r *recorder) U64(v uint64) error { return r.log("u64 %d", v) }
func (r *recorder) F32(v float32) error { return r.log("f32 %v", v) }
func (r *recorder) F64(v float64) error { return r.log("f64 %v", v) }
func (r *recorder) Str(v string) error { return r.log("str %s", v) }
func (r *recorder) Bytes(v []byte) error { return r.log("bytes %x", v) }

func (r *recorder) SeqStart(n int) error { return r.log("seq %d", n) }
func (r *recorder) SeqElement(v Serializable) error {
	return v.Serialize(r)
}
func (r *recorder) SeqEnd() error { return r.log("end seq") }
func (r *recorder) TupleStart(n int) error { return r.log("tuple %d", n) }
func (r *recorder) TupleElement(v Serializable) error {
	return v.Serialize(r)
}
func (r *recorder) TupleEnd() error { return r.log("end tuple") }
func (r *recorder) StructStart(name string, n int) error {
	return r.log("struct %s %d", name, n)
}
func (r *recorder) StructField(key string, v Serializable) error {
	r.log("field %s", key)
	return v.Serialize(r)
}
func (r *recorder) StructEnd() error { return r.log("end struct") }
func (r *recorder) MapStart(n int) error { return r.log("map %d", n) }
func (r *recorder) MapKey(v Serializable) error {
	r.log("key")
	return v.Serialize(r)
}
func (r *recorder) MapValue(v Serializable) error {
	r.log("value")
	return v.Serialize(r)
}
func (r *recorder) MapEnd() error { return r.log("end map") }
func (r *recorder) UnitVariant(name string, index uint32, variant string) error {
	return r.log("unit variant %d %s", index, variant)
}
func (r *recorder) NewtypeVariant(name string, index uint32, variant string, v Serializable) error {
	r.log("newtype variant %d %s", index, variant)
	return v.Serialize(r)
}
func (r *recorder) TupleVariantStart(name string, index uint32, variant string, n int) (Serializer, error) {
	r.log("tuple variant %d %s", index, variant)
	return r, r.TupleStart(n)
}
func (r *recorder) StructVariantStart(name string, index uint32, variant string, n int) (Serializer, error) {
	r.log("struct variant %d %s", index, variant)
	return r, r.StructStart("", n)
}

func record(t *testing.T, v Serializable) []string {
	t.Helper()
	var r recorder
	require.NoError(t, v.Serialize(&r))
	return r.events
}

type point struct {
	X int32   `arrow:"x"`
	Y *int64  `arrow:"y"`
	Z float64 `arrow:"-"`
}

type event struct {
	Name   string            `arrow:"name"`
	Points []point           `arrow:"points"`
	Attrs  map[string]uint16 `arrow:"attrs"`
	At     time.Time         `arrow:"at"`
	Local  time.Time         `arrow:"local,naive"`
	Wait   time.Duration     `arrow:"wait"`
	Raw    [2]byte           `arrow:"raw"`
	Any    any               `arrow:"any"`
}

func TestReflectEvents(t *testing.T) {
	y := int64(7)
	ev := event{
		Name:   "e",
		Points: []point{{X: 1, Y: &y}, {X: 2}},
		Attrs:  map[string]uint16{"b": 2, "a": 1},
		At:     time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("x", 3600)),
		Local:  time.Date(2024, 3, 1, 8, 0, 0, 500_000_000, time.UTC),
		Wait:   time.Second,
		Raw:    [2]byte{0xab, 0xcd},
		Any:    []any{int8(1), nil},
	}
	want := []string{
		"struct event 8",
		"field name", "str e",
		"field points", "seq 2",
		"struct point 2", "field x", "i32 1", "field y", "some", "i64 7", "end struct",
		"struct point 2", "field x", "i32 2", "field y", "none", "end struct",
		"end seq",
		"field attrs", "map 2", "key", "str a", "value", "u16 1", "key", "str b", "value", "u16 2", "end map",
		"field at", "str 2024-03-01T11:30:00Z",
		"field local", "str 2024-03-01T08:00:00.5",
		"field wait", "i64 1000000000",
		"field raw", "bytes abcd",
		"field any", "seq 2", "i8 1", "none", "end seq",
		"end struct",
	}
	require.Equal(t, want, record(t, Reflect(ev)))
}

func TestReflectNilValues(t *testing.T) {
	var p *point
	require.Equal(t, []string{"none"}, record(t, Reflect(p)))
	require.Equal(t, []string{"none"}, record(t, Reflect(nil)))

	var s []string
	require.Equal(t, []string{"seq 0", "end seq"}, record(t, Reflect(s)))

	require.Equal(t, []string{"seq 2", "i64 1", "i64 2", "end seq"}, record(t, Sequence([]int{1, 2})))

	err := Reflect(make(chan int)).Serialize(&recorder{})
	require.ErrorIs(t, err, errs.ErrProtocol)
}

func TestDynamicEvents(t *testing.T) {
	v := Record{
		{Name: "a", Value: []any{uint8(1), "x"}},
		{Name: "b", Value: Map{{Key: "k", Value: 1.5}}},
		{Name: "c", Value: Variant{Name: "Unit", Index: 0}},
		{Name: "d", Value: Variant{Name: "Wrapped", Index: 1, Value: int32(3)}},
		{Name: "e", Value: Variant{Name: "Pair", Index: 2, Value: Tuple{true, nil}}},
		{Name: "f", Value: Variant{Name: "Point", Index: 3, Value: Record{{Name: "x", Value: float32(1)}}}},
		{Name: "g", Value: map[string]any{"z": 1, "y": 2}},
	}
	want := []string{
		"struct  7",
		"field a", "seq 2", "u8 1", "str x", "end seq",
		"field b", "map 1", "key", "str k", "value", "f64 1.5", "end map",
		"field c", "unit variant 0 Unit",
		"field d", "newtype variant 1 Wrapped", "i32 3",
		"field e", "tuple variant 2 Pair", "tuple 2", "bool true", "none", "end tuple",
		"field f", "struct variant 3 Point", "struct  1", "field x", "f32 1", "end struct",
		"field g", "map 2", "key", "str y", "value", "i64 2", "key", "str z", "value", "i64 1", "end map",
		"end struct",
	}
	require.Equal(t, want, record(t, Dynamic(v)))
}

func TestRecordGet(t *testing.T) {
	r := Record{{Name: "a", Value: 1}}
	v, ok := r.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	_, ok = r.Get("b")
	require.False(t, ok)
}

func TestParseTime(t *testing.T) {
	ts, err := parseTime("2024-03-01T11:30:00.25Z")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 11, 30, 0, 250_000_000, time.UTC), ts)

	ts, err = parseTime("2024-03-01T11:30:00")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 11, 30, 0, 0, time.UTC), ts)

	ts, err = parseTime("2024-03-01")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ts)

	_, err = parseTime("yesterday")
	require.ErrorIs(t, err, errs.ErrConversion)
}

func TestUnexpectedVisitor(t *testing.T) {
	v := UnexpectedVisitor{Expecting: "a string"}
	err := v.VisitI32(1)
	require.ErrorIs(t, err, errs.ErrProtocol)
	require.Equal(t, "invalid type: i32, expected a string", err.Error())
}

func TestIntoRequiresPointer(t *testing.T) {
	var x int
	require.ErrorIs(t, Into(nil, x), errs.ErrProtocol)
}
