// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrowserde_test

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/arrowserde/arrowserde"
	"github.com/Query-farm/arrowserde/arrowserde/schema"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

func records(rows ...serde.Record) serde.Serializable {
	items := make([]any, len(rows))
	for i, r := range rows {
		items[i] = r
	}
	return serde.Dynamic(items)
}

func TestNullableIntScenario(t *testing.T) {
	fields := []schema.Field{schema.Scalar("x", schema.Int32, true)}
	arrays, err := arrowserde.ToArrays(fields, records(
		serde.Record{{Name: "x", Value: int32(1)}},
		serde.Record{{Name: "x", Value: nil}},
		serde.Record{{Name: "x", Value: int32(3)}},
	))
	require.NoError(t, err)
	defer arrays[0].Release()

	ints := arrays[0].(*array.Int32)
	assert.True(t, ints.IsValid(0))
	assert.True(t, ints.IsNull(1))
	assert.True(t, ints.IsValid(2))
	assert.Equal(t, int32(1), ints.Value(0))
	assert.Equal(t, int32(3), ints.Value(2))

	got, err := arrowserde.Decode(fields, arrays)
	require.NoError(t, err)
	want := []any{
		serde.Record{{Name: "x", Value: int32(1)}},
		serde.Record{{Name: "x", Value: nil}},
		serde.Record{{Name: "x", Value: int32(3)}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestListScenario(t *testing.T) {
	fields := []schema.Field{schema.ListOf("a", schema.Scalar("element", schema.Int64, false), false)}
	batch, err := arrowserde.ToRecordBatch(fields, records(
		serde.Record{{Name: "a", Value: []any{int64(1), int64(2)}}},
		serde.Record{{Name: "a", Value: []any{}}},
	))
	require.NoError(t, err)
	defer batch.Release()

	assert.Equal(t, []int32{0, 2, 2}, batch.Column(0).(*array.List).Offsets())

	got, err := arrowserde.Decode(fields, batch.Columns())
	require.NoError(t, err)
	require.Len(t, got, 2)
	second, _ := got[1].(serde.Record).Get("a")
	assert.Equal(t, []any{}, second)
}

func TestUnionScenario(t *testing.T) {
	fields := []schema.Field{schema.UnionOf("v",
		schema.Scalar("Int", schema.Int64, false),
		schema.Scalar("Str", schema.Utf8, false),
	)}
	arrays, err := arrowserde.ToArrays(fields, records(
		serde.Record{{Name: "v", Value: serde.Variant{Name: "Int", Index: 0, Value: int64(5)}}},
		serde.Record{{Name: "v", Value: serde.Variant{Name: "Str", Index: 1, Value: "x"}}},
	))
	require.NoError(t, err)
	defer arrays[0].Release()
	assert.Equal(t, []arrow.UnionTypeCode{0, 1}, arrays[0].(*array.DenseUnion).RawTypeCodes())

	got, err := arrowserde.Decode(fields, arrays)
	require.NoError(t, err)
	first, _ := got[0].(serde.Record).Get("v")
	assert.Equal(t, serde.Variant{Name: "Int", Index: 0, Value: int64(5)}, first)
}

func TestMapRecords(t *testing.T) {
	fields := []schema.Field{schema.Scalar("a", schema.Int64, false), schema.Scalar("b", schema.Utf8, true)}
	rows := serde.Dynamic([]any{serde.Map{{Key: "b", Value: "x"}, {Key: "a", Value: int64(1)}}})
	arrays, err := arrowserde.ToArrays(fields, rows)
	require.NoError(t, err)
	defer func() {
		for _, a := range arrays {
			a.Release()
		}
	}()
	assert.Equal(t, int64(1), arrays[0].(*array.Int64).Value(0))
	assert.Equal(t, "x", arrays[1].(*array.String).Value(0))
}

func TestEncodeErrorsCarryPath(t *testing.T) {
	fields := []schema.Field{schema.StructOf("s", false, schema.Scalar("n", schema.UInt8, false))}
	_, err := arrowserde.ToRecordBatch(fields, records(
		serde.Record{{Name: "s", Value: serde.Record{{Name: "n", Value: int64(300)}}}},
	))
	require.ErrorIs(t, err, arrowserde.ErrConversion)
	var e *arrowserde.Error
	require.ErrorAs(t, err, &e)
	path, _ := e.Annotation("field")
	assert.Equal(t, "$.s.n", path)
	dt, _ := e.Annotation("data_type")
	assert.Equal(t, "UInt8", dt)
}

func TestBuilderTake(t *testing.T) {
	fields := []schema.Field{schema.Scalar("x", schema.Int64, false)}
	b, err := arrowserde.NewBuilder(fields)
	require.NoError(t, err)

	require.NoError(t, b.Push(serde.Dynamic(serde.Record{{Name: "x", Value: int64(1)}})))
	require.NoError(t, b.Push(serde.Dynamic(serde.Record{{Name: "x", Value: int64(2)}})))
	first := b.Take()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 2, first.Len())

	require.NoError(t, b.Push(serde.Dynamic(serde.Record{{Name: "x", Value: int64(3)}})))

	one, err := first.RecordBatch()
	require.NoError(t, err)
	defer one.Release()
	two, err := b.RecordBatch()
	require.NoError(t, err)
	defer two.Release()

	assert.Equal(t, []int64{1, 2}, one.Column(0).(*array.Int64).Int64Values())
	assert.Equal(t, []int64{3}, two.Column(0).(*array.Int64).Int64Values())

	_, err = b.Finish()
	require.ErrorIs(t, err, arrowserde.ErrProtocol)
}

func TestBuilderRejectsInvalidFields(t *testing.T) {
	_, err := arrowserde.NewBuilder([]schema.Field{schema.ListOf("l", schema.Scalar("a", schema.Int8, false), false), {Name: "u", DataType: schema.Of(schema.Union)}})
	require.ErrorIs(t, err, arrowserde.ErrSchema)
}

type recordingHook struct {
	mu    sync.Mutex
	ends  []arrowserde.ConvertStatistics
	infos []arrowserde.ConvertInfo
	errs  []error
}

func (h *recordingHook) OnConvertStart(ctx context.Context, info arrowserde.ConvertInfo) (context.Context, arrowserde.HookToken) {
	return ctx, info.Operation
}

func (h *recordingHook) OnConvertEnd(_ context.Context, token arrowserde.HookToken, info arrowserde.ConvertInfo, stats *arrowserde.ConvertStatistics, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if token != info.Operation {
		panic("token mismatch")
	}
	h.infos = append(h.infos, info)
	h.ends = append(h.ends, *stats)
	h.errs = append(h.errs, err)
}

func TestChunkedBatchesAndHooks(t *testing.T) {
	fields := []schema.Field{schema.Scalar("x", schema.Int32, false)}
	rows := make([]serde.Record, 5)
	for i := range rows {
		rows[i] = serde.Record{{Name: "x", Value: int32(i)}}
	}

	hook := &recordingHook{}
	var logs bytes.Buffer
	cfg := arrowserde.DefaultConfig()
	cfg.ChunkRows = 2
	cfg.Hook = hook
	cfg.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	batches, err := arrowserde.ToRecordBatches(context.Background(), cfg, fields, records(rows...))
	require.NoError(t, err)
	defer func() {
		for _, b := range batches {
			b.Release()
		}
	}()
	require.Len(t, batches, 3)
	assert.Equal(t, []int64{2, 2, 1}, []int64{batches[0].NumRows(), batches[1].NumRows(), batches[2].NumRows()})

	decoded, err := arrowserde.DecodeRecordBatches(context.Background(), cfg, fields, batches)
	require.NoError(t, err)
	require.Len(t, decoded, 5)
	last, _ := decoded[4].(serde.Record).Get("x")
	assert.Equal(t, int32(4), last)

	require.Len(t, hook.infos, 2)
	assert.Equal(t, arrowserde.OperationEncode, hook.infos[0].Operation)
	assert.Equal(t, []string{"x"}, hook.infos[0].Fields)
	assert.Equal(t, int64(3), hook.ends[0].Batches)
	assert.Equal(t, int64(5), hook.ends[0].Rows)
	assert.Equal(t, int64(20), hook.ends[0].Bytes)
	assert.Equal(t, arrowserde.OperationDecode, hook.infos[1].Operation)
	assert.Equal(t, int64(5), hook.ends[1].Rows)
	assert.NoError(t, hook.errs[0])
	assert.Contains(t, logs.String(), "arrowserde: converted batches")
}

func TestEmptyInputYieldsEmptyBatch(t *testing.T) {
	fields := []schema.Field{schema.Scalar("x", schema.Utf8, true)}
	batch, err := arrowserde.ToRecordBatch(fields, serde.Dynamic([]any{}))
	require.NoError(t, err)
	defer batch.Release()
	assert.Equal(t, int64(0), batch.NumRows())
	assert.Equal(t, 1, int(batch.NumCols()))
}

func TestDecodeChecksLengths(t *testing.T) {
	fields := []schema.Field{schema.Scalar("a", schema.Int64, false), schema.Scalar("b", schema.Int64, false)}
	a, err := arrowserde.ToArrays(fields[:1], records(serde.Record{{Name: "a", Value: int64(1)}}))
	require.NoError(t, err)
	defer a[0].Release()
	b, err := arrowserde.ToArrays(fields[1:], records())
	require.NoError(t, err)
	defer b[0].Release()

	_, err = arrowserde.Decode(fields, []arrow.Array{a[0], b[0]})
	require.ErrorIs(t, err, arrowserde.ErrSchema)
}

type event struct {
	ID       int64             `arrow:"id"`
	Name     *string           `arrow:"name"`
	Kind     string            `arrow:"kind,enum"`
	Tags     []string          `arrow:"tags"`
	Counters map[string]uint32 `arrow:"counters"`
	Score    float32           `arrow:"score"`
}

func TestTypedRoundTrip(t *testing.T) {
	name := "first"
	in := []event{
		{ID: 1, Name: &name, Kind: "click", Tags: []string{"a", "b"}, Counters: map[string]uint32{"x": 1}, Score: 0.5},
		{ID: 2, Kind: "view", Tags: []string{}, Counters: map[string]uint32{}},
		{ID: 3, Kind: "click"},
	}
	batch, err := arrowserde.Encode(in)
	require.NoError(t, err)
	defer batch.Release()

	kinds := batch.Column(2).(*array.Dictionary)
	assert.Equal(t, 2, kinds.Dictionary().Len())

	out, err := arrowserde.DecodeInto[event](batch)
	require.NoError(t, err)
	want := []event{
		in[0],
		in[1],
		{ID: 3, Kind: "click", Tags: []string{}, Counters: map[string]uint32{}},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
