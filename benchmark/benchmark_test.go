// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package benchmark

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/arrowserde/arrowserde"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

const benchRows = 10_000

func TestTradesAreDeterministic(t *testing.T) {
	a, b := Trades(100, 7), Trades(100, 7)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("(-first +second):\n%s", diff)
	}
}

func TestTradesRoundTrip(t *testing.T) {
	trades := Trades(500, 1)
	batch, err := arrowserde.Encode(trades)
	require.NoError(t, err)
	defer batch.Release()

	got, err := arrowserde.DecodeInto[Trade](batch)
	require.NoError(t, err)
	if diff := cmp.Diff(trades, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}

	dynamic, err := arrowserde.ToRecordBatch(TradeFields, serde.Dynamic(Records(trades)))
	require.NoError(t, err)
	defer dynamic.Release()
	for i := range int(batch.NumCols()) {
		require.True(t, array.Equal(batch.Column(i), dynamic.Column(i)), batch.ColumnName(i))
	}
}

func quietConfig() arrowserde.Config {
	cfg := arrowserde.DefaultConfig()
	cfg.Logger = slog.New(slog.DiscardHandler)
	return cfg
}

func BenchmarkEncodeTyped(b *testing.B) {
	trades := Trades(benchRows, 1)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		batch, err := arrowserde.Encode(trades)
		if err != nil {
			b.Fatal(err)
		}
		batch.Release()
	}
	b.ReportMetric(float64(b.Elapsed().Nanoseconds())/float64(b.N*benchRows), "ns/row")
}

func BenchmarkEncodeDynamic(b *testing.B) {
	records := serde.Dynamic(Records(Trades(benchRows, 1)))
	ctx := context.Background()
	cfg := quietConfig()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		batches, err := arrowserde.ToRecordBatches(ctx, cfg, TradeFields, records)
		if err != nil {
			b.Fatal(err)
		}
		for _, batch := range batches {
			batch.Release()
		}
	}
}

func BenchmarkDecodeTyped(b *testing.B) {
	batch, err := arrowserde.Encode(Trades(benchRows, 1))
	if err != nil {
		b.Fatal(err)
	}
	defer batch.Release()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := arrowserde.DecodeInto[Trade](batch); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeDynamic(b *testing.B) {
	batch, err := arrowserde.Encode(Trades(benchRows, 1))
	if err != nil {
		b.Fatal(err)
	}
	defer batch.Release()
	batches := []arrow.RecordBatch{batch}
	ctx := context.Background()
	cfg := quietConfig()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := arrowserde.DecodeRecordBatches(ctx, cfg, TradeFields, batches); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWriteStream(b *testing.B) {
	batch, err := arrowserde.Encode(Trades(benchRows, 1))
	if err != nil {
		b.Fatal(err)
	}
	defer batch.Release()
	batches := []arrow.RecordBatch{batch}

	for _, c := range []arrowserde.Compression{arrowserde.CompressionNone, arrowserde.CompressionZstd, arrowserde.CompressionLZ4} {
		b.Run(c.String(), func(b *testing.B) {
			var buf bytes.Buffer
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				buf.Reset()
				if err := arrowserde.WriteStream(&buf, batch.Schema(), batches, c); err != nil {
					b.Fatal(err)
				}
			}
			b.ReportMetric(float64(buf.Len()), "stream-bytes")
		})
	}
}

func BenchmarkReadStream(b *testing.B) {
	batch, err := arrowserde.Encode(Trades(benchRows, 1))
	if err != nil {
		b.Fatal(err)
	}
	defer batch.Release()

	for _, c := range []arrowserde.Compression{arrowserde.CompressionNone, arrowserde.CompressionZstd, arrowserde.CompressionLZ4} {
		b.Run(c.String(), func(b *testing.B) {
			var buf bytes.Buffer
			if err := arrowserde.WriteStream(&buf, batch.Schema(), []arrow.RecordBatch{batch}, c); err != nil {
				b.Fatal(err)
			}
			data := buf.Bytes()
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, read, err := arrowserde.ReadStream(bytes.NewReader(data))
				if err != nil {
					b.Fatal(err)
				}
				for _, r := range read {
					r.Release()
				}
			}
		})
	}
}

// BenchmarkArrowBuilderBaseline fills the scalar columns of Trade with
// arrow's own builders.
func BenchmarkArrowBuilderBaseline(b *testing.B) {
	trades := Trades(benchRows, 1)
	mem := memory.NewGoAllocator()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ids := array.NewUint64Builder(mem)
		prices := array.NewFloat64Builder(mem)
		qty := array.NewInt32Builder(mem)
		for _, t := range trades {
			ids.Append(t.ID)
			prices.Append(t.Price)
			qty.Append(t.Quantity)
		}
		for _, bld := range []array.Builder{ids, prices, qty} {
			a := bld.NewArray()
			a.Release()
			bld.Release()
		}
	}
}
