// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrowserde_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Query-farm/arrowserde/arrowserde"
	"github.com/Query-farm/arrowserde/arrowserde/schema"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

func TestStreamRoundTrip(t *testing.T) {
	fields := []schema.Field{
		schema.Scalar("id", schema.Int64, false),
		schema.Scalar("name", schema.Utf8, true),
	}
	rows := make([]serde.Record, 10)
	for i := range rows {
		rows[i] = serde.Record{{Name: "id", Value: int64(i)}, {Name: "name", Value: "row"}}
	}
	cfg := arrowserde.DefaultConfig()
	cfg.ChunkRows = 4
	batches, err := arrowserde.ToRecordBatches(context.Background(), cfg, fields, records(rows...))
	require.NoError(t, err)
	defer func() {
		for _, b := range batches {
			b.Release()
		}
	}()

	for _, c := range []arrowserde.Compression{arrowserde.CompressionNone, arrowserde.CompressionZstd, arrowserde.CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, arrowserde.WriteStream(&buf, batches[0].Schema(), batches, c))

			s, got, err := arrowserde.ReadStream(&buf)
			require.NoError(t, err)
			defer func() {
				for _, b := range got {
					b.Release()
				}
			}()
			assert.True(t, s.Equal(batches[0].Schema()))
			require.Len(t, got, 3)

			decoded, err := arrowserde.DecodeRecordBatches(context.Background(), cfg, nil, got)
			require.NoError(t, err)
			require.Len(t, decoded, 10)
			id, _ := decoded[9].(serde.Record).Get("id")
			assert.Equal(t, int64(9), id)
		})
	}
}

func TestParseCompression(t *testing.T) {
	for _, s := range []string{"none", "zstd", "LZ4"} {
		c, err := arrowserde.ParseCompression(s)
		require.NoError(t, err)
		assert.Equal(t, strings.ToLower(s), c.String())
	}
	_, err := arrowserde.ParseCompression("snappy")
	require.Error(t, err)
}
