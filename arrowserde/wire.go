// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrowserde

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Frame magic numbers of the supported compressions.
var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// WriteStream writes batches as one Arrow IPC stream with the given
// schema, framed with compression. Every batch must have that schema.
func WriteStream(w io.Writer, schema *arrow.Schema, batches []arrow.RecordBatch, compression Compression) error {
	var (
		out    io.Writer = w
		finish func() error
	)
	switch compression {
	case CompressionNone:
	case CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("creating zstd writer: %w", err)
		}
		out, finish = enc, enc.Close
	case CompressionLZ4:
		enc := lz4.NewWriter(w)
		out, finish = enc, enc.Close
	default:
		return fmt.Errorf("unsupported compression %s", compression)
	}

	writer := ipc.NewWriter(out, ipc.WithSchema(schema))
	for i, batch := range batches {
		if !batch.Schema().Equal(schema) {
			writer.Close()
			return fmt.Errorf("batch %d schema does not match the stream schema", i)
		}
		if err := writer.Write(batch); err != nil {
			writer.Close()
			return fmt.Errorf("writing batch %d: %w", i, err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing IPC stream: %w", err)
	}
	if finish != nil {
		if err := finish(); err != nil {
			return fmt.Errorf("closing %s frame: %w", compression, err)
		}
	}
	return nil
}

// ReadStream reads one Arrow IPC stream, detecting zstd and lz4 framing by
// their magic bytes. The caller owns the returned batches and must release
// them.
func ReadStream(r io.Reader) (*arrow.Schema, []arrow.RecordBatch, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(4)

	var in io.Reader = br
	switch {
	case bytes.Equal(head, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		defer dec.Close()
		in = dec
	case bytes.Equal(head, lz4Magic):
		in = lz4.NewReader(br)
	}

	reader, err := ipc.NewReader(in)
	if err != nil {
		return nil, nil, fmt.Errorf("reading IPC stream: %w", err)
	}
	defer reader.Release()

	var batches []arrow.RecordBatch
	for reader.Next() {
		batch := reader.RecordBatch()
		batch.Retain() // keep batch alive after reader is released
		batches = append(batches, batch)
	}
	if err := reader.Err(); err != nil {
		releaseAll(batches)
		return nil, nil, fmt.Errorf("reading IPC batch: %w", err)
	}
	return reader.Schema(), batches, nil
}
