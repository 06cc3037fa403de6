// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package conformance

import (
	"bytes"
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Query-farm/arrowserde/arrowserde"
	"github.com/Query-farm/arrowserde/arrowserde/schema"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// Case is one named round trip.
type Case struct {
	Name        string
	Description string
	Fields      []schema.Field

	items  serde.Serializable
	verify func(ctx context.Context, cfg arrowserde.Config, batches []arrow.RecordBatch) error
}

// Result reports the outcome of one case.
type Result struct {
	Case        string
	Rows        int64
	Batches     int
	StreamBytes int
	Err         error
}

// Passed reports whether the round trip matched.
func (r Result) Passed() bool { return r.Err == nil }

// dynamicCase round-trips rows of dynamic values. A nil want expects the
// rows back unchanged.
func dynamicCase(name, description string, fields []schema.Field, rows, want []any) Case {
	if want == nil {
		want = rows
	}
	return Case{
		Name:        name,
		Description: description,
		Fields:      fields,
		items:       serde.Dynamic(rows),
		verify: func(ctx context.Context, cfg arrowserde.Config, batches []arrow.RecordBatch) error {
			got, err := arrowserde.DecodeRecordBatches(ctx, cfg, fields, batches)
			if err != nil {
				return err
			}
			return compare(want, got)
		},
	}
}

// typedCase round-trips Go values through the type tracer and the
// reflection bridge.
func typedCase[T any](name, description string, items []T) Case {
	return Case{
		Name:        name,
		Description: description,
		Fields:      schema.MustFieldsFor[T](),
		items:       serde.Sequence(items),
		verify: func(_ context.Context, _ arrowserde.Config, batches []arrow.RecordBatch) error {
			var got []T
			for _, b := range batches {
				part, err := arrowserde.DecodeInto[T](b)
				if err != nil {
					return err
				}
				got = append(got, part...)
			}
			return compare(items, got)
		},
	}
}

func compare[T any](want, got T) error {
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		return fmt.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	return nil
}

// Run encodes the case with cfg, writes the batches as an IPC stream
// compressed with cfg.Compression, reads them back and verifies the
// decoded values.
func Run(ctx context.Context, cfg arrowserde.Config, c Case) Result {
	res := Result{Case: c.Name}
	res.Err = run(ctx, cfg, c, &res)
	return res
}

func run(ctx context.Context, cfg arrowserde.Config, c Case, res *Result) error {
	s, err := schema.ToArrowSchema(c.Fields)
	if err != nil {
		return err
	}
	written, err := arrowserde.ToRecordBatches(ctx, cfg, c.Fields, c.items)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	defer release(written)

	var buf bytes.Buffer
	if err := arrowserde.WriteStream(&buf, s, written, cfg.Compression); err != nil {
		return fmt.Errorf("write stream: %w", err)
	}
	res.StreamBytes = buf.Len()

	_, read, err := arrowserde.ReadStream(&buf)
	if err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	defer release(read)
	res.Batches = len(read)
	for _, b := range read {
		res.Rows += b.NumRows()
	}

	if err := c.verify(ctx, cfg, read); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// RunAll runs every case in order.
func RunAll(ctx context.Context, cfg arrowserde.Config, cases []Case) []Result {
	out := make([]Result, 0, len(cases))
	for _, c := range cases {
		out = append(out, Run(ctx, cfg, c))
	}
	return out
}

func release(batches []arrow.RecordBatch) {
	for _, b := range batches {
		b.Release()
	}
}
