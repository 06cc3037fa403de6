// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrowserde

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/Query-farm/arrowserde/arrowserde/internal/deserialization"
	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/schema"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// ToArrays encodes items, which must emit a sequence of records, into one
// array per field.
func ToArrays(fields []schema.Field, items serde.Serializable) ([]arrow.Array, error) {
	var out []arrow.Array
	err := DefaultConfig().observe(context.Background(), convertInfo(OperationEncode, fields), func(stats *ConvertStatistics) error {
		b, err := NewBuilder(fields)
		if err != nil {
			return err
		}
		if err := b.Extend(items); err != nil {
			return err
		}
		n := b.Len()
		if out, err = b.Finish(); err != nil {
			return err
		}
		stats.RecordBatch(int64(n), out)
		return nil
	})
	return out, err
}

// ToRecordBatch encodes items into a single record batch.
func ToRecordBatch(fields []schema.Field, items serde.Serializable) (arrow.RecordBatch, error) {
	batches, err := ToRecordBatches(context.Background(), DefaultConfig(), fields, items)
	if err != nil {
		return nil, err
	}
	return batches[0], nil
}

// ToRecordBatches encodes items into record batches of at most
// cfg.ChunkRows rows. Without chunking exactly one batch is returned,
// even when items is empty. On error no batch is returned.
func ToRecordBatches(ctx context.Context, cfg Config, fields []schema.Field, items serde.Serializable) ([]arrow.RecordBatch, error) {
	var out []arrow.RecordBatch
	err := cfg.observe(ctx, convertInfo(OperationEncode, fields), func(stats *ConvertStatistics) error {
		b, err := NewBuilder(fields)
		if err != nil {
			return err
		}
		flush := func(chunk *Builder) error {
			batch, err := chunk.RecordBatch()
			if err != nil {
				return err
			}
			stats.RecordBatch(batch.NumRows(), batch.Columns())
			out = append(out, batch)
			return nil
		}
		if cfg.ChunkRows > 0 {
			b.outer.OnRecord(func() error {
				if b.Len() < cfg.ChunkRows {
					return nil
				}
				return flush(b.Take())
			})
		}
		if err := b.Extend(items); err != nil {
			return err
		}
		if b.Len() > 0 || len(out) == 0 {
			return flush(b)
		}
		return nil
	})
	if err != nil {
		releaseAll(out)
		return nil, err
	}
	return out, nil
}

// Deserializer reads a set of top-level columns as one sequence of
// records. It borrows the arrays it was created from; they must outlive
// it.
type Deserializer struct {
	*deserialization.OuterSequenceDeserializer
}

// FromArrays returns a Deserializer over arrays described by fields.
// Every array must have the same length.
func FromArrays(fields []schema.Field, arrays []arrow.Array) (*Deserializer, error) {
	data := make([]arrow.ArrayData, len(arrays))
	for i, a := range arrays {
		data[i] = a.Data()
	}
	d, err := deserialization.NewOuter(fields, data)
	if err != nil {
		return nil, err
	}
	return &Deserializer{d}, nil
}

// FromRecordBatch returns a Deserializer over the columns of batch. A nil
// fields slice is read from the batch schema.
func FromRecordBatch(fields []schema.Field, batch arrow.RecordBatch) (*Deserializer, error) {
	if fields == nil {
		var err error
		if fields, err = schema.FieldsFromArrow(batch.Schema()); err != nil {
			return nil, err
		}
	}
	return FromArrays(fields, batch.Columns())
}

// Decode reads arrays as dynamic records, one serde.Record per row.
func Decode(fields []schema.Field, arrays []arrow.Array) ([]any, error) {
	var out []any
	err := DefaultConfig().observe(context.Background(), convertInfo(OperationDecode, fields), func(stats *ConvertStatistics) error {
		d, err := FromArrays(fields, arrays)
		if err != nil {
			return err
		}
		if out, err = decodeRecords(d); err != nil {
			return err
		}
		stats.RecordBatch(int64(d.Len()), arrays)
		return nil
	})
	return out, err
}

// DecodeRecordBatches reads the records of every batch in order.
func DecodeRecordBatches(ctx context.Context, cfg Config, fields []schema.Field, batches []arrow.RecordBatch) ([]any, error) {
	var out []any
	err := cfg.observe(ctx, convertInfo(OperationDecode, fields), func(stats *ConvertStatistics) error {
		for _, batch := range batches {
			d, err := FromRecordBatch(fields, batch)
			if err != nil {
				return err
			}
			records, err := decodeRecords(d)
			if err != nil {
				return err
			}
			out = append(out, records...)
			stats.RecordBatch(batch.NumRows(), batch.Columns())
		}
		return nil
	})
	return out, err
}

func decodeRecords(d *Deserializer) ([]any, error) {
	v, err := serde.Decode(d)
	if err != nil {
		return nil, err
	}
	records, ok := v.([]any)
	if !ok {
		return nil, errs.Protocolf("expected a sequence of records, got %T", v)
	}
	return records, nil
}

// Encode traces the fields of T and encodes items into a record batch.
func Encode[T any](items []T) (arrow.RecordBatch, error) {
	fields, err := schema.FieldsFor[T](nil)
	if err != nil {
		return nil, err
	}
	return ToRecordBatch(fields, serde.Sequence(items))
}

// DecodeInto reads the rows of batch into values of type T. The fields
// are read from the batch schema.
func DecodeInto[T any](batch arrow.RecordBatch) ([]T, error) {
	var out []T
	err := DefaultConfig().observe(context.Background(), schemaInfo(OperationDecode, batch.Schema()), func(stats *ConvertStatistics) error {
		d, err := FromRecordBatch(nil, batch)
		if err != nil {
			return err
		}
		out = make([]T, 0, d.Len())
		if err := serde.Into(d, &out); err != nil {
			return err
		}
		stats.RecordBatch(batch.NumRows(), batch.Columns())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func convertInfo(op string, fields []schema.Field) ConvertInfo {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return ConvertInfo{Operation: op, Fields: names}
}

func schemaInfo(op string, s *arrow.Schema) ConvertInfo {
	names := make([]string, 0, s.NumFields())
	for _, f := range s.Fields() {
		names = append(names, f.Name)
	}
	return ConvertInfo{Operation: op, Fields: names}
}
