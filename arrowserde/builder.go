// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrowserde

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/Query-farm/arrowserde/arrowserde/internal/serialization"
	"github.com/Query-farm/arrowserde/arrowserde/schema"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// Builder accumulates records into one column per field.
//
// A Builder is not safe for concurrent use. Once Finish or RecordBatch
// has been called it accepts no more records.
type Builder struct {
	fields []schema.Field
	schema *arrow.Schema
	outer  *serialization.OuterSequenceBuilder
}

// NewBuilder validates fields and returns an empty Builder.
func NewBuilder(fields []schema.Field) (*Builder, error) {
	if err := schema.Validate(fields); err != nil {
		return nil, err
	}
	s, err := schema.ToArrowSchema(fields)
	if err != nil {
		return nil, err
	}
	outer, err := serialization.NewOuter(fields)
	if err != nil {
		return nil, err
	}
	return &Builder{fields: fields, schema: s, outer: outer}, nil
}

// Fields returns the fields the builder stores.
func (b *Builder) Fields() []schema.Field { return b.fields }

// Schema returns the Arrow schema of the batches the builder produces.
func (b *Builder) Schema() *arrow.Schema { return b.schema }

// Push stores one record. The record must emit struct events, or map
// events with string keys.
func (b *Builder) Push(record serde.Serializable) error {
	return b.outer.Push(record)
}

// Extend stores every element of items, which must emit a sequence.
func (b *Builder) Extend(items serde.Serializable) error {
	return items.Serialize(b.outer)
}

// Len returns the number of records stored.
func (b *Builder) Len() int { return b.outer.Len() }

// Take detaches the records stored so far into a new Builder and leaves b
// empty. b keeps accepting records.
func (b *Builder) Take() *Builder {
	return &Builder{fields: b.fields, schema: b.schema, outer: b.outer.Take()}
}

// Finish returns one array per field.
func (b *Builder) Finish() ([]arrow.Array, error) {
	return b.outer.IntoArrays()
}

// RecordBatch returns the stored records as a record batch.
func (b *Builder) RecordBatch() (arrow.RecordBatch, error) {
	n := b.Len()
	cols, err := b.Finish()
	if err != nil {
		return nil, err
	}
	defer releaseAll(cols)
	return array.NewRecordBatch(b.schema, cols, int64(n)), nil
}

func releaseAll[T interface{ Release() }](items []T) {
	for _, it := range items {
		it.Release()
	}
}
