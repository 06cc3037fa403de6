// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/schema"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// OuterSequenceBuilder stores a sequence of records as top-level columns.
// Each element of the sequence is one record: struct events, or map events
// with string keys, naming the fields.
type OuterSequenceBuilder struct {
	unsupported
	root     *ArrayBuilder
	onRecord func() error
}

// NewOuter returns the builder for the columns described by fields.
func NewOuter(fields []schema.Field) (*OuterSequenceBuilder, error) {
	rootField := schema.StructOf(schema.RootPath, false, fields...)
	rootField.Strategy = schema.MapAsStruct
	root, err := New(rootField, schema.RootPath)
	if err != nil {
		return nil, err
	}
	return &OuterSequenceBuilder{unsupported: unsupported{name: "record sequence"}, root: root}, nil
}

// OnRecord registers f to run after every record pushed through a
// sequence. Chunked encoders use it to detach full chunks.
func (b *OuterSequenceBuilder) OnRecord(f func() error) { b.onRecord = f }

// Len returns the number of records stored.
func (b *OuterSequenceBuilder) Len() int { return b.root.Len() }

// Push stores one record.
func (b *OuterSequenceBuilder) Push(v serde.Serializable) error {
	return v.Serialize(b.root)
}

func (b *OuterSequenceBuilder) element(v serde.Serializable) error {
	if err := b.Push(v); err != nil {
		return err
	}
	if b.onRecord != nil {
		return b.onRecord()
	}
	return nil
}

func (b *OuterSequenceBuilder) SeqStart(int) error { return nil }
func (b *OuterSequenceBuilder) SeqElement(v serde.Serializable) error { return b.element(v) }
func (b *OuterSequenceBuilder) SeqEnd() error { return nil }
func (b *OuterSequenceBuilder) TupleStart(int) error { return nil }
func (b *OuterSequenceBuilder) TupleElement(v serde.Serializable) error { return b.element(v) }
func (b *OuterSequenceBuilder) TupleEnd() error { return nil }

// Take detaches the stored records into a new builder and leaves b empty.
func (b *OuterSequenceBuilder) Take() *OuterSequenceBuilder {
	return &OuterSequenceBuilder{unsupported: b.unsupported, root: b.root.Take()}
}

// IntoArrays materializes one array per field. The builder is consumed.
func (b *OuterSequenceBuilder) IntoArrays() ([]arrow.Array, error) {
	data, err := b.root.IntoData()
	if err != nil {
		return nil, err
	}
	defer data.Release()
	children := data.Children()
	if len(children) != len(b.root.Field().Children) {
		return nil, errs.Protocolf("record builder produced %d columns for %d fields", len(children), len(b.root.Field().Children))
	}
	out := make([]arrow.Array, len(children))
	for i, c := range children {
		out[i] = array.MakeFromData(c)
	}
	return out, nil
}
