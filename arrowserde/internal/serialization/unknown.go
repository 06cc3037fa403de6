// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package serialization

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// unknownVariantBuilder backs fields marked UnknownVariant. It accepts any
// value, discards it and counts one slot per top-level value. The column
// is materialized as Null.
type unknownVariantBuilder struct {
	n int
}

func newUnknownVariantBuilder() *unknownVariantBuilder { return &unknownVariantBuilder{} }

func (b *unknownVariantBuilder) count() error {
	b.n++
	return nil
}

func (b *unknownVariantBuilder) Default() error { return b.count() }
func (b *unknownVariantBuilder) None() error { return b.count() }
func (b *unknownVariantBuilder) Some(serde.Serializable) error { return b.count() }
func (b *unknownVariantBuilder) Unit() error { return b.count() }
func (b *unknownVariantBuilder) unitValue() error { return b.count() }
func (b *unknownVariantBuilder) Bool(bool) error { return b.count() }
func (b *unknownVariantBuilder) I8(int8) error { return b.count() }
func (b *unknownVariantBuilder) I16(int16) error { return b.count() }
func (b *unknownVariantBuilder) I32(int32) error { return b.count() }
func (b *unknownVariantBuilder) I64(int64) error { return b.count() }
func (b *unknownVariantBuilder) U8(uint8) error { return b.count() }
func (b *unknownVariantBuilder) U16(uint16) error { return b.count() }
func (b *unknownVariantBuilder) U32(uint32) error { return b.count() }
func (b *unknownVariantBuilder) U64(uint64) error { return b.count() }
func (b *unknownVariantBuilder) F32(float32) error { return b.count() }
func (b *unknownVariantBuilder) F64(float64) error { return b.count() }
func (b *unknownVariantBuilder) Str(string) error { return b.count() }
func (b *unknownVariantBuilder) Bytes([]byte) error { return b.count() }
func (b *unknownVariantBuilder) SeqStart(int) error { return nil }
func (b *unknownVariantBuilder) SeqElement(serde.Serializable) error {
	return nil
}
func (b *unknownVariantBuilder) SeqEnd() error { return b.count() }
func (b *unknownVariantBuilder) TupleStart(int) error { return nil }
func (b *unknownVariantBuilder) TupleElement(serde.Serializable) error {
	return nil
}
func (b *unknownVariantBuilder) TupleEnd() error { return b.count() }
func (b *unknownVariantBuilder) StructStart(string, int) error { return nil }
func (b *unknownVariantBuilder) StructField(string, serde.Serializable) error {
	return nil
}
func (b *unknownVariantBuilder) StructEnd() error { return b.count() }
func (b *unknownVariantBuilder) MapStart(int) error { return nil }
func (b *unknownVariantBuilder) MapKey(serde.Serializable) error { return nil }
func (b *unknownVariantBuilder) MapValue(serde.Serializable) error {
	return nil
}
func (b *unknownVariantBuilder) MapEnd() error { return b.count() }

func (b *unknownVariantBuilder) UnitVariant(string, uint32, string) error { return b.count() }

func (b *unknownVariantBuilder) NewtypeVariant(string, uint32, string, serde.Serializable) error {
	return b.count()
}

func (b *unknownVariantBuilder) TupleVariantStart(string, uint32, string, int) (serde.Serializer, error) {
	return b, nil
}

func (b *unknownVariantBuilder) StructVariantStart(string, uint32, string, int) (serde.Serializer, error) {
	return b, nil
}

func (b *unknownVariantBuilder) take() arrayBuilder {
	t := &unknownVariantBuilder{n: b.n}
	b.n = 0
	return t
}

func (b *unknownVariantBuilder) intoData() (*array.Data, error) {
	return array.NewData(arrow.Null, b.n, []*memory.Buffer{nil}, nil, b.n, 0), nil
}

func (b *unknownVariantBuilder) isNullable() bool { return true }
func (b *unknownVariantBuilder) length() int { return b.n }
