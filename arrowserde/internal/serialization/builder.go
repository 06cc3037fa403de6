// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package serialization implements the array builders: serde.Serializer
// implementations that accumulate one column each and turn into arrow
// arrays.
package serialization

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/Query-farm/arrowserde/arrowserde/internal/buffers"
	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/schema"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// arrayBuilder is implemented by every concrete builder in this package.
// The unexported methods keep the set closed.
type arrayBuilder interface {
	serde.Serializer
	// take returns the accumulated state and leaves an empty builder.
	take() arrayBuilder
	// intoData materializes the column. The builder must not be used
	// afterwards.
	intoData() (*array.Data, error)
	isNullable() bool
	length() int
}

// unitSerializer is implemented by builders that accept Unit as a value of
// their own; the others treat Unit as None.
type unitSerializer interface {
	unitValue() error
}

// ArrayBuilder wraps exactly one concrete builder. It routes every event
// to it and annotates failures with the column path and data type.
type ArrayBuilder struct {
	path  string
	field schema.Field
	inner arrayBuilder
}

var _ serde.Serializer = (*ArrayBuilder)(nil)

// New returns the builder for field. path is the dotted path of the
// column, used in error messages.
func New(field schema.Field, path string) (*ArrayBuilder, error) {
	inner, err := newInner(field, path)
	if err != nil {
		return nil, errs.Annotate(err, "field", path, "data_type", field.DataType.String())
	}
	return &ArrayBuilder{path: path, field: field, inner: inner}, nil
}

func newInner(field schema.Field, path string) (arrayBuilder, error) {
	if field.Strategy == schema.UnknownVariant {
		return newUnknownVariantBuilder(), nil
	}
	dt, err := field.ArrowType()
	if err != nil {
		return nil, err
	}
	n := field.Nullable
	switch field.DataType.Kind {
	case schema.Null:
		return &nullBuilder{}, nil
	case schema.Bool:
		return newBoolBuilder(n), nil
	case schema.Int8:
		return newIntBuilder[int8](dt, n), nil
	case schema.Int16:
		return newIntBuilder[int16](dt, n), nil
	case schema.Int32:
		return newIntBuilder[int32](dt, n), nil
	case schema.Int64, schema.Duration:
		return newIntBuilder[int64](dt, n), nil
	case schema.UInt8:
		return newIntBuilder[uint8](dt, n), nil
	case schema.UInt16:
		return newIntBuilder[uint16](dt, n), nil
	case schema.UInt32:
		return newIntBuilder[uint32](dt, n), nil
	case schema.UInt64:
		return newIntBuilder[uint64](dt, n), nil
	case schema.Float16:
		return newFloat16Builder(n), nil
	case schema.Float32:
		return newFloatBuilder[float32](dt, n), nil
	case schema.Float64:
		return newFloatBuilder[float64](dt, n), nil
	case schema.Utf8:
		return newUtf8Builder[int32](dt, n), nil
	case schema.LargeUtf8:
		return newUtf8Builder[int64](dt, n), nil
	case schema.Binary:
		return newBinaryBuilder[int32](dt, n), nil
	case schema.LargeBinary:
		return newBinaryBuilder[int64](dt, n), nil
	case schema.FixedSizeBinary:
		return newFixedSizeBinaryBuilder(dt, int(field.DataType.Size), n), nil
	case schema.Date32:
		return newDate32Builder(n), nil
	case schema.Date64, schema.Timestamp:
		return newDate64Builder(field, dt), nil
	case schema.Time32:
		return newTimeBuilder[int32](dt, field.DataType.Unit, n), nil
	case schema.Time64:
		return newTimeBuilder[int64](dt, field.DataType.Unit, n), nil
	case schema.Decimal128:
		return newDecimalBuilder(dt, field.DataType, n), nil
	case schema.List:
		return newListBuilder[int32](field, dt, path)
	case schema.LargeList:
		return newListBuilder[int64](field, dt, path)
	case schema.FixedSizeList:
		return newFixedSizeListBuilder(field, dt, path)
	case schema.Struct:
		return newStructBuilder(field, dt, path)
	case schema.Map:
		return newMapBuilder(field, dt, path)
	case schema.Union:
		return newUnionBuilder(field, dt, path)
	case schema.Dictionary:
		return newDictionaryBuilder(field, dt, path)
	}
	return nil, errs.Schemaf("no builder for data type %s", field.DataType)
}

// Field returns the field the builder was created for.
func (b *ArrayBuilder) Field() schema.Field { return b.field }

// Path returns the dotted path of the column.
func (b *ArrayBuilder) Path() string { return b.path }

// Len returns the number of values pushed so far.
func (b *ArrayBuilder) Len() int { return b.inner.length() }

// IsNullable reports whether the column accepts nulls.
func (b *ArrayBuilder) IsNullable() bool { return b.inner.isNullable() }

// Take detaches the accumulated values into a new builder and leaves b
// empty, ready for more values of the same shape.
func (b *ArrayBuilder) Take() *ArrayBuilder {
	return &ArrayBuilder{path: b.path, field: b.field, inner: b.inner.take()}
}

// IntoData materializes the column. The builder is consumed: any later
// call fails.
func (b *ArrayBuilder) IntoData() (*array.Data, error) {
	inner := b.inner
	b.inner = consumed{unsupported{name: "consumed builder"}}
	data, err := inner.intoData()
	return data, b.annotate(err)
}

// IntoArray is IntoData followed by array.MakeFromData.
func (b *ArrayBuilder) IntoArray() (arrow.Array, error) {
	data, err := b.IntoData()
	if err != nil {
		return nil, err
	}
	defer data.Release()
	return array.MakeFromData(data), nil
}

func (b *ArrayBuilder) annotate(err error) error {
	if err == nil {
		return nil
	}
	return errs.Annotate(err, "field", b.path, "data_type", b.field.DataType.String())
}

func (b *ArrayBuilder) Default() error { return b.annotate(b.inner.Default()) }
func (b *ArrayBuilder) None() error { return b.annotate(b.inner.None()) }

func (b *ArrayBuilder) Some(v serde.Serializable) error {
	return b.annotate(v.Serialize(b))
}

func (b *ArrayBuilder) Unit() error {
	if u, ok := b.inner.(unitSerializer); ok {
		return b.annotate(u.unitValue())
	}
	return b.annotate(b.inner.None())
}

func (b *ArrayBuilder) Bool(v bool) error { return b.annotate(b.inner.Bool(v)) }
func (b *ArrayBuilder) I8(v int8) error { return b.annotate(b.inner.I8(v)) }
func (b *ArrayBuilder) I16(v int16) error { return b.annotate(b.inner.I16(v)) }
func (b *ArrayBuilder) I32(v int32) error { return b.annotate(b.inner.I32(v)) }
func (b *ArrayBuilder) I64(v int64) error { return b.annotate(b.inner.I64(v)) }
func (b *ArrayBuilder) U8(v uint8) error { return b.annotate(b.inner.U8(v)) }
func (b *ArrayBuilder) U16(v uint16) error { return b.annotate(b.inner.U16(v)) }
func (b *ArrayBuilder) U32(v uint32) error { return b.annotate(b.inner.U32(v)) }
func (b *ArrayBuilder) U64(v uint64) error { return b.annotate(b.inner.U64(v)) }
func (b *ArrayBuilder) F32(v float32) error { return b.annotate(b.inner.F32(v)) }
func (b *ArrayBuilder) F64(v float64) error { return b.annotate(b.inner.F64(v)) }
func (b *ArrayBuilder) Str(v string) error { return b.annotate(b.inner.Str(v)) }
func (b *ArrayBuilder) Bytes(v []byte) error { return b.annotate(b.inner.Bytes(v)) }
func (b *ArrayBuilder) SeqStart(n int) error { return b.annotate(b.inner.SeqStart(n)) }
func (b *ArrayBuilder) SeqEnd() error { return b.annotate(b.inner.SeqEnd()) }
func (b *ArrayBuilder) TupleStart(n int) error { return b.annotate(b.inner.TupleStart(n)) }
func (b *ArrayBuilder) TupleEnd() error { return b.annotate(b.inner.TupleEnd()) }
func (b *ArrayBuilder) StructEnd() error { return b.annotate(b.inner.StructEnd()) }
func (b *ArrayBuilder) MapStart(n int) error { return b.annotate(b.inner.MapStart(n)) }
func (b *ArrayBuilder) MapEnd() error { return b.annotate(b.inner.MapEnd()) }

func (b *ArrayBuilder) SeqElement(v serde.Serializable) error {
	return b.annotate(b.inner.SeqElement(v))
}

func (b *ArrayBuilder) TupleElement(v serde.Serializable) error {
	return b.annotate(b.inner.TupleElement(v))
}

func (b *ArrayBuilder) StructStart(name string, n int) error {
	return b.annotate(b.inner.StructStart(name, n))
}

func (b *ArrayBuilder) StructField(key string, v serde.Serializable) error {
	return b.annotate(b.inner.StructField(key, v))
}

func (b *ArrayBuilder) MapKey(v serde.Serializable) error {
	return b.annotate(b.inner.MapKey(v))
}

func (b *ArrayBuilder) MapValue(v serde.Serializable) error {
	return b.annotate(b.inner.MapValue(v))
}

func (b *ArrayBuilder) UnitVariant(name string, index uint32, variant string) error {
	return b.annotate(b.inner.UnitVariant(name, index, variant))
}

func (b *ArrayBuilder) NewtypeVariant(name string, index uint32, variant string, v serde.Serializable) error {
	return b.annotate(b.inner.NewtypeVariant(name, index, variant, v))
}

func (b *ArrayBuilder) TupleVariantStart(name string, index uint32, variant string, n int) (serde.Serializer, error) {
	s, err := b.inner.TupleVariantStart(name, index, variant, n)
	return s, b.annotate(err)
}

func (b *ArrayBuilder) StructVariantStart(name string, index uint32, variant string, n int) (serde.Serializer, error) {
	s, err := b.inner.StructVariantStart(name, index, variant, n)
	return s, b.annotate(err)
}

// unsupported rejects every event. Concrete builders embed it and override
// the events they accept.
type unsupported struct {
	name string
}

func (u unsupported) fail(event string) error {
	return errs.Protocolf("cannot serialize %s as %s", event, u.name)
}

func (u unsupported) Default() error { return u.fail("default") }
func (u unsupported) None() error { return u.fail("none") }
func (u unsupported) Some(serde.Serializable) error { return u.fail("some") }
func (u unsupported) Unit() error { return u.fail("unit") }
func (u unsupported) Bool(bool) error { return u.fail("bool") }
func (u unsupported) I8(int8) error { return u.fail("i8") }
func (u unsupported) I16(int16) error { return u.fail("i16") }
func (u unsupported) I32(int32) error { return u.fail("i32") }
func (u unsupported) I64(int64) error { return u.fail("i64") }
func (u unsupported) U8(uint8) error { return u.fail("u8") }
func (u unsupported) U16(uint16) error { return u.fail("u16") }
func (u unsupported) U32(uint32) error { return u.fail("u32") }
func (u unsupported) U64(uint64) error { return u.fail("u64") }
func (u unsupported) F32(float32) error { return u.fail("f32") }
func (u unsupported) F64(float64) error { return u.fail("f64") }
func (u unsupported) Str(string) error { return u.fail("str") }
func (u unsupported) Bytes([]byte) error { return u.fail("bytes") }
func (u unsupported) SeqStart(int) error { return u.fail("seq_start") }
func (u unsupported) SeqElement(serde.Serializable) error { return u.fail("seq_element") }
func (u unsupported) SeqEnd() error { return u.fail("seq_end") }
func (u unsupported) TupleStart(int) error { return u.fail("tuple_start") }
func (u unsupported) TupleElement(serde.Serializable) error {
	return u.fail("tuple_element")
}
func (u unsupported) TupleEnd() error { return u.fail("tuple_end") }
func (u unsupported) StructStart(string, int) error { return u.fail("struct_start") }
func (u unsupported) StructField(string, serde.Serializable) error {
	return u.fail("struct_field")
}
func (u unsupported) StructEnd() error { return u.fail("struct_end") }
func (u unsupported) MapStart(int) error { return u.fail("map_start") }
func (u unsupported) MapKey(serde.Serializable) error { return u.fail("map_key") }
func (u unsupported) MapValue(serde.Serializable) error { return u.fail("map_value") }
func (u unsupported) MapEnd() error { return u.fail("map_end") }
func (u unsupported) UnitVariant(string, uint32, string) error {
	return u.fail("unit_variant")
}
func (u unsupported) NewtypeVariant(string, uint32, string, serde.Serializable) error {
	return u.fail("newtype_variant")
}
func (u unsupported) TupleVariantStart(string, uint32, string, int) (serde.Serializer, error) {
	return nil, u.fail("tuple_variant_start")
}
func (u unsupported) StructVariantStart(string, uint32, string, int) (serde.Serializer, error) {
	return nil, u.fail("struct_variant_start")
}

// consumed replaces the inner builder after IntoData.
type consumed struct {
	unsupported
}

func (c consumed) take() arrayBuilder { return c }
func (consumed) intoData() (*array.Data, error) {
	return nil, errs.Protocolf("builder was already turned into an array")
}
func (consumed) isNullable() bool { return false }
func (consumed) length() int { return 0 }

// newValidity returns a bitmap for nullable columns and nil otherwise.
func newValidity(nullable bool) *buffers.Bitmap {
	if nullable {
		return &buffers.Bitmap{}
	}
	return nil
}

// pushValidity records one present (true) or null (false) slot. Nulls on
// a column without a bitmap are rejected.
func pushValidity(validity *buffers.Bitmap, valid bool) error {
	if validity == nil {
		if !valid {
			return errs.Protocolf("cannot push null for non-nullable field")
		}
		return nil
	}
	validity.Push(valid)
	return nil
}

func takeValidity(validity *buffers.Bitmap) *buffers.Bitmap {
	if validity == nil {
		return nil
	}
	t := validity.Take()
	return &t
}
