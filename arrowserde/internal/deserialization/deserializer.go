// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package deserialization implements the array deserializers: read-only
// views over arrow arrays that answer serde.Deserializer requests one row
// at a time.
//
// Deserializers borrow the arrays they are built from. The arrays must
// stay alive, and unmodified, while a deserializer is in use.
package deserialization

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/Query-farm/arrowserde/arrowserde/internal/buffers"
	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/schema"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// hint is the request a visit answers. Most kinds ignore it; temporal,
// decimal, binary and nested kinds use it to pick a representation.
type hint uint8

const (
	hintAny hint = iota
	hintUnit
	hintBool
	hintInt
	hintFloat
	hintString
	hintBytes
	hintSeq
	hintTuple
	hintMap
	hintStruct
	hintEnum
)

// arrayDeserializer is implemented by every concrete deserializer. Rows are
// logical indexes into the array, 0 <= i < length().
type arrayDeserializer interface {
	length() int
	valid(i int) bool
	visit(i int, h hint, v serde.Visitor) error
}

// ArrayDeserializer wraps exactly one concrete deserializer. As a
// serde.Deserializer it reads its rows in order, failing once they are
// exhausted; At addresses a row directly.
type ArrayDeserializer struct {
	path   string
	field  schema.Field
	inner  arrayDeserializer
	cursor buffers.Cursor
}

// New returns the deserializer for field reading data. The layout of data
// is checked here; rows are not validated again when read.
func New(field schema.Field, data arrow.ArrayData, path string) (*ArrayDeserializer, error) {
	inner, err := newInner(field, data, path)
	if err != nil {
		return nil, errs.Annotate(err, "field", path, "data_type", field.DataType.String())
	}
	return &ArrayDeserializer{path: path, field: field, inner: inner, cursor: buffers.NewCursor(inner.length())}, nil
}

func newInner(field schema.Field, data arrow.ArrayData, path string) (arrayDeserializer, error) {
	got := data.DataType()
	if field.Strategy == schema.UnknownVariant {
		return &unknownDeserializer{n: data.Len()}, nil
	}
	want, err := field.ArrowType()
	if err != nil {
		return nil, err
	}
	if got.ID() == arrow.SPARSE_UNION {
		return nil, errs.Schemaf("sparse unions are not supported")
	}
	if want.ID() != got.ID() {
		return nil, errs.Schemaf("field of type %s cannot read an array of type %s", want, got)
	}
	if len(field.Children) == 0 && field.DataType.Kind != schema.Null && !arrow.TypeEqual(want, got) {
		return nil, errs.Schemaf("field of type %s cannot read an array of type %s", want, got)
	}
	if err := checkNestedParams(want, got); err != nil {
		return nil, err
	}

	switch field.DataType.Kind {
	case schema.Null:
		return &nullDeserializer{n: data.Len()}, nil
	case schema.Bool:
		return newBoolDeserializer(data), nil
	case schema.Int8:
		return newIntDeserializer[int8](data)
	case schema.Int16:
		return newIntDeserializer[int16](data)
	case schema.Int32:
		return newIntDeserializer[int32](data)
	case schema.Int64, schema.Duration:
		return newIntDeserializer[int64](data)
	case schema.UInt8:
		return newIntDeserializer[uint8](data)
	case schema.UInt16:
		return newIntDeserializer[uint16](data)
	case schema.UInt32:
		return newIntDeserializer[uint32](data)
	case schema.UInt64:
		return newIntDeserializer[uint64](data)
	case schema.Float16:
		return newFloat16Deserializer(data)
	case schema.Float32:
		return newFloatDeserializer[float32](data)
	case schema.Float64:
		return newFloatDeserializer[float64](data)
	case schema.Utf8:
		return newUtf8Deserializer[int32](data)
	case schema.LargeUtf8:
		return newUtf8Deserializer[int64](data)
	case schema.Binary:
		return newBinaryDeserializer[int32](data)
	case schema.LargeBinary:
		return newBinaryDeserializer[int64](data)
	case schema.FixedSizeBinary:
		return newFixedSizeBinaryDeserializer(data, int(field.DataType.Size))
	case schema.Date32:
		return newDate32Deserializer(data)
	case schema.Date64, schema.Timestamp:
		return newDate64Deserializer(field, data)
	case schema.Time32:
		return newTimeDeserializer[int32](data, field.DataType.Unit)
	case schema.Time64:
		return newTimeDeserializer[int64](data, field.DataType.Unit)
	case schema.Decimal128:
		return newDecimalDeserializer(data, field.DataType.Scale)
	case schema.List:
		return newListDeserializer[int32](field, data, path)
	case schema.LargeList:
		return newListDeserializer[int64](field, data, path)
	case schema.FixedSizeList:
		return newFixedSizeListDeserializer(field, data, path)
	case schema.Struct:
		return newStructDeserializer(field, data, path)
	case schema.Map:
		return newMapDeserializer(field, data, path)
	case schema.Union:
		return newUnionDeserializer(field, data, path)
	case schema.Dictionary:
		return newDictionaryDeserializer(field, data)
	}
	return nil, errs.Schemaf("no deserializer for data type %s", field.DataType)
}

// Field returns the field the deserializer was created for.
func (d *ArrayDeserializer) Field() schema.Field { return d.field }

// Path returns the dotted path of the column.
func (d *ArrayDeserializer) Path() string { return d.path }

// Len returns the number of rows.
func (d *ArrayDeserializer) Len() int { return d.inner.length() }

// Remaining returns the number of rows not yet read through the cursor.
func (d *ArrayDeserializer) Remaining() int { return d.cursor.Remaining() }

// IsNull reports whether row i is null.
func (d *ArrayDeserializer) IsNull(i int) bool { return !d.inner.valid(i) }

// At returns a deserializer for row i. It does not move the cursor.
func (d *ArrayDeserializer) At(i int) serde.Deserializer { return row{d: d, i: i} }

func (d *ArrayDeserializer) annotate(err error) error {
	if err == nil {
		return nil
	}
	return errs.Annotate(err, "field", d.path, "data_type", d.field.DataType.String())
}

// visitRow answers one request for row i. Null rows are reported as None,
// or as Unit when unit was requested.
func (d *ArrayDeserializer) visitRow(i int, h hint, v serde.Visitor) error {
	if i < 0 || i >= d.inner.length() {
		return d.annotate(errs.Exhaustedf("row %d out of range for a column of %d rows", i, d.inner.length()))
	}
	if !d.inner.valid(i) {
		if h == hintUnit {
			return d.annotate(v.VisitUnit())
		}
		return d.annotate(v.VisitNone())
	}
	return d.annotate(d.inner.visit(i, h, v))
}

func (d *ArrayDeserializer) visitOption(i int, v serde.Visitor) error {
	if i < 0 || i >= d.inner.length() {
		return d.annotate(errs.Exhaustedf("row %d out of range for a column of %d rows", i, d.inner.length()))
	}
	if !d.inner.valid(i) {
		return d.annotate(v.VisitNone())
	}
	return d.annotate(v.VisitSome(row{d: d, i: i}))
}

func (d *ArrayDeserializer) next() (row, error) {
	i, err := d.cursor.Next()
	if err != nil {
		return row{}, d.annotate(err)
	}
	return row{d: d, i: i}, nil
}

// The serde.Deserializer methods of ArrayDeserializer consume one row
// each.

func (d *ArrayDeserializer) consume(h hint, v serde.Visitor) error {
	r, err := d.next()
	if err != nil {
		return err
	}
	return d.visitRow(r.i, h, v)
}

func (d *ArrayDeserializer) Any(v serde.Visitor) error { return d.consume(hintAny, v) }
func (d *ArrayDeserializer) IgnoredAny(v serde.Visitor) error { return d.consume(hintAny, v) }
func (d *ArrayDeserializer) Unit(v serde.Visitor) error { return d.consume(hintUnit, v) }
func (d *ArrayDeserializer) Bool(v serde.Visitor) error { return d.consume(hintBool, v) }
func (d *ArrayDeserializer) I8(v serde.Visitor) error { return d.consume(hintInt, v) }
func (d *ArrayDeserializer) I16(v serde.Visitor) error { return d.consume(hintInt, v) }
func (d *ArrayDeserializer) I32(v serde.Visitor) error { return d.consume(hintInt, v) }
func (d *ArrayDeserializer) I64(v serde.Visitor) error { return d.consume(hintInt, v) }
func (d *ArrayDeserializer) U8(v serde.Visitor) error { return d.consume(hintInt, v) }
func (d *ArrayDeserializer) U16(v serde.Visitor) error { return d.consume(hintInt, v) }
func (d *ArrayDeserializer) U32(v serde.Visitor) error { return d.consume(hintInt, v) }
func (d *ArrayDeserializer) U64(v serde.Visitor) error { return d.consume(hintInt, v) }
func (d *ArrayDeserializer) F32(v serde.Visitor) error { return d.consume(hintFloat, v) }
func (d *ArrayDeserializer) F64(v serde.Visitor) error { return d.consume(hintFloat, v) }
func (d *ArrayDeserializer) String(v serde.Visitor) error { return d.consume(hintString, v) }
func (d *ArrayDeserializer) Bytes(v serde.Visitor) error { return d.consume(hintBytes, v) }
func (d *ArrayDeserializer) Seq(v serde.Visitor) error { return d.consume(hintSeq, v) }
func (d *ArrayDeserializer) Map(v serde.Visitor) error { return d.consume(hintMap, v) }

func (d *ArrayDeserializer) Option(v serde.Visitor) error {
	r, err := d.next()
	if err != nil {
		return err
	}
	return d.visitOption(r.i, v)
}

func (d *ArrayDeserializer) Tuple(_ int, v serde.Visitor) error {
	return d.consume(hintTuple, v)
}

func (d *ArrayDeserializer) Struct(_ string, _ []string, v serde.Visitor) error {
	return d.consume(hintStruct, v)
}

func (d *ArrayDeserializer) Enum(_ string, _ []string, v serde.Visitor) error {
	return d.consume(hintEnum, v)
}

// row is a deserializer bound to one row of a column.
type row struct {
	d *ArrayDeserializer
	i int
}

func (r row) Any(v serde.Visitor) error { return r.d.visitRow(r.i, hintAny, v) }
func (r row) Option(v serde.Visitor) error { return r.d.visitOption(r.i, v) }
func (r row) IgnoredAny(v serde.Visitor) error { return r.d.visitRow(r.i, hintAny, v) }
func (r row) Unit(v serde.Visitor) error { return r.d.visitRow(r.i, hintUnit, v) }
func (r row) Bool(v serde.Visitor) error { return r.d.visitRow(r.i, hintBool, v) }
func (r row) I8(v serde.Visitor) error { return r.d.visitRow(r.i, hintInt, v) }
func (r row) I16(v serde.Visitor) error { return r.d.visitRow(r.i, hintInt, v) }
func (r row) I32(v serde.Visitor) error { return r.d.visitRow(r.i, hintInt, v) }
func (r row) I64(v serde.Visitor) error { return r.d.visitRow(r.i, hintInt, v) }
func (r row) U8(v serde.Visitor) error { return r.d.visitRow(r.i, hintInt, v) }
func (r row) U16(v serde.Visitor) error { return r.d.visitRow(r.i, hintInt, v) }
func (r row) U32(v serde.Visitor) error { return r.d.visitRow(r.i, hintInt, v) }
func (r row) U64(v serde.Visitor) error { return r.d.visitRow(r.i, hintInt, v) }
func (r row) F32(v serde.Visitor) error { return r.d.visitRow(r.i, hintFloat, v) }
func (r row) F64(v serde.Visitor) error { return r.d.visitRow(r.i, hintFloat, v) }
func (r row) String(v serde.Visitor) error { return r.d.visitRow(r.i, hintString, v) }
func (r row) Bytes(v serde.Visitor) error { return r.d.visitRow(r.i, hintBytes, v) }
func (r row) Seq(v serde.Visitor) error { return r.d.visitRow(r.i, hintSeq, v) }
func (r row) Map(v serde.Visitor) error { return r.d.visitRow(r.i, hintMap, v) }

func (r row) Tuple(_ int, v serde.Visitor) error { return r.d.visitRow(r.i, hintTuple, v) }

func (r row) Struct(_ string, _ []string, v serde.Visitor) error {
	return r.d.visitRow(r.i, hintStruct, v)
}

func (r row) Enum(_ string, _ []string, v serde.Visitor) error {
	return r.d.visitRow(r.i, hintEnum, v)
}

// validityOf returns the validity view of a whole array.
func validityOf(data arrow.ArrayData) buffers.BitsView {
	return buffers.Validity(data, 0, data.Len())
}

// childData returns the single child of a nested array.
// checkNestedParams compares the parameters of nested types that their
// children do not carry. want and got share a type id.
func checkNestedParams(want, got arrow.DataType) error {
	switch w := want.(type) {
	case *arrow.DictionaryType:
		g := got.(*arrow.DictionaryType)
		if !arrow.TypeEqual(w.IndexType, g.IndexType) {
			return errs.Schemaf("dictionary field with %s keys cannot read an array with %s keys", w.IndexType, g.IndexType)
		}
		if !arrow.TypeEqual(w.ValueType, g.ValueType) {
			return errs.Schemaf("dictionary field with %s values cannot read an array with %s values", w.ValueType, g.ValueType)
		}
	case *arrow.FixedSizeListType:
		if g := got.(*arrow.FixedSizeListType); w.Len() != g.Len() {
			return errs.Schemaf("fixed-size list field of length %d cannot read an array of length %d", w.Len(), g.Len())
		}
	}
	return nil
}

// checkChildNames requires the children of a nested field to carry the
// names, in order, of the children the array presents.
func checkChildNames(children []schema.Field, got []arrow.Field) error {
	if len(children) != len(got) {
		return errs.Schemaf("field has %d children, array has %d", len(children), len(got))
	}
	for i, c := range children {
		if c.Name != got[i].Name {
			return errs.Schemaf("child %d is named %q, array presents %q", i, c.Name, got[i].Name)
		}
	}
	return nil
}

func childData(data arrow.ArrayData, want int) ([]arrow.ArrayData, error) {
	children := data.Children()
	if len(children) != want {
		return nil, errs.Schemaf("array of type %s has %d children, expected %d", data.DataType(), len(children), want)
	}
	return children, nil
}
