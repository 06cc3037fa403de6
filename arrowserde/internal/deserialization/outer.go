// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package deserialization

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/Query-farm/arrowserde/arrowserde/internal/buffers"
	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/schema"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// OuterSequenceDeserializer reads a set of equally long top-level columns
// as one sequence of records. Element i of the sequence is the record
// formed by row i of every column, in field order.
type OuterSequenceDeserializer struct {
	fields fieldSet
	cursor buffers.Cursor
}

// NewOuter returns the sequence deserializer for arrays described by
// fields. Arity and lengths must agree.
func NewOuter(fields []schema.Field, arrays []arrow.ArrayData) (*OuterSequenceDeserializer, error) {
	if len(fields) != len(arrays) {
		return nil, errs.Schemaf("got %d fields for %d arrays", len(fields), len(arrays))
	}
	d := &OuterSequenceDeserializer{}
	n := -1
	for i, f := range fields {
		col, err := New(f, arrays[i], schema.ChildPath(schema.RootPath, f.Name))
		if err != nil {
			return nil, err
		}
		if n >= 0 && col.Len() != n {
			return nil, errs.Annotate(
				errs.Schemaf("arrays of different lengths: %d rows, expected %d", col.Len(), n),
				"field", col.Path(), "data_type", f.DataType.String())
		}
		n = col.Len()
		d.fields.names = append(d.fields.names, f.Name)
		d.fields.columns = append(d.fields.columns, col)
	}
	if n < 0 {
		n = 0
	}
	d.cursor = buffers.NewCursor(n)
	return d, nil
}

// Len returns the number of records.
func (d *OuterSequenceDeserializer) Len() int { return d.cursor.Len() }

// Remaining returns the number of records not read yet.
func (d *OuterSequenceDeserializer) Remaining() int { return d.cursor.Remaining() }

// Column returns the deserializer of the i-th top-level field.
func (d *OuterSequenceDeserializer) Column(i int) *ArrayDeserializer { return d.fields.columns[i] }

// NextRecord reads the next record through seed. Reading past the last
// record fails with an exhausted error.
func (d *OuterSequenceDeserializer) NextRecord(seed serde.Seed) error {
	r, err := d.cursor.Next()
	if err != nil {
		return err
	}
	return seed.Deserialize(record{set: &d.fields, row: r})
}

func (d *OuterSequenceDeserializer) visit(v serde.Visitor) error { return v.VisitSeq(outerAccess{d}) }

type outerAccess struct {
	d *OuterSequenceDeserializer
}

func (a outerAccess) NextElement(seed serde.Seed) (bool, error) {
	if _, ok := a.d.cursor.Peek(); !ok {
		return false, nil
	}
	return true, a.d.NextRecord(seed)
}

func (a outerAccess) Remaining() (int, bool) { return a.d.cursor.Remaining(), true }

// Every request reads the remaining records as a sequence.

func (d *OuterSequenceDeserializer) Any(v serde.Visitor) error { return d.visit(v) }
func (d *OuterSequenceDeserializer) Option(v serde.Visitor) error { return v.VisitSome(d) }
func (d *OuterSequenceDeserializer) IgnoredAny(v serde.Visitor) error { return d.visit(v) }
func (d *OuterSequenceDeserializer) Unit(v serde.Visitor) error { return d.visit(v) }
func (d *OuterSequenceDeserializer) Bool(v serde.Visitor) error { return d.visit(v) }
func (d *OuterSequenceDeserializer) I8(v serde.Visitor) error { return d.visit(v) }
func (d *OuterSequenceDeserializer) I16(v serde.Visitor) error { return d.visit(v) }
func (d *OuterSequenceDeserializer) I32(v serde.Visitor) error { return d.visit(v) }
func (d *OuterSequenceDeserializer) I64(v serde.Visitor) error { return d.visit(v) }
func (d *OuterSequenceDeserializer) U8(v serde.Visitor) error { return d.visit(v) }
func (d *OuterSequenceDeserializer) U16(v serde.Visitor) error { return d.visit(v) }
func (d *OuterSequenceDeserializer) U32(v serde.Visitor) error { return d.visit(v) }
func (d *OuterSequenceDeserializer) U64(v serde.Visitor) error { return d.visit(v) }
func (d *OuterSequenceDeserializer) F32(v serde.Visitor) error { return d.visit(v) }
func (d *OuterSequenceDeserializer) F64(v serde.Visitor) error { return d.visit(v) }
func (d *OuterSequenceDeserializer) String(v serde.Visitor) error { return d.visit(v) }
func (d *OuterSequenceDeserializer) Bytes(v serde.Visitor) error { return d.visit(v) }
func (d *OuterSequenceDeserializer) Seq(v serde.Visitor) error { return d.visit(v) }
func (d *OuterSequenceDeserializer) Map(v serde.Visitor) error { return d.visit(v) }

func (d *OuterSequenceDeserializer) Tuple(_ int, v serde.Visitor) error { return d.visit(v) }

func (d *OuterSequenceDeserializer) Struct(_ string, _ []string, v serde.Visitor) error {
	return d.visit(v)
}

func (d *OuterSequenceDeserializer) Enum(_ string, _ []string, v serde.Visitor) error {
	return d.visit(v)
}

// record is one row of a fieldSet. It is never null.
type record struct {
	set *fieldSet
	row int
}

func (r record) Any(v serde.Visitor) error { return r.set.visit(r.row, hintAny, v) }
func (r record) Option(v serde.Visitor) error { return v.VisitSome(r) }
func (r record) IgnoredAny(v serde.Visitor) error { return r.set.visit(r.row, hintAny, v) }
func (r record) Unit(v serde.Visitor) error { return r.set.visit(r.row, hintUnit, v) }
func (r record) Bool(v serde.Visitor) error { return r.set.visit(r.row, hintBool, v) }
func (r record) I8(v serde.Visitor) error { return r.set.visit(r.row, hintInt, v) }
func (r record) I16(v serde.Visitor) error { return r.set.visit(r.row, hintInt, v) }
func (r record) I32(v serde.Visitor) error { return r.set.visit(r.row, hintInt, v) }
func (r record) I64(v serde.Visitor) error { return r.set.visit(r.row, hintInt, v) }
func (r record) U8(v serde.Visitor) error { return r.set.visit(r.row, hintInt, v) }
func (r record) U16(v serde.Visitor) error { return r.set.visit(r.row, hintInt, v) }
func (r record) U32(v serde.Visitor) error { return r.set.visit(r.row, hintInt, v) }
func (r record) U64(v serde.Visitor) error { return r.set.visit(r.row, hintInt, v) }
func (r record) F32(v serde.Visitor) error { return r.set.visit(r.row, hintFloat, v) }
func (r record) F64(v serde.Visitor) error { return r.set.visit(r.row, hintFloat, v) }
func (r record) String(v serde.Visitor) error { return r.set.visit(r.row, hintString, v) }
func (r record) Bytes(v serde.Visitor) error { return r.set.visit(r.row, hintBytes, v) }
func (r record) Seq(v serde.Visitor) error { return r.set.visit(r.row, hintSeq, v) }
func (r record) Map(v serde.Visitor) error { return r.set.visit(r.row, hintMap, v) }

func (r record) Tuple(_ int, v serde.Visitor) error { return r.set.visit(r.row, hintTuple, v) }

func (r record) Struct(_ string, _ []string, v serde.Visitor) error {
	return r.set.visit(r.row, hintStruct, v)
}

func (r record) Enum(_ string, _ []string, v serde.Visitor) error {
	return r.set.visit(r.row, hintEnum, v)
}
