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

// fieldSet is a list of named columns read row by row as one record. It
// backs struct columns and the outer sequence.
type fieldSet struct {
	names    []string
	columns  []*ArrayDeserializer
	strategy schema.Strategy
}

// visit reports row r of every column. TupleAsStruct records read as
// sequences and MapAsStruct records as maps; the others as structs.
func (s *fieldSet) visit(r int, h hint, v serde.Visitor) error {
	switch {
	case s.strategy == schema.TupleAsStruct && (h == hintAny || h == hintSeq || h == hintTuple):
		return v.VisitSeq(&tupleAccess{set: s, row: r})
	case h == hintMap || (s.strategy == schema.MapAsStruct && h == hintAny):
		return v.VisitMap(&structAccess{set: s, row: r})
	default:
		return v.VisitStruct(&structAccess{set: s, row: r})
	}
}

// structAccess yields field names as keys and row values as values.
// Columns marked UnknownVariant are skipped.
type structAccess struct {
	set *fieldSet
	row int
	pos int
}

func (a *structAccess) NextKey(seed serde.Seed) (bool, error) {
	for a.pos < len(a.set.columns) {
		if _, unknown := a.set.columns[a.pos].inner.(*unknownDeserializer); !unknown {
			break
		}
		a.pos++
	}
	if a.pos >= len(a.set.columns) {
		return false, nil
	}
	return true, seed.Deserialize(stringValue(a.set.names[a.pos]))
}

func (a *structAccess) NextValue(seed serde.Seed) error {
	if a.pos >= len(a.set.columns) {
		return errs.Protocolf("struct value requested after the last field")
	}
	col := a.set.columns[a.pos]
	a.pos++
	return seed.Deserialize(col.At(a.row))
}

// tupleAccess yields row r of every column in order.
type tupleAccess struct {
	set *fieldSet
	row int
	pos int
}

func (a *tupleAccess) NextElement(seed serde.Seed) (bool, error) {
	if a.pos >= len(a.set.columns) {
		return false, nil
	}
	col := a.set.columns[a.pos]
	a.pos++
	return true, seed.Deserialize(col.At(a.row))
}

func (a *tupleAccess) Remaining() (int, bool) { return len(a.set.columns) - a.pos, true }

// structDeserializer reads Struct columns. Children are addressed with the
// struct's own array offset added.
type structDeserializer struct {
	validity buffers.BitsView
	base     int
	fields   fieldSet
}

func newStructDeserializer(field schema.Field, data arrow.ArrayData, path string) (*structDeserializer, error) {
	st, ok := data.DataType().(*arrow.StructType)
	if !ok {
		return nil, errs.Schemaf("struct field cannot read an array of type %s", data.DataType())
	}
	if err := checkChildNames(field.Children, st.Fields()); err != nil {
		return nil, err
	}
	children, err := childData(data, len(field.Children))
	if err != nil {
		return nil, err
	}
	d := &structDeserializer{validity: validityOf(data), base: data.Offset(), fields: fieldSet{strategy: field.Strategy}}
	for i, child := range field.Children {
		col, err := New(child, children[i], schema.ChildPath(path, child.Name))
		if err != nil {
			return nil, err
		}
		if col.Len() < d.base+data.Len() {
			return nil, errs.Schemaf("struct child %q holds %d values, need %d", child.Name, col.Len(), d.base+data.Len())
		}
		d.fields.names = append(d.fields.names, child.Name)
		d.fields.columns = append(d.fields.columns, col)
	}
	return d, nil
}

func (d *structDeserializer) length() int { return d.validity.Len() }
func (d *structDeserializer) valid(i int) bool { return d.validity.IsSet(i) }

func (d *structDeserializer) visit(i int, h hint, v serde.Visitor) error {
	return d.fields.visit(d.base+i, h, v)
}
