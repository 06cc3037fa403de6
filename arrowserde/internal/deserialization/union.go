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

// unionDeserializer reads dense Union columns. The type id of a row picks
// the variant; the value offset the row within that variant's child.
type unionDeserializer struct {
	typeIDs  []int8
	offsets  []int32
	names    []string
	variants []*ArrayDeserializer
}

func newUnionDeserializer(field schema.Field, data arrow.ArrayData, path string) (*unionDeserializer, error) {
	ut, ok := data.DataType().(*arrow.DenseUnionType)
	if !ok {
		return nil, errs.Schemaf("only dense unions are supported, got %s", data.DataType())
	}
	for i, code := range ut.TypeCodes() {
		if int(code) != i {
			return nil, errs.Schemaf("union type codes must be 0..%d in order, got %v", len(ut.TypeCodes())-1, ut.TypeCodes())
		}
	}
	if err := checkChildNames(field.Children, ut.Fields()); err != nil {
		return nil, err
	}
	children, err := childData(data, len(field.Children))
	if err != nil {
		return nil, err
	}
	typeIDs, err := buffers.Values[int8](data, 1, 0, data.Len())
	if err != nil {
		return nil, err
	}
	offsets, err := buffers.Values[int32](data, 2, 0, data.Len())
	if err != nil {
		return nil, err
	}

	d := &unionDeserializer{typeIDs: typeIDs, offsets: offsets}
	for i, child := range field.Children {
		vd, err := New(child, children[i], schema.ChildPath(path, child.Name))
		if err != nil {
			return nil, err
		}
		d.names = append(d.names, child.Name)
		d.variants = append(d.variants, vd)
	}

	last := make([]int32, len(d.variants))
	for i := range last {
		last[i] = -1
	}
	for row, id := range typeIDs {
		if id < 0 || int(id) >= len(d.variants) {
			return nil, errs.Schemaf("row %d has type id %d, union has %d variants", row, id, len(d.variants))
		}
		off := offsets[row]
		if off < 0 || int(off) >= d.variants[id].Len() {
			return nil, errs.Schemaf("row %d points at value %d of variant %q, which holds %d values", row, off, d.names[id], d.variants[id].Len())
		}
		if last[id] >= 0 && off <= last[id] {
			return nil, errs.Schemaf("row %d: offsets of variant %q do not increase (%d after %d)", row, d.names[id], off, last[id])
		}
		last[id] = off
	}
	return d, nil
}

func (d *unionDeserializer) length() int { return len(d.typeIDs) }
func (*unionDeserializer) valid(int) bool { return true }

func (d *unionDeserializer) visit(i int, _ hint, v serde.Visitor) error {
	id := d.typeIDs[i]
	return v.VisitEnum(&variantAccess{
		name:  d.names[id],
		index: uint32(id),
		value: d.variants[id].At(int(d.offsets[i])),
	})
}

// variantAccess exposes the payload of the selected variant.
type variantAccess struct {
	name  string
	index uint32
	value serde.Deserializer
}

func (a *variantAccess) Variant() (string, uint32, serde.VariantAccess, error) {
	return a.name, a.index, a, nil
}

func (a *variantAccess) Unit() error { return a.value.Unit(serde.IgnoredVisitor{}) }

func (a *variantAccess) Newtype(seed serde.Seed) error { return seed.Deserialize(a.value) }

func (a *variantAccess) Tuple(n int, v serde.Visitor) error { return a.value.Tuple(n, v) }

func (a *variantAccess) Struct(fields []string, v serde.Visitor) error {
	return a.value.Struct(a.name, fields, v)
}
