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

// mapDeserializer reads Map columns: row i pairs the keys and values of
// entries [offsets[i], offsets[i+1]).
type mapDeserializer struct {
	validity buffers.BitsView
	offsets  []int32
	base     int
	keys     *ArrayDeserializer
	values   *ArrayDeserializer
}

func newMapDeserializer(field schema.Field, data arrow.ArrayData, path string) (*mapDeserializer, error) {
	if len(field.Children) != 1 || len(field.Children[0].Children) != 2 {
		return nil, errs.Schemaf("map field must have one entries child with key and value")
	}
	if mt, ok := data.DataType().(*arrow.MapType); ok {
		if err := checkChildNames(field.Children[0].Children, []arrow.Field{mt.KeyField(), mt.ItemField()}); err != nil {
			return nil, err
		}
	}
	children, err := childData(data, 1)
	if err != nil {
		return nil, err
	}
	entries := children[0]
	pair, err := childData(entries, 2)
	if err != nil {
		return nil, err
	}
	offsets, err := buffers.OffsetsOf[int32](data, 0, data.Len())
	if err != nil {
		return nil, err
	}
	validity := validityOf(data)
	if err := buffers.CheckListLayout(offsets, validity); err != nil {
		return nil, err
	}

	entriesField := field.Children[0]
	entriesPath := schema.ChildPath(path, entriesField.Name)
	keyField, valueField := entriesField.Children[0], entriesField.Children[1]
	keys, err := New(keyField, pair[0], schema.ChildPath(entriesPath, keyField.Name))
	if err != nil {
		return nil, err
	}
	values, err := New(valueField, pair[1], schema.ChildPath(entriesPath, valueField.Name))
	if err != nil {
		return nil, err
	}
	base := entries.Offset()
	if need := base + int(offsets[len(offsets)-1]); need > keys.Len() || need > values.Len() {
		return nil, errs.Schemaf("map offsets need %d entries, have %d keys and %d values", need, keys.Len(), values.Len())
	}
	return &mapDeserializer{validity: validity, offsets: offsets, base: base, keys: keys, values: values}, nil
}

func (d *mapDeserializer) length() int { return d.validity.Len() }
func (d *mapDeserializer) valid(i int) bool { return d.validity.IsSet(i) }

func (d *mapDeserializer) visit(i int, _ hint, v serde.Visitor) error {
	return v.VisitMap(&mapAccess{d: d, pos: int(d.offsets[i]), end: int(d.offsets[i+1])})
}

// mapAccess walks the entries of one row; keys and values must alternate.
type mapAccess struct {
	d        *mapDeserializer
	pos, end int
	haveKey  bool
}

func (a *mapAccess) NextKey(seed serde.Seed) (bool, error) {
	if a.haveKey {
		return false, errs.Protocolf("map key requested before the previous value")
	}
	if a.pos >= a.end {
		return false, nil
	}
	a.haveKey = true
	return true, seed.Deserialize(a.d.keys.At(a.d.base + a.pos))
}

func (a *mapAccess) NextValue(seed serde.Seed) error {
	if !a.haveKey {
		return errs.Protocolf("map value requested without a key")
	}
	a.haveKey = false
	i := a.pos
	a.pos++
	return seed.Deserialize(a.d.values.At(a.d.base + i))
}
