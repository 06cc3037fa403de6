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

// listDeserializer reads List and LargeList columns. Row i is the element
// range [offsets[i], offsets[i+1]) of the child column.
type listDeserializer[O buffers.Offset] struct {
	validity buffers.BitsView
	offsets  []O
	element  *ArrayDeserializer
}

func newListDeserializer[O buffers.Offset](field schema.Field, data arrow.ArrayData, path string) (*listDeserializer[O], error) {
	if len(field.Children) != 1 {
		return nil, errs.Schemaf("list field must have exactly one child, got %d", len(field.Children))
	}
	children, err := childData(data, 1)
	if err != nil {
		return nil, err
	}
	offsets, err := buffers.OffsetsOf[O](data, 0, data.Len())
	if err != nil {
		return nil, err
	}
	validity := validityOf(data)
	if err := buffers.CheckListLayout(offsets, validity); err != nil {
		return nil, err
	}
	elem := field.Children[0]
	element, err := New(elem, children[0], schema.ChildPath(path, elem.Name))
	if err != nil {
		return nil, err
	}
	if last := int(offsets[len(offsets)-1]); last > element.Len() {
		return nil, errs.Schemaf("list offsets end at %d but the element column holds %d values", last, element.Len())
	}
	return &listDeserializer[O]{validity: validity, offsets: offsets, element: element}, nil
}

func (d *listDeserializer[O]) length() int { return d.validity.Len() }
func (d *listDeserializer[O]) valid(i int) bool { return d.validity.IsSet(i) }

func (d *listDeserializer[O]) visit(i int, h hint, v serde.Visitor) error {
	return visitRange(d.element, int(d.offsets[i]), int(d.offsets[i+1]), h, v)
}

// visitRange answers a request for the elements [start, end) of element.
// Byte requests on u8 elements collect the range into a byte string.
func visitRange(element *ArrayDeserializer, start, end int, h hint, v serde.Visitor) error {
	if h == hintBytes {
		if ints, ok := element.inner.(*intDeserializer[uint8]); ok {
			out := make([]byte, 0, end-start)
			for j := start; j < end; j++ {
				if !ints.valid(j) {
					return errs.Conversionf("cannot read a null element as a byte")
				}
				out = append(out, ints.values[j])
			}
			return v.VisitBytes(out)
		}
	}
	return v.VisitSeq(&seqAccess{d: element, pos: start, end: end})
}

// fixedSizeListDeserializer reads FixedSizeList columns. Row i is the
// element range [i*n, (i+1)*n) shifted by the array offset.
type fixedSizeListDeserializer struct {
	validity buffers.BitsView
	n        int
	base     int
	element  *ArrayDeserializer
}

func newFixedSizeListDeserializer(field schema.Field, data arrow.ArrayData, path string) (*fixedSizeListDeserializer, error) {
	if len(field.Children) != 1 {
		return nil, errs.Schemaf("fixed-size list field must have exactly one child, got %d", len(field.Children))
	}
	children, err := childData(data, 1)
	if err != nil {
		return nil, err
	}
	elem := field.Children[0]
	element, err := New(elem, children[0], schema.ChildPath(path, elem.Name))
	if err != nil {
		return nil, err
	}
	n := int(field.DataType.Size)
	if need := (data.Offset() + data.Len()) * n; need > element.Len() {
		return nil, errs.Schemaf("fixed-size list of %d rows needs %d elements, got %d", data.Len(), need, element.Len())
	}
	return &fixedSizeListDeserializer{validity: validityOf(data), n: n, base: data.Offset(), element: element}, nil
}

func (d *fixedSizeListDeserializer) length() int { return d.validity.Len() }
func (d *fixedSizeListDeserializer) valid(i int) bool { return d.validity.IsSet(i) }

func (d *fixedSizeListDeserializer) visit(i int, h hint, v serde.Visitor) error {
	start := (d.base + i) * d.n
	return visitRange(d.element, start, start+d.n, h, v)
}
