// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package deserialization

import (
	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
	"github.com/Query-farm/arrowserde/arrowserde/serde"
)

// valueDeserializer answers every request with the same visit.
type valueDeserializer func(v serde.Visitor) error

func (f valueDeserializer) Any(v serde.Visitor) error { return f(v) }
func (f valueDeserializer) Option(v serde.Visitor) error { return v.VisitSome(f) }
func (f valueDeserializer) IgnoredAny(v serde.Visitor) error { return f(v) }
func (f valueDeserializer) Unit(v serde.Visitor) error { return f(v) }
func (f valueDeserializer) Bool(v serde.Visitor) error { return f(v) }
func (f valueDeserializer) I8(v serde.Visitor) error { return f(v) }
func (f valueDeserializer) I16(v serde.Visitor) error { return f(v) }
func (f valueDeserializer) I32(v serde.Visitor) error { return f(v) }
func (f valueDeserializer) I64(v serde.Visitor) error { return f(v) }
func (f valueDeserializer) U8(v serde.Visitor) error { return f(v) }
func (f valueDeserializer) U16(v serde.Visitor) error { return f(v) }
func (f valueDeserializer) U32(v serde.Visitor) error { return f(v) }
func (f valueDeserializer) U64(v serde.Visitor) error { return f(v) }
func (f valueDeserializer) F32(v serde.Visitor) error { return f(v) }
func (f valueDeserializer) F64(v serde.Visitor) error { return f(v) }
func (f valueDeserializer) String(v serde.Visitor) error { return f(v) }
func (f valueDeserializer) Bytes(v serde.Visitor) error { return f(v) }
func (f valueDeserializer) Seq(v serde.Visitor) error { return f(v) }
func (f valueDeserializer) Map(v serde.Visitor) error { return f(v) }

func (f valueDeserializer) Tuple(_ int, v serde.Visitor) error { return f(v) }

func (f valueDeserializer) Struct(_ string, _ []string, v serde.Visitor) error { return f(v) }

func (f valueDeserializer) Enum(_ string, _ []string, v serde.Visitor) error { return f(v) }

func stringValue(s string) serde.Deserializer {
	return valueDeserializer(func(v serde.Visitor) error { return v.VisitString(s) })
}

var unitValue serde.Deserializer = valueDeserializer(func(v serde.Visitor) error { return v.VisitUnit() })

// seqAccess iterates rows [pos, end) of a column.
type seqAccess struct {
	d        *ArrayDeserializer
	pos, end int
}

func (a *seqAccess) NextElement(seed serde.Seed) (bool, error) {
	if a.pos >= a.end {
		return false, nil
	}
	i := a.pos
	a.pos++
	return true, seed.Deserialize(a.d.At(i))
}

func (a *seqAccess) Remaining() (int, bool) { return a.end - a.pos, true }

// unitEnum is an enum value whose variant carries no payload.
type unitEnum struct {
	name  string
	index uint32
}

func (e unitEnum) Variant() (string, uint32, serde.VariantAccess, error) {
	return e.name, e.index, unitVariant{name: e.name}, nil
}

type unitVariant struct {
	name string
}

func (unitVariant) Unit() error { return nil }

func (unitVariant) Newtype(seed serde.Seed) error { return seed.Deserialize(unitValue) }

func (u unitVariant) Tuple(int, serde.Visitor) error {
	return errs.Protocolf("variant %q is a unit variant, not a tuple variant", u.name)
}

func (u unitVariant) Struct([]string, serde.Visitor) error {
	return errs.Protocolf("variant %q is a unit variant, not a struct variant", u.name)
}
