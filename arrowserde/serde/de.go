// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package serde

import (
	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
)

// Deserializer answers extraction requests. Each request consumes exactly
// one value and reports it to the visitor. Any lets the deserializer pick
// the visitor method that matches its column; the typed requests state
// what the caller expects.
type Deserializer interface {
	Any(v Visitor) error
	Option(v Visitor) error
	IgnoredAny(v Visitor) error
	Unit(v Visitor) error
	Bool(v Visitor) error
	I8(v Visitor) error
	I16(v Visitor) error
	I32(v Visitor) error
	I64(v Visitor) error
	U8(v Visitor) error
	U16(v Visitor) error
	U32(v Visitor) error
	U64(v Visitor) error
	F32(v Visitor) error
	F64(v Visitor) error
	String(v Visitor) error
	Bytes(v Visitor) error
	Seq(v Visitor) error
	Tuple(n int, v Visitor) error
	Map(v Visitor) error
	Struct(name string, fields []string, v Visitor) error
	Enum(name string, variants []string, v Visitor) error
}

// Visitor receives the answer of a Deserializer. Implementations store the
// value they are given.
type Visitor interface {
	VisitNone() error
	VisitSome(d Deserializer) error
	VisitUnit() error
	VisitBool(v bool) error
	VisitI8(v int8) error
	VisitI16(v int16) error
	VisitI32(v int32) error
	VisitI64(v int64) error
	VisitU8(v uint8) error
	VisitU16(v uint16) error
	VisitU32(v uint32) error
	VisitU64(v uint64) error
	VisitF32(v float32) error
	VisitF64(v float64) error
	VisitString(v string) error
	// VisitBytes receives a slice borrowed from the column. It is only
	// valid until the visitor returns.
	VisitBytes(v []byte) error
	VisitSeq(a SeqAccess) error
	VisitMap(a MapAccess) error
	VisitStruct(a MapAccess) error
	VisitEnum(a EnumAccess) error
}

// Seed deserializes one value out of a Deserializer into wherever the seed
// points.
type Seed interface {
	Deserialize(d Deserializer) error
}

// SeedFunc adapts a function to Seed.
type SeedFunc func(d Deserializer) error

// Deserialize calls f(d).
func (f SeedFunc) Deserialize(d Deserializer) error { return f(d) }

// VisitorSeed is a Seed that asks for Any and reports to v.
func VisitorSeed(v Visitor) Seed {
	return SeedFunc(func(d Deserializer) error { return d.Any(v) })
}

// SeqAccess iterates the elements of a sequence.
type SeqAccess interface {
	// NextElement deserializes the next element with seed. It returns
	// false once the sequence is done.
	NextElement(seed Seed) (bool, error)
	// Remaining returns the number of elements left, when known.
	Remaining() (int, bool)
}

// MapAccess iterates the entries of a map or the fields of a struct.
type MapAccess interface {
	// NextKey deserializes the next key. It returns false once the
	// entries are done.
	NextKey(seed Seed) (bool, error)
	// NextValue deserializes the value belonging to the last key.
	NextValue(seed Seed) error
}

// EnumAccess exposes the selected variant of an enum value.
type EnumAccess interface {
	Variant() (name string, index uint32, access VariantAccess, err error)
}

// VariantAccess deserializes the payload of the selected variant.
type VariantAccess interface {
	Unit() error
	Newtype(seed Seed) error
	Tuple(n int, v Visitor) error
	Struct(fields []string, v Visitor) error
}

// Deserializable is implemented by Go types that read themselves from a
// Deserializer. Into uses it in preference to reflection.
type Deserializable interface {
	Deserialize(d Deserializer) error
}

// UnexpectedVisitor implements every Visitor method by failing. Embed it
// and override the methods a visitor accepts.
type UnexpectedVisitor struct {
	// Expecting describes what the visitor wants, for error messages.
	Expecting string
}

func (u UnexpectedVisitor) fail(got string) error {
	return errs.Protocolf("invalid type: %s, expected %s", got, u.Expecting)
}

func (u UnexpectedVisitor) VisitNone() error { return u.fail("none") }
func (u UnexpectedVisitor) VisitSome(Deserializer) error { return u.fail("option") }
func (u UnexpectedVisitor) VisitUnit() error { return u.fail("unit") }
func (u UnexpectedVisitor) VisitBool(bool) error { return u.fail("bool") }
func (u UnexpectedVisitor) VisitI8(int8) error { return u.fail("i8") }
func (u UnexpectedVisitor) VisitI16(int16) error { return u.fail("i16") }
func (u UnexpectedVisitor) VisitI32(int32) error { return u.fail("i32") }
func (u UnexpectedVisitor) VisitI64(int64) error { return u.fail("i64") }
func (u UnexpectedVisitor) VisitU8(uint8) error { return u.fail("u8") }
func (u UnexpectedVisitor) VisitU16(uint16) error { return u.fail("u16") }
func (u UnexpectedVisitor) VisitU32(uint32) error { return u.fail("u32") }
func (u UnexpectedVisitor) VisitU64(uint64) error { return u.fail("u64") }
func (u UnexpectedVisitor) VisitF32(float32) error { return u.fail("f32") }
func (u UnexpectedVisitor) VisitF64(float64) error { return u.fail("f64") }
func (u UnexpectedVisitor) VisitString(string) error { return u.fail("string") }
func (u UnexpectedVisitor) VisitBytes([]byte) error { return u.fail("bytes") }
func (u UnexpectedVisitor) VisitSeq(SeqAccess) error { return u.fail("sequence") }
func (u UnexpectedVisitor) VisitMap(MapAccess) error { return u.fail("map") }
func (u UnexpectedVisitor) VisitStruct(MapAccess) error { return u.fail("struct") }
func (u UnexpectedVisitor) VisitEnum(EnumAccess) error { return u.fail("enum") }

// IgnoredVisitor accepts and discards any value.
type IgnoredVisitor struct{}

func (IgnoredVisitor) VisitNone() error { return nil }
func (IgnoredVisitor) VisitSome(d Deserializer) error { return d.IgnoredAny(IgnoredVisitor{}) }
func (IgnoredVisitor) VisitUnit() error { return nil }
func (IgnoredVisitor) VisitBool(bool) error { return nil }
func (IgnoredVisitor) VisitI8(int8) error { return nil }
func (IgnoredVisitor) VisitI16(int16) error { return nil }
func (IgnoredVisitor) VisitI32(int32) error { return nil }
func (IgnoredVisitor) VisitI64(int64) error { return nil }
func (IgnoredVisitor) VisitU8(uint8) error { return nil }
func (IgnoredVisitor) VisitU16(uint16) error { return nil }
func (IgnoredVisitor) VisitU32(uint32) error { return nil }
func (IgnoredVisitor) VisitU64(uint64) error { return nil }
func (IgnoredVisitor) VisitF32(float32) error { return nil }
func (IgnoredVisitor) VisitF64(float64) error { return nil }
func (IgnoredVisitor) VisitString(string) error { return nil }
func (IgnoredVisitor) VisitBytes([]byte) error { return nil }

func (IgnoredVisitor) VisitSeq(a SeqAccess) error {
	for {
		ok, err := a.NextElement(ignoredSeed)
		if err != nil || !ok {
			return err
		}
	}
}

func (IgnoredVisitor) VisitMap(a MapAccess) error {
	for {
		ok, err := a.NextKey(ignoredSeed)
		if err != nil || !ok {
			return err
		}
		if err := a.NextValue(ignoredSeed); err != nil {
			return err
		}
	}
}

func (i IgnoredVisitor) VisitStruct(a MapAccess) error { return i.VisitMap(a) }

func (IgnoredVisitor) VisitEnum(a EnumAccess) error {
	_, _, va, err := a.Variant()
	if err != nil {
		return err
	}
	return va.Newtype(ignoredSeed)
}

var ignoredSeed = SeedFunc(func(d Deserializer) error { return d.IgnoredAny(IgnoredVisitor{}) })
