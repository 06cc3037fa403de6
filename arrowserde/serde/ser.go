// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package serde defines the value protocol between Go values and the
// columnar codec.
//
// Encoding drives a Serializer with one event per leaf value or structural
// boundary. Decoding asks a Deserializer for a value and receives the
// answer through a Visitor. The codec implements Serializer (the array
// builders) and Deserializer (the array deserializers); this package also
// provides the producers and consumers on the other side: dynamic values
// (Dynamic, Decode) and reflection over Go types (Reflect, Into).
package serde

// Serializable is a value that can emit itself into a Serializer.
type Serializable interface {
	Serialize(s Serializer) error
}

// SerializableFunc adapts a function to Serializable.
type SerializableFunc func(s Serializer) error

// Serialize calls f(s).
func (f SerializableFunc) Serialize(s Serializer) error { return f(s) }

// Serializer receives emission events. Structural events come in balanced
// start/element/end groups; every element is itself a Serializable that
// is emitted into the same Serializer.
type Serializer interface {
	// Default emits the zero value of the target column.
	Default() error
	None() error
	Some(v Serializable) error
	Unit() error

	Bool(v bool) error
	I8(v int8) error
	I16(v int16) error
	I32(v int32) error
	I64(v int64) error
	U8(v uint8) error
	U16(v uint16) error
	U32(v uint32) error
	U64(v uint64) error
	F32(v float32) error
	F64(v float64) error
	Str(v string) error
	Bytes(v []byte) error

	SeqStart(n int) error
	SeqElement(v Serializable) error
	SeqEnd() error

	TupleStart(n int) error
	TupleElement(v Serializable) error
	TupleEnd() error

	StructStart(name string, n int) error
	StructField(key string, v Serializable) error
	StructEnd() error

	MapStart(n int) error
	MapKey(v Serializable) error
	MapValue(v Serializable) error
	MapEnd() error

	UnitVariant(name string, index uint32, variant string) error
	NewtypeVariant(name string, index uint32, variant string, v Serializable) error
	// TupleVariantStart selects a variant and returns the serializer that
	// receives its elements. The returned serializer has already seen
	// TupleStart(n); the caller emits TupleElement events and TupleEnd.
	TupleVariantStart(name string, index uint32, variant string, n int) (Serializer, error)
	// StructVariantStart is TupleVariantStart for struct variants; the
	// caller emits StructField events and StructEnd.
	StructVariantStart(name string, index uint32, variant string, n int) (Serializer, error)
}
