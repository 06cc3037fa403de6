// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package arrowserde converts sequences of structured values to Apache
// Arrow arrays and back.
//
// Values reach the codec through the emission protocol of package serde:
// a value emits typed events (Str, I64, StructStart, ...) into a
// [serde.Serializer], and a builder per column stores them. Decoding runs
// the other way: a [serde.Visitor] receives one row at a time from the
// column deserializers. Go values are bridged with [serde.Reflect] and
// [serde.Into]; untyped data with [serde.Dynamic] and [serde.Decode].
//
// # Schemas
//
// Columns are described by [schema.Field] values. They can be written by
// hand, traced from Go struct types with `arrow` struct tags
// ([schema.FieldsFor]), read back from an Arrow schema
// ([schema.FieldsFromArrow]) or loaded from JSON or YAML
// ([schema.LoadFields]). The tag format is:
//
//	`arrow:"name[,option[,option...]]"`
//
// Supported options:
//
//   - int8 ... uint64, float16, float32, float64: override the numeric type
//   - large: LargeUtf8, LargeBinary or LargeList
//   - enum: dictionary encoded string
//   - date32: store a string date as Date32
//   - decimal=P:S: store a decimal string as Decimal128(P, S)
//   - naive: time.Time as a naive Date64
//   - map_as_struct: store a map with string keys as a struct
//
// Pointer fields become nullable columns.
//
// # Encoding and decoding
//
// [ToArrays], [ToRecordBatch] and [ToRecordBatches] encode a sequence of
// records; [Builder] accepts records one at a time and can detach
// finished chunks with [Builder.Take]. [FromArrays] and [FromRecordBatch]
// return a [Deserializer] that reads the columns back as one sequence of
// records; [Decode] and [DecodeInto] are the dynamic and typed shortcuts.
//
// # Wire format
//
// [WriteStream] and [ReadStream] move record batches as an Arrow IPC
// stream, optionally framed with zstd or lz4.
package arrowserde
