// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package conformance holds the round-trip catalogue of the arrowserde
// codec. Every [Case] encodes a set of records into record batches, writes
// them as an IPC stream, reads the stream back and decodes it again,
// comparing the result with the expected values.
//
// The catalogue covers every physical kind the codec supports: scalars,
// strings and binaries, temporal and decimal values, lists, structs and
// their strategies, maps, dense unions, dictionaries and unknown-variant
// columns. The Go types [Status], [Point], [BoundingBox] and [AllTypes]
// exercise the static type tracer and the reflection bridge.
//
// [Run] executes a single case; [Catalogue] lists them all. The
// arrowserde-conformance command runs the catalogue from the shell.
package conformance
