// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package schema

// Well-known field metadata keys. They appear as arrow field metadata on
// the fields produced by ToArrow.
const (
	MetaStrategy = "arrowserde:strategy"
)

// Strategy changes how a column is emitted or interpreted.
type Strategy string

const (
	NoStrategy Strategy = ""
	// MapAsStruct encodes map events with string keys into a struct column.
	MapAsStruct Strategy = "MapAsStruct"
	// TupleAsStruct encodes tuple events positionally into a struct column
	// whose children are named "0", "1", ...
	TupleAsStruct Strategy = "TupleAsStruct"
	// UnknownVariant marks a placeholder whose values are discarded.
	UnknownVariant Strategy = "UnknownVariant"
	// NaiveStrAsDate64 stores naive datetime strings in a Date64 or
	// Timestamp column without timezone.
	NaiveStrAsDate64 Strategy = "NaiveStrAsDate64"
	// UtcStrAsDate64 stores UTC datetime strings ("...Z") in a Date64 or
	// Timestamp column.
	UtcStrAsDate64 Strategy = "UtcStrAsDate64"
)

func (s Strategy) valid() bool {
	switch s {
	case NoStrategy, MapAsStruct, TupleAsStruct, UnknownVariant, NaiveStrAsDate64, UtcStrAsDate64:
		return true
	}
	return false
}
