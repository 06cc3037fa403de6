// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
)

// Kind is the physical kind of a column.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	UInt8
	UInt16
	UInt32
	UInt64
	Float16
	Float32
	Float64
	Utf8
	LargeUtf8
	Binary
	LargeBinary
	FixedSizeBinary
	Date32
	Date64
	Timestamp
	Time32
	Time64
	Duration
	Decimal128
	List
	LargeList
	FixedSizeList
	Struct
	Map
	Union
	Dictionary
)

var kindNames = [...]string{
	Null:            "Null",
	Bool:            "Bool",
	Int8:            "Int8",
	Int16:           "Int16",
	Int32:           "Int32",
	Int64:           "Int64",
	UInt8:           "UInt8",
	UInt16:          "UInt16",
	UInt32:          "UInt32",
	UInt64:          "UInt64",
	Float16:         "Float16",
	Float32:         "Float32",
	Float64:         "Float64",
	Utf8:            "Utf8",
	LargeUtf8:       "LargeUtf8",
	Binary:          "Binary",
	LargeBinary:     "LargeBinary",
	FixedSizeBinary: "FixedSizeBinary",
	Date32:          "Date32",
	Date64:          "Date64",
	Timestamp:       "Timestamp",
	Time32:          "Time32",
	Time64:          "Time64",
	Duration:        "Duration",
	Decimal128:      "Decimal128",
	List:            "List",
	LargeList:       "LargeList",
	FixedSizeList:   "FixedSizeList",
	Struct:          "Struct",
	Map:             "Map",
	Union:           "Union",
	Dictionary:      "Dictionary",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsInteger reports whether k is one of the eight integer kinds.
func (k Kind) IsInteger() bool { return k >= Int8 && k <= UInt64 }

func parseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(k), true
		}
	}
	return 0, false
}

// DataType is a physical kind plus its parameters. Only the parameters
// relevant to Kind are set.
type DataType struct {
	Kind Kind
	// Unit of Timestamp, Time32, Time64 and Duration.
	Unit arrow.TimeUnit
	// Timezone of Timestamp.
	Timezone string
	// Precision and Scale of Decimal128.
	Precision int32
	Scale     int32
	// Size is the byte width of FixedSizeBinary or the length of
	// FixedSizeList.
	Size int32
	// Index is the integer kind of Dictionary keys.
	Index Kind
	// Sorted marks Map keys as sorted.
	Sorted bool
}

// Of returns the parameterless data type of kind k.
func Of(k Kind) DataType { return DataType{Kind: k} }

// TimestampOf returns a Timestamp type.
func TimestampOf(unit arrow.TimeUnit, tz string) DataType {
	return DataType{Kind: Timestamp, Unit: unit, Timezone: tz}
}

// DecimalOf returns a Decimal128 type.
func DecimalOf(precision, scale int32) DataType {
	return DataType{Kind: Decimal128, Precision: precision, Scale: scale}
}

// DictionaryOf returns a Dictionary type with the given key kind.
func DictionaryOf(index Kind) DataType {
	return DataType{Kind: Dictionary, Index: index}
}

var unitNames = map[arrow.TimeUnit]string{
	arrow.Second:      "s",
	arrow.Millisecond: "ms",
	arrow.Microsecond: "us",
	arrow.Nanosecond:  "ns",
}

func parseUnit(s string) (arrow.TimeUnit, bool) {
	for u, name := range unitNames {
		if name == s {
			return u, true
		}
	}
	return 0, false
}

// String renders the type in the form accepted by ParseDataType, e.g.
// "Int32", "Timestamp(ms, UTC)", "Decimal128(10, 2)".
func (t DataType) String() string {
	switch t.Kind {
	case Timestamp:
		if t.Timezone != "" {
			return fmt.Sprintf("Timestamp(%s, %s)", unitNames[t.Unit], t.Timezone)
		}
		return fmt.Sprintf("Timestamp(%s)", unitNames[t.Unit])
	case Time32, Time64, Duration:
		return fmt.Sprintf("%s(%s)", t.Kind, unitNames[t.Unit])
	case Decimal128:
		return fmt.Sprintf("Decimal128(%d, %d)", t.Precision, t.Scale)
	case FixedSizeBinary, FixedSizeList:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Size)
	case Dictionary:
		return fmt.Sprintf("Dictionary(%s)", t.Index)
	case Map:
		if t.Sorted {
			return "Map(sorted)"
		}
		return "Map"
	default:
		return t.Kind.String()
	}
}

// ParseDataType parses the output of DataType.String.
func ParseDataType(s string) (DataType, error) {
	s = strings.TrimSpace(s)
	name, args := s, []string(nil)
	if i := strings.IndexByte(s, '('); i >= 0 {
		if !strings.HasSuffix(s, ")") {
			return DataType{}, errs.Schemaf("invalid data type %q", s)
		}
		name = s[:i]
		for _, a := range strings.Split(s[i+1:len(s)-1], ",") {
			args = append(args, strings.TrimSpace(a))
		}
	}
	kind, ok := parseKind(name)
	if !ok {
		return DataType{}, errs.Schemaf("unknown data type %q", s)
	}
	t := DataType{Kind: kind}
	bad := func() (DataType, error) { return DataType{}, errs.Schemaf("invalid arguments for data type %q", s) }

	switch kind {
	case Timestamp:
		if len(args) < 1 || len(args) > 2 {
			return bad()
		}
		if t.Unit, ok = parseUnit(args[0]); !ok {
			return bad()
		}
		if len(args) == 2 {
			t.Timezone = args[1]
		}
	case Time32, Time64, Duration:
		if len(args) != 1 {
			return bad()
		}
		if t.Unit, ok = parseUnit(args[0]); !ok {
			return bad()
		}
	case Decimal128:
		if len(args) != 2 {
			return bad()
		}
		p, err1 := strconv.ParseInt(args[0], 10, 32)
		sc, err2 := strconv.ParseInt(args[1], 10, 32)
		if err1 != nil || err2 != nil {
			return bad()
		}
		t.Precision, t.Scale = int32(p), int32(sc)
	case FixedSizeBinary, FixedSizeList:
		if len(args) != 1 {
			return bad()
		}
		n, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return bad()
		}
		t.Size = int32(n)
	case Dictionary:
		t.Index = UInt32
		if len(args) == 1 {
			if t.Index, ok = parseKind(args[0]); !ok {
				return bad()
			}
		} else if len(args) > 1 {
			return bad()
		}
	case Map:
		if len(args) == 1 && args[0] == "sorted" {
			t.Sorted = true
		} else if len(args) != 0 {
			return bad()
		}
	default:
		if args != nil {
			return bad()
		}
	}
	return t, nil
}

// MarshalText implements encoding.TextMarshaler.
func (t DataType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *DataType) UnmarshalText(b []byte) error {
	parsed, err := ParseDataType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
