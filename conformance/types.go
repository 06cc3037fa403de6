// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package conformance

import "time"

// Status is a string-backed enum stored as a dictionary column.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusActive  Status = "ACTIVE"
	StatusClosed  Status = "CLOSED"
)

// Point is a simple 2D point.
type Point struct {
	X float64 `arrow:"x"`
	Y float64 `arrow:"y"`
}

// BoundingBox contains two nested Points and a label.
type BoundingBox struct {
	TopLeft     Point  `arrow:"top_left"`
	BottomRight Point  `arrow:"bottom_right"`
	Label       string `arrow:"label"`
}

// Task pairs an enum with a timestamp.
type Task struct {
	ID      uint32    `arrow:"id"`
	Status  Status    `arrow:"status,enum"`
	Created time.Time `arrow:"created"`
}

// AllTypes demonstrates comprehensive type coverage.
type AllTypes struct {
	StrField       string            `arrow:"str_field"`
	BytesField     []byte            `arrow:"bytes_field"`
	IntField       int64             `arrow:"int_field"`
	FloatField     float64           `arrow:"float_field"`
	BoolField      bool              `arrow:"bool_field"`
	ListOfInt      []int64           `arrow:"list_of_int"`
	ListOfStr      []string          `arrow:"list_of_str,large"`
	DictField      map[string]int64  `arrow:"dict_field"`
	EnumField      Status            `arrow:"enum_field,enum"`
	NestedPoint    Point             `arrow:"nested_point"`
	OptionalStr    *string           `arrow:"optional_str"`
	OptionalInt    *int64            `arrow:"optional_int"`
	OptionalNested *Point            `arrow:"optional_nested"`
	ListOfNested   []Point           `arrow:"list_of_nested"`
	AnnotatedInt32 int64             `arrow:"annotated_int32,int32"`
	AnnotatedFloat float64           `arrow:"annotated_float32,float32"`
	NestedList     [][]int64         `arrow:"nested_list"`
	DictStrStr     map[string]string `arrow:"dict_str_str"`
	Digest         [4]byte           `arrow:"digest"`
	Pair           [2]int16          `arrow:"pair"`
	Elapsed        time.Duration     `arrow:"elapsed"`
	Price          string            `arrow:"price,decimal=10:2"`
	Internal       string            `arrow:"-"`
}
