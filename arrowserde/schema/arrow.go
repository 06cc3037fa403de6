// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/Query-farm/arrowserde/arrowserde/internal/errs"
)

var primitiveTypes = map[Kind]arrow.DataType{
	Null:        arrow.Null,
	Bool:        arrow.FixedWidthTypes.Boolean,
	Int8:        arrow.PrimitiveTypes.Int8,
	Int16:       arrow.PrimitiveTypes.Int16,
	Int32:       arrow.PrimitiveTypes.Int32,
	Int64:       arrow.PrimitiveTypes.Int64,
	UInt8:       arrow.PrimitiveTypes.Uint8,
	UInt16:      arrow.PrimitiveTypes.Uint16,
	UInt32:      arrow.PrimitiveTypes.Uint32,
	UInt64:      arrow.PrimitiveTypes.Uint64,
	Float16:     arrow.FixedWidthTypes.Float16,
	Float32:     arrow.PrimitiveTypes.Float32,
	Float64:     arrow.PrimitiveTypes.Float64,
	Utf8:        arrow.BinaryTypes.String,
	LargeUtf8:   arrow.BinaryTypes.LargeString,
	Binary:      arrow.BinaryTypes.Binary,
	LargeBinary: arrow.BinaryTypes.LargeBinary,
	Date32:      arrow.FixedWidthTypes.Date32,
	Date64:      arrow.FixedWidthTypes.Date64,
}

// ArrowField converts f into an arrow field. The strategy is stored in the
// field metadata under MetaStrategy.
func (f Field) ArrowField() (arrow.Field, error) {
	dt, err := f.ArrowType()
	if err != nil {
		return arrow.Field{}, err
	}
	return arrow.Field{Name: f.Name, Type: dt, Nullable: f.Nullable, Metadata: f.arrowMetadata()}, nil
}

func (f Field) arrowMetadata() arrow.Metadata {
	if f.Strategy == NoStrategy && len(f.Metadata) == 0 {
		return arrow.Metadata{}
	}
	md := make(map[string]string, len(f.Metadata)+1)
	for k, v := range f.Metadata {
		md[k] = v
	}
	if f.Strategy != NoStrategy {
		md[MetaStrategy] = string(f.Strategy)
	}
	return arrow.MetadataFrom(md)
}

// ArrowType returns the arrow data type of f, including its children.
func (f Field) ArrowType() (arrow.DataType, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f.arrowType()
}

func (f Field) arrowType() (arrow.DataType, error) {
	dt := f.DataType
	if t, ok := primitiveTypes[dt.Kind]; ok {
		return t, nil
	}
	children := make([]arrow.Field, len(f.Children))
	for i, c := range f.Children {
		ct, err := c.arrowType()
		if err != nil {
			return nil, err
		}
		children[i] = arrow.Field{Name: c.Name, Type: ct, Nullable: c.Nullable, Metadata: c.arrowMetadata()}
	}

	switch dt.Kind {
	case FixedSizeBinary:
		return &arrow.FixedSizeBinaryType{ByteWidth: int(dt.Size)}, nil
	case Timestamp:
		return &arrow.TimestampType{Unit: dt.Unit, TimeZone: dt.Timezone}, nil
	case Time32:
		if dt.Unit != arrow.Second && dt.Unit != arrow.Millisecond {
			return nil, errs.Schemaf("Time32 requires unit s or ms, got %s", dt.Unit)
		}
		return &arrow.Time32Type{Unit: dt.Unit}, nil
	case Time64:
		if dt.Unit != arrow.Microsecond && dt.Unit != arrow.Nanosecond {
			return nil, errs.Schemaf("Time64 requires unit us or ns, got %s", dt.Unit)
		}
		return &arrow.Time64Type{Unit: dt.Unit}, nil
	case Duration:
		return &arrow.DurationType{Unit: dt.Unit}, nil
	case Decimal128:
		return &arrow.Decimal128Type{Precision: dt.Precision, Scale: dt.Scale}, nil
	case List:
		return arrow.ListOfField(children[0]), nil
	case LargeList:
		return arrow.LargeListOfField(children[0]), nil
	case FixedSizeList:
		return arrow.FixedSizeListOfField(dt.Size, children[0]), nil
	case Struct:
		return arrow.StructOf(children...), nil
	case Map:
		entries := children[0].Type.(*arrow.StructType)
		key, item := entries.Field(0), entries.Field(1)
		mt := arrow.MapOfWithMetadata(key.Type, key.Metadata, item.Type, item.Metadata)
		mt.SetItemNullable(item.Nullable)
		mt.KeysSorted = dt.Sorted
		return mt, nil
	case Union:
		codes := make([]arrow.UnionTypeCode, len(children))
		for i := range codes {
			codes[i] = arrow.UnionTypeCode(i)
		}
		return arrow.DenseUnionOf(children, codes), nil
	case Dictionary:
		index, ok := primitiveTypes[dt.Index]
		if !ok || !dt.Index.IsInteger() {
			return nil, errs.Schemaf("invalid dictionary key kind %s", dt.Index)
		}
		return &arrow.DictionaryType{IndexType: index, ValueType: children[0].Type}, nil
	}
	return nil, errs.Schemaf("unsupported data type %s", dt)
}

// ToArrowSchema converts a field list into an arrow schema.
func ToArrowSchema(fields []Field) (*arrow.Schema, error) {
	if err := Validate(fields); err != nil {
		return nil, err
	}
	out := make([]arrow.Field, len(fields))
	for i, f := range fields {
		af, err := f.ArrowField()
		if err != nil {
			return nil, err
		}
		out[i] = af
	}
	return arrow.NewSchema(out, nil), nil
}

// FieldsFromArrow converts an arrow schema into a field list.
func FieldsFromArrow(s *arrow.Schema) ([]Field, error) {
	out := make([]Field, s.NumFields())
	for i, af := range s.Fields() {
		f, err := FromArrow(af)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// FromArrow converts an arrow field into a Field.
func FromArrow(af arrow.Field) (Field, error) {
	f, err := fromArrow(af, ChildPath(RootPath, af.Name))
	if err != nil {
		return Field{}, err
	}
	return f, f.Validate()
}

func fromArrow(af arrow.Field, path string) (Field, error) {
	f := Field{Name: af.Name, Nullable: af.Nullable}
	keys, vals := af.Metadata.Keys(), af.Metadata.Values()
	for i, k := range keys {
		if k == MetaStrategy {
			f.Strategy = Strategy(vals[i])
			continue
		}
		if f.Metadata == nil {
			f.Metadata = make(map[string]string)
		}
		f.Metadata[k] = vals[i]
	}

	fail := func(format string, args ...any) (Field, error) {
		return Field{}, errs.Annotate(errs.Schemaf(format, args...), "field", path, "data_type", af.Type.String())
	}
	child := func(c arrow.Field) error {
		cf, err := fromArrow(c, ChildPath(path, c.Name))
		if err != nil {
			return err
		}
		f.Children = append(f.Children, cf)
		return nil
	}

	for k, t := range primitiveTypes {
		if arrow.TypeEqual(t, af.Type) {
			f.DataType = Of(k)
			return f, nil
		}
	}

	switch t := af.Type.(type) {
	case *arrow.FixedSizeBinaryType:
		f.DataType = DataType{Kind: FixedSizeBinary, Size: int32(t.ByteWidth)}
	case *arrow.TimestampType:
		f.DataType = TimestampOf(t.Unit, t.TimeZone)
	case *arrow.Time32Type:
		f.DataType = DataType{Kind: Time32, Unit: t.Unit}
	case *arrow.Time64Type:
		f.DataType = DataType{Kind: Time64, Unit: t.Unit}
	case *arrow.DurationType:
		f.DataType = DataType{Kind: Duration, Unit: t.Unit}
	case *arrow.Decimal128Type:
		f.DataType = DecimalOf(t.Precision, t.Scale)
	case *arrow.ListType:
		f.DataType = Of(List)
		if err := child(t.ElemField()); err != nil {
			return Field{}, err
		}
	case *arrow.LargeListType:
		f.DataType = Of(LargeList)
		if err := child(t.ElemField()); err != nil {
			return Field{}, err
		}
	case *arrow.FixedSizeListType:
		f.DataType = DataType{Kind: FixedSizeList, Size: t.Len()}
		if err := child(t.ElemField()); err != nil {
			return Field{}, err
		}
	case *arrow.MapType:
		f.DataType = DataType{Kind: Map, Sorted: t.KeysSorted}
		if err := child(t.ValueField()); err != nil {
			return Field{}, err
		}
	case *arrow.StructType:
		f.DataType = Of(Struct)
		for _, c := range t.Fields() {
			if err := child(c); err != nil {
				return Field{}, err
			}
		}
	case *arrow.DenseUnionType:
		f.DataType = Of(Union)
		for i, code := range t.TypeCodes() {
			if int(code) != i {
				return fail("union type codes must be 0..n-1, got %v", t.TypeCodes())
			}
		}
		for _, c := range t.Fields() {
			if err := child(c); err != nil {
				return Field{}, err
			}
		}
	case *arrow.SparseUnionType:
		return fail("sparse unions are not supported")
	case *arrow.DictionaryType:
		index, ok := kindOfArrow(t.IndexType)
		if !ok {
			return fail("unsupported dictionary key type %s", t.IndexType)
		}
		f.DataType = DictionaryOf(index)
		if err := child(arrow.Field{Name: "value", Type: t.ValueType}); err != nil {
			return Field{}, err
		}
	default:
		return fail("unsupported arrow type %s", af.Type)
	}
	return f, nil
}

func kindOfArrow(dt arrow.DataType) (Kind, bool) {
	for k, t := range primitiveTypes {
		if arrow.TypeEqual(t, dt) {
			return k, true
		}
	}
	return 0, false
}
