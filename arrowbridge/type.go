package arrowbridge

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/TFMV/chnative"
	"github.com/TFMV/chnative/chtype"
)

// ToArrowType maps a server type to the Arrow type used to represent it,
// applying opts per spec.md §4.6. name identifies the field for the
// per-column enum_i8/enum_i16 overrides.
func ToArrowType(t *chtype.Type, name string, opts ConversionOptions) (arrow.DataType, error) {
	switch t.Kind {
	case chtype.KindInt8:
		return arrow.PrimitiveTypes.Int8, nil
	case chtype.KindInt16:
		return arrow.PrimitiveTypes.Int16, nil
	case chtype.KindInt32:
		return arrow.PrimitiveTypes.Int32, nil
	case chtype.KindInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case chtype.KindUInt8:
		return arrow.PrimitiveTypes.Uint8, nil
	case chtype.KindUInt16:
		return arrow.PrimitiveTypes.Uint16, nil
	case chtype.KindUInt32:
		return arrow.PrimitiveTypes.Uint32, nil
	case chtype.KindUInt64:
		return arrow.PrimitiveTypes.Uint64, nil
	case chtype.KindInt128, chtype.KindInt256, chtype.KindUInt128, chtype.KindUInt256:
		// No native Arrow wide-integer type; represent as fixed-width
		// binary in the type's own byte width, network-order-free raw
		// little-endian bytes (matching the column codec's own layout).
		return &arrow.FixedSizeBinaryType{ByteWidth: int(t.WidthBytes())}, nil
	case chtype.KindFloat32:
		return arrow.PrimitiveTypes.Float32, nil
	case chtype.KindFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case chtype.KindDecimal:
		// Rendered as its canonical text form rather than arrow's own
		// Decimal128/256 type: appendValue/fixedValuesToColumn round-trip
		// Decimal through apd.Decimal's Text('f') form (see convert.go),
		// which a plain string array carries without a second, parallel
		// fixed-width decimal encoding to keep in sync.
		return arrow.BinaryTypes.String, nil
	case chtype.KindString:
		if opts.StringsAsStrings {
			return arrow.BinaryTypes.String, nil
		}
		return arrow.BinaryTypes.Binary, nil
	case chtype.KindFixedString:
		return &arrow.FixedSizeBinaryType{ByteWidth: t.FixedLen}, nil
	case chtype.KindDate:
		return arrow.FixedWidthTypes.Date32, nil
	case chtype.KindDate32:
		return arrow.FixedWidthTypes.Date32, nil
	case chtype.KindDateTime:
		return arrow.FixedWidthTypes.Timestamp_s, nil
	case chtype.KindDateTime64:
		return timestampForPrecision(t.DateTimePrecision), nil
	case chtype.KindUUID:
		return &arrow.FixedSizeBinaryType{ByteWidth: 16}, nil
	case chtype.KindIPv4:
		return arrow.PrimitiveTypes.Uint32, nil
	case chtype.KindIPv6:
		return &arrow.FixedSizeBinaryType{ByteWidth: 16}, nil
	case chtype.KindEnum8:
		return &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int8, ValueType: arrow.BinaryTypes.String}, nil
	case chtype.KindEnum16:
		return &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int16, ValueType: arrow.BinaryTypes.String}, nil
	case chtype.KindArray:
		elemType, err := ToArrowType(t.Elem, name+".elem", opts)
		if err != nil {
			return nil, err
		}
		return arrow.ListOf(elemType), nil
	case chtype.KindTuple:
		fields := make([]arrow.Field, len(t.Fields))
		for i, f := range t.Fields {
			ft, err := ToArrowType(f.Type, f.Name, opts)
			if err != nil {
				return nil, err
			}
			fields[i] = arrow.Field{Name: f.Name, Type: ft}
		}
		return arrow.StructOf(fields...), nil
	case chtype.KindMap:
		keyType, err := ToArrowType(t.Key, name+".key", opts)
		if err != nil {
			return nil, err
		}
		valType, err := ToArrowType(t.Value, name+".value", opts)
		if err != nil {
			return nil, err
		}
		return arrow.MapOf(keyType, valType), nil
	case chtype.KindNullable:
		if t.Elem.Kind == chtype.KindArray && opts.ArrayNullableError {
			return nil, chnative.NewSchemaIncompatible("arrowbridge: nullable array rejected by policy for %q", name)
		}
		if t.Elem.Kind == chtype.KindLowCardinality && opts.LowCardinalityNullableError {
			return nil, chnative.NewSchemaIncompatible("arrowbridge: nullable low-cardinality rejected by policy for %q", name)
		}
		return ToArrowType(t.Elem, name, opts)
	case chtype.KindLowCardinality:
		inner, err := ToArrowType(t.Elem, name, opts)
		if err != nil {
			return nil, err
		}
		return &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int32, ValueType: inner}, nil
	case chtype.KindVariant, chtype.KindDynamic, chtype.KindJSON:
		return arrow.BinaryTypes.Binary, nil
	case chtype.KindNothing:
		return &arrow.NullType{}, nil
	default:
		return nil, chnative.NewSchemaIncompatible("arrowbridge: unsupported server type %s for %q", t.Kind, name)
	}
}

func timestampForPrecision(precision int) *arrow.TimestampType {
	switch {
	case precision <= 0:
		return &arrow.TimestampType{Unit: arrow.Second}
	case precision <= 3:
		return &arrow.TimestampType{Unit: arrow.Millisecond}
	case precision <= 6:
		return &arrow.TimestampType{Unit: arrow.Microsecond}
	default:
		return &arrow.TimestampType{Unit: arrow.Nanosecond}
	}
}

// ToServerType maps an Arrow type back to a server type, the inbound
// (insert) direction of the bridge.
func ToServerType(dt arrow.DataType, name string, opts ConversionOptions) (*chtype.Type, error) {
	switch v := dt.(type) {
	case *arrow.Int8Type:
		return chtype.NewInt8(), nil
	case *arrow.Int16Type:
		return chtype.NewInt16(), nil
	case *arrow.Int32Type:
		return chtype.NewInt32(), nil
	case *arrow.Int64Type:
		return chtype.NewInt64(), nil
	case *arrow.Uint8Type:
		return chtype.NewUInt8(), nil
	case *arrow.Uint16Type:
		return chtype.NewUInt16(), nil
	case *arrow.Uint32Type:
		return chtype.NewUInt32(), nil
	case *arrow.Uint64Type:
		return chtype.NewUInt64(), nil
	case *arrow.Float32Type:
		return chtype.NewFloat32(), nil
	case *arrow.Float64Type:
		return chtype.NewFloat64(), nil
	case *arrow.StringType:
		return chtype.NewString(), nil
	case *arrow.LargeStringType:
		return chtype.NewString(), nil
	case *arrow.BinaryType:
		return chtype.NewString(), nil
	case *arrow.LargeBinaryType:
		return chtype.NewString(), nil
	case *arrow.FixedSizeBinaryType:
		if v.ByteWidth == 16 {
			return chtype.NewUUID(), nil
		}
		return chtype.NewFixedString(v.ByteWidth)
	case *arrow.Date32Type:
		if opts.DateAsDate32 {
			return chtype.NewDate32(), nil
		}
		return chtype.NewDate(), nil
	case *arrow.Date64Type:
		return chtype.NewDate32(), nil
	case *arrow.TimestampType:
		precision := 0
		switch v.Unit {
		case arrow.Millisecond:
			precision = 3
		case arrow.Microsecond:
			precision = 6
		case arrow.Nanosecond:
			precision = 9
		}
		if precision == 0 {
			return chtype.NewDateTime(v.TimeZone), nil
		}
		return chtype.NewDateTime64(precision, v.TimeZone)
	case *arrow.DictionaryType:
		if pairs, ok := opts.EnumI8[name]; ok {
			return chtype.NewEnum8(pairs)
		}
		if pairs, ok := opts.EnumI16[name]; ok {
			return chtype.NewEnum16(pairs)
		}
		inner, err := ToServerType(v.ValueType, name, opts)
		if err != nil {
			return nil, err
		}
		return chtype.NewLowCardinality(inner)
	case *arrow.ListType:
		inner, err := ToServerType(v.Elem(), name+".elem", opts)
		if err != nil {
			return nil, err
		}
		return chtype.NewArray(inner), nil
	case *arrow.StructType:
		fields := make([]chtype.Field, v.NumFields())
		for i := 0; i < v.NumFields(); i++ {
			af := v.Field(i)
			ft, err := ToServerType(af.Type, af.Name, opts)
			if err != nil {
				return nil, err
			}
			fields[i] = chtype.Field{Name: af.Name, Type: ft}
		}
		return chtype.NewTuple(fields), nil
	case *arrow.MapType:
		keyType, err := ToServerType(v.KeyType(), name+".key", opts)
		if err != nil {
			return nil, err
		}
		valType, err := ToServerType(v.ItemType(), name+".value", opts)
		if err != nil {
			return nil, err
		}
		return chtype.NewMap(keyType, valType), nil
	case *arrow.NullType:
		return chtype.NewNothing(), nil
	default:
		return nil, chnative.NewSchemaIncompatible("arrowbridge: unsupported arrow type %s for %q", dt, name)
	}
}
