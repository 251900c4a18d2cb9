package arrowbridge

import (
	"math"
	"math/big"
	"net"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/cockroachdb/apd/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/TFMV/chnative"
	"github.com/TFMV/chnative/chtype"
	"github.com/TFMV/chnative/column"
)

var allocator = memory.NewGoAllocator()

// ColumnToArrow builds an Arrow array from a native column, boxing each
// row via Column.ValueAt and appending it through the matching Arrow
// builder. Nullable columns are unwrapped first so the produced array
// carries Arrow's own validity bitmap instead of a sentinel value.
func ColumnToArrow(col column.Column, opts ConversionOptions) (arrow.Array, error) {
	t := col.Type()
	if t.Kind == chtype.KindNullable {
		nc, ok := col.(*column.NullableColumn)
		if !ok {
			return nil, errors.Newf("arrowbridge: column claims Nullable but is %T", col)
		}
		return nullableColumnToArrow(nc, opts)
	}

	dt, err := ToArrowType(t, "", opts)
	if err != nil {
		return nil, err
	}
	bldr := array.NewBuilder(allocator, dt)
	defer bldr.Release()

	n := col.Len()
	for i := 0; i < n; i++ {
		if err := appendValue(bldr, t, col.ValueAt(i)); err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
	}
	return bldr.NewArray(), nil
}

func nullableColumnToArrow(nc *column.NullableColumn, opts ConversionOptions) (arrow.Array, error) {
	inner := nc.Inner()
	dt, err := ToArrowType(inner.Type(), "", opts)
	if err != nil {
		return nil, err
	}
	bldr := array.NewBuilder(allocator, dt)
	defer bldr.Release()

	for i := 0; i < nc.Len(); i++ {
		if nc.IsNull(i) {
			bldr.AppendNull()
			continue
		}
		if err := appendValue(bldr, inner.Type(), inner.ValueAt(i)); err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
	}
	return bldr.NewArray(), nil
}

// appendValue appends one boxed column value to bldr, dispatching on t.Kind
// to pick the concrete builder type ValueAt produced its boxed value for.
func appendValue(bldr array.Builder, t *chtype.Type, v interface{}) error {
	switch t.Kind {
	case chtype.KindInt8:
		bldr.(*array.Int8Builder).Append(v.(int8))
	case chtype.KindUInt8:
		bldr.(*array.Uint8Builder).Append(v.(byte))
	case chtype.KindInt16:
		bldr.(*array.Int16Builder).Append(v.(int16))
	case chtype.KindUInt16:
		bldr.(*array.Uint16Builder).Append(v.(uint16))
	case chtype.KindInt32:
		bldr.(*array.Int32Builder).Append(v.(int32))
	case chtype.KindUInt32:
		bldr.(*array.Uint32Builder).Append(v.(uint32))
	case chtype.KindIPv4:
		ip := v.(net.IP).To4()
		bldr.(*array.Uint32Builder).Append(uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3]))
	case chtype.KindInt64:
		bldr.(*array.Int64Builder).Append(v.(int64))
	case chtype.KindUInt64:
		bldr.(*array.Uint64Builder).Append(v.(uint64))
	case chtype.KindFloat32:
		bldr.(*array.Float32Builder).Append(v.(float32))
	case chtype.KindFloat64:
		bldr.(*array.Float64Builder).Append(v.(float64))
	case chtype.KindInt128, chtype.KindInt256, chtype.KindUInt128, chtype.KindUInt256:
		bldr.(*array.FixedSizeBinaryBuilder).Append(bigIntToBytes(v.(*big.Int), t.WidthBytes()))
	case chtype.KindDecimal:
		s := v.(*apd.Decimal).Text('f')
		bldr.(*array.StringBuilder).Append(s) // decimal rendered as its canonical text form
	case chtype.KindString:
		switch sb := bldr.(type) {
		case *array.StringBuilder:
			sb.Append(string(v.([]byte)))
		case *array.BinaryBuilder:
			sb.Append(v.([]byte))
		}
	case chtype.KindFixedString:
		bldr.(*array.FixedSizeBinaryBuilder).Append(v.([]byte))
	case chtype.KindUUID:
		u := v.(uuid.UUID)
		bldr.(*array.FixedSizeBinaryBuilder).Append(u[:])
	case chtype.KindIPv6:
		bldr.(*array.FixedSizeBinaryBuilder).Append([]byte(v.(net.IP)))
	case chtype.KindDate, chtype.KindDate32:
		tm := v.(time.Time)
		days := int32(tm.Sub(epoch()).Hours() / 24)
		bldr.(*array.Date32Builder).Append(arrow.Date32(days))
	case chtype.KindDateTime, chtype.KindDateTime64:
		tm := v.(time.Time)
		bldr.(*array.TimestampBuilder).Append(arrow.Timestamp(tm.Sub(epoch()).Nanoseconds()))
	case chtype.KindEnum8:
		bldr.(*array.Int8Builder).Append(int8(v.(int32)))
	case chtype.KindEnum16:
		bldr.(*array.Int16Builder).Append(int16(v.(int32)))
	case chtype.KindArray:
		values := v.([]interface{})
		lb := bldr.(*array.ListBuilder)
		lb.Append(true)
		vb := lb.ValueBuilder()
		for _, elem := range values {
			if elem == nil {
				vb.AppendNull()
				continue
			}
			if err := appendValue(vb, t.Elem, elem); err != nil {
				return err
			}
		}
	case chtype.KindTuple:
		fields := v.([]interface{})
		sb := bldr.(*array.StructBuilder)
		sb.Append(true)
		for i, f := range t.Fields {
			if err := appendValue(sb.FieldBuilder(i), f.Type, fields[i]); err != nil {
				return errors.Wrapf(err, "tuple field %d", i)
			}
		}
	default:
		return errors.Newf("arrowbridge: ColumnToArrow has no encoder for %s", t.Kind)
	}
	return nil
}

func bigIntToBytes(v *big.Int, width int) []byte {
	u := new(big.Int).Set(v)
	if v.Sign() < 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(width*8))
		u.Add(v, mod)
	}
	be := u.FillBytes(make([]byte, width))
	le := make([]byte, width)
	for i, b := range be {
		le[width-1-i] = b
	}
	return le
}

func epoch() time.Time { return time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC) }

// ArrowToColumn builds a native column from an Arrow array of the given
// server type, the inverse of ColumnToArrow. For Nullable types the
// returned column is a *column.NullableColumn wrapping the inner array's
// values, reconstructed from Arrow's validity bitmap.
func ArrowToColumn(arr arrow.Array, t *chtype.Type) (column.Column, error) {
	if t.Kind == chtype.KindNullable {
		mask := make([]bool, arr.Len())
		for i := 0; i < arr.Len(); i++ {
			mask[i] = arr.IsNull(i)
		}
		inner, err := arrowValuesToColumn(arr, t.Elem)
		if err != nil {
			return nil, err
		}
		return column.NewNullableColumn(mask, inner)
	}
	return arrowValuesToColumn(arr, t)
}

func arrowValuesToColumn(arr arrow.Array, t *chtype.Type) (column.Column, error) {
	n := arr.Len()
	switch t.Kind {
	case chtype.KindString:
		values := make([][]byte, n)
		switch a := arr.(type) {
		case *array.String:
			for i := 0; i < n; i++ {
				values[i] = []byte(a.Value(i))
			}
		case *array.Binary:
			for i := 0; i < n; i++ {
				values[i] = a.Value(i)
			}
		default:
			return nil, errors.Newf("arrowbridge: expected string/binary array, got %T", arr)
		}
		return column.NewStringColumn(values), nil
	case chtype.KindUUID:
		a, ok := arr.(*array.FixedSizeBinary)
		if !ok {
			return nil, errors.Newf("arrowbridge: expected fixed-size binary for UUID, got %T", arr)
		}
		data := make([]byte, 0, n*16)
		for i := 0; i < n; i++ {
			u, err := uuid.FromBytes(a.Value(i))
			if err != nil {
				return nil, errors.Wrap(err, "parse uuid")
			}
			data = append(data, column.EncodeWireUUID(u)...)
		}
		return column.NewFixedColumn(t, n, data)
	case chtype.KindFixedString, chtype.KindIPv6:
		a, ok := arr.(*array.FixedSizeBinary)
		if !ok {
			return nil, errors.Newf("arrowbridge: expected fixed-size binary, got %T", arr)
		}
		if t.Kind == chtype.KindFixedString {
			values := make([][]byte, n)
			for i := 0; i < n; i++ {
				if len(a.Value(i)) > t.FixedLen {
					return nil, chnative.NewSchemaIncompatible("arrowbridge: value of %d bytes exceeds FixedString(%d)", len(a.Value(i)), t.FixedLen)
				}
				values[i] = a.Value(i)
			}
			return column.NewFixedStringColumn(values, t.FixedLen, nil), nil
		}
		data := make([]byte, 0, n*16)
		for i := 0; i < n; i++ {
			data = append(data, a.Value(i)...)
		}
		return column.NewFixedColumn(t, n, data)
	case chtype.KindArray:
		la, ok := arr.(*array.List)
		if !ok {
			return nil, errors.Newf("arrowbridge: expected list array, got %T", arr)
		}
		inner, err := arrowValuesToColumn(la.ListValues(), t.Elem)
		if err != nil {
			return nil, err
		}
		offsets := make([]uint64, n)
		for i := 0; i < n; i++ {
			_, end := la.ValueOffsets(i)
			offsets[i] = uint64(end)
		}
		return column.NewArrayColumn(offsets, inner)
	case chtype.KindTuple:
		sa, ok := arr.(*array.Struct)
		if !ok {
			return nil, errors.Newf("arrowbridge: expected struct array, got %T", arr)
		}
		fields := make([]column.Column, len(t.Fields))
		names := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			fc, err := arrowValuesToColumn(sa.Field(i), f.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "tuple field %d", i)
			}
			fields[i] = fc
			names[i] = f.Name
		}
		return column.NewTupleColumn(names, fields)
	default:
		return fixedValuesToColumn(arr, t)
	}
}

// fixedValuesToColumn covers every FixedColumn-backed scalar kind by
// re-deriving the exact little-endian byte layout the column codec (D)
// expects, the mirror image of FixedColumn.ValueAt.
func fixedValuesToColumn(arr arrow.Array, t *chtype.Type) (column.Column, error) {
	n := arr.Len()
	width := t.WidthBytes()
	data := make([]byte, n*width)

	putLE := func(i int, v uint64) {
		for b := 0; b < width; b++ {
			data[i*width+b] = byte(v >> (8 * b))
		}
	}

	switch t.Kind {
	case chtype.KindInt8, chtype.KindEnum8:
		a := arr.(*array.Int8)
		for i := 0; i < n; i++ {
			data[i] = byte(a.Value(i))
		}
	case chtype.KindUInt8:
		a := arr.(*array.Uint8)
		for i := 0; i < n; i++ {
			data[i] = a.Value(i)
		}
	case chtype.KindInt16, chtype.KindEnum16:
		a := arr.(*array.Int16)
		for i := 0; i < n; i++ {
			putLE(i, uint64(uint16(a.Value(i))))
		}
	case chtype.KindUInt16:
		a := arr.(*array.Uint16)
		for i := 0; i < n; i++ {
			putLE(i, uint64(a.Value(i)))
		}
	case chtype.KindInt32:
		a := arr.(*array.Int32)
		for i := 0; i < n; i++ {
			putLE(i, uint64(uint32(a.Value(i))))
		}
	case chtype.KindUInt32, chtype.KindIPv4:
		a := arr.(*array.Uint32)
		for i := 0; i < n; i++ {
			putLE(i, uint64(a.Value(i)))
		}
	case chtype.KindInt64:
		a := arr.(*array.Int64)
		for i := 0; i < n; i++ {
			putLE(i, uint64(a.Value(i)))
		}
	case chtype.KindUInt64:
		a := arr.(*array.Uint64)
		for i := 0; i < n; i++ {
			putLE(i, a.Value(i))
		}
	case chtype.KindFloat32:
		a := arr.(*array.Float32)
		for i := 0; i < n; i++ {
			putLE(i, uint64(math.Float32bits(a.Value(i))))
		}
	case chtype.KindFloat64:
		a := arr.(*array.Float64)
		for i := 0; i < n; i++ {
			putLE(i, math.Float64bits(a.Value(i)))
		}
	case chtype.KindDate, chtype.KindDate32:
		a := arr.(*array.Date32)
		for i := 0; i < n; i++ {
			if t.Kind == chtype.KindDate {
				putLE(i, uint64(uint16(int32(a.Value(i)))))
			} else {
				putLE(i, uint64(uint32(int32(a.Value(i)))))
			}
		}
	case chtype.KindDateTime:
		a := arr.(*array.Timestamp)
		for i := 0; i < n; i++ {
			secs := uint32(time.Duration(a.Value(i)) / time.Second)
			putLE(i, uint64(secs))
		}
	case chtype.KindDateTime64:
		a := arr.(*array.Timestamp)
		for i := 0; i < n; i++ {
			tm := epoch().Add(time.Duration(a.Value(i)))
			raw := column.EncodeDateTime64(tm, t.DateTimePrecision)
			putLE(i, uint64(raw))
		}
	case chtype.KindInt128, chtype.KindInt256, chtype.KindUInt128, chtype.KindUInt256:
		a := arr.(*array.FixedSizeBinary)
		for i := 0; i < n; i++ {
			copy(data[i*width:(i+1)*width], a.Value(i))
		}
	case chtype.KindDecimal:
		a := arr.(*array.String)
		for i := 0; i < n; i++ {
			d, _, err := apd.NewFromString(a.Value(i))
			if err != nil {
				return nil, errors.Wrapf(err, "parse decimal %q", a.Value(i))
			}
			encoded, err := column.EncodeDecimal(d, t.Scale, width)
			if err != nil {
				return nil, err
			}
			copy(data[i*width:(i+1)*width], encoded)
		}
	default:
		return nil, errors.Newf("arrowbridge: ArrowToColumn has no decoder for %s", t.Kind)
	}
	return column.NewFixedColumn(t, n, data)
}
