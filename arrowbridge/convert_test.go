package arrowbridge_test

import (
	"math/big"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/chnative/arrowbridge"
	"github.com/TFMV/chnative/chtype"
	"github.com/TFMV/chnative/column"
)

func TestColumnToArrowInt32RoundTrip(t *testing.T) {
	data := make([]byte, 3*4)
	data[0], data[4], data[8] = 1, 2, 42
	c, err := column.NewFixedColumn(chtype.NewInt32(), 3, data)
	require.NoError(t, err)

	arr, err := arrowbridge.ColumnToArrow(c, arrowbridge.ConversionOptions{})
	require.NoError(t, err)
	require.Equal(t, 3, arr.Len())

	back, err := arrowbridge.ArrowToColumn(arr, chtype.NewInt32())
	require.NoError(t, err)
	require.Equal(t, c.ValueAt(0), back.ValueAt(0))
	require.Equal(t, c.ValueAt(1), back.ValueAt(1))
	require.Equal(t, c.ValueAt(2), back.ValueAt(2))
}

func TestColumnToArrowStringRoundTrip(t *testing.T) {
	c := column.NewStringColumn([][]byte{[]byte("hello"), []byte(""), []byte("world")})

	arr, err := arrowbridge.ColumnToArrow(c, arrowbridge.ConversionOptions{StringsAsStrings: true})
	require.NoError(t, err)

	back, err := arrowbridge.ArrowToColumn(arr, chtype.NewString())
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), back.ValueAt(0))
	require.Equal(t, []byte(""), back.ValueAt(1))
	require.Equal(t, []byte("world"), back.ValueAt(2))
}

func TestColumnToArrowNullableRoundTrip(t *testing.T) {
	inner := column.NewStringColumn([][]byte{[]byte(""), []byte("x"), []byte("")})
	nc, err := column.NewNullableColumn([]bool{true, false, true}, inner)
	require.NoError(t, err)

	arr, err := arrowbridge.ColumnToArrow(nc, arrowbridge.ConversionOptions{StringsAsStrings: true})
	require.NoError(t, err)
	require.True(t, arr.IsNull(0))
	require.False(t, arr.IsNull(1))
	require.True(t, arr.IsNull(2))

	nullableType, err := chtype.NewNullable(chtype.NewString())
	require.NoError(t, err)
	back, err := arrowbridge.ArrowToColumn(arr, nullableType)
	require.NoError(t, err)
	require.Nil(t, back.ValueAt(0))
	require.Equal(t, []byte("x"), back.ValueAt(1))
	require.Nil(t, back.ValueAt(2))
}

func TestColumnToArrowDecimalRoundTrip(t *testing.T) {
	typ, err := chtype.NewDecimal(18, 2)
	require.NoError(t, err)
	d, _, err := apd.NewFromString("123.45")
	require.NoError(t, err)
	encoded, err := column.EncodeDecimal(d, 2, typ.WidthBytes())
	require.NoError(t, err)
	c, err := column.NewFixedColumn(typ, 1, encoded)
	require.NoError(t, err)

	arr, err := arrowbridge.ColumnToArrow(c, arrowbridge.ConversionOptions{})
	require.NoError(t, err)

	back, err := arrowbridge.ArrowToColumn(arr, typ)
	require.NoError(t, err)
	require.Equal(t, "123.45", back.ValueAt(0).(*apd.Decimal).Text('f'))
}

func TestColumnToArrowArrayRoundTrip(t *testing.T) {
	innerData := make([]byte, 5*4)
	for i, v := range []int32{1, 2, 3, 4, 5} {
		innerData[i*4] = byte(v)
	}
	inner, err := column.NewFixedColumn(chtype.NewInt32(), 5, innerData)
	require.NoError(t, err)
	arrCol, err := column.NewArrayColumn([]uint64{2, 2, 5}, inner)
	require.NoError(t, err)

	arr, err := arrowbridge.ColumnToArrow(arrCol, arrowbridge.ConversionOptions{})
	require.NoError(t, err)

	back, err := arrowbridge.ArrowToColumn(arr, chtype.NewArray(chtype.NewInt32()))
	require.NoError(t, err)
	require.Equal(t, arrCol.ValueAt(0), back.ValueAt(0))
	require.Equal(t, arrCol.ValueAt(1), back.ValueAt(1))
	require.Equal(t, arrCol.ValueAt(2), back.ValueAt(2))
}

func TestBigIntWidthRoundTripViaFixedSizeBinary(t *testing.T) {
	typ := chtype.NewInt128()
	v := big.NewInt(-123456789)
	data := make([]byte, typ.WidthBytes())
	// build a one-row Int128 column the same way column/numeric.go would encode it
	le := func(v *big.Int, width int) []byte {
		u := new(big.Int).Set(v)
		if v.Sign() < 0 {
			mod := new(big.Int).Lsh(big.NewInt(1), uint(width*8))
			u.Add(v, mod)
		}
		be := u.FillBytes(make([]byte, width))
		out := make([]byte, width)
		for i, b := range be {
			out[width-1-i] = b
		}
		return out
	}
	copy(data, le(v, typ.WidthBytes()))
	c, err := column.NewFixedColumn(typ, 1, data)
	require.NoError(t, err)

	arr, err := arrowbridge.ColumnToArrow(c, arrowbridge.ConversionOptions{})
	require.NoError(t, err)

	back, err := arrowbridge.ArrowToColumn(arr, typ)
	require.NoError(t, err)
	require.Equal(t, 0, v.Cmp(back.ValueAt(0).(*big.Int)))
}

func TestSchemaToArrowNullableFieldFlag(t *testing.T) {
	nullableString, err := chtype.NewNullable(chtype.NewString())
	require.NoError(t, err)
	fields := []chtype.Field{
		{Name: "id", Type: chtype.NewInt64()},
		{Name: "name", Type: nullableString},
	}
	schema, err := arrowbridge.SchemaToArrow(fields, arrowbridge.ConversionOptions{StringsAsStrings: true})
	require.NoError(t, err)
	require.False(t, schema.Field(0).Nullable)
	require.True(t, schema.Field(1).Nullable)

	back, err := arrowbridge.SchemaToServer(schema, arrowbridge.ConversionOptions{StringsAsStrings: true})
	require.NoError(t, err)
	require.Equal(t, chtype.KindInt64, back[0].Type.Kind)
	require.Equal(t, chtype.KindNullable, back[1].Type.Kind)
}
