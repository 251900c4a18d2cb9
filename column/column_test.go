package column_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TFMV/chnative/chtype"
	"github.com/TFMV/chnative/column"
	"github.com/TFMV/chnative/wire"
)

func encodeDecode(t *testing.T, typ *chtype.Type, n int, c column.Column) column.Column {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.EncodeTo(wire.NewWriter(&buf)))
	got, err := column.Decode(wire.NewReader(&buf), typ, n)
	require.NoError(t, err)
	return got
}

func TestFixedColumnRoundTrip(t *testing.T) {
	typ := chtype.NewUInt32()
	data := make([]byte, 3*4)
	binary.LittleEndian.PutUint32(data[0:4], 1)
	binary.LittleEndian.PutUint32(data[4:8], 2)
	binary.LittleEndian.PutUint32(data[8:12], 42)
	c, err := column.NewFixedColumn(typ, 3, data)
	require.NoError(t, err)

	got := encodeDecode(t, typ, 3, c)
	require.Equal(t, uint32(1), got.ValueAt(0))
	require.Equal(t, uint32(2), got.ValueAt(1))
	require.Equal(t, uint32(42), got.ValueAt(2))
}

func TestStringColumnRoundTrip(t *testing.T) {
	c := column.NewStringColumn([][]byte{[]byte("hello"), []byte(""), []byte("world")})
	got := encodeDecode(t, chtype.NewString(), 3, c)
	require.Equal(t, []byte("hello"), got.ValueAt(0))
	require.Equal(t, []byte(""), got.ValueAt(1))
	require.Equal(t, []byte("world"), got.ValueAt(2))
}

func TestFixedStringPaddingAndTruncation(t *testing.T) {
	c := column.NewFixedStringColumn([][]byte{[]byte("abc"), []byte("abcdefgh")}, 5, nil)
	typ, err := chtype.NewFixedString(5)
	require.NoError(t, err)
	got := encodeDecode(t, typ, 2, c)
	require.Equal(t, []byte("abc\x00\x00"), got.ValueAt(0))
	require.Equal(t, []byte("abcde"), got.ValueAt(1)) // truncated, not an error
}

func TestNullableRoundTrip(t *testing.T) {
	inner := column.NewStringColumn([][]byte{[]byte(""), []byte("x"), []byte("")})
	nc, err := column.NewNullableColumn([]bool{true, false, true}, inner)
	require.NoError(t, err)

	nt, err := chtype.NewNullable(chtype.NewString())
	require.NoError(t, err)
	got := encodeDecode(t, nt, 3, nc)
	require.Nil(t, got.ValueAt(0))
	require.Equal(t, []byte("x"), got.ValueAt(1))
	require.Nil(t, got.ValueAt(2))
}

// TestArrayOfArrayRoundTrip covers testable-property S5: Array(Array(Int32))
// with input [[[1,2],[]],[[3]]].
func TestArrayOfArrayRoundTrip(t *testing.T) {
	i32 := func(v int32) []byte {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(v))
		return b
	}
	innerValues := append(append(i32(1), i32(2)...), i32(3)...)
	innerCol, err := column.NewFixedColumn(chtype.NewInt32(), 3, innerValues)
	require.NoError(t, err)

	inner, err := column.NewArrayColumn([]uint64{2, 2, 3}, innerCol)
	require.NoError(t, err)

	outer, err := column.NewArrayColumn([]uint64{2, 3}, inner)
	require.NoError(t, err)

	outerType := chtype.NewArray(chtype.NewArray(chtype.NewInt32()))
	got := encodeDecode(t, outerType, 2, outer).(*column.ArrayColumn)

	row0 := got.ValueAt(0).([]interface{})
	require.Len(t, row0, 2)
	require.Equal(t, []interface{}{int32(1), int32(2)}, row0[0])
	require.Equal(t, []interface{}{}, row0[1])

	row1 := got.ValueAt(1).([]interface{})
	require.Equal(t, []interface{}{int32(3)}, row1[0])
}

// TestLowCardinalityNullableShift covers testable property S4/#9:
// dictionary ["x","y"], keys [0,1,2,1] decode to [null, "x", "y", "x"].
func TestLowCardinalityNullableShift(t *testing.T) {
	dict := column.NewStringColumn([][]byte{[]byte("x"), []byte("y")})
	nullableStr, err := chtype.NewNullable(chtype.NewString())
	require.NoError(t, err)

	lc, err := column.NewLowCardinalityColumn(nullableStr, dict, []uint64{0, 1, 2, 1})
	require.NoError(t, err)

	lcType, err := chtype.NewLowCardinality(nullableStr)
	require.NoError(t, err)
	got := encodeDecode(t, lcType, 4, lc)

	require.Nil(t, got.ValueAt(0))
	require.Equal(t, []byte("x"), got.ValueAt(1))
	require.Equal(t, []byte("y"), got.ValueAt(2))
	require.Equal(t, []byte("x"), got.ValueAt(3))
}

func TestTupleRoundTrip(t *testing.T) {
	ints, err := column.NewFixedColumn(chtype.NewUInt8(), 2, []byte{1, 2})
	require.NoError(t, err)
	strs := column.NewStringColumn([][]byte{[]byte("a"), []byte("b")})
	tup, err := column.NewTupleColumn([]string{"", ""}, []column.Column{ints, strs})
	require.NoError(t, err)

	typ := tup.Type()
	got := encodeDecode(t, typ, 2, tup)
	require.Equal(t, []interface{}{uint8(1), []byte("a")}, got.ValueAt(0))
	require.Equal(t, []interface{}{uint8(2), []byte("b")}, got.ValueAt(1))
}

func TestMapRoundTrip(t *testing.T) {
	keys := column.NewStringColumn([][]byte{[]byte("a"), []byte("b"), []byte("c")})
	values, err := column.NewFixedColumn(chtype.NewUInt32(), 3, func() []byte {
		b := make([]byte, 12)
		binary.LittleEndian.PutUint32(b[0:4], 1)
		binary.LittleEndian.PutUint32(b[4:8], 2)
		binary.LittleEndian.PutUint32(b[8:12], 3)
		return b
	}())
	require.NoError(t, err)

	m, err := column.NewMapColumn([]uint64{2, 3}, keys, values)
	require.NoError(t, err)

	got := encodeDecode(t, m.Type(), 2, m)
	row0 := got.ValueAt(0).(map[interface{}]interface{})
	require.Equal(t, uint32(1), row0["a"])
	require.Equal(t, uint32(2), row0["b"])

	row1 := got.ValueAt(1).(map[interface{}]interface{})
	require.Equal(t, uint32(3), row1["c"])
}
