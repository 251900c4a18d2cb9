package column_test

import (
	"net"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/chnative/chtype"
	"github.com/TFMV/chnative/column"
)

func TestDecimalEncodeDecodeRoundTrip(t *testing.T) {
	d, _, err := apd.NewFromString("123.4500")
	require.NoError(t, err)

	raw, err := column.EncodeDecimal(d, 4, 8)
	require.NoError(t, err)

	typ, err := chtype.NewDecimal(18, 4)
	require.NoError(t, err)
	col, err := column.NewFixedColumn(typ, 1, raw)
	require.NoError(t, err)

	got := col.ValueAt(0).(*apd.Decimal)
	f, err := got.Float64()
	require.NoError(t, err)
	require.InDelta(t, 123.45, f, 1e-9)
}

func TestNegativeDecimalRoundTrip(t *testing.T) {
	d, _, err := apd.NewFromString("-99.99")
	require.NoError(t, err)
	raw, err := column.EncodeDecimal(d, 2, 4)
	require.NoError(t, err)

	typ, err := chtype.NewDecimal(9, 2)
	require.NoError(t, err)
	col, err := column.NewFixedColumn(typ, 1, raw)
	require.NoError(t, err)

	got := col.ValueAt(0).(*apd.Decimal)
	f, err := got.Float64()
	require.NoError(t, err)
	require.InDelta(t, -99.99, f, 1e-9)
}

func TestUUIDWireByteOrder(t *testing.T) {
	u := uuid.MustParse("01020304-0506-0708-090a-0b0c0d0e0f10")
	raw := column.EncodeWireUUID(u)
	require.Len(t, raw, 16)

	col, err := column.NewFixedColumn(chtype.NewUUID(), 1, raw)
	require.NoError(t, err)
	got := col.ValueAt(0).(uuid.UUID)
	require.Equal(t, u, got)
}

func TestIPv4HostOrder(t *testing.T) {
	raw := []byte{1, 0, 0, 127} // little-endian 127.0.0.1
	col, err := column.NewFixedColumn(chtype.NewIPv4(), 1, raw)
	require.NoError(t, err)
	ip := col.ValueAt(0).(net.IP)
	require.Equal(t, "127.0.0.1", ip.String())
}

func TestDateTime64RoundTrip(t *testing.T) {
	want := time.Date(2024, 3, 15, 12, 30, 0, 123_000_000, time.UTC)
	raw := column.EncodeDateTime64(want, 3)

	typ, err := chtype.NewDateTime64(3, "")
	require.NoError(t, err)
	data := make([]byte, 8)
	for i := 0; i < 8; i++ {
		data[i] = byte(raw >> (8 * i))
	}
	col, err := column.NewFixedColumn(typ, 1, data)
	require.NoError(t, err)
	got := col.ValueAt(0).(time.Time)
	require.True(t, want.Equal(got), "want %v got %v", want, got)
}
