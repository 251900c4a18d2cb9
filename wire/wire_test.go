package wire_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TFMV/chnative/wire"
)

func TestUVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 129, 16383, 16384, 1 << 34, ^uint64(0)}
	for _, v := range cases {
		var buf bytes.Buffer
		require.NoError(t, wire.NewWriter(&buf).UVarint(v))
		got, err := wire.NewReader(&buf).UVarint()
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestUVarintKnownEncodings(t *testing.T) {
	// 128 must encode as [0x80, 0x01] per LEB128.
	var buf bytes.Buffer
	require.NoError(t, wire.NewWriter(&buf).UVarint(128))
	require.Equal(t, []byte{0x80, 0x01}, buf.Bytes())
}

func TestStringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	require.NoError(t, w.String(""))
	require.NoError(t, w.String("hello"))

	r := wire.NewReader(&buf)
	s1, err := r.String()
	require.NoError(t, err)
	require.Equal(t, "", s1)
	s2, err := r.String()
	require.NoError(t, err)
	require.Equal(t, "hello", s2)
}

func TestFixedWidthRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	require.NoError(t, w.Int64(-1234567890123))
	require.NoError(t, w.Uint64(18446744073709551615))
	require.NoError(t, w.Float64(3.14159265358979))
	require.NoError(t, w.Bool(true))
	require.NoError(t, w.Uint128(1, 2))

	r := wire.NewReader(&buf)
	i64, err := r.Int64()
	require.NoError(t, err)
	require.Equal(t, int64(-1234567890123), i64)

	u64, err := r.Uint64()
	require.NoError(t, err)
	require.Equal(t, uint64(18446744073709551615), u64)

	f64, err := r.Float64()
	require.NoError(t, err)
	require.InDelta(t, 3.14159265358979, f64, 1e-12)

	b, err := r.Bool()
	require.NoError(t, err)
	require.True(t, b)

	lo, hi, err := r.Uint128()
	require.NoError(t, err)
	require.Equal(t, uint64(1), lo)
	require.Equal(t, uint64(2), hi)
}

func TestUVarintTruncatedErrors(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x80})
	_, err := wire.NewReader(buf).UVarint()
	require.Error(t, err)
}
