package compress_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TFMV/chnative/compress"
)

func TestLZ4RoundTrip(t *testing.T) {
	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	frame, err := compress.Compress(compress.MethodLZ4, payload)
	require.NoError(t, err)

	got, err := compress.Decompress(frame)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestZstdRoundTrip(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog, repeated for compressibility, repeated for compressibility")
	frame, err := compress.Compress(compress.MethodHeavy, payload)
	require.NoError(t, err)

	got, err := compress.Decompress(frame)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestChecksumMismatchOnCorruption(t *testing.T) {
	payload := []byte("checksum me please, this needs to be long enough to compress")
	frame, err := compress.Compress(compress.MethodLZ4, payload)
	require.NoError(t, err)

	corrupt := append([]byte(nil), frame...)
	corrupt[len(corrupt)-1] ^= 0xFF

	_, err = compress.Decompress(corrupt)
	require.ErrorIs(t, err, compress.ErrChecksumMismatch)
}
