package signals_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TFMV/chnative/protocol"
	"github.com/TFMV/chnative/protocol/signals"
	"github.com/TFMV/chnative/wire"
)

func TestClientHelloEncode(t *testing.T) {
	h := &signals.ClientHello{
		ClientName:   "chnative",
		MajorVersion: 1,
		MinorVersion: 0,
		Revision:     protocol.ClientProtocolRevision,
		Database:     "default",
		User:         "default",
		Password:     "",
	}
	var buf bytes.Buffer
	require.NoError(t, h.Encode(wire.NewWriter(&buf)))
	require.NotZero(t, buf.Len())
}

func TestServerHelloRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	require.NoError(t, w.String("chserver"))
	require.NoError(t, w.Int(23))
	require.NoError(t, w.Int(8))
	require.NoError(t, w.Int(protocol.ClientProtocolRevision))
	require.NoError(t, w.String("UTC"))
	require.NoError(t, w.String("chserver"))
	require.NoError(t, w.Int(1))

	info, err := signals.DecodeServerHello(wire.NewReader(&buf))
	require.NoError(t, err)
	require.Equal(t, "chserver", info.Name)
	require.Equal(t, 23, info.Major)
	require.Equal(t, "UTC", info.Timezone)
}

func TestServerExceptionChain(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	// outer frame, has nested
	require.NoError(t, w.Int32(47))
	require.NoError(t, w.String("UNKNOWN_IDENTIFIER"))
	require.NoError(t, w.String("column 'x' not found"))
	require.NoError(t, w.String("stack1"))
	require.NoError(t, w.Bool(true))
	// inner frame, terminal
	require.NoError(t, w.Int32(1))
	require.NoError(t, w.String("DB::Exception"))
	require.NoError(t, w.String("caused by"))
	require.NoError(t, w.String("stack2"))
	require.NoError(t, w.Bool(false))

	exc, err := signals.DecodeServerException(wire.NewReader(&buf))
	require.NoError(t, err)
	require.Len(t, exc.Frames, 2)
	require.Equal(t, int32(47), exc.Frames[0].Code)
	require.Equal(t, "UNKNOWN_IDENTIFIER", exc.Frames[0].Name)
	require.Equal(t, "column 'x' not found", exc.Error())
}

func TestServerProgressRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	require.NoError(t, w.Uint64(10))
	require.NoError(t, w.Uint64(1024))
	require.NoError(t, w.Uint64(100))
	require.NoError(t, w.Uint64(0))
	require.NoError(t, w.Uint64(0))
	require.NoError(t, w.Uint64(5_000_000))

	p, err := signals.DecodeServerProgress(wire.NewReader(&buf))
	require.NoError(t, err)
	require.EqualValues(t, 10, p.ReadRows)
	require.EqualValues(t, 100, p.TotalRows)
}
