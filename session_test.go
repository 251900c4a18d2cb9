package chnative_test

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/TFMV/chnative"
	"github.com/TFMV/chnative/block"
	"github.com/TFMV/chnative/chtype"
	"github.com/TFMV/chnative/column"
	"github.com/TFMV/chnative/protocol"
	"github.com/TFMV/chnative/wire"
)

// mockServer is a minimal single-connection stand-in for a native-protocol
// server, just enough wire traffic to drive the session through Hello and
// one query, mirroring pkg/sdk/mock_server_test.go's accept-loop shape.
type mockServer struct {
	listener net.Listener
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return &mockServer{listener: ln}
}

func (m *mockServer) addr() string { return m.listener.Addr().String() }

func (m *mockServer) accept(t *testing.T) net.Conn {
	t.Helper()
	conn, err := m.listener.Accept()
	require.NoError(t, err)
	return conn
}

func (m *mockServer) close() { _ = m.listener.Close() }

// readClientHandshake drains ClientHello + ClientAddendum and replies with
// ServerHello, leaving the connection positioned to read the next packet.
func readClientHandshake(t *testing.T, r *wire.Reader, w *wire.Writer) {
	t.Helper()
	tag, err := r.UVarint()
	require.NoError(t, err)
	require.Equal(t, uint64(protocol.ClientHello), tag)

	_, err = r.String() // client name
	require.NoError(t, err)
	_, err = r.Int() // major
	require.NoError(t, err)
	_, err = r.Int() // minor
	require.NoError(t, err)
	_, err = r.Int() // revision
	require.NoError(t, err)
	_, err = r.String() // database
	require.NoError(t, err)
	_, err = r.String() // user
	require.NoError(t, err)
	_, err = r.String() // password
	require.NoError(t, err)
	_, err = r.String() // addendum quota key
	require.NoError(t, err)

	require.NoError(t, w.UVarint(uint64(protocol.ServerHello)))
	require.NoError(t, w.String("mockchd"))
	require.NoError(t, w.Int(24))
	require.NoError(t, w.Int(1))
	require.NoError(t, w.Int(protocol.ClientProtocolRevision))
	require.NoError(t, w.String("UTC"))
	require.NoError(t, w.String("mockchd"))
	require.NoError(t, w.Int(0))
}

// readQueryHeader drains ClientQuery plus its delimiting empty Data block.
func readQueryHeader(t *testing.T, r *wire.Reader) {
	t.Helper()
	tag, err := r.UVarint()
	require.NoError(t, err)
	require.Equal(t, uint64(protocol.ClientQuery), tag)

	_, err = r.String() // query id
	require.NoError(t, err)
	for i := 0; i < 10; i++ { // client info: application, 4 version/protocol ints, then 5 strings
		if i == 1 || i == 2 || i == 3 || i == 4 {
			_, err = r.Int()
		} else {
			_, err = r.String()
		}
		require.NoError(t, err)
	}
	for { // settings list, terminated by an empty key
		key, err := r.String()
		require.NoError(t, err)
		if key == "" {
			break
		}
		_, err = r.Bool()
		require.NoError(t, err)
		_, err = r.String()
		require.NoError(t, err)
	}
	if protocol.ClientProtocolRevision >= protocol.RevisionWithInterServerSecret {
		_, err = r.String() // inter-server secret
		require.NoError(t, err)
	}
	_, err = r.Int32() // stage
	require.NoError(t, err)
	_, err = r.Bool() // compression flag
	require.NoError(t, err)
	_, err = r.String() // body
	require.NoError(t, err)

	dataTag, err := r.UVarint()
	require.NoError(t, err)
	require.Equal(t, uint64(protocol.ClientData), dataTag)
	_, err = block.Decode(r)
	require.NoError(t, err)
}

func oneRowInt32Block(t *testing.T) *block.Block {
	t.Helper()
	data := []byte{7, 0, 0, 0}
	col, err := column.NewFixedColumn(chtype.NewInt32(), 1, data)
	require.NoError(t, err)
	return &block.Block{Columns: []block.ColumnEntry{{Name: "n", Type: chtype.NewInt32(), Data: col}}}
}

func connectOpts() chnative.Options {
	return chnative.Options{
		ClientName:   "chnative-test",
		MajorVersion: 1,
		MinorVersion: 0,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	}
}

// TestQueryTinySelect covers scenario S1 (§8): a SELECT returning one data
// block followed by EndOfStream, and the session is back in Idle afterward.
func TestQueryTinySelect(t *testing.T) {
	srv := newMockServer(t)
	defer srv.close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn := srv.accept(t)
		defer conn.Close()
		r := wire.NewReader(conn)
		w := wire.NewWriter(conn)

		readClientHandshake(t, r, w)
		readQueryHeader(t, r)

		require.NoError(t, w.UVarint(uint64(protocol.ServerData)))
		require.NoError(t, block.Encode(w, oneRowInt32Block(t)))

		require.NoError(t, w.UVarint(uint64(protocol.ServerEndOfStream)))
	}()

	ctx := context.Background()
	sess, err := chnative.Connect(ctx, srv.addr(), chnative.Auth{Database: "default", Username: "default"}, connectOpts())
	require.NoError(t, err)
	defer sess.Close()
	require.Equal(t, chnative.PhaseIdle, sess.Phase())

	stream, err := sess.Query(ctx, &chnative.Query{SQL: "SELECT 7"})
	require.NoError(t, err)
	require.Equal(t, chnative.PhaseInQuery, sess.Phase())

	ev, err := stream.Next(ctx)
	require.NoError(t, err)
	require.Equal(t, chnative.EventData, ev.Kind)
	require.Equal(t, int32(7), ev.Block.Columns[0].Data.ValueAt(0))

	_, err = stream.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, chnative.PhaseIdle, sess.Phase())

	<-serverDone
}

// TestQueryServerException covers scenario S3 (§8): an exception mid-query
// is recoverable and returns the session to Idle rather than Terminated.
func TestQueryServerException(t *testing.T) {
	srv := newMockServer(t)
	defer srv.close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn := srv.accept(t)
		defer conn.Close()
		r := wire.NewReader(conn)
		w := wire.NewWriter(conn)

		readClientHandshake(t, r, w)
		readQueryHeader(t, r)

		require.NoError(t, w.UVarint(uint64(protocol.ServerException)))
		require.NoError(t, w.Int32(42))
		require.NoError(t, w.String("DB::Exception"))
		require.NoError(t, w.String("table does not exist"))
		require.NoError(t, w.String(""))
		require.NoError(t, w.Bool(false))
	}()

	ctx := context.Background()
	sess, err := chnative.Connect(ctx, srv.addr(), chnative.Auth{Database: "default", Username: "default"}, connectOpts())
	require.NoError(t, err)
	defer sess.Close()

	stream, err := sess.Query(ctx, &chnative.Query{SQL: "SELECT * FROM missing"})
	require.NoError(t, err)

	_, err = stream.Next(ctx)
	require.Error(t, err)
	var chErr *chnative.Error
	require.ErrorAs(t, err, &chErr)
	require.True(t, chErr.Code.Equals(chnative.CodeServerException))
	require.Equal(t, chnative.PhaseIdle, sess.Phase())

	<-serverDone
}
