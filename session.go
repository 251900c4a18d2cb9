package chnative

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TFMV/chnative/block"
	"github.com/TFMV/chnative/bufpool"
	"github.com/TFMV/chnative/compress"
	"github.com/TFMV/chnative/protocol"
	"github.com/TFMV/chnative/protocol/signals"
	"github.com/TFMV/chnative/wire"
)

// Phase is one of the Session's five observable states (§3.3).
type Phase int

const (
	PhaseUnconnected Phase = iota
	PhaseHello
	PhaseIdle
	PhaseInQuery
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhaseUnconnected:
		return "Unconnected"
	case PhaseHello:
		return "Hello"
	case PhaseIdle:
		return "Idle"
	case PhaseInQuery:
		return "InQuery"
	case PhaseTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// Session owns one bidirectional byte stream and is a single-threaded
// cooperative actor over it (§5): at most one in-flight query. Query,
// Insert and Ping take mu and refuse to start outside Idle to enforce that;
// a ResponseStream's Next and Cancel read the wire without taking mu.
type Session struct {
	conn net.Conn
	bw   *bufio.Writer
	br   *bufio.Reader
	w    *wire.Writer
	r    *wire.Reader

	pool   *bufpool.Pool
	logger *zap.Logger

	opts Options
	auth Auth

	mu    sync.Mutex
	phase Phase

	serverRevision int
	serverInfo     *protocol.ServerHelloInfo

	compressionEnabled bool
	compressionMethod  compress.Method

	queryCounter uint64
}

func newSession(conn net.Conn, opts Options) *Session {
	br := bufio.NewReader(conn)
	bw := bufio.NewWriter(conn)
	return &Session{
		conn:              conn,
		br:                br,
		bw:                bw,
		r:                 wire.NewReader(br),
		w:                 wire.NewWriter(bw),
		pool:              bufpool.New(),
		logger:            opts.Logger,
		opts:              opts,
		phase:             PhaseUnconnected,
		compressionMethod: opts.Compression.Method.wireMethod(),
	}
}

// Phase reports the session's current observable phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) setPhase(p Phase) {
	s.logger.Debug("phase transition", zap.Stringer("from", s.phase), zap.Stringer("to", p))
	s.phase = p
}

func (s *Session) terminate(err error) error {
	s.setPhase(PhaseTerminated)
	_ = s.conn.Close()
	return err
}

// handshake drives the Hello phase (§4.7): send ClientHello (+ optional
// addendum), read the server's reply, and record the negotiated revision.
func (s *Session) handshake(ctx context.Context, auth Auth) error {
	s.auth = auth
	s.setPhase(PhaseHello)
	if err := s.applyDeadline(ctx); err != nil {
		return err
	}

	hello := &signals.ClientHello{
		ClientName:   s.opts.ClientName,
		MajorVersion: s.opts.MajorVersion,
		MinorVersion: s.opts.MinorVersion,
		Revision:     protocol.ClientProtocolRevision,
		Database:     auth.Database,
		User:         auth.Username,
		Password:     auth.Password,
	}
	if err := s.writeTag(protocol.ClientHello); err != nil {
		return s.terminate(err)
	}
	if err := hello.Encode(s.w); err != nil {
		return s.terminate(wrapError(CodeIO, err, "write client hello"))
	}
	if protocol.ClientProtocolRevision >= protocol.RevisionWithAddendum {
		addendum := &signals.ClientAddendum{QuotaKey: auth.QuotaKey}
		if err := addendum.Encode(s.w); err != nil {
			return s.terminate(wrapError(CodeIO, err, "write client addendum"))
		}
	}
	if err := s.flush(); err != nil {
		return s.terminate(err)
	}

	tag, err := s.readTag()
	if err != nil {
		return s.terminate(err)
	}
	switch protocol.ServerTag(tag) {
	case protocol.ServerHello:
		info, err := signals.DecodeServerHello(s.r)
		if err != nil {
			return s.terminate(wrapError(CodeMalformedFrame, err, "decode server hello"))
		}
		s.serverInfo = info
		s.serverRevision = minInt(protocol.ClientProtocolRevision, info.Revision)
		s.compressionEnabled = s.opts.Compression.Enabled
		s.setPhase(PhaseIdle)
		return nil
	case protocol.ServerException:
		exc, err := signals.DecodeServerException(s.r)
		if err != nil {
			return s.terminate(wrapError(CodeMalformedFrame, err, "decode handshake exception"))
		}
		return s.terminate(wrapError(CodeServerException, exc, "handshake rejected"))
	default:
		return s.terminate(newErrorf(CodeProtocolViolation, "unexpected tag %d during handshake", tag))
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Ping sends a Ping and waits for Pong. Legal only in Idle (§4.7).
func (s *Session) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseIdle {
		return newErrorf(CodeProtocolViolation, "ping illegal in phase %s", s.phase)
	}
	if err := s.applyDeadline(ctx); err != nil {
		return err
	}

	if err := s.writeTag(protocol.ClientPing); err != nil {
		return s.terminate(err)
	}
	if err := s.flush(); err != nil {
		return s.terminate(err)
	}
	tag, err := s.readTag()
	if err != nil {
		return s.terminate(err)
	}
	if protocol.ServerTag(tag) != protocol.ServerPong {
		return s.terminate(newErrorf(CodeProtocolViolation, "expected pong, got tag %d", tag))
	}
	return nil
}

// Close releases the underlying stream without attempting a protocol-level
// goodbye; the native protocol has no explicit close packet.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setPhase(PhaseTerminated)
	return s.conn.Close()
}

// applyDeadline sets the connection deadline for the next wire operation.
// A context that is already canceled or past its deadline terminates the
// session immediately, surfaced as CodeCanceled/CodeTimeout rather than
// silently falling back to opts.ReadTimeout.
func (s *Session) applyDeadline(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return s.terminate(wrapError(CodeTimeout, err, "context deadline exceeded"))
		}
		return s.terminate(wrapError(CodeCanceled, err, "context canceled"))
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(s.opts.ReadTimeout)
	}
	_ = s.conn.SetDeadline(deadline)
	return nil
}

func (s *Session) writeTag(tag protocol.ClientTag) error {
	return errors.Wrap(s.w.UVarint(uint64(tag)), "write client tag")
}

func (s *Session) readTag() (byte, error) {
	u, err := s.r.UVarint()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, s.terminate(wrapError(CodeUnexpectedEOF, err, "read packet tag"))
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return 0, s.terminate(wrapError(CodeTimeout, err, "read packet tag"))
		}
		return 0, s.terminate(wrapError(CodeIO, err, "read packet tag"))
	}
	if u > 255 || !protocol.IsKnownServerTag(byte(u)) {
		return 0, s.terminate(newErrorf(CodeProtocolViolation, "unknown server tag %d", u))
	}
	return byte(u), nil
}

func (s *Session) flush() error {
	if err := s.bw.Flush(); err != nil {
		return wrapError(CodeIO, err, "flush stream")
	}
	return nil
}

// writeBlock sends one Data block, optionally wrapped in a compressed
// transport frame (component B). The tag itself is always written
// uncompressed, matching the real protocol's "only block bodies compress".
func (s *Session) writeBlock(tag protocol.ClientTag, b *block.Block) error {
	if err := s.writeTag(tag); err != nil {
		return err
	}
	if !s.compressionEnabled {
		return errors.Wrap(block.Encode(s.w, b), "write block")
	}

	var buf bytes.Buffer
	if err := block.Encode(wire.NewWriter(&buf), b); err != nil {
		return errors.Wrap(err, "encode block for compression")
	}
	frame, err := compress.Compress(s.compressionMethod, buf.Bytes())
	if err != nil {
		return wrapError(CodeIO, err, "compress block frame")
	}
	if _, err := s.bw.Write(frame); err != nil {
		return wrapError(CodeIO, err, "write compressed block frame")
	}
	return nil
}

// readBlock reads the payload of a Data/Totals/Extremes/Log/ProfileEvents
// packet, decompressing the transport frame first if compression is on.
func (s *Session) readBlock() (*block.Block, error) {
	if !s.compressionEnabled {
		b, err := signals.DecodeServerData(s.r)
		if err != nil {
			return nil, wrapError(CodeMalformedFrame, err, "decode block")
		}
		return b, nil
	}

	raw, err := s.readFrameBytes()
	if err != nil {
		return nil, err
	}
	payload, err := compress.Decompress(raw)
	if err != nil {
		if errors.Is(err, compress.ErrChecksumMismatch) {
			return nil, s.terminate(wrapError(CodeChecksumMismatch, err, "decompress block frame"))
		}
		return nil, s.terminate(wrapError(CodeMalformedFrame, err, "decompress block frame"))
	}
	b, err := block.Decode(wire.NewReader(bytes.NewReader(payload)))
	if err != nil {
		return nil, wrapError(CodeMalformedFrame, err, "decode decompressed block")
	}
	return b, nil
}

// readFrameBytes reads one full compressed transport frame: the fixed
// 25-byte checksum+inner-header, then however many more bytes the
// compressed-size field says follow, per §4.2.
func (s *Session) readFrameBytes() ([]byte, error) {
	const fixedPrefix = 16 + 1 + 4 + 4
	header := make([]byte, fixedPrefix)
	if _, err := io.ReadFull(s.br, header); err != nil {
		return nil, s.terminate(wrapError(CodeUnexpectedEOF, err, "read compressed frame header"))
	}
	compressedSize := binary.LittleEndian.Uint32(header[17:21])
	if compressedSize < 9 {
		return nil, s.terminate(newErrorf(CodeMalformedFrame, "compressed size %d smaller than inner header", compressedSize))
	}
	remaining := int(compressedSize) - 9
	rest := make([]byte, remaining)
	if remaining > 0 {
		if _, err := io.ReadFull(s.br, rest); err != nil {
			return nil, s.terminate(wrapError(CodeUnexpectedEOF, err, "read compressed frame body"))
		}
	}
	return append(header, rest...), nil
}

func (s *Session) nextQueryID() string {
	atomic.AddUint64(&s.queryCounter, 1)
	return uuid.New().String()
}
