package chnative

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/TFMV/chnative/compress"
)

// CompressionMethod is the caller-facing compression choice; it maps onto
// compress.Method for the frames actually written on the wire.
type CompressionMethod int

const (
	CompressionNone CompressionMethod = iota
	CompressionLZ4
	CompressionZSTD
)

func (m CompressionMethod) String() string {
	switch m {
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}

func (m CompressionMethod) wireMethod() compress.Method {
	switch m {
	case CompressionZSTD:
		return compress.MethodHeavy
	default:
		return compress.MethodLZ4
	}
}

// Auth bundles the authentication inputs consumed by the handshake (§6):
// username, password, default database, and an optional quota key sent in
// the post-Hello addendum.
type Auth struct {
	Database string
	Username string
	Password string
	QuotaKey string
}

// Compression selects whether Data blocks are wrapped in a compressed
// transport frame (component B) and which algorithm to use.
type Compression struct {
	Enabled bool
	Method  CompressionMethod
}

// Options configures a Connect call. Every field has a usable zero value;
// Connect fills in defaults for the unset ones via withDefaults.
type Options struct {
	// ClientName identifies this client in the Hello packet.
	ClientName   string
	MajorVersion int
	MinorVersion int

	// Application, if set, is reported in the Query packet's client info
	// (the same field real clients use for "clickhouse-client" vs. a
	// driver name).
	Application string

	Compression Compression

	// Settings are sent with every query unless overridden per-Query.
	Settings map[string]string

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Logger receives structured diagnostic events; defaults to a no-op
	// sink so the core never requires a logging decision from the caller.
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.ClientName == "" {
		o.ClientName = "chnative"
	}
	if o.MajorVersion == 0 && o.MinorVersion == 0 {
		o.MajorVersion = 1
	}
	if o.DialTimeout == 0 {
		o.DialTimeout = 30 * time.Second
	}
	if o.ReadTimeout == 0 {
		o.ReadTimeout = 3 * time.Second
	}
	if o.WriteTimeout == 0 {
		o.WriteTimeout = 3 * time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Connect dials endpoint (host:port), performs the handshake (§4.7), and
// returns a Session in the Idle phase. The returned Session owns the
// connection; callers must Close it.
func Connect(ctx context.Context, endpoint string, auth Auth, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	dialer := net.Dialer{Timeout: opts.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, wrapError(CodeIO, err, "dial "+endpoint)
	}

	sess := newSession(conn, opts)
	if err := sess.handshake(ctx, auth); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return sess, nil
}
