package chnative

import (
	"fmt"
	"regexp"
	"strings"
)

// Code is a validated "package.name" error code, the same shape used
// throughout this codebase's ancestry for distinguishing error kinds
// programmatically instead of matching on message text.
type Code struct {
	value string
}

var codeRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*\.[a-z][a-z0-9_]*$`)

// NewCode validates s against the "package.name" shape.
func NewCode(s string) (Code, error) {
	if !codeRegex.MatchString(s) {
		return Code{}, fmt.Errorf("invalid code %q: must be lowercase 'package.name'", s)
	}
	return Code{value: s}, nil
}

func MustNewCode(s string) Code {
	c, err := NewCode(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Code) String() string { return c.value }

func (c Code) Package() string {
	if idx := strings.IndexByte(c.value, '.'); idx != -1 {
		return c.value[:idx]
	}
	return ""
}

func (c Code) Name() string {
	if idx := strings.IndexByte(c.value, '.'); idx != -1 {
		return c.value[idx+1:]
	}
	return c.value
}

func (c Code) Equals(other Code) bool { return c.value == other.value }

// The nine error kinds named by this module's error taxonomy. Each governs
// a distinct terminal/recoverable transition of the session's phase.
var (
	// CodeIO covers transport-level socket failures: a peer reset, a
	// network timeout mid-read, or any error the net.Conn itself returns.
	// Terminal: the session moves to Terminated.
	CodeIO = MustNewCode("chnative.io")

	// CodeUnexpectedEOF is returned when the peer closes the connection
	// mid-packet, distinct from a clean, expected EndOfStream. Terminal.
	CodeUnexpectedEOF = MustNewCode("chnative.unexpected_eof")

	// CodeMalformedFrame covers varuint overflow, a length prefix that
	// would read past any sane bound, or a packet payload that fails to
	// decode. Unknown or out-of-phase packet tags are
	// CodeProtocolViolation instead. Terminal.
	CodeMalformedFrame = MustNewCode("chnative.malformed_frame")

	// CodeChecksumMismatch is returned when a compressed block's stored
	// CityHash128 checksum does not match the recomputed one. Terminal.
	CodeChecksumMismatch = MustNewCode("chnative.checksum_mismatch")

	// CodeProtocolViolation covers a structurally valid packet arriving
	// in a phase that does not permit it (e.g. Data before Hello
	// completes). Terminal.
	CodeProtocolViolation = MustNewCode("chnative.protocol_violation")

	// CodeServerException wraps a server-reported Exception packet.
	// Recoverable: the session returns to Idle once the exception chain
	// has been decoded.
	CodeServerException = MustNewCode("chnative.server_exception")

	// CodeSchemaIncompatible is returned by the schema bridge when an
	// Arrow type cannot be mapped to (or from) a server type under the
	// active ConversionOptions. Recoverable: no bytes have been written
	// to the wire yet, so the session stays in its current phase.
	CodeSchemaIncompatible = MustNewCode("chnative.schema_incompatible")

	// CodeTimeout is returned when a context deadline or configured
	// timeout elapses while waiting on the wire. Recoverable only if the
	// caller reconnects; the current session is marked bad.
	CodeTimeout = MustNewCode("chnative.timeout")

	// CodeCanceled is returned when the caller's context is canceled.
	// Recoverable the same way as CodeTimeout.
	CodeCanceled = MustNewCode("chnative.canceled")
)
