package signals

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/protocol"
	"github.com/TFMV/chnative/wire"
)

// ClientQuery is the packet that starts a query (§4.7 "Query" sequence,
// step 1). It is always followed by an empty Data block to delimit the
// header.
type ClientQuery struct {
	QueryID          string
	Info             protocol.ClientInfo
	Settings         []protocol.Setting
	InterServerSecret string // only written when revision gates it
	Stage            protocol.QueryStage
	CompressionEnabled bool
	Body             string
	// Revision is the negotiated session revision, used to gate optional
	// fields the same way the reader must when decoding a mirrored packet.
	Revision int
}

func (q *ClientQuery) Encode(w *wire.Writer) error {
	if err := w.String(q.QueryID); err != nil {
		return errors.Wrap(err, "encode query id")
	}
	if err := encodeClientInfo(w, q.Info); err != nil {
		return errors.Wrap(err, "encode query client info")
	}
	if err := encodeSettings(w, q.Settings); err != nil {
		return errors.Wrap(err, "encode query settings")
	}
	if q.Revision >= protocol.RevisionWithInterServerSecret {
		if err := w.String(q.InterServerSecret); err != nil {
			return errors.Wrap(err, "encode query inter-server secret")
		}
	}
	if err := w.Int32(int32(q.Stage)); err != nil {
		return errors.Wrap(err, "encode query stage")
	}
	if err := w.Bool(q.CompressionEnabled); err != nil {
		return errors.Wrap(err, "encode query compression flag")
	}
	if err := w.String(q.Body); err != nil {
		return errors.Wrap(err, "encode query body")
	}
	return nil
}

func encodeClientInfo(w *wire.Writer, info protocol.ClientInfo) error {
	if err := w.String(info.Application); err != nil {
		return err
	}
	if err := w.Int(info.ClientVersionMajor); err != nil {
		return err
	}
	if err := w.Int(info.ClientVersionMinor); err != nil {
		return err
	}
	if err := w.Int(info.ClientVersionPatch); err != nil {
		return err
	}
	if err := w.Int(info.ProtocolVersion); err != nil {
		return err
	}
	if err := w.String(info.InitialUser); err != nil {
		return err
	}
	if err := w.String(info.InitialQueryID); err != nil {
		return err
	}
	if err := w.String(info.InitialAddress); err != nil {
		return err
	}
	if err := w.String(info.OSUser); err != nil {
		return err
	}
	return w.String(info.Hostname)
}

// encodeSettings writes the settings-as-strings format: key/important-flag/
// value triples with no count prefix, terminated by an empty-key sentinel.
func encodeSettings(w *wire.Writer, settings []protocol.Setting) error {
	for _, s := range settings {
		if err := w.String(s.Key); err != nil {
			return err
		}
		if err := w.Bool(s.Flags.Important); err != nil {
			return err
		}
		if err := w.String(s.Value); err != nil {
			return err
		}
	}
	return w.String("") // terminator: empty key ends the settings list
}
