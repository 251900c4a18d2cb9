// Package signals implements the wire encoding of every packet kind named
// in §4.7, one file per kind, following this codebase's convention of a
// dedicated struct per wire signal rather than a single monolithic codec.
//
// Unlike a server accepting arbitrary, a-priori-unknown packet kinds, a
// client session always knows which tag(s) are legal next from its current
// phase (the §4.7 table), so these signals expose plain Encode/Decode
// functions instead of a reflection-based registry/factory dispatch.
package signals

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/wire"
)

// ClientHello is the first packet a session sends. Revision is the exact
// protocol revision this client implements (§4.7 step 1).
type ClientHello struct {
	ClientName    string
	MajorVersion  int
	MinorVersion  int
	Revision      int
	Database      string
	User          string
	Password      string
}

func (h *ClientHello) Encode(w *wire.Writer) error {
	if err := w.String(h.ClientName); err != nil {
		return errors.Wrap(err, "encode client hello name")
	}
	if err := w.Int(h.MajorVersion); err != nil {
		return errors.Wrap(err, "encode client hello major")
	}
	if err := w.Int(h.MinorVersion); err != nil {
		return errors.Wrap(err, "encode client hello minor")
	}
	if err := w.Int(h.Revision); err != nil {
		return errors.Wrap(err, "encode client hello revision")
	}
	if err := w.String(h.Database); err != nil {
		return errors.Wrap(err, "encode client hello database")
	}
	if err := w.String(h.User); err != nil {
		return errors.Wrap(err, "encode client hello user")
	}
	if err := w.String(h.Password); err != nil {
		return errors.Wrap(err, "encode client hello password")
	}
	return nil
}

// ClientAddendum is the optional post-Hello quota-key packet, sent only
// when the client's revision is at least RevisionWithAddendum.
type ClientAddendum struct {
	QuotaKey string
}

func (a *ClientAddendum) Encode(w *wire.Writer) error {
	return errors.Wrap(w.String(a.QuotaKey), "encode client addendum quota key")
}
