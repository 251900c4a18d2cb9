package signals

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/protocol"
	"github.com/TFMV/chnative/wire"
)

// DecodeServerHello reads the ServerHello payload: name, major, minor,
// revision, timezone, display name, patch (§4.7, tag 0).
func DecodeServerHello(r *wire.Reader) (*protocol.ServerHelloInfo, error) {
	info := &protocol.ServerHelloInfo{}
	var err error
	if info.Name, err = r.String(); err != nil {
		return nil, errors.Wrap(err, "decode server hello name")
	}
	if info.Major, err = r.Int(); err != nil {
		return nil, errors.Wrap(err, "decode server hello major")
	}
	if info.Minor, err = r.Int(); err != nil {
		return nil, errors.Wrap(err, "decode server hello minor")
	}
	if info.Revision, err = r.Int(); err != nil {
		return nil, errors.Wrap(err, "decode server hello revision")
	}
	if info.Timezone, err = r.String(); err != nil {
		return nil, errors.Wrap(err, "decode server hello timezone")
	}
	if info.DisplayName, err = r.String(); err != nil {
		return nil, errors.Wrap(err, "decode server hello display name")
	}
	if info.Patch, err = r.Int(); err != nil {
		return nil, errors.Wrap(err, "decode server hello patch")
	}
	return info, nil
}
