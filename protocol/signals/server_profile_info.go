package signals

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/protocol"
	"github.com/TFMV/chnative/wire"
)

// DecodeServerProfileInfo reads rows/blocks/bytes/applied-limit/
// rows-before-limit/calculated-rows-before-limit (§4.7 tag 6).
func DecodeServerProfileInfo(r *wire.Reader) (*protocol.ProfileInfo, error) {
	p := &protocol.ProfileInfo{}
	var err error
	if p.Rows, err = r.Uint64(); err != nil {
		return nil, errors.Wrap(err, "decode profile info rows")
	}
	if p.Blocks, err = r.Uint64(); err != nil {
		return nil, errors.Wrap(err, "decode profile info blocks")
	}
	if p.Bytes, err = r.Uint64(); err != nil {
		return nil, errors.Wrap(err, "decode profile info bytes")
	}
	if p.AppliedLimit, err = r.Bool(); err != nil {
		return nil, errors.Wrap(err, "decode profile info applied limit")
	}
	if p.RowsBeforeLimit, err = r.Uint64(); err != nil {
		return nil, errors.Wrap(err, "decode profile info rows before limit")
	}
	if p.CalculatedRowsBeforeLimit, err = r.Bool(); err != nil {
		return nil, errors.Wrap(err, "decode profile info calculated rows before limit")
	}
	return p, nil
}
