package signals

import (
	"time"

	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/protocol"
	"github.com/TFMV/chnative/wire"
)

// DecodeServerProgress reads rows/bytes/total rows/written rows/written
// bytes/elapsed ns (§4.7 tag 3, §6).
func DecodeServerProgress(r *wire.Reader) (*protocol.Progress, error) {
	p := &protocol.Progress{}
	var err error
	if p.ReadRows, err = r.Uint64(); err != nil {
		return nil, errors.Wrap(err, "decode progress read rows")
	}
	if p.ReadBytes, err = r.Uint64(); err != nil {
		return nil, errors.Wrap(err, "decode progress read bytes")
	}
	if p.TotalRows, err = r.Uint64(); err != nil {
		return nil, errors.Wrap(err, "decode progress total rows")
	}
	if p.WrittenRows, err = r.Uint64(); err != nil {
		return nil, errors.Wrap(err, "decode progress written rows")
	}
	if p.WrittenBytes, err = r.Uint64(); err != nil {
		return nil, errors.Wrap(err, "decode progress written bytes")
	}
	elapsedNS, err := r.Uint64()
	if err != nil {
		return nil, errors.Wrap(err, "decode progress elapsed")
	}
	p.Elapsed = time.Duration(elapsedNS)
	return p, nil
}
