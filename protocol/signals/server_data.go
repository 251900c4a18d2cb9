package signals

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/block"
	"github.com/TFMV/chnative/wire"
)

// DecodeServerData reads a Data/Totals/Extremes/Log/ProfileEvents payload,
// all of which are a single Block on the wire (§4.7 tags 1, 7, 8, 10, 14).
func DecodeServerData(r *wire.Reader) (*block.Block, error) {
	b, err := block.Decode(r)
	return b, errors.Wrap(err, "decode server data block")
}
