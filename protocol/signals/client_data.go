package signals

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/block"
	"github.com/TFMV/chnative/wire"
)

// ClientData carries one input Block. An empty Block (zero columns, zero
// rows) delimits the query header; a terminating empty Block closes the
// insert stream (§4.7 "Query" steps 2-3).
type ClientData struct {
	Block *block.Block
}

func (d *ClientData) Encode(w *wire.Writer) error {
	return errors.Wrap(block.Encode(w, d.Block), "encode client data block")
}

// ClientCancel carries no payload; writing the tag alone is the signal.
type ClientCancel struct{}

// ClientPing carries no payload.
type ClientPing struct{}
