package signals

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/wire"
)

// DecodeServerTableColumns reads the TableColumns payload: a single
// string describing the table's columns (§4.7 tag 11).
func DecodeServerTableColumns(r *wire.Reader) (string, error) {
	s, err := r.String()
	return s, errors.Wrap(err, "decode server table columns")
}
