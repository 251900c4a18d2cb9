package column

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/chtype"
	"github.com/TFMV/chnative/wire"
)

// OpaqueColumn holds Variant/Dynamic/JSON columns. Per §9's open question,
// the metadata-prefix format for these evolves across revisions, so this
// codec does not interpret it: it reads a self-describing length-prefixed
// blob per row and hands callers the raw bytes, rejecting nothing it
// cannot parse because it never attempts to parse it.
type OpaqueColumn struct {
	typ    *chtype.Type
	blobs  [][]byte
}

// NewOpaqueColumn wraps pre-encoded per-row blobs for a Variant, Dynamic,
// or JSON column.
func NewOpaqueColumn(typ *chtype.Type, blobs [][]byte) *OpaqueColumn {
	return &OpaqueColumn{typ: typ, blobs: blobs}
}

func decodeOpaque(r *wire.Reader, t *chtype.Type, n int) (Column, error) {
	blobs := make([][]byte, n)
	for i := 0; i < n; i++ {
		b, err := r.Bytes()
		if err != nil {
			return nil, errors.Wrapf(err, "decode opaque %s row %d", t.Kind, i)
		}
		blobs[i] = b
	}
	return &OpaqueColumn{typ: t, blobs: blobs}, nil
}

func (c *OpaqueColumn) Type() *chtype.Type        { return c.typ }
func (c *OpaqueColumn) Len() int                  { return len(c.blobs) }
func (c *OpaqueColumn) ValueAt(i int) interface{} { return c.blobs[i] }

func (c *OpaqueColumn) EncodeTo(w *wire.Writer) error {
	for i, b := range c.blobs {
		if err := w.Bytes(b); err != nil {
			return errors.Wrapf(err, "encode opaque row %d", i)
		}
	}
	return nil
}
