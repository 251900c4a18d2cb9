package column

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/chtype"
	"github.com/TFMV/chnative/wire"
)

// ArrayColumn holds Array(T)-typed values via N cumulative varuint offsets
// (offsets[N-1] is the total item count M) plus the flattened inner column
// of M values, per §4.4.
type ArrayColumn struct {
	typ     *chtype.Type
	offsets []uint64 // len N, cumulative
	inner   Column   // len == offsets[len(offsets)-1], or 0 if N == 0
}

// NewArrayColumn builds an ArrayColumn from cumulative offsets and the
// flattened inner column.
func NewArrayColumn(offsets []uint64, inner Column) (*ArrayColumn, error) {
	var total uint64
	if len(offsets) > 0 {
		total = offsets[len(offsets)-1]
	}
	if uint64(inner.Len()) != total {
		return nil, errors.Newf("column: array inner length %d != last offset %d", inner.Len(), total)
	}
	return &ArrayColumn{typ: chtype.NewArray(inner.Type()), offsets: offsets, inner: inner}, nil
}

func decodeArray(r *wire.Reader, t *chtype.Type, n int) (Column, error) {
	offsets := make([]uint64, n)
	for i := 0; i < n; i++ {
		v, err := r.UVarint()
		if err != nil {
			return nil, errors.Wrapf(err, "decode array offset %d", i)
		}
		offsets[i] = v
	}
	var total uint64
	if n > 0 {
		total = offsets[n-1]
	}
	inner, err := Decode(r, t.Elem, int(total))
	if err != nil {
		return nil, errors.Wrap(err, "decode array inner")
	}
	return &ArrayColumn{typ: t, offsets: offsets, inner: inner}, nil
}

func (c *ArrayColumn) Type() *chtype.Type { return c.typ }
func (c *ArrayColumn) Len() int           { return len(c.offsets) }

// Bounds returns the [start, end) index range into Inner() for row i.
func (c *ArrayColumn) Bounds(i int) (start, end int) {
	if i == 0 {
		return 0, int(c.offsets[0])
	}
	return int(c.offsets[i-1]), int(c.offsets[i])
}

func (c *ArrayColumn) Inner() Column { return c.inner }

// ValueAt returns a []interface{} of the element values for row i.
func (c *ArrayColumn) ValueAt(i int) interface{} {
	start, end := c.Bounds(i)
	out := make([]interface{}, 0, end-start)
	for j := start; j < end; j++ {
		out = append(out, c.inner.ValueAt(j))
	}
	return out
}

func (c *ArrayColumn) EncodeTo(w *wire.Writer) error {
	for i, off := range c.offsets {
		if err := w.UVarint(off); err != nil {
			return errors.Wrapf(err, "encode array offset %d", i)
		}
	}
	return c.inner.EncodeTo(w)
}
