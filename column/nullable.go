package column

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/chtype"
	"github.com/TFMV/chnative/wire"
)

// NullableColumn wraps an inner column with a parallel null mask. Per
// §4.4, the inner column still carries a physically present sentinel value
// at every null position; ValueAt is what turns that into a boxed nil.
type NullableColumn struct {
	typ   *chtype.Type
	mask  []bool
	inner Column
}

// NewNullableColumn pairs mask (true = null) with inner; len(mask) must
// equal inner.Len().
func NewNullableColumn(mask []bool, inner Column) (*NullableColumn, error) {
	if len(mask) != inner.Len() {
		return nil, errors.Newf("column: nullable mask length %d != inner length %d", len(mask), inner.Len())
	}
	nt, err := chtype.NewNullable(inner.Type())
	if err != nil {
		return nil, err
	}
	return &NullableColumn{typ: nt, mask: mask, inner: inner}, nil
}

func decodeNullable(r *wire.Reader, t *chtype.Type, n int) (Column, error) {
	mask, err := readNullMask(r, n)
	if err != nil {
		return nil, errors.Wrap(err, "decode nullable mask")
	}
	inner, err := Decode(r, t.Elem, n)
	if err != nil {
		return nil, errors.Wrap(err, "decode nullable inner")
	}
	return &NullableColumn{typ: t, mask: mask, inner: inner}, nil
}

func (c *NullableColumn) Type() *chtype.Type { return c.typ }
func (c *NullableColumn) Len() int           { return len(c.mask) }

func (c *NullableColumn) ValueAt(i int) interface{} {
	if c.mask[i] {
		return nil
	}
	return c.inner.ValueAt(i)
}

// IsNull reports the null mask directly, for callers (like the
// low-cardinality codec) that need it without boxing a value.
func (c *NullableColumn) IsNull(i int) bool { return c.mask[i] }

// Inner returns the wrapped column, sentinel values included.
func (c *NullableColumn) Inner() Column { return c.inner }

func (c *NullableColumn) EncodeTo(w *wire.Writer) error {
	if err := writeNullMask(w, c.mask); err != nil {
		return err
	}
	return c.inner.EncodeTo(w)
}
