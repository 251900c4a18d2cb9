package column

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/bufpool"
	"github.com/TFMV/chnative/chtype"
	"github.com/TFMV/chnative/wire"
)

// FixedStringColumn holds FixedString(N)-typed values as N*width
// contiguous bytes. Values shorter than the declared width are zero-padded
// on the right; values longer are silently truncated (matching the
// original Rust implementation's serialize_fixed_string behavior, which
// this module's tests exercise directly).
type FixedStringColumn struct {
	width int
	data  []byte // len == n*width
}

// NewFixedStringColumn builds a column from variable-length values,
// padding or truncating each to width using a pool-backed scratch buffer
// so no per-value allocation is needed for padding.
func NewFixedStringColumn(values [][]byte, width int, pool *bufpool.Pool) *FixedStringColumn {
	data := make([]byte, len(values)*width)
	var zero []byte
	if pool != nil {
		zero = pool.Get(width)
		defer pool.Put(zero)
	} else {
		zero = make([]byte, width)
	}
	for i := range zero {
		zero[i] = 0
	}
	for i, v := range values {
		dst := data[i*width : (i+1)*width]
		copy(dst, zero)
		n := len(v)
		if n > width {
			n = width
		}
		copy(dst, v[:n])
	}
	return &FixedStringColumn{width: width, data: data}
}

func decodeFixedString(r *wire.Reader, t *chtype.Type, n int) (Column, error) {
	data, err := r.Raw(n * t.FixedLen)
	if err != nil {
		return nil, errors.Wrap(err, "decode fixed string column")
	}
	return &FixedStringColumn{width: t.FixedLen, data: data}, nil
}

func (c *FixedStringColumn) Type() *chtype.Type {
	t, _ := chtype.NewFixedString(c.width)
	return t
}

func (c *FixedStringColumn) Len() int {
	if c.width == 0 {
		return 0
	}
	return len(c.data) / c.width
}

func (c *FixedStringColumn) ValueAt(i int) interface{} {
	return c.data[i*c.width : (i+1)*c.width]
}

func (c *FixedStringColumn) EncodeTo(w *wire.Writer) error {
	return w.Raw(c.data)
}
