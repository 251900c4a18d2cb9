package column

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/chtype"
	"github.com/TFMV/chnative/wire"
)

// StringColumn holds String-typed values as raw byte slices: the wire
// format doesn't distinguish UTF-8 text from binary, so the bridge
// (package arrowbridge) is what decides whether to expose these as Go
// strings or []byte per the strings_as_strings policy.
type StringColumn struct {
	values [][]byte
}

// NewStringColumn wraps values (nil entries encode as empty per §4.4's
// null-as-empty-string rule for String).
func NewStringColumn(values [][]byte) *StringColumn {
	return &StringColumn{values: values}
}

func decodeString(r *wire.Reader, t *chtype.Type, n int) (Column, error) {
	values := make([][]byte, n)
	for i := 0; i < n; i++ {
		v, err := r.Bytes()
		if err != nil {
			return nil, errors.Wrapf(err, "decode string row %d", i)
		}
		values[i] = v
	}
	return &StringColumn{values: values}, nil
}

func (c *StringColumn) Type() *chtype.Type { return chtype.NewString() }
func (c *StringColumn) Len() int           { return len(c.values) }

func (c *StringColumn) ValueAt(i int) interface{} {
	return c.values[i]
}

func (c *StringColumn) EncodeTo(w *wire.Writer) error {
	for i, v := range c.values {
		if err := w.Bytes(v); err != nil {
			return errors.Wrapf(err, "encode string row %d", i)
		}
	}
	return nil
}
