// Package column implements the per-type column codec (component D):
// encode/decode of a native columnar value over a byte stream and a row
// count, including the nullable null-mask, array/tuple/map offset
// nesting, and low-cardinality dictionary framing described in the wire
// protocol's column codec layout table.
package column

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/chtype"
	"github.com/TFMV/chnative/wire"
)

// Column is a decoded (or to-be-encoded) server column: N values of one
// ServerType. Implementations hold their data in whatever native Go
// representation is most natural for the type; the schema bridge (package
// arrowbridge) is the only consumer that needs a uniform, if boxed, view
// via ValueAt.
type Column interface {
	// Type returns the ServerType this column was built for.
	Type() *chtype.Type
	// Len returns the row count N.
	Len() int
	// ValueAt returns the boxed Go value at row i, or nil for SQL NULL.
	// Concrete boxed types are documented per constructor in this package.
	ValueAt(i int) interface{}
	// EncodeTo writes exactly the bytes the server expects for this
	// column's N rows.
	EncodeTo(w *wire.Writer) error
}

// Decode reads exactly the bytes for a column of type t with n rows from r
// and returns the decoded Column, dispatching by t.Kind per the column
// codec's closed type switch.
func Decode(r *wire.Reader, t *chtype.Type, n int) (Column, error) {
	switch {
	case t.Kind == chtype.KindNullable:
		return decodeNullable(r, t, n)
	case t.Kind == chtype.KindLowCardinality:
		return decodeLowCardinality(r, t, n)
	case t.Kind == chtype.KindArray:
		return decodeArray(r, t, n)
	case t.Kind == chtype.KindMap:
		return decodeMap(r, t, n)
	case t.Kind == chtype.KindTuple:
		return decodeTuple(r, t, n)
	case t.Kind == chtype.KindString:
		return decodeString(r, t, n)
	case t.Kind == chtype.KindFixedString:
		return decodeFixedString(r, t, n)
	case t.Kind == chtype.KindVariant, t.Kind == chtype.KindDynamic, t.Kind == chtype.KindJSON:
		return decodeOpaque(r, t, n)
	case t.Kind == chtype.KindNothing:
		return &nothingColumn{n: n}, nil
	case t.IsFixedWidth():
		return decodeFixed(r, t, n)
	default:
		return nil, errors.Newf("column: no decoder for %s", t.Kind)
	}
}

// readNullMask reads n bytes of 0/1 null flags per §4.4 ("N bytes of null
// mask (1 = null)").
func readNullMask(r *wire.Reader, n int) ([]bool, error) {
	mask := make([]bool, n)
	for i := 0; i < n; i++ {
		b, err := r.Uint8()
		if err != nil {
			return nil, errors.Wrap(err, "read null mask byte")
		}
		if b != 0 && b != 1 {
			return nil, errors.Newf("column: malformed null mask byte 0x%02x", b)
		}
		mask[i] = b == 1
	}
	return mask, nil
}

func writeNullMask(w *wire.Writer, mask []bool) error {
	for _, isNull := range mask {
		v := uint8(0)
		if isNull {
			v = 1
		}
		if err := w.Uint8(v); err != nil {
			return errors.Wrap(err, "write null mask byte")
		}
	}
	return nil
}

// nothingColumn represents the empty Nothing type, used for typed NULL
// literals; it carries no data, only a row count.
type nothingColumn struct{ n int }

func (c *nothingColumn) Type() *chtype.Type          { return chtype.NewNothing() }
func (c *nothingColumn) Len() int                    { return c.n }
func (c *nothingColumn) ValueAt(i int) interface{}   { return nil }
func (c *nothingColumn) EncodeTo(w *wire.Writer) error { return nil }
