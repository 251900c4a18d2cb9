package column

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/chtype"
	"github.com/TFMV/chnative/wire"
)

// TupleColumn holds Tuple(T1..Tk)-typed values as k parallel columns, each
// of length N, encoded sequentially per §4.4.
type TupleColumn struct {
	typ    *chtype.Type
	fields []Column
}

// NewTupleColumn builds a TupleColumn from names (may contain empty
// strings for positional members) and parallel columns of equal length.
func NewTupleColumn(names []string, fields []Column) (*TupleColumn, error) {
	if len(names) != len(fields) {
		return nil, errors.New("column: tuple names/fields length mismatch")
	}
	if len(fields) == 0 {
		return nil, errors.New("column: tuple requires at least one field")
	}
	n := fields[0].Len()
	tfields := make([]chtype.Field, len(fields))
	for i, f := range fields {
		if f.Len() != n {
			return nil, errors.Newf("column: tuple field %d length %d != %d", i, f.Len(), n)
		}
		tfields[i] = chtype.Field{Name: names[i], Type: f.Type()}
	}
	return &TupleColumn{typ: chtype.NewTuple(tfields), fields: fields}, nil
}

func decodeTuple(r *wire.Reader, t *chtype.Type, n int) (Column, error) {
	fields := make([]Column, len(t.Fields))
	for i, f := range t.Fields {
		col, err := Decode(r, f.Type, n)
		if err != nil {
			return nil, errors.Wrapf(err, "decode tuple field %d", i)
		}
		fields[i] = col
	}
	return &TupleColumn{typ: t, fields: fields}, nil
}

func (c *TupleColumn) Type() *chtype.Type { return c.typ }

func (c *TupleColumn) Len() int {
	if len(c.fields) == 0 {
		return 0
	}
	return c.fields[0].Len()
}

func (c *TupleColumn) Field(i int) Column { return c.fields[i] }

func (c *TupleColumn) ValueAt(i int) interface{} {
	out := make([]interface{}, len(c.fields))
	for j, f := range c.fields {
		out[j] = f.ValueAt(i)
	}
	return out
}

func (c *TupleColumn) EncodeTo(w *wire.Writer) error {
	for i, f := range c.fields {
		if err := f.EncodeTo(w); err != nil {
			return errors.Wrapf(err, "encode tuple field %d", i)
		}
	}
	return nil
}
