package column

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/chtype"
	"github.com/TFMV/chnative/wire"
)

// MapColumn holds Map(K,V)-typed values. Per §4.4 ("identical to
// Array(Tuple(K,V))") it is implemented as a thin wrapper around an
// ArrayColumn of a two-field TupleColumn, reusing that codec rather than
// duplicating the offset framing logic.
type MapColumn struct {
	typ   *chtype.Type
	array *ArrayColumn
}

// NewMapColumn builds a MapColumn from cumulative offsets and parallel
// flattened key/value columns.
func NewMapColumn(offsets []uint64, keys, values Column) (*MapColumn, error) {
	tuple, err := NewTupleColumn([]string{"keys", "values"}, []Column{keys, values})
	if err != nil {
		return nil, errors.Wrap(err, "build map entry tuple")
	}
	arr, err := NewArrayColumn(offsets, tuple)
	if err != nil {
		return nil, errors.Wrap(err, "build map array")
	}
	return &MapColumn{typ: chtype.NewMap(keys.Type(), values.Type()), array: arr}, nil
}

func decodeMap(r *wire.Reader, t *chtype.Type, n int) (Column, error) {
	entryType := chtype.NewArray(chtype.NewTuple([]chtype.Field{
		{Name: "keys", Type: t.Key},
		{Name: "values", Type: t.Value},
	}))
	arrCol, err := decodeArray(r, entryType, n)
	if err != nil {
		return nil, errors.Wrap(err, "decode map")
	}
	return &MapColumn{typ: t, array: arrCol.(*ArrayColumn)}, nil
}

func (c *MapColumn) Type() *chtype.Type { return c.typ }
func (c *MapColumn) Len() int           { return c.array.Len() }

// Bounds delegates to the underlying array's offset bounds for row i.
func (c *MapColumn) Bounds(i int) (start, end int) { return c.array.Bounds(i) }

// Entries returns the flattened key/value tuple column backing every row.
func (c *MapColumn) Entries() *TupleColumn { return c.array.Inner().(*TupleColumn) }

func (c *MapColumn) ValueAt(i int) interface{} {
	start, end := c.Bounds(i)
	entries := c.Entries()
	out := make(map[interface{}]interface{}, end-start)
	for j := start; j < end; j++ {
		pair := entries.ValueAt(j).([]interface{})
		out[mapKey(pair[0])] = pair[1]
	}
	return out
}

func (c *MapColumn) EncodeTo(w *wire.Writer) error {
	return c.array.EncodeTo(w)
}

// mapKey coerces a boxed column value into something Go's built-in map
// type can use as a key. []byte (String/FixedString values) is the only
// boxed representation this package produces that isn't itself
// comparable; every other ServerType's ValueAt already returns a
// comparable scalar.
func mapKey(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
