package column

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/chtype"
	"github.com/TFMV/chnative/wire"
)

// LowCardinality flags-word layout. The spec names the fields
// (KEY_WIDTH | HAS_ADDITIONAL_KEYS_BIT | NEEDS_GLOBAL_DICT_BIT | VERSION<<8)
// without pinning exact bit offsets; this module fixes one internally
// consistent layout (documented in DESIGN.md as an Open Question
// resolution) rather than guessing at wire-compatibility with a live
// server, since encode/decode only need to agree with themselves here.
const (
	lcKeyWidthMask      = 0xFF
	lcHasAdditionalKeys = 1 << 9
	lcNeedsGlobalDict   = 1 << 10
	lcVersion           = 1
	lcVersionShift      = 32
)

// LowCardinalityColumn holds LowCardinality(T)-typed values: a dictionary
// of distinct non-null values plus a fixed-width index array. When T is
// Nullable, index 0 is reserved for null and real values are shifted by
// one (property #9).
type LowCardinalityColumn struct {
	typ      *chtype.Type
	nullable bool
	keyWidth int // 1, 2, 4, or 8
	dict     Column
	indices  []uint64
}

// NewLowCardinalityColumn builds a column from a dictionary of distinct
// values of the non-nullable inner type (no null placeholder entry) and
// per-row indices already shifted per the null convention above.
func NewLowCardinalityColumn(inner *chtype.Type, dict Column, indices []uint64) (*LowCardinalityColumn, error) {
	typ, err := chtype.NewLowCardinality(inner)
	if err != nil {
		return nil, err
	}
	nullable := inner.Kind == chtype.KindNullable
	return &LowCardinalityColumn{
		typ:      typ,
		nullable: nullable,
		keyWidth: indexWidthFor(dict.Len()),
		dict:     dict,
		indices:  indices,
	}, nil
}

func indexWidthFor(dictSize int) int {
	switch {
	case dictSize <= 1<<8:
		return 1
	case dictSize <= 1<<16:
		return 2
	case dictSize <= 1<<32:
		return 4
	default:
		return 8
	}
}

func decodeLowCardinality(r *wire.Reader, t *chtype.Type, n int) (Column, error) {
	flags, err := r.Uint64()
	if err != nil {
		return nil, errors.Wrap(err, "decode low cardinality flags")
	}
	keyWidth := int(flags & lcKeyWidthMask)
	if keyWidth != 1 && keyWidth != 2 && keyWidth != 4 && keyWidth != 8 {
		return nil, errors.Newf("column: invalid low cardinality key width %d", keyWidth)
	}

	dictSize, err := r.Uint64()
	if err != nil {
		return nil, errors.Wrap(err, "decode low cardinality dict size")
	}

	nullable := t.Elem.Kind == chtype.KindNullable
	innerNonNull := t.Elem
	if nullable {
		innerNonNull = t.Elem.Elem
	}

	dict, err := Decode(r, innerNonNull, int(dictSize))
	if err != nil {
		return nil, errors.Wrap(err, "decode low cardinality dictionary")
	}

	rowCount, err := r.Uint64()
	if err != nil {
		return nil, errors.Wrap(err, "decode low cardinality row count")
	}
	if int(rowCount) != n {
		return nil, errors.Newf("column: low cardinality row count %d != expected %d", rowCount, n)
	}

	indices := make([]uint64, n)
	for i := 0; i < n; i++ {
		v, err := readIndex(r, keyWidth)
		if err != nil {
			return nil, errors.Wrapf(err, "decode low cardinality index %d", i)
		}
		indices[i] = v
	}

	return &LowCardinalityColumn{
		typ:      t,
		nullable: nullable,
		keyWidth: keyWidth,
		dict:     dict,
		indices:  indices,
	}, nil
}

func readIndex(r *wire.Reader, width int) (uint64, error) {
	switch width {
	case 1:
		v, err := r.Uint8()
		return uint64(v), err
	case 2:
		v, err := r.Uint16()
		return uint64(v), err
	case 4:
		v, err := r.Uint32()
		return uint64(v), err
	default:
		return r.Uint64()
	}
}

func writeIndex(w *wire.Writer, width int, v uint64) error {
	switch width {
	case 1:
		return w.Uint8(uint8(v))
	case 2:
		return w.Uint16(uint16(v))
	case 4:
		return w.Uint32(uint32(v))
	default:
		return w.Uint64(v)
	}
}

func (c *LowCardinalityColumn) Type() *chtype.Type { return c.typ }
func (c *LowCardinalityColumn) Len() int           { return len(c.indices) }

// Dictionary returns the non-nullable inner-typed dictionary column.
func (c *LowCardinalityColumn) Dictionary() Column { return c.dict }

// IndexAt returns the raw dictionary index for row i (already
// null-shifted when the column wraps Nullable).
func (c *LowCardinalityColumn) IndexAt(i int) uint64 { return c.indices[i] }

func (c *LowCardinalityColumn) ValueAt(i int) interface{} {
	idx := c.indices[i]
	if c.nullable {
		if idx == 0 {
			return nil
		}
		return c.dict.ValueAt(int(idx - 1))
	}
	return c.dict.ValueAt(int(idx))
}

func (c *LowCardinalityColumn) EncodeTo(w *wire.Writer) error {
	flags := uint64(c.keyWidth) | lcHasAdditionalKeys | (uint64(lcVersion) << lcVersionShift)
	if err := w.Uint64(flags); err != nil {
		return errors.Wrap(err, "write low cardinality flags")
	}
	if err := w.Uint64(uint64(c.dict.Len())); err != nil {
		return errors.Wrap(err, "write low cardinality dict size")
	}
	if err := c.dict.EncodeTo(w); err != nil {
		return errors.Wrap(err, "write low cardinality dictionary")
	}
	if err := w.Uint64(uint64(len(c.indices))); err != nil {
		return errors.Wrap(err, "write low cardinality row count")
	}
	for i, idx := range c.indices {
		if err := writeIndex(w, c.keyWidth, idx); err != nil {
			return errors.Wrapf(err, "write low cardinality index %d", i)
		}
	}
	return nil
}
