// Package block implements the block codec (component E): framing a named
// set of equal-length columns on the wire, including the empty header
// block used for schema negotiation during handshake and query start.
package block

import (
	"github.com/go-faster/errors"

	"github.com/TFMV/chnative/chtype"
	"github.com/TFMV/chnative/column"
	"github.com/TFMV/chnative/wire"
)

// ColumnEntry is one named, typed column within a Block.
type ColumnEntry struct {
	Name string
	Type *chtype.Type
	Data column.Column
}

// Info carries the per-block metadata fields from §4.5: whether this block
// is an overflow bucket from aggregation, and which bucket number.
type Info struct {
	IsOverflow bool
	Bucket     int32
}

// Block is an ordered set of named, equal-row-count columns, optionally
// with a table name and aggregation metadata. A Block with zero columns
// and zero rows is a legal "schema probe" (§3.2); a Block with columns but
// zero rows is a legal "empty header block" announcing output schema.
type Block struct {
	TableName string
	Info      Info
	Columns   []ColumnEntry
}

// RowCount returns N, the shared row count of every column, or 0 if the
// block has no columns.
func (b *Block) RowCount() int {
	if len(b.Columns) == 0 {
		return 0
	}
	return b.Columns[0].Data.Len()
}

// IsSchemaProbe reports whether this is the zero-column, zero-row block
// used to delimit a query header.
func (b *Block) IsSchemaProbe() bool {
	return len(b.Columns) == 0
}

// IsHeaderOnly reports whether this block carries schema (C > 0) but no
// rows (N = 0), the form the server uses to announce output schema before
// streaming data, per §4.5.
func (b *Block) IsHeaderOnly() bool {
	return len(b.Columns) > 0 && b.RowCount() == 0
}

// Encode writes b's wire frame: table name, block info, column count, row
// count, then each column's name, type string, and encoded data.
func Encode(w *wire.Writer, b *Block) error {
	if err := w.String(b.TableName); err != nil {
		return errors.Wrap(err, "encode block table name")
	}
	if err := w.Bool(b.Info.IsOverflow); err != nil {
		return errors.Wrap(err, "encode block is-overflow")
	}
	if err := w.Int32(b.Info.Bucket); err != nil {
		return errors.Wrap(err, "encode block bucket")
	}
	if err := w.UVarint(0); err != nil {
		return errors.Wrap(err, "encode block info terminator")
	}

	n := b.RowCount()
	if err := w.Int(len(b.Columns)); err != nil {
		return errors.Wrap(err, "encode block column count")
	}
	if err := w.Int(n); err != nil {
		return errors.Wrap(err, "encode block row count")
	}

	for i, col := range b.Columns {
		if err := w.String(col.Name); err != nil {
			return errors.Wrapf(err, "encode block column %d name", i)
		}
		if err := w.String(chtype.Format(col.Type)); err != nil {
			return errors.Wrapf(err, "encode block column %d type", i)
		}
		if err := col.Data.EncodeTo(w); err != nil {
			return errors.Wrapf(err, "encode block column %d data", i)
		}
	}
	return nil
}

// Decode reads one block frame from r.
func Decode(r *wire.Reader) (*Block, error) {
	tableName, err := r.String()
	if err != nil {
		return nil, errors.Wrap(err, "decode block table name")
	}

	isOverflow, err := r.Bool()
	if err != nil {
		return nil, errors.Wrap(err, "decode block is-overflow")
	}
	bucket, err := r.Int32()
	if err != nil {
		return nil, errors.Wrap(err, "decode block bucket")
	}
	terminator, err := r.UVarint()
	if err != nil {
		return nil, errors.Wrap(err, "decode block info terminator")
	}
	if terminator != 0 {
		return nil, errors.Newf("block: expected info terminator 0, got %d", terminator)
	}

	columnCount, err := r.Int()
	if err != nil {
		return nil, errors.Wrap(err, "decode block column count")
	}
	rowCount, err := r.Int()
	if err != nil {
		return nil, errors.Wrap(err, "decode block row count")
	}

	columns := make([]ColumnEntry, columnCount)
	for i := 0; i < columnCount; i++ {
		name, err := r.String()
		if err != nil {
			return nil, errors.Wrapf(err, "decode block column %d name", i)
		}
		typeStr, err := r.String()
		if err != nil {
			return nil, errors.Wrapf(err, "decode block column %d type string", i)
		}
		typ, err := chtype.Parse(typeStr)
		if err != nil {
			return nil, errors.Wrapf(err, "decode block column %d type %q", i, typeStr)
		}
		data, err := column.Decode(r, typ, rowCount)
		if err != nil {
			return nil, errors.Wrapf(err, "decode block column %d data", i)
		}
		columns[i] = ColumnEntry{Name: name, Type: typ, Data: data}
	}

	return &Block{
		TableName: tableName,
		Info:      Info{IsOverflow: isOverflow, Bucket: bucket},
		Columns:   columns,
	}, nil
}
