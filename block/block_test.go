package block_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TFMV/chnative/block"
	"github.com/TFMV/chnative/chtype"
	"github.com/TFMV/chnative/column"
	"github.com/TFMV/chnative/wire"
)

func TestSchemaProbeRoundTrip(t *testing.T) {
	b := &block.Block{}
	require.True(t, b.IsSchemaProbe())

	var buf bytes.Buffer
	require.NoError(t, block.Encode(wire.NewWriter(&buf), b))
	got, err := block.Decode(wire.NewReader(&buf))
	require.NoError(t, err)
	require.True(t, got.IsSchemaProbe())
}

func TestHeaderOnlyBlockRoundTrip(t *testing.T) {
	col, err := column.NewFixedColumn(chtype.NewUInt64(), 0, nil)
	require.NoError(t, err)
	b := &block.Block{
		Columns: []block.ColumnEntry{{Name: "id", Type: chtype.NewUInt64(), Data: col}},
	}
	require.True(t, b.IsHeaderOnly())

	var buf bytes.Buffer
	require.NoError(t, block.Encode(wire.NewWriter(&buf), b))
	got, err := block.Decode(wire.NewReader(&buf))
	require.NoError(t, err)
	require.True(t, got.IsHeaderOnly())
	require.Equal(t, "id", got.Columns[0].Name)
	require.Equal(t, "UInt64", chtype.Format(got.Columns[0].Type))
}

func TestDataBlockRoundTripWithMetadata(t *testing.T) {
	col, err := column.NewFixedColumn(chtype.NewUInt8(), 3, []byte{1, 2, 3})
	require.NoError(t, err)
	b := &block.Block{
		TableName: "t",
		Info:      block.Info{IsOverflow: true, Bucket: 7},
		Columns:   []block.ColumnEntry{{Name: "n", Type: chtype.NewUInt8(), Data: col}},
	}

	var buf bytes.Buffer
	require.NoError(t, block.Encode(wire.NewWriter(&buf), b))
	got, err := block.Decode(wire.NewReader(&buf))
	require.NoError(t, err)

	require.Equal(t, "t", got.TableName)
	require.True(t, got.Info.IsOverflow)
	require.EqualValues(t, 7, got.Info.Bucket)
	require.Equal(t, 3, got.RowCount())
	require.Equal(t, uint8(1), got.Columns[0].Data.ValueAt(0))
	require.Equal(t, uint8(3), got.Columns[0].Data.ValueAt(2))
}
