package chtype_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TFMV/chnative/chtype"
)

func TestRoundTripSimple(t *testing.T) {
	specs := []string{
		"UInt8", "Int64", "Float64", "String", "Date", "Date32",
		"UUID", "IPv4", "IPv6", "Nothing", "Dynamic", "JSON",
		"FixedString(16)", "Decimal(18, 4)", "DateTime", `DateTime('UTC')`,
		"DateTime64(3)", `DateTime64(6, 'Europe/Berlin')`,
		`Enum8('a' = 1, 'b' = 2)`, `Enum16('x' = -1, 'y' = 300)`,
		"Array(String)", "Array(Array(Int32))",
		"Tuple(UInt8, String)", "Tuple(a UInt8, b String)",
		"Map(String, UInt64)",
		"Nullable(String)", "LowCardinality(String)",
		"LowCardinality(Nullable(String))",
		"Variant(String, UInt64, Float64)",
	}
	for _, s := range specs {
		t.Run(s, func(t *testing.T) {
			typ, err := chtype.Parse(s)
			require.NoError(t, err)
			formatted := chtype.Format(typ)
			typ2, err := chtype.Parse(formatted)
			require.NoError(t, err)
			require.Equal(t, chtype.Format(typ2), formatted)
		})
	}
}

func TestNullableInvariantsRejected(t *testing.T) {
	arr := chtype.NewArray(chtype.NewString())
	_, err := chtype.NewNullable(arr)
	require.Error(t, err)

	lc, err := chtype.NewLowCardinality(chtype.NewString())
	require.NoError(t, err)
	_, err = chtype.NewNullable(lc)
	require.Error(t, err)

	nullable, err := chtype.NewNullable(chtype.NewString())
	require.NoError(t, err)
	_, err = chtype.NewNullable(nullable)
	require.Error(t, err)
}

func TestLowCardinalityInnerRestriction(t *testing.T) {
	_, err := chtype.NewLowCardinality(chtype.NewArray(chtype.NewString()))
	require.Error(t, err)

	_, err = chtype.NewLowCardinality(chtype.NewString())
	require.NoError(t, err)
}

func TestDecimalWidthSelection(t *testing.T) {
	require.Equal(t, 32, chtype.DecimalWidth(9))
	require.Equal(t, 64, chtype.DecimalWidth(10))
	require.Equal(t, 64, chtype.DecimalWidth(18))
	require.Equal(t, 128, chtype.DecimalWidth(19))
	require.Equal(t, 128, chtype.DecimalWidth(38))
	require.Equal(t, 256, chtype.DecimalWidth(39))
	require.Equal(t, 256, chtype.DecimalWidth(76))
}

func TestParseUnknownTypeFails(t *testing.T) {
	_, err := chtype.Parse("NotAType")
	require.Error(t, err)
}

func TestParseTrailingGarbageFails(t *testing.T) {
	_, err := chtype.Parse("UInt8 extra")
	require.Error(t, err)
}
