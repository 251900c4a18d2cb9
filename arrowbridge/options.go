// Package arrowbridge implements the schema bridge (component F): mapping
// Apache Arrow record batches to and from this module's native column
// codec, policy-driven via ConversionOptions exactly as spec.md §4.6
// describes.
package arrowbridge

import "github.com/TFMV/chnative/chtype"

// ConversionOptions is the policy record spec.md §4.6 names. Every field
// defaults to its zero value, which is always the conservative choice
// (no silent lossy collapsing beyond what §4.6 documents as lossless).
type ConversionOptions struct {
	// StringsAsStrings maps server String to an Arrow UTF-8 string array
	// instead of plain binary when true.
	StringsAsStrings bool

	// ArrayNullableError fails the conversion when a nullable array is
	// presented for insertion instead of pushing nullability down to the
	// element type.
	ArrayNullableError bool

	// LowCardinalityNullableError is the same policy for LowCardinality
	// wrappers around a nullable inner type.
	LowCardinalityNullableError bool

	// EnumI8 and EnumI16 force specific Arrow dictionary columns (keyed by
	// field name) to map to Enum8 / Enum16 with the supplied pairs instead
	// of the default LowCardinality inference.
	EnumI8  map[string][]chtype.EnumPair
	EnumI16 map[string][]chtype.EnumPair

	// DateAsDate32 prefers Date32 over Date on the outbound (to-server)
	// path when the interchange field is a 32-bit date.
	DateAsDate32 bool
}
