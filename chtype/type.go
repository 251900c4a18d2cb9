// Package chtype implements the closed ServerType algebra: the fixed set
// of types the wire protocol can describe, together with a recursive-descent
// parser and formatter for their textual representation.
package chtype

import "fmt"

// Kind tags a ServerType's variant. The set is closed: adding a member
// means touching the parser, formatter, column codec, and schema bridge
// together, by design (see spec's design notes on polymorphism over types).
type Kind int

const (
	KindInt8 Kind = iota
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindInt256
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindUInt128
	KindUInt256
	KindFloat32
	KindFloat64
	KindDecimal
	KindString
	KindFixedString
	KindDate
	KindDate32
	KindDateTime
	KindDateTime64
	KindUUID
	KindIPv4
	KindIPv6
	KindEnum8
	KindEnum16
	KindArray
	KindTuple
	KindMap
	KindNullable
	KindLowCardinality
	KindVariant
	KindDynamic
	KindJSON
	KindNothing
)

// EnumPair is one (name, code) member of an Enum8/Enum16 declaration.
type EnumPair struct {
	Name string
	Code int32
}

// Field is one named member of a Tuple, or an unnamed positional member
// when Name is empty (ClickHouse allows both tuple flavors).
type Field struct {
	Name string
	Type *Type
}

// Type is a ServerType value. Only the fields relevant to Kind are
// populated; construct instances via the New* helpers rather than composite
// literals so invariants (§3.1) are checked at construction.
type Type struct {
	Kind Kind

	// Decimal
	Precision int
	Scale     int

	// FixedString
	FixedLen int

	// DateTime / DateTime64
	Timezone       string
	DateTimePrecision int

	// Enum8 / Enum16
	EnumPairs []EnumPair

	// Array / Nullable / LowCardinality
	Elem *Type

	// Tuple
	Fields []Field

	// Map
	Key   *Type
	Value *Type

	// Variant
	Alternatives []*Type
}

// DecimalWidth returns the backing integer width in bits for a Decimal(P,S)
// type: the smallest of {32,64,128,256} that fits the given precision.
func DecimalWidth(precision int) int {
	switch {
	case precision <= 9:
		return 32
	case precision <= 18:
		return 64
	case precision <= 38:
		return 128
	default:
		return 256
	}
}

func scalar(k Kind) *Type { return &Type{Kind: k} }

func NewInt8() *Type    { return scalar(KindInt8) }
func NewInt16() *Type   { return scalar(KindInt16) }
func NewInt32() *Type   { return scalar(KindInt32) }
func NewInt64() *Type   { return scalar(KindInt64) }
func NewInt128() *Type  { return scalar(KindInt128) }
func NewInt256() *Type  { return scalar(KindInt256) }
func NewUInt8() *Type   { return scalar(KindUInt8) }
func NewUInt16() *Type  { return scalar(KindUInt16) }
func NewUInt32() *Type  { return scalar(KindUInt32) }
func NewUInt64() *Type  { return scalar(KindUInt64) }
func NewUInt128() *Type { return scalar(KindUInt128) }
func NewUInt256() *Type { return scalar(KindUInt256) }
func NewFloat32() *Type { return scalar(KindFloat32) }
func NewFloat64() *Type { return scalar(KindFloat64) }
func NewString() *Type  { return scalar(KindString) }
func NewDate() *Type    { return scalar(KindDate) }
func NewDate32() *Type  { return scalar(KindDate32) }
func NewUUID() *Type    { return scalar(KindUUID) }
func NewIPv4() *Type    { return scalar(KindIPv4) }
func NewIPv6() *Type    { return scalar(KindIPv6) }
func NewNothing() *Type { return scalar(KindNothing) }
func NewDynamic() *Type { return scalar(KindDynamic) }
func NewJSON() *Type    { return scalar(KindJSON) }

func NewDecimal(precision, scale int) (*Type, error) {
	if precision < 1 || precision > 76 {
		return nil, fmt.Errorf("chtype: decimal precision %d out of range [1,76]", precision)
	}
	if scale < 0 || scale > precision {
		return nil, fmt.Errorf("chtype: decimal scale %d out of range [0,%d]", scale, precision)
	}
	return &Type{Kind: KindDecimal, Precision: precision, Scale: scale}, nil
}

func NewFixedString(n int) (*Type, error) {
	if n < 1 || n >= 1<<20 {
		return nil, fmt.Errorf("chtype: fixed string length %d out of range [1,2^20)", n)
	}
	return &Type{Kind: KindFixedString, FixedLen: n}, nil
}

func NewDateTime(tz string) *Type {
	return &Type{Kind: KindDateTime, Timezone: tz}
}

func NewDateTime64(precision int, tz string) (*Type, error) {
	if precision < 0 || precision > 9 {
		return nil, fmt.Errorf("chtype: datetime64 precision %d out of range [0,9]", precision)
	}
	return &Type{Kind: KindDateTime64, DateTimePrecision: precision, Timezone: tz}, nil
}

func NewEnum8(pairs []EnumPair) (*Type, error) {
	if err := validateEnumPairs(pairs, 8); err != nil {
		return nil, err
	}
	return &Type{Kind: KindEnum8, EnumPairs: pairs}, nil
}

func NewEnum16(pairs []EnumPair) (*Type, error) {
	if err := validateEnumPairs(pairs, 16); err != nil {
		return nil, err
	}
	return &Type{Kind: KindEnum16, EnumPairs: pairs}, nil
}

func validateEnumPairs(pairs []EnumPair, width int) error {
	names := make(map[string]struct{}, len(pairs))
	codes := make(map[int32]struct{}, len(pairs))
	lo, hi := int32(-128), int32(127)
	if width == 16 {
		lo, hi = -32768, 32767
	}
	for _, p := range pairs {
		if _, dup := names[p.Name]; dup {
			return fmt.Errorf("chtype: duplicate enum name %q", p.Name)
		}
		if _, dup := codes[p.Code]; dup {
			return fmt.Errorf("chtype: duplicate enum code %d", p.Code)
		}
		if p.Code < lo || p.Code > hi {
			return fmt.Errorf("chtype: enum code %d out of range for Enum%d", p.Code, width)
		}
		names[p.Name] = struct{}{}
		codes[p.Code] = struct{}{}
	}
	return nil
}

func NewArray(elem *Type) *Type { return &Type{Kind: KindArray, Elem: elem} }

func NewTuple(fields []Field) *Type { return &Type{Kind: KindTuple, Fields: fields} }

func NewMap(key, value *Type) *Type { return &Type{Kind: KindMap, Key: key, Value: value} }

// NewNullable enforces the invariants of §3.1: nesting is forbidden, and
// Array/LowCardinality may not be wrapped (the bridge must push nullability
// down before emission per §4.6, not the type constructor).
func NewNullable(inner *Type) (*Type, error) {
	switch inner.Kind {
	case KindNullable:
		return nil, fmt.Errorf("chtype: Nullable(Nullable(_)) is forbidden")
	case KindArray:
		return nil, fmt.Errorf("chtype: Nullable(Array(_)) is forbidden")
	case KindLowCardinality:
		return nil, fmt.Errorf("chtype: Nullable(LowCardinality(_)) is forbidden")
	}
	return &Type{Kind: KindNullable, Elem: inner}, nil
}

// NewLowCardinality enforces the inner-type restriction of §3.1.
func NewLowCardinality(inner *Type) (*Type, error) {
	base := inner
	if base.Kind == KindNullable {
		base = base.Elem
	}
	if !lowCardinalityCompatible(base.Kind) {
		return nil, fmt.Errorf("chtype: LowCardinality(%s) not permitted", base.Kind)
	}
	return &Type{Kind: KindLowCardinality, Elem: inner}, nil
}

func lowCardinalityCompatible(k Kind) bool {
	switch k {
	case KindString, KindFixedString, KindDate, KindDateTime,
		KindInt8, KindInt16, KindInt32, KindInt64, KindInt128, KindInt256,
		KindUInt8, KindUInt16, KindUInt32, KindUInt64, KindUInt128, KindUInt256,
		KindFloat32, KindFloat64:
		return true
	default:
		return false
	}
}

func NewVariant(alts []*Type) *Type { return &Type{Kind: KindVariant, Alternatives: alts} }

// IsFixedWidth reports whether the type's column encoding is exactly
// N * WidthBytes() bytes with no per-row framing, i.e. it belongs to the
// "Fixed-width scalar" row of the column codec layout table.
func (t *Type) IsFixedWidth() bool {
	switch t.Kind {
	case KindInt8, KindInt16, KindInt32, KindInt64, KindInt128, KindInt256,
		KindUInt8, KindUInt16, KindUInt32, KindUInt64, KindUInt128, KindUInt256,
		KindFloat32, KindFloat64, KindDecimal, KindDate, KindDate32,
		KindDateTime, KindDateTime64, KindUUID, KindIPv4, KindIPv6,
		KindEnum8, KindEnum16:
		return true
	default:
		return false
	}
}

// WidthBytes returns the fixed per-row byte width for IsFixedWidth() types.
func (t *Type) WidthBytes() int {
	switch t.Kind {
	case KindInt8, KindUInt8, KindEnum8:
		return 1
	case KindInt16, KindUInt16, KindEnum16:
		return 2
	case KindInt32, KindUInt32, KindFloat32, KindDate32, KindDateTime, KindIPv4:
		return 4
	case KindInt64, KindUInt64, KindFloat64, KindDateTime64:
		return 8
	case KindInt128, KindUInt128, KindUUID:
		return 16
	case KindInt256, KindUInt256:
		return 32
	case KindDate:
		return 2
	case KindIPv6:
		return 16
	case KindDecimal:
		return DecimalWidth(t.Precision) / 8
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case KindInt8:
		return "Int8"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindInt128:
		return "Int128"
	case KindInt256:
		return "Int256"
	case KindUInt8:
		return "UInt8"
	case KindUInt16:
		return "UInt16"
	case KindUInt32:
		return "UInt32"
	case KindUInt64:
		return "UInt64"
	case KindUInt128:
		return "UInt128"
	case KindUInt256:
		return "UInt256"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindDecimal:
		return "Decimal"
	case KindString:
		return "String"
	case KindFixedString:
		return "FixedString"
	case KindDate:
		return "Date"
	case KindDate32:
		return "Date32"
	case KindDateTime:
		return "DateTime"
	case KindDateTime64:
		return "DateTime64"
	case KindUUID:
		return "UUID"
	case KindIPv4:
		return "IPv4"
	case KindIPv6:
		return "IPv6"
	case KindEnum8:
		return "Enum8"
	case KindEnum16:
		return "Enum16"
	case KindArray:
		return "Array"
	case KindTuple:
		return "Tuple"
	case KindMap:
		return "Map"
	case KindNullable:
		return "Nullable"
	case KindLowCardinality:
		return "LowCardinality"
	case KindVariant:
		return "Variant"
	case KindDynamic:
		return "Dynamic"
	case KindJSON:
		return "JSON"
	case KindNothing:
		return "Nothing"
	default:
		return "Unknown"
	}
}
