package chtype

import (
	"strconv"
	"strings"
)

// Format renders t as the textual type string the wire protocol uses for
// block column headers, in canonical spacing (", " between arguments,
// " = " in enum pairs), so Format(Parse(s)) equals s only when s is
// already canonical. Parse(Format(t)) == t for every t (round-trip
// property #1).
func Format(t *Type) string {
	var b strings.Builder
	formatInto(&b, t)
	return b.String()
}

func formatInto(b *strings.Builder, t *Type) {
	switch t.Kind {
	case KindDecimal:
		b.WriteString("Decimal(")
		b.WriteString(strconv.Itoa(t.Precision))
		b.WriteString(", ")
		b.WriteString(strconv.Itoa(t.Scale))
		b.WriteByte(')')
	case KindFixedString:
		b.WriteString("FixedString(")
		b.WriteString(strconv.Itoa(t.FixedLen))
		b.WriteByte(')')
	case KindDateTime:
		b.WriteString("DateTime")
		if t.Timezone != "" {
			b.WriteByte('(')
			writeQuoted(b, t.Timezone)
			b.WriteByte(')')
		}
	case KindDateTime64:
		b.WriteString("DateTime64(")
		b.WriteString(strconv.Itoa(t.DateTimePrecision))
		if t.Timezone != "" {
			b.WriteString(", ")
			writeQuoted(b, t.Timezone)
		}
		b.WriteByte(')')
	case KindEnum8, KindEnum16:
		b.WriteString(t.Kind.String())
		b.WriteByte('(')
		for i, p := range t.EnumPairs {
			if i > 0 {
				b.WriteString(", ")
			}
			writeQuoted(b, p.Name)
			b.WriteString(" = ")
			b.WriteString(strconv.Itoa(int(p.Code)))
		}
		b.WriteByte(')')
	case KindArray:
		b.WriteString("Array(")
		formatInto(b, t.Elem)
		b.WriteByte(')')
	case KindTuple:
		b.WriteString("Tuple(")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			if f.Name != "" {
				b.WriteString(f.Name)
				b.WriteByte(' ')
			}
			formatInto(b, f.Type)
		}
		b.WriteByte(')')
	case KindMap:
		b.WriteString("Map(")
		formatInto(b, t.Key)
		b.WriteString(", ")
		formatInto(b, t.Value)
		b.WriteByte(')')
	case KindNullable:
		b.WriteString("Nullable(")
		formatInto(b, t.Elem)
		b.WriteByte(')')
	case KindLowCardinality:
		b.WriteString("LowCardinality(")
		formatInto(b, t.Elem)
		b.WriteByte(')')
	case KindVariant:
		b.WriteString("Variant(")
		for i, alt := range t.Alternatives {
			if i > 0 {
				b.WriteString(", ")
			}
			formatInto(b, alt)
		}
		b.WriteByte(')')
	default:
		b.WriteString(t.Kind.String())
	}
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
}
