package chtype

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads a type string of the grammar `Name` | `Name(Args)` where Args
// is a comma-separated list of nested type expressions or literal
// arguments, and returns the corresponding ServerType. Parsing is
// recursive-descent per §4.3.
func Parse(s string) (*Type, error) {
	p := &parser{input: s}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("chtype: trailing input at position %d in %q", p.pos, s)
	}
	return t, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func isIdentByte(b byte, first bool) bool {
	if b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b == '_' {
		return true
	}
	if !first && b >= '0' && b <= '9' {
		return true
	}
	return false
}

func (p *parser) parseIdent() (string, error) {
	p.skipSpace()
	start := p.pos
	if p.pos >= len(p.input) || !isIdentByte(p.input[p.pos], true) {
		return "", fmt.Errorf("chtype: expected identifier at position %d in %q", p.pos, p.input)
	}
	p.pos++
	for p.pos < len(p.input) && isIdentByte(p.input[p.pos], false) {
		p.pos++
	}
	return p.input[start:p.pos], nil
}

func (p *parser) expect(b byte) error {
	p.skipSpace()
	if p.peek() != b {
		return fmt.Errorf("chtype: expected %q at position %d in %q", b, p.pos, p.input)
	}
	p.pos++
	return nil
}

func (p *parser) parseInt() (int, error) {
	p.skipSpace()
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("chtype: expected integer at position %d in %q", p.pos, p.input)
	}
	return strconv.Atoi(p.input[start:p.pos])
}

// parseQuoted reads a single-quoted string with \\ and \' escapes.
func (p *parser) parseQuoted() (string, error) {
	if err := p.expect('\''); err != nil {
		return "", err
	}
	var b strings.Builder
	for {
		if p.pos >= len(p.input) {
			return "", fmt.Errorf("chtype: unterminated quoted string in %q", p.input)
		}
		c := p.input[p.pos]
		if c == '\'' {
			p.pos++
			return b.String(), nil
		}
		if c == '\\' && p.pos+1 < len(p.input) {
			next := p.input[p.pos+1]
			if next == '\'' || next == '\\' {
				b.WriteByte(next)
				p.pos += 2
				continue
			}
		}
		b.WriteByte(c)
		p.pos++
	}
}

func (p *parser) parseType() (*Type, error) {
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	hasArgs := p.peek() == '('

	switch name {
	case "Int8":
		return NewInt8(), nil
	case "Int16":
		return NewInt16(), nil
	case "Int32":
		return NewInt32(), nil
	case "Int64":
		return NewInt64(), nil
	case "Int128":
		return NewInt128(), nil
	case "Int256":
		return NewInt256(), nil
	case "UInt8":
		return NewUInt8(), nil
	case "UInt16":
		return NewUInt16(), nil
	case "UInt32":
		return NewUInt32(), nil
	case "UInt64":
		return NewUInt64(), nil
	case "UInt128":
		return NewUInt128(), nil
	case "UInt256":
		return NewUInt256(), nil
	case "Float32":
		return NewFloat32(), nil
	case "Float64":
		return NewFloat64(), nil
	case "String":
		return NewString(), nil
	case "Date":
		return NewDate(), nil
	case "Date32":
		return NewDate32(), nil
	case "UUID":
		return NewUUID(), nil
	case "IPv4":
		return NewIPv4(), nil
	case "IPv6":
		return NewIPv6(), nil
	case "Nothing":
		return NewNothing(), nil
	case "Dynamic":
		return NewDynamic(), nil
	case "JSON":
		return NewJSON(), nil
	case "Decimal":
		if !hasArgs {
			return nil, fmt.Errorf("chtype: Decimal requires (precision, scale)")
		}
		p.pos++
		precision, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		scale, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return NewDecimal(precision, scale)
	case "FixedString":
		if !hasArgs {
			return nil, fmt.Errorf("chtype: FixedString requires (N)")
		}
		p.pos++
		n, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return NewFixedString(n)
	case "DateTime":
		if !hasArgs {
			return NewDateTime(""), nil
		}
		p.pos++
		tz, err := p.parseQuoted()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return NewDateTime(tz), nil
	case "DateTime64":
		if !hasArgs {
			return nil, fmt.Errorf("chtype: DateTime64 requires (precision)")
		}
		p.pos++
		precision, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		tz := ""
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			tz, err = p.parseQuoted()
			if err != nil {
				return nil, err
			}
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return NewDateTime64(precision, tz)
	case "Enum8", "Enum16":
		if !hasArgs {
			return nil, fmt.Errorf("chtype: %s requires a pair list", name)
		}
		p.pos++
		var pairs []EnumPair
		for {
			p.skipSpace()
			pname, err := p.parseQuoted()
			if err != nil {
				return nil, err
			}
			if err := p.expect('='); err != nil {
				return nil, err
			}
			code, err := p.parseInt()
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, EnumPair{Name: pname, Code: int32(code)})
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			break
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		if name == "Enum8" {
			return NewEnum8(pairs)
		}
		return NewEnum16(pairs)
	case "Array":
		if !hasArgs {
			return nil, fmt.Errorf("chtype: Array requires (T)")
		}
		p.pos++
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return NewArray(elem), nil
	case "Nullable":
		if !hasArgs {
			return nil, fmt.Errorf("chtype: Nullable requires (T)")
		}
		p.pos++
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return NewNullable(elem)
	case "LowCardinality":
		if !hasArgs {
			return nil, fmt.Errorf("chtype: LowCardinality requires (T)")
		}
		p.pos++
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return NewLowCardinality(elem)
	case "Map":
		if !hasArgs {
			return nil, fmt.Errorf("chtype: Map requires (K, V)")
		}
		p.pos++
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(','); err != nil {
			return nil, err
		}
		value, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return NewMap(key, value), nil
	case "Tuple":
		if !hasArgs {
			return nil, fmt.Errorf("chtype: Tuple requires at least one member")
		}
		p.pos++
		var fields []Field
		for {
			f, err := p.parseTupleField()
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			break
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return NewTuple(fields), nil
	case "Variant":
		if !hasArgs {
			return nil, fmt.Errorf("chtype: Variant requires at least one alternative")
		}
		p.pos++
		var alts []*Type
		for {
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			alts = append(alts, t)
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			break
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
		return NewVariant(alts), nil
	default:
		return nil, fmt.Errorf("chtype: unknown type name %q", name)
	}
}

// parseTupleField parses either "Name Type" or a bare "Type" tuple member,
// disambiguating by trying to parse a type after the identifier and
// backtracking to treat the identifier as a field name if that fails.
func (p *parser) parseTupleField() (Field, error) {
	save := p.pos
	name, err := p.parseIdent()
	if err == nil {
		p.skipSpace()
		if p.pos < len(p.input) && (isIdentByte(p.input[p.pos], true) || p.input[p.pos] == '(') {
			// Looks like "name Type(...)" or "name Type"; try parsing the
			// remainder as a type with name as the field name.
			typ, terr := p.parseType()
			if terr == nil {
				return Field{Name: name, Type: typ}, nil
			}
		}
	}
	// Backtrack: treat the whole thing as an unnamed type.
	p.pos = save
	typ, err := p.parseType()
	if err != nil {
		return Field{}, err
	}
	return Field{Type: typ}, nil
}
