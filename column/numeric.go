package column

import (
	"encoding/binary"
	"math"
	"math/big"
	"net"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/TFMV/chnative/chtype"
	"github.com/TFMV/chnative/wire"
)

// FixedColumn holds every ServerType whose column layout is
// "N x width contiguous bytes": integers, floats, Decimal, Date/Date32,
// DateTime/DateTime64, UUID, IPv4/IPv6, Enum8/16. The wire bytes for these
// types are copied verbatim on both encode and decode; only ValueAt
// interprets them, per kind, into a boxed Go value.
type FixedColumn struct {
	typ   *chtype.Type
	width int
	data  []byte // len == n*width
}

// NewFixedColumn wraps pre-encoded raw bytes (length n*t.WidthBytes()) as a
// Column of type t.
func NewFixedColumn(t *chtype.Type, n int, data []byte) (*FixedColumn, error) {
	width := t.WidthBytes()
	if len(data) != n*width {
		return nil, errors.Newf("column: fixed column data length %d != %d*%d", len(data), n, width)
	}
	return &FixedColumn{typ: t, width: width, data: data}, nil
}

func decodeFixed(r *wire.Reader, t *chtype.Type, n int) (Column, error) {
	width := t.WidthBytes()
	data, err := r.Raw(n * width)
	if err != nil {
		return nil, errors.Wrapf(err, "decode fixed column %s", chtype.Format(t))
	}
	return &FixedColumn{typ: t, width: width, data: data}, nil
}

func (c *FixedColumn) Type() *chtype.Type { return c.typ }
func (c *FixedColumn) Len() int {
	if c.width == 0 {
		return 0
	}
	return len(c.data) / c.width
}

func (c *FixedColumn) EncodeTo(w *wire.Writer) error {
	return w.Raw(c.data)
}

func (c *FixedColumn) row(i int) []byte {
	return c.data[i*c.width : (i+1)*c.width]
}

// ValueAt interprets row i according to the column's ServerType kind.
// Integer kinds too wide for a native Go type (Int128/256, UInt128/256)
// are returned as *big.Int; UUID as uuid.UUID; IPv4/IPv6 as net.IP;
// Date/Date32/DateTime/DateTime64 as time.Time (UTC); Decimal as
// *apd.Decimal; Enum8/16 as their underlying int32 code.
func (c *FixedColumn) ValueAt(i int) interface{} {
	row := c.row(i)
	switch c.typ.Kind {
	case chtype.KindInt8:
		return int8(row[0])
	case chtype.KindUInt8:
		return row[0]
	case chtype.KindInt16:
		return int16(binary.LittleEndian.Uint16(row))
	case chtype.KindUInt16:
		return binary.LittleEndian.Uint16(row)
	case chtype.KindInt32:
		return int32(binary.LittleEndian.Uint32(row))
	case chtype.KindUInt32:
		return binary.LittleEndian.Uint32(row)
	case chtype.KindInt64:
		return int64(binary.LittleEndian.Uint64(row))
	case chtype.KindUInt64:
		return binary.LittleEndian.Uint64(row)
	case chtype.KindInt128, chtype.KindUInt128:
		return leBytesToBigInt(row, c.typ.Kind == chtype.KindInt128)
	case chtype.KindInt256, chtype.KindUInt256:
		return leBytesToBigInt(row, c.typ.Kind == chtype.KindInt256)
	case chtype.KindFloat32:
		return math.Float32frombits(binary.LittleEndian.Uint32(row))
	case chtype.KindFloat64:
		return math.Float64frombits(binary.LittleEndian.Uint64(row))
	case chtype.KindDecimal:
		return decimalValue(row, c.typ)
	case chtype.KindDate:
		days := binary.LittleEndian.Uint16(row)
		return epoch.AddDate(0, 0, int(days))
	case chtype.KindDate32:
		days := int32(binary.LittleEndian.Uint32(row))
		return epoch.AddDate(0, 0, int(days))
	case chtype.KindDateTime:
		secs := binary.LittleEndian.Uint32(row)
		return epoch.Add(time.Duration(secs) * time.Second)
	case chtype.KindDateTime64:
		raw := int64(binary.LittleEndian.Uint64(row))
		return dateTime64Value(raw, c.typ.DateTimePrecision)
	case chtype.KindUUID:
		return decodeWireUUID(row)
	case chtype.KindIPv4:
		return net.IPv4(row[3], row[2], row[1], row[0]).To4()
	case chtype.KindIPv6:
		ip := make(net.IP, 16)
		copy(ip, row)
		return ip
	case chtype.KindEnum8:
		return int32(int8(row[0]))
	case chtype.KindEnum16:
		return int32(int16(binary.LittleEndian.Uint16(row)))
	default:
		return row
	}
}

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// decodeWireUUID undoes the wire's "two 64-bit halves, high half written
// first" layout into a canonical big-endian uuid.UUID.
func decodeWireUUID(row []byte) uuid.UUID {
	hi := binary.LittleEndian.Uint64(row[0:8])
	lo := binary.LittleEndian.Uint64(row[8:16])
	var u uuid.UUID
	binary.BigEndian.PutUint64(u[0:8], hi)
	binary.BigEndian.PutUint64(u[8:16], lo)
	return u
}

// EncodeWireUUID produces the 16-byte high-half-first wire layout from a
// canonical uuid.UUID.
func EncodeWireUUID(u uuid.UUID) []byte {
	hi := binary.BigEndian.Uint64(u[0:8])
	lo := binary.BigEndian.Uint64(u[8:16])
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], hi)
	binary.LittleEndian.PutUint64(buf[8:16], lo)
	return buf
}

func leBytesToBigInt(row []byte, signed bool) *big.Int {
	be := make([]byte, len(row))
	for i, b := range row {
		be[len(row)-1-i] = b
	}
	v := new(big.Int).SetBytes(be)
	if signed && len(row) > 0 && be[0]&0x80 != 0 {
		max := new(big.Int).Lsh(big.NewInt(1), uint(len(row)*8))
		v.Sub(v, max)
	}
	return v
}

// bigIntToLEBytes is the inverse of leBytesToBigInt: it two's-complement
// encodes v into width little-endian bytes.
func bigIntToLEBytes(v *big.Int, width int) []byte {
	u := new(big.Int).Set(v)
	if v.Sign() < 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(width*8))
		u.Add(v, mod)
	}
	be := u.FillBytes(make([]byte, width))
	le := make([]byte, width)
	for i, b := range be {
		le[width-1-i] = b
	}
	return le
}

// decimalValue interprets row's little-endian two's-complement integer as
// an apd.Decimal scaled by 10^-scale, using cockroachdb/apd for the
// arbitrary-precision arithmetic the widest Decimal(P,S) columns need.
func decimalValue(row []byte, t *chtype.Type) *apd.Decimal {
	coeff := leBytesToBigInt(row, true)
	d := new(apd.Decimal)
	d.Coeff.SetString(new(big.Int).Abs(coeff).String(), 10)
	d.Negative = coeff.Sign() < 0
	d.Exponent = -int32(t.Scale)
	return d
}

// EncodeDecimal converts an apd.Decimal into its little-endian two's
// complement wire representation at the given width, rescaling to the
// column's declared scale first.
func EncodeDecimal(d *apd.Decimal, scale, width int) ([]byte, error) {
	rescaled := new(apd.Decimal)
	ctx := apd.BaseContext.WithPrecision(76)
	if _, err := ctx.Quantize(rescaled, d, -int32(scale)); err != nil {
		return nil, errors.Wrap(err, "quantize decimal to column scale")
	}
	coeff := new(big.Int)
	coeff.SetString(rescaled.Coeff.String(), 10)
	if rescaled.Negative {
		coeff.Neg(coeff)
	}
	return bigIntToLEBytes(coeff, width), nil
}

// dateTime64Value converts a raw signed integer count of 10^-precision
// second units since the epoch into a time.Time.
func dateTime64Value(raw int64, precision int) time.Time {
	scale := int64(1)
	for i := 0; i < precision; i++ {
		scale *= 10
	}
	secs := raw / scale
	rem := raw % scale
	nanos := rem * (1_000_000_000 / scale)
	return epoch.Add(time.Duration(secs)*time.Second + time.Duration(nanos))
}

// EncodeDateTime64 is the inverse of dateTime64Value.
func EncodeDateTime64(t time.Time, precision int) int64 {
	scale := int64(1)
	for i := 0; i < precision; i++ {
		scale *= 10
	}
	d := t.Sub(epoch)
	secs := int64(d / time.Second)
	nanos := int64(d % time.Second)
	return secs*scale + nanos/(1_000_000_000/scale)
}
