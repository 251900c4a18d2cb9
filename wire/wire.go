// Package wire implements the primitive byte-level encodings shared by every
// higher-level codec in this module: LEB128-style unsigned varints,
// length-prefixed strings, little-endian fixed-width integers/floats, and
// single-byte booleans.
package wire

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/go-faster/errors"
)

// MaxVarUintBytes caps the number of bytes a varuint decode will consume before
// giving up, guarding against a corrupt or hostile peer driving an unbounded
// read loop.
const MaxVarUintBytes = 10

// Reader reads the primitive wire encodings from an io.Reader. It is not
// safe for concurrent use; callers serialize access per connection.
type Reader struct {
	r   io.Reader
	one [1]byte
}

func NewReader(r io.Reader) *Reader { return &Reader{r: r} }

// UVarint reads a LEB128-style unsigned varint: 7 payload bits per byte,
// continuation signaled by the high bit.
func (r *Reader) UVarint() (uint64, error) {
	var x uint64
	var s uint
	for i := 0; i < MaxVarUintBytes; i++ {
		if _, err := io.ReadFull(r.r, r.one[:]); err != nil {
			return 0, errors.Wrap(err, "read varuint byte")
		}
		b := r.one[0]
		if b < 0x80 {
			if i == MaxVarUintBytes-1 && b > 1 {
				return 0, errors.New("varuint overflows 64 bits")
			}
			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
	return 0, errors.New("varuint too long")
}

// Int reads a varuint and reinterprets it as a signed value via zig-zag
// decoding is NOT used here: the protocol only varint-encodes lengths and
// counts, which are always non-negative, so Int exists only for byte counts
// that must fit in a Go int.
func (r *Reader) Int() (int, error) {
	u, err := r.UVarint()
	if err != nil {
		return 0, err
	}
	if u > math.MaxInt32 {
		return 0, errors.Newf("length %d exceeds supported maximum", u)
	}
	return int(u), nil
}

// String reads a varuint length prefix followed by that many raw bytes.
func (r *Reader) String() (string, error) {
	n, err := r.Int()
	if err != nil {
		return "", errors.Wrap(err, "read string length")
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return "", errors.Wrap(err, "read string bytes")
	}
	return string(buf), nil
}

// Bytes reads a varuint length prefix followed by that many raw bytes,
// returning them without a string conversion.
func (r *Reader) Bytes() ([]byte, error) {
	n, err := r.Int()
	if err != nil {
		return nil, errors.Wrap(err, "read bytes length")
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, errors.Wrap(err, "read bytes")
	}
	return buf, nil
}

// Raw reads exactly n bytes with no length prefix.
func (r *Reader) Raw(n int) ([]byte, error) {
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, errors.Wrap(err, "read raw bytes")
	}
	return buf, nil
}

func (r *Reader) Bool() (bool, error) {
	if _, err := io.ReadFull(r.r, r.one[:]); err != nil {
		return false, errors.Wrap(err, "read bool")
	}
	return r.one[0] != 0, nil
}

func (r *Reader) Uint8() (uint8, error) {
	if _, err := io.ReadFull(r.r, r.one[:]); err != nil {
		return 0, errors.Wrap(err, "read uint8")
	}
	return r.one[0], nil
}

func (r *Reader) Int8() (int8, error) {
	u, err := r.Uint8()
	return int8(u), err
}

func (r *Reader) Uint16() (uint16, error) {
	buf := make([]byte, 2)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return 0, errors.Wrap(err, "read uint16")
	}
	return binary.LittleEndian.Uint16(buf), nil
}

func (r *Reader) Int16() (int16, error) {
	u, err := r.Uint16()
	return int16(u), err
}

func (r *Reader) Uint32() (uint32, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return 0, errors.Wrap(err, "read uint32")
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func (r *Reader) Int32() (int32, error) {
	u, err := r.Uint32()
	return int32(u), err
}

func (r *Reader) Uint64() (uint64, error) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return 0, errors.Wrap(err, "read uint64")
	}
	return binary.LittleEndian.Uint64(buf), nil
}

func (r *Reader) Int64() (int64, error) {
	u, err := r.Uint64()
	return int64(u), err
}

func (r *Reader) Float32() (float32, error) {
	u, err := r.Uint32()
	return math.Float32frombits(u), err
}

func (r *Reader) Float64() (float64, error) {
	u, err := r.Uint64()
	return math.Float64frombits(u), err
}

// Uint128 reads a 16-byte little-endian unsigned integer as two uint64 words
// (lo, hi), the layout used by Int128/UInt128/Decimal128 and UUID-adjacent
// fixed-width columns.
func (r *Reader) Uint128() (lo, hi uint64, err error) {
	lo, err = r.Uint64()
	if err != nil {
		return 0, 0, err
	}
	hi, err = r.Uint64()
	return lo, hi, err
}

// Uint256 reads a 32-byte little-endian unsigned integer as four uint64
// words, least-significant first.
func (r *Reader) Uint256() (words [4]uint64, err error) {
	for i := range words {
		words[i], err = r.Uint64()
		if err != nil {
			return words, err
		}
	}
	return words, nil
}

// Writer writes the primitive wire encodings to an io.Writer.
type Writer struct {
	w   io.Writer
	one [1]byte
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (w *Writer) UVarint(v uint64) error {
	var buf [MaxVarUintBytes]byte
	n := 0
	for v >= 0x80 {
		buf[n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	buf[n] = byte(v)
	n++
	_, err := w.w.Write(buf[:n])
	return errors.Wrap(err, "write varuint")
}

func (w *Writer) Int(v int) error {
	if v < 0 {
		return errors.Newf("cannot varint-encode negative length %d", v)
	}
	return w.UVarint(uint64(v))
}

func (w *Writer) String(s string) error {
	if err := w.Int(len(s)); err != nil {
		return errors.Wrap(err, "write string length")
	}
	if len(s) == 0 {
		return nil
	}
	_, err := io.WriteString(w.w, s)
	return errors.Wrap(err, "write string bytes")
}

func (w *Writer) Bytes(b []byte) error {
	if err := w.Int(len(b)); err != nil {
		return errors.Wrap(err, "write bytes length")
	}
	if len(b) == 0 {
		return nil
	}
	_, err := w.w.Write(b)
	return errors.Wrap(err, "write bytes")
}

// Raw writes b with no length prefix.
func (w *Writer) Raw(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	_, err := w.w.Write(b)
	return errors.Wrap(err, "write raw bytes")
}

func (w *Writer) Bool(v bool) error {
	if v {
		w.one[0] = 1
	} else {
		w.one[0] = 0
	}
	_, err := w.w.Write(w.one[:])
	return errors.Wrap(err, "write bool")
}

func (w *Writer) Uint8(v uint8) error {
	w.one[0] = v
	_, err := w.w.Write(w.one[:])
	return errors.Wrap(err, "write uint8")
}

func (w *Writer) Int8(v int8) error { return w.Uint8(uint8(v)) }

func (w *Writer) Uint16(v uint16) error {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	_, err := w.w.Write(buf)
	return errors.Wrap(err, "write uint16")
}

func (w *Writer) Int16(v int16) error { return w.Uint16(uint16(v)) }

func (w *Writer) Uint32(v uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	_, err := w.w.Write(buf)
	return errors.Wrap(err, "write uint32")
}

func (w *Writer) Int32(v int32) error { return w.Uint32(uint32(v)) }

func (w *Writer) Uint64(v uint64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	_, err := w.w.Write(buf)
	return errors.Wrap(err, "write uint64")
}

func (w *Writer) Int64(v int64) error { return w.Uint64(uint64(v)) }

func (w *Writer) Float32(v float32) error { return w.Uint32(math.Float32bits(v)) }

func (w *Writer) Float64(v float64) error { return w.Uint64(math.Float64bits(v)) }

func (w *Writer) Uint128(lo, hi uint64) error {
	if err := w.Uint64(lo); err != nil {
		return err
	}
	return w.Uint64(hi)
}

func (w *Writer) Uint256(words [4]uint64) error {
	for _, word := range words {
		if err := w.Uint64(word); err != nil {
			return err
		}
	}
	return nil
}
