// Package compress implements the per-transport-frame block compression
// layer: a 16-byte CityHash128 checksum, a 1-byte algorithm tag, compressed
// and uncompressed size fields, and the compressed payload. Two algorithms
// are supported: LZ4 (the default) and zstd (the "heavy" alternative).
package compress

import (
	"encoding/binary"

	"github.com/go-faster/city"
	"github.com/go-faster/errors"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Method identifies the frame's compression algorithm by its wire tag.
type Method byte

const (
	MethodLZ4  Method = 0x82
	MethodHeavy Method = 0x90 // zstd
)

func (m Method) String() string {
	switch m {
	case MethodLZ4:
		return "lz4"
	case MethodHeavy:
		return "zstd"
	default:
		return "unknown"
	}
}

// headerSize is the 9-byte inner header (algorithm tag + compressed size +
// uncompressed size) that sits after the 16-byte checksum and is itself
// counted in the compressed-size field, per spec.
const headerSize = 1 + 4 + 4
const checksumSize = 16

// ErrChecksumMismatch is returned by Decompress when the stored checksum
// does not match the recomputed one over bytes [16:end).
var ErrChecksumMismatch = errors.New("compress: checksum mismatch")

// Compress encodes payload as one compressed transport frame using method,
// returning checksum(16) || tag(1) || compressedSize(4) || uncompressedSize(4) || payload.
func Compress(method Method, payload []byte) ([]byte, error) {
	var compressed []byte
	var err error
	switch method {
	case MethodLZ4:
		compressed, err = compressLZ4(payload)
	case MethodHeavy:
		compressed, err = compressZstd(payload)
	default:
		return nil, errors.Newf("compress: unknown method 0x%02x", byte(method))
	}
	if err != nil {
		return nil, errors.Wrap(err, "compress payload")
	}

	frame := make([]byte, checksumSize+headerSize+len(compressed))
	body := frame[checksumSize:]
	body[0] = byte(method)
	binary.LittleEndian.PutUint32(body[1:5], uint32(headerSize+len(compressed)))
	binary.LittleEndian.PutUint32(body[5:9], uint32(len(payload)))
	copy(body[headerSize:], compressed)

	lo, hi := city.CH128(body)
	binary.LittleEndian.PutUint64(frame[0:8], lo)
	binary.LittleEndian.PutUint64(frame[8:16], hi)
	return frame, nil
}

// Decompress validates the checksum and inflates frame, returning the
// original uncompressed payload. It fails with ErrChecksumMismatch on any
// corruption of the checksummed region.
func Decompress(frame []byte) ([]byte, error) {
	if len(frame) < checksumSize+headerSize {
		return nil, errors.New("compress: frame shorter than header")
	}
	storedLo := binary.LittleEndian.Uint64(frame[0:8])
	storedHi := binary.LittleEndian.Uint64(frame[8:16])

	body := frame[checksumSize:]
	gotLo, gotHi := city.CH128(body)
	if gotLo != storedLo || gotHi != storedHi {
		return nil, ErrChecksumMismatch
	}

	method := Method(body[0])
	compressedSize := binary.LittleEndian.Uint32(body[1:5])
	uncompressedSize := binary.LittleEndian.Uint32(body[5:9])
	if int(compressedSize) < headerSize {
		return nil, errors.New("compress: compressed size smaller than header")
	}
	payloadEnd := checksumSize + int(compressedSize)
	if payloadEnd > len(frame) {
		return nil, errors.New("compress: compressed size exceeds frame")
	}
	compressed := frame[checksumSize+headerSize : payloadEnd]

	switch method {
	case MethodLZ4:
		return decompressLZ4(compressed, int(uncompressedSize))
	case MethodHeavy:
		return decompressZstd(compressed, int(uncompressedSize))
	default:
		return nil, errors.Newf("compress: unknown method 0x%02x", byte(method))
	}
}

func compressLZ4(payload []byte) ([]byte, error) {
	buf := make([]byte, lz4.CompressBlockBound(len(payload)))
	var c lz4.Compressor
	n, err := c.CompressBlock(payload, buf)
	if err != nil {
		return nil, errors.Wrap(err, "lz4 compress")
	}
	if n == 0 && len(payload) > 0 {
		// Incompressible input: lz4 signals this by writing 0 bytes.
		// Fall back to storing the raw block ourselves is not an option
		// here since the frame format has no "stored" tag, so retry with
		// a buffer sized to guarantee success is not possible for
		// pathological inputs; surface it as a compression failure.
		return nil, errors.New("lz4 compress: block incompressible")
	}
	return buf[:n], nil
}

func decompressLZ4(compressed []byte, uncompressedSize int) ([]byte, error) {
	buf := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(compressed, buf)
	if err != nil {
		return nil, errors.Wrap(err, "lz4 decompress")
	}
	return buf[:n], nil
}

func compressZstd(payload []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, errors.Wrap(err, "zstd new encoder")
	}
	defer enc.Close()
	return enc.EncodeAll(payload, nil), nil
}

func decompressZstd(compressed []byte, uncompressedSize int) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Wrap(err, "zstd new decoder")
	}
	defer dec.Close()
	out := make([]byte, 0, uncompressedSize)
	return dec.DecodeAll(compressed, out)
}
