package rsgview

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// asciiFloatWidth is the fixed width of the legacy text float encoding.
const asciiFloatWidth = 6

// Reader is a cursor over an immutable byte buffer holding binary draw
// commands. Every read past the end fails with ErrTruncatedMessage and
// leaves the cursor where it was.
type Reader struct {
	buf []byte
	off int
}

// NewReader returns a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.off }

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int { return r.off }

func (r *Reader) take(n int) ([]byte, error) {
	if r.Len() < n {
		return nil, fmt.Errorf("need %d bytes at offset %d, have %d: %w", n, r.off, r.Len(), ErrTruncatedMessage)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadByte reads one unsigned byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadFloat32 reads a big-endian IEEE-754 single.
func (r *Reader) ReadFloat32() (float64, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return float64(math.Float32frombits(binary.BigEndian.Uint32(b))), nil
}

// ReadASCIIFloat reads a float written as exactly six ASCII characters,
// as produced by the legacy draw helper. Padding spaces are ignored.
func (r *Reader) ReadASCIIFloat() (float64, error) {
	start := r.off
	b, err := r.take(asciiFloatWidth)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(strings.TrimRight(string(b), "\x00"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.off = start
		return 0, fmt.Errorf("ascii float %q at offset %d: %w", b, start, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		r.off = start
		return 0, fmt.Errorf("ascii float %q at offset %d: %w", b, start, ErrValueOutOfRange)
	}
	return v, nil
}

// ReadString reads a null-terminated string and consumes the terminator.
func (r *Reader) ReadString() (string, error) {
	i := bytes.IndexByte(r.buf[r.off:], 0)
	if i < 0 {
		return "", fmt.Errorf("unterminated string at offset %d: %w", r.off, ErrTruncatedMessage)
	}
	s := string(r.buf[r.off : r.off+i])
	r.off += i + 1
	return s, nil
}

// ReadVec3 reads three big-endian floats.
func (r *Reader) ReadVec3() (Vec3, error) {
	b, err := r.take(12)
	if err != nil {
		return Vec3{}, err
	}
	return Vec3{
		X: float64(math.Float32frombits(binary.BigEndian.Uint32(b[0:]))),
		Y: float64(math.Float32frombits(binary.BigEndian.Uint32(b[4:]))),
		Z: float64(math.Float32frombits(binary.BigEndian.Uint32(b[8:]))),
	}, nil
}

// ReadRGB reads three color channels. Alpha is opaque.
func (r *Reader) ReadRGB() (Color, error) {
	b, err := r.take(3)
	if err != nil {
		return Color{}, err
	}
	return ColorFromBytes(b[0], b[1], b[2], 255), nil
}

// ReadRGBA reads four color channels.
func (r *Reader) ReadRGBA() (Color, error) {
	b, err := r.take(4)
	if err != nil {
		return Color{}, err
	}
	return ColorFromBytes(b[0], b[1], b[2], b[3]), nil
}
