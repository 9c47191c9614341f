package bytebuf

import (
	"encoding/binary"
	"fmt"
	"math"
)

// --------------------------------------------------------------------------
// ByteReader
// --------------------------------------------------------------------------

// ByteReader decodes values from a byte slice written by a FastByteBuffer or ByteBuffer.
// The slice is only read, never modified.
//
// Thread-safety: A ByteReader must not be shared between goroutines.
type ByteReader struct {
	data []byte
	pos  int
}

// NewByteReader binds a new reader to data with the cursor at 0
func NewByteReader(data []byte) *ByteReader {
	return &ByteReader{data: data}
}

// Remaining returns the number of unread bytes
func (r *ByteReader) Remaining() int {
	return len(r.data) - r.pos
}

// Pos returns the number of bytes consumed so far
func (r *ByteReader) Pos() int {
	return r.pos
}

// take returns the next n bytes (aliasing the underlying slice) and advances the cursor
func (r *ByteReader) take(n int) ([]byte, error) {
	if n > len(r.data)-r.pos {
		return nil, fmt.Errorf("%w: need %d bytes, %d remaining", ErrInsufficientData, n, len(r.data)-r.pos)
	}
	p := r.data[r.pos : r.pos+n]
	r.pos += n
	return p, nil
}

// Skip advances the cursor by n bytes
func (r *ByteReader) Skip(n int) error {
	_, err := r.take(n)
	return err
}

// --------------------------------------------------------------------------
// Primitive Readers
// --------------------------------------------------------------------------

func (r *ByteReader) ReadU8() (uint8, error) {
	p, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// ReadBool reads a single byte, every non-zero value is true
func (r *ByteReader) ReadBool() (bool, error) {
	v, err := r.ReadU8()
	return v != 0, err
}

func (r *ByteReader) ReadU16() (uint16, error) {
	p, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p), nil
}

func (r *ByteReader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

func (r *ByteReader) ReadU32() (uint32, error) {
	p, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(p), nil
}

func (r *ByteReader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

func (r *ByteReader) ReadU64() (uint64, error) {
	p, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(p), nil
}

func (r *ByteReader) ReadI64() (int64, error) {
	v, err := r.ReadU64()
	return int64(v), err
}

func (r *ByteReader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	return math.Float32frombits(v), err
}

func (r *ByteReader) ReadF64() (float64, error) {
	v, err := r.ReadU64()
	return math.Float64frombits(v), err
}

// ReadRaw returns the next n bytes without copying them.
// The returned slice aliases the input and must not be retained beyond the lifetime of the input.
func (r *ByteReader) ReadRaw(n int) ([]byte, error) {
	return r.take(n)
}

// --------------------------------------------------------------------------
// Bounded Variable Readers
// --------------------------------------------------------------------------

// readBounded reads a u16 length prefix and the payload it announces.
//
// A prefix larger than the remaining data is rejected with ErrMalformedLength.
// A prefix larger than max consumes the announced bytes but only the first max bytes are returned,
// so no more than max bytes are ever materialized regardless of what the prefix claims.
func (r *ByteReader) readBounded(max int) ([]byte, error) {
	start := r.pos
	n, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	if rem := r.Remaining(); int(n) > rem {
		r.pos = start
		return nil, malformedf("prefix claims %d bytes, %d remaining", n, rem)
	}
	p, _ := r.take(int(n))
	if len(p) > max {
		p = p[:max]
	}
	return p, nil
}

// ReadString reads a length prefixed string of at most max bytes
func (r *ByteReader) ReadString(max int) (string, error) {
	p, err := r.readBounded(max)
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// ReadBlob reads a length prefixed byte blob of at most max bytes.
// The returned slice is a copy and safe to retain.
func (r *ByteReader) ReadBlob(max int) ([]byte, error) {
	p, err := r.readBounded(max)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(p))
	copy(out, p)
	return out, nil
}

// malformedf wraps ErrMalformedLength with a formatted message
func malformedf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedLength, fmt.Sprintf(format, args...))
}
