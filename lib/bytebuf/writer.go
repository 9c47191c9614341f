package bytebuf

import (
	"encoding/binary"
	"fmt"
	"math"
)

// --------------------------------------------------------------------------
// FastByteBuffer
// --------------------------------------------------------------------------

// FastByteBuffer writes encoded values into a caller supplied, fixed capacity byte region.
// The region is never grown or reallocated: running out of capacity is always an error.
//
// The buffer only borrows the region for the time it is used, the caller decides where the
// backing storage lives (stack array, heap slice or a pooled buffer).
//
// Thread-safety: A FastByteBuffer must not be shared between goroutines.
type FastByteBuffer struct {
	data []byte
	pos  int
	err  error // sticky error of the primitive writers
}

// NewFastByteBuffer binds a new buffer to region. The cursor starts at 0 and the capacity is len(region).
func NewFastByteBuffer(region []byte) *FastByteBuffer {
	return &FastByteBuffer{data: region}
}

// WriteValue appends the encoding of v at the cursor.
//
// The required size is checked in O(1) before anything is written. If the remaining capacity
// is not sufficient ErrCapacity is returned and neither the region nor the cursor is modified.
func (b *FastByteBuffer) WriteValue(v Encodable) error {
	if b.err != nil {
		return b.err
	}

	size := v.EncodedSize()
	if size > len(b.data)-b.pos {
		return fmt.Errorf("%w: need %d bytes, %d remaining", ErrCapacity, size, len(b.data)-b.pos)
	}

	start := b.pos
	v.Encode(b)

	// an encoder that lies about its size is a programming error, undo the write
	if b.err != nil || b.pos-start != size {
		written := b.pos - start
		b.pos = start
		b.err = nil
		return fmt.Errorf("%w: %T reported %d bytes but wrote %d", ErrSizeMismatch, v, size, written)
	}
	return nil
}

// AsBytes returns the written prefix of the region. The returned slice aliases the region.
func (b *FastByteBuffer) AsBytes() []byte {
	return b.data[:b.pos]
}

// Len returns the number of bytes written
func (b *FastByteBuffer) Len() int {
	return b.pos
}

// Cap returns the capacity of the region
func (b *FastByteBuffer) Cap() int {
	return len(b.data)
}

// Remaining returns the number of bytes that can still be written
func (b *FastByteBuffer) Remaining() int {
	return len(b.data) - b.pos
}

// Err returns the sticky error of the primitive writers (nil if all writes succeeded)
func (b *FastByteBuffer) Err() error {
	return b.err
}

// Reset moves the cursor back to 0 and clears the sticky error
func (b *FastByteBuffer) Reset() {
	b.pos = 0
	b.err = nil
}

// --------------------------------------------------------------------------
// Primitive Writers (docu see bytebuf.Writer)
// --------------------------------------------------------------------------

func (b *FastByteBuffer) WriteU8(v uint8) {
	if b.reserve(1) {
		b.data[b.pos] = v
		b.pos++
	}
}

func (b *FastByteBuffer) WriteBool(v bool) {
	if v {
		b.WriteU8(1)
	} else {
		b.WriteU8(0)
	}
}

func (b *FastByteBuffer) WriteU16(v uint16) {
	if b.reserve(2) {
		binary.BigEndian.PutUint16(b.data[b.pos:], v)
		b.pos += 2
	}
}

func (b *FastByteBuffer) WriteI16(v int16) {
	b.WriteU16(uint16(v))
}

func (b *FastByteBuffer) WriteU32(v uint32) {
	if b.reserve(4) {
		binary.BigEndian.PutUint32(b.data[b.pos:], v)
		b.pos += 4
	}
}

func (b *FastByteBuffer) WriteI32(v int32) {
	b.WriteU32(uint32(v))
}

func (b *FastByteBuffer) WriteU64(v uint64) {
	if b.reserve(8) {
		binary.BigEndian.PutUint64(b.data[b.pos:], v)
		b.pos += 8
	}
}

func (b *FastByteBuffer) WriteI64(v int64) {
	b.WriteU64(uint64(v))
}

func (b *FastByteBuffer) WriteF32(v float32) {
	b.WriteU32(math.Float32bits(v))
}

func (b *FastByteBuffer) WriteF64(v float64) {
	b.WriteU64(math.Float64bits(v))
}

func (b *FastByteBuffer) WriteRaw(p []byte) {
	if b.reserve(len(p)) {
		b.pos += copy(b.data[b.pos:], p)
	}
}

func (b *FastByteBuffer) WriteRawString(s string) {
	if b.reserve(len(s)) {
		b.pos += copy(b.data[b.pos:], s)
	}
}

// reserve checks whether n more bytes fit and records ErrCapacity if they don't
func (b *FastByteBuffer) reserve(n int) bool {
	if b.err != nil {
		return false
	}
	if n > len(b.data)-b.pos {
		b.err = ErrCapacity
		return false
	}
	return true
}
