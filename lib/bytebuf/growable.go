package bytebuf

import (
	"encoding/binary"
	"math"
)

// --------------------------------------------------------------------------
// ByteBuffer (growable, cold path only)
// --------------------------------------------------------------------------

// ByteBuffer is a general purpose growable writer. It never fails, instead it reallocates
// when it runs out of space. It is noticeably slower than FastByteBuffer and intended for cold
// paths (startup, tests, tooling) only.
type ByteBuffer struct {
	data []byte
}

// NewByteBuffer creates an empty growable buffer
func NewByteBuffer() *ByteBuffer {
	return &ByteBuffer{}
}

// WriteValue appends the encoding of v, growing the buffer as needed
func (b *ByteBuffer) WriteValue(v Encodable) {
	b.grow(v.EncodedSize())
	v.Encode(b)
}

// AsBytes returns the written bytes. The slice aliases the buffer.
func (b *ByteBuffer) AsBytes() []byte {
	return b.data
}

// Len returns the number of bytes written
func (b *ByteBuffer) Len() int {
	return len(b.data)
}

// Reset empties the buffer but keeps the allocated memory
func (b *ByteBuffer) Reset() {
	b.data = b.data[:0]
}

// grow makes sure n more bytes can be appended without reallocation
func (b *ByteBuffer) grow(n int) {
	if cap(b.data)-len(b.data) < n {
		next := make([]byte, len(b.data), 2*cap(b.data)+n)
		copy(next, b.data)
		b.data = next
	}
}

// Marshal encodes v into a freshly allocated slice of exactly v.EncodedSize() bytes
func Marshal(v Encodable) []byte {
	b := &ByteBuffer{data: make([]byte, 0, v.EncodedSize())}
	v.Encode(b)
	return b.data
}

// --------------------------------------------------------------------------
// Primitive Writers (docu see bytebuf.Writer)
// --------------------------------------------------------------------------

func (b *ByteBuffer) WriteU8(v uint8) {
	b.data = append(b.data, v)
}

func (b *ByteBuffer) WriteBool(v bool) {
	if v {
		b.data = append(b.data, 1)
	} else {
		b.data = append(b.data, 0)
	}
}

func (b *ByteBuffer) WriteU16(v uint16) {
	b.data = binary.BigEndian.AppendUint16(b.data, v)
}

func (b *ByteBuffer) WriteI16(v int16) {
	b.WriteU16(uint16(v))
}

func (b *ByteBuffer) WriteU32(v uint32) {
	b.data = binary.BigEndian.AppendUint32(b.data, v)
}

func (b *ByteBuffer) WriteI32(v int32) {
	b.WriteU32(uint32(v))
}

func (b *ByteBuffer) WriteU64(v uint64) {
	b.data = binary.BigEndian.AppendUint64(b.data, v)
}

func (b *ByteBuffer) WriteI64(v int64) {
	b.WriteU64(uint64(v))
}

func (b *ByteBuffer) WriteF32(v float32) {
	b.WriteU32(math.Float32bits(v))
}

func (b *ByteBuffer) WriteF64(v float64) {
	b.WriteU64(math.Float64bits(v))
}

func (b *ByteBuffer) WriteRaw(p []byte) {
	b.data = append(b.data, p...)
}

func (b *ByteBuffer) WriteRawString(s string) {
	b.data = append(b.data, s...)
}
