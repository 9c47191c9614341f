package bytebuf

// MaxLength is the largest payload a u16 length prefix can announce
const MaxLength = 1<<16 - 1

// --------------------------------------------------------------------------
// Bounded Variable Writers
// --------------------------------------------------------------------------

/*
	Note: Bounded values are written as a u16 length prefix followed by at most max bytes.
	Sources longer than max are truncated silently instead of failing the write. Dropping the tail
	of an oversized chat message or audio frame is preferred over dropping the whole packet.
*/

// StringSize returns the encoded size of s written with WriteString(w, s, max)
func StringSize(s string, max int) int {
	return 2 + min(len(s), max, MaxLength)
}

// WriteString writes a length prefixed string truncated to max bytes
func WriteString(w Writer, s string, max int) {
	n := min(len(s), max, MaxLength)
	w.WriteU16(uint16(n))
	w.WriteRawString(s[:n])
}

// BlobSize returns the encoded size of p written with WriteBlob(w, p, max)
func BlobSize(p []byte, max int) int {
	return 2 + min(len(p), max, MaxLength)
}

// WriteBlob writes a length prefixed byte blob truncated to max bytes
func WriteBlob(w Writer, p []byte, max int) {
	n := min(len(p), max, MaxLength)
	w.WriteU16(uint16(n))
	w.WriteRaw(p[:n])
}

// --------------------------------------------------------------------------
// Bounded Types
// --------------------------------------------------------------------------

// Limit declares the maximum length of a bounded type. Implementations are zero size types, e.g.:
//
//	type NameLimit struct{}
//	func (NameLimit) Max() int { return 32 }
type Limit interface {
	Max() int
}

// limitOf returns the maximum of the limit type L
func limitOf[L Limit]() int {
	var l L
	return min(l.Max(), MaxLength)
}

// FastString is a string with a maximum length (in bytes) fixed by its limit type.
// The zero value is the empty string.
type FastString[L Limit] struct {
	value string
}

// NewFastString creates a FastString, truncating s to the maximum of L
func NewFastString[L Limit](s string) FastString[L] {
	if max := limitOf[L](); len(s) > max {
		s = s[:max]
	}
	return FastString[L]{value: s}
}

// String returns the string value
func (s FastString[L]) String() string {
	return s.value
}

// MaxEncodedSize returns the largest possible encoded size of this type
func (s FastString[L]) MaxEncodedSize() int {
	return 2 + limitOf[L]()
}

func (s FastString[L]) EncodedSize() int {
	return StringSize(s.value, limitOf[L]())
}

func (s FastString[L]) Encode(w Writer) {
	WriteString(w, s.value, limitOf[L]())
}

func (s *FastString[L]) Decode(r *ByteReader) error {
	v, err := r.ReadString(limitOf[L]())
	if err != nil {
		return err
	}
	s.value = v
	return nil
}

// FastBytes is a byte blob with a maximum length fixed by its limit type
type FastBytes[L Limit] struct {
	value []byte
}

// NewFastBytes creates a FastBytes, truncating p to the maximum of L.
// The slice is not copied.
func NewFastBytes[L Limit](p []byte) FastBytes[L] {
	if max := limitOf[L](); len(p) > max {
		p = p[:max]
	}
	return FastBytes[L]{value: p}
}

// Bytes returns the blob value
func (b FastBytes[L]) Bytes() []byte {
	return b.value
}

// Len returns the length of the blob
func (b FastBytes[L]) Len() int {
	return len(b.value)
}

// MaxEncodedSize returns the largest possible encoded size of this type
func (b FastBytes[L]) MaxEncodedSize() int {
	return 2 + limitOf[L]()
}

func (b FastBytes[L]) EncodedSize() int {
	return BlobSize(b.value, limitOf[L]())
}

func (b FastBytes[L]) Encode(w Writer) {
	WriteBlob(w, b.value, limitOf[L]())
}

func (b *FastBytes[L]) Decode(r *ByteReader) error {
	v, err := r.ReadBlob(limitOf[L]())
	if err != nil {
		return err
	}
	b.value = v
	return nil
}
