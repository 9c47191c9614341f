package bytebuf

// --------------------------------------------------------------------------
// Value Model
// --------------------------------------------------------------------------

// Writer is the sink encoders write into. It is implemented by FastByteBuffer (fixed capacity)
// and ByteBuffer (growable). All multi-byte values are written big endian.
type Writer interface {
	WriteU8(v uint8)
	WriteBool(v bool)
	WriteU16(v uint16)
	WriteI16(v int16)
	WriteU32(v uint32)
	WriteI32(v int32)
	WriteU64(v uint64)
	WriteI64(v int64)
	WriteF32(v float32)
	WriteF64(v float64)
	// WriteRaw writes p without a length prefix
	WriteRaw(p []byte)
	// WriteRawString writes s without a length prefix
	WriteRawString(s string)
}

// Encodable is implemented by every wire visible type.
//
// EncodedSize must return the exact number of bytes Encode will write for this value.
// Fields are encoded in declaration order, there are no tags - the order is the schema.
type Encodable interface {
	EncodedSize() int
	Encode(w Writer)
}

// Decodable is implemented (on the pointer receiver) by every wire visible type.
type Decodable interface {
	Decode(r *ByteReader) error
}

// decodablePtr constrains PT to be a pointer to T that implements Decodable.
// This allows generic decoding into a stack allocated T.
type decodablePtr[T any] interface {
	*T
	Decodable
}

// ReadValue decodes a single value of type T.
// On error the zero value is returned and the reader is rewound to where the value started,
// so partially decoded values are never observable.
func ReadValue[T any, PT decodablePtr[T]](r *ByteReader) (T, error) {
	var v T
	start := r.pos
	if err := PT(&v).Decode(r); err != nil {
		r.pos = start
		var zero T
		return zero, err
	}
	return v, nil
}

// --------------------------------------------------------------------------
// Optional Values
// --------------------------------------------------------------------------

// OptionalSize returns the encoded size of an optional value (1 byte presence flag + value)
func OptionalSize[T Encodable](v *T) int {
	if v == nil {
		return 1
	}
	return 1 + (*v).EncodedSize()
}

// WriteOptional writes a presence flag followed by the value if v is not nil
func WriteOptional[T Encodable](w Writer, v *T) {
	if v == nil {
		w.WriteBool(false)
		return
	}
	w.WriteBool(true)
	(*v).Encode(w)
}

// ReadOptional reads a presence flag and, if set, the value.
// It returns nil if the value was absent.
func ReadOptional[T any, PT decodablePtr[T]](r *ByteReader) (*T, error) {
	present, err := r.ReadBool()
	if err != nil || !present {
		return nil, err
	}
	v, err := ReadValue[T, PT](r)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// --------------------------------------------------------------------------
// Lists
// --------------------------------------------------------------------------

// ListSize returns the encoded size of a list written with WriteList (u16 count + at most max elements)
func ListSize[T Encodable](items []T, max int) int {
	size := 2
	for i := 0; i < min(len(items), max, MaxLength); i++ {
		size += items[i].EncodedSize()
	}
	return size
}

// WriteList writes a u16 element count followed by the elements.
// Lists longer than max are truncated to their first max elements.
func WriteList[T Encodable](w Writer, items []T, max int) {
	n := min(len(items), max, MaxLength)
	w.WriteU16(uint16(n))
	for i := 0; i < n; i++ {
		items[i].Encode(w)
	}
}

// ReadList reads a list written by WriteList.
// A count greater than max is rejected with ErrMalformedLength because the surplus
// elements can not be skipped without decoding them.
func ReadList[T any, PT decodablePtr[T]](r *ByteReader, max int) ([]T, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	if int(count) > max {
		return nil, malformedf("list claims %d elements, max is %d", count, max)
	}

	// every element takes at least one byte, the remaining input bounds the capacity
	items := make([]T, 0, min(int(count), r.Remaining()))
	for i := 0; i < int(count); i++ {
		item, err := ReadValue[T, PT](r)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
