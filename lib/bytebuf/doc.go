// Package bytebuf provides the binary encoding framework used to serialize every relay packet.
// It is built for the hot path: values are written into a caller supplied, fixed capacity
// byte region without growing it and without allocating.
//
// The package focuses on:
//   - Deterministic, order dependent encodings without tags or self description
//   - Constant time size computation (fixed width big endian numbers, no varints)
//   - Strict capacity bounds on the write side and over-claim protection on the read side
//   - Recoverable errors for all malformed input, nothing panics on remote data
//
// Key Components:
//
//   - FastByteBuffer: Writer bound to a fixed capacity region. WriteValue checks the encoded size
//     of a value before writing, a value that does not fit fails with ErrCapacity and leaves
//     the buffer untouched.
//
//   - ByteReader: Reader over a byte slice. Returns ErrInsufficientData when a value needs more
//     bytes than remain and ErrMalformedLength when a length prefix over-claims.
//
//   - ByteBuffer: Growable writer for cold paths. Slower, but it never fails.
//
//   - Encodable / Decodable: The value model. Every wire type reports its exact encoded size,
//     encodes itself into a Writer and decodes itself from a ByteReader. Composite types
//     encode their fields in declaration order.
//
//   - FastString / FastBytes: Bounded variable values with a type level maximum. Encoded as a
//     u16 length prefix plus payload. Sources longer than the maximum are truncated (not rejected).
//
// Wire Format:
//
//	u8/bool      1 byte (bool: 0 = false, everything else = true)
//	u16/i16      2 bytes big endian
//	u32/i32/f32  4 bytes big endian (f32 as IEEE 754 bits)
//	u64/i64/f64  8 bytes big endian
//	string/blob  u16 length + payload (at most max bytes)
//	optional     u8 presence flag + value if present
//	list         u16 count + elements
//
// Usage:
//
//	var region [256]byte
//	buf := bytebuf.NewFastByteBuffer(region[:])
//	if err := buf.WriteValue(value); err != nil {
//	  // ErrCapacity - drop or retry with a larger region
//	}
//	send(buf.AsBytes())
//
//	r := bytebuf.NewByteReader(received)
//	v, err := bytebuf.ReadValue[data.PlayerData](r)
//
// Thread Safety:
//
//	Buffers and readers are not safe for concurrent use. Each encode or decode call owns its
//	buffer for the duration of the call.
package bytebuf
