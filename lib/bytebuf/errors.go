package bytebuf

import "errors"

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrCapacity is returned when a value does not fit into the remaining capacity of a FastByteBuffer.
	// The buffer is left unchanged.
	ErrCapacity = errors.New("bytebuf: insufficient capacity")

	// ErrInsufficientData is returned when fewer bytes remain than a value requires.
	ErrInsufficientData = errors.New("bytebuf: insufficient data")

	// ErrMalformedLength is returned when a length prefix claims more data than is available
	// or a list count exceeds the declared maximum.
	ErrMalformedLength = errors.New("bytebuf: malformed length")

	// ErrSizeMismatch is returned when an encoder writes a different number of bytes than its EncodedSize reported.
	ErrSizeMismatch = errors.New("bytebuf: encoded size mismatch")
)
