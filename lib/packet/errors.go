package packet

import "errors"

var (
	// ErrUnknownPacket is returned when no decoder is registered for a packet id.
	// The packet should be dropped, the connection can continue.
	ErrUnknownPacket = errors.New("packet: unknown packet id")

	// ErrDuplicateID is returned when a packet id is registered twice
	ErrDuplicateID = errors.New("packet: duplicate packet id")

	// ErrConfidentialityMismatch is returned when the encrypted flag of a header disagrees
	// with the registered descriptor of the packet id
	ErrConfidentialityMismatch = errors.New("packet: confidentiality flag mismatch")
)
