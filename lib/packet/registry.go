package packet

import (
	"fmt"
	"sort"

	"github.com/ValentinKolb/dRelay/lib/bytebuf"
)

// DecodeFunc decodes a payload (without header) from r
type DecodeFunc func(r *bytebuf.ByteReader) (Packet, error)

type entry struct {
	desc   Descriptor
	decode DecodeFunc
}

// Registry maps packet ids to decoders.
//
// Thread-safety: A registry is built once at startup and only read afterwards.
// Register must not be called concurrently with Decode or Lookup.
type Registry struct {
	entries map[uint16]entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[uint16]entry)}
}

// Register binds decode to the id of desc. It returns ErrDuplicateID if the id is already taken.
func (reg *Registry) Register(desc Descriptor, decode DecodeFunc) error {
	if existing, ok := reg.entries[desc.ID]; ok {
		return fmt.Errorf("%w: %d is already registered (encrypted=%t)", ErrDuplicateID, desc.ID, existing.desc.Encrypted)
	}
	reg.entries[desc.ID] = entry{desc: desc, decode: decode}
	return nil
}

// Lookup returns the registered descriptor for id
func (reg *Registry) Lookup(id uint16) (Descriptor, bool) {
	e, ok := reg.entries[id]
	return e.desc, ok
}

// Len returns the number of registered packets
func (reg *Registry) Len() int {
	return len(reg.entries)
}

// IDs returns all registered ids in ascending order
func (reg *Registry) IDs() []uint16 {
	ids := make([]uint16, 0, len(reg.entries))
	for id := range reg.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Decode reads the header of data, selects the registered decoder and decodes the payload.
//
// Errors:
//   - ErrUnknownPacket if no decoder is registered for the id
//   - ErrConfidentialityMismatch if the header flag differs from the registered descriptor
//   - bytebuf errors (ErrInsufficientData, ErrMalformedLength) for malformed payloads
//
// All errors are recoverable, nothing in here panics on remote input.
func (reg *Registry) Decode(data []byte) (Packet, error) {
	r := bytebuf.NewByteReader(data)
	h, err := DecodeHeader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read packet header: %w", err)
	}
	return reg.DecodePayload(h, r)
}

// DecodePayload decodes the payload of a packet whose header has already been read
func (reg *Registry) DecodePayload(h Header, r *bytebuf.ByteReader) (Packet, error) {
	e, ok := reg.entries[h.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPacket, h.ID)
	}
	if e.desc.Encrypted != h.Encrypted {
		return nil, fmt.Errorf("%w: packet %d registered with encrypted=%t, header says %t", ErrConfidentialityMismatch, h.ID, e.desc.Encrypted, h.Encrypted)
	}

	p, err := e.decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode packet %d: %w", h.ID, err)
	}
	return p, nil
}

// --------------------------------------------------------------------------
// Generic Registration
// --------------------------------------------------------------------------

// packetPtr constrains PT to a pointer to the packet type T that can decode itself
type packetPtr[T any] interface {
	*T
	bytebuf.Decodable
}

// Register registers the packet type T under the descriptor of its zero value
func Register[T Packet, PT packetPtr[T]](reg *Registry) error {
	var zero T
	return reg.Register(zero.Descriptor(), func(r *bytebuf.ByteReader) (Packet, error) {
		v, err := bytebuf.ReadValue[T, PT](r)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
}

// MustRegister is like Register but panics on collisions. Collisions are programming
// errors, this is meant to be called while building registries at startup.
func MustRegister[T Packet, PT packetPtr[T]](reg *Registry) {
	if err := Register[T, PT](reg); err != nil {
		panic(err)
	}
}
