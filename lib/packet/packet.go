package packet

import (
	"github.com/ValentinKolb/dRelay/lib/bytebuf"
)

// --------------------------------------------------------------------------
// Descriptor / Header
// --------------------------------------------------------------------------

// HeaderSize is the encoded size of a packet header: [id u16][encrypted u8]
const HeaderSize = 3

// Descriptor identifies a payload type on the wire.
// IDs are unique across the whole protocol and must never be reused for a different payload.
// Encrypted is advisory: it tells the transport whether the payload is confidential.
type Descriptor struct {
	ID        uint16
	Encrypted bool
}

// Header is the descriptor as it was read from the wire. It precedes every payload.
type Header struct {
	ID        uint16
	Encrypted bool
}

// Header returns the wire header for this descriptor
func (d Descriptor) Header() Header {
	return Header{ID: d.ID, Encrypted: d.Encrypted}
}

func (h Header) EncodedSize() int { return HeaderSize }

func (h Header) Encode(w bytebuf.Writer) {
	w.WriteU16(h.ID)
	w.WriteBool(h.Encrypted)
}

func (h *Header) Decode(r *bytebuf.ByteReader) error {
	id, err := r.ReadU16()
	if err != nil {
		return err
	}
	encrypted, err := r.ReadBool()
	if err != nil {
		return err
	}
	h.ID, h.Encrypted = id, encrypted
	return nil
}

// --------------------------------------------------------------------------
// Packet
// --------------------------------------------------------------------------

// Packet is a payload type bound to a descriptor. The descriptor must not depend on
// the value, registries read it from the zero value.
type Packet interface {
	bytebuf.Encodable
	Descriptor() Descriptor
}

// EncodedSize returns the size of p on the wire including its header
func EncodedSize(p Packet) int {
	return HeaderSize + p.EncodedSize()
}

// framed writes the header in front of the payload so both are checked against
// the capacity of the buffer in a single WriteValue call
type framed struct {
	p Packet
}

func (f framed) EncodedSize() int { return EncodedSize(f.p) }

func (f framed) Encode(w bytebuf.Writer) {
	f.p.Descriptor().Header().Encode(w)
	f.p.Encode(w)
}

// Encode writes [header][payload] into buf. If the packet does not fit, nothing is written
// and an error wrapping bytebuf.ErrCapacity is returned.
func Encode(buf *bytebuf.FastByteBuffer, p Packet) error {
	return buf.WriteValue(framed{p: p})
}

// Marshal encodes p with its header into a newly allocated slice. Use Encode on hot paths.
func Marshal(p Packet) []byte {
	return bytebuf.Marshal(framed{p: p})
}

// DecodeHeader reads the header at the current position of r
func DecodeHeader(r *bytebuf.ByteReader) (Header, error) {
	return bytebuf.ReadValue[Header](r)
}
