// Package packet implements the envelope layer of the relay protocol.
//
// Every payload type is bound to a Descriptor (a protocol wide unique id and an advisory
// confidentiality flag). On the wire a packet is its header followed by the payload:
//
//	[id u16][encrypted u8][payload ...]
//
// The receiver reads the header first and uses a Registry to select the decoder for the id.
// Unknown ids, flag mismatches and malformed payloads are reported as errors and never panic,
// the offending packet is dropped and the connection continues. Id collisions on the other hand
// are programming errors and are detected once, when the registry is built (see MustRegister).
//
// The envelope layer does not encrypt. The Encrypted flag of a descriptor is metadata for the transport.
//
// Usage:
//
//	reg := packet.NewRegistry()
//	packet.MustRegister[packets.LevelJoinPacket](reg)
//
//	var region [64]byte
//	buf := bytebuf.NewFastByteBuffer(region[:])
//	_ = packet.Encode(buf, packets.LevelJoinPacket{LevelID: 7})
//
//	p, err := reg.Decode(buf.AsBytes())
//	switch p := p.(type) {
//	case packets.LevelJoinPacket:
//	  ...
//	}
package packet
