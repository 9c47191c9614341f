// Package data contains the game value types that travel inside relay packets.
//
// Every type implements bytebuf.Encodable on the value receiver and bytebuf.Decodable on the
// pointer receiver. Fixed size types export their encoded size as a constant (e.g. PlayerDataEncodedSize),
// variable size types export an upper bound (e.g. PlayerAccountDataMaxEncodedSize) so callers can size
// stack regions for the FastByteBuffer.
//
// Bounded fields use the limit types of this package:
//
//	NameLimit        MaxNameSize       (32 bytes)
//	MessageLimit     MaxMessageSize    (300 bytes)
//	AudioFrameLimit  MaxAudioFrameSize (4096 bytes)
package data
