package packets

import (
	"github.com/ValentinKolb/dRelay/lib/data"
	"github.com/ValentinKolb/dRelay/lib/packet"
)

// MaxPacketSize is the size of the largest packet of the protocol (header included).
// Buffers of this size can encode any packet.
const MaxPacketSize = packet.HeaderSize + max(
	2+MaxProfiles*data.PlayerAccountDataMaxEncodedSize,
	2+MaxLevelDataPlayers*data.AssociatedPlayerDataEncodedSize,
	4+data.AudioFrameMaxEncodedSize,
	4+2+data.MaxMessageSize,
)

// NewServerboundRegistry returns a registry of all packets a client sends to the server
func NewServerboundRegistry() *packet.Registry {
	reg := packet.NewRegistry()
	packet.MustRegister[PingPacket](reg)
	packet.MustRegister[LoginPacket](reg)
	packet.MustRegister[RequestPlayerProfilesPacket](reg)
	packet.MustRegister[LevelJoinPacket](reg)
	packet.MustRegister[LevelLeavePacket](reg)
	packet.MustRegister[PlayerDataPacket](reg)
	packet.MustRegister[VoicePacket](reg)
	packet.MustRegister[ChatMessagePacket](reg)
	return reg
}

// NewClientboundRegistry returns a registry of all packets the server sends to a client
func NewClientboundRegistry() *packet.Registry {
	reg := packet.NewRegistry()
	packet.MustRegister[PingResponsePacket](reg)
	packet.MustRegister[LoggedInPacket](reg)
	packet.MustRegister[LoginFailedPacket](reg)
	packet.MustRegister[ServerDisconnectPacket](reg)
	packet.MustRegister[PlayerProfilesPacket](reg)
	packet.MustRegister[LevelDataPacket](reg)
	packet.MustRegister[VoiceBroadcastPacket](reg)
	packet.MustRegister[ChatMessageBroadcastPacket](reg)
	return reg
}
