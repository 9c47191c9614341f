package packets

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ValentinKolb/dRelay/lib/bytebuf"
	"github.com/ValentinKolb/dRelay/lib/data"
	"github.com/ValentinKolb/dRelay/lib/packet"
	"github.com/stretchr/testify/require"
)

func profile(id int32) data.PlayerAccountData {
	return data.PlayerAccountData{
		AccountID: id,
		Name:      bytebuf.NewFastString[data.NameLimit](strings.Repeat("n", data.MaxNameSize)),
		Icons:     data.DefaultPlayerIconData(),
		SpecialUserData: &data.SpecialUserData{
			NameColor: data.Color3B{R: 255},
		},
	}
}

// TestServerboundRoundTrip tests all client to server packets through the registry
func TestServerboundRoundTrip(t *testing.T) {
	reg := NewServerboundRegistry()
	tests := []packet.Packet{
		PingPacket{ID: 99},
		LoginPacket{AccountID: 12, Name: bytebuf.NewFastString[data.NameLimit]("player"), Icons: data.DefaultPlayerIconData()},
		RequestPlayerProfilesPacket{Requested: 0},
		LevelJoinPacket{LevelID: 1234},
		LevelLeavePacket{},
		PlayerDataPacket{Data: data.PlayerData{Percentage: 55, Attempts: 10}},
		VoicePacket{Data: data.NewAudioFrame([]byte{1, 2, 3})},
		ChatMessagePacket{Message: bytebuf.NewFastString[data.MessageLimit]("gg")},
	}
	require.Equal(t, len(tests), reg.Len())

	for _, p := range tests {
		got, err := reg.Decode(packet.Marshal(p))
		require.NoError(t, err, "packet %d", p.Descriptor().ID)
		require.Equal(t, p, got)
	}
}

// TestClientboundRoundTrip tests all server to client packets through the registry
func TestClientboundRoundTrip(t *testing.T) {
	reg := NewClientboundRegistry()
	tests := []packet.Packet{
		PingResponsePacket{ID: 1, PlayerCount: 300},
		LoggedInPacket{},
		LoginFailedPacket{Message: bytebuf.NewFastString[data.MessageLimit]("invalid account id")},
		ServerDisconnectPacket{Message: bytebuf.NewFastString[data.MessageLimit]("bye")},
		PlayerProfilesPacket{Profiles: []data.PlayerAccountData{profile(1), profile(2)}},
		LevelDataPacket{Players: []data.AssociatedPlayerData{{AccountID: 1}, {AccountID: 2, Data: data.PlayerData{Percentage: 3}}}},
		VoiceBroadcastPacket{Sender: 5, Data: data.NewAudioFrame(bytes.Repeat([]byte{7}, 100))},
		ChatMessageBroadcastPacket{Sender: 5, Message: bytebuf.NewFastString[data.MessageLimit]("hi")},
	}
	require.Equal(t, len(tests), reg.Len())

	for _, p := range tests {
		got, err := reg.Decode(packet.Marshal(p))
		require.NoError(t, err, "packet %d", p.Descriptor().ID)
		require.Equal(t, p, got)
	}
}

// TestIDRanges tests the direction convention and the confidentiality flags
func TestIDRanges(t *testing.T) {
	encrypted := map[uint16]bool{VoiceID: true, ChatMessageID: true, VoiceBroadcastID: true, ChatMessageBroadcastID: true}

	for _, id := range NewServerboundRegistry().IDs() {
		require.True(t, id >= 10000 && id < 20000, "serverbound id %d out of range", id)
		desc, _ := NewServerboundRegistry().Lookup(id)
		require.Equal(t, encrypted[id], desc.Encrypted, "id %d", id)
	}
	for _, id := range NewClientboundRegistry().IDs() {
		require.True(t, id >= 20000 && id < 30000, "clientbound id %d out of range", id)
		desc, _ := NewClientboundRegistry().Lookup(id)
		require.Equal(t, encrypted[id], desc.Encrypted, "id %d", id)
	}
}

// TestMaxPacketSize tests that the largest packets fit into a MaxPacketSize region
func TestMaxPacketSize(t *testing.T) {
	profiles := make([]data.PlayerAccountData, MaxProfiles)
	for i := range profiles {
		profiles[i] = profile(int32(i))
	}

	largest := []packet.Packet{
		PlayerProfilesPacket{Profiles: profiles},
		LevelDataPacket{Players: make([]data.AssociatedPlayerData, MaxLevelDataPlayers)},
		VoiceBroadcastPacket{Data: data.NewAudioFrame(make([]byte, data.MaxAudioFrameSize))},
		ChatMessageBroadcastPacket{Message: bytebuf.NewFastString[data.MessageLimit](strings.Repeat("m", 1000))},
	}

	for _, p := range largest {
		buf := bytebuf.NewFastByteBuffer(make([]byte, MaxPacketSize))
		require.NoError(t, packet.Encode(buf, p), "packet %d", p.Descriptor().ID)
	}
}

// TestLevelDataTruncated tests that level data lists are cut at MaxLevelDataPlayers
func TestLevelDataTruncated(t *testing.T) {
	p := LevelDataPacket{Players: make([]data.AssociatedPlayerData, MaxLevelDataPlayers+10)}
	encoded := packet.Marshal(p)
	require.Len(t, encoded, packet.EncodedSize(p))

	got, err := NewClientboundRegistry().Decode(encoded)
	require.NoError(t, err)
	require.Len(t, got.(LevelDataPacket).Players, MaxLevelDataPlayers)
}
