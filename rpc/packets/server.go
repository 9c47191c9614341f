package packets

import (
	"github.com/ValentinKolb/dRelay/lib/bytebuf"
	"github.com/ValentinKolb/dRelay/lib/data"
	"github.com/ValentinKolb/dRelay/lib/packet"
)

// --------------------------------------------------------------------------
// Server -> Client (20000 connection, 22000 game)
// --------------------------------------------------------------------------

const (
	PingResponseID         uint16 = 20000
	LoggedInID             uint16 = 20001
	LoginFailedID          uint16 = 20002
	ServerDisconnectID     uint16 = 20003
	PlayerProfilesID       uint16 = 22000
	LevelDataID            uint16 = 22001
	VoiceBroadcastID       uint16 = 22010
	ChatMessageBroadcastID uint16 = 22011
)

const (
	// MaxLevelDataPlayers is the maximum number of players in a single LevelDataPacket
	MaxLevelDataPlayers = 256
	// MaxProfiles is the maximum number of profiles in a single PlayerProfilesPacket
	MaxProfiles = 64
)

// PingResponsePacket answers a PingPacket
type PingResponsePacket struct {
	ID          uint32
	PlayerCount uint32
}

func (PingResponsePacket) Descriptor() packet.Descriptor { return packet.Descriptor{ID: PingResponseID} }
func (p PingResponsePacket) EncodedSize() int            { return 8 }

func (p PingResponsePacket) Encode(w bytebuf.Writer) {
	w.WriteU32(p.ID)
	w.WriteU32(p.PlayerCount)
}

func (p *PingResponsePacket) Decode(r *bytebuf.ByteReader) (err error) {
	if p.ID, err = r.ReadU32(); err != nil {
		return err
	}
	p.PlayerCount, err = r.ReadU32()
	return err
}

// LoggedInPacket confirms a LoginPacket
type LoggedInPacket struct{}

func (LoggedInPacket) Descriptor() packet.Descriptor      { return packet.Descriptor{ID: LoggedInID} }
func (LoggedInPacket) EncodedSize() int                   { return 0 }
func (LoggedInPacket) Encode(bytebuf.Writer)              {}
func (*LoggedInPacket) Decode(*bytebuf.ByteReader) error { return nil }

// LoginFailedPacket rejects a LoginPacket
type LoginFailedPacket struct {
	Message bytebuf.FastString[data.MessageLimit]
}

func (LoginFailedPacket) Descriptor() packet.Descriptor { return packet.Descriptor{ID: LoginFailedID} }
func (p LoginFailedPacket) EncodedSize() int            { return p.Message.EncodedSize() }
func (p LoginFailedPacket) Encode(w bytebuf.Writer)     { p.Message.Encode(w) }

func (p *LoginFailedPacket) Decode(r *bytebuf.ByteReader) error {
	return p.Message.Decode(r)
}

// ServerDisconnectPacket is sent right before the server closes a connection
type ServerDisconnectPacket struct {
	Message bytebuf.FastString[data.MessageLimit]
}

func (ServerDisconnectPacket) Descriptor() packet.Descriptor {
	return packet.Descriptor{ID: ServerDisconnectID}
}
func (p ServerDisconnectPacket) EncodedSize() int        { return p.Message.EncodedSize() }
func (p ServerDisconnectPacket) Encode(w bytebuf.Writer) { p.Message.Encode(w) }

func (p *ServerDisconnectPacket) Decode(r *bytebuf.ByteReader) error {
	return p.Message.Decode(r)
}

// PlayerProfilesPacket answers a RequestPlayerProfilesPacket
type PlayerProfilesPacket struct {
	Profiles []data.PlayerAccountData
}

func (PlayerProfilesPacket) Descriptor() packet.Descriptor { return packet.Descriptor{ID: PlayerProfilesID} }

func (p PlayerProfilesPacket) EncodedSize() int {
	return bytebuf.ListSize(p.Profiles, MaxProfiles)
}

func (p PlayerProfilesPacket) Encode(w bytebuf.Writer) {
	bytebuf.WriteList(w, p.Profiles, MaxProfiles)
}

func (p *PlayerProfilesPacket) Decode(r *bytebuf.ByteReader) (err error) {
	p.Profiles, err = bytebuf.ReadList[data.PlayerAccountData](r, MaxProfiles)
	return err
}

// LevelDataPacket carries the state of the other players on the level of the receiver
type LevelDataPacket struct {
	Players []data.AssociatedPlayerData
}

func (LevelDataPacket) Descriptor() packet.Descriptor { return packet.Descriptor{ID: LevelDataID} }

func (p LevelDataPacket) EncodedSize() int {
	return 2 + min(len(p.Players), MaxLevelDataPlayers)*data.AssociatedPlayerDataEncodedSize
}

func (p LevelDataPacket) Encode(w bytebuf.Writer) {
	bytebuf.WriteList(w, p.Players, MaxLevelDataPlayers)
}

func (p *LevelDataPacket) Decode(r *bytebuf.ByteReader) (err error) {
	p.Players, err = bytebuf.ReadList[data.AssociatedPlayerData](r, MaxLevelDataPlayers)
	return err
}

// VoiceBroadcastPacket relays a VoicePacket of Sender
type VoiceBroadcastPacket struct {
	Sender int32
	Data   data.AudioFrame
}

func (VoiceBroadcastPacket) Descriptor() packet.Descriptor {
	return packet.Descriptor{ID: VoiceBroadcastID, Encrypted: true}
}
func (p VoiceBroadcastPacket) EncodedSize() int { return 4 + p.Data.EncodedSize() }

func (p VoiceBroadcastPacket) Encode(w bytebuf.Writer) {
	w.WriteI32(p.Sender)
	p.Data.Encode(w)
}

func (p *VoiceBroadcastPacket) Decode(r *bytebuf.ByteReader) (err error) {
	if p.Sender, err = r.ReadI32(); err != nil {
		return err
	}
	return p.Data.Decode(r)
}

// ChatMessageBroadcastPacket relays a ChatMessagePacket of Sender
type ChatMessageBroadcastPacket struct {
	Sender  int32
	Message bytebuf.FastString[data.MessageLimit]
}

func (ChatMessageBroadcastPacket) Descriptor() packet.Descriptor {
	return packet.Descriptor{ID: ChatMessageBroadcastID, Encrypted: true}
}
func (p ChatMessageBroadcastPacket) EncodedSize() int { return 4 + p.Message.EncodedSize() }

func (p ChatMessageBroadcastPacket) Encode(w bytebuf.Writer) {
	w.WriteI32(p.Sender)
	p.Message.Encode(w)
}

func (p *ChatMessageBroadcastPacket) Decode(r *bytebuf.ByteReader) (err error) {
	if p.Sender, err = r.ReadI32(); err != nil {
		return err
	}
	return p.Message.Decode(r)
}
