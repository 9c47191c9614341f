package packets

import (
	"github.com/ValentinKolb/dRelay/lib/bytebuf"
	"github.com/ValentinKolb/dRelay/lib/data"
	"github.com/ValentinKolb/dRelay/lib/packet"
)

// --------------------------------------------------------------------------
// Client -> Server (10000 connection, 12000 game)
// --------------------------------------------------------------------------

const (
	PingID                  uint16 = 10000
	LoginID                 uint16 = 10001
	RequestPlayerProfilesID uint16 = 12000
	LevelJoinID             uint16 = 12001
	LevelLeaveID            uint16 = 12002
	PlayerDataID            uint16 = 12003
	VoiceID                 uint16 = 12010
	ChatMessageID           uint16 = 12011
)

// PingPacket asks the server for a PingResponsePacket echoing ID
type PingPacket struct {
	ID uint32
}

func (PingPacket) Descriptor() packet.Descriptor { return packet.Descriptor{ID: PingID} }
func (p PingPacket) EncodedSize() int            { return 4 }
func (p PingPacket) Encode(w bytebuf.Writer)     { w.WriteU32(p.ID) }

func (p *PingPacket) Decode(r *bytebuf.ByteReader) (err error) {
	p.ID, err = r.ReadU32()
	return err
}

// LoginPacket claims an account id. Every other game packet is ignored before a successful login.
type LoginPacket struct {
	AccountID int32
	Name      bytebuf.FastString[data.NameLimit]
	Icons     data.PlayerIconData
}

func (LoginPacket) Descriptor() packet.Descriptor { return packet.Descriptor{ID: LoginID} }

func (p LoginPacket) EncodedSize() int {
	return 4 + p.Name.EncodedSize() + data.PlayerIconDataEncodedSize
}

func (p LoginPacket) Encode(w bytebuf.Writer) {
	w.WriteI32(p.AccountID)
	p.Name.Encode(w)
	p.Icons.Encode(w)
}

func (p *LoginPacket) Decode(r *bytebuf.ByteReader) (err error) {
	if p.AccountID, err = r.ReadI32(); err != nil {
		return err
	}
	if err = p.Name.Decode(r); err != nil {
		return err
	}
	return p.Icons.Decode(r)
}

// RequestPlayerProfilesPacket requests the profile of a single player, or of everyone on
// the level of the sender if Requested is 0
type RequestPlayerProfilesPacket struct {
	Requested int32
}

func (RequestPlayerProfilesPacket) Descriptor() packet.Descriptor {
	return packet.Descriptor{ID: RequestPlayerProfilesID}
}
func (p RequestPlayerProfilesPacket) EncodedSize() int        { return 4 }
func (p RequestPlayerProfilesPacket) Encode(w bytebuf.Writer) { w.WriteI32(p.Requested) }

func (p *RequestPlayerProfilesPacket) Decode(r *bytebuf.ByteReader) (err error) {
	p.Requested, err = r.ReadI32()
	return err
}

// LevelJoinPacket moves the sender to a level
type LevelJoinPacket struct {
	LevelID int32
}

func (LevelJoinPacket) Descriptor() packet.Descriptor { return packet.Descriptor{ID: LevelJoinID} }
func (p LevelJoinPacket) EncodedSize() int            { return 4 }
func (p LevelJoinPacket) Encode(w bytebuf.Writer)     { w.WriteI32(p.LevelID) }

func (p *LevelJoinPacket) Decode(r *bytebuf.ByteReader) (err error) {
	p.LevelID, err = r.ReadI32()
	return err
}

// LevelLeavePacket removes the sender from its level. It has no payload.
type LevelLeavePacket struct{}

func (LevelLeavePacket) Descriptor() packet.Descriptor      { return packet.Descriptor{ID: LevelLeaveID} }
func (LevelLeavePacket) EncodedSize() int                   { return 0 }
func (LevelLeavePacket) Encode(bytebuf.Writer)              {}
func (*LevelLeavePacket) Decode(*bytebuf.ByteReader) error { return nil }

// PlayerDataPacket carries the game state of the sender, the server answers with a LevelDataPacket
type PlayerDataPacket struct {
	Data data.PlayerData
}

func (PlayerDataPacket) Descriptor() packet.Descriptor { return packet.Descriptor{ID: PlayerDataID} }
func (p PlayerDataPacket) EncodedSize() int            { return data.PlayerDataEncodedSize }
func (p PlayerDataPacket) Encode(w bytebuf.Writer)     { p.Data.Encode(w) }

func (p *PlayerDataPacket) Decode(r *bytebuf.ByteReader) error {
	return p.Data.Decode(r)
}

// VoicePacket carries an encoded audio frame that is relayed to the level
type VoicePacket struct {
	Data data.AudioFrame
}

func (VoicePacket) Descriptor() packet.Descriptor { return packet.Descriptor{ID: VoiceID, Encrypted: true} }
func (p VoicePacket) EncodedSize() int            { return p.Data.EncodedSize() }
func (p VoicePacket) Encode(w bytebuf.Writer)     { p.Data.Encode(w) }

func (p *VoicePacket) Decode(r *bytebuf.ByteReader) error {
	return p.Data.Decode(r)
}

// ChatMessagePacket carries a chat message that is relayed to the level
type ChatMessagePacket struct {
	Message bytebuf.FastString[data.MessageLimit]
}

func (ChatMessagePacket) Descriptor() packet.Descriptor {
	return packet.Descriptor{ID: ChatMessageID, Encrypted: true}
}
func (p ChatMessagePacket) EncodedSize() int        { return p.Message.EncodedSize() }
func (p ChatMessagePacket) Encode(w bytebuf.Writer) { p.Message.Encode(w) }

func (p *ChatMessagePacket) Decode(r *bytebuf.ByteReader) error {
	return p.Message.Decode(r)
}
