package data

import (
	"github.com/ValentinKolb/dRelay/lib/bytebuf"
)

// --------------------------------------------------------------------------
// Encoded Sizes
// --------------------------------------------------------------------------

const (
	Color3BEncodedSize              = 3
	PlayerIconDataEncodedSize       = 9 * 2
	SpecialUserDataEncodedSize      = Color3BEncodedSize
	PlayerDataEncodedSize           = 2 + 4
	AssociatedPlayerDataEncodedSize = 4 + PlayerDataEncodedSize

	// PlayerAccountDataMaxEncodedSize is the upper bound for a PlayerAccountData with a full length name
	// and special user data present
	PlayerAccountDataMaxEncodedSize = 4 + (2 + MaxNameSize) + PlayerIconDataEncodedSize + (1 + SpecialUserDataEncodedSize)

	// AudioFrameMaxEncodedSize is the upper bound for an AudioFrame
	AudioFrameMaxEncodedSize = 2 + MaxAudioFrameSize
)

// --------------------------------------------------------------------------
// Color3B
// --------------------------------------------------------------------------

// Color3B is an RGB color
type Color3B struct {
	R, G, B uint8
}

func (c Color3B) EncodedSize() int { return Color3BEncodedSize }

func (c Color3B) Encode(w bytebuf.Writer) {
	w.WriteU8(c.R)
	w.WriteU8(c.G)
	w.WriteU8(c.B)
}

func (c *Color3B) Decode(r *bytebuf.ByteReader) error {
	p, err := r.ReadRaw(Color3BEncodedSize)
	if err != nil {
		return err
	}
	c.R, c.G, c.B = p[0], p[1], p[2]
	return nil
}

// --------------------------------------------------------------------------
// PlayerIconData
// --------------------------------------------------------------------------

// PlayerIconData holds the icon ids and colors a player has selected
type PlayerIconData struct {
	Cube   int16
	Ship   int16
	Ball   int16
	Ufo    int16
	Wave   int16
	Robot  int16
	Spider int16
	Color1 int16
	Color2 int16
}

// DefaultPlayerIconData returns the icons of a player that never changed them
func DefaultPlayerIconData() PlayerIconData {
	return PlayerIconData{Cube: 1, Ship: 1, Ball: 1, Ufo: 1, Wave: 1, Robot: 1, Spider: 1, Color1: 1, Color2: 3}
}

func (p PlayerIconData) EncodedSize() int { return PlayerIconDataEncodedSize }

func (p PlayerIconData) Encode(w bytebuf.Writer) {
	w.WriteI16(p.Cube)
	w.WriteI16(p.Ship)
	w.WriteI16(p.Ball)
	w.WriteI16(p.Ufo)
	w.WriteI16(p.Wave)
	w.WriteI16(p.Robot)
	w.WriteI16(p.Spider)
	w.WriteI16(p.Color1)
	w.WriteI16(p.Color2)
}

func (p *PlayerIconData) Decode(r *bytebuf.ByteReader) error {
	for _, f := range [9]*int16{&p.Cube, &p.Ship, &p.Ball, &p.Ufo, &p.Wave, &p.Robot, &p.Spider, &p.Color1, &p.Color2} {
		v, err := r.ReadI16()
		if err != nil {
			return err
		}
		*f = v
	}
	return nil
}

// --------------------------------------------------------------------------
// SpecialUserData
// --------------------------------------------------------------------------

// SpecialUserData is cosmetic data only some accounts carry
type SpecialUserData struct {
	NameColor Color3B
}

func (s SpecialUserData) EncodedSize() int { return SpecialUserDataEncodedSize }

func (s SpecialUserData) Encode(w bytebuf.Writer) {
	s.NameColor.Encode(w)
}

func (s *SpecialUserData) Decode(r *bytebuf.ByteReader) error {
	return s.NameColor.Decode(r)
}

// --------------------------------------------------------------------------
// PlayerData
// --------------------------------------------------------------------------

// PlayerData is the per player game state that is relayed to the other players on a level
type PlayerData struct {
	Percentage uint16
	Attempts   int32
}

func (d PlayerData) EncodedSize() int { return PlayerDataEncodedSize }

func (d PlayerData) Encode(w bytebuf.Writer) {
	w.WriteU16(d.Percentage)
	w.WriteI32(d.Attempts)
}

func (d *PlayerData) Decode(r *bytebuf.ByteReader) error {
	percentage, err := r.ReadU16()
	if err != nil {
		return err
	}
	attempts, err := r.ReadI32()
	if err != nil {
		return err
	}
	d.Percentage, d.Attempts = percentage, attempts
	return nil
}

// AssociatedPlayerData is a PlayerData tagged with the account it belongs to
type AssociatedPlayerData struct {
	AccountID int32
	Data      PlayerData
}

func (a AssociatedPlayerData) EncodedSize() int { return AssociatedPlayerDataEncodedSize }

func (a AssociatedPlayerData) Encode(w bytebuf.Writer) {
	w.WriteI32(a.AccountID)
	a.Data.Encode(w)
}

func (a *AssociatedPlayerData) Decode(r *bytebuf.ByteReader) error {
	id, err := r.ReadI32()
	if err != nil {
		return err
	}
	if err := a.Data.Decode(r); err != nil {
		return err
	}
	a.AccountID = id
	return nil
}

// --------------------------------------------------------------------------
// PlayerAccountData
// --------------------------------------------------------------------------

// PlayerAccountData is the public profile of a player
type PlayerAccountData struct {
	AccountID       int32
	Name            bytebuf.FastString[NameLimit]
	Icons           PlayerIconData
	SpecialUserData *SpecialUserData
}

func (a PlayerAccountData) EncodedSize() int {
	return 4 + a.Name.EncodedSize() + PlayerIconDataEncodedSize + bytebuf.OptionalSize(a.SpecialUserData)
}

func (a PlayerAccountData) Encode(w bytebuf.Writer) {
	w.WriteI32(a.AccountID)
	a.Name.Encode(w)
	a.Icons.Encode(w)
	bytebuf.WriteOptional(w, a.SpecialUserData)
}

func (a *PlayerAccountData) Decode(r *bytebuf.ByteReader) (err error) {
	if a.AccountID, err = r.ReadI32(); err != nil {
		return err
	}
	if err = a.Name.Decode(r); err != nil {
		return err
	}
	if err = a.Icons.Decode(r); err != nil {
		return err
	}
	a.SpecialUserData, err = bytebuf.ReadOptional[SpecialUserData](r)
	return err
}

// --------------------------------------------------------------------------
// AudioFrame
// --------------------------------------------------------------------------

// AudioFrame is an opaque encoded voice frame. The relay never inspects its contents.
type AudioFrame struct {
	Data bytebuf.FastBytes[AudioFrameLimit]
}

// NewAudioFrame wraps p (truncated to MaxAudioFrameSize) without copying it
func NewAudioFrame(p []byte) AudioFrame {
	return AudioFrame{Data: bytebuf.NewFastBytes[AudioFrameLimit](p)}
}

func (f AudioFrame) EncodedSize() int { return f.Data.EncodedSize() }

func (f AudioFrame) Encode(w bytebuf.Writer) {
	f.Data.Encode(w)
}

func (f *AudioFrame) Decode(r *bytebuf.ByteReader) error {
	return f.Data.Decode(r)
}
