package packet

import (
	"testing"

	"github.com/ValentinKolb/dRelay/lib/bytebuf"
	"github.com/stretchr/testify/require"
)

type nameLimit struct{}

func (nameLimit) Max() int { return 16 }

type joinPacket struct {
	LevelID int32
}

func (joinPacket) Descriptor() Descriptor { return Descriptor{ID: 12001} }
func (p joinPacket) EncodedSize() int     { return 4 }
func (p joinPacket) Encode(w bytebuf.Writer) {
	w.WriteI32(p.LevelID)
}
func (p *joinPacket) Decode(r *bytebuf.ByteReader) (err error) {
	p.LevelID, err = r.ReadI32()
	return err
}

type leavePacket struct{}

func (leavePacket) Descriptor() Descriptor             { return Descriptor{ID: 12002} }
func (leavePacket) EncodedSize() int                   { return 0 }
func (leavePacket) Encode(bytebuf.Writer)              {}
func (*leavePacket) Decode(*bytebuf.ByteReader) error { return nil }

type chatPacket struct {
	Message bytebuf.FastString[nameLimit]
}

func (chatPacket) Descriptor() Descriptor { return Descriptor{ID: 12011, Encrypted: true} }
func (p chatPacket) EncodedSize() int     { return p.Message.EncodedSize() }
func (p chatPacket) Encode(w bytebuf.Writer) {
	p.Message.Encode(w)
}
func (p *chatPacket) Decode(r *bytebuf.ByteReader) error {
	return p.Message.Decode(r)
}

// otherJoinPacket collides with joinPacket
type otherJoinPacket struct{ joinPacket }

func (otherJoinPacket) Descriptor() Descriptor { return Descriptor{ID: 12001, Encrypted: true} }
func (p *otherJoinPacket) Decode(r *bytebuf.ByteReader) error {
	return p.joinPacket.Decode(r)
}

func testRegistry(t *testing.T) *Registry {
	reg := NewRegistry()
	require.NoError(t, Register[joinPacket](reg))
	require.NoError(t, Register[leavePacket](reg))
	require.NoError(t, Register[chatPacket](reg))
	return reg
}

// TestDispatch tests that encoded packets decode to the same concrete type and values
func TestDispatch(t *testing.T) {
	reg := testRegistry(t)

	tests := map[string]Packet{
		"Join":  joinPacket{LevelID: -42},
		"Leave": leavePacket{},
		"Chat":  chatPacket{Message: bytebuf.NewFastString[nameLimit]("hello world")},
	}

	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			region := make([]byte, 64)
			buf := bytebuf.NewFastByteBuffer(region)
			require.NoError(t, Encode(buf, p))
			require.Equal(t, EncodedSize(p), buf.Len())
			require.Equal(t, Marshal(p), buf.AsBytes())

			got, err := reg.Decode(buf.AsBytes())
			require.NoError(t, err)
			require.IsType(t, p, got)
			require.Equal(t, p, got)
		})
	}
}

// TestHeaderLayout tests the header bytes written in front of the payload
func TestHeaderLayout(t *testing.T) {
	require.Equal(t, []byte{0x2E, 0xE1, 0, 0, 0, 0, 7}, Marshal(joinPacket{LevelID: 7}))
	require.Equal(t, []byte{0x2E, 0xEB, 1, 0, 0}, Marshal(chatPacket{}))

	h, err := DecodeHeader(bytebuf.NewByteReader([]byte{0x2E, 0xE2, 0}))
	require.NoError(t, err)
	require.Equal(t, Header{ID: 12002}, h)

	_, err = DecodeHeader(bytebuf.NewByteReader([]byte{0x2E}))
	require.ErrorIs(t, err, bytebuf.ErrInsufficientData)
}

// TestEncodeCapacity tests that a packet that does not fit leaves the buffer untouched
func TestEncodeCapacity(t *testing.T) {
	p := joinPacket{LevelID: 1}
	region := []byte{9, 9, 9, 9, 9, 9}
	buf := bytebuf.NewFastByteBuffer(region)

	require.ErrorIs(t, Encode(buf, p), bytebuf.ErrCapacity)
	require.Equal(t, 0, buf.Len())
	require.Equal(t, []byte{9, 9, 9, 9, 9, 9}, region)
}

// TestDecodeErrors tests that malformed and unknown packets are reported, not panicked on
func TestDecodeErrors(t *testing.T) {
	reg := testRegistry(t)

	t.Run("UnknownID", func(t *testing.T) {
		_, err := reg.Decode([]byte{0xFF, 0xFF, 0, 1, 2, 3})
		require.ErrorIs(t, err, ErrUnknownPacket)
	})

	t.Run("ConfidentialityMismatch", func(t *testing.T) {
		data := Marshal(chatPacket{})
		data[2] = 0
		_, err := reg.Decode(data)
		require.ErrorIs(t, err, ErrConfidentialityMismatch)
	})

	t.Run("ShortPayload", func(t *testing.T) {
		data := Marshal(joinPacket{LevelID: 1})
		_, err := reg.Decode(data[:len(data)-1])
		require.ErrorIs(t, err, bytebuf.ErrInsufficientData)
	})

	t.Run("OverClaimingLength", func(t *testing.T) {
		_, err := reg.Decode([]byte{0x2E, 0xEB, 1, 0xFF, 0xFF, 'a'})
		require.ErrorIs(t, err, bytebuf.ErrMalformedLength)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := reg.Decode(nil)
		require.ErrorIs(t, err, bytebuf.ErrInsufficientData)
	})
}

// TestRegistration tests collision detection and lookups
func TestRegistration(t *testing.T) {
	reg := testRegistry(t)

	require.ErrorIs(t, Register[otherJoinPacket](reg), ErrDuplicateID)
	require.Panics(t, func() { MustRegister[otherJoinPacket](reg) })
	require.Equal(t, 3, reg.Len())
	require.Equal(t, []uint16{12001, 12002, 12011}, reg.IDs())

	desc, ok := reg.Lookup(12011)
	require.True(t, ok)
	require.True(t, desc.Encrypted)

	_, ok = reg.Lookup(1)
	require.False(t, ok)
}
