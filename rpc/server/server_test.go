package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/dRelay/lib/bytebuf"
	"github.com/ValentinKolb/dRelay/lib/data"
	"github.com/ValentinKolb/dRelay/lib/packet"
	"github.com/ValentinKolb/dRelay/rpc/common"
	"github.com/ValentinKolb/dRelay/rpc/packets"
	"github.com/stretchr/testify/require"
)

// fakePeer records all frames sent to it
type fakePeer struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
	full   bool
}

func (p *fakePeer) Send(frame []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.full {
		return false
	}
	p.frames = append(p.frames, frame)
	return true
}

func (p *fakePeer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePeer) RemoteAddr() string { return "fake" }

// take decodes and clears all received frames
func (p *fakePeer) take(t *testing.T) []packet.Packet {
	t.Helper()
	p.mu.Lock()
	frames := p.frames
	p.frames = nil
	p.mu.Unlock()

	reg := packets.NewClientboundRegistry()
	out := make([]packet.Packet, 0, len(frames))
	for _, f := range frames {
		pkt, err := reg.Decode(f)
		require.NoError(t, err)
		out = append(out, pkt)
	}
	return out
}

func (p *fakePeer) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

type client struct {
	*session
	peer *fakePeer
}

func (c client) send(p packet.Packet) {
	c.HandleFrame(packet.Marshal(p))
}

func newTestServer() *RelayServer {
	return NewRelayServer(common.ServerConfig{TransportName: "tcp", LogLevel: "info"}, nil)
}

func connect(s *RelayServer) client {
	peer := &fakePeer{}
	return client{session: s.newSession(peer).(*session), peer: peer}
}

// login connects a new client and logs it in, the LoggedInPacket is consumed
func login(t *testing.T, s *RelayServer, id int32, name string) client {
	t.Helper()
	c := connect(s)
	c.send(packets.LoginPacket{AccountID: id, Name: bytebuf.NewFastString[data.NameLimit](name), Icons: data.DefaultPlayerIconData()})
	require.Equal(t, []packet.Packet{packets.LoggedInPacket{}}, c.peer.take(t))
	return c
}

// TestPing tests that pings are answered before and after login
func TestPing(t *testing.T) {
	s := newTestServer()
	c := connect(s)

	c.send(packets.PingPacket{ID: 7})
	require.Equal(t, []packet.Packet{packets.PingResponsePacket{ID: 7, PlayerCount: 0}}, c.peer.take(t))

	login(t, s, 1, "a")
	login(t, s, 2, "b")
	c.send(packets.PingPacket{ID: 8})
	require.Equal(t, []packet.Packet{packets.PingResponsePacket{ID: 8, PlayerCount: 2}}, c.peer.take(t))
}

// TestLogin tests successful and rejected logins
func TestLogin(t *testing.T) {
	s := newTestServer()

	t.Run("Success", func(t *testing.T) {
		login(t, s, 42, "player")
		require.Equal(t, 1, s.PlayerCount())
		_, ok := s.players.GetPlayerData(42)
		require.True(t, ok, "login must create the player record")
	})

	t.Run("InvalidAccount", func(t *testing.T) {
		for _, id := range []int32{0, -5} {
			c := connect(s)
			c.send(packets.LoginPacket{AccountID: id})
			got := c.peer.take(t)
			require.Len(t, got, 1)
			require.IsType(t, packets.LoginFailedPacket{}, got[0])
		}
		require.Equal(t, 1, s.PlayerCount())
	})

	t.Run("AlreadyLoggedIn", func(t *testing.T) {
		c := login(t, s, 43, "twice")
		c.send(packets.LoginPacket{AccountID: 44})
		got := c.peer.take(t)
		require.Len(t, got, 1)
		require.Equal(t, "already logged in", got[0].(packets.LoginFailedPacket).Message.String())
		_, ok := s.sessions.Load(44)
		require.False(t, ok)
	})
}

// TestDropBeforeLogin tests that game packets of connections that are not logged in are ignored
func TestDropBeforeLogin(t *testing.T) {
	s := newTestServer()
	c := connect(s)

	c.send(packets.LevelJoinPacket{LevelID: 1})
	c.send(packets.PlayerDataPacket{Data: data.PlayerData{Percentage: 10}})
	c.send(packets.ChatMessagePacket{Message: bytebuf.NewFastString[data.MessageLimit]("hi")})

	require.Empty(t, c.peer.take(t))
	require.Equal(t, 0, s.players.LevelCount())
	require.Equal(t, uint64(3), s.metrics.Dropped(dropUnauthenticated))
}

// TestDropInvalidPackets tests that undecodable packets are counted and the connection continues
func TestDropInvalidPackets(t *testing.T) {
	s := newTestServer()
	c := login(t, s, 1, "a")

	// unknown id
	c.HandleFrame([]byte{0xFF, 0xFF, 0})
	// chat packets must be flagged as encrypted
	c.HandleFrame([]byte{byte(packets.ChatMessageID >> 8), byte(packets.ChatMessageID & 0xFF), 0, 0, 0})
	// truncated payload and truncated header
	c.HandleFrame([]byte{byte(packets.LevelJoinID >> 8), byte(packets.LevelJoinID & 0xFF), 0, 1})
	c.HandleFrame([]byte{1})

	require.Equal(t, uint64(1), s.metrics.Dropped(dropUnknown))
	require.Equal(t, uint64(1), s.metrics.Dropped(dropMismatch))
	require.Equal(t, uint64(2), s.metrics.Dropped(dropMalformed))

	c.send(packets.PingPacket{ID: 1})
	require.Len(t, c.peer.take(t), 1, "connection must still be served")
}

// TestPlayerDataReply tests that a PlayerDataPacket is answered with the other players of the level
func TestPlayerDataReply(t *testing.T) {
	s := newTestServer()
	a := login(t, s, 1, "a")
	b := login(t, s, 2, "b")
	other := login(t, s, 3, "c")

	a.send(packets.LevelJoinPacket{LevelID: 10})
	b.send(packets.LevelJoinPacket{LevelID: 10})
	other.send(packets.LevelJoinPacket{LevelID: 20})

	b.send(packets.PlayerDataPacket{Data: data.PlayerData{Percentage: 50, Attempts: 3}})
	require.Equal(t, []packet.Packet{packets.LevelDataPacket{
		Players: []data.AssociatedPlayerData{{AccountID: 1}},
	}}, b.peer.take(t))

	a.send(packets.PlayerDataPacket{Data: data.PlayerData{Percentage: 5}})
	require.Equal(t, []packet.Packet{packets.LevelDataPacket{
		Players: []data.AssociatedPlayerData{{AccountID: 2, Data: data.PlayerData{Percentage: 50, Attempts: 3}}},
	}}, a.peer.take(t))

	// no level, no answer
	lonely := login(t, s, 4, "d")
	lonely.send(packets.PlayerDataPacket{Data: data.PlayerData{Percentage: 1}})
	require.Empty(t, lonely.peer.take(t))
	d, ok := s.players.GetPlayerData(4)
	require.True(t, ok)
	require.Equal(t, uint16(1), d.Percentage)
}

// TestBroadcast tests that voice and chat packets reach all other players on the level only
func TestBroadcast(t *testing.T) {
	s := newTestServer()
	a := login(t, s, 1, "a")
	b := login(t, s, 2, "b")
	c := login(t, s, 3, "c")
	other := login(t, s, 4, "d")

	for _, cl := range []client{a, b, c} {
		cl.send(packets.LevelJoinPacket{LevelID: 7})
	}
	other.send(packets.LevelJoinPacket{LevelID: 8})

	a.send(packets.ChatMessagePacket{Message: bytebuf.NewFastString[data.MessageLimit]("hello")})
	a.send(packets.VoicePacket{Data: data.NewAudioFrame([]byte{1, 2, 3})})

	for _, cl := range []client{b, c} {
		got := cl.peer.take(t)
		require.Len(t, got, 2)
		chat := got[0].(packets.ChatMessageBroadcastPacket)
		require.Equal(t, int32(1), chat.Sender)
		require.Equal(t, "hello", chat.Message.String())
		voice := got[1].(packets.VoiceBroadcastPacket)
		require.Equal(t, int32(1), voice.Sender)
		require.Equal(t, []byte{1, 2, 3}, voice.Data.Data.Bytes())
	}
	require.Empty(t, a.peer.take(t), "sender must not receive its own broadcast")
	require.Empty(t, other.peer.take(t), "players on other levels must not receive the broadcast")

	// after leaving, nothing is relayed to or from the player
	c.send(packets.LevelLeavePacket{})
	a.send(packets.ChatMessagePacket{Message: bytebuf.NewFastString[data.MessageLimit]("bye")})
	c.send(packets.ChatMessagePacket{Message: bytebuf.NewFastString[data.MessageLimit]("ignored")})
	require.Len(t, b.peer.take(t), 1)
	require.Empty(t, c.peer.take(t))
}

// TestProfiles tests the two modes of RequestPlayerProfilesPacket
func TestProfiles(t *testing.T) {
	s := newTestServer()
	a := login(t, s, 1, "alice")
	b := login(t, s, 2, "bob")
	a.send(packets.LevelJoinPacket{LevelID: 3})
	b.send(packets.LevelJoinPacket{LevelID: 3})

	names := func(p packet.Packet) []string {
		var out []string
		for _, profile := range p.(packets.PlayerProfilesPacket).Profiles {
			out = append(out, profile.Name.String())
		}
		return out
	}

	a.send(packets.RequestPlayerProfilesPacket{Requested: 0})
	got := a.peer.take(t)
	require.Len(t, got, 1)
	require.ElementsMatch(t, []string{"alice", "bob"}, names(got[0]))

	a.send(packets.RequestPlayerProfilesPacket{Requested: 2})
	got = a.peer.take(t)
	require.Equal(t, []string{"bob"}, names(got[0]))
	require.Equal(t, data.DefaultPlayerIconData(), got[0].(packets.PlayerProfilesPacket).Profiles[0].Icons)

	a.send(packets.RequestPlayerProfilesPacket{Requested: 99})
	got = a.peer.take(t)
	require.Empty(t, names(got[0]))
}

// TestDuplicateLogin tests that a second login for an account replaces the first session
func TestDuplicateLogin(t *testing.T) {
	s := newTestServer()
	first := login(t, s, 5, "first")
	first.send(packets.LevelJoinPacket{LevelID: 1})

	second := login(t, s, 5, "second")
	got := first.peer.take(t)
	require.Len(t, got, 1)
	require.IsType(t, packets.ServerDisconnectPacket{}, got[0])
	require.True(t, first.peer.isClosed())

	// the new session starts without level membership
	require.Empty(t, s.players.LevelsOf(5))
	require.Equal(t, 0, s.players.GetPlayerCountOnLevel(1))

	// the old session is no longer allowed to act for the account
	first.send(packets.LevelJoinPacket{LevelID: 2})
	require.Equal(t, 0, s.players.GetPlayerCountOnLevel(2))

	// closing the old session must not log out the new one
	first.Close()
	current, ok := s.sessions.Load(5)
	require.True(t, ok)
	require.Same(t, second.session, current)
	_, ok = s.players.GetPlayerData(5)
	require.True(t, ok)
}

// TestDuplicateLoginDuringFrame tests that a level join of the old session that races a new login is cleared
func TestDuplicateLoginDuringFrame(t *testing.T) {
	s := newTestServer()
	other := login(t, s, 9, "other")
	other.send(packets.LevelJoinPacket{LevelID: 4})

	first := login(t, s, 5, "first")
	first.send(packets.LevelJoinPacket{LevelID: 1})

	// the old session is in the middle of a frame
	first.handling.Lock()

	second := connect(s)
	loggedIn := make(chan struct{})
	go func() {
		defer close(loggedIn)
		second.send(packets.LoginPacket{AccountID: 5, Name: bytebuf.NewFastString[data.NameLimit]("second")})
	}()

	// the frame joins a level after the account was swapped
	require.Eventually(t, first.peer.isClosed, time.Second, time.Millisecond)
	s.players.MoveToLevel(5, 4)

	select {
	case <-loggedIn:
		t.Fatal("login completed while the old session was handling a frame")
	case <-time.After(50 * time.Millisecond):
	}

	first.handling.Unlock()
	<-loggedIn
	require.Equal(t, []packet.Packet{packets.LoggedInPacket{}}, second.peer.take(t))

	require.Empty(t, s.players.LevelsOf(5))
	require.Equal(t, 1, s.players.GetPlayerCountOnLevel(4))

	// the new session receives no broadcasts of the old level
	other.send(packets.ChatMessagePacket{Message: bytebuf.NewFastString[data.MessageLimit]("hi")})
	require.Empty(t, second.peer.take(t))
}

// TestDisconnectCascade tests that closing a session removes the player from all levels
func TestDisconnectCascade(t *testing.T) {
	s := newTestServer()
	a := login(t, s, 1, "a")
	b := login(t, s, 2, "b")
	a.send(packets.LevelJoinPacket{LevelID: 1})
	b.send(packets.LevelJoinPacket{LevelID: 1})

	a.Close()
	require.Equal(t, 1, s.PlayerCount())
	require.Equal(t, 1, s.players.GetPlayerCountOnLevel(1))
	_, ok := s.players.GetPlayerData(1)
	require.False(t, ok)

	b.Close()
	require.Equal(t, 0, s.PlayerCount())
	require.Equal(t, 0, s.players.PlayerCount())
	require.Equal(t, 0, s.players.LevelCount())

	// closing a session that never logged in is a no-op
	connect(s).Close()
}

// TestBacklogDrop tests that frames for a full outbox are counted as dropped
func TestBacklogDrop(t *testing.T) {
	s := newTestServer()
	a := login(t, s, 1, "a")
	b := login(t, s, 2, "b")
	a.send(packets.LevelJoinPacket{LevelID: 1})
	b.send(packets.LevelJoinPacket{LevelID: 1})

	b.peer.mu.Lock()
	b.peer.full = true
	b.peer.mu.Unlock()

	a.send(packets.ChatMessagePacket{Message: bytebuf.NewFastString[data.MessageLimit]("lost")})
	require.Equal(t, uint64(1), s.metrics.Dropped(dropBacklog))
}

// TestMetricsEndpoint tests the prometheus output of the metrics route
func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer()
	c := login(t, s, 1, "a")
	c.send(packets.LevelJoinPacket{LevelID: 1})
	c.HandleFrame([]byte{0xFF, 0xFF, 0})

	srv := httptest.NewServer(s.metrics.handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + MetricsPath)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := string(body)
	require.Contains(t, out, "drelay_packets_received_total 3")
	require.Contains(t, out, `drelay_packets_dropped_total{reason="unknown"} 1`)
	require.Contains(t, out, "drelay_players_online 1")
	require.Contains(t, out, "drelay_levels_active 1")
}
