package server

import (
	"sync"

	"github.com/ValentinKolb/dRelay/lib/bytebuf"
	"github.com/ValentinKolb/dRelay/lib/data"
	"github.com/ValentinKolb/dRelay/lib/packet"
	"github.com/ValentinKolb/dRelay/lib/players"
	"github.com/ValentinKolb/dRelay/rpc/packets"
	"github.com/ValentinKolb/dRelay/rpc/transport"
)

// session is the state of a single connection.
//
// Thread-safety: HandleFrame and Close are called by the reader goroutine of the connection only,
// the fields below are not shared. Other sessions only use peer and (after login) account.
type session struct {
	server *RelayServer
	peer   transport.Peer

	// held while a frame is handled, a newer login of the account waits on it
	handling sync.Mutex

	accountID int32 // 0 before login
	account   data.PlayerAccountData
	level     int32
	inLevel   bool

	// reused for every packet of the connection
	members   []int32
	levelData []data.AssociatedPlayerData
}

// newSession implements transport.SessionFactory
func (s *RelayServer) newSession(peer transport.Peer) transport.Session {
	return &session{server: s, peer: peer}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.Session)
// --------------------------------------------------------------------------

func (c *session) HandleFrame(frame []byte) {
	c.handling.Lock()
	defer c.handling.Unlock()

	srv := c.server
	srv.metrics.received.Inc()

	p, err := srv.registry.Decode(frame)
	if err != nil {
		Logger.Debugf("Dropping packet from %s: %v", c.peer.RemoteAddr(), err)
		srv.metrics.dropDecodeError(err)
		return
	}

	// Ping and Login are the only packets accepted before login
	switch p := p.(type) {
	case packets.PingPacket:
		c.handlePing(p)
		return
	case packets.LoginPacket:
		c.handleLogin(p)
		return
	}

	if !c.loggedIn() {
		Logger.Debugf("Dropping packet %d from %s: not logged in", p.Descriptor().ID, c.peer.RemoteAddr())
		srv.metrics.drop(dropUnauthenticated)
		return
	}

	switch p := p.(type) {
	case packets.RequestPlayerProfilesPacket:
		c.handleRequestProfiles(p)
	case packets.LevelJoinPacket:
		c.handleLevelJoin(p)
	case packets.LevelLeavePacket:
		c.handleLevelLeave()
	case packets.PlayerDataPacket:
		c.handlePlayerData(p)
	case packets.VoicePacket:
		c.handleVoice(p)
	case packets.ChatMessagePacket:
		c.handleChat(p)
	}
}

// Close logs the player out. The player is only removed if this session still owns the account,
// a session that was replaced by a newer login must not remove the new one.
func (c *session) Close() {
	if c.accountID == 0 {
		return
	}

	id := c.accountID
	srv := c.server
	srv.sessions.Compute(id, func(current *session, loaded bool) (*session, bool) {
		if loaded && current == c {
			srv.players.RemovePlayer(id)
			return nil, true
		}
		return current, !loaded
	})
	Logger.Infof("Player %d disconnected (%s)", id, c.peer.RemoteAddr())
}

// --------------------------------------------------------------------------
// Connection Packets
// --------------------------------------------------------------------------

func (c *session) handlePing(p packets.PingPacket) {
	c.server.reply(c.peer, packets.PingResponsePacket{
		ID:          p.ID,
		PlayerCount: uint32(c.server.PlayerCount()),
	})
}

func (c *session) handleLogin(p packets.LoginPacket) {
	srv := c.server

	if c.accountID != 0 {
		c.loginFailed("already logged in")
		return
	}
	if p.AccountID <= 0 {
		c.loginFailed("invalid account id")
		return
	}

	id := p.AccountID
	c.accountID = id
	c.account = data.PlayerAccountData{AccountID: id, Name: p.Name, Icons: p.Icons}

	/*
	 Note: the newest login wins. The record of the previous session is removed while the
	 account is swapped, so the close of the previous session can not remove the new record.
	 A frame the previous session is handling right now may still join a level for the account,
	 so the login stays pending until that frame is done and the record is cleared again.
	*/
	var previous *session
	srv.sessions.Compute(id, func(old *session, loaded bool) (*session, bool) {
		if loaded {
			previous = old
			srv.players.RemovePlayer(id)
		}
		return c, false
	})

	if previous != nil {
		Logger.Infof("Player %d logged in again from %s, closing %s", id, c.peer.RemoteAddr(), previous.peer.RemoteAddr())
		previous.kick("logged in from another connection")

		previous.handling.Lock()
		srv.players.RemovePlayer(id)
		previous.handling.Unlock()
	}
	srv.players.SetPlayerData(id, data.PlayerData{})

	srv.reply(c.peer, packets.LoggedInPacket{})
	Logger.Infof("Player %d (%s) logged in from %s", id, p.Name.String(), c.peer.RemoteAddr())
}

func (c *session) loginFailed(reason string) {
	c.server.reply(c.peer, packets.LoginFailedPacket{Message: bytebuf.NewFastString[data.MessageLimit](reason)})
}

// kick sends a ServerDisconnectPacket and closes the connection after it was sent.
// It may be called from any goroutine.
func (c *session) kick(reason string) {
	c.server.reply(c.peer, packets.ServerDisconnectPacket{Message: bytebuf.NewFastString[data.MessageLimit](reason)})
	c.peer.Close()
}

// loggedIn returns true if the session owns its account
func (c *session) loggedIn() bool {
	if c.accountID == 0 {
		return false
	}
	current, ok := c.server.sessions.Load(c.accountID)
	return ok && current == c
}

// --------------------------------------------------------------------------
// Game Packets
// --------------------------------------------------------------------------

func (c *session) handleRequestProfiles(p packets.RequestPlayerProfilesPacket) {
	srv := c.server
	var profiles []data.PlayerAccountData

	switch {
	case p.Requested == 0 && c.inLevel:
		// everyone on the level of the sender
		for _, id := range c.levelMembers() {
			if target, ok := srv.sessions.Load(id); ok {
				profiles = append(profiles, target.account)
			}
			if len(profiles) == packets.MaxProfiles {
				break
			}
		}
	case p.Requested != 0:
		if target, ok := srv.sessions.Load(p.Requested); ok {
			profiles = append(profiles, target.account)
		}
	}

	srv.reply(c.peer, packets.PlayerProfilesPacket{Profiles: profiles})
}

func (c *session) handleLevelJoin(p packets.LevelJoinPacket) {
	c.server.players.MoveToLevel(c.accountID, p.LevelID)
	c.level, c.inLevel = p.LevelID, true
	Logger.Debugf("Player %d joined level %d", c.accountID, p.LevelID)
}

func (c *session) handleLevelLeave() {
	if !c.inLevel {
		return
	}
	c.server.players.RemoveFromLevel(c.level, c.accountID)
	c.inLevel = false
	Logger.Debugf("Player %d left level %d", c.accountID, c.level)
}

// handlePlayerData stores the record of the sender and answers with the records of
// all other players on its level
func (c *session) handlePlayerData(p packets.PlayerDataPacket) {
	srv := c.server
	srv.players.SetPlayerData(c.accountID, p.Data)
	if !c.inLevel {
		return
	}

	c.levelData = c.levelData[:0]
	players.ForEachPlayerOnLevelWith(srv.players, c.level, collectLevelData, c)
	srv.reply(c.peer, packets.LevelDataPacket{Players: c.levelData})
}

func (c *session) handleVoice(p packets.VoicePacket) {
	if !c.inLevel {
		return
	}
	c.broadcast(packets.VoiceBroadcastPacket{Sender: c.accountID, Data: p.Data})
}

func (c *session) handleChat(p packets.ChatMessagePacket) {
	if !c.inLevel {
		return
	}
	c.broadcast(packets.ChatMessageBroadcastPacket{Sender: c.accountID, Message: p.Message})
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// broadcast encodes p once and sends it to all other players on the level of the session
func (c *session) broadcast(p packet.Packet) {
	frame, err := c.server.encode(p)
	if err != nil {
		Logger.Errorf("%v", err)
		return
	}
	c.server.broadcast(c.levelMembers(), c.accountID, frame)
}

// levelMembers returns the account ids on the level of the session (the slice is reused)
func (c *session) levelMembers() []int32 {
	c.members = c.members[:0]
	players.ForEachPlayerOnLevelWith(c.server.players, c.level, collectMember, c)
	return c.members
}

// visitors (must not call back into the player manager)

func collectMember(accountID int32, _ *data.PlayerData, c *session) bool {
	c.members = append(c.members, accountID)
	return true
}

func collectLevelData(accountID int32, d *data.PlayerData, c *session) bool {
	if accountID == c.accountID {
		return true
	}
	c.levelData = append(c.levelData, data.AssociatedPlayerData{AccountID: accountID, Data: *d})
	return len(c.levelData) < packets.MaxLevelDataPlayers
}
