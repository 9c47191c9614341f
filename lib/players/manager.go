package players

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/dRelay/lib/data"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Internal Types
// --------------------------------------------------------------------------

// player is the record of a single account
type player struct {
	mu      sync.Mutex
	data    data.PlayerData
	levels  map[int32]struct{} // levels this player joined
	removed bool               // set once the record was deleted from the players map
}

func newPlayer() *player {
	return &player{levels: make(map[int32]struct{}, 1)}
}

// level is the membership set of a single level
type level struct {
	mu      sync.RWMutex
	members map[int32]struct{}
	count   atomic.Int32
	dead    bool // set once the level became empty, a dead level is never revived
}

func newLevel() *level {
	return &level{members: make(map[int32]struct{})}
}

// --------------------------------------------------------------------------
// PlayerManager
// --------------------------------------------------------------------------

// PlayerManager tracks the players currently online and the levels they occupy.
//
// Every account id that is a member of a level has a player record: AddToLevel creates a zero
// record if none exists and RemovePlayer removes the player from every level it joined.
//
// Thread-safety: All methods are safe for concurrent use. Both maps are xsync.MapOf (internally sharded).
// Every level has its own RWMutex, so operations on different levels never contend. Iteration holds the
// read lock of its level for the whole pass and observes the membership as of its start. Adds and removes
// on a level are serialized by the write lock and are therefore linearizable.
// Every player record has its own Mutex, taken while the record is read, written or visited.
//
// Lock order is level -> player. No map bucket lock is held while a level or player lock is acquired
// (all lock acquisition happens outside of xsync Compute callbacks).
type PlayerManager struct {
	players *xsync.MapOf[int32, *player]
	levels  *xsync.MapOf[int32, *level]
}

// NewPlayerManager creates an empty PlayerManager
func NewPlayerManager() *PlayerManager {
	return &PlayerManager{
		players: xsync.NewMapOf[int32, *player](),
		levels:  xsync.NewMapOf[int32, *level](),
	}
}

// --------------------------------------------------------------------------
// Player Records
// --------------------------------------------------------------------------

// lockLivePlayer returns the record of accountID (created if absent) with its mutex held.
// Records that were removed concurrently are skipped, the loop then creates a fresh one.
func (m *PlayerManager) lockLivePlayer(accountID int32) *player {
	for {
		p, _ := m.players.LoadOrCompute(accountID, newPlayer)
		p.mu.Lock()
		if !p.removed {
			return p
		}
		p.mu.Unlock()
	}
}

// SetPlayerData creates or overwrites the record of accountID. It does not imply level membership.
func (m *PlayerManager) SetPlayerData(accountID int32, d data.PlayerData) {
	p := m.lockLivePlayer(accountID)
	p.data = d
	p.mu.Unlock()
}

// GetPlayerData returns a copy of the record of accountID
func (m *PlayerManager) GetPlayerData(accountID int32) (data.PlayerData, bool) {
	p, ok := m.players.Load(accountID)
	if !ok {
		return data.PlayerData{}, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.removed {
		return data.PlayerData{}, false
	}
	return p.data, true
}

// LevelsOf returns the levels accountID is a member of in ascending order
func (m *PlayerManager) LevelsOf(accountID int32) []int32 {
	p, ok := m.players.Load(accountID)
	if !ok {
		return nil
	}
	p.mu.Lock()
	levels := make([]int32, 0, len(p.levels))
	for id := range p.levels {
		levels = append(levels, id)
	}
	p.mu.Unlock()

	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	return levels
}

// RemovePlayer deletes the record of accountID and removes it from every level it is a member of.
// Returns false if there was no record.
func (m *PlayerManager) RemovePlayer(accountID int32) bool {
	p, ok := m.players.LoadAndDelete(accountID)
	if !ok {
		return false
	}

	p.mu.Lock()
	p.removed = true
	levels := p.levels
	p.levels = nil
	p.mu.Unlock()

	for levelID := range levels {
		m.syncMember(levelID, accountID)
	}
	return true
}

// PlayerCount returns the number of player records
func (m *PlayerManager) PlayerCount() int {
	return m.players.Size()
}

// --------------------------------------------------------------------------
// Level Membership
// --------------------------------------------------------------------------

// AddToLevel adds accountID to levelID. Adding a member twice has no effect.
// If the player has no record yet, a zero record is created.
func (m *PlayerManager) AddToLevel(levelID, accountID int32) {
	p := m.lockLivePlayer(accountID)
	p.levels[levelID] = struct{}{}
	p.mu.Unlock()

	m.syncMember(levelID, accountID)
}

// RemoveFromLevel removes accountID from levelID. Removing a non member is a no-op.
// Levels without members are reclaimed.
func (m *PlayerManager) RemoveFromLevel(levelID, accountID int32) {
	p, ok := m.players.Load(accountID)
	if !ok {
		return
	}
	p.mu.Lock()
	_, member := p.levels[levelID]
	delete(p.levels, levelID)
	p.mu.Unlock()

	if member {
		m.syncMember(levelID, accountID)
	}
}

// MoveToLevel removes accountID from every level except levelID and adds it to levelID
func (m *PlayerManager) MoveToLevel(accountID, levelID int32) {
	p := m.lockLivePlayer(accountID)
	var left []int32
	for id := range p.levels {
		if id != levelID {
			left = append(left, id)
			delete(p.levels, id)
		}
	}
	p.levels[levelID] = struct{}{}
	p.mu.Unlock()

	for _, id := range left {
		m.syncMember(id, accountID)
	}
	m.syncMember(levelID, accountID)
}

// GetPlayerCountOnLevel returns the number of members of levelID, 0 for unknown levels
func (m *PlayerManager) GetPlayerCountOnLevel(levelID int32) int {
	l, ok := m.levels.Load(levelID)
	if !ok {
		return 0
	}
	return int(l.count.Load())
}

// LevelCount returns the number of levels with at least one member
func (m *PlayerManager) LevelCount() int {
	return m.levels.Size()
}

// claims returns true if the current record of accountID lists levelID
func (m *PlayerManager) claims(levelID, accountID int32) bool {
	p, ok := m.players.Load(accountID)
	if !ok {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok = p.levels[levelID]
	return ok && !p.removed
}

// syncMember makes the membership set of levelID agree with the current record of accountID.
// Every change of a record's levels is followed by a syncMember for that level. The record is read
// under the level lock, so the last syncMember on a level sees the final record.
func (m *PlayerManager) syncMember(levelID, accountID int32) {
	for {
		l, ok := m.levels.Load(levelID)
		if !ok {
			if !m.claims(levelID, accountID) {
				return
			}
			l, _ = m.levels.LoadOrCompute(levelID, newLevel)
		}

		l.mu.Lock()
		if l.dead {
			// the level emptied concurrently, help removing it and retry with a new one
			l.mu.Unlock()
			m.reclaim(levelID, l)
			continue
		}

		want := m.claims(levelID, accountID)
		_, is := l.members[accountID]
		switch {
		case want && !is:
			l.members[accountID] = struct{}{}
			l.count.Add(1)
		case !want && is:
			delete(l.members, accountID)
			l.count.Add(-1)
		}
		empty := len(l.members) == 0
		if empty {
			l.dead = true
		}
		l.mu.Unlock()

		if empty {
			m.reclaim(levelID, l)
		}
		return
	}
}

// reclaim deletes the dead level l from the levels map if it is still the current entry of levelID
func (m *PlayerManager) reclaim(levelID int32, l *level) {
	m.levels.Compute(levelID, func(old *level, loaded bool) (*level, bool) {
		if !loaded {
			return nil, true
		}
		return old, old == l
	})
}

// --------------------------------------------------------------------------
// Iteration
// --------------------------------------------------------------------------

// ForEachPlayerOnLevel calls fn for every member of levelID with a pointer to its record.
// The record may be modified through the pointer. If fn returns false the iteration stops.
// Returns the number of players visited.
//
// Preconditions: fn must not add or remove members of levelID or call any other method of the
// PlayerManager, the locks held during the visit would deadlock.
func (m *PlayerManager) ForEachPlayerOnLevel(levelID int32, fn func(accountID int32, d *data.PlayerData) bool) int {
	return ForEachPlayerOnLevelWith(m, levelID, callPlain, &fn)
}

// ForEachPlayerOnLevelWith is ForEachPlayerOnLevel with an explicit visitor state. A plain
// function together with a state pointer replaces a capturing closure on hot paths.
func ForEachPlayerOnLevelWith[S any](m *PlayerManager, levelID int32, fn func(accountID int32, d *data.PlayerData, state *S) bool, state *S) int {
	l, ok := m.levels.Load(levelID)
	if !ok {
		return 0
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	visited := 0
	for accountID := range l.members {
		p, ok := m.players.Load(accountID)
		if !ok {
			continue
		}
		live, cont := visit(p, accountID, fn, state)
		if !live {
			continue
		}
		visited++
		if !cont {
			break
		}
	}
	return visited
}

// callPlain adapts a visitor without state to ForEachPlayerOnLevelWith
func callPlain(accountID int32, d *data.PlayerData, fn *func(int32, *data.PlayerData) bool) bool {
	return (*fn)(accountID, d)
}

// visit calls fn for p with its mutex held. live is false if the record was removed concurrently.
func visit[S any](p *player, accountID int32, fn func(int32, *data.PlayerData, *S) bool, state *S) (live, cont bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.removed {
		return false, true
	}
	return true, fn(accountID, &p.data, state)
}
