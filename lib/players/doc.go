// Package players provides the PlayerManager, the concurrent registry of online players and the
// levels they occupy. The relay server consults it to decide who receives which packet.
//
// Data Model:
//
//	players: account id -> player record (data.PlayerData + joined levels)
//	levels:  level id   -> set of account ids (+ atomic member count)
//
// Key Properties:
//   - Membership changes and count queries are O(1) and never contend across levels.
//   - Iteration over a level sees a snapshot of its members as of the start of the iteration
//     (the level is read locked, concurrent adds and removes on that level wait).
//   - Lookups of unknown players or levels return zero values, they are never errors.
//   - RemovePlayer cascades: the player leaves every level it is a member of.
//   - Empty levels are reclaimed.
//
// Usage:
//
//	pm := players.NewPlayerManager()
//	pm.AddToLevel(levelID, accountID)
//	pm.SetPlayerData(accountID, data.PlayerData{Percentage: 42})
//
//	pm.ForEachPlayerOnLevel(levelID, func(id int32, d *data.PlayerData) bool {
//	  // fan out to id
//	  return true
//	})
//
//	pm.RemovePlayer(accountID) // on disconnect
package players
