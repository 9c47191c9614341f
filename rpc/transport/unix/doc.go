// Package unix implements the transport of the relay over Unix domain sockets.
// It is meant for clients running on the same machine as the relay, e.g. a game
// server side proxy or the load test bot.
//
// This package only provides the connectors, connection handling, framing and
// outboxes are inherited from the base package.
//
// Key Components:
//
//   - clientConnector: Establishes connections using Unix domain sockets
//
//   - serverConnector: Creates Unix socket listeners, an existing socket file at the
//     endpoint is removed first
package unix
