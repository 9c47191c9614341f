// Package transport defines the interfaces between the relay and the network.
// Transports move opaque frames (one encoded packet each), they do not know
// anything about packets or players.
//
// Key Components:
//
//   - IRelayServerTransport: Accepts connections and creates a Session per connection via the
//     registered SessionFactory. Frames of a connection are passed to Session.HandleFrame in order.
//
//   - Peer: Server side handle of a connection. Send is non blocking, frames are queued in a bounded
//     outbox and written by a dedicated goroutine.
//
//   - IRelayClientTransport: Client side connection with a frame channel for received frames.
//
// Implementations:
//
//	tcp   length prefixed frames over TCP
//	unix  length prefixed frames over unix domain sockets
//	ws    one binary websocket message per frame
package transport
