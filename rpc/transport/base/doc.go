// Package base provides the foundation of the relay transports, implementing the connection
// handling independent of the specific network protocol (TCP, Unix sockets, websockets).
// Protocol specific packages only provide connectors.
//
// The package focuses on:
//   - Frame based connections (FrameConn) with a strict maximum frame size
//   - One reader goroutine per connection, frames are handled sequentially and in order
//   - One writer goroutine per connection draining a bounded lock-free outbox (lib/queue)
//   - Buffer reuse on the read path
//
// Key Components:
//
//   - FrameConn: Connection that transmits whole frames. NewStreamConn implements it for
//     byte streams with a u32 length prefix:
//
//     [length u32 big endian][frame]
//
//     Frames longer than the configured maximum are rejected before they are read, so a remote
//     peer can never make the server allocate.
//
//   - ConnHandler: Runs the read loop of a connection and passes every frame to its session.
//     Shared by the stream transports and the websocket transport.
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific operations
//     that allow extending the base transport with different network protocols.
//
// Performance Optimizations:
//
//   - Buffer Pooling: Read buffers come from a sync.Pool and are reused for all frames of a connection.
//
//   - Frame Batching: The stream transports use net.Buffers to write header and frame with a single
//     (vectored) write.
//
//   - Non blocking fan-out: Peer.Send only pushes to the outbox, a slow client never blocks the
//     connection that triggered a broadcast. Frames for a full outbox are dropped.
//
// Thread Safety:
//
//	All public methods are thread-safe. Sessions are called from the reader goroutine of their
//	connection only.
package base
