// Package tcp implements the TCP socket transport of the relay. It provides
// concrete implementations of the base package's connector interfaces.
//
// Frames are sent with the u32 length prefix of the base package. See the base
// package documentation for the connection handling and the outbox semantics.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector
//
//   - serverConnector: TCP-specific implementation of base.IServerConnector, applies
//     the configured socket options (no delay, keep alive, linger, socket buffers)
//     to every accepted connection
package tcp
