// Package rpc contains the network side of the relay. The packet codec itself lives
// in lib/packet, this package tree moves the encoded frames between players.
//
// The package is organized into several subpackages:
//
//   - common: Configuration structures of servers and clients and the logger setup.
//
//   - packets: The serverbound and clientbound packet types and their registries.
//
//   - transport: Frame transport abstractions with pluggable implementations
//     (TCP, Unix sockets, WebSocket).
//
//   - server: The relay server. It owns the sessions, the player manager and the metrics.
//
//   - client: A relay client used by the load generator and the integration tests.
package rpc
