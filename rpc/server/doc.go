// Package server implements the relay server. Every connection gets a session that decodes
// its frames, tracks the login and the level of the player and relays the packets to the
// other players on the same level.
//
// Key Components:
//
//   - RelayServer: Binds a transport, owns the player manager (lib/players), the session map
//     and the metrics. Packets that are sent to many players are encoded once and the same
//     frame is queued on every recipient.
//
//   - session: Per connection state. Before a successful login only ping and login packets
//     are accepted, everything else is dropped. A second login with the same account id
//     replaces the older connection, which is kicked with a ServerDisconnectPacket.
//
//   - relayMetrics: Prometheus metrics (VictoriaMetrics/metrics) exposed via chi on
//     MetricsEndpoint under /metrics.
//
// Usage Example:
//
//	s := server.NewRelayServer(common.ServerConfig{
//	  TransportName: "tcp",
//	  Transport: common.ServerTransportConfig{
//	    Endpoint:          "0.0.0.0:4202",
//	    TimeoutSecond:     30,
//	    MaxPendingPackets: 256,
//	  },
//	  MetricsEndpoint: "0.0.0.0:9100",
//	}, tcp.NewTCPServerTransport())
//
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Thread Safety:
//
//	Frames of one connection are handled sequentially, different connections concurrently.
//	The player manager and the session map are safe for concurrent use. Serve must be
//	called only once, Close may be called from any goroutine.
package server
