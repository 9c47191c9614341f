package server

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"

	"github.com/ValentinKolb/dRelay/lib/bytebuf"
	"github.com/ValentinKolb/dRelay/lib/packet"
	"github.com/ValentinKolb/dRelay/lib/players"
	"github.com/ValentinKolb/dRelay/rpc/common"
	"github.com/ValentinKolb/dRelay/rpc/packets"
	"github.com/ValentinKolb/dRelay/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("relay")

// RelayServer relays the game packets of logged in players to the other players on their level.
//
// Thread-safety: All methods are thread-safe. Sessions of different connections are handled concurrently.
type RelayServer struct {
	config    common.ServerConfig
	transport transport.IRelayServerTransport
	registry  *packet.Registry

	players  *players.PlayerManager
	sessions *xsync.MapOf[int32, *session] // account id -> session owning the account

	bufferPool sync.Pool
	metrics    *relayMetrics

	mu            sync.Mutex
	metricsServer *http.Server
}

// NewRelayServer creates a new relay server on top of the transport
//
// Usage:
//
//	s := server.NewRelayServer(*config, tcp.NewTCPServerTransport())
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRelayServer(config common.ServerConfig, transport transport.IRelayServerTransport) *RelayServer {
	s := &RelayServer{
		config:    config,
		transport: transport,
		registry:  packets.NewServerboundRegistry(),
		players:   players.NewPlayerManager(),
		sessions:  xsync.NewMapOf[int32, *session](),
		bufferPool: sync.Pool{
			New: func() interface{} {
				buf := make([]byte, packets.MaxPacketSize)
				return &buf
			},
		},
	}
	s.metrics = newRelayMetrics(s.players, s.sessions.Size)

	Logger.Infof("Created Relay Server")
	Logger.Infof(config.String())

	return s
}

// Serve starts the metrics endpoint (if configured) and the transport layer.
// It blocks until the server is closed.
func (s *RelayServer) Serve() error {
	if s.config.MetricsEndpoint != "" {
		srv, err := s.metrics.serve(s.config.MetricsEndpoint)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.metricsServer = srv
		s.mu.Unlock()
	}

	s.transport.RegisterHandler(s.newSession)
	return s.transport.Listen(s.config)
}

// Close stops the transport and closes all connections
func (s *RelayServer) Close() error {
	s.mu.Lock()
	if s.metricsServer != nil {
		s.metricsServer.Close()
		s.metricsServer = nil
	}
	s.mu.Unlock()
	return s.transport.Close()
}

// Addr returns the address of the transport
func (s *RelayServer) Addr() string {
	return s.transport.Addr()
}

// PlayerCount returns the number of logged in players
func (s *RelayServer) PlayerCount() int {
	return s.sessions.Size()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// encode encodes p into a pooled region and returns a copy of the frame.
// The copy is owned by the caller and can be passed to any number of peers.
func (s *RelayServer) encode(p packet.Packet) ([]byte, error) {
	region := s.bufferPool.Get().(*[]byte)
	defer s.bufferPool.Put(region)

	buf := bytebuf.NewFastByteBuffer(*region)
	if err := packet.Encode(buf, p); err != nil {
		return nil, fmt.Errorf("failed to encode packet %d: %w", p.Descriptor().ID, err)
	}
	return bytes.Clone(buf.AsBytes()), nil
}

// send delivers frame to peer and counts the result
func (s *RelayServer) send(peer transport.Peer, frame []byte) {
	if peer.Send(frame) {
		s.metrics.sent.Inc()
	} else {
		s.metrics.drop(dropBacklog)
	}
}

// reply encodes p and sends it to peer
func (s *RelayServer) reply(peer transport.Peer, p packet.Packet) {
	frame, err := s.encode(p)
	if err != nil {
		Logger.Errorf("%v", err)
		return
	}
	s.send(peer, frame)
}

// broadcast sends frame to all given accounts that are logged in, except the sender.
// Returns the number of peers the frame was queued for.
func (s *RelayServer) broadcast(recipients []int32, sender int32, frame []byte) int {
	n := 0
	for _, id := range recipients {
		if id == sender {
			continue
		}
		if target, ok := s.sessions.Load(id); ok {
			s.send(target.peer, frame)
			n++
		}
	}
	s.metrics.fanout.Update(float64(n))
	return n
}
