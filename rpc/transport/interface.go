package transport

import (
	"github.com/ValentinKolb/dRelay/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// Peer is the server side handle of a single client connection
type Peer interface {
	// Send queues frame for sending. The peer takes ownership of frame, the caller must not modify
	// it afterwards (the same frame may be passed to several peers).
	// Returns false if the peer is closed or its outbox is full (the frame is dropped).
	Send(frame []byte) bool
	// Close sends all queued frames and closes the connection
	Close() error
	// RemoteAddr returns the address of the client
	RemoteAddr() string
}

// Session handles the frames of a single connection
type Session interface {
	// HandleFrame is called for every received frame, sequentially and in order for a single connection.
	// The frame is only valid until HandleFrame returns.
	HandleFrame(frame []byte)
	// Close is called once after the connection was closed
	Close()
}

// SessionFactory creates the session for a newly accepted connection
type SessionFactory func(peer Peer) Session

// IRelayServerTransport is the interface for the server side transport layer
type IRelayServerTransport interface {
	// RegisterHandler registers the factory that is called for every accepted connection
	RegisterHandler(factory SessionFactory)
	// Listen starts the transport layer and blocks until it is closed
	Listen(config common.ServerConfig) error
	// Addr returns the address the transport listens on (empty before Listen was called)
	Addr() string
	// Close stops listening and closes all connections
	Close() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRelayClientTransport is the interface for the client side transport layer
type IRelayClientTransport interface {
	// Connect establishes the connection with the given configuration
	Connect(config common.ClientConfig) error
	// Send sends a single frame to the server
	Send(frame []byte) error
	// Recv returns the channel received frames are delivered on. It is closed when the connection is lost.
	Recv() <-chan []byte
	// Close closes the connection
	Close() error
}
