package base

import (
	"errors"
	"sync"
	"time"

	"github.com/ValentinKolb/dRelay/lib/queue"
	"github.com/ValentinKolb/dRelay/rpc/common"
	"github.com/ValentinKolb/dRelay/rpc/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

const (
	defaultMaxPendingPackets = 256
	defaultCloseTimeout      = 5 * time.Second
)

// -----------------------------------------------------------
// Peer
// -----------------------------------------------------------

// peer implements transport.Peer. Frames are queued in a bounded outbox and written by a
// dedicated goroutine, Send never blocks on the network.
type peer struct {
	conn      FrameConn
	outbox    *queue.MPSC[[]byte]
	timeout   time.Duration
	closeOnce sync.Once
	done      chan struct{} // closed once the writer stopped and the connection is closed
}

func newPeer(conn FrameConn, config common.ServerTransportConfig) *peer {
	pending := config.MaxPendingPackets
	if pending <= 0 {
		pending = defaultMaxPendingPackets
	}

	p := &peer{
		conn:    conn,
		outbox:  queue.NewMPSC[[]byte](pending),
		timeout: time.Duration(config.TimeoutSecond) * time.Second,
		done:    make(chan struct{}),
	}
	go p.writeLoop()
	return p
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.Peer)
// --------------------------------------------------------------------------

func (p *peer) Send(frame []byte) bool {
	return p.outbox.Push(frame)
}

func (p *peer) Close() error {
	p.closeOnce.Do(p.outbox.Close)
	return nil
}

func (p *peer) RemoteAddr() string {
	return p.conn.RemoteAddr()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// writeLoop writes queued frames until the outbox is closed and drained, then closes the connection
func (p *peer) writeLoop() {
	defer close(p.done)
	defer p.conn.Close()

	failed := false
	for frame := range p.outbox.Recv() {
		if failed {
			continue // drain so the outbox consumer can terminate
		}

		if p.timeout > 0 {
			if err := p.conn.SetWriteDeadline(time.Now().Add(p.timeout)); err != nil {
				Logger.Warningf("Failed to set write deadline for %s: %v", p.RemoteAddr(), err)
			}
		}
		if err := p.conn.WriteFrame(frame); err != nil {
			if !isClosedErr(err) {
				Logger.Warningf("Failed to write frame to %s: %v", p.RemoteAddr(), err)
			}
			failed = true
			p.Close()
			// unblock the reader of this connection
			p.conn.Close()
		}
	}
}

// -----------------------------------------------------------
// Connection Handler
// -----------------------------------------------------------

// ConnHandler runs the read loop of accepted connections and owns their peers.
// It is shared by all server transports (stream based and websocket).
//
// Thread-safety: All methods are thread-safe, Serve is called in one goroutine per connection.
type ConnHandler struct {
	config     common.ServerTransportConfig
	factory    transport.SessionFactory
	bufferPool sync.Pool
	peers      *xsync.MapOf[*peer, struct{}]
}

// NewConnHandler creates a handler that creates sessions with factory
func NewConnHandler(config common.ServerTransportConfig, factory transport.SessionFactory) *ConnHandler {
	bufferSize := config.BufferSize
	if bufferSize <= 0 {
		bufferSize = DefaultMaxFrameSize
	}

	return &ConnHandler{
		config:  config,
		factory: factory,
		bufferPool: sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
		peers: xsync.NewMapOf[*peer, struct{}](),
	}
}

// Serve handles conn until it is closed. Frames are passed to the session of the connection
// sequentially, the read buffer is reused for every frame.
func (h *ConnHandler) Serve(conn FrameConn) {
	p := newPeer(conn, h.config)
	h.peers.Store(p, struct{}{})
	defer h.peers.Delete(p)

	session := h.factory(p)
	Logger.Debugf("Accepted connection from %s", p.RemoteAddr())

	buf := h.bufferPool.Get().(*[]byte)
	defer h.bufferPool.Put(buf)

	timeout := time.Duration(h.config.TimeoutSecond) * time.Second
	for {
		if timeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				Logger.Warningf("Failed to set read deadline for %s: %v", p.RemoteAddr(), err)
				break
			}
		}

		frame, err := conn.ReadFrame(*buf)
		if err != nil {
			logReadError(p, err)
			break
		}

		session.HandleFrame(frame)
	}

	session.Close()
	p.Close()

	// the writer flushes the outbox, a writer stuck on a dead client is cut off
	select {
	case <-p.done:
	case <-time.After(closeTimeout(timeout)):
		conn.Close()
		<-p.done
	}
}

// closeTimeout returns how long Serve waits for the outbox of a closed connection to be flushed
func closeTimeout(timeout time.Duration) time.Duration {
	if timeout > 0 {
		return timeout
	}
	return defaultCloseTimeout
}

// logReadError logs the error that ended the read loop of p
func logReadError(p *peer, err error) {
	switch {
	case isClosedErr(err):
		Logger.Debugf("Connection %s closed", p.RemoteAddr())
	case errors.Is(err, ErrFrameTooLarge):
		Logger.Warningf("Closing connection %s: %v", p.RemoteAddr(), err)
	default:
		Logger.Infof("Closing connection %s: %v", p.RemoteAddr(), err)
	}
}

// CloseAll closes all connections
func (h *ConnHandler) CloseAll() {
	h.peers.Range(func(p *peer, _ struct{}) bool {
		p.Close()
		return true
	})
}

// Count returns the number of open connections
func (h *ConnHandler) Count() int {
	return h.peers.Size()
}
