package base

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dRelay/rpc/common"
	"github.com/ValentinKolb/dRelay/rpc/transport"
)

const recvBufferSize = 64

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection based on the provided configuration
	Connect(config common.ClientConfig) (FrameConn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, ws)
type clientTransport struct {
	connector IClientConnector
	config    common.ClientConfig
	conn      FrameConn
	writeMu   sync.Mutex // serializes writes on conn
	in        chan []byte
	stopCh    chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, ws)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IRelayClientTransport {
	return &clientTransport{connector: connector}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRelayClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	if config.Transport.Endpoint == "" {
		return fmt.Errorf("no endpoint provided")
	}
	if t.conn != nil {
		return fmt.Errorf("already connected")
	}
	t.config = config

	// We always try at least once, and up to RetryCount times
	maxRetries := max(1, config.Transport.RetryCount)

	// Initial backoff duration in milliseconds
	backoffMs := 50

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		conn, err := t.connector.Connect(config)
		if err == nil {
			t.conn = conn
			t.in = make(chan []byte, recvBufferSize)
			t.stopCh = make(chan struct{})
			go t.readFrames()

			Logger.Infof("Connected to %s using %s transport", config.Transport.Endpoint, t.connector.GetName())
			return nil
		}

		lastErr = err
		Logger.Debugf("Connection attempt %d/%d failed: %v", i+1, maxRetries, err)

		if i < maxRetries-1 {
			// Exponential backoff with a small random jitter (+-10%)
			jitter := float64(backoffMs) * (0.9 + 0.2*rand.Float64())
			time.Sleep(time.Duration(jitter) * time.Millisecond)
			backoffMs *= 2
		}
	}

	return fmt.Errorf("failed to connect to %s after %d attempts: %w", config.Transport.Endpoint, maxRetries, lastErr)
}

func (t *clientTransport) Send(frame []byte) error {
	if t.conn == nil || t.closed.Load() {
		return fmt.Errorf("connection is closed")
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.config.Transport.TimeoutSecond > 0 {
		timeout := time.Duration(t.config.Transport.TimeoutSecond) * time.Second
		if err := t.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return fmt.Errorf("failed to set write deadline: %w", err)
		}
	}
	return t.conn.WriteFrame(frame)
}

func (t *clientTransport) Recv() <-chan []byte {
	return t.in
}

func (t *clientTransport) Close() error {
	if t.conn == nil {
		return nil
	}

	var err error
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		close(t.stopCh)
		err = t.conn.Close()
	})
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// readFrames delivers received frames until the connection is lost or closed
func (t *clientTransport) readFrames() {
	defer close(t.in)

	for {
		frame, err := t.conn.ReadFrame(nil)
		if err != nil {
			if !t.closed.Load() && !isClosedErr(err) {
				Logger.Warningf("Connection to %s lost: %v", t.config.Transport.Endpoint, err)
			}
			return
		}

		select {
		case t.in <- frame:
		case <-t.stopCh:
			return
		}
	}
}
