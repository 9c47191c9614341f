package ws

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dRelay/rpc/common"
	"github.com/ValentinKolb/dRelay/rpc/transport"
	"github.com/ValentinKolb/dRelay/rpc/transport/base"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport")

const (
	// Path is the route of the websocket endpoint
	Path = "/ws"
	// HealthPath answers 200 as long as the server accepts connections
	HealthPath = "/healthz"

	readHeaderTimeout = 5 * time.Second
)

// serverTransport implements transport.IRelayServerTransport with websockets behind a chi router
type serverTransport struct {
	factory transport.SessionFactory

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	handler  *base.ConnHandler
	closed   atomic.Bool
}

// NewWSServerTransport creates a new websocket server transport
func NewWSServerTransport() transport.IRelayServerTransport {
	return &serverTransport{}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRelayServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(factory transport.SessionFactory) {
	t.factory = factory
}

func (t *serverTransport) Listen(config common.ServerConfig) error {
	if t.factory == nil {
		return fmt.Errorf("no session factory registered")
	}

	listener, err := net.Listen("tcp", config.Transport.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to create tcp socket: %w", err)
	}

	handler := base.NewConnHandler(config.Transport, t.factory)
	server := &http.Server{
		Handler:           t.router(config, handler),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	t.mu.Lock()
	t.listener = listener
	t.server = server
	t.handler = handler
	t.mu.Unlock()

	if t.closed.Load() {
		listener.Close()
		return nil
	}

	Logger.Infof("Starting ws server on %s%s", listener.Addr(), Path)

	err = server.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) || t.closed.Load() {
		return nil
	}
	return err
}

func (t *serverTransport) Addr() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.listener == nil {
		return ""
	}
	return t.listener.Addr().String()
}

func (t *serverTransport) Close() error {
	t.closed.Store(true)

	t.mu.Lock()
	defer t.mu.Unlock()

	// hijacked connections are not tracked by the http server
	if t.handler != nil {
		t.handler.CloseAll()
	}
	if t.server != nil {
		return t.server.Close()
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// router creates the http routes of the transport
func (t *serverTransport) router(config common.ServerConfig, handler *base.ConnHandler) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  config.Transport.ReadBufferSize,
		WriteBufferSize: config.Transport.WriteBufferSize,
		// game clients are no browsers, there is no origin to check
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		if t.closed.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Get(Path, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already replied with an http error
			Logger.Debugf("Websocket upgrade from %s failed: %v", r.RemoteAddr, err)
			return
		}
		handler.Serve(newWSConn(conn, config.Transport.BufferSize))
	})

	return r
}
