package ws

import (
	"fmt"
	"time"

	"github.com/ValentinKolb/dRelay/rpc/common"
	"github.com/ValentinKolb/dRelay/rpc/transport"
	"github.com/ValentinKolb/dRelay/rpc/transport/base"
	"github.com/gorilla/websocket"
)

// clientConnector implements the IClientConnector interface for websockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "ws"
}

func (c *clientConnector) Connect(config common.ClientConfig) (base.FrameConn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: time.Duration(config.Transport.TimeoutSecond) * time.Second,
	}

	conn, resp, err := dialer.Dial(URL(config.Transport.Endpoint), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake failed with status %s: %w", resp.Status, err)
		}
		return nil, err
	}
	return newWSConn(conn, config.Transport.BufferSize), nil
}

// URL returns the websocket url of a relay endpoint (host:port)
func URL(endpoint string) string {
	return "ws://" + endpoint + Path
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewWSClientTransport creates a new websocket client transport
func NewWSClientTransport() transport.IRelayClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
