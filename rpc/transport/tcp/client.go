package tcp

import (
	"net"
	"time"

	"github.com/ValentinKolb/dRelay/rpc/common"
	"github.com/ValentinKolb/dRelay/rpc/transport"
	"github.com/ValentinKolb/dRelay/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for TCP sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "tcp"
}

func (c *clientConnector) Connect(config common.ClientConfig) (base.FrameConn, error) {
	timeout := time.Duration(config.Transport.TimeoutSecond) * time.Second
	conn, err := net.DialTimeout("tcp", config.Transport.Endpoint, timeout)
	if err != nil {
		return nil, err
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(config.Transport.TCPNoDelay); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return base.NewStreamConn(conn, config.Transport.BufferSize), nil
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPClientTransport creates a new TCP client transport
func NewTCPClientTransport() transport.IRelayClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
