package unix

import (
	"net"
	"time"

	"github.com/ValentinKolb/dRelay/rpc/common"
	"github.com/ValentinKolb/dRelay/rpc/transport"
	"github.com/ValentinKolb/dRelay/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for Unix sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "unix"
}

func (c *clientConnector) Connect(config common.ClientConfig) (base.FrameConn, error) {
	timeout := time.Duration(config.Transport.TimeoutSecond) * time.Second
	conn, err := net.DialTimeout("unix", config.Transport.Endpoint, timeout)
	if err != nil {
		return nil, err
	}
	return base.NewStreamConn(conn, config.Transport.BufferSize), nil
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewUnixClientTransport creates a new Unix client transport
func NewUnixClientTransport() transport.IRelayClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
