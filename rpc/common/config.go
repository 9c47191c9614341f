package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Transport configuration structs
// --------------------------------------------------------------------------

// ServerTransportConfig holds the connection level settings of the relay server
type ServerTransportConfig struct {
	// Endpoint is the listen address (host:port for tcp and ws, socket path for unix)
	Endpoint string
	// TimeoutSecond is the read and write deadline of a connection. Connections that are idle
	// for longer are closed. 0 disables deadlines.
	TimeoutSecond int
	// BufferSize is the maximum size of a single frame in bytes
	BufferSize int
	// MaxPendingPackets is the size of the outbox of a connection, packets for a peer
	// with a full outbox are dropped
	MaxPendingPackets int

	// socket options (tcp only)
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
	WriteBufferSize int
	ReadBufferSize  int
}

// ClientTransportConfig holds the connection level settings of a relay client
type ClientTransportConfig struct {
	// Endpoint is the address of the relay server
	Endpoint string
	// TimeoutSecond is the write deadline and the timeout of a single connection attempt
	TimeoutSecond int
	// RetryCount is the number of connection attempts
	RetryCount int
	// BufferSize is the maximum size of a single frame in bytes
	BufferSize int

	TCPNoDelay bool
}

// --------------------------------------------------------------------------
// Relay server configuration struct
// --------------------------------------------------------------------------

// ServerConfig holds all configuration parameters of the relay server
type ServerConfig struct {
	// TransportName is the name of the transport (tcp, unix, ws)
	TransportName string
	Transport     ServerTransportConfig

	// MetricsEndpoint is the listen address of the metrics http server, empty disables it
	MetricsEndpoint string

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder
	addSection, addField := formatter(&sb)

	addSection("Relay Server")
	addField("Transport", c.TransportName)
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.Transport.TimeoutSecond))
	addField("Max Frame Size", fmt.Sprintf("%d bytes", c.Transport.BufferSize))
	addField("Max Pending Packets", strconv.Itoa(c.Transport.MaxPendingPackets))

	if c.TransportName == "tcp" {
		addSection("TCP Options")
		addField("No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))
		addField("Keep Alive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
		addField("Linger", fmt.Sprintf("%d sec", c.Transport.TCPLingerSec))
	}

	addSection("Metrics")
	if c.MetricsEndpoint == "" {
		addField("Endpoint", "disabled")
	} else {
		addField("Endpoint", c.MetricsEndpoint)
	}

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// Relay client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds all configuration parameters of a relay client
type ClientConfig struct {
	TransportName string
	Transport     ClientTransportConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder
	addSection, addField := formatter(&sb)

	addSection("Client Configuration")
	addField("Transport", c.TransportName)
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.Transport.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(max(1, c.Transport.RetryCount)))
	addField("Max Frame Size", fmt.Sprintf("%d bytes", c.Transport.BufferSize))

	return sb.String()
}

// formatter returns helper functions for consistent formatting of config sections
func formatter(sb *strings.Builder) (addSection func(title string), addField func(name, value string)) {
	addSection = func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}
	addField = func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}
	return addSection, addField
}
