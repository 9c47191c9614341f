package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dRelay/lib/bytebuf"
	"github.com/ValentinKolb/dRelay/lib/data"
	"github.com/ValentinKolb/dRelay/lib/packet"
	"github.com/ValentinKolb/dRelay/rpc/common"
	"github.com/ValentinKolb/dRelay/rpc/packets"
	"github.com/ValentinKolb/dRelay/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var (
	Logger = logger.GetLogger("client")
)

// packetBufferSize is the number of received packets buffered for Packets
const packetBufferSize = 256

var (
	// ErrLoginFailed is returned if the server rejected a login
	ErrLoginFailed = errors.New("login failed")
	// ErrClosed is returned for requests on a closed or lost connection
	ErrClosed = errors.New("connection closed")
)

// PingResult is the answer to a ping
type PingResult struct {
	RTT         time.Duration
	PlayerCount uint32
}

// RelayClient is a client of the relay server. Requests with an answer (Login, Ping) block until
// the answer arrived, all other packets sent by the server are delivered on Packets.
//
// Thread-safety: All methods are thread-safe.
type RelayClient struct {
	config    common.ClientConfig
	transport transport.IRelayClientTransport
	registry  *packet.Registry

	writeMu sync.Mutex // guards region
	region  []byte

	packets chan packet.Packet
	dropped atomic.Uint64
	done    chan struct{}

	pings    *xsync.MapOf[uint32, chan packets.PingResponsePacket]
	nextPing atomic.Uint32

	loginMu sync.Mutex // one login at a time
	loginCh chan error
}

// NewRelayClient connects the transport and returns a client that is not logged in yet
func NewRelayClient(config common.ClientConfig, transport transport.IRelayClientTransport) (*RelayClient, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	c := &RelayClient{
		config:    config,
		transport: transport,
		registry:  packets.NewClientboundRegistry(),
		region:    make([]byte, packets.MaxPacketSize),
		packets:   make(chan packet.Packet, packetBufferSize),
		done:      make(chan struct{}),
		pings:     xsync.NewMapOf[uint32, chan packets.PingResponsePacket](),
		loginCh:   make(chan error, 1),
	}
	go c.dispatch()
	return c, nil
}

// --------------------------------------------------------------------------
// Requests with an answer
// --------------------------------------------------------------------------

// Login claims accountID and waits for the answer of the server
func (c *RelayClient) Login(ctx context.Context, accountID int32, name string, icons data.PlayerIconData) error {
	c.loginMu.Lock()
	defer c.loginMu.Unlock()

	// drop a stale answer of a login that timed out
	select {
	case <-c.loginCh:
	default:
	}

	err := c.send(packets.LoginPacket{
		AccountID: accountID,
		Name:      bytebuf.NewFastString[data.NameLimit](name),
		Icons:     icons,
	})
	if err != nil {
		return err
	}

	select {
	case err := <-c.loginCh:
		return err
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ping measures the round trip time to the server
func (c *RelayClient) Ping(ctx context.Context) (PingResult, error) {
	id := c.nextPing.Add(1)
	ch := make(chan packets.PingResponsePacket, 1)
	c.pings.Store(id, ch)
	defer c.pings.Delete(id)

	start := time.Now()
	if err := c.send(packets.PingPacket{ID: id}); err != nil {
		return PingResult{}, err
	}

	select {
	case resp := <-ch:
		return PingResult{RTT: time.Since(start), PlayerCount: resp.PlayerCount}, nil
	case <-c.done:
		return PingResult{}, ErrClosed
	case <-ctx.Done():
		return PingResult{}, ctx.Err()
	}
}

// --------------------------------------------------------------------------
// Game packets (answers are delivered on Packets)
// --------------------------------------------------------------------------

// JoinLevel moves the player to levelID
func (c *RelayClient) JoinLevel(levelID int32) error {
	return c.send(packets.LevelJoinPacket{LevelID: levelID})
}

// LeaveLevel removes the player from its current level
func (c *RelayClient) LeaveLevel() error {
	return c.send(packets.LevelLeavePacket{})
}

// SendPlayerData updates the record of the player, the server answers with a LevelDataPacket
func (c *RelayClient) SendPlayerData(d data.PlayerData) error {
	return c.send(packets.PlayerDataPacket{Data: d})
}

// RequestProfiles requests a single profile, or all profiles of the current level if accountID is 0
func (c *RelayClient) RequestProfiles(accountID int32) error {
	return c.send(packets.RequestPlayerProfilesPacket{Requested: accountID})
}

// SendChat sends a chat message to the level, longer messages are truncated
func (c *RelayClient) SendChat(message string) error {
	return c.send(packets.ChatMessagePacket{Message: bytebuf.NewFastString[data.MessageLimit](message)})
}

// SendVoice sends an audio frame to the level, longer frames are truncated
func (c *RelayClient) SendVoice(frame []byte) error {
	return c.send(packets.VoicePacket{Data: data.NewAudioFrame(frame)})
}

// Packets returns the channel all packets without a waiting request are delivered on.
// The channel is closed when the connection is lost. Packets are dropped if it is not drained.
func (c *RelayClient) Packets() <-chan packet.Packet {
	return c.packets
}

// Dropped returns the number of packets dropped because Packets was not drained
func (c *RelayClient) Dropped() uint64 {
	return c.dropped.Load()
}

// Done returns a channel that is closed when the connection is lost or closed
func (c *RelayClient) Done() <-chan struct{} {
	return c.done
}

// Close closes the connection
func (c *RelayClient) Close() error {
	return c.transport.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// send encodes p into the region of the client and sends it. The transport writes
// the frame before it returns, so the region can be reused right after.
func (c *RelayClient) send(p packet.Packet) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	buf := bytebuf.NewFastByteBuffer(c.region)
	if err := packet.Encode(buf, p); err != nil {
		return fmt.Errorf("failed to encode packet %d: %w", p.Descriptor().ID, err)
	}
	return c.transport.Send(buf.AsBytes())
}

// dispatch decodes received frames until the connection is lost
func (c *RelayClient) dispatch() {
	defer close(c.done)
	defer close(c.packets)

	for frame := range c.transport.Recv() {
		p, err := c.registry.Decode(frame)
		if err != nil {
			Logger.Warningf("Dropping packet from server: %v", err)
			continue
		}

		switch p := p.(type) {
		case packets.PingResponsePacket:
			if ch, ok := c.pings.LoadAndDelete(p.ID); ok {
				ch <- p
			}
			continue
		case packets.LoggedInPacket:
			c.loginResult(nil)
			continue
		case packets.LoginFailedPacket:
			c.loginResult(fmt.Errorf("%w: %s", ErrLoginFailed, p.Message.String()))
			continue
		case packets.ServerDisconnectPacket:
			Logger.Infof("Disconnected by server: %s", p.Message.String())
		}

		select {
		case c.packets <- p:
		default:
			c.dropped.Add(1)
		}
	}
}

// loginResult passes the answer of a login to the waiting Login call
func (c *RelayClient) loginResult(err error) {
	select {
	case c.loginCh <- err:
	default:
		Logger.Debugf("Ignoring unexpected login answer")
	}
}
