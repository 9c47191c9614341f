package bot

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ValentinKolb/dRelay/lib/data"
	"github.com/ValentinKolb/dRelay/rpc/client"
	"github.com/ValentinKolb/dRelay/rpc/common"
	"github.com/ValentinKolb/dRelay/rpc/packets"
	"github.com/ValentinKolb/dRelay/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/rcrowley/go-metrics"
)

var Logger = logger.GetLogger("bot")

const (
	// chatEvery is the number of ticks between two chat messages of a bot
	chatEvery = 50
	// voiceFrameSize is the size of the simulated audio frames
	voiceFrameSize = 320
)

// Config is the configuration of a load test
type Config struct {
	Client common.ClientConfig
	// Players is the number of simulated players (one connection each)
	Players int
	// Levels is the number of levels the players are spread over
	Levels int
	// TickRate is the number of PlayerDataPackets per second and player
	TickRate int
	// Duration of the load test
	Duration time.Duration
	// FirstAccountID is the account id of the first player, the others follow consecutively
	FirstAccountID int32
	// Voice enables a voice frame per tick
	Voice bool
}

// Stats holds the measurements of a load test
type Stats struct {
	Registry metrics.Registry

	PingRTT    metrics.Timer
	LevelData  metrics.Meter
	Broadcasts metrics.Meter
	Sent       metrics.Meter
	Errors     metrics.Counter
	Connected  metrics.Counter
}

func newStats() *Stats {
	r := metrics.NewRegistry()
	return &Stats{
		Registry:   r,
		PingRTT:    metrics.NewRegisteredTimer("ping.rtt", r),
		LevelData:  metrics.NewRegisteredMeter("recv.level_data", r),
		Broadcasts: metrics.NewRegisteredMeter("recv.broadcast", r),
		Sent:       metrics.NewRegisteredMeter("sent", r),
		Errors:     metrics.NewRegisteredCounter("errors", r),
		Connected:  metrics.NewRegisteredCounter("players.connected", r),
	}
}

// Run simulates the configured players until the duration passed or ctx is done
func Run(ctx context.Context, config Config, newTransport func() transport.IRelayClientTransport) (*Stats, error) {
	if config.Players <= 0 || config.Levels <= 0 || config.TickRate <= 0 {
		return nil, fmt.Errorf("players, levels and tick rate must be positive")
	}
	if config.FirstAccountID <= 0 {
		config.FirstAccountID = 1
	}

	ctx, cancel := context.WithTimeout(ctx, config.Duration)
	defer cancel()

	stats := newStats()
	var wg sync.WaitGroup
	for i := 0; i < config.Players; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := &bot{
				id:     config.FirstAccountID + int32(i),
				level:  int32(i%config.Levels) + 1,
				config: config,
				stats:  stats,
				rnd:    rand.New(rand.NewSource(int64(i))),
			}
			if err := b.run(ctx, newTransport()); err != nil {
				stats.Errors.Inc(1)
				Logger.Warningf("Bot %d failed: %v", b.id, err)
			}
		}(i)
	}
	wg.Wait()

	return stats, nil
}

// bot is a single simulated player
type bot struct {
	id     int32
	level  int32
	config Config
	stats  *Stats
	rnd    *rand.Rand
}

func (b *bot) run(ctx context.Context, t transport.IRelayClientTransport) error {
	c, err := client.NewRelayClient(b.config.Client, t)
	if err != nil {
		return err
	}
	defer c.Close()

	loginCtx, cancel := context.WithTimeout(ctx, time.Duration(max(1, b.config.Client.Transport.TimeoutSecond))*time.Second)
	err = c.Login(loginCtx, b.id, fmt.Sprintf("bot-%d", b.id), data.DefaultPlayerIconData())
	cancel()
	if err != nil {
		return err
	}
	b.stats.Connected.Inc(1)

	if err := c.JoinLevel(b.level); err != nil {
		return err
	}

	go b.drain(c)

	ticker := time.NewTicker(time.Second / time.Duration(b.config.TickRate))
	defer ticker.Stop()

	voice := make([]byte, voiceFrameSize)
	state := data.PlayerData{}
	for tick := 1; ; tick++ {
		select {
		case <-ctx.Done():
			return nil
		case <-c.Done():
			return client.ErrClosed
		case <-ticker.C:
		}

		state.Percentage = uint16(b.rnd.Intn(101))
		state.Attempts++
		b.count(c.SendPlayerData(state))

		if b.config.Voice {
			b.rnd.Read(voice)
			b.count(c.SendVoice(voice))
		}
		if tick%chatEvery == 0 {
			b.count(c.SendChat(fmt.Sprintf("bot %d tick %d", b.id, tick)))
		}
		if tick%b.config.TickRate == 0 {
			b.ping(ctx, c)
		}
	}
}

// ping measures the round trip time, the ping is sent on the same connection as the game packets
func (b *bot) ping(ctx context.Context, c *client.RelayClient) {
	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	res, err := c.Ping(pingCtx)
	if err != nil {
		if ctx.Err() == nil {
			b.stats.Errors.Inc(1)
		}
		return
	}
	b.stats.PingRTT.Update(res.RTT)
}

// count records the result of a send
func (b *bot) count(err error) {
	if err != nil {
		b.stats.Errors.Inc(1)
		return
	}
	b.stats.Sent.Mark(1)
}

// drain counts all received packets until the connection is closed
func (b *bot) drain(c *client.RelayClient) {
	for p := range c.Packets() {
		switch p.(type) {
		case packets.LevelDataPacket:
			b.stats.LevelData.Mark(1)
		case packets.ChatMessageBroadcastPacket, packets.VoiceBroadcastPacket:
			b.stats.Broadcasts.Mark(1)
		case packets.ServerDisconnectPacket:
			Logger.Warningf("Bot %d was disconnected by the server", b.id)
		}
	}
}
