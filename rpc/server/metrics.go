package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ValentinKolb/dRelay/lib/packet"
	"github.com/ValentinKolb/dRelay/lib/players"
	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MetricsPath is the route the metrics are served on (prometheus text format)
const MetricsPath = "/metrics"

// drop reasons
const (
	dropUnknown         = "unknown"
	dropMalformed       = "malformed"
	dropUnauthenticated = "unauthenticated"
	dropMismatch        = "mismatch"
	dropBacklog         = "backlog"
)

// relayMetrics holds all metrics of a relay server. Every server has its own set,
// so several servers (e.g. in tests) can run in one process.
type relayMetrics struct {
	set *metrics.Set

	received *metrics.Counter
	sent     *metrics.Counter
	dropped  map[string]*metrics.Counter
	fanout   *metrics.Histogram
}

func newRelayMetrics(pm *players.PlayerManager, sessionCount func() int) *relayMetrics {
	set := metrics.NewSet()

	m := &relayMetrics{
		set:      set,
		received: set.NewCounter("drelay_packets_received_total"),
		sent:     set.NewCounter("drelay_packets_sent_total"),
		dropped:  make(map[string]*metrics.Counter),
		fanout:   set.NewHistogram("drelay_broadcast_fanout"),
	}
	for _, reason := range []string{dropUnknown, dropMalformed, dropUnauthenticated, dropMismatch, dropBacklog} {
		m.dropped[reason] = set.NewCounter(fmt.Sprintf(`drelay_packets_dropped_total{reason=%q}`, reason))
	}

	set.NewGauge("drelay_players_online", func() float64 { return float64(pm.PlayerCount()) })
	set.NewGauge("drelay_levels_active", func() float64 { return float64(pm.LevelCount()) })
	set.NewGauge("drelay_sessions", func() float64 { return float64(sessionCount()) })

	return m
}

// drop counts a dropped packet
func (m *relayMetrics) drop(reason string) {
	m.dropped[reason].Inc()
}

// dropDecodeError counts a packet that could not be decoded
func (m *relayMetrics) dropDecodeError(err error) {
	switch {
	case errors.Is(err, packet.ErrUnknownPacket):
		m.drop(dropUnknown)
	case errors.Is(err, packet.ErrConfidentialityMismatch):
		m.drop(dropMismatch)
	default:
		m.drop(dropMalformed)
	}
}

// Dropped returns the number of packets dropped for reason
func (m *relayMetrics) Dropped(reason string) uint64 {
	if c, ok := m.dropped[reason]; ok {
		return c.Get()
	}
	return 0
}

// --------------------------------------------------------------------------
// Metrics Endpoint
// --------------------------------------------------------------------------

// handler returns the http routes of the metrics endpoint
func (m *relayMetrics) handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(MetricsPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		m.set.WritePrometheus(w)
	})
	return r
}

// serve starts the metrics http server on endpoint. The returned server is already listening.
func (m *relayMetrics) serve(endpoint string) (*http.Server, error) {
	listener, err := net.Listen("tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on metrics endpoint: %w", err)
	}

	srv := &http.Server{
		Handler:           m.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		Logger.Infof("Serving metrics on http://%s%s", listener.Addr(), MetricsPath)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Errorf("Metrics server failed: %v", err)
		}
	}()
	return srv, nil
}
