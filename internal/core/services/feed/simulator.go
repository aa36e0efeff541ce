package feed

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
	"github.com/lcalzada-xor/widsview/internal/telemetry"
)

var tracer = telemetry.Tracer("feed")

// Simulator is the synthetic observation feed. Each call to Produce jitters
// the canonical networks, drops alerts at random and draws new counters.
type Simulator struct {
	mu   sync.Mutex // *rand.Rand is not safe for concurrent use
	rand *rand.Rand
	now  func() time.Time
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithRand injects the randomness source.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulator) {
		s.rand = r
	}
}

// WithSeed seeds a private randomness source. Zero keeps the time-based default.
func WithSeed(seed int64) Option {
	return func(s *Simulator) {
		if seed != 0 {
			s.rand = rand.New(rand.NewSource(seed))
		}
	}
}

// WithClock injects the time source used for alert timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) {
		s.now = now
	}
}

// NewSimulator creates a feed over the canonical fixture.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Produce builds a new snapshot. It never fails.
func (s *Simulator) Produce(ctx context.Context) (domain.Snapshot, error) {
	_, span := tracer.Start(ctx, "feed.Produce")
	defer span.End()

	s.mu.Lock()
	now := s.now()
	networks := s.networks()
	alerts := s.alerts(now)
	stats := s.stats()
	s.mu.Unlock()

	snap := domain.Snapshot{
		ID:         uuid.NewString(),
		ProducedAt: now,
		Networks:   networks,
		Alerts:     alerts,
		Stats:      stats,
	}

	telemetry.SnapshotsProduced.Inc()
	for _, a := range alerts {
		telemetry.AlertsRetained.WithLabelValues(a.Type.String()).Inc()
	}
	span.SetAttributes(
		attribute.String("snapshot.id", snap.ID),
		attribute.Int("snapshot.networks", len(networks)),
		attribute.Int("snapshot.alerts", len(alerts)),
	)

	return snap, nil
}

func (s *Simulator) networks() []domain.Network {
	out := make([]domain.Network, 0, len(canonicalNetworks))
	for _, f := range canonicalNetworks {
		n := f.network
		n.SignalStrength = f.signalFloor + s.rand.Intn(signalBand)
		n.Clients = f.clientsFloor + s.rand.Intn(f.clientsBand)
		out = append(out, n)
	}
	return out
}

// alerts keeps each canonical alert independently with probability 0.7.
func (s *Simulator) alerts(now time.Time) []domain.Alert {
	out := make([]domain.Alert, 0, len(canonicalAlerts))
	for _, f := range canonicalAlerts {
		if s.rand.Float64() > alertSurvivalThreshold {
			a := f.alert
			a.Timestamp = now.Add(-f.age)
			out = append(out, a)
		}
	}
	return out
}

func (s *Simulator) stats() domain.NetworkStats {
	return domain.NetworkStats{
		TotalNetworks: baseTotalNetworks,
		AuthorizedAPs: baseAuthorizedAPs,
		RogueAPs:      baseRogueAPs,
		ActiveClients: baseActiveClients + s.rand.Intn(activeClientsBand),
		AlertsLast24h: baseAlerts24h + s.rand.Intn(alerts24hBand),
	}
}
