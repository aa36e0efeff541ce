package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
	"github.com/lcalzada-xor/widsview/internal/core/ports"
)

// DefaultInterval is the refresh period of the feed.
const DefaultInterval = 5 * time.Second

var ErrAlreadyRunning = errors.New("feed scheduler already running")

// DeliverFunc receives each production result. err is non-nil only for
// producers backed by real sources.
type DeliverFunc func(ctx context.Context, snap domain.Snapshot, err error)

// Scheduler invokes a producer once on Start and then on a fixed interval
// until Stop. Once Stop returns no further production happens.
type Scheduler struct {
	producer ports.SnapshotProducer
	interval time.Duration
	deliver  DeliverFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a scheduler. A non-positive interval falls back to DefaultInterval.
func NewScheduler(producer ports.SnapshotProducer, interval time.Duration, deliver DeliverFunc) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		producer: producer,
		interval: interval,
		deliver:  deliver,
	}
}

// Interval returns the refresh period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Running reports whether the refresh task is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Start produces the first snapshot synchronously, then starts the refresh task.
// The task also ends when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	s.tick(runCtx)

	go s.loop(runCtx, done)
	return nil
}

// Stop cancels the refresh task and waits for it to exit. Safe to call repeatedly.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// select picks randomly when both are ready
			if ctx.Err() != nil {
				return
			}
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	snap, err := s.producer.Produce(ctx)
	if err != nil {
		slog.Warn("Snapshot production failed", "error", err)
	}
	if s.deliver != nil {
		s.deliver(ctx, snap, err)
	}
}
