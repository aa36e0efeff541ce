// Package view holds the View Controller: the mounted monitoring view with
// its current snapshot, tab, selection and the feed task that refreshes it.
package view

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
	"github.com/lcalzada-xor/widsview/internal/core/ports"
	"github.com/lcalzada-xor/widsview/internal/core/services/feed"
	"github.com/lcalzada-xor/widsview/internal/core/services/presenter"
	"github.com/lcalzada-xor/widsview/internal/core/services/topology"
	"github.com/lcalzada-xor/widsview/internal/telemetry"
)

// Controller implements ports.ViewService, ports.GateListener and
// ports.SelectionSink.
//
// Lock order: lifecycle, then draw, then mu. Scheduler.Start delivers the
// first snapshot synchronously, so mu is never held across Start or Stop.
type Controller struct {
	producer  ports.SnapshotProducer
	builder   *topology.Builder
	presenter *presenter.Presenter
	interval  time.Duration

	lifecycle sync.Mutex
	scheduler *feed.Scheduler

	// draw keeps scene computation and substrate draws in the same order
	draw sync.Mutex

	mu            sync.RWMutex
	state         domain.ViewState
	substrate     ports.Substrate
	observers     []ports.SnapshotObserver
	viewObservers []ports.ViewObserver
}

// Option configures a Controller.
type Option func(*Controller)

// WithInterval sets the feed refresh period.
func WithInterval(d time.Duration) Option {
	return func(c *Controller) { c.interval = d }
}

// WithBuilder replaces the default topology builder.
func WithBuilder(b *topology.Builder) Option {
	return func(c *Controller) { c.builder = b }
}

// WithSubstrate sets the rendering substrate.
func WithSubstrate(s ports.Substrate) Option {
	return func(c *Controller) { c.substrate = s }
}

// WithObservers registers snapshot observers.
func WithObservers(obs ...ports.SnapshotObserver) Option {
	return func(c *Controller) { c.observers = append(c.observers, obs...) }
}

// NewController creates an unmounted controller on the networks tab.
func NewController(producer ports.SnapshotProducer, opts ...Option) *Controller {
	c := &Controller{
		producer: producer,
		builder:  topology.NewBuilder(),
		interval: feed.DefaultInterval,
		state: domain.ViewState{
			Tab: domain.TabNetworks,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.presenter = presenter.New(c)
	c.state.Snapshot = domain.Snapshot{}.Clone()
	c.state.Topology = c.builder.Build(nil)
	c.state.Scene = c.presenter.Present(c.state.Topology, nil)
	return c
}

// SetSubstrate swaps the rendering substrate. Adapters that depend on the
// controller register themselves here after construction.
func (c *Controller) SetSubstrate(s ports.Substrate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.substrate = s
}

// AddObserver registers a snapshot observer.
func (c *Controller) AddObserver(obs ports.SnapshotObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, obs)
}

// AddViewObserver registers a listener for tab, selection and mount changes.
func (c *Controller) AddViewObserver(obs ports.ViewObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewObservers = append(c.viewObservers, obs)
}

// Mount starts the feed. The first snapshot is in place when Mount returns.
// Mounting an already mounted controller is a no-op.
func (c *Controller) Mount(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.scheduler != nil {
		return nil
	}

	c.mu.Lock()
	c.state.Mounted = true
	c.mu.Unlock()

	// the feed outlives the request that opened the gate
	sched := feed.NewScheduler(c.producer, c.interval, c.deliver)
	if err := sched.Start(context.WithoutCancel(ctx)); err != nil {
		c.mu.Lock()
		c.state.Mounted = false
		c.mu.Unlock()
		return fmt.Errorf("start feed: %w", err)
	}
	c.scheduler = sched

	slog.Info("View mounted", "interval", sched.Interval())
	c.notifyView(ctx)
	return nil
}

// Teardown stops the feed. No snapshot is produced after it returns.
// Tab and selection are kept for the next mount.
func (c *Controller) Teardown() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.scheduler == nil {
		return
	}
	c.scheduler.Stop()
	c.scheduler = nil

	c.mu.Lock()
	c.state.Mounted = false
	c.mu.Unlock()

	slog.Info("View torn down")
	c.notifyView(context.Background())
}

// Mounted reports whether the feed is running.
func (c *Controller) Mounted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Mounted
}

// State returns a copy of the view state.
func (c *Controller) State() domain.ViewState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyState()
}

// SelectTab switches the list panel. The snapshot is untouched.
func (c *Controller) SelectTab(tab domain.Tab) error {
	if !tab.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidTab, tab)
	}
	c.mu.Lock()
	changed := c.state.Tab != tab
	c.state.Tab = tab
	c.mu.Unlock()

	if changed {
		c.notifyView(context.Background())
	}
	return nil
}

// SelectNode records the selected node. The BSSID does not have to exist
// in the current snapshot and the selection survives ticks.
func (c *Controller) SelectNode(id string) {
	c.mu.Lock()
	changed := c.state.SelectedNode != id
	c.state.SelectedNode = id
	c.mu.Unlock()

	if changed {
		c.notifyView(context.Background())
	}
}

// ClearSelection drops the selected node.
func (c *Controller) ClearSelection() {
	c.SelectNode("")
}

// HandlePointer forwards a substrate interaction to the presenter and
// redraws the scene.
func (c *Controller) HandlePointer(ctx context.Context, ev domain.PointerEvent) error {
	c.draw.Lock()
	defer c.draw.Unlock()

	if err := c.presenter.HandlePointer(ev); err != nil {
		return err
	}

	c.mu.Lock()
	c.state.HoveredNode = c.presenter.Hovered()
	c.state.Scene = c.presenter.Present(c.state.Topology, c.state.Snapshot.Networks)
	scene, substrate := c.state.Scene, c.substrate
	c.mu.Unlock()

	if substrate != nil {
		substrate.Draw(ctx, scene)
	}
	return nil
}

// deliver is the scheduler callback. A failed production keeps the last
// good snapshot and marks the view stale.
func (c *Controller) deliver(ctx context.Context, snap domain.Snapshot, err error) {
	c.draw.Lock()
	defer c.draw.Unlock()

	if err != nil {
		telemetry.FeedFailures.Inc()
		c.mu.Lock()
		c.state.Stale = true
		c.mu.Unlock()
		return
	}

	topo := c.builder.BuildTraced(ctx, snap.Networks)

	c.mu.Lock()
	c.state.Snapshot = snap
	c.state.Topology = topo
	c.state.Scene = c.presenter.Present(topo, snap.Networks)
	c.state.HoveredNode = c.presenter.Hovered()
	c.state.Stale = false
	c.state.Ticks++
	scene, substrate := c.state.Scene, c.substrate
	observers := append([]ports.SnapshotObserver(nil), c.observers...)
	c.mu.Unlock()

	for _, obs := range observers {
		obs.OnSnapshot(ctx, snap.Clone())
	}
	if substrate != nil {
		substrate.Draw(ctx, scene)
	}
}

func (c *Controller) notifyView(ctx context.Context) {
	c.mu.RLock()
	state := c.copyState()
	listeners := append([]ports.ViewObserver(nil), c.viewObservers...)
	c.mu.RUnlock()

	for _, l := range listeners {
		l.OnViewChange(ctx, state)
	}
}

// copyState must be called with mu held.
func (c *Controller) copyState() domain.ViewState {
	st := c.state
	st.Snapshot = c.state.Snapshot.Clone()
	return st
}
