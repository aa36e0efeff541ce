// Package grpc serves a read-only mirror of the monitoring view to
// non-browser clients.
package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
	"github.com/lcalzada-xor/widsview/internal/core/ports"
)

// watchBuffer is how many ticks a slow watcher may lag before ticks are dropped.
const watchBuffer = 4

var errNotMounted = status.Error(codes.Unavailable, "monitoring view not mounted")

// Monitor implements MonitorServer. It also observes the view so that
// watchers get one message per tick and are released on teardown.
type Monitor struct {
	view ports.ViewService

	mu       sync.Mutex
	watchers map[chan domain.Snapshot]struct{}
}

// NewMonitor creates the service over the view.
func NewMonitor(view ports.ViewService) *Monitor {
	return &Monitor{
		view:     view,
		watchers: make(map[chan domain.Snapshot]struct{}),
	}
}

// NewGrpcServer creates a grpc.Server with the Monitor registered.
func NewGrpcServer(m *Monitor, opts ...grpc.ServerOption) *grpc.Server {
	s := grpc.NewServer(opts...)
	s.RegisterService(&MonitorServiceDesc, m)
	return s
}

func (m *Monitor) GetSnapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if !m.view.Mounted() {
		return nil, errNotMounted
	}
	return toStruct(m.view.State().Snapshot)
}

func (m *Monitor) GetTopology(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if !m.view.Mounted() {
		return nil, errNotMounted
	}
	return toStruct(m.view.State().Topology)
}

// WatchSnapshots sends the current snapshot, then one per tick until the
// client leaves or the view is torn down.
func (m *Monitor) WatchSnapshots(_ *emptypb.Empty, stream grpc.ServerStream) error {
	if !m.view.Mounted() {
		return errNotMounted
	}

	ch := m.subscribe()
	defer m.unsubscribe(ch)
	if !m.view.Mounted() {
		return errNotMounted
	}

	if err := m.send(stream, m.view.State().Snapshot); err != nil {
		return err
	}

	for {
		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case snap, ok := <-ch:
			if !ok {
				return status.Error(codes.Unavailable, "monitoring view torn down")
			}
			if err := m.send(stream, snap); err != nil {
				return err
			}
		}
	}
}

// OnSnapshot implements ports.SnapshotObserver.
func (m *Monitor) OnSnapshot(ctx context.Context, snap domain.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.watchers {
		select {
		case ch <- snap:
		default:
			slog.Warn("Dropping snapshot for slow watcher", "snapshot", snap.ID)
		}
	}
}

// OnViewChange implements ports.ViewObserver. Teardown ends every stream.
func (m *Monitor) OnViewChange(ctx context.Context, state domain.ViewState) {
	if !state.Mounted {
		m.Close()
	}
}

// Close ends every open stream.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.watchers {
		close(ch)
		delete(m.watchers, ch)
	}
}

// Watchers returns the number of open streams.
func (m *Monitor) Watchers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.watchers)
}

func (m *Monitor) subscribe() chan domain.Snapshot {
	ch := make(chan domain.Snapshot, watchBuffer)
	m.mu.Lock()
	m.watchers[ch] = struct{}{}
	m.mu.Unlock()
	return ch
}

func (m *Monitor) unsubscribe(ch chan domain.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.watchers[ch]; ok {
		close(ch)
		delete(m.watchers, ch)
	}
}

func (m *Monitor) send(stream grpc.ServerStream, snap domain.Snapshot) error {
	msg, err := toStruct(snap)
	if err != nil {
		return err
	}
	return stream.SendMsg(msg)
}

// toStruct carries a domain value over the wire in its JSON shape.
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode: %v", err))
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode: %v", err))
	}
	return out, nil
}

var (
	_ MonitorServer          = (*Monitor)(nil)
	_ ports.SnapshotObserver = (*Monitor)(nil)
	_ ports.ViewObserver     = (*Monitor)(nil)
)
