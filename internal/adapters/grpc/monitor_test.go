package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
	"github.com/lcalzada-xor/widsview/internal/core/services/feed"
	"github.com/lcalzada-xor/widsview/internal/core/services/view"
)

const bufSize = 1024 * 1024

func setup(t *testing.T, interval time.Duration) (*view.Controller, *Monitor, *MonitorClient) {
	t.Helper()

	controller := view.NewController(feed.NewSimulator(feed.WithSeed(21)), view.WithInterval(interval))
	monitor := NewMonitor(controller)
	controller.AddObserver(monitor)
	controller.AddViewObserver(monitor)
	t.Cleanup(controller.Teardown)

	lis := bufconn.Listen(bufSize)
	srv := NewGrpcServer(monitor)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return controller, monitor, NewMonitorClient(conn)
}

func TestMonitor_UnavailableWhileUnmounted(t *testing.T) {
	_, _, client := setup(t, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.GetSnapshot(ctx)
	assert.Equal(t, codes.Unavailable, status.Code(err))

	_, err = client.GetTopology(ctx)
	assert.Equal(t, codes.Unavailable, status.Code(err))

	stream, err := client.WatchSnapshots(ctx)
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestMonitor_GetSnapshotAndTopology(t *testing.T) {
	controller, _, client := setup(t, time.Hour)
	require.NoError(t, controller.Mount(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := client.GetSnapshot(ctx)
	require.NoError(t, err)
	st := controller.State()
	assert.Equal(t, st.Snapshot.ID, snap.Fields["id"].GetStringValue())

	networks := snap.Fields["networks"].GetListValue().GetValues()
	require.Len(t, networks, 5)
	first := networks[0].GetStructValue().GetFields()
	assert.Equal(t, "Corporate-WiFi", first["ssid"].GetStringValue())
	assert.Equal(t, "WPA3", first["encryption"].GetStringValue())

	stats := snap.Fields["stats"].GetStructValue().GetFields()
	assert.Equal(t, float64(5), stats["totalNetworks"].GetNumberValue())

	topo, err := client.GetTopology(ctx)
	require.NoError(t, err)
	assert.Len(t, topo.Fields["nodes"].GetListValue().GetValues(), 5)
	assert.Len(t, topo.Fields["edges"].GetListValue().GetValues(), 3)
}

func TestMonitor_WatchOneMessagePerTick(t *testing.T) {
	controller, monitor, client := setup(t, 20*time.Millisecond)
	require.NoError(t, controller.Mount(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.WatchSnapshots(ctx)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for len(seen) < 3 {
		msg, err := stream.Recv()
		require.NoError(t, err)
		id := msg.Fields["id"].GetStringValue()
		require.NotEmpty(t, id)
		seen[id] = true
	}
	assert.Equal(t, 1, monitor.Watchers())

	// teardown ends the stream
	controller.Teardown()
	for {
		_, err := stream.Recv()
		if err != nil {
			assert.Equal(t, codes.Unavailable, status.Code(err))
			break
		}
	}
	require.Eventually(t, func() bool { return monitor.Watchers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestMonitor_ClientCancelReleasesWatcher(t *testing.T) {
	controller, monitor, client := setup(t, time.Hour)
	require.NoError(t, controller.Mount(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := client.WatchSnapshots(ctx)
	require.NoError(t, err)
	_, err = stream.Recv()
	require.NoError(t, err)
	require.Equal(t, 1, monitor.Watchers())

	cancel()
	require.Eventually(t, func() bool { return monitor.Watchers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestMonitor_SlowWatcherDropsTicks(t *testing.T) {
	m := NewMonitor(nil)
	ch := m.subscribe()
	for i := 0; i < watchBuffer+3; i++ {
		m.OnSnapshot(context.Background(), domain.Snapshot{ID: "s"})
	}
	assert.Len(t, ch, watchBuffer)

	m.OnViewChange(context.Background(), domain.ViewState{Mounted: true})
	assert.Equal(t, 1, m.Watchers())
	m.OnViewChange(context.Background(), domain.ViewState{Mounted: false})
	assert.Equal(t, 0, m.Watchers())
	m.unsubscribe(ch)
}

func TestMonitor_CloseEndsStreams(t *testing.T) {
	controller, monitor, client := setup(t, time.Hour)
	require.NoError(t, controller.Mount(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stream, err := client.WatchSnapshots(ctx)
	require.NoError(t, err)
	_, err = stream.Recv()
	require.NoError(t, err)

	monitor.Close()
	_, err = stream.Recv()
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.True(t, controller.Mounted())
}
