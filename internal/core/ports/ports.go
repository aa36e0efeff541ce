package ports

import (
	"context"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
)

// SnapshotProducer is the Observation Feed contract.
// The simulator never fails; real sources may, and the caller keeps the last
// good snapshot when they do.
type SnapshotProducer interface {
	Produce(ctx context.Context) (domain.Snapshot, error)
}

// SnapshotObserver is notified once per produced snapshot, after the View
// Controller has swapped it in.
type SnapshotObserver interface {
	OnSnapshot(ctx context.Context, snap domain.Snapshot)
}

// ViewObserver is told when the tab, selection or mount state changes.
type ViewObserver interface {
	OnViewChange(ctx context.Context, state domain.ViewState)
}

// Substrate is the rendering capability: it accepts a declarative scene.
// Pointer interactions travel the other way through ViewService.HandlePointer.
type Substrate interface {
	Draw(ctx context.Context, scene domain.Scene)
}

// SelectionSink receives click selections from the Scene Presenter.
type SelectionSink interface {
	SelectNode(id string)
}

// GateListener is mounted while the authentication gate is open and torn
// down when it closes.
type GateListener interface {
	Mount(ctx context.Context) error
	Teardown()
}

// ViewService is what the outer adapters (HTTP, websocket, gRPC) see of the
// View Controller: read-only state plus intents.
type ViewService interface {
	State() domain.ViewState
	Mounted() bool
	SelectTab(tab domain.Tab) error
	SelectNode(id string)
	ClearSelection()
	HandlePointer(ctx context.Context, ev domain.PointerEvent) error
}

// VendorResolver names the manufacturer behind a BSSID for display.
type VendorResolver interface {
	Vendor(ctx context.Context, bssid string) string
}
