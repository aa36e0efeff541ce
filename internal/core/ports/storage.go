package ports

import (
	"context"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
)

// Journal keeps a record of the snapshots seen while the view is mounted.
// It lives only as long as the process; nothing survives a restart.
type Journal interface {
	SnapshotObserver
	History(ctx context.Context, limit int) (domain.History, error)
	Reset(ctx context.Context) error
	Close() error
}
