package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
	"github.com/lcalzada-xor/widsview/internal/core/ports"
)

// Journal implements ports.Journal on an in-memory SQLite database.
// Nothing is written to disk and the data is gone once the journal closes.
type Journal struct {
	db *gorm.DB
}

// memoryDSN names a private shared-cache in-memory database so every pooled
// connection sees the same tables.
func memoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

// NewJournal opens a fresh journal and migrates its schema.
func NewJournal() (*Journal, error) {
	db, err := gorm.Open(sqlite.Open(memoryDSN("journal-"+uuid.New().String())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("journal tracing: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// one connection keeps the in-memory database alive and writes serialised
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&TickModel{}, &SightingModel{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}

	return &Journal{db: db}, nil
}

// OnSnapshot records a tick and refreshes the sightings of its alerts.
func (j *Journal) OnSnapshot(ctx context.Context, snap domain.Snapshot) {
	if err := j.record(ctx, snap); err != nil {
		slog.Warn("Journal write failed", "snapshot", snap.ID, "error", err)
	}
}

func (j *Journal) record(ctx context.Context, snap domain.Snapshot) error {
	seen := snap.ProducedAt
	if seen.IsZero() {
		seen = time.Now()
	}

	return j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tick := toTickModel(snap)
		if err := tx.Create(&tick).Error; err != nil {
			return err
		}

		for _, a := range snap.Alerts {
			row := toSightingModel(a, seen)
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "alert_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"last_seen": seen,
					"sightings": gorm.Expr("sightings + 1"),
				}),
			}).Create(&row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// History returns the most recent ticks first, at most limit of them
// (limit <= 0 means all), and every alert sighting.
func (j *Journal) History(ctx context.Context, limit int) (domain.History, error) {
	db := j.db.WithContext(ctx)

	var ticks []TickModel
	q := db.Order("produced_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&ticks).Error; err != nil {
		return domain.History{}, err
	}

	var sightings []SightingModel
	if err := db.Order("alert_id").Find(&sightings).Error; err != nil {
		return domain.History{}, err
	}

	h := domain.History{
		Ticks:     make([]domain.TickRecord, len(ticks)),
		Sightings: make([]domain.AlertSighting, len(sightings)),
	}
	for i, m := range ticks {
		h.Ticks[i] = toTickRecord(m)
	}
	for i, m := range sightings {
		h.Sightings[i] = toAlertSighting(m)
	}
	return h, nil
}

// Reset drops every recorded row.
func (j *Journal) Reset(ctx context.Context) error {
	return j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&TickModel{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&SightingModel{}).Error
	})
}

// Mount starts a fresh journal for a new monitoring session.
func (j *Journal) Mount(ctx context.Context) error {
	return j.Reset(ctx)
}

// Teardown keeps the rows readable until the next mount.
func (j *Journal) Teardown() {}

func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure interface compliance
var (
	_ ports.Journal      = (*Journal)(nil)
	_ ports.GateListener = (*Journal)(nil)
)
