package storage

import (
	"time"

	"github.com/google/uuid"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
)

// TickModel is the GORM model for one produced snapshot.
type TickModel struct {
	ID              string    `gorm:"primaryKey"`
	SnapshotID      string    `gorm:"index"`
	ProducedAt      time.Time `gorm:"index"`
	NetworkCount    int
	SuspiciousCount int
	AlertCount      int
	ActiveClients   int
	AlertsLast24h   int
}

// SightingModel is the GORM model for an alert seen across ticks.
type SightingModel struct {
	AlertID   string `gorm:"primaryKey"`
	Type      int
	Severity  int
	Network   string
	FirstSeen time.Time
	LastSeen  time.Time
	Sightings int
}

// toTickModel converts a snapshot into its journal row.
func toTickModel(s domain.Snapshot) TickModel {
	return TickModel{
		ID:              uuid.New().String(),
		SnapshotID:      s.ID,
		ProducedAt:      s.ProducedAt,
		NetworkCount:    len(s.Networks),
		SuspiciousCount: s.SuspiciousCount(),
		AlertCount:      len(s.Alerts),
		ActiveClients:   s.Stats.ActiveClients,
		AlertsLast24h:   s.Stats.AlertsLast24h,
	}
}

func toTickRecord(m TickModel) domain.TickRecord {
	return domain.TickRecord{
		SnapshotID:      m.SnapshotID,
		ProducedAt:      m.ProducedAt,
		NetworkCount:    m.NetworkCount,
		SuspiciousCount: m.SuspiciousCount,
		AlertCount:      m.AlertCount,
		ActiveClients:   m.ActiveClients,
		AlertsLast24h:   m.AlertsLast24h,
	}
}

// toSightingModel starts a sighting row for an alert first seen at seen.
func toSightingModel(a domain.Alert, seen time.Time) SightingModel {
	return SightingModel{
		AlertID:   a.ID,
		Type:      int(a.Type),
		Severity:  int(a.Severity),
		Network:   a.Network,
		FirstSeen: seen,
		LastSeen:  seen,
		Sightings: 1,
	}
}

func toAlertSighting(m SightingModel) domain.AlertSighting {
	return domain.AlertSighting{
		AlertID:   m.AlertID,
		Type:      domain.AlertType(m.Type),
		Severity:  domain.Severity(m.Severity),
		Network:   m.Network,
		FirstSeen: m.FirstSeen,
		LastSeen:  m.LastSeen,
		Sightings: m.Sightings,
	}
}
