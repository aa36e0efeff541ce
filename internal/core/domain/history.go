package domain

import "time"

// TickRecord summarises one produced snapshot.
type TickRecord struct {
	SnapshotID      string    `json:"snapshot_id"`
	ProducedAt      time.Time `json:"produced_at"`
	NetworkCount    int       `json:"network_count"`
	SuspiciousCount int       `json:"suspicious_count"`
	AlertCount      int       `json:"alert_count"`
	ActiveClients   int       `json:"active_clients"`
	AlertsLast24h   int       `json:"alerts_last_24h"`
}

// AlertSighting tracks how often a canonical alert was present across ticks.
type AlertSighting struct {
	AlertID   string    `json:"alert_id"`
	Type      AlertType `json:"type"`
	Severity  Severity  `json:"severity"`
	Network   string    `json:"network"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	Sightings int       `json:"sightings"`
}

// History is the session journal returned to the page chrome.
type History struct {
	Ticks     []TickRecord    `json:"ticks"`
	Sightings []AlertSighting `json:"sightings"`
}
