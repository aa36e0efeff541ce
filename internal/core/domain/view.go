package domain

import "errors"

var ErrInvalidTab = errors.New("invalid tab")

// Tab is the list panel shown below the map. Exactly one is active.
type Tab string

const (
	TabNetworks Tab = "networks"
	TabAlerts   Tab = "alerts"
)

// IsValid reports whether t is a known tab.
func (t Tab) IsValid() bool {
	switch t {
	case TabNetworks, TabAlerts:
		return true
	}
	return false
}

// ViewState is everything the View Controller holds.
// SelectedNode may name a BSSID that is absent from the current snapshot.
type ViewState struct {
	Snapshot     Snapshot `json:"snapshot"`
	Topology     Topology `json:"topology"`
	Scene        Scene    `json:"scene"`
	Tab          Tab      `json:"tab"`
	SelectedNode string   `json:"selectedNode,omitempty"`
	HoveredNode  string   `json:"hoveredNode,omitempty"`
	Stale        bool     `json:"stale"`
	Mounted      bool     `json:"mounted"`
	Ticks        uint64   `json:"ticks"`
}

// ViewSummary is the view state without the heavy snapshot and scene payloads.
type ViewSummary struct {
	SnapshotID   string `json:"snapshotId,omitempty"`
	Tab          Tab    `json:"tab"`
	SelectedNode string `json:"selectedNode,omitempty"`
	HoveredNode  string `json:"hoveredNode,omitempty"`
	Stale        bool   `json:"stale"`
	Mounted      bool   `json:"mounted"`
	Ticks        uint64 `json:"ticks"`
}

// Summary drops the snapshot, topology and scene.
func (v ViewState) Summary() ViewSummary {
	return ViewSummary{
		SnapshotID:   v.Snapshot.ID,
		Tab:          v.Tab,
		SelectedNode: v.SelectedNode,
		HoveredNode:  v.HoveredNode,
		Stale:        v.Stale,
		Mounted:      v.Mounted,
		Ticks:        v.Ticks,
	}
}
