package handlers

import (
	"net/http"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
	"github.com/lcalzada-xor/widsview/internal/core/ports"
)

// StaleHeader is set on snapshot responses served from the last good snapshot
const StaleHeader = "X-Snapshot-Stale"

// SnapshotHandler serves read-only projections of the current snapshot
type SnapshotHandler struct {
	View    ports.ViewService
	Vendors ports.VendorResolver
}

// NewSnapshotHandler creates a new SnapshotHandler. vendors may be nil.
func NewSnapshotHandler(view ports.ViewService, vendors ports.VendorResolver) *SnapshotHandler {
	return &SnapshotHandler{View: view, Vendors: vendors}
}

// NetworkRow is a network list row as rendered by the dashboard
type NetworkRow struct {
	domain.Network
	Vendor   string `json:"vendor,omitempty"`
	Secure   bool   `json:"secure"`
	Selected bool   `json:"selected"`
}

// AlertCard is an alert list card with its display colours
type AlertCard struct {
	domain.Alert
	Color       domain.Color `json:"color"`
	StatusColor domain.Color `json:"statusColor"`
}

func (h *SnapshotHandler) state(w http.ResponseWriter) domain.ViewState {
	st := h.View.State()
	if st.Stale {
		w.Header().Set(StaleHeader, "true")
	}
	return st
}

// HandleSnapshot returns the whole current snapshot
func (h *SnapshotHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state(w).Snapshot)
}

// HandleNetworks returns the network rows with resolved vendors
func (h *SnapshotHandler) HandleNetworks(w http.ResponseWriter, r *http.Request) {
	st := h.state(w)

	rows := make([]NetworkRow, 0, len(st.Snapshot.Networks))
	for _, n := range st.Snapshot.Networks {
		row := NetworkRow{
			Network:  n,
			Secure:   n.Encryption == domain.EncryptionWPA3,
			Selected: n.BSSID == st.SelectedNode,
		}
		if h.Vendors != nil {
			row.Vendor = h.Vendors.Vendor(r.Context(), n.BSSID)
		}
		rows = append(rows, row)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"networks": rows,
		"selected": st.SelectedNode,
	})
}

// HandleAlerts returns the alert cards coloured by severity. An optional
// min_severity query keeps only alerts at that level or above.
func (h *SnapshotHandler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	floor := domain.SeverityLow
	if v := r.URL.Query().Get("min_severity"); v != "" {
		if err := floor.UnmarshalText([]byte(v)); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid min_severity")
			return
		}
	}
	st := h.state(w)

	cards := make([]AlertCard, 0, len(st.Snapshot.Alerts))
	for _, a := range st.Snapshot.Alerts {
		if !a.Severity.AtLeast(floor) {
			continue
		}
		cards = append(cards, AlertCard{
			Alert:       a,
			Color:       a.Severity.Color(),
			StatusColor: a.Status.Color(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": cards})
}

// HandleStats returns the stat card counters
func (h *SnapshotHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state(w).Snapshot.Stats)
}

// HandleTopology returns the nodes and edges of the current snapshot
func (h *SnapshotHandler) HandleTopology(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state(w).Topology)
}

// HandleScene returns the scene last handed to the substrate
func (h *SnapshotHandler) HandleScene(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state(w).Scene)
}
