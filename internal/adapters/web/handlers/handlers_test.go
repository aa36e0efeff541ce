package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/lcalzada-xor/widsview/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/widsview/internal/core/domain"
)

func fixtureState() domain.ViewState {
	return domain.ViewState{
		Snapshot: domain.Snapshot{
			ID:         "snap-42",
			ProducedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Networks: []domain.Network{
				{SSID: "Corporate-WiFi", BSSID: "00:11:22:33:44:55", Channel: 6, SignalStrength: -50, Encryption: domain.EncryptionWPA3, Clients: 17},
				{SSID: "Corporate-WiFi", BSSID: "00:11:22:33:44:56", Channel: 6, SignalStrength: -55, Encryption: domain.EncryptionWPA2, Clients: 3, Suspicious: true},
				{SSID: "Free-WiFi", BSSID: "00:11:22:33:44:59", Channel: 6, SignalStrength: -70, Encryption: domain.EncryptionOpen, Clients: 1, Suspicious: true},
			},
			Alerts: []domain.Alert{
				{ID: "1", Type: domain.AlertEvilTwin, Severity: domain.SeverityCritical, Network: "Corporate-WiFi", Status: domain.StatusNew},
				{ID: "2", Type: domain.AlertDeauthAttack, Severity: domain.SeverityHigh, Network: "Guest-Network", Status: domain.StatusInvestigating},
			},
			Stats: domain.NetworkStats{TotalNetworks: 5, AuthorizedAPs: 3, RogueAPs: 2, ActiveClients: 41, AlertsLast24h: 5},
		},
		Topology: domain.Topology{
			Nodes: []domain.TopologyNode{{ID: "00:11:22:33:44:55"}, {ID: "00:11:22:33:44:56"}},
			Edges: []domain.TopologyEdge{{From: "00:11:22:33:44:55", To: "00:11:22:33:44:56", Channel: 6}},
		},
		Scene:        domain.Scene{Spheres: []domain.SphereNode{{ID: "00:11:22:33:44:55", Scale: 1}}},
		Tab:          domain.TabNetworks,
		SelectedNode: "00:11:22:33:44:56",
		Mounted:      true,
		Ticks:        7,
	}
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withSession(req *http.Request, username string) *http.Request {
	session := &domain.Session{Token: "tok", Username: username, ExpiresAt: time.Now().Add(time.Hour)}
	return req.WithContext(context.WithValue(req.Context(), middleware.SessionContextKey, session))
}

type stubVendors map[string]string

func (s stubVendors) Vendor(ctx context.Context, bssid string) string {
	if v, ok := s[bssid]; ok {
		return v
	}
	return "Unknown"
}
