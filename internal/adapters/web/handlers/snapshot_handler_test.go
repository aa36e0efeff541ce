package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/widsview/internal/adapters/web"
	"github.com/lcalzada-xor/widsview/internal/core/domain"
)

func TestSnapshotHandler_Networks(t *testing.T) {
	vendors := stubVendors{"00:11:22:33:44:55": "Cimsys"}
	h := NewSnapshotHandler(newViewMock(), vendors)

	rec := httptest.NewRecorder()
	h.HandleNetworks(rec, httptest.NewRequest(http.MethodGet, "/api/networks", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Networks []struct {
			SSID       string `json:"ssid"`
			BSSID      string `json:"bssid"`
			Encryption string `json:"encryption"`
			Vendor     string `json:"vendor"`
			Secure     bool   `json:"secure"`
			Suspicious bool   `json:"suspicious"`
			Selected   bool   `json:"selected"`
		} `json:"networks"`
		Selected string `json:"selected"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Networks, 3)

	first := resp.Networks[0]
	assert.Equal(t, "Corporate-WiFi", first.SSID)
	assert.Equal(t, "WPA3", first.Encryption)
	assert.Equal(t, "Cimsys", first.Vendor)
	assert.True(t, first.Secure)
	assert.False(t, first.Suspicious)

	second := resp.Networks[1]
	assert.False(t, second.Secure)
	assert.True(t, second.Suspicious)
	assert.True(t, second.Selected)
	assert.Equal(t, "Unknown", second.Vendor)

	assert.Equal(t, "Open", resp.Networks[2].Encryption)
	assert.Equal(t, "00:11:22:33:44:56", resp.Selected)
}

func TestSnapshotHandler_NetworksWithoutVendors(t *testing.T) {
	rec := httptest.NewRecorder()
	NewSnapshotHandler(newViewMock(), nil).HandleNetworks(rec, httptest.NewRequest(http.MethodGet, "/api/networks", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"vendor"`)
}

func TestSnapshotHandler_Alerts(t *testing.T) {
	rec := httptest.NewRecorder()
	NewSnapshotHandler(newViewMock(), nil).HandleAlerts(rec, httptest.NewRequest(http.MethodGet, "/api/alerts", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Alerts []struct {
			ID          string `json:"id"`
			Type        string `json:"type"`
			Severity    string `json:"severity"`
			Status      string `json:"status"`
			Color       string `json:"color"`
			StatusColor string `json:"statusColor"`
		} `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Alerts, 2)

	assert.Equal(t, "Evil Twin", resp.Alerts[0].Type)
	assert.Equal(t, "Critical", resp.Alerts[0].Severity)
	assert.Equal(t, string(domain.ColorSeverityCritical), resp.Alerts[0].Color)
	assert.Equal(t, string(domain.ColorStatusNew), resp.Alerts[0].StatusColor)

	assert.Equal(t, "High", resp.Alerts[1].Severity)
	assert.Equal(t, string(domain.ColorSeverityHigh), resp.Alerts[1].Color)
	assert.Equal(t, "Investigating", resp.Alerts[1].Status)
}

func TestSnapshotHandler_AlertsMinSeverity(t *testing.T) {
	h := NewSnapshotHandler(newViewMock(), nil)

	rec := httptest.NewRecorder()
	h.HandleAlerts(rec, httptest.NewRequest(http.MethodGet, "/api/alerts?min_severity=Critical", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Alerts []struct {
			Severity string `json:"severity"`
		} `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, "Critical", resp.Alerts[0].Severity)

	rec = httptest.NewRecorder()
	h.HandleAlerts(rec, httptest.NewRequest(http.MethodGet, "/api/alerts?min_severity=High", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Alerts, 2)

	rec = httptest.NewRecorder()
	h.HandleAlerts(rec, httptest.NewRequest(http.MethodGet, "/api/alerts?min_severity=severe", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid min_severity")
}

func TestSnapshotHandler_Projections(t *testing.T) {
	h := NewSnapshotHandler(newViewMock(), nil)

	rec := httptest.NewRecorder()
	h.HandleSnapshot(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "snap-42", snap.ID)
	assert.Len(t, snap.Networks, 3)
	assert.Empty(t, rec.Header().Get(StaleHeader))

	rec = httptest.NewRecorder()
	h.HandleStats(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	var stats domain.NetworkStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, domain.NetworkStats{TotalNetworks: 5, AuthorizedAPs: 3, RogueAPs: 2, ActiveClients: 41, AlertsLast24h: 5}, stats)

	rec = httptest.NewRecorder()
	h.HandleTopology(rec, httptest.NewRequest(http.MethodGet, "/api/topology", nil))
	var topo domain.Topology
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &topo))
	assert.Len(t, topo.Nodes, 2)
	require.Len(t, topo.Edges, 1)
	assert.Equal(t, 6, topo.Edges[0].Channel)

	rec = httptest.NewRecorder()
	h.HandleScene(rec, httptest.NewRequest(http.MethodGet, "/api/scene", nil))
	var scene domain.Scene
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scene))
	assert.Len(t, scene.Spheres, 1)
}

func TestSnapshotHandler_StaleHeader(t *testing.T) {
	st := fixtureState()
	st.Stale = true
	view := new(web.MockViewService)
	view.On("State").Return(st)

	rec := httptest.NewRecorder()
	NewSnapshotHandler(view, nil).HandleSnapshot(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get(StaleHeader))
}
