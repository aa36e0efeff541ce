package feed

import (
	"time"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
)

// networkFixture is one canonical access point. Only the signal and client
// count are jittered per snapshot.
type networkFixture struct {
	network      domain.Network
	signalFloor  int
	clientsFloor int
	clientsBand  int
}

// signalBand is the width of the signal jitter above each network's floor.
const signalBand = 10

// The two Corporate-WiFi entries share an SSID on purpose: the :56 one is the
// evil twin and is always flagged.
var canonicalNetworks = []networkFixture{
	{
		network: domain.Network{
			SSID: "Corporate-WiFi", BSSID: "00:11:22:33:44:55", Channel: 6,
			Encryption: domain.EncryptionWPA3, Suspicious: false,
		},
		signalFloor: -55, clientsFloor: 15, clientsBand: 5,
	},
	{
		network: domain.Network{
			SSID: "Corporate-WiFi", BSSID: "00:11:22:33:44:56", Channel: 6,
			Encryption: domain.EncryptionWPA2, Suspicious: true,
		},
		signalFloor: -58, clientsFloor: 2, clientsBand: 3,
	},
	{
		network: domain.Network{
			SSID: "Guest-Network", BSSID: "00:11:22:33:44:57", Channel: 11,
			Encryption: domain.EncryptionWPA2, Suspicious: false,
		},
		signalFloor: -65, clientsFloor: 8, clientsBand: 4,
	},
	{
		network: domain.Network{
			SSID: "IoT-Network", BSSID: "00:11:22:33:44:58", Channel: 1,
			Encryption: domain.EncryptionWPA2, Suspicious: false,
		},
		signalFloor: -70, clientsFloor: 12, clientsBand: 6,
	},
	{
		network: domain.Network{
			SSID: "Free-WiFi", BSSID: "00:11:22:33:44:59", Channel: 6,
			Encryption: domain.EncryptionOpen, Suspicious: true,
		},
		signalFloor: -75, clientsFloor: 1, clientsBand: 2,
	},
}

type alertFixture struct {
	alert domain.Alert
	age   time.Duration
}

var canonicalAlerts = []alertFixture{
	{
		alert: domain.Alert{
			ID:          "1",
			Type:        domain.AlertEvilTwin,
			Severity:    domain.SeverityCritical,
			Description: "Potential evil twin attack detected. Duplicate SSID with different BSSID.",
			Network:     "Corporate-WiFi",
			Status:      domain.StatusNew,
		},
	},
	{
		alert: domain.Alert{
			ID:          "2",
			Type:        domain.AlertDeauthAttack,
			Severity:    domain.SeverityHigh,
			Description: "Multiple deauthentication frames detected from unauthorized device.",
			Network:     "Guest-Network",
			Status:      domain.StatusInvestigating,
		},
		age: 30 * time.Minute,
	},
	{
		alert: domain.Alert{
			ID:          "3",
			Type:        domain.AlertWPACracking,
			Severity:    domain.SeverityCritical,
			Description: "Suspicious WPA handshake capture attempts detected.",
			Network:     "IoT-Network",
			Status:      domain.StatusNew,
		},
		age: 60 * time.Minute,
	},
	{
		alert: domain.Alert{
			ID:          "4",
			Type:        domain.AlertRogueAP,
			Severity:    domain.SeverityHigh,
			Description: "Unauthorized access point detected in the network vicinity.",
			Network:     "Free-WiFi",
			Status:      domain.StatusNew,
		},
		age: 120 * time.Minute,
	},
}

// alertSurvivalThreshold: an alert is kept when its uniform draw exceeds it.
const alertSurvivalThreshold = 0.3

// Baseline aggregate counters.
const (
	baseTotalNetworks = 5
	baseAuthorizedAPs = 3
	baseRogueAPs      = 2
	baseActiveClients = 38
	activeClientsBand = 10
	baseAlerts24h     = 4
	alerts24hBand     = 3
)

// CanonicalAlerts returns every canonical alert stamped relative to now.
// Produced snapshots contain a subset of these, unchanged.
func CanonicalAlerts(now time.Time) []domain.Alert {
	out := make([]domain.Alert, 0, len(canonicalAlerts))
	for _, f := range canonicalAlerts {
		a := f.alert
		a.Timestamp = now.Add(-f.age)
		out = append(out, a)
	}
	return out
}

// CanonicalNetworks returns the fixed part of every canonical network, with
// signal and clients at their floors.
func CanonicalNetworks() []domain.Network {
	out := make([]domain.Network, 0, len(canonicalNetworks))
	for _, f := range canonicalNetworks {
		n := f.network
		n.SignalStrength = f.signalFloor
		n.Clients = f.clientsFloor
		out = append(out, n)
	}
	return out
}
