package domain

// NetworkStats is the snapshot-level aggregate shown on the stat cards.
// The counters are produced independently of the network and alert lists and
// are not reconciled against them.
type NetworkStats struct {
	TotalNetworks int `json:"totalNetworks"`
	AuthorizedAPs int `json:"authorizedAPs"`
	RogueAPs      int `json:"rogueAPs"`
	ActiveClients int `json:"activeClients"`
	AlertsLast24h int `json:"alertsLast24h"`
}
