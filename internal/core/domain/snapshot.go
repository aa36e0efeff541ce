package domain

import "time"

// Snapshot is one atomically produced view of the monitored environment.
// It is never mutated after production; readers outside the core should work
// on a Clone.
type Snapshot struct {
	ID         string       `json:"id"`
	ProducedAt time.Time    `json:"producedAt"`
	Networks   []Network    `json:"networks"`
	Alerts     []Alert      `json:"alerts"`
	Stats      NetworkStats `json:"stats"`
}

// IsZero reports whether no snapshot has been produced yet.
func (s Snapshot) IsZero() bool {
	return s.ID == "" && s.ProducedAt.IsZero() && len(s.Networks) == 0
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Networks = append([]Network(nil), s.Networks...)
	out.Alerts = append([]Alert(nil), s.Alerts...)
	if out.Networks == nil {
		out.Networks = []Network{}
	}
	if out.Alerts == nil {
		out.Alerts = []Alert{}
	}
	return out
}

// NetworkByBSSID looks a network up by its hardware identifier.
func (s Snapshot) NetworkByBSSID(bssid string) (Network, bool) {
	for _, n := range s.Networks {
		if n.BSSID == bssid {
			return n, true
		}
	}
	return Network{}, false
}

// SuspiciousCount returns how many networks carry the suspicious flag.
func (s Snapshot) SuspiciousCount() int {
	count := 0
	for _, n := range s.Networks {
		if n.Suspicious {
			count++
		}
	}
	return count
}
