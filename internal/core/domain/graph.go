package domain

import (
	"encoding/json"
	"fmt"
)

// Color is a CSS hex colour understood by the browser scene.
type Color string

const (
	ColorRisk Color = "#ef4444"
	ColorSafe Color = "#22c55e"

	ColorSeverityCritical Color = "#7f1d1d"
	ColorSeverityHigh     Color = "#7c2d12"
	ColorSeverityDefault  Color = "#713f12"

	ColorStatusNew           Color = "#f87171"
	ColorStatusInvestigating Color = "#fbbf24"
	ColorStatusResolved      Color = "#4ade80"

	ColorLabel Color = "#ffffff"
)

// Vec3 is a point in scene space. It serialises as a [x, y, z] array.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns the component-wise sum.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{v.X, v.Y, v.Z})
}

func (v *Vec3) UnmarshalJSON(data []byte) error {
	var arr [3]float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("vec3: %w", err)
	}
	*v = Vec3{X: arr[0], Y: arr[1], Z: arr[2]}
	return nil
}

// TopologyNode is a network placed on the layout curve.
type TopologyNode struct {
	ID         string  `json:"id"` // BSSID
	Index      int     `json:"index"`
	Position   Vec3    `json:"position"`
	Size       float64 `json:"size"`
	Color      Color   `json:"color"`
	Suspicious bool    `json:"suspicious"`
}

// TopologyEdge links two networks sharing a channel.
// From precedes To in the input order.
type TopologyEdge struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Start   Vec3   `json:"start"`
	End     Vec3   `json:"end"`
	Channel int    `json:"channel"`
	Color   Color  `json:"color"`
}

// Topology is the positioned graph derived from a network list.
type Topology struct {
	Nodes []TopologyNode `json:"nodes"`
	Edges []TopologyEdge `json:"edges"`
}

// Node returns the node with the given ID.
func (t Topology) Node(id string) (TopologyNode, bool) {
	for _, n := range t.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return TopologyNode{}, false
}
