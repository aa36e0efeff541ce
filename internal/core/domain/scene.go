package domain

import "errors"

var ErrUnknownPointerKind = errors.New("unknown pointer event kind")

// Camera carries substrate conveniences. Node interaction never changes it.
type Camera struct {
	Position        Vec3    `json:"position"`
	EnableZoom      bool    `json:"enableZoom"`
	AutoRotate      bool    `json:"autoRotate"`
	AutoRotateSpeed float64 `json:"autoRotateSpeed"`
}

// SphereNode draws one network.
type SphereNode struct {
	ID       string  `json:"id"`
	Position Vec3    `json:"position"`
	Radius   float64 `json:"radius"`
	Scale    float64 `json:"scale"`
	Color    Color   `json:"color"`
}

// LabelNode is text anchored above a sphere.
type LabelNode struct {
	NodeID   string  `json:"nodeId"`
	Position Vec3    `json:"position"`
	Text     string  `json:"text"`
	FontSize float64 `json:"fontSize"`
	Color    Color   `json:"color"`
}

// LineNode draws an edge.
type LineNode struct {
	From    string  `json:"from"`
	To      string  `json:"to"`
	Points  [2]Vec3 `json:"points"`
	Color   Color   `json:"color"`
	Width   float64 `json:"lineWidth"`
	Opacity float64 `json:"opacity"`
}

// OverlayNode is the hover inspection panel.
type OverlayNode struct {
	NodeID         string   `json:"nodeId"`
	Position       Vec3     `json:"position"`
	SignalStrength int      `json:"signalStrength"`
	Clients        int      `json:"clients"`
	Lines          []string `json:"lines"`
}

// Scene is the declarative scene graph handed to the rendering substrate.
type Scene struct {
	Camera  Camera       `json:"camera"`
	Spheres []SphereNode `json:"spheres"`
	Labels  []LabelNode  `json:"labels"`
	Lines   []LineNode   `json:"lines"`
	Overlay *OverlayNode `json:"overlay,omitempty"`
}

// PointerKind is an interaction reported by the substrate.
type PointerKind string

const (
	PointerHoverEnter PointerKind = "hover_enter"
	PointerHoverExit  PointerKind = "hover_exit"
	PointerClick      PointerKind = "click"
)

// Valid reports whether k is one of the known pointer kinds.
func (k PointerKind) Valid() bool {
	switch k {
	case PointerHoverEnter, PointerHoverExit, PointerClick:
		return true
	}
	return false
}

// PointerEvent is a hover or click on a node, identified by BSSID.
type PointerEvent struct {
	Kind   PointerKind `json:"kind"`
	NodeID string      `json:"node"`
}
