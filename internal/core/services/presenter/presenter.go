// Package presenter turns a topology into the declarative scene drawn by the
// rendering substrate, and tracks hover and click interaction on its nodes.
package presenter

import (
	"context"
	"fmt"
	"sync"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
	"github.com/lcalzada-xor/widsview/internal/core/ports"
	"github.com/lcalzada-xor/widsview/internal/telemetry"
)

// Scene styling.
const (
	HoverScale   = 1.2
	LabelGap     = 0.2
	LabelFont    = 0.15
	OverlayDrop  = -0.4
	LineWidth    = 1.0
	LineOpacity  = 0.3
	rotateSpeed  = 0.5
	defaultScale = 1.0
)

// DefaultCamera frames the layout circle from above and slowly orbits it.
var DefaultCamera = domain.Camera{
	Position:        domain.Vec3{X: 0, Y: 3, Z: 5},
	EnableZoom:      true,
	AutoRotate:      true,
	AutoRotateSpeed: rotateSpeed,
}

// Presenter owns the hover state. At most one node is hovered at a time.
type Presenter struct {
	mu      sync.Mutex
	hovered string
	camera  domain.Camera
	sink    ports.SelectionSink
}

// New creates a presenter forwarding clicks to sink (which may be set later).
func New(sink ports.SelectionSink) *Presenter {
	return &Presenter{
		camera: DefaultCamera,
		sink:   sink,
	}
}

// SetSelectionSink wires the receiver of click selections.
func (p *Presenter) SetSelectionSink(sink ports.SelectionSink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink = sink
}

// Hovered returns the hovered node ID, or "".
func (p *Presenter) Hovered() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hovered
}

// HandlePointer applies a substrate interaction.
func (p *Presenter) HandlePointer(ev domain.PointerEvent) error {
	if !ev.Kind.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownPointerKind, ev.Kind)
	}
	telemetry.PointerEvents.WithLabelValues(string(ev.Kind)).Inc()

	p.mu.Lock()
	var sink ports.SelectionSink
	switch ev.Kind {
	case domain.PointerHoverEnter:
		p.hovered = ev.NodeID
	case domain.PointerHoverExit:
		// a late exit for a node we already left must not clear the new hover
		if p.hovered == ev.NodeID {
			p.hovered = ""
		}
	case domain.PointerClick:
		sink = p.sink
	}
	p.mu.Unlock()

	if sink != nil {
		sink.SelectNode(ev.NodeID)
	}
	return nil
}

// Present builds the scene for a topology. networks supplies the per-node
// metadata (label, signal, clients) and is matched to nodes by BSSID.
func (p *Presenter) Present(topo domain.Topology, networks []domain.Network) domain.Scene {
	p.mu.Lock()
	hovered := p.hovered
	camera := p.camera
	p.mu.Unlock()

	meta := make(map[string]domain.Network, len(networks))
	for _, n := range networks {
		meta[n.BSSID] = n
	}

	scene := domain.Scene{
		Camera:  camera,
		Spheres: make([]domain.SphereNode, 0, len(topo.Nodes)),
		Labels:  make([]domain.LabelNode, 0, len(topo.Nodes)),
		Lines:   make([]domain.LineNode, 0, len(topo.Edges)),
	}

	for _, e := range topo.Edges {
		scene.Lines = append(scene.Lines, domain.LineNode{
			From:    e.From,
			To:      e.To,
			Points:  [2]domain.Vec3{e.Start, e.End},
			Color:   e.Color,
			Width:   LineWidth,
			Opacity: LineOpacity,
		})
	}

	for _, node := range topo.Nodes {
		net := meta[node.ID]

		scale := defaultScale
		if node.ID == hovered {
			scale = HoverScale
		}
		scene.Spheres = append(scene.Spheres, domain.SphereNode{
			ID:       node.ID,
			Position: node.Position,
			Radius:   node.Size,
			Scale:    scale,
			Color:    node.Color,
		})
		scene.Labels = append(scene.Labels, domain.LabelNode{
			NodeID:   node.ID,
			Position: node.Position.Add(domain.Vec3{Y: node.Size + LabelGap}),
			Text:     net.SSID,
			FontSize: LabelFont,
			Color:    domain.ColorLabel,
		})
	}

	if node, ok := topo.Node(hovered); ok && hovered != "" {
		scene.Overlay = overlay(node, meta[node.ID])
	}

	return scene
}

// Render presents the topology and draws it on the substrate.
func (p *Presenter) Render(ctx context.Context, substrate ports.Substrate, topo domain.Topology, networks []domain.Network) domain.Scene {
	scene := p.Present(topo, networks)
	if substrate != nil {
		substrate.Draw(ctx, scene)
	}
	return scene
}

func overlay(node domain.TopologyNode, net domain.Network) *domain.OverlayNode {
	return &domain.OverlayNode{
		NodeID:         node.ID,
		Position:       node.Position.Add(domain.Vec3{Y: OverlayDrop}),
		SignalStrength: net.SignalStrength,
		Clients:        net.Clients,
		Lines: []string{
			fmt.Sprintf("Signal: %d dBm", net.SignalStrength),
			fmt.Sprintf("Clients: %d", net.Clients),
		},
	}
}
