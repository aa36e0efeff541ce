package topology

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
	"github.com/lcalzada-xor/widsview/internal/telemetry"
)

var tracer = telemetry.Tracer("topology")

// Layout constants of the network map.
const (
	DefaultRadius     = 2.0
	DefaultBaseSize   = 0.2
	DefaultSizeFactor = 0.02
)

// EndpointMode selects how edge end points are computed.
type EndpointMode string

const (
	// EndpointsFromLayoutIndex re-evaluates the circle formula at the
	// partner's absolute index (i+j+1). Matches the positions of the
	// stored nodes only because input order is never changed here.
	EndpointsFromLayoutIndex EndpointMode = "layout"
	// EndpointsFromNodes reuses the partner node's stored position.
	EndpointsFromNodes EndpointMode = "nodes"
)

// Valid reports whether m is a known mode.
func (m EndpointMode) Valid() bool {
	return m == EndpointsFromLayoutIndex || m == EndpointsFromNodes
}

// Builder turns an ordered network list into a positioned graph.
type Builder struct {
	radius     float64
	baseSize   float64
	sizeFactor float64
	riskColor  domain.Color
	safeColor  domain.Color
	mode       EndpointMode
}

// Option configures a Builder.
type Option func(*Builder)

func WithRadius(r float64) Option { return func(b *Builder) { b.radius = r } }

func WithSizing(base, factor float64) Option {
	return func(b *Builder) {
		b.baseSize = base
		b.sizeFactor = factor
	}
}

func WithColors(risk, safe domain.Color) Option {
	return func(b *Builder) {
		b.riskColor = risk
		b.safeColor = safe
	}
}

// WithEndpointMode sets the edge end point strategy. Unknown modes are ignored.
func WithEndpointMode(m EndpointMode) Option {
	return func(b *Builder) {
		if m.Valid() {
			b.mode = m
		}
	}
}

// NewBuilder creates a builder with the map defaults.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		radius:     DefaultRadius,
		baseSize:   DefaultBaseSize,
		sizeFactor: DefaultSizeFactor,
		riskColor:  domain.ColorRisk,
		safeColor:  domain.ColorSafe,
		mode:       EndpointsFromLayoutIndex,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Mode returns the edge end point strategy in use.
func (b *Builder) Mode() EndpointMode {
	return b.mode
}

// Build computes node positions, sizes and colours, and one edge per unordered
// pair of networks on the same channel. It is a pure function of its input.
func (b *Builder) Build(networks []domain.Network) domain.Topology {
	n := len(networks)
	topo := domain.Topology{
		Nodes: make([]domain.TopologyNode, 0, n),
		Edges: []domain.TopologyEdge{},
	}

	for i, net := range networks {
		topo.Nodes = append(topo.Nodes, domain.TopologyNode{
			ID:         net.BSSID,
			Index:      i,
			Position:   CirclePosition(i, n, b.radius),
			Size:       NodeSize(net.Clients, b.baseSize, b.sizeFactor),
			Color:      b.color(net.Suspicious),
			Suspicious: net.Suspicious,
		})
	}

	for i, net := range networks {
		rest := networks[i+1:]
		for j, target := range rest {
			if net.Channel != target.Channel {
				continue
			}
			topo.Edges = append(topo.Edges, domain.TopologyEdge{
				From:    net.BSSID,
				To:      target.BSSID,
				Start:   CirclePosition(i, n, b.radius),
				End:     b.endpoint(topo.Nodes, i, j, n),
				Channel: net.Channel,
				Color:   b.color(net.Suspicious || target.Suspicious),
			})
		}
	}

	return topo
}

// BuildTraced wraps Build in a span and updates the edge gauge.
func (b *Builder) BuildTraced(ctx context.Context, networks []domain.Network) domain.Topology {
	_, span := tracer.Start(ctx, "topology.Build")
	defer span.End()

	topo := b.Build(networks)
	telemetry.TopologyEdges.Set(float64(len(topo.Edges)))
	span.SetAttributes(
		attribute.Int("topology.nodes", len(topo.Nodes)),
		attribute.Int("topology.edges", len(topo.Edges)),
		attribute.String("topology.endpoint_mode", string(b.mode)),
	)
	return topo
}

// endpoint returns the end of the edge found while scanning network i against
// offset j of the networks after it.
func (b *Builder) endpoint(nodes []domain.TopologyNode, i, j, n int) domain.Vec3 {
	partner := i + j + 1
	if b.mode == EndpointsFromNodes {
		return nodes[partner].Position
	}
	return CirclePosition(partner, n, b.radius)
}

func (b *Builder) color(risky bool) domain.Color {
	if risky {
		return b.riskColor
	}
	return b.safeColor
}
