package topology

import (
	"math"

	"github.com/lcalzada-xor/widsview/internal/core/domain"
)

// CirclePosition places index i of n evenly on a circle of the given radius
// in the horizontal (XZ) plane. It depends only on i and n.
func CirclePosition(i, n int, radius float64) domain.Vec3 {
	if n <= 0 {
		return domain.Vec3{}
	}
	theta := float64(i) / float64(n) * 2 * math.Pi
	return domain.Vec3{
		X: radius * math.Cos(theta),
		Y: 0,
		Z: radius * math.Sin(theta),
	}
}

// NodeSize grows linearly with client count and has no upper bound.
func NodeSize(clients int, base, factor float64) float64 {
	return base + float64(clients)*factor
}
