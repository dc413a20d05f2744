package systems

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/attractor/components"
	"github.com/pthm-cable/attractor/config"
)

// ErrBounceUnimplemented is returned for the reserved bounce policy.
var ErrBounceUnimplemented = errors.New("bounce boundary is not implemented")

// Boundary keeps a particle inside the viewport after it moved.
type Boundary interface {
	Apply(p *components.Particle)
}

// WrapBoundary moves particles that leave one edge to the opposite edge.
// The previous position is shifted by the same amount so trails stay short.
type WrapBoundary struct {
	Width, Height float32
}

// Apply wraps both axes into [0, extent).
func (b WrapBoundary) Apply(p *components.Particle) {
	p.X, p.OX = wrapAxis(p.X, p.OX, b.Width)
	p.Y, p.OY = wrapAxis(p.Y, p.OY, b.Height)
}

func wrapAxis(pos, prev, extent float32) (float32, float32) {
	if pos >= 0 && pos < extent {
		return pos, prev
	}
	shift := extent * float32(math.Floor(float64(pos/extent)))
	pos -= shift
	prev -= shift
	// -tiny + extent rounds to extent in float32
	if pos >= extent || pos < 0 {
		pos = 0
	}
	return pos, prev
}

// NewBoundary returns the boundary strategy for a config policy name.
func NewBoundary(policy string, width, height float32) (Boundary, error) {
	switch policy {
	case config.BoundaryWrap:
		return WrapBoundary{Width: width, Height: height}, nil
	case config.BoundaryBounce:
		return nil, ErrBounceUnimplemented
	default:
		return nil, fmt.Errorf("unknown boundary policy %q", policy)
	}
}
