package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/attractor/components"
)

// ParticleRenderer draws the particle store with additive blending.
type ParticleRenderer struct {
	trails bool
	size   float32
}

// NewParticleRenderer creates a new particle renderer.
// With trails set each particle is a segment from its previous position.
func NewParticleRenderer(trails bool, size float32) *ParticleRenderer {
	return &ParticleRenderer{trails: trails, size: size}
}

// Draw renders all particles into the current target.
func (r *ParticleRenderer) Draw(particles []components.Particle) {
	rl.BeginBlendMode(rl.BlendAdditive)

	for i := range particles {
		p := &particles[i]
		color := rl.ColorFromNormalized(rl.Vector4{X: p.R, Y: p.G, Z: p.B, W: p.A})

		switch {
		case r.trails:
			rl.DrawLineV(rl.Vector2{X: p.OX, Y: p.OY}, rl.Vector2{X: p.X, Y: p.Y}, color)
		case r.size <= 1:
			rl.DrawPixelV(rl.Vector2{X: p.X, Y: p.Y}, color)
		default:
			rl.DrawRectangleV(rl.Vector2{X: p.X, Y: p.Y}, rl.Vector2{X: r.size, Y: r.size}, color)
		}
	}

	rl.EndBlendMode()
}
