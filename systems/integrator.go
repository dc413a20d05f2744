// Package systems contains the particle integrator and the state it shares
// with the input layer.
package systems

import (
	"math"

	"github.com/pthm-cable/attractor/components"
	"github.com/pthm-cable/attractor/config"
)

// Params holds the integrator constants.
type Params struct {
	Gravity    float32 // G
	Mass       float32 // attractor mass M
	AccelLimit float32
	OneSided   bool    // clamp only the attractive side (mag >= -limit)
	Friction   float32 // fluid friction coefficient
	MaxSpeed   float32 // per-axis speed limit, 0 disables the limiter
	MinDist2   float32 // distance-squared floor for the inverse square
	Trails     bool    // record previous position before moving
}

// ParamsFromConfig extracts integrator constants from the loaded config.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Gravity:    float32(cfg.Physics.Gravity),
		Mass:       float32(cfg.Physics.Mass),
		AccelLimit: float32(cfg.Physics.AccelLimit),
		OneSided:   cfg.Physics.AccelLimitMode == config.LimitOneSided,
		Friction:   float32(cfg.Physics.Friction),
		MaxSpeed:   float32(cfg.Physics.MaxSpeed),
		MinDist2:   cfg.Derived.MinDist2,
		Trails:     cfg.Render.Trails,
	}
}

// Integrator advances particles under the pointer attractor and friction.
// It holds no per-call state, so disjoint slices may be integrated concurrently.
type Integrator struct {
	params   Params
	gm       float32
	boundary Boundary
	pointer  *PointerForce
}

// NewIntegrator creates an integrator reading the attractor from pointer.
func NewIntegrator(params Params, boundary Boundary, pointer *PointerForce) *Integrator {
	return &Integrator{
		params:   params,
		gm:       params.Gravity * params.Mass,
		boundary: boundary,
		pointer:  pointer,
	}
}

// Integrate advances every particle in the slice by dt.
// The attractor is sampled once for the whole slice.
func (in *Integrator) Integrate(particles []components.Particle, dt float32) {
	cx, cy, active := in.pointer.Load()
	for i := range particles {
		in.Step(&particles[i], cx, cy, active, dt)
	}
}

// Step advances one particle by dt given an attractor snapshot.
func (in *Integrator) Step(p *components.Particle, cx, cy float32, active bool, dt float32) {
	if active {
		dx := p.X - cx
		dy := p.Y - cy
		dist2 := dx*dx + dy*dy

		// Gravitation: -G*M/d^2, limited
		var mag float32
		if dist2 < in.params.MinDist2 {
			mag = -in.params.AccelLimit
		} else {
			mag = in.limitAccel(-in.gm / dist2)
		}

		ang := math.Atan2(float64(dy), float64(dx))
		p.AX = mag * float32(math.Cos(ang))
		p.AY = mag * float32(math.Sin(ang))
	} else {
		p.AX, p.AY = 0, 0
	}

	// Fluid friction. One step may at most bring the velocity to rest,
	// however long the tick was.
	friction := in.params.Friction
	if dt > 0 && friction*dt > 1 {
		friction = 1 / dt
	}
	p.AX -= friction * p.VX
	p.AY -= friction * p.VY

	p.VX += p.AX * dt
	p.VY += p.AY * dt

	if limit := in.params.MaxSpeed; limit > 0 {
		p.VX = clampFloat(p.VX, -limit, limit)
		p.VY = clampFloat(p.VY, -limit, limit)
	}

	if in.params.Trails {
		p.OX, p.OY = p.X, p.Y
	}

	p.X += p.VX * dt
	p.Y += p.VY * dt

	in.boundary.Apply(p)
}

func (in *Integrator) limitAccel(mag float32) float32 {
	limit := in.params.AccelLimit
	if in.params.OneSided {
		return clampMin(mag, -limit)
	}
	return clampFloat(mag, -limit, limit)
}
