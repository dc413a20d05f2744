// Package components defines the particle record and its backing store.
package components

import "math/rand"

// Particle is a single point mass.
// Every field is a single-word scalar so an unsynchronized reader sees at
// worst a mix of old and new fields, never a torn value.
type Particle struct {
	X, Y   float32 // position
	OX, OY float32 // previous position, used for trails
	VX, VY float32 // velocity
	AX, AY float32 // acceleration scratch, recomputed every tick

	// Initial velocity, never mutated after creation
	BaseVX, BaseVY float32

	R, G, B, A float32
}

// Look describes the appearance band particles are drawn from.
type Look struct {
	Alpha    float32
	ColorMin [3]float32
	ColorMax [3]float32
}

// Store is the flat particle arena. It is allocated once and never resized.
type Store struct {
	particles []Particle
}

// NewStore creates n particles spread uniformly over width x height with
// per-axis velocity in [-1, 1] and a color from the look's band.
func NewStore(n int, width, height float32, look Look, rng *rand.Rand) *Store {
	s := &Store{particles: make([]Particle, n)}
	for i := range s.particles {
		p := &s.particles[i]

		p.X = rng.Float32() * width
		p.Y = rng.Float32() * height
		p.OX, p.OY = p.X, p.Y

		p.VX = -1 + rng.Float32()*2
		p.VY = -1 + rng.Float32()*2
		p.BaseVX, p.BaseVY = p.VX, p.VY

		p.R = band(rng, look.ColorMin[0], look.ColorMax[0])
		p.G = band(rng, look.ColorMin[1], look.ColorMax[1])
		p.B = band(rng, look.ColorMin[2], look.ColorMax[2])
		p.A = look.Alpha
	}
	return s
}

// NewStoreFrom wraps an existing slice. The store takes ownership of it.
func NewStoreFrom(particles []Particle) *Store {
	return &Store{particles: particles}
}

func band(rng *rand.Rand, lo, hi float32) float32 {
	return lo + rng.Float32()*(hi-lo)
}

// Len returns the number of particles.
func (s *Store) Len() int {
	return len(s.particles)
}

// All returns the whole arena. Callers must not retain it past shutdown.
func (s *Store) All() []Particle {
	return s.particles
}

// Slice returns the sub-slice for r. Slices of disjoint ranges share no elements.
func (s *Store) Slice(r Range) []Particle {
	return s.particles[r.Start:r.End:r.End]
}

// At returns a pointer to particle i.
func (s *Store) At(i int) *Particle {
	return &s.particles[i]
}
