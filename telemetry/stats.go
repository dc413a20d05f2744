// Package telemetry samples particle and frame statistics and writes them out.
package telemetry

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/attractor/components"
)

// WindowStats holds aggregated statistics for one stats window.
type WindowStats struct {
	Frame      int     `csv:"frame"`
	ElapsedSec float64 `csv:"elapsed_sec"`

	Particles       int  `csv:"particles"`
	AttractorActive bool `csv:"attractor_active"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// Unit-mass kinetic energy, 0.5 * sum |v|^2
	KineticEnergy float64 `csv:"kinetic_energy"`

	CentroidX float64 `csv:"centroid_x"`
	CentroidY float64 `csv:"centroid_y"`

	// Integrator throughput during the window
	WorkerTicks    uint64  `csv:"worker_ticks"`
	TicksPerSecond float64 `csv:"ticks_per_sec"` // per worker
}

// ParticleStats summarizes the particle state at one instant.
type ParticleStats struct {
	SpeedMean, SpeedStd  float64
	SpeedP50, SpeedP90   float64
	SpeedMax             float64
	KineticEnergy        float64
	CentroidX, CentroidY float64
}

// ComputeParticleStats summarizes particles. scratch is reused for the
// speed samples and the grown slice is returned for the next call.
// The read is unsynchronized with the workers, so values may mix two ticks.
func ComputeParticleStats(particles []components.Particle, scratch []float64) (ParticleStats, []float64) {
	n := len(particles)
	if n == 0 {
		return ParticleStats{}, scratch
	}

	if cap(scratch) < n {
		scratch = make([]float64, n)
	}
	speeds := scratch[:n]

	var sumX, sumY float64
	for i := range particles {
		p := &particles[i]
		speeds[i] = math.Hypot(float64(p.VX), float64(p.VY))
		sumX += float64(p.X)
		sumY += float64(p.Y)
	}

	var s ParticleStats
	s.KineticEnergy = 0.5 * floats.Dot(speeds, speeds)
	s.SpeedMax = floats.Max(speeds)
	s.CentroidX = sumX / float64(n)
	s.CentroidY = sumY / float64(n)

	if n > 1 {
		s.SpeedMean, s.SpeedStd = stat.MeanStdDev(speeds, nil)
	} else {
		s.SpeedMean = speeds[0]
	}

	sort.Float64s(speeds)
	s.SpeedP50 = stat.Quantile(0.5, stat.Empirical, speeds, nil)
	s.SpeedP90 = stat.Quantile(0.9, stat.Empirical, speeds, nil)

	return s, scratch
}

// Collector decides when a stats window has elapsed and assembles WindowStats.
type Collector struct {
	window      time.Duration
	start       time.Time
	windowStart time.Time
	lastTicks   uint64
	scratch     []float64
}

// NewCollector creates a collector whose first window starts at now.
// A non-positive window disables sampling.
func NewCollector(window time.Duration, now time.Time) *Collector {
	return &Collector{
		window:      window,
		start:       now,
		windowStart: now,
	}
}

// Due reports whether the current window has elapsed.
func (c *Collector) Due(now time.Time) bool {
	return c.window > 0 && now.Sub(c.windowStart) >= c.window
}

// Sample closes the current window and starts a new one.
// totalTicks is the cumulative tick count summed over numWorkers workers.
func (c *Collector) Sample(now time.Time, frame int, particles []components.Particle,
	attractor bool, totalTicks uint64, numWorkers int) WindowStats {
	var ps ParticleStats
	ps, c.scratch = ComputeParticleStats(particles, c.scratch)

	ticks := totalTicks - c.lastTicks
	var rate float64
	if elapsed := now.Sub(c.windowStart).Seconds(); elapsed > 0 && numWorkers > 0 {
		rate = float64(ticks) / float64(numWorkers) / elapsed
	}

	c.lastTicks = totalTicks
	c.windowStart = now

	return WindowStats{
		Frame:           frame,
		ElapsedSec:      now.Sub(c.start).Seconds(),
		Particles:       len(particles),
		AttractorActive: attractor,
		SpeedMean:       ps.SpeedMean,
		SpeedStd:        ps.SpeedStd,
		SpeedP50:        ps.SpeedP50,
		SpeedP90:        ps.SpeedP90,
		SpeedMax:        ps.SpeedMax,
		KineticEnergy:   ps.KineticEnergy,
		CentroidX:       ps.CentroidX,
		CentroidY:       ps.CentroidY,
		WorkerTicks:     ticks,
		TicksPerSecond:  rate,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frame", s.Frame),
		slog.Float64("elapsed_sec", s.ElapsedSec),
		slog.Bool("attractor", s.AttractorActive),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	)
}
