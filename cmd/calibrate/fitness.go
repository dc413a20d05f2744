package main

import (
	"math"
	"math/rand"
	"sync"

	"github.com/pthm-cable/attractor/components"
	"github.com/pthm-cable/attractor/config"
	"github.com/pthm-cable/attractor/systems"
	"github.com/pthm-cable/attractor/telemetry"
)

// FitnessEvaluator runs deterministic single-goroutine integrations and
// scores how far the resulting speed distribution is from the target.
type FitnessEvaluator struct {
	params      *ParamVector
	baseConfig  *config.Config
	seeds       []int64
	ticks       int
	targetSpeed float64

	mu        sync.Mutex
	lastStats telemetry.ParticleStats
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, baseCfg *config.Config, seeds []int64, ticks int, targetSpeed float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		baseConfig:  baseCfg,
		seeds:       seeds,
		ticks:       ticks,
		targetSpeed: targetSpeed,
	}
}

// LastStats returns the averaged particle stats of the most recent evaluation.
func (fe *FitnessEvaluator) LastStats() telemetry.ParticleStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastStats
}

// Evaluate computes fitness for raw parameter values (lower = better).
// Fitness is the squared relative error of the mean speed plus a penalty
// on spread, averaged over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	if err := cfg.Refresh(); err != nil {
		return math.Inf(1)
	}

	results := make([]telemetry.ParticleStats, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = runSimulation(cfg, s, fe.ticks)
		}(i, seed)
	}
	wg.Wait()

	var fitness float64
	var avg telemetry.ParticleStats
	n := float64(len(results))
	for _, r := range results {
		fitness += fe.score(r)
		avg.SpeedMean += r.SpeedMean / n
		avg.SpeedStd += r.SpeedStd / n
		avg.SpeedP50 += r.SpeedP50 / n
		avg.SpeedP90 += r.SpeedP90 / n
		avg.SpeedMax = max(avg.SpeedMax, r.SpeedMax)
		avg.KineticEnergy += r.KineticEnergy / n
	}

	fe.mu.Lock()
	fe.lastStats = avg
	fe.mu.Unlock()

	return fitness / n
}

func (fe *FitnessEvaluator) score(s telemetry.ParticleStats) float64 {
	if math.IsNaN(s.SpeedMean) {
		return math.Inf(1)
	}
	rel := (s.SpeedMean - fe.targetSpeed) / fe.targetSpeed
	spread := s.SpeedStd / fe.targetSpeed
	return rel*rel + 0.1*spread*spread
}

// copyConfig returns a copy with its own color slices so runs never share
// mutable state with the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Particles.ColorMin = append([]float64(nil), fe.baseConfig.Particles.ColorMin...)
	cfg.Particles.ColorMax = append([]float64(nil), fe.baseConfig.Particles.ColorMax...)
	return &cfg
}

// runSimulation integrates the whole store serially for ticks steps of one
// time unit with the attractor held at the center of the world.
func runSimulation(cfg *config.Config, seed int64, ticks int) telemetry.ParticleStats {
	w, h := cfg.Derived.Width32, cfg.Derived.Height32
	store := components.NewStore(cfg.Particles.Count, w, h, components.Look{Alpha: 1}, rand.New(rand.NewSource(seed)))

	boundary, err := systems.NewBoundary(cfg.Physics.Boundary, w, h)
	if err != nil {
		return telemetry.ParticleStats{SpeedMean: math.NaN()}
	}

	pointer := &systems.PointerForce{}
	pointer.Hold(w/2, h/2)
	integrator := systems.NewIntegrator(systems.ParamsFromConfig(cfg), boundary, pointer)

	particles := store.All()
	for i := 0; i < ticks; i++ {
		integrator.Integrate(particles, 1)
	}

	stats, _ := telemetry.ComputeParticleStats(particles, nil)
	return stats
}
