package main

import (
	"math"
	"reflect"
	"testing"

	"github.com/pthm-cable/attractor/config"
)

func smallConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Screen.Width = 200
	cfg.Screen.Height = 150
	cfg.Particles.Count = 300
	if err := cfg.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return cfg
}

func TestParamVectorNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector(config.Default())
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, back[i], raw[i])
		}
	}
}

func TestParamVectorClampAndApply(t *testing.T) {
	pv := NewParamVector(config.Default())
	cfg := config.Default()

	pv.ApplyToConfig(cfg, []float64{-1, 1000, 50})

	if cfg.Physics.Friction != pv.Specs[0].Min {
		t.Errorf("friction = %v, want clamped to %v", cfg.Physics.Friction, pv.Specs[0].Min)
	}
	if cfg.Physics.AccelLimit != pv.Specs[1].Max {
		t.Errorf("accel_limit = %v, want clamped to %v", cfg.Physics.AccelLimit, pv.Specs[1].Max)
	}
	if cfg.Physics.MaxSpeed != 50 {
		t.Errorf("max_speed = %v, want 50", cfg.Physics.MaxSpeed)
	}
}

func TestRunSimulationDeterministic(t *testing.T) {
	cfg := smallConfig(t)

	a := runSimulation(cfg, 42, 20)
	b := runSimulation(cfg, 42, 20)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed gave different stats:\n%+v\n%+v", a, b)
	}
	if a.SpeedMax > cfg.Physics.MaxSpeed*math.Sqrt2+1e-3 {
		t.Errorf("SpeedMax %v exceeds the per-axis limit", a.SpeedMax)
	}
}

func TestEvaluatePrefersTargetSpeed(t *testing.T) {
	cfg := smallConfig(t)
	pv := NewParamVector(cfg)

	// Measure the speed the defaults produce and use it as the target
	baseline := runSimulation(cfg, 1, 30)
	fe := NewFitnessEvaluator(pv, cfg, []int64{1}, 30, baseline.SpeedMean)

	atDefault := fe.Evaluate(pv.DefaultVector())
	heavyFriction := fe.Evaluate([]float64{0.2, 0.5, 5})

	if !(atDefault < heavyFriction) {
		t.Errorf("fitness at defaults %v should beat heavy friction %v", atDefault, heavyFriction)
	}
	if fe.LastStats().SpeedMean >= baseline.SpeedMean {
		t.Errorf("heavy friction mean speed %v not below baseline %v", fe.LastStats().SpeedMean, baseline.SpeedMean)
	}
}

func TestEvaluateDoesNotMutateBase(t *testing.T) {
	cfg := smallConfig(t)
	friction := cfg.Physics.Friction
	fe := NewFitnessEvaluator(NewParamVector(cfg), cfg, []int64{1, 2}, 5, 10)

	fe.Evaluate([]float64{0.15, 2, 30})

	if cfg.Physics.Friction != friction {
		t.Errorf("base friction changed to %v", cfg.Physics.Friction)
	}
}
