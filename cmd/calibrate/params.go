// Package main searches physics parameters that give a target particle speed
// around a held attractor.
package main

import (
	"github.com/pthm-cable/attractor/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the parameter set, with defaults taken from cfg.
func NewParamVector(cfg *config.Config) *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "friction", Path: "physics.friction", Min: 0.001, Max: 0.2, Default: cfg.Physics.Friction},
			{Name: "accel_limit", Path: "physics.accel_limit", Min: 0.5, Max: 20, Default: cfg.Physics.AccelLimit},
			{Name: "max_speed", Path: "physics.max_speed", Min: 5, Max: 200, Default: cfg.Physics.MaxSpeed},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default values, clamped into bounds.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return pv.Clamp(v)
}

// Normalize converts raw parameter values to the [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped values into cfg. Order matches Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Physics.Friction = clamped[0]
	cfg.Physics.AccelLimit = clamped[1]
	cfg.Physics.MaxSpeed = clamped[2]
}
