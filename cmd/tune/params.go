package main

import (
	"github.com/pthm-cable/hopper/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Path string  // Config path for logging
	Min  float64 // Lower bound
	Max  float64 // Upper bound
}

// ParamVector holds the set of tunable player movement parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the player movement parameter set.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "acceleration", Path: "player.movement.acceleration", Min: 5, Max: 120},
			{Name: "damping", Path: "player.movement.damping", Min: 0.5, Max: 0.99},
			{Name: "jump_impulse", Path: "player.movement.jump_impulse", Min: 1, Max: 20},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Names returns the parameter names in order.
func (pv *ParamVector) Names() []string {
	names := make([]string, len(pv.Specs))
	for i, spec := range pv.Specs {
		names[i] = spec.Name
	}
	return names
}

// Normalize converts raw parameter values to [0,1] range.
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
		clamped[i] = min(spec.Max, max(spec.Min, v[i]))
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg. Order matches Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	cfg.Player.Movement.Acceleration = c[0]
	cfg.Player.Movement.Damping = c[1]
	cfg.Player.Movement.JumpImpulse = c[2]
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Player.Movement.Acceleration,
		cfg.Player.Movement.Damping,
		cfg.Player.Movement.JumpImpulse,
	}
}
