package controller

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hopper/components"
)

// GravityApplier accelerates controlled bodies by their own gravity.
// Grounded bodies are not exempt; contact resolution cancels the pull.
type GravityApplier struct {
	filter *ecs.Filter2[components.LinearVelocity, components.ControllerGravity]
}

// NewGravityApplier creates a gravity stage over all controlled bodies.
func NewGravityApplier(w *ecs.World) *GravityApplier {
	return &GravityApplier{
		filter: ecs.NewFilter2[components.LinearVelocity, components.ControllerGravity](w).
			With(ecs.C[components.CharacterController]()),
	}
}

// Update adds gravity*dt to each velocity.
func (g *GravityApplier) Update(dt float64) {
	query := g.filter.Query()
	for query.Next() {
		vel, grav := query.Get()
		vel.Vec = r3.Add(vel.Vec, r3.Scale(dt, grav.Vec))
	}
}

// DampingApplier decays horizontal velocity of controlled bodies.
type DampingApplier struct {
	filter *ecs.Filter2[components.LinearVelocity, components.Movement]
}

// NewDampingApplier creates a damping stage over all controlled bodies.
func NewDampingApplier(w *ecs.World) *DampingApplier {
	return &DampingApplier{
		filter: ecs.NewFilter2[components.LinearVelocity, components.Movement](w).
			With(ecs.C[components.CharacterController]()),
	}
}

// Update multiplies X and Z velocity by each body's damping factor. The factor
// is per frame, not per second.
func (d *DampingApplier) Update() {
	query := d.filter.Query()
	for query.Next() {
		vel, mv := query.Get()
		vel.X *= mv.Damping
		vel.Z *= mv.Damping
	}
}
