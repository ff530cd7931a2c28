package controller

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hopper/components"
)

// MovementIntegrator applies this frame's intents to controlled bodies.
type MovementIntegrator struct {
	filter   *ecs.Filter2[components.LinearVelocity, components.Movement]
	grounded *ecs.Map[components.Grounded]
}

// NewMovementIntegrator creates an integrator over all controlled bodies.
func NewMovementIntegrator(w *ecs.World) *MovementIntegrator {
	return &MovementIntegrator{
		filter: ecs.NewFilter2[components.LinearVelocity, components.Movement](w).
			With(ecs.C[components.CharacterController]()),
		grounded: ecs.NewMap[components.Grounded](w),
	}
}

// Update applies every intent to every controlled body.
func (m *MovementIntegrator) Update(intents []Intent, dt float64) {
	if len(intents) == 0 {
		return
	}
	query := m.filter.Query()
	for query.Next() {
		vel, mv := query.Get()
		Integrate(&vel.Vec, *mv, m.grounded.Has(query.Entity()), intents, dt)
	}
}

// Integrate applies intents to a single velocity. Moves accelerate the
// horizontal components whether or not the body is grounded; jumps set the
// vertical component to the jump impulse and are dropped while airborne.
func Integrate(vel *r3.Vec, mv components.Movement, grounded bool, intents []Intent, dt float64) {
	for _, in := range intents {
		switch in.Kind {
		case IntentMove:
			vel.X += in.Direction.X * mv.Acceleration * dt
			vel.Z += in.Direction.Y * mv.Acceleration * dt
		case IntentJump:
			if grounded {
				vel.Y = mv.JumpImpulse
			}
		}
	}
}
