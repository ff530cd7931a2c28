package controller

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hopper/components"
	"github.com/pthm-cable/hopper/physics"
)

// Ground probe defaults.
const (
	DefaultCasterScale    = 0.99
	DefaultCasterDistance = 0.2
)

// Bundle is the spawn configuration of a controlled body.
type Bundle struct {
	Shape    physics.Shape
	Gravity  r3.Vec
	Movement components.Movement
	Density  float64

	// CasterScale shrinks the probe relative to the collider so the probe
	// does not report the surface the body is already resting against.
	CasterScale    float64
	CasterDistance float64
}

// NewBundle returns a bundle with stock movement tuning.
func NewBundle(shape physics.Shape, gravity r3.Vec) Bundle {
	return Bundle{
		Shape:          shape,
		Gravity:        gravity,
		Movement:       components.DefaultMovement(),
		Density:        1,
		CasterScale:    DefaultCasterScale,
		CasterDistance: DefaultCasterDistance,
	}
}

// WithMovement replaces the movement tuning.
func (b Bundle) WithMovement(acceleration, damping, jumpImpulse float64, maxSlope components.SlopeLimit) Bundle {
	b.Movement = components.Movement{
		Acceleration: acceleration,
		Damping:      damping,
		JumpImpulse:  jumpImpulse,
		MaxSlope:     maxSlope,
	}
	return b
}

// Caster returns the downward probe for the bundle's shape.
func (b Bundle) Caster() components.ShapeCaster {
	return components.ShapeCaster{
		Shape:       b.Shape.Scaled(b.CasterScale),
		Direction:   r3.Vec{Y: -1},
		MaxDistance: b.CasterDistance,
	}
}

// Spawner creates controlled bodies.
type Spawner struct {
	body *ecs.Map5[
		components.Position,
		components.LinearVelocity,
		components.Rotation,
		components.RigidBody,
		components.Collider,
	]
	ctl *ecs.Map5[
		components.CharacterController,
		components.Movement,
		components.ControllerGravity,
		components.ShapeCaster,
		components.ShapeHits,
	]
}

// NewSpawner creates a spawner for the world.
func NewSpawner(w *ecs.World) *Spawner {
	return &Spawner{
		body: ecs.NewMap5[
			components.Position,
			components.LinearVelocity,
			components.Rotation,
			components.RigidBody,
			components.Collider,
		](w),
		ctl: ecs.NewMap5[
			components.CharacterController,
			components.Movement,
			components.ControllerGravity,
			components.ShapeCaster,
			components.ShapeHits,
		](w),
	}
}

// Spawn creates a dynamic, rotation-locked body at pos driven by the pipeline.
// Engine gravity is disabled for it; the gravity stage applies b.Gravity.
func (s *Spawner) Spawn(b Bundle, pos r3.Vec) ecs.Entity {
	body := components.NewDynamicBody(b.Shape, b.Density, 0, 0)
	body.LockRotation = true

	entity := s.body.NewEntity(
		&components.Position{Vec: pos},
		&components.LinearVelocity{},
		&components.Rotation{},
		&body,
		&components.Collider{Shape: b.Shape},
	)

	mv := b.Movement
	caster := b.Caster()
	s.ctl.Add(entity,
		&components.CharacterController{},
		&mv,
		&components.ControllerGravity{Vec: b.Gravity},
		&caster,
		&components.ShapeHits{},
	)
	return entity
}
