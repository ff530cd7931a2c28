package components

import (
	"github.com/pthm-cable/hopper/physics"
)

// BodyKind selects how the solver treats a rigid body.
type BodyKind uint8

const (
	BodyStatic BodyKind = iota
	BodyDynamic
)

// RigidBody holds solver properties of an entity.
type RigidBody struct {
	Kind         BodyKind
	InvMass      float64 // 0 for static bodies
	GravityScale float64 // multiplier on engine gravity; controllers use 0 and carry their own
	Friction     float64 // tangential velocity loss per second in contact; pairs combine by geometric mean
	LockRotation bool
}

// Collider attaches a collision shape to an entity.
type Collider struct {
	Shape physics.Shape
}

// NewDynamicBody returns a dynamic body whose mass follows shape volume and density.
func NewDynamicBody(shape physics.Shape, density, gravityScale, friction float64) RigidBody {
	mass := shape.Volume() * density
	inv := 0.0
	if mass > 0 {
		inv = 1 / mass
	}
	return RigidBody{
		Kind:         BodyDynamic,
		InvMass:      inv,
		GravityScale: gravityScale,
		Friction:     friction,
	}
}

// StaticBody returns an immovable body with the given friction coefficient.
func StaticBody(friction float64) RigidBody {
	return RigidBody{Kind: BodyStatic, Friction: friction}
}
