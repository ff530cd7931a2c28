package components

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Position is an entity's world position (collider centre).
type Position struct {
	r3.Vec
}

// LinearVelocity is an entity's velocity in world units per second.
type LinearVelocity struct {
	r3.Vec
}

// Rotation is an entity's orientation. The zero value is the identity.
type Rotation struct {
	Q r3.Rotation
}

// RotationY returns a rotation of angle radians about the world up axis.
func RotationY(angle float64) Rotation {
	return Rotation{Q: r3.NewRotation(angle, r3.Vec{Y: 1})}
}

// Apply rotates v by r.
func (r Rotation) Apply(v r3.Vec) r3.Vec {
	if r.Q == (r3.Rotation{}) {
		return v
	}
	return r.Q.Rotate(v)
}

// Inverse returns the opposite rotation.
func (r Rotation) Inverse() Rotation {
	if r.Q == (r3.Rotation{}) {
		return r
	}
	return Rotation{Q: r3.Rotation(quat.Conj(quat.Number(r.Q)))}
}
