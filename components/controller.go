package components

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hopper/physics"
)

// CharacterController marks an entity driven by the movement pipeline.
type CharacterController struct{}

// Grounded marks a controlled entity standing on a walkable surface this frame.
// It is added and removed by the ground classifier every frame.
type Grounded struct{}

// SlopeLimit is an optional maximum walkable slope angle.
// The zero value means no limit: any contact grounds the body.
type SlopeLimit struct {
	Radians float64
	Enabled bool
}

// MaxSlope returns a limit of the given angle in radians.
func MaxSlope(radians float64) SlopeLimit {
	return SlopeLimit{Radians: radians, Enabled: true}
}

// NoSlopeLimit returns the unlimited policy.
func NoSlopeLimit() SlopeLimit {
	return SlopeLimit{}
}

// Walkable reports whether a world-space surface normal is within the limit.
func (l SlopeLimit) Walkable(normal r3.Vec) bool {
	if !l.Enabled {
		return true
	}
	return math.Abs(physics.AngleBetween(normal, r3.Vec{Y: 1})) <= l.Radians
}

// Movement holds per-body movement tuning.
type Movement struct {
	Acceleration float64 // horizontal acceleration per unit intent
	Damping      float64 // per-frame horizontal velocity multiplier in (0,1)
	JumpImpulse  float64 // vertical velocity set on jump
	MaxSlope     SlopeLimit
}

// DefaultMovement returns the stock tuning: 30 accel, 0.9 damping, 7 jump, 0.45π slope.
func DefaultMovement() Movement {
	return Movement{
		Acceleration: 30,
		Damping:      0.9,
		JumpImpulse:  7,
		MaxSlope:     MaxSlope(math.Pi * 0.45),
	}
}

// ControllerGravity is the per-body gravitational acceleration.
type ControllerGravity struct {
	r3.Vec
}

// ShapeCaster describes a shape cast performed every frame from the owner's position.
type ShapeCaster struct {
	Shape       physics.Shape
	Direction   r3.Vec
	MaxDistance float64
}

// ShapeHits holds the most recent cast results of a ShapeCaster.
// Normals are in the caster's local frame.
type ShapeHits struct {
	Hits []physics.Hit
}
