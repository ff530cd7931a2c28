// Package controller implements the character controller pipeline: input
// translation, ground classification, movement integration, gravity and
// damping, run in that order once per frame.
package controller

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// IntentKind identifies a movement intent.
type IntentKind uint8

const (
	// IntentMove carries a planar direction.
	IntentMove IntentKind = iota
	// IntentJump requests a jump.
	IntentJump
)

// String returns the intent name.
func (k IntentKind) String() string {
	switch k {
	case IntentMove:
		return "move"
	case IntentJump:
		return "jump"
	}
	return "unknown"
}

// Intent is a frame-scoped movement message. Intents produced in a frame are
// consumed by the integrator in the same frame and then discarded.
type Intent struct {
	Kind IntentKind
	// Direction is a unit or zero vector on the ground plane: X is world X and
	// Y is world Z. Only set for IntentMove.
	Direction r2.Vec
}

// Move returns a planar move intent.
func Move(dir r2.Vec) Intent {
	return Intent{Kind: IntentMove, Direction: dir}
}

// Jump returns a jump intent.
func Jump() Intent {
	return Intent{Kind: IntentJump}
}
