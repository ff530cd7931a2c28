package controller

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Keys is the pressed state of the movement bindings for one frame.
type Keys struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Jump     bool
}

// InputTranslator turns key state and camera yaw into intents.
// It remembers the jump key between frames so jumps fire on the press edge only.
type InputTranslator struct {
	jumpHeld bool
}

// NewInputTranslator creates a translator with no keys held.
func NewInputTranslator() *InputTranslator {
	return &InputTranslator{}
}

// Translate appends this frame's intents to dst. A move intent is always
// emitted, zero when no direction key is held. A jump intent is emitted only on
// the frame the jump key goes down.
func (t *InputTranslator) Translate(dst []Intent, keys Keys, yaw float64) []Intent {
	forward, right := Basis(yaw)

	var dir r2.Vec
	if keys.Forward {
		dir = r2.Add(dir, forward)
	}
	if keys.Backward {
		dir = r2.Sub(dir, forward)
	}
	if keys.Left {
		dir = r2.Sub(dir, right)
	}
	if keys.Right {
		dir = r2.Add(dir, right)
	}
	dst = append(dst, Move(normalize(dir)))

	if keys.Jump && !t.jumpHeld {
		dst = append(dst, Jump())
	}
	t.jumpHeld = keys.Jump
	return dst
}

// Reset forgets the held jump key.
func (t *InputTranslator) Reset() {
	t.jumpHeld = false
}

// Basis returns the planar forward and right unit vectors for a camera yaw in
// radians. Yaw rotates about world up; zero yaw looks down -Z.
func Basis(yaw float64) (forward, right r2.Vec) {
	sin, cos := math.Sincos(yaw)
	forward = r2.Vec{X: -sin, Y: -cos}
	right = r2.Vec{X: cos, Y: -sin}
	return forward, right
}

// normalize returns the unit vector of v, or zero for zero or non-finite input.
func normalize(v r2.Vec) r2.Vec {
	if !finite(v.X) || !finite(v.Y) {
		return r2.Vec{}
	}
	n := r2.Norm(v)
	if n < 1e-9 {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
