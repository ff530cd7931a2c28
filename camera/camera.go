// Package camera provides the orbit camera that follows the player.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Orbit is a camera circling a focus point at a fixed radius.
// Yaw rotates about world up (zero yaw places the camera on +Z looking down -Z)
// and pitch raises it above the horizon.
type Orbit struct {
	// Focus is the point the camera looks at
	Focus r3.Vec

	// Spherical placement around Focus
	Yaw, Pitch, Radius float64

	// Vertical field of view in degrees
	FovY float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// Constraints
	MinRadius, MaxRadius float64
	MinPitch, MaxPitch   float64

	// Values restored by Reset
	homeYaw, homePitch, homeRadius float64
}

// Limits bounds the orbit.
type Limits struct {
	MinRadius, MaxRadius float64
	MinPitch, MaxPitch   float64
}

// New creates a camera looking at the origin.
func New(viewportW, viewportH, yaw, pitch, radius, fovY float64, lim Limits) *Orbit {
	c := &Orbit{
		FovY:      fovY,
		ViewportW: viewportW,
		ViewportH: viewportH,
		MinRadius: lim.MinRadius,
		MaxRadius: lim.MaxRadius,
		MinPitch:  lim.MinPitch,
		MaxPitch:  lim.MaxPitch,
	}
	c.Yaw = wrapAngle(yaw)
	c.Pitch = clamp(pitch, c.MinPitch, c.MaxPitch)
	c.Radius = clamp(radius, c.MinRadius, c.MaxRadius)
	c.homeYaw, c.homePitch, c.homeRadius = c.Yaw, c.Pitch, c.Radius
	return c
}

// Position returns the camera eye in world space.
func (c *Orbit) Position() r3.Vec {
	sinY, cosY := math.Sincos(c.Yaw)
	sinP, cosP := math.Sincos(c.Pitch)
	offset := r3.Vec{
		X: c.Radius * cosP * sinY,
		Y: c.Radius * sinP,
		Z: c.Radius * cosP * cosY,
	}
	return r3.Add(c.Focus, offset)
}

// Forward returns the unit view direction.
func (c *Orbit) Forward() r3.Vec {
	return r3.Unit(r3.Sub(c.Focus, c.Position()))
}

// Follow moves the focus to target.
func (c *Orbit) Follow(target r3.Vec) {
	c.Focus = target
}

// Orbit rotates the camera by the given yaw and pitch deltas in radians.
// Yaw wraps; pitch is clamped.
func (c *Orbit) Orbit(dYaw, dPitch float64) {
	c.Yaw = wrapAngle(c.Yaw + dYaw)
	c.Pitch = clamp(c.Pitch+dPitch, c.MinPitch, c.MaxPitch)
}

// SetRadius sets the orbit distance, clamped to min/max.
func (c *Orbit) SetRadius(r float64) {
	c.Radius = clamp(r, c.MinRadius, c.MaxRadius)
}

// ZoomBy divides the radius by factor; factors above one move closer.
func (c *Orbit) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	c.SetRadius(c.Radius / factor)
}

// Resize updates viewport dimensions.
func (c *Orbit) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Aspect returns the viewport aspect ratio.
func (c *Orbit) Aspect() float64 {
	if c.ViewportH == 0 {
		return 1
	}
	return c.ViewportW / c.ViewportH
}

// Reset returns the camera to its initial orientation and distance.
// The focus is left where it is.
func (c *Orbit) Reset() {
	c.Yaw = c.homeYaw
	c.Pitch = c.homePitch
	c.Radius = c.homeRadius
}

// wrapAngle maps a to (-pi, pi].
func wrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
