package components

import "github.com/pthm-cable/hopper/physics"

// Player marks the single keyboard-controlled entity.
type Player struct{}

// SceneEntity marks entities owned by the game scene; all of them are
// despawned on teardown.
type SceneEntity struct{}

// ActiveCamera marks the camera entity whose orientation drives input.
type ActiveCamera struct{}

// Color is an sRGB colour with alpha.
type Color struct {
	R, G, B, A uint8
}

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// Mesh describes what the renderer draws for an entity.
type Mesh struct {
	Shape physics.Shape
}

// Material describes surface appearance.
type Material struct {
	Color   Color
	Texture string // optional texture path, empty for flat colour
}

// PointLight is an omnidirectional light source.
type PointLight struct {
	Intensity float64
	Shadows   bool
}
