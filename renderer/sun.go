package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hopper/components"
)

// SunRenderer draws point lights and the blob shadows they cast on static
// surfaces.
type SunRenderer struct {
	lights  *ecs.Filter2[components.Position, components.PointLight]
	bodies  *ecs.Filter3[components.Position, components.RigidBody, components.Collider]
	casters []shadowCaster
}

type shadowCaster struct {
	pos    r3.Vec
	radius float64
}

// NewSunRenderer creates a light renderer for w.
func NewSunRenderer(w *ecs.World) *SunRenderer {
	return &SunRenderer{
		lights: ecs.NewFilter2[components.Position, components.PointLight](w),
		bodies: ecs.NewFilter3[components.Position, components.RigidBody, components.Collider](w),
	}
}

// Draw renders every light and, for lights with shadows enabled, the
// shadows of dynamic bodies. Must be called inside BeginMode3D.
func (r *SunRenderer) Draw() {
	floor := math.Inf(-1)
	r.casters = r.casters[:0]

	bq := r.bodies.Query()
	for bq.Next() {
		pos, body, col := bq.Get()
		half := col.Shape.HalfSize()
		if body.Kind == components.BodyStatic {
			floor = math.Max(floor, pos.Y+half.Y)
			continue
		}
		r.casters = append(r.casters, shadowCaster{pos: pos.Vec, radius: math.Max(half.X, half.Z)})
	}

	lq := r.lights.Query()
	for lq.Next() {
		pos, light := lq.Get()
		if light.Shadows && !math.IsInf(floor, -1) {
			for _, c := range r.casters {
				r.drawShadow(pos.Vec, c, floor)
			}
		}
		r.drawGlow(pos.Vec, light.Intensity)
	}
}

// drawShadow projects the caster centre from the light onto the plane y=floor
// and draws a soft disc there, shrinking with height above the floor.
func (r *SunRenderer) drawShadow(light r3.Vec, c shadowCaster, floor float64) {
	at, ok := shadowPoint(light, c.pos, floor)
	if !ok {
		return
	}
	height := c.pos.Y - floor
	fade := 1 / (1 + 0.3*math.Max(0, height))

	center := vec3(r3.Add(at, r3.Vec{Y: 0.002}))
	rl.DrawCylinder(center, float32(c.radius*1.1), float32(c.radius*1.1), 0.001, 24, rl.Color{R: 0, G: 0, B: 0, A: uint8(40 * fade)})
	rl.DrawCylinder(center, float32(c.radius*0.8), float32(c.radius*0.8), 0.001, 24, rl.Color{R: 0, G: 0, B: 0, A: uint8(70 * fade)})
}

// drawGlow draws the light itself.
func (r *SunRenderer) drawGlow(pos r3.Vec, intensity float64) {
	glowLayers := []struct {
		radius float32
		alpha  float64
	}{
		{0.6, 30},
		{0.35, 70},
		{0.15, 220},
	}
	for _, layer := range glowLayers {
		a := math.Min(255, layer.alpha*intensity)
		rl.DrawSphere(vec3(pos), layer.radius, rl.Color{R: 255, G: 240, B: 200, A: uint8(a)})
	}
}

// shadowPoint returns where the ray from light through p meets the plane
// y=floor. It fails when p is not strictly between the light and the plane.
func shadowPoint(light, p r3.Vec, floor float64) (r3.Vec, bool) {
	if p.Y >= light.Y || p.Y < floor {
		return r3.Vec{}, false
	}
	d := r3.Sub(p, light)
	t := (floor - light.Y) / d.Y
	return r3.Add(light, r3.Scale(t, d)), true
}
