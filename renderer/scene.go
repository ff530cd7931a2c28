// Package renderer draws the 3D scene with raylib.
package renderer

import (
	"log/slog"
	"math"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hopper/camera"
	"github.com/pthm-cable/hopper/components"
	"github.com/pthm-cable/hopper/physics"
)

const cylinderSlices = 48

// SceneRenderer draws every entity carrying a Mesh and Material.
type SceneRenderer struct {
	meshes *ecs.Filter3[components.Position, components.Mesh, components.Material]
	rotMap *ecs.Map[components.Rotation]
	light  *SunRenderer

	// textured cylinders keyed by texture path
	models map[string]rl.Model
	// paths that failed to load, so we only warn once
	missing map[string]bool

	background rl.Color
}

// NewSceneRenderer creates a renderer for w. Must be called after the window
// is created.
func NewSceneRenderer(w *ecs.World) *SceneRenderer {
	return &SceneRenderer{
		meshes:     ecs.NewFilter3[components.Position, components.Mesh, components.Material](w),
		rotMap:     ecs.NewMap[components.Rotation](w),
		light:      NewSunRenderer(w),
		models:     make(map[string]rl.Model),
		missing:    make(map[string]bool),
		background: rl.Color{R: 135, G: 170, B: 210, A: 255},
	}
}

// Camera3D converts the orbit camera into a raylib camera.
func Camera3D(c *camera.Orbit) rl.Camera3D {
	return rl.Camera3D{
		Position:   vec3(c.Position()),
		Target:     vec3(c.Focus),
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       float32(c.FovY),
		Projection: rl.CameraPerspective,
	}
}

// Draw renders the scene from the orbit camera. It must be called between
// BeginDrawing and EndDrawing.
func (r *SceneRenderer) Draw(c *camera.Orbit) {
	rl.ClearBackground(r.background)

	rl.BeginMode3D(Camera3D(c))

	query := r.meshes.Query()
	for query.Next() {
		pos, mesh, mat := query.Get()
		yaw := 0.0
		if e := query.Entity(); r.rotMap.Has(e) {
			yaw = yawOf(*r.rotMap.Get(e))
		}
		r.drawMesh(pos.Vec, yaw, mesh.Shape, *mat)
	}

	r.light.Draw()

	rl.EndMode3D()
}

func (r *SceneRenderer) drawMesh(pos r3.Vec, yaw float64, s physics.Shape, mat components.Material) {
	tint := color(mat.Color)

	switch s.Kind {
	case physics.ShapeCuboid:
		size := r3.Scale(2, s.HalfExtents)
		rl.DrawCube(vec3(pos), float32(size.X), float32(size.Y), float32(size.Z), tint)
		rl.DrawCubeWires(vec3(pos), float32(size.X), float32(size.Y), float32(size.Z), rl.Fade(rl.Black, 0.4))

	case physics.ShapeSphere:
		rl.DrawSphere(vec3(pos), float32(s.Radius), tint)

	case physics.ShapeCylinder:
		// raylib cylinders start at their base
		base := r3.Sub(pos, r3.Vec{Y: s.HalfHeight})
		if model, ok := r.texturedCylinder(mat.Texture, s); ok {
			rl.DrawModelEx(model, vec3(base), rl.Vector3{Y: 1}, float32(yaw*180/math.Pi), rl.Vector3{X: 1, Y: 1, Z: 1}, rl.White)
			return
		}
		rl.DrawCylinder(vec3(base), float32(s.Radius), float32(s.Radius), float32(2*s.HalfHeight), cylinderSlices, tint)
	}
}

// texturedCylinder returns a cylinder model wearing the texture at path, or
// false when there is no usable texture.
func (r *SceneRenderer) texturedCylinder(path string, s physics.Shape) (rl.Model, bool) {
	if path == "" || r.missing[path] {
		return rl.Model{}, false
	}
	if m, ok := r.models[path]; ok {
		return m, true
	}
	if _, err := os.Stat(path); err != nil {
		slog.Warn("texture not found, using flat colour", "path", path, "error", err)
		r.missing[path] = true
		return rl.Model{}, false
	}

	tex := rl.LoadTexture(path)
	model := rl.LoadModelFromMesh(rl.GenMeshCylinder(float32(s.Radius), float32(2*s.HalfHeight), cylinderSlices))
	rl.SetMaterialTexture(model.Materials, rl.MapDiffuse, tex)
	r.models[path] = model
	return model, true
}

// Unload frees GPU resources.
func (r *SceneRenderer) Unload() {
	for path, m := range r.models {
		rl.UnloadModel(m)
		delete(r.models, path)
	}
}

// yawOf returns the rotation about world up that takes +X to where rot sends it.
func yawOf(rot components.Rotation) float64 {
	v := rot.Apply(r3.Vec{X: 1})
	return math.Atan2(-v.Z, v.X)
}

func vec3(v r3.Vec) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

func color(c components.Color) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
