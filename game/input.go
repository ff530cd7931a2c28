package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// handleInput processes non-movement keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeyR) {
		g.Reset()
	}

	if rl.IsKeyPressed(rl.KeyF1) {
		g.tuning.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF3) {
		g.showPerf = !g.showPerf
	}

	// Camera controls
	g.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	if cam, err := g.sim.Camera(); err == nil {
		cam.Resize(float64(w), float64(h))
	}
	g.perfPanel.SetPosition(int32(w)-260, 10)
	g.tuning.SetPosition(int32(w)-280, 220)
}

// handleCameraInput processes camera orbit and zoom controls.
func (g *Game) handleCameraInput() {
	cam, err := g.sim.Camera()
	if err != nil {
		return
	}
	cc := g.cfg.Camera

	// Right mouse drag orbits
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		cam.Orbit(-float64(d.X)*cc.MouseSensitivity, float64(d.Y)*cc.MouseSensitivity)
	}

	// Arrow keys orbit at a fixed angular speed
	step := cc.OrbitSpeed * float64(rl.GetFrameTime())
	if rl.IsKeyDown(rl.KeyLeft) {
		cam.Orbit(-step, 0)
	}
	if rl.IsKeyDown(rl.KeyRight) {
		cam.Orbit(step, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		cam.Orbit(0, step)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		cam.Orbit(0, -step)
	}

	// Zoom controls: mouse wheel or +/- keys
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		cam.ZoomBy(math.Pow(cc.ZoomStep, float64(wheel)))
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		cam.ZoomBy(cc.ZoomStep)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		cam.ZoomBy(1 / cc.ZoomStep)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		cam.Reset()
	}
}
