package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hopper/ui"
)

const controlsLegend = "WASD move | SPACE jump | RMB/arrows orbit | wheel zoom | R reset | F1 tuning | F3 perf | F11 fullscreen"

// Draw renders the game state.
func (g *Game) Draw() {
	rl.BeginDrawing()

	if cam, err := g.sim.Camera(); err == nil {
		g.scene.Draw(cam)
	}

	g.drawUI()

	rl.EndDrawing()
	g.sim.Perf().RecordFrame()
}

// drawUI draws the HUD, the optional panels and the controls legend.
func (g *Game) drawUI() {
	sc := g.cfg.Screen
	g.hud.Draw(ui.HUDData{
		FPS:          rl.GetFPS(),
		ShowFPS:      sc.ShowFPS,
		FPSFontSize:  int32(sc.FPSFontSize),
		Tick:         g.sim.Tick(),
		Grounded:     g.last.Grounded,
		Position:     g.last.Player,
		Velocity:     g.last.Velocity,
		Stats:        g.sim.LastStats(),
		ScreenWidth:  int32(g.screenWidth),
		ScreenHeight: int32(g.screenHeight),
	})

	if g.showPerf {
		g.perfPanel.Draw(g.sim.Perf().Stats(), g.sim.Registry())
	}

	if g.tuning.IsVisible() {
		mv, err := g.sim.PlayerMovement()
		if err != nil {
			slog.Error("tuning panel has no player", "error", err)
		} else {
			g.tuning.Draw(mv)
		}
	}

	g.hud.DrawControls(int32(g.screenHeight), controlsLegend)
}
