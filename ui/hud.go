package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hopper/systems"
	"github.com/pthm-cable/hopper/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	FPS          int32
	ShowFPS      bool
	FPSFontSize  int32
	Tick         int32
	Grounded     bool
	Position     r3.Vec
	Velocity     r3.Vec
	Stats        telemetry.WindowStats
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	x := int32(10)
	y := int32(10)

	if data.ShowFPS {
		rl.DrawText(fmt.Sprintf("%d", data.FPS), x, y, data.FPSFontSize, r.Theme.FPSColor)
		y += data.FPSFontSize + 6
	}

	const width = 260
	r.DrawPanel(x-4, y-4, width, 9*r.Theme.LineHeight+12)
	y = r.DrawSectionHeader(x, y, "Player")

	state, stateColor := "airborne", rl.Orange
	if data.Grounded {
		state, stateColor = "grounded", rl.Green
	}
	rl.DrawText("State:", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(state, x+r.Theme.LabelWidth, y, r.Theme.FontSize, stateColor)
	y += r.Theme.LineHeight

	p := data.Position
	y = r.DrawLabelValue(x, y, "Position", fmt.Sprintf("%.2f, %.2f, %.2f", p.X, p.Y, p.Z))
	y = r.DrawCenteredBar(x, y, "Vel X", data.Velocity.X, 10, width)
	y = r.DrawCenteredBar(x, y, "Vel Y", data.Velocity.Y, 10, width)
	y = r.DrawCenteredBar(x, y, "Vel Z", data.Velocity.Z, 10, width)

	s := data.Stats
	y = r.DrawLabelValue(x, y, "Grounded", fmt.Sprintf("%.0f%%", s.GroundedFrac*100))
	y = r.DrawLabelValue(x, y, "Speed", fmt.Sprintf("avg %.2f  max %.2f", s.SpeedMean, s.SpeedMax))
	r.DrawLabelValue(x, y, "Tick", fmt.Sprintf("%d", data.Tick))
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase frame timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel. With a registry, phases are grouped by
// system category; otherwise they are listed in frame order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats, registry *systems.SystemRegistry) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Phases", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s", stats.AvgTickDuration.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	if registry == nil {
		for _, name := range telemetry.Phases {
			y = p.drawPhase(x, y, name, name, stats)
		}
		return
	}

	for _, cat := range registry.Categories() {
		rl.DrawText(cat, x, y, 12, rl.SkyBlue)
		y += 14
		for _, info := range registry.ByCategory(cat) {
			y = p.drawPhase(x+8, y, info.ID, info.Name, stats)
		}
	}
}

// drawPhase draws one phase row and returns the next row's y.
func (p *PerfPanel) drawPhase(x, y int32, id, label string, stats telemetry.PerfStats) int32 {
	pct := stats.PhasePct[id]
	color := rl.LightGray
	if pct > 40 {
		color = rl.Red
	} else if pct > 20 {
		color = rl.Orange
	}

	rl.DrawText(
		fmt.Sprintf("%-14s %6s %5.1f%%", label, stats.PhaseAvg[id].Round(time.Microsecond), pct),
		x, y, 12, color,
	)
	return y + 14
}
