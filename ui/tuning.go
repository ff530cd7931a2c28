package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hopper/components"
)

// TuningPanel edits a controller's Movement component live.
type TuningPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool

	// values restored by the reset button
	initial components.Movement
	hasInit bool
}

// NewTuningPanel creates a hidden tuning panel.
func NewTuningPanel(x, y, width int32) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (t *TuningPanel) SetPosition(x, y int32) {
	t.x = x
	t.y = y
}

// Toggle switches panel visibility.
func (t *TuningPanel) Toggle() bool {
	t.visible = !t.visible
	return t.visible
}

// IsVisible returns whether the panel is shown.
func (t *TuningPanel) IsVisible() bool {
	return t.visible
}

// Rebind forgets the reset values, e.g. after the scene was rebuilt.
func (t *TuningPanel) Rebind() {
	t.hasInit = false
}

// Draw renders the sliders and writes changes straight into mv.
func (t *TuningPanel) Draw(mv *components.Movement) {
	if !t.visible || mv == nil {
		return
	}
	if !t.hasInit {
		t.initial = *mv
		t.hasInit = true
	}

	r := t.renderer
	pad := r.Theme.Padding
	r.DrawPanel(t.x, t.y, t.width, 290)

	x := float32(t.x + pad)
	y := float32(t.y + pad)
	sliderW := float32(t.width - 2*pad - 60)

	rl.DrawText("Movement", int32(x), int32(y), r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	y += 26

	slider := func(label string, value, lo, hi float64, format string) float64 {
		rl.DrawText(label, int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		y += 18
		v := gui.SliderBar(
			rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 18},
			"", "",
			float32(value), float32(lo), float32(hi),
		)
		rl.DrawText(fmt.Sprintf(format, v), int32(x+sliderW+8), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
		y += 30
		if float64(v) == float64(float32(value)) {
			return value
		}
		return float64(v)
	}

	mv.Acceleration = slider("Acceleration", mv.Acceleration, 0, 100, "%.1f")
	mv.Damping = slider("Damping", mv.Damping, 0.5, 0.99, "%.3f")
	mv.JumpImpulse = slider("Jump impulse", mv.JumpImpulse, 0, 20, "%.1f")

	slopeDeg := mv.MaxSlope.Radians * 180 / math.Pi
	if mv.MaxSlope.Enabled {
		slopeDeg = slider("Max slope (deg)", slopeDeg, 0, 90, "%.0f")
		mv.MaxSlope.Radians = slopeDeg * math.Pi / 180
	} else {
		rl.DrawText("Max slope: unlimited", int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		y += 48
	}

	label := "Unlimit slope"
	if !mv.MaxSlope.Enabled {
		label = "Limit slope"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 110, Height: 24}, label) {
		mv.MaxSlope.Enabled = !mv.MaxSlope.Enabled
		if mv.MaxSlope.Enabled && mv.MaxSlope.Radians == 0 {
			mv.MaxSlope.Radians = math.Pi / 4
		}
	}
	if gui.Button(rl.Rectangle{X: x + 120, Y: y, Width: 80, Height: 24}, "Reset") {
		*mv = t.initial
	}
}
