package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight + 2
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// DrawCenteredBar draws a bar growing left or right from the middle for a
// value in [-limit, limit], with the value printed after it.
func (r *Renderer) DrawCenteredBar(x, y int32, label string, value, limit float64, width int32) int32 {
	barX := x + r.Theme.LabelWidth
	barWidth := width - r.Theme.LabelWidth - 60
	mid := barX + barWidth/2

	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, r.Theme.BarHeight, r.Theme.BarBg)

	frac := 0.0
	if limit > 0 {
		frac = max(-1, min(1, value/limit))
	}
	fill := int32(frac * float64(barWidth/2))
	if fill >= 0 {
		rl.DrawRectangle(mid, y+2, fill, r.Theme.BarHeight, r.Theme.BarFillPositive)
	} else {
		rl.DrawRectangle(mid+fill, y+2, -fill, r.Theme.BarHeight, r.Theme.BarFillNegative)
	}
	rl.DrawLine(mid, y, mid, y+r.Theme.BarHeight+4, r.Theme.PanelBorder)

	rl.DrawText(fmt.Sprintf("%+.2f", value), barX+barWidth+5, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}
