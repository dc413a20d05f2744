// Package ui draws the on-screen overlay.
package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds everything the overlay shows for one frame.
type HUDData struct {
	Visible     bool
	Title       string
	Particles   int
	Workers     int
	Frame       int
	FPS         float64
	TicksPerSec float64 // per worker
	Attractor   bool
	AttractorX  float32
	AttractorY  float32
	Trails      bool
}

// Lines renders the overlay as plain text, one entry per row.
func (d HUDData) Lines() []string {
	attractor := "off"
	if d.Attractor {
		attractor = fmt.Sprintf("on @ %.0f,%.0f", d.AttractorX, d.AttractorY)
	}
	trails := "off"
	if d.Trails {
		trails = "on"
	}
	return []string{
		d.Title,
		fmt.Sprintf("Particles: %d | Workers: %d", d.Particles, d.Workers),
		fmt.Sprintf("FPS: %.0f | Ticks/s: %.1f", d.FPS, d.TicksPerSec),
		fmt.Sprintf("Attractor: %s | Trails: %s", attractor, trails),
	}
}

// HUD renders the overlay with raygui controls.
type HUD struct {
	x, y, width float32
	lineHeight  float32
}

// NewHUD creates a HUD anchored at the top-left corner.
func NewHUD() *HUD {
	return &HUD{x: 10, y: 10, width: 260, lineHeight: 20}
}

// Draw renders the HUD panel and the control legend.
func (h *HUD) Draw(data HUDData, screenWidth, screenHeight int32) {
	if !data.Visible {
		return
	}

	lines := data.Lines()
	height := h.lineHeight*float32(len(lines)) + 34

	gui.Panel(rl.Rectangle{X: h.x, Y: h.y, Width: h.width, Height: height}, lines[0])

	y := h.y + 28
	for _, line := range lines[1:] {
		gui.Label(rl.Rectangle{X: h.x + 8, Y: y, Width: h.width - 16, Height: h.lineHeight}, line)
		y += h.lineHeight
	}

	gui.StatusBar(
		rl.Rectangle{X: 0, Y: float32(screenHeight) - 22, Width: float32(screenWidth), Height: 22},
		"Hold left mouse: attract | H: toggle HUD | Esc: quit",
	)
}
