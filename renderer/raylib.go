package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/attractor/components"
	"github.com/pthm-cable/attractor/config"
	"github.com/pthm-cable/attractor/systems"
	"github.com/pthm-cable/attractor/ui"
)

// RaylibDriver draws particles into a window and reads mouse/keyboard input.
// Motion blur comes from a persistent canvas that is darkened every frame
// instead of cleared.
type RaylibDriver struct {
	width, height int32
	canvas        rl.RenderTexture2D
	fade          float32
	particles     *ParticleRenderer
	hud           *ui.HUD

	held bool // left button state seen on the previous poll
}

// NewRaylibDriver opens the window. It must be called on the main goroutine.
func NewRaylibDriver(cfg *config.Config) (*RaylibDriver, error) {
	w, h := int32(cfg.Screen.Width), int32(cfg.Screen.Height)

	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(w, h, "Attractor")
	if !rl.IsWindowReady() {
		return nil, fmt.Errorf("%w: raylib window did not open", ErrDisplayUnavailable)
	}
	// Escape is reported as a cancel event instead of closing the window directly
	rl.SetExitKey(rl.KeyNull)

	d := &RaylibDriver{
		width:     w,
		height:    h,
		canvas:    rl.LoadRenderTexture(w, h),
		fade:      float32(cfg.Render.Fade),
		particles: NewParticleRenderer(cfg.Render.Trails, float32(cfg.Particles.Size)),
		hud:       ui.NewHUD(),
	}

	rl.BeginTextureMode(d.canvas)
	rl.ClearBackground(rl.Black)
	rl.EndTextureMode()

	return d, nil
}

// PollEvents appends the input seen since the last frame.
func (d *RaylibDriver) PollEvents(dst []systems.Event) []systems.Event {
	if rl.WindowShouldClose() {
		dst = append(dst, systems.Event{Kind: systems.EventQuit})
	}
	if rl.IsKeyPressed(rl.KeyEscape) {
		dst = append(dst, systems.Event{Kind: systems.EventCancel})
	}
	if rl.IsKeyPressed(rl.KeyH) {
		dst = append(dst, systems.Event{Kind: systems.EventToggleHUD})
	}

	held := rl.IsMouseButtonDown(rl.MouseButtonLeft)
	if held || d.held {
		pos := rl.GetMousePosition()
		dst = append(dst, systems.PointerEvent(pos.X, pos.Y, held))
	}
	d.held = held

	return dst
}

// Present draws the store. Particles are read while workers write them.
func (d *RaylibDriver) Present(store *components.Store, hud ui.HUDData) {
	rl.BeginTextureMode(d.canvas)

	// Keep fade of the previous frame
	rl.DrawRectangle(0, 0, d.width, d.height, rl.Fade(rl.Black, 1-d.fade))

	d.particles.Draw(store.All())

	rl.EndTextureMode()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	// Render textures are stored upside down
	rl.DrawTextureRec(
		d.canvas.Texture,
		rl.Rectangle{X: 0, Y: 0, Width: float32(d.width), Height: -float32(d.height)},
		rl.Vector2{},
		rl.White,
	)
	d.hud.Draw(hud, d.width, d.height)
	rl.EndDrawing()
}

// Close releases the canvas and closes the window.
func (d *RaylibDriver) Close() error {
	rl.UnloadRenderTexture(d.canvas)
	rl.CloseWindow()
	return nil
}
