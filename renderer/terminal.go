package renderer

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/attractor/components"
	"github.com/pthm-cable/attractor/config"
	"github.com/pthm-cable/attractor/systems"
	"github.com/pthm-cable/attractor/ui"
)

// densityRamp maps increasing particle density per cell to glyphs.
var densityRamp = []rune(" .:-=+*#%@")

// cellAccum accumulates particles falling in one terminal cell.
type cellAccum struct {
	count   int
	r, g, b float32
}

// TerminalDriver renders a density map of the particles with tcell and
// reads mouse and keyboard input from the terminal.
type TerminalDriver struct {
	screen tcell.Screen
	events chan tcell.Event
	quit   chan struct{}

	worldW, worldH float32
	cells          []cellAccum
	held           bool
}

// NewTerminalDriver takes over the terminal.
func NewTerminalDriver(cfg *config.Config) (*TerminalDriver, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDisplayUnavailable, err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDisplayUnavailable, err)
	}
	return newTerminalDriver(screen, cfg.Derived.Width32, cfg.Derived.Height32), nil
}

func newTerminalDriver(screen tcell.Screen, worldW, worldH float32) *TerminalDriver {
	screen.EnableMouse()
	screen.HideCursor()
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))

	d := &TerminalDriver{
		screen: screen,
		events: make(chan tcell.Event, 256),
		quit:   make(chan struct{}),
		worldW: worldW,
		worldH: worldH,
	}

	// PollEvent blocks, so it gets its own goroutine; the frame loop drains the channel
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case d.events <- ev:
			case <-d.quit:
				return
			}
		}
	}()

	return d
}

// PollEvents drains pending terminal events without blocking.
func (d *TerminalDriver) PollEvents(dst []systems.Event) []systems.Event {
	for {
		select {
		case ev := <-d.events:
			dst = d.translate(dst, ev)
		default:
			return dst
		}
	}
}

func (d *TerminalDriver) translate(dst []systems.Event, ev tcell.Event) []systems.Event {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape:
			dst = append(dst, systems.Event{Kind: systems.EventCancel})
		case tcell.KeyCtrlC:
			dst = append(dst, systems.Event{Kind: systems.EventQuit})
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				dst = append(dst, systems.Event{Kind: systems.EventQuit})
			case 'h':
				dst = append(dst, systems.Event{Kind: systems.EventToggleHUD})
			}
		}

	case *tcell.EventMouse:
		held := ev.Buttons()&tcell.Button1 != 0
		if held || d.held {
			cols, rows := d.screen.Size()
			col, row := ev.Position()
			x, y := cellToWorld(col, row, cols, rows, d.worldW, d.worldH)
			dst = append(dst, systems.PointerEvent(x, y, held))
		}
		d.held = held

	case *tcell.EventResize:
		d.screen.Sync()
	}
	return dst
}

// cellToWorld maps the center of a terminal cell to world coordinates.
func cellToWorld(col, row, cols, rows int, worldW, worldH float32) (float32, float32) {
	if cols <= 0 || rows <= 0 {
		return 0, 0
	}
	x := (float32(col) + 0.5) * worldW / float32(cols)
	y := (float32(row) + 0.5) * worldH / float32(rows)
	return x, y
}

// Present draws one glyph per cell, denser glyphs for more particles.
func (d *TerminalDriver) Present(store *components.Store, hud ui.HUDData) {
	cols, rows := d.screen.Size()
	if cols <= 0 || rows <= 0 {
		return
	}

	n := cols * rows
	if cap(d.cells) < n {
		d.cells = make([]cellAccum, n)
	}
	d.cells = d.cells[:n]
	clear(d.cells)

	maxCount := accumulate(d.cells, store.All(), cols, rows, d.worldW, d.worldH)

	d.screen.Clear()
	for i := range d.cells {
		c := &d.cells[i]
		if c.count == 0 {
			continue
		}
		glyph, style := cellGlyph(c, maxCount)
		d.screen.SetContent(i%cols, i/cols, glyph, nil, style)
	}

	if hud.Visible {
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
		for row, line := range hud.Lines() {
			drawText(d.screen, 0, row, line, style)
		}
	}

	d.screen.Show()
}

// accumulate bins particles into cells and returns the largest count.
func accumulate(cells []cellAccum, particles []components.Particle, cols, rows int, worldW, worldH float32) int {
	sx := float32(cols) / worldW
	sy := float32(rows) / worldH
	maxCount := 0
	for i := range particles {
		p := &particles[i]
		col := int(p.X * sx)
		row := int(p.Y * sy)
		// A torn read may land a hair outside the viewport
		if col < 0 || col >= cols || row < 0 || row >= rows {
			continue
		}
		c := &cells[row*cols+col]
		c.count++
		c.r += p.R
		c.g += p.G
		c.b += p.B
		if c.count > maxCount {
			maxCount = c.count
		}
	}
	return maxCount
}

// cellGlyph picks a glyph on a log scale and tints it with the mean color.
func cellGlyph(c *cellAccum, maxCount int) (rune, tcell.Style) {
	level := 1.0
	if maxCount > 1 {
		level = math.Log1p(float64(c.count)) / math.Log1p(float64(maxCount))
	}
	idx := 1 + int(level*float64(len(densityRamp)-2)+0.5)
	if idx >= len(densityRamp) {
		idx = len(densityRamp) - 1
	}

	inv := 1 / float32(c.count)
	bright := float32(0.4 + 0.6*level)
	color := tcell.NewRGBColor(
		int32(255*c.r*inv*bright),
		int32(255*c.g*inv*bright),
		int32(255*c.b*inv*bright),
	)
	return densityRamp[idx], tcell.StyleDefault.Foreground(color).Background(tcell.ColorBlack)
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// Close restores the terminal.
func (d *TerminalDriver) Close() error {
	close(d.quit)
	d.screen.Fini()
	return nil
}
