package renderer

import (
	"github.com/pthm-cable/attractor/components"
	"github.com/pthm-cable/attractor/systems"
	"github.com/pthm-cable/attractor/ui"
)

// HeadlessDriver draws nothing. Scripted events, one batch per frame, stand
// in for a user.
type HeadlessDriver struct {
	script    [][]systems.Event
	frame     int
	presented int
	lastHUD   ui.HUDData
}

// NewHeadlessDriver creates a driver replaying script[i] on frame i.
func NewHeadlessDriver(script ...[]systems.Event) *HeadlessDriver {
	return &HeadlessDriver{script: script}
}

// PollEvents returns the scripted batch for the current frame.
func (d *HeadlessDriver) PollEvents(dst []systems.Event) []systems.Event {
	if d.frame < len(d.script) {
		dst = append(dst, d.script[d.frame]...)
	}
	d.frame++
	return dst
}

// Present counts frames.
func (d *HeadlessDriver) Present(_ *components.Store, hud ui.HUDData) {
	d.presented++
	d.lastHUD = hud
}

// Presented returns the number of frames presented.
func (d *HeadlessDriver) Presented() int {
	return d.presented
}

// LastHUD returns the overlay data of the last presented frame.
func (d *HeadlessDriver) LastHUD() ui.HUDData {
	return d.lastHUD
}

// Close is a no-op.
func (d *HeadlessDriver) Close() error {
	return nil
}
