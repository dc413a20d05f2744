package renderer

import (
	"testing"

	"github.com/pthm-cable/attractor/components"
	"github.com/pthm-cable/attractor/systems"
	"github.com/pthm-cable/attractor/ui"
)

func TestHeadlessScript(t *testing.T) {
	d := NewHeadlessDriver(
		[]systems.Event{systems.PointerEvent(1, 2, true)},
		nil,
		[]systems.Event{{Kind: systems.EventQuit}},
	)

	var got [][]systems.Event
	for i := 0; i < 4; i++ {
		got = append(got, d.PollEvents(nil))
	}

	if len(got[0]) != 1 || got[0][0].Kind != systems.EventPointer {
		t.Errorf("frame 0 = %+v", got[0])
	}
	if len(got[1]) != 0 || len(got[3]) != 0 {
		t.Errorf("frames 1 and 3 should be empty: %+v, %+v", got[1], got[3])
	}
	if len(got[2]) != 1 || got[2][0].Kind != systems.EventQuit {
		t.Errorf("frame 2 = %+v", got[2])
	}

	d.Present(components.NewStoreFrom(nil), ui.HUDData{Frame: 7})
	if d.Presented() != 1 || d.LastHUD().Frame != 7 {
		t.Errorf("presented = %d, last frame = %d", d.Presented(), d.LastHUD().Frame)
	}
}
