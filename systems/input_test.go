package systems

import "testing"

func TestPointerControllerApply(t *testing.T) {
	tests := []struct {
		name       string
		events     []Event
		wantActive bool
		wantX      float32
		wantY      float32
		wantStop   bool
	}{
		{
			name:       "held activates at pointer",
			events:     []Event{PointerEvent(10, 20, true)},
			wantActive: true, wantX: 10, wantY: 20,
		},
		{
			name:       "latest sample wins",
			events:     []Event{PointerEvent(10, 20, true), PointerEvent(30, 40, true)},
			wantActive: true, wantX: 30, wantY: 40,
		},
		{
			name:   "release deactivates",
			events: []Event{PointerEvent(10, 20, true), PointerEvent(11, 21, false)},
			wantX:  10, wantY: 20,
		},
		{
			name:     "quit stops",
			events:   []Event{{Kind: EventQuit}},
			wantStop: true,
		},
		{
			name:     "cancel key stops",
			events:   []Event{PointerEvent(1, 2, true), {Kind: EventCancel}},
			wantStop: true, wantActive: true, wantX: 1, wantY: 2,
		},
		{
			name:   "hud toggle ignored",
			events: []Event{{Kind: EventToggleHUD}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pointer := &PointerForce{}
			stop := NewStopSignal()
			c := NewPointerController(pointer, stop)

			running := c.ApplyAll(tc.events)

			x, y, active := pointer.Load()
			if active != tc.wantActive {
				t.Errorf("active = %v, want %v", active, tc.wantActive)
			}
			if tc.wantActive && (x != tc.wantX || y != tc.wantY) {
				t.Errorf("center = (%v, %v), want (%v, %v)", x, y, tc.wantX, tc.wantY)
			}
			if stop.Stopped() != tc.wantStop {
				t.Errorf("stopped = %v, want %v", stop.Stopped(), tc.wantStop)
			}
			if running == tc.wantStop {
				t.Errorf("ApplyAll returned %v with stop=%v", running, tc.wantStop)
			}
		})
	}
}
