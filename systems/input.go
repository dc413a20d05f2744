package systems

// EventKind identifies an input event.
type EventKind uint8

const (
	EventPointer   EventKind = iota // pointer sample, Held tells whether the trigger is down
	EventQuit                       // window closed or process asked to quit
	EventCancel                     // designated cancel key
	EventToggleHUD                  // show/hide the overlay
)

// Event is one input sample from a driver.
type Event struct {
	Kind EventKind
	X, Y float32
	Held bool
}

// PointerEvent builds a pointer sample.
func PointerEvent(x, y float32, held bool) Event {
	return Event{Kind: EventPointer, X: x, Y: y, Held: held}
}

// PointerController turns input events into pointer force state and stop requests.
type PointerController struct {
	pointer *PointerForce
	stop    *StopSignal
}

// NewPointerController creates a controller writing to the given shared state.
func NewPointerController(pointer *PointerForce, stop *StopSignal) *PointerController {
	return &PointerController{pointer: pointer, stop: stop}
}

// Apply handles a single event. Kinds the controller does not own are ignored.
func (c *PointerController) Apply(ev Event) {
	switch ev.Kind {
	case EventPointer:
		if ev.Held {
			c.pointer.Hold(ev.X, ev.Y)
		} else {
			c.pointer.Release()
		}
	case EventQuit, EventCancel:
		c.stop.Stop()
	}
}

// ApplyAll handles a batch of events in order and reports whether the
// caller should keep running.
func (c *PointerController) ApplyAll(events []Event) bool {
	for _, ev := range events {
		c.Apply(ev)
	}
	return !c.stop.Stopped()
}
