package systems

import (
	"math"
	"sync"
	"sync/atomic"
)

// PointerForce is the interactive attractor shared by the input controller
// (single writer) and every integrator worker (readers).
// The center is packed into one word so x and y are always read together;
// active is independent and may be one tick stale.
type PointerForce struct {
	center atomic.Uint64
	active atomic.Bool
}

// Hold activates the attractor at (x, y).
func (f *PointerForce) Hold(x, y float32) {
	f.center.Store(uint64(math.Float32bits(x))<<32 | uint64(math.Float32bits(y)))
	f.active.Store(true)
}

// Release deactivates the attractor. The last center is kept.
func (f *PointerForce) Release() {
	f.active.Store(false)
}

// Load returns the current center and whether the attractor is active.
func (f *PointerForce) Load() (x, y float32, active bool) {
	active = f.active.Load()
	c := f.center.Load()
	return math.Float32frombits(uint32(c >> 32)), math.Float32frombits(uint32(c)), active
}

// StopSignal is the process-wide cooperative stop flag.
// Loops check Stopped once per iteration; sleeps select on Done.
type StopSignal struct {
	stopped atomic.Bool
	once    sync.Once
	done    chan struct{}
}

// NewStopSignal creates an unsignalled stop flag.
func NewStopSignal() *StopSignal {
	return &StopSignal{done: make(chan struct{})}
}

// Stop raises the flag. Safe to call more than once and from any goroutine.
func (s *StopSignal) Stop() {
	s.once.Do(func() {
		s.stopped.Store(true)
		close(s.done)
	})
}

// Stopped reports whether Stop has been called.
func (s *StopSignal) Stopped() bool {
	return s.stopped.Load()
}

// Done is closed when Stop is called.
func (s *StopSignal) Done() <-chan struct{} {
	return s.done
}
