package game

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/attractor/components"
	"github.com/pthm-cable/attractor/systems"
)

// workerState holds per-worker counters read by telemetry.
type workerState struct {
	ticks    atomic.Uint64
	overruns atomic.Uint64 // ticks that left no time to sleep
	workNs   atomic.Int64
	lastDT   atomic.Uint32 // float32 bits
}

// WorkerStats is a snapshot of one worker's counters.
type WorkerStats struct {
	ID       int
	Range    components.Range
	Ticks    uint64
	Overruns uint64
	AvgWork  time.Duration
	LastDT   float32
}

// Scheduler owns a fixed partition of the store and drives one integrator
// goroutine per range at the tick interval, independently of the frame loop.
type Scheduler struct {
	store      *components.Store
	integrator *systems.Integrator
	stop       *systems.StopSignal
	ranges     []components.Range
	interval   time.Duration
	timeScale  float32

	workers []workerState
	wg      sync.WaitGroup
	running bool
}

// NewScheduler partitions the store across numWorkers ranges.
// Wall-clock deltas are multiplied by timeScale before being passed as dt.
func NewScheduler(store *components.Store, integrator *systems.Integrator, stop *systems.StopSignal,
	numWorkers int, interval time.Duration, timeScale float32) *Scheduler {
	ranges := components.Partition(store.Len(), numWorkers)
	return &Scheduler{
		store:      store,
		integrator: integrator,
		stop:       stop,
		ranges:     ranges,
		interval:   interval,
		timeScale:  timeScale,
		workers:    make([]workerState, len(ranges)),
	}
}

// Ranges returns the partition, one range per worker.
func (s *Scheduler) Ranges() []components.Range {
	return s.ranges
}

// Start launches the worker goroutines.
func (s *Scheduler) Start() {
	if s.running {
		return
	}
	s.running = true

	for i := range s.ranges {
		s.wg.Add(1)
		go s.worker(i)
	}
}

// Stop raises the stop signal and waits for every worker to finish its tick.
func (s *Scheduler) Stop() {
	s.stop.Stop()
	s.wg.Wait()
	s.running = false
}

// worker integrates its range until the stop signal is observed.
// A tick that finishes early sleeps out the rest of the interval; an overrun
// starts the next tick immediately.
func (s *Scheduler) worker(id int) {
	defer s.wg.Done()
	particles := s.store.Slice(s.ranges[id])
	state := &s.workers[id]

	// First tick behaves as if exactly one interval passed
	last := time.Now().Add(-s.interval)

	for !s.stop.Stopped() {
		start := time.Now()
		dt := float32(start.Sub(last).Seconds()) * s.timeScale
		last = start

		s.integrator.Integrate(particles, dt)

		work := time.Since(start)
		state.ticks.Add(1)
		state.workNs.Add(int64(work))
		state.lastDT.Store(math.Float32bits(dt))

		rest := s.interval - work
		if rest <= 0 {
			state.overruns.Add(1)
			continue
		}
		if !sleepFor(rest, s.stop.Done()) {
			return
		}
	}
}

// Stats returns a snapshot of all worker counters.
func (s *Scheduler) Stats() []WorkerStats {
	stats := make([]WorkerStats, len(s.workers))
	for i := range s.workers {
		w := &s.workers[i]
		ticks := w.ticks.Load()
		var avg time.Duration
		if ticks > 0 {
			avg = time.Duration(w.workNs.Load() / int64(ticks))
		}
		stats[i] = WorkerStats{
			ID:       i,
			Range:    s.ranges[i],
			Ticks:    ticks,
			Overruns: w.overruns.Load(),
			AvgWork:  avg,
			LastDT:   math.Float32frombits(w.lastDT.Load()),
		}
	}
	return stats
}

// TotalTicks sums ticks over all workers.
func (s *Scheduler) TotalTicks() uint64 {
	var total uint64
	for i := range s.workers {
		total += s.workers[i].ticks.Load()
	}
	return total
}

// sleepFor pauses for d or until done is closed. It reports whether the
// full duration elapsed.
func sleepFor(d time.Duration, done <-chan struct{}) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-done:
		return false
	}
}
