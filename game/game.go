// Package game wires the particle store, the integrator workers and a
// display driver into the running simulation.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/attractor/components"
	"github.com/pthm-cable/attractor/config"
	"github.com/pthm-cable/attractor/systems"
	"github.com/pthm-cable/attractor/telemetry"
	"github.com/pthm-cable/attractor/ui"
)

// Driver presents the store and supplies input. Present must not mutate particles.
type Driver interface {
	PollEvents(dst []systems.Event) []systems.Event
	Present(store *components.Store, hud ui.HUDData)
	Close() error
}

// Options holds runtime settings that are not part of the config file.
type Options struct {
	Seed      int64
	LogStats  bool   // log window and perf stats via slog
	OutputDir string // CSV output directory, empty disables
	MaxFrames int    // stop after this many frames, 0 = unlimited
}

// Game owns the simulation state and the frame loop.
type Game struct {
	cfg    *config.Config
	opts   Options
	driver Driver

	store      *components.Store
	pointer    *systems.PointerForce
	stop       *systems.StopSignal
	controller *systems.PointerController
	integrator *systems.Integrator
	scheduler  *Scheduler

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	lastStats telemetry.WindowStats

	workerTicks []telemetry.WorkerTick

	events  []systems.Event
	frame   int
	showHUD bool
}

// New builds the simulation. It fails only on initialization errors.
func New(cfg *config.Config, opts Options, driver Driver) (*Game, error) {
	boundary, err := systems.NewBoundary(cfg.Physics.Boundary, cfg.Derived.Width32, cfg.Derived.Height32)
	if err != nil {
		return nil, fmt.Errorf("boundary: %w", err)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	store := components.NewStore(
		cfg.Particles.Count,
		cfg.Derived.Width32, cfg.Derived.Height32,
		lookFromConfig(cfg), rng,
	)

	pointer := &systems.PointerForce{}
	stop := systems.NewStopSignal()
	integrator := systems.NewIntegrator(systems.ParamsFromConfig(cfg), boundary, pointer)

	g := &Game{
		cfg:        cfg,
		opts:       opts,
		driver:     driver,
		store:      store,
		pointer:    pointer,
		stop:       stop,
		controller: systems.NewPointerController(pointer, stop),
		integrator: integrator,
		scheduler: NewScheduler(store, integrator, stop,
			cfg.Derived.NumWorkers, cfg.Derived.TickInterval, float32(cfg.Physics.TimeScale)),
		perf:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		output:  output,
		showHUD: cfg.Render.HUD,
	}
	return g, nil
}

func lookFromConfig(cfg *config.Config) components.Look {
	look := components.Look{Alpha: float32(cfg.Particles.Alpha)}
	for i := 0; i < 3; i++ {
		look.ColorMin[i] = float32(cfg.Particles.ColorMin[i])
		look.ColorMax[i] = float32(cfg.Particles.ColorMax[i])
	}
	return look
}

// Store returns the particle store.
func (g *Game) Store() *components.Store { return g.store }

// Pointer returns the shared attractor state.
func (g *Game) Pointer() *systems.PointerForce { return g.pointer }

// Scheduler returns the worker scheduler.
func (g *Game) Scheduler() *Scheduler { return g.scheduler }

// Frame returns the number of frames presented so far.
func (g *Game) Frame() int { return g.frame }

// Run starts the workers and drives the frame loop until a quit or cancel
// event, MaxFrames, or ctx cancellation. Workers are joined before it returns.
func (g *Game) Run(ctx context.Context) error {
	slog.Info("starting simulation",
		"particles", g.store.Len(),
		"workers", len(g.scheduler.Ranges()),
		"tick_interval", g.cfg.Derived.TickInterval,
		"seed", g.opts.Seed,
	)

	g.collector = telemetry.NewCollector(g.cfg.Derived.StatsWindow, time.Now())
	g.scheduler.Start()

	go func() {
		select {
		case <-ctx.Done():
			g.stop.Stop()
		case <-g.stop.Done():
		}
	}()

	interval := g.cfg.Derived.TickInterval
	for !g.stop.Stopped() {
		frameStart := time.Now()
		g.step(frameStart)

		if g.opts.MaxFrames > 0 && g.frame >= g.opts.MaxFrames {
			slog.Info("max frames reached", "frame", g.frame)
			g.stop.Stop()
			break
		}

		if rest := interval - time.Since(frameStart); rest > 0 {
			sleepFor(rest, g.stop.Done())
		}
	}

	g.scheduler.Stop()
	g.logShutdown()
	return nil
}

// step runs one frame: input, present, telemetry.
func (g *Game) step(now time.Time) {
	g.perf.StartFrame()

	g.perf.StartPhase(telemetry.PhaseInput)
	g.events = g.driver.PollEvents(g.events[:0])
	for _, ev := range g.events {
		if ev.Kind == systems.EventToggleHUD {
			g.showHUD = !g.showHUD
		}
	}
	if !g.controller.ApplyAll(g.events) {
		g.perf.EndFrame()
		return
	}

	g.perf.StartPhase(telemetry.PhasePresent)
	g.driver.Present(g.store, g.hudData())
	g.frame++

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	if g.collector.Due(now) {
		g.sampleWindow(now)
	}

	g.perf.EndFrame()
}

func (g *Game) hudData() ui.HUDData {
	cx, cy, active := g.pointer.Load()
	return ui.HUDData{
		Visible:     g.showHUD,
		Title:       "Attractor",
		Particles:   g.store.Len(),
		Workers:     len(g.scheduler.Ranges()),
		Frame:       g.frame,
		FPS:         g.perf.Stats().FPS,
		TicksPerSec: g.lastStats.TicksPerSecond,
		Attractor:   active,
		AttractorX:  cx,
		AttractorY:  cy,
		Trails:      g.cfg.Render.Trails,
	}
}
