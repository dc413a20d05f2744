package game

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/attractor/config"
	"github.com/pthm-cable/attractor/renderer"
	"github.com/pthm-cable/attractor/systems"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Screen.Width = 320
	cfg.Screen.Height = 240
	cfg.Particles.Count = 2000
	cfg.Workers.Count = 4
	cfg.Workers.TickInterval = 0.002
	cfg.Render.Driver = config.DriverHeadless
	// Stats sampling reads particles while workers write them, which the race
	// detector reports. Only tests that need telemetry turn it on.
	cfg.Telemetry.StatsWindow = 0
	if err := cfg.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return cfg
}

func runWithTimeout(t *testing.T, g *Game, timeout time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := g.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("Run only returned because the context timed out")
	}
}

func TestRunStopsAtMaxFrames(t *testing.T) {
	driver := renderer.NewHeadlessDriver()
	g, err := New(testConfig(t), Options{Seed: 1, MaxFrames: 5}, driver)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	runWithTimeout(t, g, 5*time.Second)

	if driver.Presented() != 5 {
		t.Errorf("presented %d frames, want 5", driver.Presented())
	}
	if g.Frame() != 5 {
		t.Errorf("Frame() = %d, want 5", g.Frame())
	}
	if g.Scheduler().TotalTicks() == 0 {
		t.Error("workers never ticked")
	}

	hud := driver.LastHUD()
	if hud.Particles != 2000 || hud.Workers != 4 {
		t.Errorf("HUD particles/workers = %d/%d, want 2000/4", hud.Particles, hud.Workers)
	}
}

func TestRunAppliesScriptedPointer(t *testing.T) {
	driver := renderer.NewHeadlessDriver(
		[]systems.Event{systems.PointerEvent(100, 50, true)},
		nil,
		[]systems.Event{systems.PointerEvent(120, 60, true)},
	)
	g, err := New(testConfig(t), Options{Seed: 1, MaxFrames: 4}, driver)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	runWithTimeout(t, g, 5*time.Second)

	x, y, active := g.Pointer().Load()
	if !active || x != 120 || y != 60 {
		t.Errorf("pointer = (%v, %v, %v), want (120, 60, true)", x, y, active)
	}
	if hud := driver.LastHUD(); !hud.Attractor {
		t.Error("HUD does not show the active attractor")
	}
}

func TestRunReleaseDeactivatesPointer(t *testing.T) {
	driver := renderer.NewHeadlessDriver(
		[]systems.Event{systems.PointerEvent(100, 50, true)},
		[]systems.Event{systems.PointerEvent(100, 50, false)},
	)
	g, err := New(testConfig(t), Options{Seed: 1, MaxFrames: 3}, driver)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	runWithTimeout(t, g, 5*time.Second)

	if _, _, active := g.Pointer().Load(); active {
		t.Error("pointer still active after release")
	}
}

func TestRunStopsOnQuitEvents(t *testing.T) {
	tests := []struct {
		name string
		kind systems.EventKind
	}{
		{"quit", systems.EventQuit},
		{"cancel", systems.EventCancel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver := renderer.NewHeadlessDriver(
				nil,
				[]systems.Event{{Kind: tt.kind}},
			)
			g, err := New(testConfig(t), Options{Seed: 1}, driver)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer g.Close()

			runWithTimeout(t, g, 5*time.Second)

			// The frame carrying the quit event is not presented
			if driver.Presented() != 1 {
				t.Errorf("presented %d frames, want 1", driver.Presented())
			}
		})
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	g, err := New(testConfig(t), Options{Seed: 1}, renderer.NewHeadlessDriver())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunToggleHUD(t *testing.T) {
	driver := renderer.NewHeadlessDriver(
		nil,
		[]systems.Event{{Kind: systems.EventToggleHUD}},
	)
	g, err := New(testConfig(t), Options{Seed: 1, MaxFrames: 2}, driver)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	runWithTimeout(t, g, 5*time.Second)

	if driver.LastHUD().Visible {
		t.Error("HUD still visible after toggle")
	}
}

func TestRunParticlesStayInWorld(t *testing.T) {
	cfg := testConfig(t)
	driver := renderer.NewHeadlessDriver(
		[]systems.Event{systems.PointerEvent(10, 10, true)},
	)
	g, err := New(cfg, Options{Seed: 3, MaxFrames: 30}, driver)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	runWithTimeout(t, g, 5*time.Second)

	w, h := cfg.Derived.Width32, cfg.Derived.Height32
	for i, p := range g.Store().All() {
		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			t.Fatalf("particle %d at (%v, %v) outside [0,%v)x[0,%v)", i, p.X, p.Y, w, h)
		}
	}
}

func TestRunWritesOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	cfg := testConfig(t)
	// Unsynchronized particle reads: expect reports under -race
	cfg.Telemetry.StatsWindow = 0.005
	if err := cfg.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	g, err := New(cfg, Options{Seed: 1, MaxFrames: 20, OutputDir: dir}, renderer.NewHeadlessDriver())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	runWithTimeout(t, g, 5*time.Second)
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("written config does not load: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatalf("reading stats.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 2 {
		t.Errorf("stats.csv has %d lines, want header and at least one row", len(lines))
	}

	perf, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatalf("reading perf.csv: %v", err)
	}
	header, _, _ := strings.Cut(string(perf), "\n")
	for _, col := range []string{"avg_tick_us", "tick_overruns"} {
		if !strings.Contains(header, col) {
			t.Errorf("perf.csv header %q lacks %s", header, col)
		}
	}
}

func TestNewRejectsBounce(t *testing.T) {
	cfg := testConfig(t)
	// Bypass Validate to reach the boundary constructor
	cfg.Physics.Boundary = config.BoundaryBounce

	_, err := New(cfg, Options{}, renderer.NewHeadlessDriver())
	if !errors.Is(err, systems.ErrBounceUnimplemented) {
		t.Errorf("New error = %v, want ErrBounceUnimplemented", err)
	}
}
