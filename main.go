package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/attractor/config"
	"github.com/pthm-cable/attractor/game"
	"github.com/pthm-cable/attractor/renderer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	driverName := flag.String("driver", "", "Render driver: raylib, terminal or headless (empty = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(*configPath, *driverName, *outputDir, *seed, *maxFrames, *logStats); err != nil {
		slog.Error("initialization failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, driverName, outputDir string, seed int64, maxFrames int, logStats bool) error {
	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg()

	if driverName != "" {
		cfg.Render.Driver = driverName
		if err := cfg.Refresh(); err != nil {
			return err
		}
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	driver, err := newDriver(cfg)
	if err != nil {
		return fmt.Errorf("starting %s driver: %w", cfg.Render.Driver, err)
	}
	defer driver.Close()

	opts := game.Options{
		Seed:      seed,
		LogStats:  logStats,
		OutputDir: outputDir,
		MaxFrames: maxFrames,
	}

	g, err := game.New(cfg, opts, driver)
	if err != nil {
		return err
	}
	defer g.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return g.Run(ctx)
}

func newDriver(cfg *config.Config) (game.Driver, error) {
	switch cfg.Render.Driver {
	case config.DriverRaylib:
		return renderer.NewRaylibDriver(cfg)
	case config.DriverTerminal:
		return renderer.NewTerminalDriver(cfg)
	default:
		return renderer.NewHeadlessDriver(), nil
	}
}
