package game

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/attractor/telemetry"
)

// sampleWindow closes a stats window, logging and writing it as configured.
// CSV write failures disable further output but never stop the simulation.
func (g *Game) sampleWindow(now time.Time) {
	_, _, active := g.pointer.Load()
	stats := g.collector.Sample(now, g.frame, g.store.All(), active,
		g.scheduler.TotalTicks(), len(g.scheduler.Ranges()))
	g.lastStats = stats

	g.workerTicks = g.workerTicks[:0]
	for _, w := range g.scheduler.Stats() {
		g.workerTicks = append(g.workerTicks, telemetry.WorkerTick{
			Ticks:    w.Ticks,
			Overruns: w.Overruns,
			AvgWork:  w.AvgWork,
		})
	}
	g.perf.RecordWorkers(g.workerTicks, g.cfg.Derived.TickInterval)
	perf := g.perf.Stats()

	if g.opts.LogStats {
		slog.Info("stats", "window", stats)
		perf.LogStats()
	}

	if err := g.output.WriteStats(stats); err != nil {
		g.disableOutput(err)
		return
	}
	if err := g.output.WritePerf(perf, g.frame); err != nil {
		g.disableOutput(err)
	}
}

func (g *Game) disableOutput(err error) {
	slog.Error("telemetry output failed, disabling", "dir", g.output.Dir(), "error", err)
	g.output.Close()
	g.output = nil
}

// logShutdown reports per-worker totals once all workers have exited.
func (g *Game) logShutdown() {
	for _, w := range g.scheduler.Stats() {
		slog.Info("worker stopped",
			"worker", w.ID,
			"range_start", w.Range.Start,
			"range_end", w.Range.End,
			"ticks", w.Ticks,
			"overruns", w.Overruns,
			"avg_work_us", w.AvgWork.Microseconds(),
		)
	}
	slog.Info("simulation stopped", "frames", g.frame)
}

// Close flushes and closes telemetry output.
func (g *Game) Close() error {
	err := g.output.Close()
	g.output = nil
	return err
}
