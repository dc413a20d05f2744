package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one frame of the main loop.
const (
	PhaseInput     = "input"
	PhasePresent   = "present"
	PhaseTelemetry = "telemetry"
)

// PerfSample holds timing data for a single frame.
type PerfSample struct {
	FrameWork time.Duration
	Phases    map[string]time.Duration
}

// PerfCollector tracks frame loop timing over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	frameStart    time.Time
	phaseStart    time.Time
	lastPhase     string

	// Wall time between consecutive frames, sleep included
	lastFrameTime time.Time
	frameDuration time.Duration

	// Integrator workers, cumulative since start
	workers WorkerTiming
}

// WorkerTick is one integrator worker's cumulative tick counters.
type WorkerTick struct {
	Ticks    uint64
	Overruns uint64
	AvgWork  time.Duration
}

// WorkerTiming summarizes tick work over all workers.
type WorkerTiming struct {
	AvgTick   time.Duration // tick-weighted mean work per tick
	MaxTick   time.Duration // mean work per tick of the slowest worker
	BudgetPct float64       // AvgTick as a share of the tick interval
	Overruns  uint64        // ticks that used the whole interval
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of frames to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartFrame begins timing a new frame.
func (p *PerfCollector) StartFrame() {
	p.frameStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndFrame finishes timing the current frame and records the sample.
func (p *PerfCollector) EndFrame() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		FrameWork: now.Sub(p.frameStart),
		Phases:    p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}

	if !p.lastFrameTime.IsZero() {
		p.frameDuration = p.frameStart.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = p.frameStart
}

// RecordWorkers replaces the worker figures reported with the frame stats.
// interval is the tick budget every worker paces to.
func (p *PerfCollector) RecordWorkers(workers []WorkerTick, interval time.Duration) {
	var wt WorkerTiming
	var ticks uint64
	var work time.Duration
	for _, w := range workers {
		ticks += w.Ticks
		wt.Overruns += w.Overruns
		work += w.AvgWork * time.Duration(w.Ticks)
		wt.MaxTick = max(wt.MaxTick, w.AvgWork)
	}
	if ticks > 0 {
		wt.AvgTick = work / time.Duration(ticks)
	}
	if interval > 0 {
		wt.BudgetPct = float64(wt.AvgTick) / float64(interval) * 100
	}
	p.workers = wt
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Work per frame, sleep excluded
	AvgFrameWork time.Duration
	MinFrameWork time.Duration
	MaxFrameWork time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of frame work
	PhasePct map[string]float64

	// Frame cadence, sleep included
	FrameDuration time.Duration
	FPS           float64

	// Integrator workers
	Workers WorkerTiming
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.frameDuration > 0 {
		fps = float64(time.Second) / float64(p.frameDuration)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:      make(map[string]time.Duration),
			PhasePct:      make(map[string]float64),
			FrameDuration: p.frameDuration,
			FPS:           fps,
			Workers:       p.workers,
		}
	}

	var total, minWork, maxWork time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.FrameWork

		if i == 0 || s.FrameWork < minWork {
			minWork = s.FrameWork
		}
		if s.FrameWork > maxWork {
			maxWork = s.FrameWork
		}

		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	return PerfStats{
		AvgFrameWork:  avg,
		MinFrameWork:  minWork,
		MaxFrameWork:  maxWork,
		PhaseAvg:      phaseAvg,
		PhasePct:      phasePct,
		FrameDuration: p.frameDuration,
		FPS:           fps,
		Workers:       p.workers,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_frame_us", s.AvgFrameWork.Microseconds(),
		"min_frame_us", s.MinFrameWork.Microseconds(),
		"max_frame_us", s.MaxFrameWork.Microseconds(),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	for _, phase := range []string{PhaseInput, PhasePresent, PhaseTelemetry} {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	attrs = append(attrs,
		"avg_tick_us", s.Workers.AvgTick.Microseconds(),
		"max_tick_us", s.Workers.MaxTick.Microseconds(),
		"tick_overruns", s.Workers.Overruns,
	)

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_frame_us", s.AvgFrameWork.Microseconds()),
		slog.Int64("min_frame_us", s.MinFrameWork.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrameWork.Microseconds()),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}

	attrs = append(attrs,
		slog.Int64("avg_tick_us", s.Workers.AvgTick.Microseconds()),
		slog.Int64("max_tick_us", s.Workers.MaxTick.Microseconds()),
		slog.Float64("tick_budget_pct", s.Workers.BudgetPct),
		slog.Uint64("tick_overruns", s.Workers.Overruns),
	)

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Frame        int     `csv:"frame"`
	AvgFrameUS   int64   `csv:"avg_frame_us"`
	MinFrameUS   int64   `csv:"min_frame_us"`
	MaxFrameUS   int64   `csv:"max_frame_us"`
	FPS          float64 `csv:"fps"`
	InputPct     float64 `csv:"input_pct"`
	PresentPct   float64 `csv:"present_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TickBudget   float64 `csv:"tick_budget_pct"`
	TickOverruns uint64  `csv:"tick_overruns"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(frame int) PerfStatsCSV {
	return PerfStatsCSV{
		Frame:        frame,
		AvgFrameUS:   s.AvgFrameWork.Microseconds(),
		MinFrameUS:   s.MinFrameWork.Microseconds(),
		MaxFrameUS:   s.MaxFrameWork.Microseconds(),
		FPS:          s.FPS,
		InputPct:     s.PhasePct[PhaseInput],
		PresentPct:   s.PhasePct[PhasePresent],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
		AvgTickUS:    s.Workers.AvgTick.Microseconds(),
		MaxTickUS:    s.Workers.MaxTick.Microseconds(),
		TickBudget:   s.Workers.BudgetPct,
		TickOverruns: s.Workers.Overruns,
	}
}
