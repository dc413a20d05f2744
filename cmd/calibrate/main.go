package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/attractor/config"
)

// evalRow is one line of calibrate_log.csv.
type evalRow struct {
	Eval       int     `csv:"eval"`
	Fitness    float64 `csv:"fitness"`
	Friction   float64 `csv:"friction"`
	AccelLimit float64 `csv:"accel_limit"`
	MaxSpeed   float64 `csv:"max_speed"`
	SpeedMean  float64 `csv:"speed_mean"`
	SpeedStd   float64 `csv:"speed_std"`
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	particles := flag.Int("particles", 5000, "Particles per evaluation run")
	ticks := flag.Int("ticks", 300, "Integration ticks per run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	targetSpeed := flag.Float64("target-speed", 20, "Target mean particle speed (units per tick)")
	maxEvals := flag.Int("max-evals", 150, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if *targetSpeed <= 0 {
		log.Fatal("--target-speed must be positive")
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	config.MustInit(*configPath)
	baseCfg := config.Cfg()
	baseCfg.Particles.Count = *particles
	if err := baseCfg.Refresh(); err != nil {
		log.Fatalf("invalid base config: %v", err)
	}

	params := NewParamVector(baseCfg)

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, baseCfg, evalSeeds, *ticks, *targetSpeed)

	logFile, err := os.Create(filepath.Join(*outputDir, "calibrate_log.csv"))
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = raw
			}

			stats := evaluator.LastStats()
			row := []evalRow{{
				Eval:       evalCount,
				Fitness:    fitness,
				Friction:   raw[0],
				AccelLimit: raw[1],
				MaxSpeed:   raw[2],
				SpeedMean:  stats.SpeedMean,
				SpeedStd:   stats.SpeedStd,
			}}
			if evalCount == 1 {
				err = gocsv.Marshal(row, logFile)
			} else {
				err = gocsv.MarshalWithoutHeaders(row, logFile)
			}
			if err != nil {
				log.Printf("failed to write log row: %v", err)
			}

			fmt.Printf("Eval %d/%d: fitness=%.5f speed=%.2f±%.2f (best=%.5f) | elapsed: %s\n",
				evalCount, *maxEvals, fitness, stats.SpeedMean, stats.SpeedStd, bestFitness,
				time.Since(startTime).Round(time.Second))

			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
	}

	fmt.Printf("Starting Nelder-Mead calibration with %d parameters, max_evals=%d\n", params.Dim(), *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d, particles: %d, target speed: %.2f\n",
		*seeds, *ticks, *particles, *targetSpeed)

	initX := params.Normalize(params.DefaultVector())
	result, err := optimize.Minimize(problem, initX, settings, &optimize.NelderMead{})
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluation completed")
	}

	fmt.Printf("\nCalibration complete after %d evaluations in %s\n", evalCount, time.Since(startTime).Round(time.Second))
	fmt.Printf("Best fitness: %.6f\n", bestFitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	// Save best config on top of the base file, with the original particle count
	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}
