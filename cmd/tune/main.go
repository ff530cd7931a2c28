// Package main searches player movement parameters that hit a target running
// speed and jump height, using headless simulation runs.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/hopper/config"
)

// evalRecord is one row of tune_log.csv.
type evalRecord struct {
	Eval         int     `csv:"eval"`
	Fitness      float64 `csv:"fitness"`
	Acceleration float64 `csv:"acceleration"`
	Damping      float64 `csv:"damping"`
	JumpImpulse  float64 `csv:"jump_impulse"`
	Speed        float64 `csv:"speed"`
	Apex         float64 `csv:"apex"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	targetSpeed := flag.Float64("speed", 6, "Target running speed in m/s")
	targetApex := flag.Float64("apex", 2, "Target jump height in m")
	runFrames := flag.Int("run-frames", 180, "Frames of held forward before speed is measured")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	method := flag.String("method", "nelder-mead", "Search method: nelder-mead or cmaes")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	// Keep per-run scene logs out of the progress output
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	// Create output directory
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	// Load base config
	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector()
	targets := Targets{Speed: *targetSpeed, Apex: *targetApex}
	evaluator := NewFitnessEvaluator(params, baseCfg, targets, *runFrames)

	var searcher optimize.Method
	switch *method {
	case "nelder-mead":
		searcher = &optimize.NelderMead{}
	case "cmaes":
		searcher = &optimize.CmaEsChol{InitStepSize: 0.3}
	default:
		log.Fatalf("unknown method %q", *method)
	}

	// Open log file
	logPath := filepath.Join(*outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
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
			m := evaluator.LastMeasurement()
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = raw
			}

			rec := []evalRecord{{
				Eval:         evalCount,
				Fitness:      fitness,
				Acceleration: raw[0],
				Damping:      raw[1],
				JumpImpulse:  raw[2],
				Speed:        m.Speed,
				Apex:         m.Apex,
			}}
			write := gocsv.MarshalWithoutHeaders
			if evalCount == 1 {
				write = gocsv.Marshal
			}
			if err := write(rec, logFile); err != nil {
				log.Printf("failed to write log row: %v", err)
			}

			elapsed := time.Since(startTime)
			fmt.Printf("Eval %d/%d: speed=%.2f apex=%.2f fitness=%.5f (best=%.5f) | elapsed: %s\n",
				evalCount, *maxEvals, m.Speed, m.Apex, fitness, bestFitness, formatDuration(elapsed))
			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-8,
			Iterations: 30,
		},
	}

	fmt.Printf("Tuning %d parameters with %s toward speed=%.2f apex=%.2f\n",
		params.Dim(), *method, targets.Speed, targets.Apex)

	initX := params.Normalize(params.ExtractFromConfig(baseCfg))
	result, err := optimize.Minimize(problem, initX, settings, searcher)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	fmt.Printf("\nTuning complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.6f\n", bestFitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.4f\n", spec.Path, bestParams[i])
	}

	// Save best config
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
