package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hopper/config"
	"github.com/pthm-cable/hopper/game"
	"github.com/pthm-cable/hopper/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics at the fixed physics dt")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and run summary")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	scriptPath := flag.String("script", "", "YAML input script for headless runs")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	var script *sim.Script
	if *scriptPath != "" {
		sc, err := sim.LoadScript(*scriptPath)
		if err != nil {
			slog.Error("failed to load script", "error", err)
			os.Exit(1)
		}
		script = sc
	}

	// Build game options
	opts := game.Options{
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		Headless:       *headless,
		Script:         script,
	}

	if *headless {
		os.Exit(runHeadless(opts, *maxTicks))
	}
	os.Exit(runWindowed(cfg, opts, *maxTicks))
}

// runHeadless steps the simulation without a window until max ticks or the
// script runs out. With neither set it runs until killed.
func runHeadless(opts game.Options, maxTicks int) int {
	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return 1
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"stats_window", opts.StatsWindowSec,
		"max_ticks", maxTicks,
	)

	for {
		if err := g.UpdateHeadless(); err != nil {
			slog.Error("simulation failed", "error", err)
			return 1
		}
		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return 0
		}
		if maxTicks == 0 && g.ScriptDone() {
			slog.Info("script finished", "tick", g.Tick())
			return 0
		}
	}
}

func runWindowed(cfg *config.Config, opts game.Options, maxTicks int) int {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return 1
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		if err := g.Update(); err != nil {
			slog.Error("simulation failed", "error", err)
			return 1
		}
		g.Draw()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			break
		}
	}
	return 0
}
