// Package game runs the simulation inside a raylib window, or headless.
package game

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hopper/config"
	"github.com/pthm-cable/hopper/controller"
	"github.com/pthm-cable/hopper/renderer"
	"github.com/pthm-cable/hopper/sim"
	"github.com/pthm-cable/hopper/telemetry"
	"github.com/pthm-cable/hopper/ui"
)

// Options configures a game.
type Options struct {
	LogStats       bool
	StatsWindowSec float64     // 0 = use config
	OutputDir      string      // empty = no files written
	Headless       bool        // no window, fixed dt
	Script         *sim.Script // headless input; nil = no keys held
}

// Game holds the simulation and everything drawn on top of it.
type Game struct {
	cfg      *config.Config
	sim      *sim.Sim
	output   *telemetry.OutputManager
	headless bool
	script   *sim.Script
	keys     keyBindings

	// Rendering
	scene     *renderer.SceneRenderer
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	tuning    *ui.TuningPanel
	showPerf  bool

	// State
	last         sim.StepResult
	scriptFrame  int
	screenWidth  float32
	screenHeight float32
}

// NewGameWithOptions creates a game from the global config. In graphical mode
// the window must already be open.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	kb, err := newKeyBindings(cfg.Input)
	if err != nil {
		return nil, err
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	s, err := sim.New(cfg, sim.Options{
		LogStats:       opts.LogStats,
		StatsWindowSec: opts.StatsWindowSec,
		Output:         output,
	})
	if err != nil {
		output.Close()
		return nil, err
	}

	g := &Game{
		cfg:          cfg,
		sim:          s,
		output:       output,
		headless:     opts.Headless,
		script:       opts.Script,
		keys:         kb,
		screenWidth:  float32(cfg.Screen.Width),
		screenHeight: float32(cfg.Screen.Height),
	}

	if !g.headless {
		g.scene = renderer.NewSceneRenderer(s.World())
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(int32(g.screenWidth)-260, 10)
		g.tuning = ui.NewTuningPanel(int32(g.screenWidth)-280, 220, 270)
	}

	slog.Info("game started",
		"headless", g.headless,
		"output_dir", output.Dir(),
		"script_frames", scriptFrames(opts.Script),
	)
	return g, nil
}

func scriptFrames(sc *sim.Script) int {
	if sc == nil {
		return 0
	}
	return sc.Frames()
}

// Sim returns the underlying simulation.
func (g *Game) Sim() *sim.Sim {
	return g.sim
}

// Update runs one frame driven by the keyboard and the measured frame time.
func (g *Game) Update() error {
	g.handleInput()

	dt := min(float64(rl.GetFrameTime()), g.cfg.Physics.MaxDT)
	if dt <= 0 {
		return nil
	}
	return g.step(g.keys.read(), dt)
}

// UpdateHeadless runs one fixed-dt frame driven by the script.
func (g *Game) UpdateHeadless() error {
	if g.script != nil {
		k, yaw, hasYaw, ok := g.script.At(g.scriptFrame)
		g.scriptFrame++
		if ok {
			if hasYaw {
				if cam, err := g.sim.Camera(); err == nil {
					cam.Yaw = yaw
				}
			}
			return g.step(k, g.cfg.Physics.DT)
		}
	}
	return g.step(controller.Keys{}, g.cfg.Physics.DT)
}

// ScriptDone reports whether a non-looping script has run out.
func (g *Game) ScriptDone() bool {
	return g.script != nil && !g.script.Loop && g.scriptFrame >= g.script.Frames()
}

func (g *Game) step(keys controller.Keys, dt float64) error {
	res, err := g.sim.Step(keys, dt)
	if err != nil {
		return fmt.Errorf("tick %d: %w", g.sim.Tick(), err)
	}
	g.last = res
	return nil
}

// Reset rebuilds the scene and camera.
func (g *Game) Reset() {
	g.sim.Reset()
	g.last = sim.StepResult{}
	g.scriptFrame = 0
	if g.tuning != nil {
		g.tuning.Rebind()
	}
	slog.Info("scene reset", "tick", g.sim.Tick())
}

// Unload writes the run summary and frees resources.
func (g *Game) Unload() {
	sum := g.sim.Summary()
	slog.Info("run finished",
		"ticks", sum.Ticks,
		"sim_time", sum.SimTimeSec,
		"jumps", sum.Jumps,
		"respawns", sum.Respawns,
		"distance", sum.Distance,
	)
	if err := g.output.WriteSummary(sum); err != nil {
		slog.Error("failed to write summary", "error", err)
	}
	if err := g.output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	if g.scene != nil {
		g.scene.Unload()
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.sim.Tick()
}
