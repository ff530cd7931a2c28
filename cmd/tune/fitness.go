package main

import (
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/hopper/config"
	"github.com/pthm-cable/hopper/controller"
	"github.com/pthm-cable/hopper/sim"
)

// Frames spent standing still before a measurement starts.
const settleFrames = 30

// Targets is the feel the tuner aims for.
type Targets struct {
	Speed float64 // steady running speed, m/s
	Apex  float64 // jump height above the standing position, m
}

// Measurement is what one parameter set produced.
type Measurement struct {
	Speed float64
	Apex  float64
}

// FitnessEvaluator runs headless simulations and scores them against targets.
type FitnessEvaluator struct {
	params     *ParamVector
	baseConfig *config.Config
	targets    Targets
	runFrames  int
	jumpFrames int

	mu   sync.Mutex
	last Measurement
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, baseCfg *config.Config, targets Targets, runFrames int) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		baseConfig: baseCfg,
		targets:    targets,
		runFrames:  runFrames,
		jumpFrames: 600,
	}
}

// LastMeasurement returns what the most recent Evaluate call measured.
func (fe *FitnessEvaluator) LastMeasurement() Measurement {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// Evaluate scores raw parameter values (lower = better): the sum of squared
// relative errors of speed and apex.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.configFor(x)

	// Run both scenarios in parallel
	var m Measurement
	var speedErr, apexErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.Speed, speedErr = measureSpeed(cfg, fe.runFrames)
	}()
	go func() {
		defer wg.Done()
		m.Apex, apexErr = measureApex(cfg, fe.jumpFrames)
	}()
	wg.Wait()

	fe.mu.Lock()
	fe.last = m
	fe.mu.Unlock()

	if speedErr != nil || apexErr != nil {
		slog.Error("evaluation failed", "speed_error", speedErr, "apex_error", apexErr)
		return math.Inf(1)
	}
	return Score(m, fe.targets)
}

// Score returns the sum of squared relative errors against targets.
func Score(m Measurement, t Targets) float64 {
	return relErr(m.Speed, t.Speed) + relErr(m.Apex, t.Apex)
}

func relErr(got, want float64) float64 {
	if want == 0 {
		return got * got
	}
	e := (got - want) / want
	return e * e
}

// configFor returns a copy of the base config with x applied and a scene
// suited to measuring: no balls and a ground wide enough to never run off.
func (fe *FitnessEvaluator) configFor(x []float64) *config.Config {
	cfg := *fe.baseConfig
	fe.params.ApplyToConfig(&cfg, x)
	cfg.Balls.Count = 0
	cfg.Ground.Radius = 1e4
	return &cfg
}

// measureSpeed holds forward for frames and returns the final horizontal speed.
func measureSpeed(cfg *config.Config, frames int) (float64, error) {
	s, err := sim.New(cfg, sim.Options{})
	if err != nil {
		return 0, err
	}
	if _, err := stepN(s, controller.Keys{}, settleFrames); err != nil {
		return 0, err
	}
	res, err := stepN(s, controller.Keys{Forward: true}, frames)
	if err != nil {
		return 0, err
	}
	return math.Hypot(res.Velocity.X, res.Velocity.Z), nil
}

// measureApex taps jump once from rest and returns the peak height gained.
func measureApex(cfg *config.Config, frames int) (float64, error) {
	s, err := sim.New(cfg, sim.Options{})
	if err != nil {
		return 0, err
	}
	res, err := stepN(s, controller.Keys{}, settleFrames)
	if err != nil {
		return 0, err
	}
	start := res.Player.Y

	res, err = stepN(s, controller.Keys{Jump: true}, 1)
	if err != nil {
		return 0, err
	}
	peak := res.Player.Y
	for range frames {
		res, err = stepN(s, controller.Keys{}, 1)
		if err != nil {
			return 0, err
		}
		peak = math.Max(peak, res.Player.Y)
		if res.Grounded && res.Velocity.Y <= 0 {
			break
		}
	}
	return peak - start, nil
}

func stepN(s *sim.Sim, keys controller.Keys, n int) (sim.StepResult, error) {
	dt := s.Config().Physics.DT
	var res sim.StepResult
	for range n {
		var err error
		if res, err = s.Step(keys, dt); err != nil {
			return res, err
		}
	}
	return res, nil
}
