// Package sim owns the ECS world and runs one frame of the game: the
// character controller stages, the rigid-body solver, cleanup, camera follow
// and telemetry. It has no rendering dependency so it runs headless.
package sim

import (
	"errors"
	"fmt"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hopper/camera"
	"github.com/pthm-cable/hopper/components"
	"github.com/pthm-cable/hopper/config"
	"github.com/pthm-cable/hopper/controller"
	"github.com/pthm-cable/hopper/systems"
	"github.com/pthm-cable/hopper/telemetry"
)

// Scene ownership errors. Both are fatal: a frame cannot run without exactly
// one player and one active camera.
var (
	ErrPlayerCount = errors.New("scene must contain exactly one player")
	ErrCameraCount = errors.New("scene must contain exactly one active camera")
)

// CameraRig attaches an orbit camera to an entity.
type CameraRig struct {
	Orbit *camera.Orbit
}

// Options configures a Sim.
type Options struct {
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	Output         *telemetry.OutputManager
	StatsCallback  func(telemetry.WindowStats)
}

// StepResult reports the outcome of one frame.
type StepResult struct {
	Tick     int32
	Intents  []controller.Intent // valid until the next Step
	Player   r3.Vec
	Velocity r3.Vec
	Grounded bool
	Respawn  bool
	Stats    *telemetry.WindowStats // set when a stats window closed this frame
}

// Sim is a running scene.
type Sim struct {
	cfg   *config.Config
	world *ecs.World

	// Systems
	pipeline *controller.Pipeline
	probe    *systems.ShapeCastSystem
	solver   *systems.SolverSystem
	cleanup  *systems.CleanupSystem
	registry *systems.SystemRegistry

	// Spawning
	spawner *controller.Spawner
	bodies  *ecs.Map5[components.Position, components.LinearVelocity, components.Rotation, components.RigidBody, components.Collider]
	looks   *ecs.Map3[components.Mesh, components.Material, components.SceneEntity]
	players *ecs.Map[components.Player]
	lights  *ecs.Map3[components.Position, components.PointLight, components.SceneEntity]
	rigs    *ecs.Map3[CameraRig, components.ActiveCamera, components.SceneEntity]

	// Queries
	playerFilter *ecs.Filter1[components.Player]
	cameraFilter *ecs.Filter1[CameraRig]
	bodyFilter   *ecs.Filter1[components.RigidBody]
	posMap       *ecs.Map[components.Position]
	velMap       *ecs.Map[components.LinearVelocity]
	groundedMap  *ecs.Map[components.Grounded]
	movMap       *ecs.Map[components.Movement]

	// Telemetry
	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	opts      Options

	// State
	tick     int32
	totals   telemetry.RunSummary
	lastStat telemetry.WindowStats
}

// New creates a world for cfg and sets up the scene.
func New(cfg *config.Config, opts Options) (*Sim, error) {
	w := ecs.NewWorld()

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	s := &Sim{
		cfg:      cfg,
		world:    w,
		probe:    systems.NewShapeCastSystem(w),
		solver:   systems.NewSolverSystem(w, cfg.Derived.EngineGravity, cfg.Physics.SolverIterations),
		cleanup:  systems.NewCleanupSystem(w, cfg.Physics.KillHeight),
		registry: systems.NewSystemRegistry(),
		spawner:  controller.NewSpawner(w),
		bodies: ecs.NewMap5[
			components.Position,
			components.LinearVelocity,
			components.Rotation,
			components.RigidBody,
			components.Collider,
		](w),
		looks:        ecs.NewMap3[components.Mesh, components.Material, components.SceneEntity](w),
		players:      ecs.NewMap[components.Player](w),
		lights:       ecs.NewMap3[components.Position, components.PointLight, components.SceneEntity](w),
		rigs:         ecs.NewMap3[CameraRig, components.ActiveCamera, components.SceneEntity](w),
		playerFilter: ecs.NewFilter1[components.Player](w),
		cameraFilter: ecs.NewFilter1[CameraRig](w).With(ecs.C[components.ActiveCamera]()),
		bodyFilter:   ecs.NewFilter1[components.RigidBody](w),
		posMap:       ecs.NewMap[components.Position](w),
		velMap:       ecs.NewMap[components.LinearVelocity](w),
		groundedMap:  ecs.NewMap[components.Grounded](w),
		movMap:       ecs.NewMap[components.Movement](w),
		perf:         telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:    telemetry.NewCollector(statsWindow, cfg.Physics.DT),
		opts:         opts,
	}
	s.pipeline = controller.NewPipeline(w, s.probe)

	s.Setup()
	if _, err := s.Player(); err != nil {
		return nil, err
	}
	if _, err := s.Camera(); err != nil {
		return nil, err
	}
	return s, nil
}

// World returns the ECS world.
func (s *Sim) World() *ecs.World { return s.world }

// Config returns the configuration the sim was built with.
func (s *Sim) Config() *config.Config { return s.cfg }

// Tick returns the number of frames run.
func (s *Sim) Tick() int32 { return s.tick }

// Perf returns the performance collector.
func (s *Sim) Perf() *telemetry.PerfCollector { return s.perf }

// Registry returns the system registry.
func (s *Sim) Registry() *systems.SystemRegistry { return s.registry }

// LastStats returns the most recent closed stats window.
func (s *Sim) LastStats() telemetry.WindowStats { return s.lastStat }

// Summary returns run totals so far.
func (s *Sim) Summary() telemetry.RunSummary {
	sum := s.totals
	sum.Ticks = s.tick
	sum.SimTimeSec = float64(s.tick) * s.cfg.Physics.DT
	if p, err := s.Player(); err == nil {
		pos := s.posMap.Get(p).Vec
		sum.FinalPos = [3]float64{pos.X, pos.Y, pos.Z}
	}
	return sum
}

// Player returns the single player entity.
func (s *Sim) Player() (ecs.Entity, error) {
	var found ecs.Entity
	n := 0
	query := s.playerFilter.Query()
	for query.Next() {
		found = query.Entity()
		n++
	}
	if n != 1 {
		return ecs.Entity{}, fmt.Errorf("%w: found %d", ErrPlayerCount, n)
	}
	return found, nil
}

// PlayerMovement returns the player's movement tuning for live editing.
func (s *Sim) PlayerMovement() (*components.Movement, error) {
	p, err := s.Player()
	if err != nil {
		return nil, err
	}
	return s.movMap.Get(p), nil
}

// Camera returns the single active camera.
func (s *Sim) Camera() (*camera.Orbit, error) {
	var found *camera.Orbit
	n := 0
	query := s.cameraFilter.Query()
	for query.Next() {
		rig := query.Get()
		found = rig.Orbit
		n++
	}
	if n != 1 || found == nil {
		return nil, fmt.Errorf("%w: found %d", ErrCameraCount, n)
	}
	return found, nil
}

// Step runs one frame with the given key state and elapsed time. The same dt
// is used by every stage. An error means the scene is unusable.
func (s *Sim) Step(keys controller.Keys, dt float64) (StepResult, error) {
	cam, err := s.Camera()
	if err != nil {
		return StepResult{}, err
	}
	player, err := s.Player()
	if err != nil {
		return StepResult{}, err
	}

	s.perf.StartTick()

	intents := s.pipeline.Step(keys, cam.Yaw, dt, s.perf)

	s.perf.StartPhase(telemetry.PhaseSolver)
	s.solver.Update(dt)

	s.perf.StartPhase(telemetry.PhaseCleanup)
	removed := s.cleanup.Update(s.world)
	pos := s.posMap.Get(player)
	respawn := pos.Y < s.cfg.Physics.KillHeight
	if respawn {
		s.respawnPlayer(player)
	}

	s.perf.StartPhase(telemetry.PhaseCamera)
	cam.Follow(pos.Vec)

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.tick++
	res := StepResult{
		Tick:     s.tick,
		Intents:  intents,
		Player:   pos.Vec,
		Velocity: s.velMap.Get(player).Vec,
		Grounded: s.groundedMap.Has(player),
		Respawn:  respawn,
	}
	jumps := countJumps(intents)
	s.totals.Jumps += jumps
	if respawn {
		s.totals.Respawns++
	}
	s.collector.Record(telemetry.Sample{
		Position: res.Player,
		Velocity: res.Velocity,
		Grounded: res.Grounded,
		Jumps:    jumps,
		Contacts: s.solver.Contacts(),
		Removed:  removed,
		Respawn:  respawn,
	})
	if stats, ok := s.flushTelemetry(); ok {
		res.Stats = &stats
	}

	s.perf.EndTick()
	return res, nil
}

// respawnPlayer puts the player back at its spawn point at rest.
func (s *Sim) respawnPlayer(player ecs.Entity) {
	s.posMap.Get(player).Vec = s.cfg.Player.Spawn.R3()
	s.velMap.Get(player).Vec = r3.Vec{}
}

func countJumps(intents []controller.Intent) int {
	n := 0
	for _, in := range intents {
		if in.Kind == controller.IntentJump {
			n++
		}
	}
	return n
}

// BodyCount returns the number of rigid bodies in the world.
func (s *Sim) BodyCount() int {
	n := 0
	query := s.bodyFilter.Query()
	for query.Next() {
		n++
	}
	return n
}
