package sim

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hopper/components"
	"github.com/pthm-cable/hopper/config"
	"github.com/pthm-cable/hopper/controller"
	"github.com/pthm-cable/hopper/telemetry"
)

const dt = 1.0 / 60

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Balls.Count = 0
	return cfg
}

func newSim(t *testing.T, cfg *config.Config) *Sim {
	t.Helper()
	s, err := New(cfg, Options{})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func run(t *testing.T, s *Sim, keys controller.Keys, frames int) StepResult {
	t.Helper()
	var res StepResult
	for range frames {
		var err error
		res, err = s.Step(keys, dt)
		if err != nil {
			t.Fatal(err)
		}
	}
	return res
}

func TestNewSpawnsScene(t *testing.T) {
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatal(err)
	}
	s := newSim(t, cfg)

	if n := s.BodyCount(); n != 3 {
		t.Errorf("bodies = %d, want ground, player and ball", n)
	}
	player, err := s.Player()
	if err != nil {
		t.Fatal(err)
	}
	cam, err := s.Camera()
	if err != nil {
		t.Fatal(err)
	}
	if cam.Focus != s.posMap.Get(player).Vec {
		t.Errorf("camera focus %v not on player", cam.Focus)
	}
}

func TestPlayerBundleFromConfig(t *testing.T) {
	cfg := testConfig(t)
	b := PlayerBundle(cfg)

	if b.Movement.Acceleration != 30 || b.Movement.Damping != 0.92 || b.Movement.JumpImpulse != 7 {
		t.Errorf("movement = %+v", b.Movement)
	}
	if !b.Movement.MaxSlope.Enabled || math.Abs(b.Movement.MaxSlope.Radians-math.Pi/6) > 1e-9 {
		t.Errorf("slope = %+v, want 30 degrees", b.Movement.MaxSlope)
	}
	if b.Gravity.Y != -11.62 {
		t.Errorf("gravity = %v", b.Gravity)
	}
	if b.CasterScale != 0.99 || b.CasterDistance != 0.2 {
		t.Errorf("caster = %f, %f", b.CasterScale, b.CasterDistance)
	}
}

func TestPlayerRestsOnGround(t *testing.T) {
	s := newSim(t, testConfig(t))

	res := run(t, s, controller.Keys{}, 60)
	if !res.Grounded {
		t.Error("player should be grounded")
	}
	if math.Abs(res.Player.Y-0.55) > 1e-9 {
		t.Errorf("player y = %f, want 0.55", res.Player.Y)
	}
	if math.Abs(res.Velocity.Y) > 1e-9 {
		t.Errorf("resting player vy = %f", res.Velocity.Y)
	}
}

func TestHeldJumpFiresOnce(t *testing.T) {
	s := newSim(t, testConfig(t))
	run(t, s, controller.Keys{}, 10)

	res := run(t, s, controller.Keys{Jump: true}, 1)
	want := 7 - 11.62*dt
	if math.Abs(res.Velocity.Y-want) > 1e-9 {
		t.Errorf("vy after jump frame = %f, want %f", res.Velocity.Y, want)
	}

	res = run(t, s, controller.Keys{Jump: true}, 10)
	if res.Grounded {
		t.Error("player should be airborne shortly after jumping")
	}

	// Long enough to land while still holding the key.
	res = run(t, s, controller.Keys{Jump: true}, 190)
	if !res.Grounded {
		t.Error("player should have landed")
	}
	if j := s.Summary().Jumps; j != 1 {
		t.Errorf("jumps = %d, want 1", j)
	}
}

func TestEditedMovementTakesEffect(t *testing.T) {
	s := newSim(t, testConfig(t))
	run(t, s, controller.Keys{}, 10)

	mv, err := s.PlayerMovement()
	if err != nil {
		t.Fatal(err)
	}
	mv.JumpImpulse = 3

	res := run(t, s, controller.Keys{Jump: true}, 1)
	want := 3 - 11.62*dt
	if math.Abs(res.Velocity.Y-want) > 1e-9 {
		t.Errorf("vy after jump frame = %f, want %f", res.Velocity.Y, want)
	}
}

func TestMoveFollowsCameraYaw(t *testing.T) {
	s := newSim(t, testConfig(t))
	run(t, s, controller.Keys{}, 5)

	res := run(t, s, controller.Keys{Forward: true}, 60)
	if res.Player.Z > -1 || math.Abs(res.Player.X) > 1e-9 {
		t.Errorf("forward at zero yaw should move toward -Z, at %v", res.Player)
	}

	cam, err := s.Camera()
	if err != nil {
		t.Fatal(err)
	}
	cam.Orbit(math.Pi/2, 0)
	startX := res.Player.X
	res = run(t, s, controller.Keys{Forward: true}, 60)
	if res.Player.X > startX-1 {
		t.Errorf("forward at quarter yaw should move toward -X, x went %f -> %f", startX, res.Player.X)
	}
	if cam.Focus != res.Player {
		t.Errorf("camera focus %v, player %v", cam.Focus, res.Player)
	}
}

func TestRespawnBelowKillHeight(t *testing.T) {
	cfg := testConfig(t)
	s := newSim(t, cfg)

	player, err := s.Player()
	if err != nil {
		t.Fatal(err)
	}
	s.posMap.Get(player).Vec = r3.Vec{Y: cfg.Physics.KillHeight - 10}
	s.velMap.Get(player).Vec = r3.Vec{Y: -20}

	res := run(t, s, controller.Keys{}, 1)
	if !res.Respawn {
		t.Fatal("expected respawn")
	}
	if res.Player != cfg.Player.Spawn.R3() || res.Velocity != (r3.Vec{}) {
		t.Errorf("respawned at %v with %v", res.Player, res.Velocity)
	}
	if s.Summary().Respawns != 1 {
		t.Errorf("respawns = %d, want 1", s.Summary().Respawns)
	}
}

func TestBallSettlesAndFallenBallsAreRemoved(t *testing.T) {
	cfg := testConfig(t)
	cfg.Balls.Count = 2
	cfg.Balls.Spawn = config.Vec3{5, 1, 0}
	s := newSim(t, cfg)

	run(t, s, controller.Keys{}, 120)
	if n := s.BodyCount(); n != 4 {
		t.Fatalf("bodies = %d, want 4", n)
	}

	// Push one ball off the edge of the world.
	query := s.bodyFilter.Query()
	var moved bool
	for query.Next() {
		e := query.Entity()
		body := query.Get()
		if body.Kind == components.BodyDynamic && !s.players.Has(e) && !moved {
			s.posMap.Get(e).Y = cfg.Physics.KillHeight - 1
			moved = true
		}
	}
	run(t, s, controller.Keys{}, 1)
	if n := s.BodyCount(); n != 3 {
		t.Errorf("bodies = %d after cleanup, want 3", n)
	}
}

func TestSecondPlayerIsFatal(t *testing.T) {
	cfg, err := config.Defaults()
	if err != nil {
		t.Fatal(err)
	}
	s := newSim(t, cfg)

	var balls []ecs.Entity
	query := s.bodyFilter.Query()
	for query.Next() {
		e := query.Entity()
		if query.Get().Kind == components.BodyDynamic && !s.players.Has(e) {
			balls = append(balls, e)
		}
	}
	if len(balls) != 1 {
		t.Fatalf("expected one ball, got %d", len(balls))
	}
	s.players.Add(balls[0], &components.Player{})

	if _, err := s.Step(controller.Keys{}, dt); !errors.Is(err, ErrPlayerCount) {
		t.Errorf("err = %v, want ErrPlayerCount", err)
	}
}

func TestTeardownLeavesNoCamera(t *testing.T) {
	s := newSim(t, testConfig(t))

	if n := s.Teardown(); n != 4 {
		t.Errorf("removed %d entities, want ground, player, light and camera", n)
	}
	if s.BodyCount() != 0 {
		t.Errorf("bodies = %d after teardown", s.BodyCount())
	}
	if _, err := s.Step(controller.Keys{}, dt); !errors.Is(err, ErrCameraCount) {
		t.Errorf("err = %v, want ErrCameraCount", err)
	}
	if _, err := s.Player(); !errors.Is(err, ErrPlayerCount) {
		t.Errorf("err = %v, want ErrPlayerCount", err)
	}
}

func TestResetRestoresScene(t *testing.T) {
	cfg := testConfig(t)
	s := newSim(t, cfg)
	run(t, s, controller.Keys{Right: true}, 30)

	s.Reset()
	player, err := s.Player()
	if err != nil {
		t.Fatal(err)
	}
	if p := s.posMap.Get(player).Vec; p != cfg.Player.Spawn.R3() {
		t.Errorf("player at %v after reset", p)
	}
	if s.BodyCount() != 2 {
		t.Errorf("bodies = %d, want 2", s.BodyCount())
	}
	if s.Tick() != 30 {
		t.Errorf("tick = %d, reset should keep the run clock", s.Tick())
	}
}

func TestStatsWindowFlushes(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	out, err := telemetry.NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	var windows []telemetry.WindowStats
	s, err := New(cfg, Options{
		StatsWindowSec: 0.5,
		Output:         out,
		StatsCallback:  func(w telemetry.WindowStats) { windows = append(windows, w) },
	})
	if err != nil {
		t.Fatal(err)
	}

	flushed := 0
	for range 60 {
		res, err := s.Step(controller.Keys{}, dt)
		if err != nil {
			t.Fatal(err)
		}
		if res.Stats != nil {
			flushed++
		}
	}
	if flushed < 2 || len(windows) != flushed {
		t.Errorf("flushed %d windows, callback saw %d", flushed, len(windows))
	}
	last := s.LastStats()
	if last.Bodies != 2 || last.GroundedFrac < 0.9 {
		t.Errorf("unexpected window %+v", last)
	}
	if _, err := os.Stat(filepath.Join(dir, "telemetry.csv")); err != nil {
		t.Error(err)
	}
}

func TestGroundedUsesCurrentFrameContact(t *testing.T) {
	s := newSim(t, testConfig(t))
	run(t, s, controller.Keys{}, 5)

	// Lift the player out of probe range between frames. The jump on the
	// next frame must see the fresh airborne state.
	player, err := s.Player()
	if err != nil {
		t.Fatal(err)
	}
	s.posMap.Get(player).Y = 3

	res := run(t, s, controller.Keys{Jump: true}, 1)
	if res.Grounded {
		t.Error("player should be airborne")
	}
	if res.Velocity.Y > 0 {
		t.Errorf("jump applied from stale grounded state: vy = %f", res.Velocity.Y)
	}
}

func TestRegistryCoversEveryPhase(t *testing.T) {
	s, err := New(testConfig(t), Options{})
	if err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, cat := range s.Registry().Categories() {
		for _, info := range s.Registry().ByCategory(cat) {
			ids = append(ids, info.ID)
		}
	}
	for _, phase := range telemetry.Phases {
		if !slices.Contains(ids, phase) {
			t.Errorf("phase %q has no registered system", phase)
		}
	}
}
