package sim

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hopper/camera"
	"github.com/pthm-cable/hopper/components"
	"github.com/pthm-cable/hopper/config"
	"github.com/pthm-cable/hopper/controller"
	"github.com/pthm-cable/hopper/physics"
)

// Setup spawns the ground, the player, the balls, the light and the camera.
func (s *Sim) Setup() {
	cfg := s.cfg

	s.spawnGround(cfg.Ground)
	player := s.spawnPlayer()
	for i := 0; i < cfg.Balls.Count; i++ {
		s.spawnBall(ballSpawn(cfg.Balls, i))
	}
	s.spawnLight(cfg.Light)
	s.spawnCamera(s.posMap.Get(player).Vec)

	slog.Info("scene ready",
		"bodies", s.BodyCount(),
		"balls", cfg.Balls.Count,
		"player", cfg.Player.Spawn,
	)
}

// Teardown despawns every scene entity and returns how many were removed.
func (s *Sim) Teardown() int {
	n := s.cleanup.Teardown(s.world)
	s.pipeline.Reset()
	slog.Info("scene torn down", "entities", n)
	return n
}

// Reset tears the scene down and sets it up again. Run totals are kept.
func (s *Sim) Reset() {
	s.Teardown()
	s.Setup()
}

// PlayerBundle builds the player's controller bundle from config: the
// controller section gives the stock tuning, caster and gravity; the player
// section overrides shape, gravity and movement.
func PlayerBundle(cfg *config.Config) controller.Bundle {
	size := cfg.Player.Size
	b := controller.NewBundle(physics.Cuboid(size[0], size[1], size[2]), cfg.Derived.PlayerGravity)
	b.Movement = movementFrom(cfg.Controller)
	b.Density = cfg.Player.Density
	b.CasterScale = cfg.Controller.CasterScale
	b.CasterDistance = cfg.Controller.CasterMaxDistance

	pm := movementFrom(cfg.Player.Movement)
	return b.WithMovement(pm.Acceleration, pm.Damping, pm.JumpImpulse, pm.MaxSlope)
}

func movementFrom(m config.MovementConfig) components.Movement {
	limit := components.NoSlopeLimit()
	if rad, ok := m.MaxSlopeRadians(); ok {
		limit = components.MaxSlope(rad)
	}
	return components.Movement{
		Acceleration: m.Acceleration,
		Damping:      m.Damping,
		JumpImpulse:  m.JumpImpulse,
		MaxSlope:     limit,
	}
}

func color(c config.RGB) components.Color {
	r, g, b := c.Channels()
	return components.RGB(r, g, b)
}

func (s *Sim) spawnGround(g config.GroundConfig) ecs.Entity {
	shape := physics.Cylinder(g.Radius, g.Height)
	body := components.StaticBody(s.cfg.Physics.Friction)
	rot := components.RotationY(s.cfg.Derived.GroundRotation)

	e := s.bodies.NewEntity(
		&components.Position{},
		&components.LinearVelocity{},
		&rot,
		&body,
		&components.Collider{Shape: shape},
	)
	s.looks.Add(e,
		&components.Mesh{Shape: shape},
		&components.Material{Color: color(g.Color), Texture: g.Texture},
		&components.SceneEntity{},
	)
	return e
}

func (s *Sim) spawnPlayer() ecs.Entity {
	p := s.cfg.Player
	b := PlayerBundle(s.cfg)

	e := s.spawner.Spawn(b, p.Spawn.R3())
	s.looks.Add(e,
		&components.Mesh{Shape: b.Shape},
		&components.Material{Color: color(p.Color)},
		&components.SceneEntity{},
	)
	s.players.Add(e, &components.Player{})
	return e
}

func (s *Sim) spawnBall(at r3.Vec) ecs.Entity {
	bc := s.cfg.Balls
	shape := physics.Sphere(bc.Radius)
	body := components.NewDynamicBody(shape, bc.Density, 1, bc.Friction)

	e := s.bodies.NewEntity(
		&components.Position{Vec: at},
		&components.LinearVelocity{},
		&components.Rotation{},
		&body,
		&components.Collider{Shape: shape},
	)
	s.looks.Add(e,
		&components.Mesh{Shape: shape},
		&components.Material{Color: color(bc.Color)},
		&components.SceneEntity{},
	)
	return e
}

// ballSpawn places ball i: the first at the configured spawn, the rest on
// rings around it.
func ballSpawn(bc config.BallsConfig, i int) r3.Vec {
	base := bc.Spawn.R3()
	if i == 0 {
		return base
	}
	const perRing = 6
	ring := (i-1)/perRing + 1
	slot := (i - 1) % perRing
	angle := 2 * math.Pi * float64(slot) / perRing
	r := bc.Spacing * float64(ring)
	return r3.Add(base, r3.Vec{X: r * math.Cos(angle), Z: r * math.Sin(angle)})
}

func (s *Sim) spawnLight(l config.LightConfig) ecs.Entity {
	return s.lights.NewEntity(
		&components.Position{Vec: l.Position.R3()},
		&components.PointLight{Intensity: l.Intensity, Shadows: l.Shadows},
		&components.SceneEntity{},
	)
}

func (s *Sim) spawnCamera(focus r3.Vec) ecs.Entity {
	c := s.cfg.Camera
	d := s.cfg.Derived
	orbit := camera.New(
		float64(s.cfg.Screen.Width), float64(s.cfg.Screen.Height),
		d.CameraYaw, d.CameraPitch, c.Radius, c.FovY,
		camera.Limits{
			MinRadius: c.MinRadius,
			MaxRadius: c.MaxRadius,
			MinPitch:  d.CameraMinPitch,
			MaxPitch:  d.CameraMaxPitch,
		},
	)
	orbit.Follow(focus)
	return s.rigs.NewEntity(&CameraRig{Orbit: orbit}, &components.ActiveCamera{}, &components.SceneEntity{})
}
