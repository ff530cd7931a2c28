package controller

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hopper/components"
	"github.com/pthm-cable/hopper/physics"
)

const tol = 1e-9

var up = r3.Vec{Y: 1}

// tilted returns a unit normal at angle deg from up, leaning toward +X.
func tilted(deg float64) r3.Vec {
	rad := deg * math.Pi / 180
	return r3.Vec{X: math.Sin(rad), Y: math.Cos(rad)}
}

func TestIsGrounded(t *testing.T) {
	limit45 := components.MaxSlope(math.Pi / 4)

	tests := []struct {
		name  string
		hits  []physics.Hit
		rot   components.Rotation
		limit components.SlopeLimit
		want  bool
	}{
		{"flat ground", []physics.Hit{{Normal: up}}, components.Rotation{}, limit45, true},
		{"slope within limit", []physics.Hit{{Normal: tilted(44)}}, components.Rotation{}, limit45, true},
		{"slope past limit", []physics.Hit{{Normal: tilted(60)}}, components.Rotation{}, limit45, false},
		{"no hits", nil, components.Rotation{}, limit45, false},
		{"no hits without limit", nil, components.Rotation{}, components.NoSlopeLimit(), false},
		{"wall without limit", []physics.Hit{{Normal: r3.Vec{X: 1}}}, components.Rotation{}, components.NoSlopeLimit(), true},
		{"any walkable hit", []physics.Hit{{Normal: r3.Vec{X: -1}}, {Normal: up}}, components.Rotation{}, limit45, true},
		{
			name:  "local normal rotated into a steep slope",
			hits:  []physics.Hit{{Normal: up}},
			rot:   components.Rotation{Q: r3.NewRotation(math.Pi/3, r3.Vec{X: 1})},
			limit: limit45,
			want:  false,
		},
		{
			name:  "yaw does not tilt the normal",
			hits:  []physics.Hit{{Normal: up}},
			rot:   components.RotationY(1.3),
			limit: limit45,
			want:  true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsGrounded(tc.hits, tc.rot, tc.limit); got != tc.want {
				t.Errorf("IsGrounded = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIntegrateJumpOnlyWhenGrounded(t *testing.T) {
	mv := components.Movement{Acceleration: 30, Damping: 0.9, JumpImpulse: 7, MaxSlope: components.MaxSlope(math.Pi / 4)}

	vel := r3.Vec{}
	Integrate(&vel, mv, true, []Intent{Jump()}, 1.0/60)
	if vel.Y != 7.0 {
		t.Errorf("grounded jump: vy = %f, want exactly 7", vel.Y)
	}

	vel = r3.Vec{Y: -1.5}
	Integrate(&vel, mv, false, []Intent{Jump()}, 1.0/60)
	if vel.Y != -1.5 {
		t.Errorf("airborne jump changed velocity: vy = %f", vel.Y)
	}
}

func TestIntegrateAirborneMove(t *testing.T) {
	mv := components.Movement{Acceleration: 30, Damping: 0.9, JumpImpulse: 7}

	vel := r3.Vec{}
	Integrate(&vel, mv, false, []Intent{Move(r2.Vec{X: 1})}, 0.1)
	if math.Abs(vel.X-3.0) > tol || vel.Y != 0 || vel.Z != 0 {
		t.Errorf("velocity = %v, want (3, 0, 0)", vel)
	}
}

func TestIntegrateMovesAreCumulative(t *testing.T) {
	mv := components.Movement{Acceleration: 10}
	vel := r3.Vec{}
	Integrate(&vel, mv, false, []Intent{Move(r2.Vec{Y: 1}), Move(r2.Vec{Y: 1})}, 0.5)
	if math.Abs(vel.Z-10) > tol {
		t.Errorf("vz = %f, want 10", vel.Z)
	}
}

// testWorld holds a world with one controlled body and map handles.
type testWorld struct {
	world    *ecs.World
	entity   ecs.Entity
	vel      *ecs.Map[components.LinearVelocity]
	hits     *ecs.Map[components.ShapeHits]
	grounded *ecs.Map[components.Grounded]
	pipeline *Pipeline
}

func newTestWorld(b Bundle) *testWorld {
	w := ecs.NewWorld()
	tw := &testWorld{
		world:    w,
		vel:      ecs.NewMap[components.LinearVelocity](w),
		hits:     ecs.NewMap[components.ShapeHits](w),
		grounded: ecs.NewMap[components.Grounded](w),
		pipeline: NewPipeline(w, nil),
	}
	tw.entity = NewSpawner(w).Spawn(b, r3.Vec{Y: 5})
	return tw
}

func (tw *testWorld) setHits(normals ...r3.Vec) {
	h := tw.hits.Get(tw.entity)
	h.Hits = h.Hits[:0]
	for _, n := range normals {
		h.Hits = append(h.Hits, physics.Hit{Normal: n})
	}
}

func (tw *testWorld) velocity() r3.Vec {
	return tw.vel.Get(tw.entity).Vec
}

func TestSpawnAddsControllerComponents(t *testing.T) {
	b := NewBundle(physics.Cuboid(1, 1, 1), r3.Vec{Y: -9.81})
	w := ecs.NewWorld()
	e := NewSpawner(w).Spawn(b, r3.Vec{Y: 0.55})

	caster := ecs.NewMap[components.ShapeCaster](w).Get(e)
	if math.Abs(caster.Shape.HalfExtents.Y-0.495) > tol {
		t.Errorf("caster half height = %f, want 0.495", caster.Shape.HalfExtents.Y)
	}
	if caster.Direction != (r3.Vec{Y: -1}) || caster.MaxDistance != DefaultCasterDistance {
		t.Errorf("unexpected caster %+v", caster)
	}

	body := ecs.NewMap[components.RigidBody](w).Get(e)
	if body.Kind != components.BodyDynamic || body.GravityScale != 0 || !body.LockRotation {
		t.Errorf("unexpected body %+v", body)
	}

	if !ecs.NewMap[components.CharacterController](w).Has(e) {
		t.Error("missing controller marker")
	}
	if ecs.NewMap[components.Grounded](w).Has(e) {
		t.Error("body must not start grounded")
	}
}

func TestWithMovementOverridesTuning(t *testing.T) {
	b := NewBundle(physics.Cuboid(1, 1, 1), r3.Vec{}).
		WithMovement(12, 0.5, 3, components.NoSlopeLimit())
	if b.Movement.Acceleration != 12 || b.Movement.Damping != 0.5 || b.Movement.JumpImpulse != 3 {
		t.Errorf("unexpected movement %+v", b.Movement)
	}
	if b.Movement.MaxSlope.Enabled {
		t.Error("expected no slope limit")
	}
}

func TestClassifierTracksCurrentHits(t *testing.T) {
	tw := newTestWorld(NewBundle(physics.Cuboid(1, 1, 1), r3.Vec{}))

	steps := []struct {
		normals []r3.Vec
		want    bool
	}{
		{nil, false},
		{[]r3.Vec{up}, true},
		{[]r3.Vec{up}, true},
		{[]r3.Vec{r3.Vec{X: 1}}, false},
		{nil, false},
	}

	for i, s := range steps {
		tw.setHits(s.normals...)
		tw.pipeline.Classifier.Update()
		if got := tw.grounded.Has(tw.entity); got != s.want {
			t.Errorf("step %d: grounded = %v, want %v", i, got, s.want)
		}
	}
}

type countingProbe struct{ calls int }

func (p *countingProbe) Probe() { p.calls++ }

func TestClassifierRunsProbeEveryFrame(t *testing.T) {
	w := ecs.NewWorld()
	probe := &countingProbe{}
	p := NewPipeline(w, probe)
	for range 3 {
		p.Step(Keys{}, 0, 1.0/60, nil)
	}
	if probe.calls != 3 {
		t.Errorf("probe ran %d times, want 3", probe.calls)
	}
}

func TestPipelineJumpScenario(t *testing.T) {
	gravity := r3.Vec{Y: -10}
	b := NewBundle(physics.Cuboid(1, 1, 1), gravity).
		WithMovement(30, 0.9, 7, components.MaxSlope(math.Pi/4))
	tw := newTestWorld(b)
	tw.setHits(up)

	dt := 0.1
	tw.pipeline.Step(Keys{Jump: true}, 0, dt, nil)

	// Integration sets exactly 7, then gravity adds g*dt in the same frame.
	want := 7 + gravity.Y*dt
	if v := tw.velocity(); math.Abs(v.Y-want) > tol {
		t.Errorf("vy = %f, want %f", v.Y, want)
	}
}

func TestPipelineAirborneMoveScenario(t *testing.T) {
	b := NewBundle(physics.Cuboid(1, 1, 1), r3.Vec{}).
		WithMovement(30, 0.9, 7, components.MaxSlope(math.Pi/4))
	tw := newTestWorld(b)

	// Right at zero yaw is world +X.
	intents := tw.pipeline.Step(Keys{Right: true}, 0, 0.1, nil)
	if d := moveOf(t, intents); math.Abs(d.X-1) > tol || math.Abs(d.Y) > tol {
		t.Fatalf("move direction = %v, want (1, 0)", d)
	}
	if v := tw.velocity(); math.Abs(v.X-2.7) > tol || math.Abs(v.Z) > tol {
		t.Errorf("velocity = %v, want x = 2.7", v)
	}
}

func TestPipelineStaleGroundedDoesNotJump(t *testing.T) {
	b := NewBundle(physics.Cuboid(1, 1, 1), r3.Vec{})
	tw := newTestWorld(b)

	tw.setHits(up)
	tw.pipeline.Step(Keys{}, 0, 0.1, nil)
	if !tw.grounded.Has(tw.entity) {
		t.Fatal("expected grounded after first frame")
	}

	// Contact is gone by the time the jump arrives.
	tw.setHits()
	tw.pipeline.Step(Keys{Jump: true}, 0, 0.1, nil)
	if v := tw.velocity(); v.Y != 0 {
		t.Errorf("jump applied from stale grounded state: vy = %f", v.Y)
	}
}

func TestPipelineAirborneJumpIsDropped(t *testing.T) {
	b := NewBundle(physics.Cuboid(1, 1, 1), r3.Vec{})
	tw := newTestWorld(b)

	tw.pipeline.Step(Keys{Jump: true}, 0, 0.1, nil)

	// Land while still holding the key: the earlier press must not fire.
	tw.setHits(up)
	tw.pipeline.Step(Keys{Jump: true}, 0, 0.1, nil)
	if v := tw.velocity(); v.Y != 0 {
		t.Errorf("buffered jump fired: vy = %f", v.Y)
	}
}

func TestGravityAccumulatesLinearly(t *testing.T) {
	g := r3.Vec{Y: -11.62}
	tw := newTestWorld(NewBundle(physics.Cuboid(1, 1, 1), g))

	dt := 1.0 / 60
	frames := 90
	for range frames {
		tw.pipeline.Step(Keys{}, 0, dt, nil)
	}
	want := g.Y * dt * float64(frames)
	if v := tw.velocity(); math.Abs(v.Y-want) > 1e-6 {
		t.Errorf("vy = %f, want %f", v.Y, want)
	}
}

func TestGravityIgnoresGroundedState(t *testing.T) {
	g := r3.Vec{Y: -10}
	tw := newTestWorld(NewBundle(physics.Cuboid(1, 1, 1), g))
	tw.setHits(up)
	tw.pipeline.Step(Keys{}, 0, 0.1, nil)
	if v := tw.velocity(); math.Abs(v.Y+1) > tol {
		t.Errorf("vy = %f, want -1", v.Y)
	}
}

func TestDampingStrictlyReducesHorizontalSpeed(t *testing.T) {
	tw := newTestWorld(NewBundle(physics.Cuboid(1, 1, 1), r3.Vec{}))
	tw.vel.Get(tw.entity).Vec = r3.Vec{X: 4, Y: 2, Z: -3}

	prev := math.Hypot(4, -3)
	for i := range 20 {
		tw.pipeline.Step(Keys{}, 0, 1.0/60, nil)
		v := tw.velocity()
		speed := math.Hypot(v.X, v.Z)
		if speed >= prev {
			t.Fatalf("frame %d: speed %f did not drop below %f", i, speed, prev)
		}
		if v.Y != 2 {
			t.Fatalf("frame %d: damping touched vertical velocity: %f", i, v.Y)
		}
		prev = speed
	}
}

func TestIntentsAppliedToEveryController(t *testing.T) {
	w := ecs.NewWorld()
	s := NewSpawner(w)
	b := NewBundle(physics.Sphere(0.5), r3.Vec{})
	a := s.Spawn(b, r3.Vec{})
	c := s.Spawn(b.WithMovement(60, 0.5, 1, components.NoSlopeLimit()), r3.Vec{X: 3})

	p := NewPipeline(w, nil)
	p.Step(Keys{Backward: true}, 0, 0.1, nil)

	vel := ecs.NewMap[components.LinearVelocity](w)
	if va := vel.Get(a).Z; math.Abs(va-3*0.9) > tol {
		t.Errorf("first body vz = %f, want 2.7", va)
	}
	if vc := vel.Get(c).Z; math.Abs(vc-6*0.5) > tol {
		t.Errorf("second body vz = %f, want 3", vc)
	}
}

type recordingTimer struct{ phases []string }

func (r *recordingTimer) StartPhase(name string) { r.phases = append(r.phases, name) }

func TestPipelineStageOrder(t *testing.T) {
	p := NewPipeline(ecs.NewWorld(), nil)
	timer := &recordingTimer{}
	p.Step(Keys{}, 0, 0.1, timer)

	want := []string{PhaseInput, PhaseGround, PhaseMovement, PhaseGravity, PhaseDamping}
	if len(timer.phases) != len(want) {
		t.Fatalf("phases = %v, want %v", timer.phases, want)
	}
	for i := range want {
		if timer.phases[i] != want[i] {
			t.Errorf("phase %d = %s, want %s", i, timer.phases[i], want[i])
		}
	}
}
