package systems

import (
	"math"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/hopper/components"
	"github.com/pthm-cable/hopper/physics"
)

// SolverSystem integrates dynamic bodies and resolves contacts between them.
// Bodies do not rotate.
type SolverSystem struct {
	filter     *ecs.Filter4[components.Position, components.LinearVelocity, components.RigidBody, components.Collider]
	gravity    r3.Vec
	iterations int

	bodies   []solverBody
	boxes    []physics.AABB
	pairs    [][2]int
	grid     *SpatialGrid
	contacts int
}

type solverBody struct {
	pos   *components.Position
	vel   *components.LinearVelocity
	body  *components.RigidBody
	shape physics.Shape
}

// Broad phase settings. Boxes are padded so pairs found before the contact
// passes stay valid while positions are corrected.
const (
	broadPhaseCell   = 2.0
	broadPhaseMargin = 0.1
)

// NewSolverSystem creates a solver with engine gravity and the number of
// contact passes per step.
func NewSolverSystem(w *ecs.World, gravity r3.Vec, iterations int) *SolverSystem {
	if iterations < 1 {
		iterations = 1
	}
	return &SolverSystem{
		filter:     ecs.NewFilter4[components.Position, components.LinearVelocity, components.RigidBody, components.Collider](w),
		gravity:    gravity,
		iterations: iterations,
		grid:       NewSpatialGrid(broadPhaseCell),
	}
}

// Update advances all bodies by dt.
func (s *SolverSystem) Update(dt float64) {
	s.bodies = s.bodies[:0]
	query := s.filter.Query()
	for query.Next() {
		pos, vel, body, col := query.Get()
		s.bodies = append(s.bodies, solverBody{pos: pos, vel: vel, body: body, shape: col.Shape})
	}

	for _, b := range s.bodies {
		if b.body.Kind != components.BodyDynamic {
			continue
		}
		if b.body.GravityScale != 0 {
			b.vel.Vec = r3.Add(b.vel.Vec, r3.Scale(b.body.GravityScale*dt, s.gravity))
		}
		b.pos.Vec = r3.Add(b.pos.Vec, r3.Scale(dt, b.vel.Vec))
	}

	s.findPairs()

	s.contacts = 0
	for it := 0; it < s.iterations; it++ {
		for _, p := range s.pairs {
			if s.resolve(&s.bodies[p[0]], &s.bodies[p[1]], dt, it == 0) && it == 0 {
				s.contacts++
			}
		}
	}
}

// findPairs fills s.pairs with bodies whose padded boxes overlap and at least
// one of which can move.
func (s *SolverSystem) findPairs() {
	s.boxes = s.boxes[:0]
	s.grid.Clear()
	for i, b := range s.bodies {
		box := padAABB(b.shape.AABB(b.pos.Vec), broadPhaseMargin)
		s.boxes = append(s.boxes, box)
		s.grid.Insert(i, box)
	}

	s.pairs = s.grid.PairsInto(s.pairs[:0], s.boxes)
	s.pairs = slices.DeleteFunc(s.pairs, func(p [2]int) bool {
		return s.bodies[p[0]].body.Kind != components.BodyDynamic && s.bodies[p[1]].body.Kind != components.BodyDynamic
	})
}

// padAABB grows box by margin on every side so resting contacts, whose boxes
// only touch, still reach the narrow phase.
func padAABB(box physics.AABB, margin float64) physics.AABB {
	pad := r3.Vec{X: margin, Y: margin, Z: margin}
	return physics.AABB{Min: r3.Sub(box.Min, pad), Max: r3.Add(box.Max, pad)}
}

// Contacts returns the number of touching pairs found in the last step.
func (s *SolverSystem) Contacts() int {
	return s.contacts
}

// resolve separates one pair and removes approaching normal velocity.
// Friction is applied once per step.
func (s *SolverSystem) resolve(a, b *solverBody, dt float64, friction bool) bool {
	ia, ib := invMass(a.body), invMass(b.body)
	total := ia + ib
	if total == 0 {
		return false
	}

	c, ok := physics.Collide(a.shape, a.pos.Vec, b.shape, b.pos.Vec)
	if !ok {
		return false
	}
	n := c.Normal

	a.pos.Vec = r3.Sub(a.pos.Vec, r3.Scale(c.Depth*ia/total, n))
	b.pos.Vec = r3.Add(b.pos.Vec, r3.Scale(c.Depth*ib/total, n))

	rel := r3.Sub(velOf(b), velOf(a))
	vn := r3.Dot(rel, n)
	if vn < 0 {
		j := -vn / total
		applyImpulse(a, r3.Scale(-j, n), ia)
		applyImpulse(b, r3.Scale(j, n), ib)
	}

	if friction {
		mu := math.Sqrt(a.body.Friction * b.body.Friction)
		if mu > 0 {
			rel = r3.Sub(velOf(b), velOf(a))
			tangent := r3.Sub(rel, r3.Scale(r3.Dot(rel, n), n))
			k := math.Min(1, mu*dt) / total
			applyImpulse(a, r3.Scale(k, tangent), ia)
			applyImpulse(b, r3.Scale(-k, tangent), ib)
		}
	}
	return true
}

func invMass(b *components.RigidBody) float64 {
	if b.Kind != components.BodyDynamic {
		return 0
	}
	return b.InvMass
}

func velOf(b *solverBody) r3.Vec {
	if b.body.Kind != components.BodyDynamic {
		return r3.Vec{}
	}
	return b.vel.Vec
}

func applyImpulse(b *solverBody, impulse r3.Vec, inv float64) {
	if inv == 0 {
		return
	}
	b.vel.Vec = r3.Add(b.vel.Vec, r3.Scale(inv, impulse))
}
