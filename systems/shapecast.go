package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/hopper/components"
	"github.com/pthm-cable/hopper/physics"
)

// ShapeCastSystem runs every ShapeCaster against all colliders and stores the
// hits. Casters never hit their own collider. Hit normals are stored in the
// caster's local frame.
type ShapeCastSystem struct {
	casters   *ecs.Filter4[components.Position, components.Rotation, components.ShapeCaster, components.ShapeHits]
	colliders *ecs.Filter2[components.Position, components.Collider]

	targets []physics.Target
}

// NewShapeCastSystem creates a shape cast system.
func NewShapeCastSystem(w *ecs.World) *ShapeCastSystem {
	return &ShapeCastSystem{
		casters:   ecs.NewFilter4[components.Position, components.Rotation, components.ShapeCaster, components.ShapeHits](w),
		colliders: ecs.NewFilter2[components.Position, components.Collider](w),
	}
}

// Probe refreshes all ShapeHits. It satisfies controller.GroundProbe.
func (s *ShapeCastSystem) Probe() {
	s.targets = s.targets[:0]
	cq := s.colliders.Query()
	for cq.Next() {
		pos, col := cq.Get()
		s.targets = append(s.targets, physics.Target{
			ID:       uint64(cq.Entity().ID()),
			Shape:    col.Shape,
			Position: pos.Vec,
		})
	}

	query := s.casters.Query()
	for query.Next() {
		pos, rot, caster, hits := query.Get()
		self := uint64(query.Entity().ID())

		dir := rot.Apply(caster.Direction)
		all := physics.Cast(hits.Hits[:0], caster.Shape, pos.Vec, dir, caster.MaxDistance, s.targets)

		inv := rot.Inverse()
		kept := all[:0]
		for _, h := range all {
			if h.ID == self {
				continue
			}
			h.Normal = inv.Apply(h.Normal)
			kept = append(kept, h)
		}
		hits.Hits = kept
	}
}
