package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/hopper/components"
)

// CleanupSystem removes scene entities.
type CleanupSystem struct {
	scene  *ecs.Filter1[components.SceneEntity]
	fallen *ecs.Filter2[components.Position, components.RigidBody]

	killHeight float64
	buf        []ecs.Entity
}

// NewCleanupSystem creates a cleanup system. Dynamic bodies other than the
// player below killHeight are removed by Update.
func NewCleanupSystem(w *ecs.World, killHeight float64) *CleanupSystem {
	return &CleanupSystem{
		scene: ecs.NewFilter1[components.SceneEntity](w),
		fallen: ecs.NewFilter2[components.Position, components.RigidBody](w).
			Without(ecs.C[components.Player]()),
		killHeight: killHeight,
	}
}

// Update removes bodies that fell out of the world and returns how many.
func (s *CleanupSystem) Update(w *ecs.World) int {
	s.buf = s.buf[:0]
	query := s.fallen.Query()
	for query.Next() {
		pos, body := query.Get()
		if body.Kind == components.BodyDynamic && pos.Y < s.killHeight {
			s.buf = append(s.buf, query.Entity())
		}
	}
	for _, e := range s.buf {
		w.RemoveEntity(e)
	}
	return len(s.buf)
}

// Teardown removes every scene entity and returns how many.
func (s *CleanupSystem) Teardown(w *ecs.World) int {
	s.buf = s.buf[:0]
	query := s.scene.Query()
	for query.Next() {
		s.buf = append(s.buf, query.Entity())
	}
	for _, e := range s.buf {
		w.RemoveEntity(e)
	}
	return len(s.buf)
}
