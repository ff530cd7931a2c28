package controller

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/hopper/components"
	"github.com/pthm-cable/hopper/physics"
)

// GroundProbe refreshes the ShapeHits of every controlled body from the
// current geometry.
type GroundProbe interface {
	Probe()
}

// GroundClassifier sets or clears the Grounded marker on each controlled body
// from its most recent probe hits.
type GroundClassifier struct {
	probe    GroundProbe
	filter   *ecs.Filter3[components.ShapeHits, components.Rotation, components.Movement]
	grounded *ecs.Map[components.Grounded]

	// Structural changes are deferred until the query finishes.
	land, lift []ecs.Entity
}

// NewGroundClassifier creates a classifier. A nil probe classifies whatever
// hits are already stored.
func NewGroundClassifier(w *ecs.World, probe GroundProbe) *GroundClassifier {
	return &GroundClassifier{
		probe: probe,
		filter: ecs.NewFilter3[components.ShapeHits, components.Rotation, components.Movement](w).
			With(ecs.C[components.CharacterController]()),
		grounded: ecs.NewMap[components.Grounded](w),
	}
}

// Update refreshes probe results and reclassifies every controlled body.
// It runs every frame whether or not any intent was produced.
func (c *GroundClassifier) Update() {
	if c.probe != nil {
		c.probe.Probe()
	}

	c.land = c.land[:0]
	c.lift = c.lift[:0]

	query := c.filter.Query()
	for query.Next() {
		hits, rot, mv := query.Get()
		entity := query.Entity()

		onGround := IsGrounded(hits.Hits, *rot, mv.MaxSlope)
		has := c.grounded.Has(entity)
		switch {
		case onGround && !has:
			c.land = append(c.land, entity)
		case !onGround && has:
			c.lift = append(c.lift, entity)
		}
	}

	for _, e := range c.land {
		c.grounded.Add(e, &components.Grounded{})
	}
	for _, e := range c.lift {
		c.grounded.Remove(e)
	}
}

// IsGrounded reports whether any hit counts as standing ground. Hit normals are
// in the body's local frame and are rotated to world space before comparing
// against up. Without a slope limit any hit grounds the body.
func IsGrounded(hits []physics.Hit, rot components.Rotation, limit components.SlopeLimit) bool {
	for _, h := range hits {
		if limit.Walkable(rot.Apply(h.Normal)) {
			return true
		}
	}
	return false
}
