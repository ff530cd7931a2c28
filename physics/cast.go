package physics

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// refineIterations is the number of bisection steps used to locate the time of
// impact once a cast sample overlaps a target.
const refineIterations = 24

// Target is a collider considered by Cast.
type Target struct {
	ID       uint64
	Shape    Shape
	Position r3.Vec
}

// Hit is one shape-cast result.
type Hit struct {
	ID       uint64
	Distance float64
	// Normal is the surface normal of the hit collider at the contact, pointing
	// back toward the cast shape, in world space.
	Normal r3.Vec
}

// Cast sweeps shape from origin along dir up to maxDist and appends one hit per
// target it touches to dst, nearest first. Targets already overlapping at the
// origin are reported at distance zero.
func Cast(dst []Hit, shape Shape, origin, dir r3.Vec, maxDist float64, targets []Target) []Hit {
	length := r3.Norm(dir)
	if length <= epsilon || maxDist < 0 || math.IsNaN(maxDist) {
		return dst
	}
	dir = r3.Scale(1/length, dir)

	start := len(dst)
	sweep := shape.AABB(origin).Union(shape.AABB(r3.Add(origin, r3.Scale(maxDist, dir))))

	for _, t := range targets {
		if !sweep.Overlaps(t.Shape.AABB(t.Position)) {
			continue
		}
		if hit, ok := castOne(shape, origin, dir, maxDist, t); ok {
			dst = append(dst, hit)
		}
	}

	slices.SortFunc(dst[start:], func(a, b Hit) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return dst
}

func castOne(shape Shape, origin, dir r3.Vec, maxDist float64, t Target) (Hit, bool) {
	if c, ok := Collide(shape, origin, t.Shape, t.Position); ok {
		return Hit{ID: t.ID, Distance: 0, Normal: r3.Scale(-1, c.Normal)}, true
	}
	if maxDist == 0 {
		return Hit{}, false
	}

	// Step no further than half the thinner shape so thin colliders are not
	// skipped between samples.
	step := 0.5 * math.Min(shape.MinHalfSize(), t.Shape.MinHalfSize())
	step = math.Max(step, 1e-4)
	steps := int(math.Ceil(maxDist / step))

	prev := 0.0
	for i := 1; i <= steps; i++ {
		at := math.Min(float64(i)*step, maxDist)
		if !Overlaps(shape, r3.Add(origin, r3.Scale(at, dir)), t.Shape, t.Position) {
			prev = at
			continue
		}

		lo, hi := prev, at
		for range refineIterations {
			mid := 0.5 * (lo + hi)
			if Overlaps(shape, r3.Add(origin, r3.Scale(mid, dir)), t.Shape, t.Position) {
				hi = mid
			} else {
				lo = mid
			}
		}

		c, ok := Collide(shape, r3.Add(origin, r3.Scale(hi, dir)), t.Shape, t.Position)
		if !ok {
			return Hit{}, false
		}
		return Hit{ID: t.ID, Distance: lo, Normal: r3.Scale(-1, c.Normal)}, true
	}
	return Hit{}, false
}

// AngleBetween returns the angle in radians between two vectors. A zero
// vector is treated as pointing away from everything (π).
func AngleBetween(a, b r3.Vec) float64 {
	if r3.Norm(a) <= epsilon || r3.Norm(b) <= epsilon {
		return math.Pi
	}
	return math.Acos(clamp(r3.Cos(a, b), -1, 1))
}
