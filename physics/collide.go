package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// epsilon below which distances are treated as zero.
const epsilon = 1e-9

// Contact describes the overlap of two shapes.
// Normal is a unit vector pointing from the first shape toward the second and
// Depth is the penetration along it.
type Contact struct {
	Normal r3.Vec
	Depth  float64
}

// Collide tests shape a at pa against shape b at pb.
func Collide(a Shape, pa r3.Vec, b Shape, pb r3.Vec) (Contact, bool) {
	switch {
	case a.Kind == ShapeSphere && b.Kind == ShapeSphere:
		return sphereSphere(pa, a.Radius, pb, b.Radius)
	case a.Kind == ShapeSphere:
		c, ok := prismSphere(b, pb, pa, a.Radius)
		c.Normal = r3.Scale(-1, c.Normal)
		return c, ok
	case b.Kind == ShapeSphere:
		return prismSphere(a, pa, pb, b.Radius)
	}
	return prismPrism(a, pa, b, pb)
}

// Overlaps reports whether the shapes intersect with positive depth.
func Overlaps(a Shape, pa r3.Vec, b Shape, pb r3.Vec) bool {
	_, ok := Collide(a, pa, b, pb)
	return ok
}

func sphereSphere(pa r3.Vec, ra float64, pb r3.Vec, rb float64) (Contact, bool) {
	d := r3.Sub(pb, pa)
	dist := r3.Norm(d)
	pen := ra + rb - dist
	if pen <= 0 {
		return Contact{}, false
	}
	n := r3.Vec{Y: 1}
	if dist > epsilon {
		n = r3.Scale(1/dist, d)
	}
	return Contact{Normal: n, Depth: pen}, true
}

// prismSphere tests a box or cylinder against a sphere. The normal points from
// the prism toward the sphere.
func prismSphere(p Shape, pp, center r3.Vec, r float64) (Contact, bool) {
	local := r3.Sub(center, pp)
	closest, inside := closestPoint(p, local)

	if !inside {
		diff := r3.Sub(local, closest)
		dist := r3.Norm(diff)
		if dist >= r || dist <= epsilon {
			return Contact{}, false
		}
		return Contact{Normal: r3.Scale(1/dist, diff), Depth: r - dist}, true
	}

	n, faceDist := escape(p, local)
	return Contact{Normal: n, Depth: r + faceDist}, true
}

// closestPoint returns the point of the prism (in its local frame) closest to
// local, and whether local lies inside the prism.
func closestPoint(p Shape, local r3.Vec) (r3.Vec, bool) {
	if p.Kind == ShapeCylinder {
		q := r3.Vec{Y: clamp(local.Y, -p.HalfHeight, p.HalfHeight)}
		rl := math.Hypot(local.X, local.Z)
		inside := rl <= p.Radius && math.Abs(local.Y) <= p.HalfHeight
		if rl > p.Radius {
			s := p.Radius / rl
			q.X, q.Z = local.X*s, local.Z*s
		} else {
			q.X, q.Z = local.X, local.Z
		}
		return q, inside
	}

	h := p.HalfExtents
	q := r3.Vec{
		X: clamp(local.X, -h.X, h.X),
		Y: clamp(local.Y, -h.Y, h.Y),
		Z: clamp(local.Z, -h.Z, h.Z),
	}
	return q, q == local
}

// escape returns the outward direction and distance to the nearest prism
// surface for a point inside it.
func escape(p Shape, local r3.Vec) (r3.Vec, float64) {
	if p.Kind == ShapeCylinder {
		rl := math.Hypot(local.X, local.Z)
		radial := p.Radius - rl
		vertical := p.HalfHeight - math.Abs(local.Y)
		if vertical <= radial {
			return r3.Vec{Y: signOf(local.Y)}, vertical
		}
		if rl <= epsilon {
			return r3.Vec{X: 1}, radial
		}
		return r3.Vec{X: local.X / rl, Z: local.Z / rl}, radial
	}

	h := p.HalfExtents
	fx := h.X - math.Abs(local.X)
	fy := h.Y - math.Abs(local.Y)
	fz := h.Z - math.Abs(local.Z)
	switch {
	case fy <= fx && fy <= fz:
		return r3.Vec{Y: signOf(local.Y)}, fy
	case fx <= fz:
		return r3.Vec{X: signOf(local.X)}, fx
	default:
		return r3.Vec{Z: signOf(local.Z)}, fz
	}
}

// prismPrism tests two vertical prisms (boxes or cylinders). Both share the Y
// axis, so the test splits into a vertical interval check and a horizontal
// cross-section check; the shallower of the two wins.
func prismPrism(a Shape, pa r3.Vec, b Shape, pb r3.Vec) (Contact, bool) {
	d := r3.Sub(pb, pa)
	ha, hb := a.HalfSize(), b.HalfSize()

	overlapY := ha.Y + hb.Y - math.Abs(d.Y)
	if overlapY <= 0 {
		return Contact{}, false
	}

	nx, nz, depthH, ok := section(a, b, d.X, d.Z)
	if !ok {
		return Contact{}, false
	}

	if overlapY <= depthH {
		return Contact{Normal: r3.Vec{Y: signOf(d.Y)}, Depth: overlapY}, true
	}
	return Contact{Normal: r3.Vec{X: nx, Z: nz}, Depth: depthH}, true
}

// section intersects the horizontal cross-sections of two prisms, b offset by
// (dx, dz) from a. The normal points from a toward b.
func section(a, b Shape, dx, dz float64) (nx, nz, depth float64, ok bool) {
	switch {
	case a.Kind == ShapeCylinder && b.Kind == ShapeCylinder:
		dist := math.Hypot(dx, dz)
		pen := a.Radius + b.Radius - dist
		if pen <= 0 {
			return 0, 0, 0, false
		}
		if dist <= epsilon {
			return 1, 0, pen, true
		}
		return dx / dist, dz / dist, pen, true

	case a.Kind == ShapeCylinder:
		nx, nz, depth, ok = rectCircle(b.HalfExtents.X, b.HalfExtents.Z, -dx, -dz, a.Radius)
		return -nx, -nz, depth, ok

	case b.Kind == ShapeCylinder:
		return rectCircle(a.HalfExtents.X, a.HalfExtents.Z, dx, dz, b.Radius)
	}

	ox := a.HalfExtents.X + b.HalfExtents.X - math.Abs(dx)
	oz := a.HalfExtents.Z + b.HalfExtents.Z - math.Abs(dz)
	if ox <= 0 || oz <= 0 {
		return 0, 0, 0, false
	}
	if ox < oz {
		return signOf(dx), 0, ox, true
	}
	return 0, signOf(dz), oz, true
}

// rectCircle intersects a rectangle centred at the origin with a circle at
// (cx, cz). The normal points from the rectangle toward the circle.
func rectCircle(hx, hz, cx, cz, r float64) (nx, nz, depth float64, ok bool) {
	qx := clamp(cx, -hx, hx)
	qz := clamp(cz, -hz, hz)

	if qx != cx || qz != cz {
		ddx, ddz := cx-qx, cz-qz
		dist := math.Hypot(ddx, ddz)
		if dist >= r {
			return 0, 0, 0, false
		}
		return ddx / dist, ddz / dist, r - dist, true
	}

	fx := hx - math.Abs(cx)
	fz := hz - math.Abs(cz)
	if fx < fz {
		return signOf(cx), 0, r + fx, true
	}
	return 0, signOf(cz), r + fz, true
}

func signOf(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
