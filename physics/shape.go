// Package physics provides collider geometry, contact generation and shape casting.
//
// All shapes are axis-aligned. Controlled bodies have their rotation locked, the
// ground cylinder is symmetric about Y and spheres are rotation invariant, so the
// scene never needs oriented narrow-phase tests.
package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ShapeKind identifies the collider primitive.
type ShapeKind uint8

const (
	ShapeCuboid ShapeKind = iota
	ShapeSphere
	ShapeCylinder
)

// String returns the lowercase primitive name.
func (k ShapeKind) String() string {
	switch k {
	case ShapeCuboid:
		return "cuboid"
	case ShapeSphere:
		return "sphere"
	case ShapeCylinder:
		return "cylinder"
	}
	return "unknown"
}

// Shape is a collider primitive centred on its owner's position.
type Shape struct {
	Kind        ShapeKind
	HalfExtents r3.Vec  // cuboid
	Radius      float64 // sphere, cylinder
	HalfHeight  float64 // cylinder (along Y)
}

// Cuboid returns a box with the given full side lengths.
func Cuboid(x, y, z float64) Shape {
	return Shape{Kind: ShapeCuboid, HalfExtents: r3.Vec{X: x / 2, Y: y / 2, Z: z / 2}}
}

// Sphere returns a sphere of radius r.
func Sphere(r float64) Shape {
	return Shape{Kind: ShapeSphere, Radius: r}
}

// Cylinder returns a Y-aligned cylinder with radius r and full height h.
func Cylinder(r, h float64) Shape {
	return Shape{Kind: ShapeCylinder, Radius: r, HalfHeight: h / 2}
}

// Scaled returns a uniformly scaled copy of the shape.
func (s Shape) Scaled(f float64) Shape {
	s.HalfExtents = r3.Scale(f, s.HalfExtents)
	s.Radius *= f
	s.HalfHeight *= f
	return s
}

// HalfSize returns the half extents of the shape's bounding box.
func (s Shape) HalfSize() r3.Vec {
	switch s.Kind {
	case ShapeSphere:
		return r3.Vec{X: s.Radius, Y: s.Radius, Z: s.Radius}
	case ShapeCylinder:
		return r3.Vec{X: s.Radius, Y: s.HalfHeight, Z: s.Radius}
	}
	return s.HalfExtents
}

// Volume returns the enclosed volume, used for density based mass.
func (s Shape) Volume() float64 {
	switch s.Kind {
	case ShapeSphere:
		return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
	case ShapeCylinder:
		return math.Pi * s.Radius * s.Radius * 2 * s.HalfHeight
	}
	h := s.HalfExtents
	return 8 * h.X * h.Y * h.Z
}

// MinHalfSize returns the smallest half extent, used to size cast steps.
func (s Shape) MinHalfSize() float64 {
	h := s.HalfSize()
	return math.Min(h.X, math.Min(h.Y, h.Z))
}

// AABB returns the world-space bounding box of the shape at pos.
func (s Shape) AABB(pos r3.Vec) AABB {
	h := s.HalfSize()
	return AABB{Min: r3.Sub(pos, h), Max: r3.Add(pos, h)}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max r3.Vec
}

// Overlaps reports whether two boxes intersect.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Union returns the smallest box containing both boxes.
func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: r3.Vec{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y), Z: math.Min(a.Min.Z, b.Min.Z)},
		Max: r3.Vec{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y), Z: math.Max(a.Max.Z, b.Max.Z)},
	}
}
