package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Bounds is an axis-aligned bounding box, usually expressed in the local
// coordinates of some plane rather than in world space.
type Bounds struct {
	Min v3.Vec
	Max v3.Vec
}

// EmptyBounds returns an inverted box that any Extend call will replace.
func EmptyBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{
		Min: v3.Vec{X: inf, Y: inf, Z: inf},
		Max: v3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
}

// BoundsOf returns the bounding box of the given points.
func BoundsOf(pts []v3.Vec) Bounds {
	b := EmptyBounds()
	for _, p := range pts {
		b = b.Extend(p)
	}
	return b
}

// IsEmpty reports whether the box contains no points.
func (b Bounds) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend grows the box to include p.
func (b Bounds) Extend(p v3.Vec) Bounds {
	b.Min = v3.Vec{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)}
	b.Max = v3.Vec{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)}
	return b
}

// Union grows the box to include another box.
func (b Bounds) Union(o Bounds) Bounds {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Size returns the box extents along each axis.
func (b Bounds) Size() v3.Vec {
	if b.IsEmpty() {
		return v3.Vec{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the box centroid.
func (b Bounds) Center() v3.Vec {
	return b.Min.Add(b.Max).MulScalar(0.5)
}

// Degenerate reports whether any extent is within tol of zero (or the box
// is empty outright).
func (b Bounds) Degenerate(tol float64) bool {
	if b.IsEmpty() {
		return true
	}
	s := b.Size()
	return s.X < tol || s.Y < tol || s.Z < tol
}

// Interval is a closed 1D range, used for pocket face parameter domains.
type Interval struct {
	Min float64
	Max float64
}

// Mid returns the interval midpoint.
func (i Interval) Mid() float64 { return (i.Min + i.Max) / 2 }

// Length returns the interval length.
func (i Interval) Length() float64 { return i.Max - i.Min }

// Contains reports whether x lies in the interval.
func (i Interval) Contains(x float64) bool { return x >= i.Min && x <= i.Max }

// Shrink moves both ends inward by d. The result may be inverted; callers
// check Length before milling.
func (i Interval) Shrink(d float64) Interval {
	return Interval{Min: i.Min + d, Max: i.Max - d}
}

// Grow moves both ends outward by d.
func (i Interval) Grow(d float64) Interval {
	return Interval{Min: i.Min - d, Max: i.Max + d}
}
