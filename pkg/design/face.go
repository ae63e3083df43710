package design

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lapjoint/pkg/geom"
)

// Face is the sheared planar parallelogram shared by a joint's two
// pockets. Parameters are arc lengths along the (generally non-orthogonal)
// U and V edge directions, so skew-corrected tool steps map directly onto
// parameter steps.
type Face struct {
	Origin  v3.Vec // point at parameters (0, 0)
	UDir    v3.Vec // unit edge direction, U
	VDir    v3.Vec // unit edge direction, V
	UDomain geom.Interval
	VDomain geom.Interval
	Normal  v3.Vec
}

// faceFromCorners builds a face from the quad c0-c1-c2-c3 with the U edge
// c0->c1 and the V edge c0->c3. normal orients the face.
func faceFromCorners(c [4]v3.Vec, normal v3.Vec) (Face, bool) {
	u := c[1].Sub(c[0])
	v := c[3].Sub(c[0])
	if u.Length() < geom.Epsilon || v.Length() < geom.Epsilon {
		return Face{}, false
	}
	return Face{
		Origin:  c[0],
		UDir:    u.Normalize(),
		VDir:    v.Normalize(),
		UDomain: geom.Interval{Min: 0, Max: u.Length()},
		VDomain: geom.Interval{Min: 0, Max: v.Length()},
		Normal:  normal.Normalize(),
	}, true
}

// PointAt converts (u, v) parameters to a global point.
func (f Face) PointAt(u, v float64) v3.Vec {
	return f.Origin.Add(f.UDir.MulScalar(u)).Add(f.VDir.MulScalar(v))
}

// UV projects a global point onto the face and returns its parameters.
// The normal component is discarded.
func (f Face) UV(p v3.Vec) (u, v float64) {
	d := p.Sub(f.Origin)
	// Gram system for the skewed (unit) basis: solve for u, v in
	// d = u*UDir + v*VDir + w*Normal.
	b := f.UDir.Dot(f.VDir)
	ru := d.Dot(f.UDir)
	rv := d.Dot(f.VDir)
	det := 1 - b*b
	if det < geom.Epsilon {
		return ru, 0
	}
	return (ru - b*rv) / det, (rv - b*ru) / det
}

// Transpose swaps the U and V directions and domains.
func (f Face) Transpose() Face {
	f.UDir, f.VDir = f.VDir, f.UDir
	f.UDomain, f.VDomain = f.VDomain, f.UDomain
	return f
}

// ExtendU grows the U domain by d on both ends.
func (f Face) ExtendU(d float64) Face {
	f.UDomain = f.UDomain.Grow(d)
	return f
}

// ExtendV grows the V domain by d on both ends.
func (f Face) ExtendV(d float64) Face {
	f.VDomain = f.VDomain.Grow(d)
	return f
}

// Center returns the global point at the middle of both domains.
func (f Face) Center() v3.Vec {
	return f.PointAt(f.UDomain.Mid(), f.VDomain.Mid())
}

// Area returns the face area (skew-corrected).
func (f Face) Area() float64 {
	return f.UDomain.Length() * f.VDomain.Length() * f.UDir.Cross(f.VDir).Length()
}

// Corners returns the four corners of the current domain.
func (f Face) Corners() [4]v3.Vec {
	return [4]v3.Vec{
		f.PointAt(f.UDomain.Min, f.VDomain.Min),
		f.PointAt(f.UDomain.Max, f.VDomain.Min),
		f.PointAt(f.UDomain.Max, f.VDomain.Max),
		f.PointAt(f.UDomain.Min, f.VDomain.Max),
	}
}
