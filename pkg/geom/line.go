package geom

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Line is a finite segment between two points, also used as a carrier for
// the infinite line through them (post axes, hole center lines).
type Line struct {
	From v3.Vec
	To   v3.Vec
}

// LineFromRay builds a line starting at from, running along dir for length.
func LineFromRay(from, dir v3.Vec, length float64) Line {
	return Line{From: from, To: from.Add(dir.Normalize().MulScalar(length))}
}

// Direction returns the (unnormalized) direction From -> To.
func (l Line) Direction() v3.Vec {
	return l.To.Sub(l.From)
}

// UnitTangent returns the unit direction of the line.
func (l Line) UnitTangent() v3.Vec {
	return l.Direction().Normalize()
}

// Length returns the segment length.
func (l Line) Length() float64 {
	return l.Direction().Length()
}

// PointAt returns the point at normalized parameter t (0 at From, 1 at To).
func (l Line) PointAt(t float64) v3.Vec {
	return l.From.Add(l.Direction().MulScalar(t))
}

// Transformed returns the line with both endpoints transformed.
func (l Line) Transformed(t Transform) Line {
	return Line{From: t.Apply(l.From), To: t.Apply(l.To)}
}

// ClosestPoints finds the endpoints of the shortest connector between the
// two segments. Parameters are clamped to the segment ends, so extensions
// that nearly cross beyond an endpoint do not count as close. When the
// segments intersect the two points coincide.
func ClosestPoints(a, b Line) (v3.Vec, v3.Vec) {
	da := a.Direction()
	db := b.Direction()
	w := a.From.Sub(b.From)

	aa := da.Dot(da)
	bb := db.Dot(db)
	if aa < Epsilon && bb < Epsilon {
		return a.From, b.From
	}
	if aa < Epsilon {
		return a.From, b.PointAt(clamp01(db.Dot(w) / bb))
	}
	if bb < Epsilon {
		return a.PointAt(clamp01(-da.Dot(w) / aa)), b.From
	}

	ab := da.Dot(db)
	aw := da.Dot(w)
	bw := db.Dot(w)

	// Closest pair on the infinite lines, clamped to segment a; parallel
	// segments drop the connector from a's start.
	s := 0.0
	if denom := aa*bb - ab*ab; denom > Epsilon {
		s = clamp01((ab*bw - bb*aw) / denom)
	}
	// Best b parameter for that point; re-derive s when t gets clamped.
	t := (bw + s*ab) / bb
	if t < 0 {
		t = 0
		s = clamp01(-aw / aa)
	} else if t > 1 {
		t = 1
		s = clamp01((ab - aw) / aa)
	}
	return a.PointAt(s), b.PointAt(t)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
