package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Epsilon is the tolerance used for degeneracy checks throughout the package.
const Epsilon = 1e-9

// Plane is an orthonormal frame: an origin plus right-handed X/Y/Z axes.
// ZAxis is the plane normal.
type Plane struct {
	Origin v3.Vec
	XAxis  v3.Vec
	YAxis  v3.Vec
	ZAxis  v3.Vec
}

// WorldXY is the global coordinate frame.
var WorldXY = Plane{
	XAxis: v3.Vec{X: 1},
	YAxis: v3.Vec{Y: 1},
	ZAxis: v3.Vec{Z: 1},
}

// PlaneFromNormal builds a plane at origin with the given normal. The X
// axis is chosen perpendicular to the normal, preferring a horizontal
// direction when the normal is not vertical.
func PlaneFromNormal(origin, normal v3.Vec) (Plane, bool) {
	if normal.Length() < Epsilon {
		return Plane{}, false
	}
	n := normal.Normalize()
	// Pick the world axis least aligned with the normal as the X hint.
	hint := v3.Vec{Z: 1}
	if math.Abs(n.Z) > 0.9 {
		hint = v3.Vec{X: 1}
	}
	x := hint.Cross(n)
	return planeFromAxes(origin, n, x)
}

// PlaneFromFrame builds a plane at origin with the given normal and an X
// axis as close as possible to xHint (xHint is projected onto the plane).
func PlaneFromFrame(origin, normal, xHint v3.Vec) (Plane, bool) {
	if normal.Length() < Epsilon {
		return Plane{}, false
	}
	n := normal.Normalize()
	// Remove the normal component from the hint.
	x := xHint.Sub(n.MulScalar(xHint.Dot(n)))
	if x.Length() < Epsilon {
		return PlaneFromNormal(origin, normal)
	}
	return planeFromAxes(origin, n, x)
}

func planeFromAxes(origin, n, x v3.Vec) (Plane, bool) {
	if x.Length() < Epsilon {
		return Plane{}, false
	}
	xu := x.Normalize()
	yu := n.Cross(xu).Normalize()
	return Plane{Origin: origin, XAxis: xu, YAxis: yu, ZAxis: n}, true
}

// PointAt converts plane-local (u, v, w) coordinates to a global point.
func (p Plane) PointAt(u, v, w float64) v3.Vec {
	return p.Origin.
		Add(p.XAxis.MulScalar(u)).
		Add(p.YAxis.MulScalar(v)).
		Add(p.ZAxis.MulScalar(w))
}

// ToLocal converts a global point to plane-local coordinates.
func (p Plane) ToLocal(q v3.Vec) v3.Vec {
	d := q.Sub(p.Origin)
	return v3.Vec{X: d.Dot(p.XAxis), Y: d.Dot(p.YAxis), Z: d.Dot(p.ZAxis)}
}

// LocalVector expresses a global direction vector in plane-local components.
func (p Plane) LocalVector(v v3.Vec) v3.Vec {
	return v3.Vec{X: v.Dot(p.XAxis), Y: v.Dot(p.YAxis), Z: v.Dot(p.ZAxis)}
}

// DistanceTo returns the signed distance of q from the plane, positive on
// the normal side.
func (p Plane) DistanceTo(q v3.Vec) float64 {
	return q.Sub(p.Origin).Dot(p.ZAxis)
}

// Translated returns a copy of the plane moved by offset.
func (p Plane) Translated(offset v3.Vec) Plane {
	p.Origin = p.Origin.Add(offset)
	return p
}

// WithOrigin returns a copy of the plane re-centered at origin.
func (p Plane) WithOrigin(origin v3.Vec) Plane {
	p.Origin = origin
	return p
}

// Rotated returns the plane with its frame rotated by deg degrees about
// the given axis direction through the plane origin.
func (p Plane) Rotated(deg float64, axis v3.Vec) Plane {
	r := RotationAbout(deg, axis, p.Origin)
	return Plane{
		Origin: p.Origin,
		XAxis:  r.ApplyVector(p.XAxis),
		YAxis:  r.ApplyVector(p.YAxis),
		ZAxis:  r.ApplyVector(p.ZAxis),
	}
}

// VectorAngle returns the signed angle from v1 to v2 in degrees, using the
// orientation plane's normal to determine the sign. Near-zero angles are
// returned as 0.
func VectorAngle(v1, v2 v3.Vec, orientation Plane) float64 {
	l1, l2 := v1.Length(), v2.Length()
	if l1 < Epsilon || l2 < Epsilon {
		return 0
	}
	cos := v1.Dot(v2) / (l1 * l2)
	cos = math.Max(-1, math.Min(1, cos))
	angle := math.Acos(cos) * 180 / math.Pi
	if math.Abs(angle) < 1e-3 {
		return 0
	}
	cross := orientation.LocalVector(v1.Cross(v2))
	if cross.Z < -1e-3 {
		return -angle
	}
	if cross.Z > 1e-3 {
		return angle
	}
	// Cross product lies in the plane; fall back to its Y component.
	if cross.Y < 0 {
		return -angle
	}
	return angle
}
