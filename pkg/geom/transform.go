package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Transform is a rigid-body transform: an orthonormal rotation followed by
// a translation. Rigid transforms are closed under composition and cheap
// to invert, which is all the joint pipeline needs.
type Transform struct {
	R [3][3]float64
	T v3.Vec
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{R: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

// Apply transforms the point q.
func (t Transform) Apply(q v3.Vec) v3.Vec {
	return t.ApplyVector(q).Add(t.T)
}

// ApplyVector transforms the direction v (rotation only, no translation).
func (t Transform) ApplyVector(v v3.Vec) v3.Vec {
	return v3.Vec{
		X: t.R[0][0]*v.X + t.R[0][1]*v.Y + t.R[0][2]*v.Z,
		Y: t.R[1][0]*v.X + t.R[1][1]*v.Y + t.R[1][2]*v.Z,
		Z: t.R[2][0]*v.X + t.R[2][1]*v.Y + t.R[2][2]*v.Z,
	}
}

// ApplyAll transforms a slice of points, returning a new slice.
func (t Transform) ApplyAll(pts []v3.Vec) []v3.Vec {
	out := make([]v3.Vec, len(pts))
	for i, p := range pts {
		out[i] = t.Apply(p)
	}
	return out
}

// Mul composes transforms: (t.Mul(o)).Apply(p) == t.Apply(o.Apply(p)).
func (t Transform) Mul(o Transform) Transform {
	var r [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = t.R[i][0]*o.R[0][j] + t.R[i][1]*o.R[1][j] + t.R[i][2]*o.R[2][j]
		}
	}
	return Transform{R: r, T: t.ApplyVector(o.T).Add(t.T)}
}

// Inverse returns the inverse transform. Valid because R is orthonormal.
func (t Transform) Inverse() Transform {
	var r [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = t.R[j][i]
		}
	}
	inv := Transform{R: r}
	inv.T = inv.ApplyVector(t.T).MulScalar(-1)
	return inv
}

// WorldToPlane returns the transform taking global coordinates into the
// local frame of p.
func WorldToPlane(p Plane) Transform {
	t := Transform{R: [3][3]float64{
		{p.XAxis.X, p.XAxis.Y, p.XAxis.Z},
		{p.YAxis.X, p.YAxis.Y, p.YAxis.Z},
		{p.ZAxis.X, p.ZAxis.Y, p.ZAxis.Z},
	}}
	t.T = t.ApplyVector(p.Origin).MulScalar(-1)
	return t
}

// PlaneToWorld returns the transform taking local coordinates of p into
// global coordinates.
func PlaneToWorld(p Plane) Transform {
	return WorldToPlane(p).Inverse()
}

// RotationAbout returns the rotation of deg degrees about the axis
// direction through center (Rodrigues form).
func RotationAbout(deg float64, axis, center v3.Vec) Transform {
	u := axis.Normalize()
	a := deg * math.Pi / 180
	c, s := math.Cos(a), math.Sin(a)
	ic := 1 - c
	r := [3][3]float64{
		{c + u.X*u.X*ic, u.X*u.Y*ic - u.Z*s, u.X*u.Z*ic + u.Y*s},
		{u.Y*u.X*ic + u.Z*s, c + u.Y*u.Y*ic, u.Y*u.Z*ic - u.X*s},
		{u.Z*u.X*ic - u.Y*s, u.Z*u.Y*ic + u.X*s, c + u.Z*u.Z*ic},
	}
	t := Transform{R: r}
	t.T = center.Sub(t.ApplyVector(center))
	return t
}
