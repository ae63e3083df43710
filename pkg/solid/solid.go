// Package solid builds display solids for posts and joints on top of the
// sdfx SDF kernel and tessellates them into triangle meshes. Solids are
// only ever used for visualization; machining accuracy lives entirely in
// the toolpath planner.
package solid

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lapjoint/pkg/design"
	"github.com/chazu/lapjoint/pkg/geom"
)

// meshCells controls marching cubes tessellation resolution.
const meshCells = 200

// Mesh is a flat triangle mesh suitable for rendering: three floats per
// vertex and normal, three indices per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"` // entity label the mesh came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) / 3 }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// IsEmpty reports whether the mesh has no geometry.
func (m *Mesh) IsEmpty() bool { return len(m.Vertices) == 0 }

// PostSolid returns the stock solid for a post in global coordinates: its
// rectangular section extruded along the axis.
func PostSolid(p *design.Post) (sdf.SDF3, error) {
	length := p.Axis.Length()
	box, err := sdf.Box3D(v3.Vec{X: p.Width, Y: p.Height, Z: length}, 0)
	if err != nil {
		return nil, fmt.Errorf("post %s solid: %w", p.Label(), err)
	}
	// Box3D centers on the origin; shift so the profile sits at the axis
	// start, then carry it into the post frame.
	box = sdf.Transform3D(box, sdf.Translate3d(v3.Vec{Z: length / 2}))
	return place(box, geom.PlaneToWorld(p.Orientation)), nil
}

// LayoutPostSolid returns the post stock lying along +X in the laid-out
// frame given by its layout transform.
func LayoutPostSolid(p *design.Post, layout geom.Transform) (sdf.SDF3, error) {
	s, err := PostSolid(p)
	if err != nil {
		return nil, err
	}
	return place(s, layout), nil
}

// OverlapSolid returns the volume shared by the two posts of a joint, the
// material the joint's pockets remove between them.
func OverlapSolid(j *design.Joint) (sdf.SDF3, error) {
	a, err := PostSolid(j.Posts[0])
	if err != nil {
		return nil, err
	}
	b, err := PostSolid(j.Posts[1])
	if err != nil {
		return nil, err
	}
	return sdf.Intersect3D(a, b), nil
}

// CutPostSolid returns the post stock with each pocket's removal volume
// subtracted. The removal volumes are rectangular approximations aligned
// to the pocket orientation; the skewed face is exact only in the
// toolpath.
func CutPostSolid(p *design.Post) (sdf.SDF3, error) {
	s, err := PostSolid(p)
	if err != nil {
		return nil, err
	}
	for _, pocket := range p.Pockets {
		corners := pocket.Joint.Face.Corners()
		footprint := geom.BoundsOf(geom.WorldToPlane(pocket.Orientation).ApplyAll(corners[:]))
		size := footprint.Size()
		depth := pocket.ProfileBounds.Max.Z
		if depth <= 0 || size.X <= 0 || size.Y <= 0 {
			continue
		}
		cut, err := sdf.Box3D(v3.Vec{X: size.X, Y: size.Y, Z: depth}, 0)
		if err != nil {
			return nil, fmt.Errorf("pocket cut on %s: %w", p.Label(), err)
		}
		center := footprint.Center()
		cut = sdf.Transform3D(cut, sdf.Translate3d(v3.Vec{X: center.X, Y: center.Y, Z: depth / 2}))
		s = sdf.Difference3D(s, place(cut, geom.PlaneToWorld(pocket.Orientation)))
	}
	return s, nil
}

// BarSolid returns the bar insert solid for a bar-reinforced joint, or
// nil for other joint kinds.
func BarSolid(j *design.Joint) (sdf.SDF3, error) {
	if j.Bar == nil {
		return nil, nil
	}
	length := j.Face.UDomain.Length()
	box, err := sdf.Box3D(v3.Vec{X: length, Y: j.Bar.Width, Z: j.Bar.Height}, 0)
	if err != nil {
		return nil, fmt.Errorf("bar solid for %s: %w", j.Label(), err)
	}
	// The bar sits below the common face, its long side along the second
	// post.
	frame, ok := geom.PlaneFromFrame(j.Origin, j.Axis, j.Posts[1].Axis.UnitTangent())
	if !ok {
		return nil, fmt.Errorf("bar solid for %s: degenerate frame", j.Label())
	}
	box = sdf.Transform3D(box, sdf.Translate3d(v3.Vec{Z: -j.Bar.Height / 2}))
	return place(box, geom.PlaneToWorld(frame)), nil
}

// ScrewSolid returns a cylinder along one screw axis of a joint's bar.
func ScrewSolid(j *design.Joint, which int, radius float64) (sdf.SDF3, error) {
	if j.Bar == nil {
		return nil, nil
	}
	length := j.Bar.Height * 2
	cyl, err := sdf.Cylinder3D(length, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("screw solid for %s: %w", j.Label(), err)
	}
	frame, ok := geom.PlaneFromNormal(j.Bar.ScrewCenters[which], j.Axis)
	if !ok {
		return nil, fmt.Errorf("screw solid for %s: degenerate axis", j.Label())
	}
	return place(cyl, geom.PlaneToWorld(frame)), nil
}

// ToMesh tessellates a solid with marching cubes.
func ToMesh(name string, s sdf.SDF3) (*Mesh, error) {
	if s == nil {
		return &Mesh{Name: name}, nil
	}
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(meshCells))

	m := &Mesh{
		Name:     name,
		Vertices: make([]float32, 0, len(triangles)*9),
		Normals:  make([]float32, 0, len(triangles)*9),
		Indices:  make([]uint32, 0, len(triangles)*3),
	}
	for i, tri := range triangles {
		n := tri.Normal()
		nx, ny, nz := float32(n.X), float32(n.Y), float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Normals = append(m.Normals, nx, ny, nz)
			m.Indices = append(m.Indices, uint32(i*3+j))
		}
	}
	return m, nil
}

// place maps a solid through a rigid transform, decomposing the rotation
// into Z-Y-X Euler angles for the sdf transform stack.
func place(s sdf.SDF3, t geom.Transform) sdf.SDF3 {
	x, y, z := eulerZYX(t.R)
	m := sdf.Translate3d(t.T).
		Mul(sdf.RotateZ(z)).
		Mul(sdf.RotateY(y)).
		Mul(sdf.RotateX(x))
	return sdf.Transform3D(s, m)
}

// eulerZYX extracts angles (radians) such that Rz(z)*Ry(y)*Rx(x) equals r.
func eulerZYX(r [3][3]float64) (x, y, z float64) {
	sy := -r[2][0]
	if sy > 1 {
		sy = 1
	} else if sy < -1 {
		sy = -1
	}
	y = math.Asin(sy)
	if math.Abs(sy) > 1-1e-9 {
		// Gimbal lock: fold the X rotation into Z.
		x = 0
		z = math.Atan2(-r[0][1], r[1][1])
		return x, y, z
	}
	x = math.Atan2(r[2][1], r[2][2])
	z = math.Atan2(r[1][0], r[0][0])
	return x, y, z
}
