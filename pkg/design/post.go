package design

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lapjoint/pkg/geom"
)

// Post is a tenon-like structural member: an axis line with a rectangular
// cross-section profile. Posts are immutable once constructed; pockets are
// attached to them as joints are resolved.
type Post struct {
	ID          int
	Axis        geom.Line
	Origin      v3.Vec
	Width       float64
	Height      float64
	Orientation geom.Plane // normal along the axis, x axis setting the roll
	Profile     []v3.Vec   // closed rectangular end profile, global coords

	// Local frame: the post lying along +X with its axis start at the
	// origin, the frame the machine mills in before rotation.
	GlobalToSelf geom.Transform
	SelfToGlobal geom.Transform

	Pockets []*Pocket
}

// NewPost builds a post from an axis line and cross-section dimensions.
// roll, when non-nil, is a direction fixing the rotation of the profile
// about the axis; otherwise a horizontal roll is chosen.
func NewPost(id int, axis geom.Line, roll *v3.Vec, width, height float64) (*Post, error) {
	if width <= 0 {
		return nil, &GeometryError{PostID: id, JointID: -1, What: "post width must be positive", Value: width}
	}
	if height <= 0 {
		return nil, &GeometryError{PostID: id, JointID: -1, What: "post height must be positive", Value: height}
	}
	if axis.Length() < geom.Epsilon {
		return nil, &GeometryError{PostID: id, JointID: -1, What: "post axis has zero length", Value: axis.Length()}
	}

	p := &Post{
		ID:     id,
		Axis:   axis,
		Origin: axis.From,
		Width:  width,
		Height: height,
	}

	tangent := axis.UnitTangent()
	var ok bool
	if roll != nil {
		p.Orientation, ok = geom.PlaneFromFrame(p.Origin, tangent, *roll)
	} else {
		p.Orientation, ok = geom.PlaneFromFrame(p.Origin, tangent, defaultRoll(axis))
	}
	if !ok {
		return nil, &GeometryError{PostID: id, JointID: -1, What: "cannot orient post axis", Value: 0}
	}

	p.Profile = rectProfile(p.Orientation, width, height)

	// Posts are milled lying along +X: rotate the local frame 90 degrees
	// about Y so the axis (local Z) becomes X.
	rot90 := geom.RotationAbout(90, v3.Vec{Y: 1}, v3.Vec{})
	p.GlobalToSelf = rot90.Mul(geom.WorldToPlane(p.Orientation))
	p.SelfToGlobal = p.GlobalToSelf.Inverse()

	return p, nil
}

// defaultRoll picks a horizontal roll direction for the axis, falling back
// to an arbitrary perpendicular for vertical posts.
func defaultRoll(axis geom.Line) v3.Vec {
	plane, ok := geom.PlaneFromNormal(axis.From, axis.UnitTangent())
	if !ok {
		return v3.Vec{X: 1}
	}
	roll := v3.Vec{X: plane.XAxis.X, Y: plane.XAxis.Y}
	if roll.Length() < geom.Epsilon {
		return plane.YAxis
	}
	return roll
}

// rectProfile builds the closed rectangular end profile on the orientation
// plane, centered on the axis start.
func rectProfile(orientation geom.Plane, width, height float64) []v3.Vec {
	corners := [][2]float64{
		{width / 2, height / 2},
		{width / 2, -height / 2},
		{-width / 2, -height / 2},
		{-width / 2, height / 2},
	}
	pts := make([]v3.Vec, 0, 5)
	for _, c := range corners {
		pts = append(pts, orientation.PointAt(c[0], c[1], 0))
	}
	pts = append(pts, pts[0]) // close the loop
	return pts
}

// Label returns the post id with its type letter, e.g. "p3".
func (p *Post) Label() string {
	return fmt.Sprintf("p%d", p.ID)
}

// Connected reports whether any joint has claimed this post.
func (p *Post) Connected() bool {
	return len(p.Pockets) > 0
}

// profileBoundsIn returns the bounding box of the post profile in the
// local coordinates of the given plane.
func (p *Post) profileBoundsIn(plane geom.Plane) geom.Bounds {
	return geom.BoundsOf(geom.WorldToPlane(plane).ApplyAll(p.Profile))
}
