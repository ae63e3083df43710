package design

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lapjoint/pkg/config"
	"github.com/chazu/lapjoint/pkg/geom"
)

// intersectTol is the axis separation below which two posts are treated as
// actually intersecting.
const intersectTol = 1e-6

// BarInsert is the reinforcing strip of a bar-reinforced joint: the groove
// and bar the two pockets cut, plus the two screw-hole centers that pin it.
type BarInsert struct {
	Height     float64
	Width      float64
	Gap        float64
	HoleOffset float64
	// ScrewCenters are the two hole centers at +/- HoleOffset along the
	// bar midline, symmetric about the joint origin.
	ScrewCenters [2]v3.Vec
}

// Joint pairs one post with one pocket on each side: exactly two posts,
// two pockets, a shared axis normal to both pocket faces, and the sheared
// face common to both.
type Joint struct {
	ID      int
	Posts   [2]*Post
	Pockets [2]*Pocket

	Intersection [2]v3.Vec // closest points on the two post axes
	Separation   float64
	Intersecting bool
	Axis         v3.Vec // unit, from posts[0] toward posts[1]

	Orientation  geom.Plane
	Origin       v3.Vec
	SelfToGlobal geom.Transform

	Face       Face    // shared sheared pocket face, U along posts[1]
	Skew       float64 // radians between face edge directions
	SkewFactor float64 // 1/sin(skew): UV distance per real distance

	Bar *BarInsert // nil unless the bar-reinforced kind is selected
}

// NewJoint resolves the joint between two posts: computes the shared
// geometry, builds both pockets, and runs the fit checks.
func NewJoint(p0, p1 *Post, id int, cfg config.Config) (*Joint, error) {
	j := &Joint{ID: id, Posts: [2]*Post{p0, p1}}

	pa, pb := geom.ClosestPoints(p0.Axis, p1.Axis)
	j.Intersection = [2]v3.Vec{pa, pb}
	j.Separation = pb.Sub(pa).Length()

	if j.Separation <= intersectTol {
		j.Intersecting = true
		axis := p0.Axis.UnitTangent().Cross(p1.Axis.UnitTangent())
		if axis.Length() < geom.Epsilon {
			return nil, &GeometryError{PostID: -1, JointID: id, What: "post axes are parallel", Value: 0}
		}
		j.Axis = axis.Normalize()
	} else {
		j.Axis = pb.Sub(pa).Normalize()
	}

	orientation, ok := geom.PlaneFromFrame(pa, j.Axis, p0.Axis.UnitTangent())
	if !ok {
		return nil, &GeometryError{PostID: -1, JointID: id, What: "cannot orient joint plane", Value: 0}
	}
	j.Orientation = orientation

	// Origin: midway between the posts' facing surfaces along the axis.
	b0 := p0.profileBoundsIn(j.Orientation)
	b1 := p1.profileBoundsIn(j.Orientation)
	j.Origin = j.Orientation.PointAt(0, 0, (b0.Max.Z+b1.Min.Z)/2)
	j.Orientation = j.Orientation.WithOrigin(j.Origin)
	j.SelfToGlobal = geom.PlaneToWorld(j.Orientation)

	kind := kindFromConfig(cfg.Pocket)
	for i, post := range [2]*Post{p0, p1} {
		pocket, err := newPocket(post, i, j, kind)
		if err != nil {
			return nil, err
		}
		j.Pockets[i] = pocket
	}

	if err := j.buildCommonFace(); err != nil {
		return nil, err
	}

	if bar, isBar := kind.(BarReinforced); isBar {
		mid := p1.Axis.UnitTangent().MulScalar(bar.HoleOffset)
		j.Bar = &BarInsert{
			Height:     bar.Height,
			Width:      bar.Width,
			Gap:        bar.Gap,
			HoleOffset: bar.HoleOffset,
			ScrewCenters: [2]v3.Vec{
				j.Origin.Add(mid),
				j.Origin.Sub(mid),
			},
		}
	}

	for _, pocket := range j.Pockets {
		if err := pocket.finish(cfg); err != nil {
			return nil, err
		}
	}

	return j, nil
}

// Label returns the joint id with its type letter, e.g. "j0".
func (j *Joint) Label() string {
	return fmt.Sprintf("j%d", j.ID)
}

// buildCommonFace constructs the sheared surface shared by both pockets
// from the intersections of the posts' edge lines in the joint plane.
func (j *Joint) buildCommonFace() error {
	toJoint := geom.WorldToPlane(j.Orientation)

	// Two edge lines per pocket, along its post at +/- half width, taken
	// into joint-local coordinates and flattened onto the joint plane.
	var grid [2][2]geom.Line
	for i, p := range j.Pockets {
		pocketToJoint := toJoint.Mul(geom.PlaneToWorld(p.Orientation))
		width := p.ProfileBounds.Size().Y
		for k, y := range [2]float64{-width / 2, width / 2} {
			l := geom.Line{
				From: pocketToJoint.Apply(v3.Vec{Y: y}),
				To:   pocketToJoint.Apply(v3.Vec{X: 1, Y: y}),
			}
			l.From.Z = 0
			l.To.Z = 0
			grid[i][k] = l
		}
	}

	// Corner points: intersections of post 0's edges with post 1's edges.
	pairs := [4][2]int{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	var corners [4]v3.Vec
	for i, pr := range pairs {
		a, b := grid[0][pr[0]], grid[1][pr[1]]
		pt, ok := intersectInPlane(a, b)
		if !ok {
			return &GeometryError{PostID: -1, JointID: j.ID, What: "post edges do not cross in joint plane", Value: 0}
		}
		corners[i] = j.SelfToGlobal.Apply(pt)
	}

	edgeU := corners[1].Sub(corners[0])
	edgeV := corners[3].Sub(corners[0])
	j.Skew = math.Acos(clamp(edgeU.Normalize().Dot(edgeV.Normalize()), -1, 1))
	sin := math.Sin(j.Skew)
	if sin < geom.Epsilon {
		return &GeometryError{PostID: -1, JointID: j.ID, What: "degenerate skew angle", Value: j.Skew}
	}
	j.SkewFactor = 1 / sin

	// U edge c0->c1 runs along post 1; V edge c0->c3 along post 0.
	face, ok := faceFromCorners(corners, j.Axis)
	if !ok {
		return &GeometryError{PostID: -1, JointID: j.ID, What: "degenerate common face", Value: 0}
	}
	j.Face = face
	return nil
}

// intersectInPlane intersects two lines lying in the z=0 plane.
func intersectInPlane(a, b geom.Line) (v3.Vec, bool) {
	da, db := a.Direction(), b.Direction()
	denom := da.X*db.Y - da.Y*db.X
	if math.Abs(denom) < geom.Epsilon {
		return v3.Vec{}, false
	}
	w := b.From.Sub(a.From)
	t := (w.X*db.Y - w.Y*db.X) / denom
	return a.PointAt(t), true
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
