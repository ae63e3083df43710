package design

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lapjoint/pkg/config"
	"github.com/chazu/lapjoint/pkg/geom"
	"github.com/chazu/lapjoint/pkg/toolpath"
)

// breakthroughMargin is the minimum stock left between the bottom of a cut
// and the far side of the post.
const breakthroughMargin = 0.0625

// MarkHole is a drilled reference hole locating the screw axis: a point on
// the pocket face in face (u, v) parameters plus the z the drill bottoms
// out at, measured from the face point in the back-rotated frame.
type MarkHole struct {
	U, V   float64
	Bottom float64
}

// Pocket is one half of a joint, cut into a post. Geometry fields are set
// at construction; Face, Holes and Marks once the joint's common face is
// known; Program by the planner.
type Pocket struct {
	Index int // 0 or 1, position in the joint's pocket pair
	Post  *Post
	Joint *Joint
	Kind  Kind

	Origin v3.Vec // joint origin, center of the pocket face
	Normal v3.Vec // unit, toward the other post

	// Orientation sits at the origin with the normal toward the other
	// post and X along the post axis. ProfilePlane is the orientation
	// turned parallel to the post's end profile.
	Orientation  geom.Plane
	ProfilePlane geom.Plane

	ProfileBounds geom.Bounds // post end profile in orientation coords
	FarthestZ     float64     // far side of the post, orientation z

	// Rotation is the A-axis angle in degrees that brings this pocket
	// face-up on the rotary. GlobalToMill maps global coordinates into
	// the rotated frame the machine mills in.
	Rotation     float64
	GlobalToMill geom.Transform
	MillToGlobal geom.Transform

	Face  Face        // millable face: joint face extended for clearance
	Holes []geom.Line // screw axis center lines, global coords
	Marks []MarkHole

	Program *toolpath.Path
}

func newPocket(post *Post, index int, j *Joint, kind Kind) (*Pocket, error) {
	p := &Pocket{
		Index:  index,
		Post:   post,
		Joint:  j,
		Kind:   kind,
		Origin: j.Origin,
		Normal: j.Axis,
	}
	if index == 1 {
		p.Normal = p.Normal.MulScalar(-1)
	}

	orientation, ok := geom.PlaneFromFrame(p.Origin, p.Normal, post.Axis.UnitTangent())
	if !ok {
		return nil, &GeometryError{PostID: post.ID, JointID: j.ID, What: "cannot orient pocket", Value: 0}
	}
	p.Orientation = orientation
	p.ProfilePlane = orientation.Rotated(90, orientation.YAxis).WithOrigin(post.Origin)

	p.ProfileBounds = post.profileBoundsIn(orientation)
	// The profile box is flat along the axis; only the cross extents matter.
	if s := p.ProfileBounds.Size(); s.Y < geom.Epsilon || s.Z < geom.Epsilon {
		return nil, &GeometryError{PostID: post.ID, JointID: j.ID, What: "degenerate post profile at pocket", Value: 0}
	}
	p.FarthestZ = p.ProfileBounds.Min.Z

	p.Rotation = geom.VectorAngle(post.Orientation.XAxis, p.Normal, post.Orientation) + 180
	p.GlobalToMill = post.GlobalToSelf.Mul(
		geom.RotationAbout(-p.Rotation, post.Axis.UnitTangent(), post.Origin))
	p.MillToGlobal = p.GlobalToMill.Inverse()

	post.Pockets = append(post.Pockets, p)
	return p, nil
}

// Other returns the mating post on the far side of this pocket.
func (p *Pocket) Other() *Post {
	return p.Joint.Posts[1-p.Index]
}

// uvToMill converts a face (u, v) point offset by z along the normal into
// the rotated frame the machine mills in. extraA adds to the pocket's
// rotation, for operations cut from the far side of the post.
func (p *Pocket) uvToMill(u, v, z, extraA float64) v3.Vec {
	toMill := p.GlobalToMill
	if extraA != 0 {
		toMill = p.Post.GlobalToSelf.Mul(geom.RotationAbout(
			-(p.Rotation + extraA), p.Post.Axis.UnitTangent(), p.Post.Origin))
	}
	point := p.Face.PointAt(u, v).Add(p.Normal.MulScalar(z))
	return toMill.Apply(point)
}

// finish derives the millable face, screw holes and mark holes once the
// joint's common face has been built, then checks the cut depths fit.
func (p *Pocket) finish(cfg config.Config) error {
	face := p.Joint.Face
	if p.Index == 1 {
		face = face.Transpose()
	}
	// U overshoots so the endmill clears the post; V allows the reveal.
	face = face.ExtendU(cfg.Gcode.MillDiameter * 3)
	face = face.ExtendV(cfg.Pocket.Reveal)
	p.Face = face

	if err := p.createHoles(); err != nil {
		return err
	}
	if cfg.Pocket.MarkDatum != config.MarkNone {
		if err := p.createMarks(cfg); err != nil {
			return err
		}
	}
	return p.checkFit(cfg)
}

// createHoles finds the screw axis: a center line from the pocket face
// center depth, through the axis plane, to the far side of the post.
func (p *Pocket) createHoles() error {
	if p.ProfileBounds.Max.Z <= 0 || p.ProfileBounds.Min.Z >= 0 {
		return &GeometryError{
			PostID:  p.Post.ID,
			JointID: p.Joint.ID,
			What:    "pocket face lies outside the post",
			Value:   p.ProfileBounds.Min.Z,
		}
	}
	// In profile-plane coordinates the screw axis runs along +X (away
	// from the other post) from the origin depth at the post axis.
	local := geom.WorldToPlane(p.ProfilePlane).Apply(p.Origin)
	start := p.ProfilePlane.PointAt(local.X, 0, 0)
	length := -p.ProfileBounds.Min.Z
	p.Holes = []geom.Line{geom.LineFromRay(start, p.Normal.MulScalar(-1), length)}
	return nil
}

// createMarks places the drilled reference hole(s) for the screw axis.
// Datum 1 measures markDepth from the far post surface; datum 2 leaves
// markDepth of material above the pocket face.
func (p *Pocket) createMarks(cfg config.Config) error {
	length := p.Holes[0].Length()
	var mark float64
	switch cfg.Pocket.MarkDatum {
	case config.MarkPost:
		mark = length - cfg.Pocket.MarkDepth
	case config.MarkPocket:
		if length > cfg.Pocket.MarkDepth {
			mark = cfg.Pocket.MarkDepth
		} else {
			mark = length - 0.25
		}
	default:
		return nil
	}
	if mark <= 0 {
		return &FitError{
			JointID:   p.Joint.ID,
			Parameter: "markDepth",
			Value:     cfg.Pocket.MarkDepth,
			Detail:    "mark hole would break through the pocket face",
		}
	}

	u, v := p.Face.UV(p.Origin)
	if _, isBar := p.Kind.(BarReinforced); isBar {
		// The screws pin the bar: offset along the bar midline, which
		// runs along the second post.
		if p.Index == 0 {
			u -= cfg.Pocket.HoleOffset
		} else {
			v += cfg.Pocket.HoleOffset
		}
	}
	p.Marks = []MarkHole{{U: u, V: v, Bottom: mark}}
	return nil
}

// checkFit verifies the planned cuts stay inside the stock.
func (p *Pocket) checkFit(cfg config.Config) error {
	// Deepest face this pocket will be milled to, in orientation z.
	deepest := 0.0
	if bar, isBar := p.Kind.(BarReinforced); isBar && p.Index == 0 {
		deepest = -bar.Height
	}
	if deepest <= p.FarthestZ+breakthroughMargin {
		return &FitError{
			JointID:   p.Joint.ID,
			Parameter: "barHeight",
			Value:     math.Abs(deepest),
			Detail:    "cut would break through the far side of the post",
		}
	}

	// The clearance plane must sit above the rotated stock.
	top := p.uvToMill(p.Face.UDomain.Mid(), p.Face.VDomain.Mid(), p.ProfileBounds.Max.Z, 0)
	if cfg.Gcode.Clearance <= top.Z {
		return &FitError{
			JointID:   p.Joint.ID,
			Parameter: "clearance",
			Value:     cfg.Gcode.Clearance,
			Detail:    "clearance plane is below the top of the stock",
		}
	}
	return nil
}
