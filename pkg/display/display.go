// Package display derives renderable artifacts from resolved geometry.
// The selection decides which artifacts each entity exposes; nothing here
// feeds back into the fabrication pipeline, so a renderer can consume the
// scene or ignore it entirely.
package display

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lapjoint/pkg/config"
	"github.com/chazu/lapjoint/pkg/design"
	"github.com/chazu/lapjoint/pkg/geom"
	"github.com/chazu/lapjoint/pkg/solid"
)

// Label is a text marker anchored at a point.
type Label struct {
	Text string
	At   v3.Vec
}

// Point is a named display point.
type Point struct {
	Name string
	At   v3.Vec
}

// Polyline is a named open or closed point strip.
type Polyline struct {
	Name   string
	Points []v3.Vec
}

// Scene collects every artifact selected for display.
type Scene struct {
	Labels []Label
	Points []Point
	Lines  []Polyline
	Meshes []*solid.Mesh
}

func (s *Scene) line(name string, pts ...v3.Vec) {
	s.Lines = append(s.Lines, Polyline{Name: name, Points: pts})
}

// planeQuad returns a small square on the plane, centered on its origin.
func planeQuad(p geom.Plane) []v3.Vec {
	return []v3.Vec{
		p.PointAt(-2, -2, 0), p.PointAt(2, -2, 0),
		p.PointAt(2, 2, 0), p.PointAt(-2, 2, 0),
		p.PointAt(-2, -2, 0),
	}
}

// Post adds the selected artifacts for one post.
func (s *Scene) Post(p *design.Post, set config.ArtifactSet) error {
	if set.Has(config.ArtifactLabel) {
		s.Labels = append(s.Labels, Label{Text: p.Label(), At: p.Origin})
	}
	if set.Has(config.ArtifactOrientation) {
		s.line(p.Label()+".orientation", planeQuad(p.Orientation)...)
	}
	if set.Has(config.ArtifactProfile) {
		s.line(p.Label()+".profile", p.Profile...)
	}
	if set.Has(config.ArtifactAxis) {
		s.line(p.Label()+".axis", p.Axis.From, p.Axis.To)
	}
	if set.Has(config.ArtifactObject) {
		sld, err := solid.PostSolid(p)
		if err != nil {
			return err
		}
		mesh, err := solid.ToMesh(p.Label(), sld)
		if err != nil {
			return err
		}
		s.Meshes = append(s.Meshes, mesh)
	}
	return nil
}

// Pocket adds the selected artifacts for one pocket. Toolpath polylines
// are mapped from the mill frame back to global coordinates, split where
// the rotary angle changes.
func (s *Scene) Pocket(p *design.Pocket, set config.ArtifactSet) {
	name := p.Post.Label() + "." + p.Joint.Label()

	if set.Has(config.ArtifactPostLabel) {
		other := p.Joint.Posts[1-p.Index]
		s.Labels = append(s.Labels, Label{Text: other.Label(), At: p.Origin})
	}
	if set.Has(config.ArtifactJointLabel) {
		s.Labels = append(s.Labels, Label{Text: p.Joint.Label(), At: p.Origin})
	}
	if set.Has(config.ArtifactOrientation) {
		s.line(name+".orientation", planeQuad(p.Orientation)...)
	}
	if set.Has(config.ArtifactBounds) {
		b := p.ProfileBounds
		quad := []v3.Vec{
			p.Orientation.PointAt(b.Min.X, b.Min.Y, b.Min.Z),
			p.Orientation.PointAt(b.Max.X, b.Min.Y, b.Min.Z),
			p.Orientation.PointAt(b.Max.X, b.Max.Y, b.Max.Z),
			p.Orientation.PointAt(b.Min.X, b.Max.Y, b.Max.Z),
			p.Orientation.PointAt(b.Min.X, b.Min.Y, b.Min.Z),
		}
		s.line(name+".bounds", quad...)
	}
	if set.Has(config.ArtifactCenter) {
		s.Points = append(s.Points, Point{Name: name + ".center", At: p.Origin})
	}
	if set.Has(config.ArtifactFace) {
		c := p.Face.Corners()
		s.line(name+".face", c[0], c[1], c[2], c[3], c[0])
	}
	if set.Has(config.ArtifactFarthest) {
		far := p.Orientation.Translated(p.Orientation.ZAxis.MulScalar(p.FarthestZ))
		s.line(name+".farthest", planeQuad(far)...)
	}
	if set.Has(config.ArtifactHoles) {
		for _, h := range p.Holes {
			s.line(name+".hole", h.From, h.To)
		}
	}
	if set.Has(config.ArtifactToolpath) && p.Program != nil {
		for _, pl := range toolpathPolylines(p, nil) {
			pl.Name = name + ".toolpath"
			s.Lines = append(s.Lines, pl)
		}
	}
	if set.Has(config.ArtifactAxis) {
		s.line(name+".axis", p.Origin, p.Origin.Add(p.Normal))
	}
}

// Joint adds the selected artifacts for one joint.
func (s *Scene) Joint(j *design.Joint, set config.ArtifactSet) {
	if set.Has(config.ArtifactLabel) {
		s.Labels = append(s.Labels, Label{Text: j.Label(), At: j.Origin})
	}
	if set.Has(config.ArtifactAxis) {
		s.line(j.Label()+".axis", j.Origin, j.Origin.Add(j.Axis))
	}
	if set.Has(config.ArtifactOrigin) {
		s.Points = append(s.Points, Point{Name: j.Label() + ".origin", At: j.Origin})
	}
	if set.Has(config.ArtifactFace) {
		c := j.Face.Corners()
		s.line(j.Label()+".face", c[0], c[1], c[2], c[3], c[0])
	}
}

// Layout lays every connected post flat along +X, side by side, and adds
// the layout-mode artifacts for each post and its pockets.
func (s *Scene) Layout(st *design.Structure, cfg config.Config) error {
	layouts := st.LayoutTransforms(cfg)
	for _, id := range st.PostIDs() {
		post := st.Posts[id]
		layout, ok := layouts[id]
		if !ok {
			continue
		}

		set := cfg.Selection.PostLayout
		if set.Has(config.ArtifactLabel) {
			s.Labels = append(s.Labels, Label{Text: post.Label(), At: layout.Apply(post.Origin)})
		}
		if set.Has(config.ArtifactProfile) {
			s.line(post.Label()+".profile", layout.ApplyAll(post.Profile)...)
		}
		if set.Has(config.ArtifactAxis) {
			s.line(post.Label()+".axis", layout.Apply(post.Axis.From), layout.Apply(post.Axis.To))
		}
		if set.Has(config.ArtifactObject) {
			sld, err := solid.LayoutPostSolid(post, layout)
			if err != nil {
				return err
			}
			mesh, err := solid.ToMesh(post.Label(), sld)
			if err != nil {
				return err
			}
			s.Meshes = append(s.Meshes, mesh)
		}

		pset := cfg.Selection.PocketLayout
		for _, pocket := range post.Pockets {
			name := post.Label() + "." + pocket.Joint.Label()
			if pset.Has(config.ArtifactHoles) {
				for _, h := range pocket.Holes {
					s.line(name+".hole", layout.Apply(h.From), layout.Apply(h.To))
				}
			}
			if pset.Has(config.ArtifactToolpath) && pocket.Program != nil {
				for _, pl := range toolpathPolylines(pocket, &layout) {
					pl.Name = name + ".toolpath"
					s.Lines = append(s.Lines, pl)
				}
			}
		}
	}
	return nil
}

// toolpathPolylines converts a pocket's program into display polylines in
// global coordinates, starting a new polyline wherever the rotary angle
// changes. extra, when non-nil, is applied after the mill-to-global
// mapping (used for layout offsets, where the post frame itself moves).
func toolpathPolylines(p *design.Pocket, extra *geom.Transform) []Polyline {
	var out []Polyline
	var cur []v3.Vec
	curA := 0.0
	started := false

	flush := func() {
		if len(cur) > 1 {
			out = append(out, Polyline{Points: cur})
		}
		cur = nil
	}

	for _, m := range p.Program.Moves {
		if started && m.Target.A != curA {
			flush()
		}
		curA = m.Target.A
		started = true
		q := millToGlobal(p, curA).Apply(m.Target.Vec())
		if extra != nil {
			q = extra.Apply(q)
		}
		cur = append(cur, q)
	}
	flush()
	return out
}

// millToGlobal returns the inverse of the mill transform at rotary angle a.
func millToGlobal(p *design.Pocket, a float64) geom.Transform {
	if a == p.Rotation {
		return p.MillToGlobal
	}
	return p.Post.GlobalToSelf.Mul(
		geom.RotationAbout(-a, p.Post.Axis.UnitTangent(), p.Post.Origin)).Inverse()
}
