package design

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lapjoint/pkg/config"
	"github.com/chazu/lapjoint/pkg/geom"
	"github.com/chazu/lapjoint/pkg/toolpath"
)

// override optionally pins one or both ends of a cutting range; nil ends
// fall back to the range derived from the post section.
type override struct {
	Min, Max *float64
}

// Plan builds the milling program for every pocket of the joint. Planning
// is a pure function of the resolved geometry: calling it again replaces
// each pocket's program with an identical one.
func (j *Joint) Plan(cfg config.Config) error {
	for _, p := range j.Pockets {
		if err := p.plan(cfg); err != nil {
			return err
		}
	}
	return nil
}

// plan creates the move sequence that mills this pocket, in the rotated
// frame of its post.
func (p *Pocket) plan(cfg config.Config) error {
	path := &toolpath.Path{}
	startZ := p.ProfileBounds.Max.Z

	switch kind := p.Kind.(type) {
	case BarReinforced:
		if err := p.planBar(path, startZ, kind, cfg); err != nil {
			return err
		}
	default:
		// Mill straight down to the pocket face.
		if err := p.blockPath(path, startZ, 0, override{}, nil, false, 1, true, cfg); err != nil {
			return err
		}
	}

	for _, mark := range p.Marks {
		p.markPath(path, mark, cfg)
	}

	p.Program = path
	return nil
}

// planBar mills the bar variant: the female side gets a groove across its
// post below the pocket face, the male side keeps a raised bar along its
// own axis with a finished edge.
func (p *Pocket) planBar(path *toolpath.Path, startZ float64, kind BarReinforced, cfg config.Config) error {
	// Rounding the skew factor keeps mating offsets identical across the
	// two posts when their angles differ only by float noise.
	skew := math.Round(p.Joint.SkewFactor*1e5) / 1e5
	u0, v0 := p.Face.UV(p.Origin)

	if p.Index == 0 {
		if err := p.blockPath(path, startZ, 0, override{}, nil, false, 1, true, cfg); err != nil {
			return err
		}
		offset := (kind.Width/2 + kind.Gap) * skew
		groove := geom.Interval{Min: v0 - offset, Max: v0 + offset}
		return p.blockPath(path, 0, -kind.Height, override{}, &groove, false, 1, false, cfg)
	}

	if err := p.blockPath(path, startZ, kind.Height, override{}, nil, false, 1, true, cfg); err != nil {
		return err
	}
	offset := kind.Width / 2 * skew
	low, high := u0-offset, u0+offset
	if err := p.blockPath(path, kind.Height, 0, override{Max: &low}, nil, true, 0, true, cfg); err != nil {
		return err
	}
	return p.blockPath(path, kind.Height, 0, override{Min: &high}, nil, true, 0, true, cfg)
}

// blockPath mills the face region from startZ down to endZ in stepped
// passes. uEnds pins the lateral range, vEnds overrides the full face V
// range. finish adds an edge pass along the two switchback-ridged sides;
// dir selects whether long moves run along U (1) or V (0). clear routes
// the entry rapid through the clearance plane.
func (p *Pocket) blockPath(path *toolpath.Path, startZ, endZ float64, uEnds override, vEnds *geom.Interval, finish bool, dir int, clear bool, cfg config.Config) error {
	step := cfg.Gcode.StepDown * cfg.Gcode.MillDiameter
	currentZ := math.Max(startZ-step, endZ)

	end := [2]bool{}
	first := true
	for {
		corner, pts, err := p.facePath(currentZ, end, uEnds, vEnds, dir, cfg)
		if err != nil {
			return err
		}
		end = corner

		entry := toolpath.PointFrom(pts[0], p.Rotation)
		if first && clear {
			path.RapidClear(cfg.Gcode.Clearance, entry)
		} else {
			path.Reposition(entry)
		}
		first = false
		for _, q := range pts[1:] {
			path.Cut(toolpath.PointFrom(q, p.Rotation))
		}

		if currentZ <= endZ {
			break
		}
		currentZ -= step
		if currentZ < endZ {
			currentZ = endZ
		}
	}

	if finish {
		uRange, vRange := p.faceRanges(currentZ, uEnds, vEnds, cfg)
		edge := [4][2]float64{
			{uRange.Min, vRange.Min},
			{uRange.Max, vRange.Min},
			{uRange.Max, vRange.Max},
			{uRange.Min, vRange.Max},
		}
		// The final switchback corner picks which two edges carry ridges.
		sign := -1.0
		if end[1] {
			sign = 1
		}
		uTerm := 0.5
		if end[0] {
			uTerm = 1.5
		}
		start := int(sign*uTerm + 1.5)
		for i := 0; i < 3; i++ {
			c := edge[(start+i)%4]
			q := p.uvToMill(c[0], c[1], currentZ, 0)
			path.Cut(toolpath.PointFrom(q, p.Rotation))
		}
	}
	return nil
}

// facePath cuts one switchback pass over the face at height d, starting
// from the given corner. It returns the corner the pass ends in and the
// mill-frame points, first point included (the caller turns it into the
// entry rapid).
func (p *Pocket) facePath(d float64, start [2]bool, uEnds override, vEnds *geom.Interval, dir int, cfg config.Config) ([2]bool, []v3.Vec, error) {
	uvStep := cfg.Gcode.StepOver * cfg.Gcode.MillDiameter * p.Joint.SkewFactor
	uRange, vRange := p.faceRanges(d, uEnds, vEnds, cfg)

	// Iteration bound: one pass per step across the range, plus slack for
	// the entry and closing passes.
	maxPasses := int((uRange.Length()+vRange.Length())/uvStep) + 4

	pick := func(iv geom.Interval, max bool) float64 {
		if max {
			return iv.Max
		}
		return iv.Min
	}
	cursor := v3.Vec{X: pick(uRange, start[0]), Y: pick(vRange, start[1]), Z: d}
	uv := []v3.Vec{cursor}

	var endU, endV bool
	if dir == 1 {
		// Long moves along U, stepping over in V.
		uDir := !start[0]
		vSign := 1.0
		if start[1] {
			vSign = -1
		}
		for n := 0; vRange.Contains(cursor.Y); n++ {
			if n > maxPasses {
				return start, nil, &GeometryError{
					PostID:  p.Post.ID,
					JointID: p.Joint.ID,
					What:    "switchback pass bound exceeded",
					Value:   float64(maxPasses),
				}
			}
			cursor.X = pick(uRange, uDir)
			uv = append(uv, cursor)
			cursor.Y += vSign * uvStep
			uv = append(uv, cursor)
			uDir = !uDir
		}
		// Pull the overshot step back to the face edge and square off.
		uv[len(uv)-1].Y = pick(vRange, !start[1])
		cursor = uv[len(uv)-1]
		cursor.X = pick(uRange, uDir)
		uv = append(uv, cursor)
		endU, endV = uDir, vSign > 0
	} else {
		// Long moves along V, stepping over in U.
		vDir := !start[1]
		uSign := 1.0
		if start[0] {
			uSign = -1
		}
		for n := 0; uRange.Contains(cursor.X); n++ {
			if n > maxPasses {
				return start, nil, &GeometryError{
					PostID:  p.Post.ID,
					JointID: p.Joint.ID,
					What:    "switchback pass bound exceeded",
					Value:   float64(maxPasses),
				}
			}
			cursor.Y = pick(vRange, vDir)
			uv = append(uv, cursor)
			cursor.X += uSign * uvStep
			uv = append(uv, cursor)
			vDir = !vDir
		}
		uv[len(uv)-1].X = pick(uRange, !start[0])
		cursor = uv[len(uv)-1]
		cursor.Y = pick(vRange, vDir)
		uv = append(uv, cursor)
		endU, endV = uSign > 0, vDir
	}

	pts := make([]v3.Vec, len(uv))
	for i, q := range uv {
		pts[i] = p.uvToMill(q.X, q.Y, q.Z, 0)
	}
	return [2]bool{endU, endV}, pts, nil
}

// faceRanges computes the cutting ranges at height d: the lateral range
// follows the post section width plus endmill clearance, shrunk by the
// skew-corrected tool radius so the path tracks the tool center.
func (p *Pocket) faceRanges(d float64, uEnds override, vEnds *geom.Interval, cfg config.Config) (geom.Interval, geom.Interval) {
	section := p.sectionBounds(d)
	margin := 1.5 * cfg.Gcode.MillDiameter

	uOf := func(y float64) float64 {
		u, _ := p.Face.UV(p.Orientation.PointAt(0, y, 0))
		return u
	}
	uRange := geom.Interval{
		Min: uOf(section.Min.Y - margin),
		Max: uOf(section.Max.Y + margin),
	}
	if uRange.Min > uRange.Max {
		uRange.Min, uRange.Max = uRange.Max, uRange.Min
	}
	if uEnds.Min != nil {
		uRange.Min = *uEnds.Min
	}
	if uEnds.Max != nil {
		uRange.Max = *uEnds.Max
	}

	vRange := p.Face.VDomain
	if vEnds != nil {
		vRange = *vEnds
	}

	toolR := cfg.Gcode.MillDiameter * p.Joint.SkewFactor / 2
	return uRange.Shrink(toolR), vRange.Shrink(toolR)
}

// sectionBounds returns the bounds of the post profile clipped to the
// part at least d above the pocket face, in orientation coordinates.
func (p *Pocket) sectionBounds(d float64) geom.Bounds {
	local := geom.WorldToPlane(p.Orientation).ApplyAll(p.Post.Profile)
	bounds := geom.EmptyBounds()
	for i := 0; i < len(local)-1; i++ {
		a, b := local[i], local[i+1]
		if a.Z < d && b.Z < d {
			continue
		}
		// Clip the segment to the halfspace z >= d.
		if a.Z < d {
			a = clipToZ(a, b, d)
		} else if b.Z < d {
			b = clipToZ(b, a, d)
		}
		bounds = bounds.Extend(a).Extend(b)
	}
	if bounds.IsEmpty() {
		// Nothing above the plane; fall back to the full profile.
		return p.ProfileBounds
	}
	return bounds
}

// clipToZ returns the point on segment below-above where it crosses z.
func clipToZ(below, above v3.Vec, z float64) v3.Vec {
	t := (z - below.Z) / (above.Z - below.Z)
	return below.Add(above.Sub(below).MulScalar(t))
}

// markPath drills the reference hole for a screw axis from the far side
// of the post: rotate 180 degrees off the pocket, rapid over the hole,
// plunge at the approach feedrate, retract to clearance.
func (p *Pocket) markPath(path *toolpath.Path, mark MarkHole, cfg config.Config) {
	center := p.uvToMill(mark.U, mark.V, 0, 180)
	a := p.Rotation - 180
	top := toolpath.Point{X: center.X, Y: center.Y, Z: cfg.Gcode.Clearance, A: a}
	bottom := toolpath.Point{X: center.X, Y: center.Y, Z: center.Z + mark.Bottom, A: a}

	if n := len(path.Moves); n > 0 {
		last := path.Moves[n-1].Target
		path.Rapid(toolpath.Point{X: last.X, Y: last.Y, Z: cfg.Gcode.Clearance, A: last.A})
	}
	path.Rapid(top)
	path.Drill(bottom)
	path.Rapid(top)
}
