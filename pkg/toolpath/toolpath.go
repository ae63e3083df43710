// Package toolpath defines the ordered tool-center move sequences produced
// by the planner and consumed by the G-code emitter. A Path is plain data:
// planning regenerates it from scratch on every call and nothing here keeps
// cursor state.
package toolpath

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lapjoint/pkg/geom"
)

// Kind classifies a single tool move.
type Kind int

const (
	KindRapid  Kind = iota // traverse above or between material
	KindPlunge             // vertical entry into material
	KindCut                // lateral cutting move
	KindDrill              // drill cycle plunge
)

func (k Kind) String() string {
	switch k {
	case KindRapid:
		return "rapid"
	case KindPlunge:
		return "plunge"
	case KindCut:
		return "cut"
	case KindDrill:
		return "drill"
	default:
		return "unknown"
	}
}

// Feed classifies the feedrate a move runs at.
type Feed int

const (
	FeedRapid    Feed = iota // machine rapid, no F word
	FeedCut                  // full configured feedrate
	FeedApproach             // feedrate * approach fraction
)

// Point is a 4D machine target: X/Y/Z position plus A rotation in degrees
// about the rotary axis.
type Point struct {
	X, Y, Z float64
	A       float64
}

// PointFrom builds a Point from a position and rotation.
func PointFrom(p v3.Vec, a float64) Point {
	return Point{X: p.X, Y: p.Y, Z: p.Z, A: a}
}

// Vec returns the positional part of the point.
func (p Point) Vec() v3.Vec {
	return v3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// Finite reports whether all coordinates are finite numbers.
func (p Point) Finite() bool {
	for _, c := range []float64{p.X, p.Y, p.Z, p.A} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Move is one ordered step in a toolpath.
type Move struct {
	Kind   Kind
	Target Point
	Feed   Feed
}

// Path is an ordered move sequence for one pocket or one program.
type Path struct {
	Moves []Move
}

// Rapid appends a rapid traverse to the target.
func (p *Path) Rapid(t Point) {
	p.Moves = append(p.Moves, Move{Kind: KindRapid, Target: t, Feed: FeedRapid})
}

// Plunge appends a vertical entry at the approach feedrate.
func (p *Path) Plunge(t Point) {
	p.Moves = append(p.Moves, Move{Kind: KindPlunge, Target: t, Feed: FeedApproach})
}

// Cut appends a lateral cutting move at the full feedrate.
func (p *Path) Cut(t Point) {
	p.Moves = append(p.Moves, Move{Kind: KindCut, Target: t, Feed: FeedCut})
}

// Drill appends a drill-cycle plunge at the approach feedrate.
func (p *Path) Drill(t Point) {
	p.Moves = append(p.Moves, Move{Kind: KindDrill, Target: t, Feed: FeedApproach})
}

// RapidClear appends the mandatory three-phase reposition: rise to the
// clearance plane, traverse in X/Y (carrying any rotation), then plunge to
// the target Z. The rise-first ordering is what guarantees the cutter
// clears uncut and already-milled material.
func (p *Path) RapidClear(clearance float64, t Point) {
	if n := len(p.Moves); n > 0 {
		last := p.Moves[n-1].Target
		p.Rapid(Point{X: last.X, Y: last.Y, Z: clearance, A: last.A})
	}
	p.Rapid(Point{X: t.X, Y: t.Y, Z: clearance, A: t.A})
	p.Plunge(t)
}

// Reposition appends the in-stock move between passes: the X/Y traverse
// runs at the height of the previous move, then the tool feeds to the
// target Z at the approach feedrate. A single diagonal rapid could drag
// the cutter through uncut stock below the milled surface.
func (p *Path) Reposition(t Point) {
	n := len(p.Moves)
	if n == 0 {
		p.Rapid(t)
		return
	}
	last := p.Moves[n-1].Target
	if t.X != last.X || t.Y != last.Y || t.A != last.A {
		p.Rapid(Point{X: t.X, Y: t.Y, Z: last.Z, A: t.A})
	}
	if t.Z != last.Z {
		p.Plunge(t)
	}
}

// Extend appends all moves of other.
func (p *Path) Extend(other *Path) {
	p.Moves = append(p.Moves, other.Moves...)
}

// MaxZ returns the highest Z coordinate in the path, or -Inf for an empty
// path.
func (p *Path) MaxZ() float64 {
	max := math.Inf(-1)
	for _, m := range p.Moves {
		if m.Target.Z > max {
			max = m.Target.Z
		}
	}
	return max
}

// MinZ returns the lowest Z coordinate in the path, or +Inf for an empty
// path.
func (p *Path) MinZ() float64 {
	min := math.Inf(1)
	for _, m := range p.Moves {
		if m.Target.Z < min {
			min = m.Target.Z
		}
	}
	return min
}

// CheckFinite returns the index of the first non-finite target, or -1.
func (p *Path) CheckFinite() int {
	for i, m := range p.Moves {
		if !m.Target.Finite() {
			return i
		}
	}
	return -1
}

// Transformed returns a copy of the path with positions mapped through t.
// Rotations are preserved; this is for laying out display polylines, not
// for machining.
func (p *Path) Transformed(t geom.Transform) *Path {
	out := &Path{Moves: make([]Move, len(p.Moves))}
	for i, m := range p.Moves {
		q := t.Apply(m.Target.Vec())
		m.Target = Point{X: q.X, Y: q.Y, Z: q.Z, A: m.Target.A}
		out.Moves[i] = m
	}
	return out
}
