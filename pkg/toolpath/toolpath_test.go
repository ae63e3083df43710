package toolpath

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lapjoint/pkg/geom"
)

func TestRapidClearOrdering(t *testing.T) {
	var p Path
	p.Cut(Point{X: 1, Y: 1, Z: -0.5})
	p.RapidClear(1.6, Point{X: 5, Y: 2, Z: -0.25})

	if len(p.Moves) != 4 {
		t.Fatalf("expected 4 moves, got %d", len(p.Moves))
	}
	rise := p.Moves[1]
	if rise.Kind != KindRapid || rise.Target.Z != 1.6 {
		t.Errorf("first reposition move should rise to clearance: %+v", rise)
	}
	if rise.Target.X != 1 || rise.Target.Y != 1 {
		t.Errorf("rise must not move laterally: %+v", rise)
	}
	over := p.Moves[2]
	if over.Kind != KindRapid || over.Target.Z != 1.6 || over.Target.X != 5 || over.Target.Y != 2 {
		t.Errorf("traverse must happen at clearance height: %+v", over)
	}
	plunge := p.Moves[3]
	if plunge.Kind != KindPlunge || plunge.Feed != FeedApproach || plunge.Target.Z != -0.25 {
		t.Errorf("final move must plunge at approach feed: %+v", plunge)
	}
}

func TestRapidClearFromEmptyPath(t *testing.T) {
	var p Path
	p.RapidClear(2, Point{X: 1, Y: 1, Z: 0})
	// No prior position, so no initial rise move.
	if len(p.Moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(p.Moves))
	}
	if p.Moves[0].Target.Z != 2 {
		t.Errorf("traverse should run at clearance: %+v", p.Moves[0])
	}
}

func TestRepositionSplitsTraverseAndPlunge(t *testing.T) {
	var p Path
	p.Cut(Point{X: 1, Y: 1, Z: 0.5, A: 90})
	p.Reposition(Point{X: 3, Y: -2, Z: 0.25, A: 90})

	if len(p.Moves) != 3 {
		t.Fatalf("expected 3 moves, got %d", len(p.Moves))
	}
	over := p.Moves[1]
	if over.Kind != KindRapid || over.Target.Z != 0.5 {
		t.Errorf("traverse must keep the previous height: %+v", over)
	}
	if over.Target.X != 3 || over.Target.Y != -2 {
		t.Errorf("traverse must reach the target X/Y: %+v", over)
	}
	down := p.Moves[2]
	if down.Kind != KindPlunge || down.Feed != FeedApproach || down.Target.Z != 0.25 {
		t.Errorf("descent must feed at approach: %+v", down)
	}
}

func TestRepositionStraightDown(t *testing.T) {
	var p Path
	p.Cut(Point{X: 1, Y: 1, Z: 0.5})
	p.Reposition(Point{X: 1, Y: 1, Z: 0.25})

	// Aligned in X/Y: no traverse, just the feed down.
	if len(p.Moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(p.Moves))
	}
	if p.Moves[1].Kind != KindPlunge || p.Moves[1].Target.Z != 0.25 {
		t.Errorf("descent: %+v", p.Moves[1])
	}
}

func TestRepositionFromEmptyPath(t *testing.T) {
	var p Path
	p.Reposition(Point{X: 1, Y: 2, Z: 3})
	if len(p.Moves) != 1 || p.Moves[0].Kind != KindRapid {
		t.Fatalf("expected a single rapid, got %+v", p.Moves)
	}
}

func TestZExtents(t *testing.T) {
	var p Path
	p.Cut(Point{Z: -1})
	p.Rapid(Point{Z: 3})
	p.Cut(Point{Z: -2.5})
	if p.MaxZ() != 3 || p.MinZ() != -2.5 {
		t.Fatalf("extents: max %v min %v", p.MaxZ(), p.MinZ())
	}
	var empty Path
	if !math.IsInf(empty.MaxZ(), -1) || !math.IsInf(empty.MinZ(), 1) {
		t.Fatal("empty path extents should be infinite")
	}
}

func TestCheckFinite(t *testing.T) {
	var p Path
	p.Cut(Point{X: 1})
	p.Cut(Point{X: math.NaN()})
	if idx := p.CheckFinite(); idx != 1 {
		t.Fatalf("expected bad move at 1, got %d", idx)
	}
	var ok Path
	ok.Cut(Point{X: 1, Y: 2, Z: 3, A: 90})
	if idx := ok.CheckFinite(); idx != -1 {
		t.Fatalf("expected -1, got %d", idx)
	}
}

func TestTransformedPreservesRotation(t *testing.T) {
	var p Path
	p.Cut(Point{X: 1, A: 45})
	moved := p.Transformed(geom.Transform{R: geom.Identity().R, T: v3.Vec{Y: 10}})
	if moved.Moves[0].Target.Y != 10 || moved.Moves[0].Target.A != 45 {
		t.Fatalf("transform wrong: %+v", moved.Moves[0].Target)
	}
	// Original untouched.
	if p.Moves[0].Target.Y != 0 {
		t.Fatal("Transformed mutated the source path")
	}
}
