package design

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lapjoint/pkg/config"
	"github.com/chazu/lapjoint/pkg/geom"
	"github.com/chazu/lapjoint/pkg/toolpath"
)

const tol = 1e-9

func approx(t *testing.T, got, want float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s: got %v, want %v", msg, got, want)
	}
}

func approxVec(t *testing.T, got, want v3.Vec, msg string) {
	t.Helper()
	if got.Sub(want).Length() > 1e-9 {
		t.Fatalf("%s: got %v, want %v", msg, got, want)
	}
}

// testConfig shrinks the stock so the default clearance scenarios stay
// above it.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.Main.PostWidth = 1
	cfg.Gcode.Clearance = 1.6
	return cfg
}

// orthoPosts builds a vertical post and a horizontal post crossing it at
// a quarter-inch skew gap.
func orthoPosts(t *testing.T, cfg config.Config) (*Post, *Post) {
	t.Helper()
	side := cfg.Main.PostWidth * cfg.Main.GlobalScale
	p0, err := NewPost(0, geom.Line{From: v3.Vec{Z: -5}, To: v3.Vec{Z: 5}}, nil, side, side)
	if err != nil {
		t.Fatalf("post 0: %v", err)
	}
	p1, err := NewPost(1, geom.Line{From: v3.Vec{X: 0.25, Y: -5}, To: v3.Vec{X: 0.25, Y: 5}}, nil, side, side)
	if err != nil {
		t.Fatalf("post 1: %v", err)
	}
	return p0, p1
}

func orthoJoint(t *testing.T, cfg config.Config) *Joint {
	t.Helper()
	p0, p1 := orthoPosts(t, cfg)
	j, err := NewJoint(p0, p1, 0, cfg)
	if err != nil {
		t.Fatalf("NewJoint: %v", err)
	}
	return j
}

func TestNewPostFrames(t *testing.T) {
	axis := geom.Line{From: v3.Vec{X: 1, Y: 2, Z: 3}, To: v3.Vec{X: 1, Y: 2, Z: 13}}
	p, err := NewPost(7, axis, nil, 1.5, 2.5)
	if err != nil {
		t.Fatalf("NewPost: %v", err)
	}
	if p.Label() != "p7" {
		t.Fatalf("label: got %q", p.Label())
	}
	if len(p.Profile) != 5 {
		t.Fatalf("profile: got %d points, want 5 (closed)", len(p.Profile))
	}
	approxVec(t, p.Profile[0], p.Profile[4], "profile closure")

	// The mill frame lays the post along +X with its origin at the axis start.
	approxVec(t, p.GlobalToSelf.Apply(axis.From), v3.Vec{}, "axis start")
	end := p.GlobalToSelf.Apply(axis.To)
	approxVec(t, end, v3.Vec{X: axis.Length()}, "axis direction")

	// Round trip.
	q := v3.Vec{X: 4, Y: -2, Z: 9}
	approxVec(t, p.SelfToGlobal.Apply(p.GlobalToSelf.Apply(q)), q, "self/global round trip")
}

func TestNewPostRejectsDegenerate(t *testing.T) {
	axis := geom.Line{From: v3.Vec{}, To: v3.Vec{Z: 10}}
	var gerr *GeometryError

	if _, err := NewPost(0, axis, nil, 0, 1); !errors.As(err, &gerr) {
		t.Fatalf("zero width: got %v, want GeometryError", err)
	}
	if _, err := NewPost(0, axis, nil, 1, -2); !errors.As(err, &gerr) {
		t.Fatalf("negative height: got %v, want GeometryError", err)
	}
	if _, err := NewPost(0, geom.Line{}, nil, 1, 1); !errors.As(err, &gerr) {
		t.Fatalf("zero axis: got %v, want GeometryError", err)
	}
}

func TestJointOrthogonal(t *testing.T) {
	cfg := testConfig()
	j := orthoJoint(t, cfg)

	approxVec(t, j.Axis, v3.Vec{X: 1}, "joint axis")
	approx(t, j.Separation, 0.25, "separation")
	if j.Intersecting {
		t.Fatal("skew axes reported as intersecting")
	}

	// Origin sits midway between the facing surfaces: +0.5 on post 0,
	// -0.25 on post 1.
	approxVec(t, j.Origin, v3.Vec{X: 0.125}, "origin")

	// Square cross sections meeting at right angles: no skew.
	approx(t, j.Skew, math.Pi/2, "skew angle")
	approx(t, j.SkewFactor, 1, "skew factor")
	approx(t, j.Face.UDomain.Length(), 1, "face U width")
	approx(t, j.Face.VDomain.Length(), 1, "face V width")
	approxVec(t, j.Face.Center(), j.Origin, "face center")

	// Pocket normals oppose along the axis.
	approxVec(t, j.Pockets[0].Normal, v3.Vec{X: 1}, "pocket 0 normal")
	approxVec(t, j.Pockets[1].Normal, v3.Vec{X: -1}, "pocket 1 normal")

	// Both posts claimed.
	if !j.Posts[0].Connected() || !j.Posts[1].Connected() {
		t.Fatal("posts not marked connected")
	}
}

func TestJointRejectsParallelPosts(t *testing.T) {
	cfg := testConfig()
	side := cfg.Main.PostWidth
	p0, _ := NewPost(0, geom.Line{From: v3.Vec{}, To: v3.Vec{Z: 10}}, nil, side, side)
	p1, _ := NewPost(1, geom.Line{From: v3.Vec{X: 0.25}, To: v3.Vec{X: 0.25, Z: 10}}, nil, side, side)

	_, err := NewJoint(p0, p1, 0, cfg)
	var gerr *GeometryError
	if !errors.As(err, &gerr) {
		t.Fatalf("parallel posts: got %v, want GeometryError", err)
	}
}

func TestPocketGeometry(t *testing.T) {
	cfg := testConfig()
	j := orthoJoint(t, cfg)
	p := j.Pockets[0]

	// Face extended for endmill clearance in U and reveal in V.
	approx(t, p.Face.UDomain.Length(), 1+6*cfg.Gcode.MillDiameter, "extended U")
	approx(t, p.Face.VDomain.Length(), 1+2*cfg.Pocket.Reveal, "extended V")

	// Stock extents along the pocket normal.
	approx(t, p.ProfileBounds.Max.Z, 0.375, "near surface")
	approx(t, p.ProfileBounds.Min.Z, -0.625, "far surface")
	approx(t, p.FarthestZ, -0.625, "farthest plane")

	// One screw axis, from the face depth to the far surface.
	if len(p.Holes) != 1 {
		t.Fatalf("holes: got %d, want 1", len(p.Holes))
	}
	approx(t, p.Holes[0].Length(), 0.625, "hole length")
	approxVec(t, p.Holes[0].UnitTangent(), v3.Vec{X: -1}, "hole direction")

	// The second pocket sees the transposed face.
	approx(t, j.Pockets[1].Face.UDomain.Length(), 1+6*cfg.Gcode.MillDiameter, "pocket 1 extended U")

	// The rotation lands each pocket face-up on the rotary: in the mill
	// frame the pocket normal points straight up.
	for _, pk := range j.Pockets {
		approxVec(t, pk.GlobalToMill.ApplyVector(pk.Normal), v3.Vec{Z: 1}, "mill-frame normal")
		approxVec(t, pk.MillToGlobal.ApplyVector(v3.Vec{Z: 1}), pk.Normal, "mill round trip")
	}
}

func TestPlanStepSpacing(t *testing.T) {
	cfg := testConfig()
	j := orthoJoint(t, cfg)
	p := j.Pockets[0]

	// millDiameter 0.375, stepOver 0.5: lateral passes 0.1875 apart.
	_, pts, err := p.facePath(0, [2]bool{}, override{}, nil, 1, cfg)
	if err != nil {
		t.Fatalf("facePath: %v", err)
	}
	if len(pts) < 5 {
		t.Fatalf("facePath: only %d points", len(pts))
	}
	// Odd segments are the step-overs between zigs.
	for i := 2; i < len(pts)-2; i += 2 {
		step := pts[i].Sub(pts[i-1]).Length()
		approx(t, step, 0.1875, "step-over spacing")
	}

	// stepDown 0.75: Z passes 0.28125 apart.
	if err := j.Plan(cfg); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	levels := map[float64]bool{}
	for _, m := range p.Program.Moves {
		if m.Kind == toolpath.KindCut {
			levels[math.Round(m.Target.Z*1e9)/1e9] = true
		}
	}
	faceZ := p.uvToMill(p.Face.UDomain.Mid(), p.Face.VDomain.Mid(), 0, 0).Z
	startZ := p.ProfileBounds.Max.Z
	first := startZ - cfg.Gcode.StepDown*cfg.Gcode.MillDiameter
	approx(t, first, startZ-0.28125, "step-down spacing")
	for _, want := range []float64{faceZ + first, faceZ} {
		if !levels[math.Round(want*1e9)/1e9] {
			t.Fatalf("missing cut level %v in %v", want, levels)
		}
	}
}

func TestPlanRapidsRiseToClearance(t *testing.T) {
	cfg := testConfig()
	j := orthoJoint(t, cfg)
	if err := j.Plan(cfg); err != nil {
		t.Fatalf("Plan: %v", err)
	}

	for _, p := range j.Pockets {
		moves := p.Program.Moves
		if moves[0].Kind != toolpath.KindRapid {
			t.Fatalf("first move: got %v, want rapid", moves[0].Kind)
		}
		approx(t, moves[0].Target.Z, cfg.Gcode.Clearance, "entry rapid height")
		if moves[1].Kind != toolpath.KindPlunge || moves[1].Feed != toolpath.FeedApproach {
			t.Fatalf("entry plunge: got %v at feed %v", moves[1].Kind, moves[1].Feed)
		}
		// Nothing ever rises above the clearance plane.
		if p.Program.MaxZ() > cfg.Gcode.Clearance+tol {
			t.Fatalf("path exceeds clearance: %v > %v", p.Program.MaxZ(), cfg.Gcode.Clearance)
		}
		if idx := p.Program.CheckFinite(); idx != -1 {
			t.Fatalf("non-finite move at %d", idx)
		}
	}
}

func TestPlanIdempotent(t *testing.T) {
	cfg := testConfig()
	j := orthoJoint(t, cfg)

	if err := j.Plan(cfg); err != nil {
		t.Fatalf("first Plan: %v", err)
	}
	first := [2]*toolpath.Path{j.Pockets[0].Program, j.Pockets[1].Program}
	if err := j.Plan(cfg); err != nil {
		t.Fatalf("second Plan: %v", err)
	}
	for i, p := range j.Pockets {
		if diff := cmp.Diff(first[i], p.Program); diff != "" {
			t.Fatalf("pocket %d replan differs (-first +second):\n%s", i, diff)
		}
	}
}

func TestMarkDatumZeroDisablesDrills(t *testing.T) {
	cfg := testConfig()
	cfg.Pocket.MarkDatum = config.MarkNone
	j := orthoJoint(t, cfg)
	if err := j.Plan(cfg); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for _, p := range j.Pockets {
		if len(p.Marks) != 0 {
			t.Fatalf("marks: got %d, want 0", len(p.Marks))
		}
		for i, m := range p.Program.Moves {
			if m.Kind == toolpath.KindDrill {
				t.Fatalf("move %d is a drill cycle with marks disabled", i)
			}
		}
	}
}

func TestMarkDatumPostDrills(t *testing.T) {
	cfg := testConfig()
	cfg.Pocket.MarkDatum = config.MarkPost
	cfg.Pocket.MarkDepth = 0.1
	j := orthoJoint(t, cfg)
	if err := j.Plan(cfg); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for _, p := range j.Pockets {
		if len(p.Marks) != 1 {
			t.Fatalf("marks: got %d, want 1", len(p.Marks))
		}
		// Depth measured back from the far surface.
		approx(t, p.Marks[0].Bottom, p.Holes[0].Length()-0.1, "mark height")

		drills := 0
		for i, m := range p.Program.Moves {
			if m.Kind != toolpath.KindDrill {
				continue
			}
			drills++
			if m.Feed != toolpath.FeedApproach {
				t.Fatalf("drill feed: got %v, want approach", m.Feed)
			}
			// The drill is cut from the far side of the post.
			wantA := p.Rotation - 180
			approx(t, m.Target.A, wantA, "drill rotation")
			// Retract to clearance follows.
			if i+1 >= len(p.Program.Moves) {
				t.Fatal("drill is the last move, no retract")
			}
			approx(t, p.Program.Moves[i+1].Target.Z, cfg.Gcode.Clearance, "drill retract")
		}
		if drills != 1 {
			t.Fatalf("drill cycles: got %d, want 1", drills)
		}
	}
}

func TestBarScrewCenters(t *testing.T) {
	cfg := testConfig()
	cfg.Pocket.Type = config.PocketBarReinforced
	cfg.Pocket.BarWidth = 0.5
	cfg.Pocket.BarHeight = 0.2
	cfg.Pocket.Gap = 0.01
	cfg.Pocket.HoleOffset = 0.125
	j := orthoJoint(t, cfg)

	if j.Bar == nil {
		t.Fatal("bar joint has no BarInsert")
	}
	c := j.Bar.ScrewCenters
	approx(t, c[0].Sub(j.Origin).Length(), 0.125, "screw center 0 offset")
	approx(t, c[1].Sub(j.Origin).Length(), 0.125, "screw center 1 offset")
	approxVec(t, c[0].Add(c[1]).MulScalar(0.5), j.Origin, "screw centers symmetric about origin")

	// Both centers lie on the bar midline, along the second post.
	along := j.Posts[1].Axis.UnitTangent()
	approx(t, math.Abs(c[0].Sub(j.Origin).Normalize().Dot(along)), 1, "centers on bar midline")
}

func TestBarGrooveDepths(t *testing.T) {
	cfg := testConfig()
	cfg.Pocket.Type = config.PocketBarReinforced
	cfg.Pocket.BarWidth = 0.5
	cfg.Pocket.BarHeight = 0.2
	cfg.Pocket.Gap = 0.02
	j := orthoJoint(t, cfg)
	if err := j.Plan(cfg); err != nil {
		t.Fatalf("Plan: %v", err)
	}

	// The female groove descends below the pocket face by barHeight.
	female := j.Pockets[0]
	faceZ := female.uvToMill(female.Face.UDomain.Mid(), female.Face.VDomain.Mid(), 0, 0).Z
	bottom := female.Program.MinZ()
	approx(t, bottom, faceZ-cfg.Pocket.BarHeight, "groove depth")

	// The male side keeps the bar: nothing cuts below the pocket face.
	male := j.Pockets[1]
	faceZ = male.uvToMill(male.Face.UDomain.Mid(), male.Face.VDomain.Mid(), 0, 0).Z
	if male.Program.MinZ() < faceZ-tol {
		t.Fatalf("male path cuts below the face: %v < %v", male.Program.MinZ(), faceZ)
	}
}

// assertSafeRapids checks the reposition discipline over a whole program:
// a rapid never descends, and a rapid that moves laterally keeps its
// height, so Z is never interpolated across stock.
func assertSafeRapids(t *testing.T, p *Pocket) {
	t.Helper()
	moves := p.Program.Moves
	for i := 1; i < len(moves); i++ {
		m := moves[i]
		if m.Kind != toolpath.KindRapid {
			continue
		}
		prev := moves[i-1].Target
		if m.Target.Z < prev.Z-tol {
			t.Fatalf("move %d: rapid descends from %v to %v", i, prev.Z, m.Target.Z)
		}
		lateral := m.Target.X != prev.X || m.Target.Y != prev.Y
		if lateral && m.Target.Z > prev.Z+tol {
			t.Fatalf("move %d: rapid interpolates Z during a traverse: %v -> %v",
				i, prev, m.Target)
		}
	}
}

func TestGrooveEntrySplitsTraverse(t *testing.T) {
	cfg := testConfig()
	cfg.Pocket.Type = config.PocketBarReinforced
	cfg.Pocket.BarWidth = 0.5
	cfg.Pocket.BarHeight = 0.2
	cfg.Pocket.Gap = 0.02
	j := orthoJoint(t, cfg)
	if err := j.Plan(cfg); err != nil {
		t.Fatalf("Plan: %v", err)
	}

	for _, p := range j.Pockets {
		assertSafeRapids(t, p)
	}

	// The female groove sits below the milled pocket face, so it must be
	// entered by a plunge at the approach feed, never by a rapid.
	female := j.Pockets[0]
	faceZ := female.uvToMill(female.Face.UDomain.Mid(), female.Face.VDomain.Mid(), 0, 0).Z
	entered := false
	for i, m := range female.Program.Moves {
		if m.Target.Z >= faceZ-tol {
			continue
		}
		if m.Kind == toolpath.KindRapid {
			t.Fatalf("move %d: rapid below the pocket face: %+v", i, m)
		}
		if m.Kind == toolpath.KindPlunge {
			if m.Feed != toolpath.FeedApproach {
				t.Fatalf("groove entry feed: got %v, want approach", m.Feed)
			}
			entered = true
		}
	}
	if !entered {
		t.Fatal("groove was never entered by a plunge")
	}
}

func TestRapidsNeverDescendWithMarks(t *testing.T) {
	cfg := testConfig()
	cfg.Pocket.MarkDatum = config.MarkPost
	cfg.Pocket.MarkDepth = 0.1
	j := orthoJoint(t, cfg)
	if err := j.Plan(cfg); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for _, p := range j.Pockets {
		assertSafeRapids(t, p)
	}
}

func TestStepOverExtremes(t *testing.T) {
	counts := map[float64]int{}
	for _, stepOver := range []float64{1, 0.5, 0.01} {
		cfg := testConfig()
		cfg.Gcode.StepOver = stepOver
		j := orthoJoint(t, cfg)
		p := j.Pockets[0]

		_, pts, err := p.facePath(0, [2]bool{}, override{}, nil, 1, cfg)
		if err != nil {
			t.Fatalf("facePath at stepOver %v: %v", stepOver, err)
		}
		counts[stepOver] = len(pts)
		for i := 2; i < len(pts)-2; i += 2 {
			step := pts[i].Sub(pts[i-1]).Length()
			approx(t, step, stepOver*cfg.Gcode.MillDiameter, "step-over spacing")
		}

		if err := j.Plan(cfg); err != nil {
			t.Fatalf("Plan at stepOver %v: %v", stepOver, err)
		}
	}
	// Coarser stepping always needs fewer passes.
	if !(counts[1] < counts[0.5] && counts[0.5] < counts[0.01]) {
		t.Fatalf("pass counts not monotonic in stepOver: %v", counts)
	}
}

func TestBarGapWidensSlot(t *testing.T) {
	cfg := testConfig()
	cfg.Pocket.Type = config.PocketBarReinforced
	cfg.Pocket.BarWidth = 0.5
	cfg.Pocket.BarHeight = 0.2
	cfg.Pocket.Gap = 0.02
	j := orthoJoint(t, cfg)
	if err := j.Plan(cfg); err != nil {
		t.Fatalf("Plan: %v", err)
	}

	// Collect the tool-center V extent of the cuts at the groove depth.
	female := j.Pockets[0]
	faceZ := female.uvToMill(female.Face.UDomain.Mid(), female.Face.VDomain.Mid(), 0, 0).Z
	grooveZ := faceZ - cfg.Pocket.BarHeight
	vMin, vMax := math.Inf(1), math.Inf(-1)
	for _, m := range female.Program.Moves {
		if m.Kind != toolpath.KindCut || math.Abs(m.Target.Z-grooveZ) > tol {
			continue
		}
		q := female.MillToGlobal.Apply(m.Target.Vec())
		_, v := female.Face.UV(q)
		vMin = math.Min(vMin, v)
		vMax = math.Max(vMax, v)
	}
	if vMin > vMax {
		t.Fatal("no cuts found at the groove depth")
	}
	// Tool centers plus the cutter diameter give the slot width: the bar
	// plus the gap on each side.
	approx(t, (vMax-vMin)+cfg.Gcode.MillDiameter,
		cfg.Pocket.BarWidth+2*cfg.Pocket.Gap, "slot width")
}

func TestPairsRespectSegmentExtents(t *testing.T) {
	cfg := testConfig()
	st := NewStructure()
	// The rails' infinite axes pass within half an inch of each other, but
	// both segments end far from that crossing.
	if err := st.AddAxis(0, geom.Line{From: v3.Vec{Z: -5}, To: v3.Vec{Z: 5}}, nil, cfg); err != nil {
		t.Fatal(err)
	}
	if err := st.AddAxis(1, geom.Line{From: v3.Vec{X: 0.5, Y: 20}, To: v3.Vec{X: 0.5, Y: 30}}, nil, cfg); err != nil {
		t.Fatal(err)
	}

	failures := st.MakeJoints(cfg)
	if len(failures) != 0 {
		t.Fatalf("failures: %v", failures)
	}
	if len(st.Joints) != 0 {
		t.Fatalf("distant segments paired into %d joint(s)", len(st.Joints))
	}
}

func TestBarTooTallIsFitError(t *testing.T) {
	cfg := testConfig()
	cfg.Pocket.Type = config.PocketBarReinforced
	cfg.Pocket.BarWidth = 0.5
	cfg.Pocket.BarHeight = 0.6 // female back face is 0.625 below the pocket face
	_, err := func() (*Joint, error) {
		p0, p1 := orthoPosts(t, cfg)
		return NewJoint(p0, p1, 0, cfg)
	}()

	var ferr *FitError
	if !errors.As(err, &ferr) {
		t.Fatalf("got %v, want FitError", err)
	}
	if ferr.Parameter != "barHeight" {
		t.Fatalf("parameter: got %q, want barHeight", ferr.Parameter)
	}
}

func TestClearanceBelowStockIsFitError(t *testing.T) {
	cfg := testConfig()
	cfg.Gcode.Clearance = 0.1
	p0, p1 := orthoPosts(t, cfg)
	_, err := NewJoint(p0, p1, 0, cfg)

	var ferr *FitError
	if !errors.As(err, &ferr) {
		t.Fatalf("got %v, want FitError", err)
	}
	if ferr.Parameter != "clearance" {
		t.Fatalf("parameter: got %q, want clearance", ferr.Parameter)
	}
}

func TestStructurePairAndJoint(t *testing.T) {
	cfg := testConfig()
	st := NewStructure()
	if err := st.AddAxis(0, geom.Line{From: v3.Vec{Z: -5}, To: v3.Vec{Z: 5}}, nil, cfg); err != nil {
		t.Fatalf("AddAxis 0: %v", err)
	}
	if err := st.AddAxis(1, geom.Line{From: v3.Vec{X: 0.25, Y: -5}, To: v3.Vec{X: 0.25, Y: 5}}, nil, cfg); err != nil {
		t.Fatalf("AddAxis 1: %v", err)
	}
	// Far away, never mates.
	if err := st.AddAxis(2, geom.Line{From: v3.Vec{X: 50, Y: -5}, To: v3.Vec{X: 50, Y: 5}}, nil, cfg); err != nil {
		t.Fatalf("AddAxis 2: %v", err)
	}

	failures := st.MakeJoints(cfg)
	if len(failures) != 0 {
		t.Fatalf("failures: %v", failures)
	}
	if len(st.Joints) != 1 {
		t.Fatalf("joints: got %d, want 1", len(st.Joints))
	}
	if st.Joints[0].Posts[0].ID != 0 || st.Joints[0].Posts[1].ID != 1 {
		t.Fatalf("fringe joint order: got p%d,p%d, want p0,p1",
			st.Joints[0].Posts[0].ID, st.Joints[0].Posts[1].ID)
	}
	if st.Posts[2].Connected() {
		t.Fatal("isolated post marked connected")
	}
}

func TestStructureDuplicateID(t *testing.T) {
	cfg := testConfig()
	st := NewStructure()
	axis := geom.Line{From: v3.Vec{Z: -5}, To: v3.Vec{Z: 5}}
	if err := st.AddAxis(0, axis, nil, cfg); err != nil {
		t.Fatalf("AddAxis: %v", err)
	}
	var gerr *GeometryError
	if err := st.AddAxis(0, axis, nil, cfg); !errors.As(err, &gerr) {
		t.Fatalf("duplicate id: got %v, want GeometryError", err)
	}
}

func TestStructureRingGenders(t *testing.T) {
	// A triangle of mutually mating posts: one joint per edge, and the
	// ring rule flips exactly one edge so the figure can be assembled.
	pairs := [][2]int{{0, 1}, {1, 2}, {0, 2}}
	genders := ringGenders(pairs)
	if len(genders) != 3 {
		t.Fatalf("genders: got %d entries, want 3", len(genders))
	}
	flipped := 0
	for _, g := range genders {
		if g {
			flipped++
		}
	}
	if flipped != 1 && flipped != 2 {
		t.Fatalf("ring gender split: got %d flipped of 3", flipped)
	}
}

func TestStructureSiblingsProceed(t *testing.T) {
	cfg := testConfig()
	st := NewStructure()
	// Posts 0 and 1 mate normally; post 3 is parallel to 0 and close
	// enough to pair, which must fail without killing the 0-1 joint.
	if err := st.AddAxis(0, geom.Line{From: v3.Vec{Z: -5}, To: v3.Vec{Z: 5}}, nil, cfg); err != nil {
		t.Fatal(err)
	}
	if err := st.AddAxis(1, geom.Line{From: v3.Vec{X: 0.25, Y: -5}, To: v3.Vec{X: 0.25, Y: 5}}, nil, cfg); err != nil {
		t.Fatal(err)
	}
	if err := st.AddAxis(3, geom.Line{From: v3.Vec{X: -0.5, Z: -5}, To: v3.Vec{X: -0.5, Z: 5}}, nil, cfg); err != nil {
		t.Fatal(err)
	}

	failures := st.MakeJoints(cfg)
	if len(failures) == 0 {
		t.Fatal("parallel pair did not fail")
	}
	if len(st.Joints) == 0 {
		t.Fatal("sibling joint did not proceed")
	}
}

func TestLayoutTransforms(t *testing.T) {
	cfg := testConfig()
	st := NewStructure()
	st.AddAxis(0, geom.Line{From: v3.Vec{Z: -5}, To: v3.Vec{Z: 5}}, nil, cfg)
	st.AddAxis(1, geom.Line{From: v3.Vec{X: 0.25, Y: -5}, To: v3.Vec{X: 0.25, Y: 5}}, nil, cfg)
	if failures := st.MakeJoints(cfg); len(failures) != 0 {
		t.Fatalf("failures: %v", failures)
	}

	layouts := st.LayoutTransforms(cfg)
	if len(layouts) != 2 {
		t.Fatalf("layouts: got %d, want 2", len(layouts))
	}
	// Each post lies along +X from its own offset origin.
	for id, post := range st.Posts {
		lt := layouts[id]
		from := lt.Apply(post.Axis.From)
		to := lt.Apply(post.Axis.To)
		approx(t, from.Y, 0, "layout origin y")
		approx(t, from.Z, 0, "layout origin z")
		approxVec(t, to.Sub(from).Normalize(), v3.Vec{X: 1}, "layout direction")
	}
	// Offsets spread posts 8 * globalScale apart.
	dx := math.Abs(layouts[1].Apply(st.Posts[1].Axis.From).X - layouts[0].Apply(st.Posts[0].Axis.From).X)
	approx(t, dx, 8*cfg.Main.GlobalScale, "layout offset")
}
