package design

import (
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/lapjoint/pkg/config"
	"github.com/chazu/lapjoint/pkg/geom"
)

// Structure holds every post and joint of one assembly. Posts are added
// first from their axis lines; MakeJoints then discovers the mating pairs
// and resolves a joint for each.
type Structure struct {
	Posts  map[int]*Post
	Joints []*Joint

	order []int // post ids, ascending
}

// NewStructure returns an empty assembly.
func NewStructure() *Structure {
	return &Structure{Posts: map[int]*Post{}}
}

// AddAxis creates a post for the given axis line. The cross section is
// square, postWidth scaled by globalScale on a side. roll, when non-nil,
// fixes the profile rotation about the axis.
func (s *Structure) AddAxis(id int, axis geom.Line, roll *v3.Vec, cfg config.Config) error {
	if id < 0 {
		return &GeometryError{PostID: id, JointID: -1, What: "post id must not be negative", Value: float64(id)}
	}
	if _, ok := s.Posts[id]; ok {
		return &GeometryError{PostID: id, JointID: -1, What: "duplicate post id", Value: float64(id)}
	}
	side := cfg.Main.PostWidth * cfg.Main.GlobalScale
	post, err := NewPost(id, axis, roll, side, side)
	if err != nil {
		return err
	}
	s.Posts[id] = post
	s.order = append(s.order, id)
	sort.Ints(s.order)
	return nil
}

// PostIDs returns the post ids in ascending order.
func (s *Structure) PostIDs() []int {
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

// findPairs returns the id pairs of posts whose axes pass close enough to
// mate, each pair in ascending id order.
func (s *Structure) findPairs(cfg config.Config) [][2]int {
	limit := 2 * cfg.Main.GlobalScale
	var pairs [][2]int
	for i, a := range s.order {
		for _, b := range s.order[i+1:] {
			pa, pb := geom.ClosestPoints(s.Posts[a].Axis, s.Posts[b].Axis)
			if pb.Sub(pa).Length() < limit {
				pairs = append(pairs, [2]int{a, b})
			}
		}
	}
	return pairs
}

// ringGenders walks the three-post rings of the connection graph and
// decides the pocket order of each ring edge. Two joints of a ring keep
// the ascending order, the third flips, so every ring can be assembled.
// The first ring to claim an edge wins; fringe joints keep ascending
// order.
func ringGenders(pairs [][2]int) map[[2]int]bool {
	adjacent := map[int][]int{}
	connected := map[[2]int]bool{}
	for _, pr := range pairs {
		adjacent[pr[0]] = append(adjacent[pr[0]], pr[1])
		adjacent[pr[1]] = append(adjacent[pr[1]], pr[0])
		connected[pr] = true
	}
	edge := func(a, b int) ([2]int, bool) {
		if a > b {
			return [2]int{b, a}, true
		}
		return [2]int{a, b}, false
	}

	genders := map[[2]int]bool{}
	ids := make([]int, 0, len(adjacent))
	for id := range adjacent {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, a := range ids {
		nb := append([]int(nil), adjacent[a]...)
		sort.Ints(nb)
		for _, b := range nb {
			for _, c := range nb {
				if b == c {
					continue
				}
				if bc, _ := edge(b, c); !connected[bc] {
					continue
				}
				// Ring a-b-c: the first edge differs from the other two.
				ring := [3][2]int{{b, c}, {c, a}, {a, b}}
				claimed := false
				for _, pr := range ring {
					e, _ := edge(pr[0], pr[1])
					if _, ok := genders[e]; ok {
						claimed = true
						break
					}
				}
				if claimed {
					continue
				}
				for i, pr := range ring {
					e, swapped := edge(pr[0], pr[1])
					gender := i != 0
					if swapped {
						gender = !gender
					}
					genders[e] = gender
				}
			}
		}
	}
	return genders
}

// MakeJoints finds every mating pair and resolves a joint for each. A
// failed joint does not stop its siblings: errors are returned keyed by
// the pair that failed, and successful joints are kept.
func (s *Structure) MakeJoints(cfg config.Config) map[[2]int]error {
	pairs := s.findPairs(cfg)
	genders := ringGenders(pairs)

	failures := map[[2]int]error{}
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		if genders[pair] {
			a, b = b, a
		}
		joint, err := NewJoint(s.Posts[a], s.Posts[b], len(s.Joints), cfg)
		if err != nil {
			failures[pair] = err
			continue
		}
		s.Joints = append(s.Joints, joint)
	}
	return failures
}

// LayoutTransforms maps each connected post to the transform that lays it
// flat along +X at the origin, offset sideways from its neighbors so the
// laid-out posts do not overlap.
func (s *Structure) LayoutTransforms(cfg config.Config) map[int]geom.Transform {
	out := map[int]geom.Transform{}
	offset := 0.0
	for _, id := range s.order {
		post := s.Posts[id]
		if !post.Connected() {
			continue
		}
		t := post.GlobalToSelf
		t.T.X += offset
		out[id] = t
		offset += 8 * cfg.Main.GlobalScale
	}
	return out
}
