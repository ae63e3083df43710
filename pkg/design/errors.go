package design

import "fmt"

// GeometryError reports degenerate post or pocket dimensions. It is fatal
// for the joint it names; sibling joints in a batch proceed.
type GeometryError struct {
	PostID  int // -1 when not tied to a post
	JointID int // -1 when not tied to a joint
	What    string
	Value   float64
}

func (e *GeometryError) Error() string {
	switch {
	case e.JointID >= 0:
		return fmt.Sprintf("geometry: joint j%d: %s (%g)", e.JointID, e.What, e.Value)
	case e.PostID >= 0:
		return fmt.Sprintf("geometry: post p%d: %s (%g)", e.PostID, e.What, e.Value)
	default:
		return fmt.Sprintf("geometry: %s (%g)", e.What, e.Value)
	}
}

// FitError reports a tolerance violation that would cut through stock or
// collide with it. Raised during resolution or planning, never at cut time.
type FitError struct {
	JointID   int
	Parameter string
	Value     float64
	Detail    string
}

func (e *FitError) Error() string {
	return fmt.Sprintf("fit: joint j%d: %s = %g: %s", e.JointID, e.Parameter, e.Value, e.Detail)
}
