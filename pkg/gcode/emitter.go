// Package gcode turns planned toolpaths into NC programs. Output follows
// the machine's modal conventions: G words and feedrates are written only
// when they change, coordinates are rounded to the configured precision,
// and rotary words are negated because the controller treats positive
// rotation as clockwise.
package gcode

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/chazu/lapjoint/pkg/config"
	"github.com/chazu/lapjoint/pkg/toolpath"
)

// EmitError reports a non-finite coordinate reaching the emitter. Planned
// paths are always finite, so this signals a broken upstream invariant
// rather than a recoverable condition.
type EmitError struct {
	Program string
	Section string
	Move    int
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("emit: program %q section %q: move %d has a non-finite coordinate",
		e.Program, e.Section, e.Move)
}

// Section is one labeled path within a program.
type Section struct {
	Comment string
	Path    *toolpath.Path
}

// Emitter renders programs for a fixed configuration.
type Emitter struct {
	cfg config.Gcode
}

// New returns an emitter for the given machine configuration.
func New(cfg config.Gcode) *Emitter {
	return &Emitter{cfg: cfg}
}

// state tracks the controller's modal words during emission.
type state struct {
	mode string
	feed float64
	a    float64
	hasA bool
}

// Program renders one complete NC program: the configured preamble, the
// spindle start, every section in order, the return to home, and the
// spindle stop, wrapped in percent signs.
func (e *Emitter) Program(label string, sections []Section) (string, error) {
	var b strings.Builder
	st := &state{}

	b.WriteString("%\n")
	if pre := strings.TrimSpace(e.cfg.Preamble); pre != "" {
		b.WriteString(pre)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "M03 S%s\n", e.num(e.cfg.SpindleSpeed))

	for _, s := range sections {
		if s.Path == nil || len(s.Path.Moves) == 0 {
			continue
		}
		if s.Comment != "" {
			fmt.Fprintf(&b, "(Starting %s)\n", s.Comment)
		}
		for i, m := range s.Path.Moves {
			if !m.Target.Finite() {
				return "", &EmitError{Program: label, Section: s.Comment, Move: i}
			}
			e.move(&b, st, m)
		}
	}

	e.home(&b, st)
	b.WriteString("M05\n%\n")
	return b.String(), nil
}

// move writes one motion line, updating the modal state.
func (e *Emitter) move(b *strings.Builder, st *state, m toolpath.Move) {
	mode := "G01"
	if m.Kind == toolpath.KindRapid {
		mode = "G00"
	}
	if st.mode != mode {
		b.WriteString(mode)
		b.WriteByte(' ')
		st.mode = mode
	}

	fmt.Fprintf(b, "X%s Y%s Z%s", e.num(m.Target.X), e.num(m.Target.Y), e.num(m.Target.Z))
	if !st.hasA || st.a != m.Target.A {
		// Negated: the controller expects positive rotation clockwise.
		fmt.Fprintf(b, " %s%s", e.cfg.RotAxis, e.num(-m.Target.A))
		st.a = m.Target.A
		st.hasA = true
	}

	if m.Kind != toolpath.KindRapid {
		feed := e.cfg.Feedrate
		if m.Feed == toolpath.FeedApproach {
			feed = e.cfg.Feedrate * e.cfg.Approach
		}
		if st.feed != feed {
			fmt.Fprintf(b, " F%s", e.num(feed))
			st.feed = feed
		}
	}
	b.WriteByte('\n')
}

// home writes the final return: rise to clearance, rapid to the home
// position, then feed down to the home Z at the approach feedrate.
func (e *Emitter) home(b *strings.Builder, st *state) {
	h := e.cfg.Home
	approach := e.cfg.Feedrate * e.cfg.Approach
	fmt.Fprintf(b, "G00 Z%s\n", e.num(e.cfg.Clearance))
	fmt.Fprintf(b, "X%s Y%s %s%s\n", e.num(h[0]), e.num(h[1]), e.cfg.RotAxis, e.num(-h[3]))
	fmt.Fprintf(b, "G01 Z%s F%s\n", e.num(h[2]), e.num(approach))
	st.mode = "G01"
	st.feed = approach
	st.a = h[3]
	st.hasA = true
}

// num formats a coordinate at the configured precision, with trailing
// zeros dropped the way the controller prefers.
func (e *Emitter) num(x float64) string {
	scale := math.Pow(10, float64(e.cfg.Precision))
	v := math.Round(x*scale) / scale
	if v == 0 {
		v = 0 // normalize negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteFile writes a rendered program to path atomically, so a crash
// mid-write never leaves a truncated NC file for the operator to load.
func WriteFile(path, program string) error {
	return renameio.WriteFile(path, []byte(program), 0o644)
}
