package design

import "github.com/chazu/lapjoint/pkg/config"

// Kind is the tagged pocket variant. Bar-specific parameters live only on
// the bar-reinforced variant, never on the common Pocket structure.
type Kind interface {
	kindName() string
}

// Simple is a plain lap pocket.
type Simple struct{}

func (Simple) kindName() string { return "simple" }

// BarReinforced is a pocket with a sliding bar insert. The female pocket
// (index 0) gets a groove across its post; the male pocket (index 1) keeps
// a raised bar parallel to its post.
type BarReinforced struct {
	Height     float64
	Width      float64
	Gap        float64 // side clearance between bar and slot
	HoleOffset float64 // screw hole offset from the bar midline
}

func (BarReinforced) kindName() string { return "bar-reinforced" }

// kindFromConfig maps the numeric config selector to the tagged variant.
func kindFromConfig(p config.Pocket) Kind {
	if p.Type == config.PocketBarReinforced {
		return BarReinforced{
			Height:     p.BarHeight,
			Width:      p.BarWidth,
			Gap:        p.Gap,
			HoleOffset: p.HoleOffset,
		}
	}
	return Simple{}
}
