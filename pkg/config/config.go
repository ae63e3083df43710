// Package config loads and validates the process-wide parameter bundle.
// The Config is constructed once at startup, validated, and then passed by
// value into each component; nothing in the pipeline mutates it or reaches
// for it through a global.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PocketType selects the pocket variant cut at each joint.
type PocketType int

const (
	PocketSimple        PocketType = 0 // plain lap pocket
	PocketBarReinforced PocketType = 1 // pocket with sliding bar insert
)

// MarkDatum selects how mark-hole depth is measured.
type MarkDatum int

const (
	MarkNone   MarkDatum = 0 // no mark holes
	MarkPost   MarkDatum = 1 // depth measured from the post surface
	MarkPocket MarkDatum = 2 // depth is the remaining material at the pocket
)

// Main holds structure-wide sizing parameters.
type Main struct {
	GlobalScale float64 `yaml:"globalScale"`
	PostWidth   float64 `yaml:"postWidth"`
}

// Pocket holds joint fit and reinforcement parameters.
type Pocket struct {
	Type       PocketType `yaml:"pocketType"`
	BarHeight  float64    `yaml:"barHeight"`
	BarWidth   float64    `yaml:"barWidth"`
	Gap        float64    `yaml:"gap"`
	Reveal     float64    `yaml:"reveal"`
	MarkDatum  MarkDatum  `yaml:"markDatum"`
	MarkDepth  float64    `yaml:"markDepth"`
	HoleOffset float64    `yaml:"holeOffset"`
	// CsRadius is parsed and range-checked but not consumed anywhere yet;
	// it is reserved for a countersink mark-hole variant.
	CsRadius float64 `yaml:"csRadius"`
}

// Gcode holds machine and emission parameters.
type Gcode struct {
	MillDiameter float64    `yaml:"millDiameter"`
	StepOver     float64    `yaml:"stepOver"`
	StepDown     float64    `yaml:"stepDown"`
	Clearance    float64    `yaml:"clearance"`
	Precision    int        `yaml:"precision"`
	Home         [4]float64 `yaml:"home"` // x, y, z, rotation
	Preamble     string     `yaml:"preamble"`
	Feedrate     float64    `yaml:"feedrate"`
	Approach     float64    `yaml:"approach"`
	SpindleSpeed float64    `yaml:"spindleSpeed"`
	RotAxis      string     `yaml:"rotAxis"`
}

// Display holds the raw comma-delimited artifact selections. They are
// parsed into a Selection at load time and only ever consumed by the
// display layer, never by the fabrication core.
type Display struct {
	Post         string `yaml:"post"`
	Pocket       string `yaml:"pocket"`
	Joint        string `yaml:"joint"`
	PostLayout   string `yaml:"postLayout"`
	PocketLayout string `yaml:"pocketLayout"`
}

// Config is the read-only parameter bundle for a fabrication run.
type Config struct {
	Main    Main    `yaml:"main"`
	Display Display `yaml:"display"`
	Pocket  Pocket  `yaml:"pocket"`
	Gcode   Gcode   `yaml:"gcode"`

	// Selection is the validated form of Display, populated by Load.
	Selection Selection `yaml:"-"`
}

// Default returns a config with workable defaults for a small structure.
// Callers still run Validate after overriding fields.
func Default() Config {
	return Config{
		Main: Main{GlobalScale: 1, PostWidth: 3.5},
		Pocket: Pocket{
			Type:       PocketSimple,
			BarHeight:  0.75,
			BarWidth:   1.5,
			Gap:        0.01,
			Reveal:     0.125,
			MarkDatum:  MarkNone,
			MarkDepth:  0.5,
			HoleOffset: 0.125,
		},
		Gcode: Gcode{
			MillDiameter: 0.375,
			StepOver:     0.5,
			StepDown:     0.75,
			Clearance:    4,
			Precision:    4,
			Home:         [4]float64{0, 0, 4, 0},
			Preamble:     "G20\nG90",
			Feedrate:     100,
			Approach:     0.5,
			SpindleSpeed: 12000,
			RotAxis:      "A",
		},
	}
}

// Load reads, parses, and validates the YAML config at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates YAML config bytes.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
