package config

import (
	"errors"
	"strings"
	"testing"
)

const sampleYAML = `
main:
  globalScale: 1.0
  postWidth: 3.5
pocket:
  pocketType: 1
  barHeight: 0.75
  barWidth: 1.5
  gap: 0.01
  reveal: 0.125
  markDatum: 1
  markDepth: 0.5
  holeOffset: 0.125
  csRadius: 0.25
gcode:
  millDiameter: 0.375
  stepOver: 0.5
  stepDown: 0.75
  clearance: 1.6
  precision: 4
  home: [0, 0, 1.6, 0]
  preamble: |-
    G20
    G90
  feedrate: 100
  approach: 0.5
  spindleSpeed: 12000
  rotAxis: A
display:
  post: "label, axis"
  pocket: "holes, toolpath"
  joint: label
`

func TestParseSample(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Pocket.Type != PocketBarReinforced {
		t.Errorf("pocketType: got %v", cfg.Pocket.Type)
	}
	if cfg.Gcode.Home != [4]float64{0, 0, 1.6, 0} {
		t.Errorf("home: got %v", cfg.Gcode.Home)
	}
	if !strings.Contains(cfg.Gcode.Preamble, "G20") {
		t.Errorf("preamble not preserved: %q", cfg.Gcode.Preamble)
	}
	if !cfg.Selection.Post.Has(ArtifactLabel) || !cfg.Selection.Post.Has(ArtifactAxis) {
		t.Error("post selection not parsed")
	}
	if cfg.Selection.Post.Has(ArtifactToolpath) {
		t.Error("unselected artifact reported as selected")
	}
	if !cfg.Selection.Pocket.Has(ArtifactToolpath) {
		t.Error("pocket toolpath selection missing")
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		option string
	}{
		{"zero scale", func(c *Config) { c.Main.GlobalScale = 0 }, "globalScale"},
		{"negative width", func(c *Config) { c.Main.PostWidth = -1 }, "postWidth"},
		{"bad pocket type", func(c *Config) { c.Pocket.Type = 7 }, "pocketType"},
		{"negative gap", func(c *Config) { c.Pocket.Gap = -0.1 }, "gap"},
		{"negative reveal", func(c *Config) { c.Pocket.Reveal = -1 }, "reveal"},
		{"bad datum", func(c *Config) { c.Pocket.MarkDatum = 3 }, "markDatum"},
		{"stepOver zero", func(c *Config) { c.Gcode.StepOver = 0 }, "stepOver"},
		{"stepOver above one", func(c *Config) { c.Gcode.StepOver = 1.5 }, "stepOver"},
		{"stepDown zero", func(c *Config) { c.Gcode.StepDown = 0 }, "stepDown"},
		{"approach above one", func(c *Config) { c.Gcode.Approach = 2 }, "approach"},
		{"negative precision", func(c *Config) { c.Gcode.Precision = -1 }, "precision"},
		{"zero feedrate", func(c *Config) { c.Gcode.Feedrate = 0 }, "feedrate"},
		{"zero spindle", func(c *Config) { c.Gcode.SpindleSpeed = 0 }, "spindleSpeed"},
		{"long rot axis", func(c *Config) { c.Gcode.RotAxis = "AB" }, "rotAxis"},
		{"lowercase rot axis", func(c *Config) { c.Gcode.RotAxis = "a" }, "rotAxis"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if ce.Option != tc.option {
				t.Errorf("option: got %q want %q", ce.Option, tc.option)
			}
		})
	}
}

func TestBarValidationOnlyWhenSelected(t *testing.T) {
	cfg := Default()
	cfg.Pocket.Type = PocketSimple
	cfg.Pocket.BarHeight = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("bar fields should not be required for simple pockets: %v", err)
	}
	cfg.Pocket.Type = PocketBarReinforced
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected barHeight rejection for bar-reinforced pockets")
	}
}

func TestSelectionRejectsUnknownArtifact(t *testing.T) {
	cfg := Default()
	cfg.Display.Post = "label, wireframe"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown artifact rejection")
	}
}

func TestSelectionRejectsWrongEntityArtifact(t *testing.T) {
	cfg := Default()
	// toolpath is a pocket artifact, not a post artifact.
	cfg.Display.Post = "toolpath"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected entity-kind rejection")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
