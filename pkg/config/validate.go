package config

// Validate checks every parameter, parses the display selections, and
// returns the first problem found as a *ConfigError.
func (c *Config) Validate() error {
	if c.Main.GlobalScale <= 0 {
		return badOption("main", "globalScale", c.Main.GlobalScale, "must be positive")
	}
	if c.Main.PostWidth <= 0 {
		return badOption("main", "postWidth", c.Main.PostWidth, "must be positive")
	}

	switch c.Pocket.Type {
	case PocketSimple, PocketBarReinforced:
	default:
		return badOption("pocket", "pocketType", int(c.Pocket.Type), "must be 0 (simple) or 1 (bar-reinforced)")
	}
	if c.Pocket.Gap < 0 {
		return badOption("pocket", "gap", c.Pocket.Gap, "must not be negative")
	}
	if c.Pocket.Reveal < 0 {
		return badOption("pocket", "reveal", c.Pocket.Reveal, "must not be negative")
	}
	if c.Pocket.Type == PocketBarReinforced {
		if c.Pocket.BarHeight <= 0 {
			return badOption("pocket", "barHeight", c.Pocket.BarHeight, "must be positive for bar-reinforced pockets")
		}
		if c.Pocket.BarWidth <= 0 {
			return badOption("pocket", "barWidth", c.Pocket.BarWidth, "must be positive for bar-reinforced pockets")
		}
		if c.Pocket.HoleOffset < 0 {
			return badOption("pocket", "holeOffset", c.Pocket.HoleOffset, "must not be negative")
		}
	}
	switch c.Pocket.MarkDatum {
	case MarkNone, MarkPost, MarkPocket:
	default:
		return badOption("pocket", "markDatum", int(c.Pocket.MarkDatum), "must be 0, 1, or 2")
	}
	if c.Pocket.MarkDatum != MarkNone && c.Pocket.MarkDepth <= 0 {
		return badOption("pocket", "markDepth", c.Pocket.MarkDepth, "must be positive when marks are enabled")
	}
	if c.Pocket.CsRadius < 0 {
		return badOption("pocket", "csRadius", c.Pocket.CsRadius, "must not be negative")
	}

	g := c.Gcode
	if g.MillDiameter <= 0 {
		return badOption("gcode", "millDiameter", g.MillDiameter, "must be positive")
	}
	if g.StepOver <= 0 || g.StepOver > 1 {
		return badOption("gcode", "stepOver", g.StepOver, "must be in (0, 1]")
	}
	if g.StepDown <= 0 || g.StepDown > 1 {
		return badOption("gcode", "stepDown", g.StepDown, "must be in (0, 1]")
	}
	if g.Approach <= 0 || g.Approach > 1 {
		return badOption("gcode", "approach", g.Approach, "must be in (0, 1]")
	}
	if g.Clearance <= 0 {
		return badOption("gcode", "clearance", g.Clearance, "must be positive")
	}
	if g.Precision < 0 {
		return badOption("gcode", "precision", g.Precision, "must not be negative")
	}
	if g.Feedrate <= 0 {
		return badOption("gcode", "feedrate", g.Feedrate, "must be positive")
	}
	if g.SpindleSpeed <= 0 {
		return badOption("gcode", "spindleSpeed", g.SpindleSpeed, "must be positive")
	}
	if len(g.RotAxis) != 1 || g.RotAxis[0] < 'A' || g.RotAxis[0] > 'Z' {
		return badOption("gcode", "rotAxis", g.RotAxis, "must be a single capital axis letter")
	}

	sel, err := parseSelection(c.Display)
	if err != nil {
		return err
	}
	c.Selection = sel
	return nil
}
