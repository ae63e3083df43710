// lapjoint designs post-and-pocket lap joints and emits G-code to cut
// them on a CNC router with a rotary axis.
//
// Usage:
//
//	lapjoint -config config.yaml -script frame.lisp [options]
//
// Options:
//
//	-config string   YAML configuration file (required)
//	-script string   post layout script (required)
//	-out string      output directory for NC programs (default "gcode")
//	-layout          emit one program per pocket instead of per joint
//	-scene string    optional path for the display scene JSON
//	-loglevel string log level (default "info")
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/renameio/v2"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/lapjoint/pkg/config"
	"github.com/chazu/lapjoint/pkg/design"
	"github.com/chazu/lapjoint/pkg/display"
	"github.com/chazu/lapjoint/pkg/engine"
	"github.com/chazu/lapjoint/pkg/gcode"
	"github.com/chazu/lapjoint/pkg/geom"
	"github.com/chazu/lapjoint/pkg/log"
)

func main() {
	configFile := flag.String("config", "", "YAML configuration file (required)")
	scriptFile := flag.String("script", "", "post layout script (required)")
	outDir := flag.String("out", "gcode", "output directory for NC programs")
	layout := flag.Bool("layout", false, "emit one program per pocket instead of per joint")
	scenePath := flag.String("scene", "", "optional path for the display scene JSON")
	logLevel := flag.String("loglevel", "info", "log level")
	flag.Parse()

	log.Configure(log.Config{Level: *logLevel, Console: true})
	logger := log.WithComponent("cli")

	if *configFile == "" || *scriptFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -config and -script are required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("configuration rejected")
	}

	st, err := buildStructure(*scriptFile, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("layout script failed")
	}
	logger.Info().Int("posts", len(st.Posts)).Msg("structure loaded")

	failures := st.MakeJoints(cfg)
	for pair, err := range failures {
		logger.Error().
			Int("post0", pair[0]).
			Int("post1", pair[1]).
			Err(err).
			Msg("joint failed, siblings proceed")
	}
	if len(st.Joints) == 0 {
		logger.Fatal().Msg("no joints resolved")
	}
	logger.Info().Int("joints", len(st.Joints)).Msg("joints resolved")

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Fatal().Err(err).Msg("cannot create output directory")
	}

	planned, err := emitAll(st, cfg, *outDir, *layout)
	if err != nil {
		logger.Fatal().Err(err).Msg("emission failed")
	}
	logger.Info().Int("programs", planned).Str("dir", *outDir).Msg("programs written")

	if *scenePath != "" {
		if err := writeScene(st, cfg, *layout, *scenePath); err != nil {
			logger.Fatal().Err(err).Msg("scene export failed")
		}
		logger.Info().Str("path", *scenePath).Msg("scene written")
	}

	if len(failures) > 0 {
		os.Exit(1)
	}
}

// buildStructure evaluates the layout script and turns its axis specs
// into posts.
func buildStructure(path string, cfg config.Config) (*design.Structure, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}

	specs, evalErrs, err := engine.NewEngine().Evaluate(string(source))
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		return nil, fmt.Errorf("script: %w", evalErrs[0])
	}
	if len(specs) == 0 {
		return nil, errors.New("script declares no posts")
	}

	st := design.NewStructure()
	for _, spec := range specs {
		axis := geom.Line{From: spec.From, To: spec.To}
		if err := st.AddAxis(spec.ID, axis, spec.Roll, cfg); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// emitAll plans every joint and writes its NC program(s). Joints are
// independent, so they are planned in parallel; a per-joint failure is
// logged and skipped rather than stopping its siblings.
func emitAll(st *design.Structure, cfg config.Config, outDir string, perPocket bool) (int, error) {
	logger := log.WithComponent("emit")
	emitter := gcode.New(cfg.Gcode)

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	errs := make([]error, len(st.Joints))

	for i, joint := range st.Joints {
		i, joint := i, joint
		g.Go(func() error {
			if err := joint.Plan(cfg); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = writePrograms(emitter, joint, outDir, perPocket)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	written := 0
	var firstEmit error
	for i, err := range errs {
		if err == nil {
			written++
			continue
		}
		var emitErr *gcode.EmitError
		if errors.As(err, &emitErr) && firstEmit == nil {
			// Broken invariant upstream: stop rather than write more.
			firstEmit = err
			continue
		}
		logger.Error().Str("joint", st.Joints[i].Label()).Err(err).Msg("joint skipped")
	}
	if firstEmit != nil {
		return written, firstEmit
	}
	return written, nil
}

// writePrograms renders and writes the NC output for one joint: one
// program covering both pockets, or one per pocket in layout mode.
func writePrograms(emitter *gcode.Emitter, joint *design.Joint, outDir string, perPocket bool) error {
	if perPocket {
		for _, pocket := range joint.Pockets {
			name := pocket.Post.Label() + "-" + joint.Label()
			text, err := emitter.Program(name, []gcode.Section{
				{Comment: pocketComment(joint, pocket), Path: pocket.Program},
			})
			if err != nil {
				return err
			}
			if err := gcode.WriteFile(filepath.Join(outDir, name+".nc"), text); err != nil {
				return err
			}
		}
		return nil
	}

	sections := make([]gcode.Section, 0, len(joint.Pockets))
	for _, pocket := range joint.Pockets {
		sections = append(sections, gcode.Section{
			Comment: pocketComment(joint, pocket),
			Path:    pocket.Program,
		})
	}
	text, err := emitter.Program(joint.Label(), sections)
	if err != nil {
		return err
	}
	return gcode.WriteFile(filepath.Join(outDir, joint.Label()+".nc"), text)
}

func pocketComment(joint *design.Joint, pocket *design.Pocket) string {
	return fmt.Sprintf("Pocket %s on %s", joint.Label(), pocket.Post.Label())
}

// writeScene exports the selected display artifacts as JSON.
func writeScene(st *design.Structure, cfg config.Config, layout bool, path string) error {
	scene := &display.Scene{}
	for _, id := range st.PostIDs() {
		if err := scene.Post(st.Posts[id], cfg.Selection.Post); err != nil {
			return err
		}
	}
	for _, joint := range st.Joints {
		scene.Joint(joint, cfg.Selection.Joint)
		for _, pocket := range joint.Pockets {
			scene.Pocket(pocket, cfg.Selection.Pocket)
		}
	}
	if layout {
		if err := scene.Layout(st, cfg); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(scene, "", "  ")
	if err != nil {
		return err
	}
	return renameio.WriteFile(path, data, 0o644)
}
