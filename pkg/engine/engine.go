// Package engine evaluates post-layout scripts. A script is a small Lisp
// program that declares the axis line of every post in the structure; it
// runs in a sandboxed zygomys environment so layout files can be shared
// and re-run without trusting their source.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// AxisSpec is one declared post: its id, axis endpoints, and an optional
// roll direction fixing the profile rotation.
type AxisSpec struct {
	ID   int
	From v3.Vec
	To   v3.Vec
	Roll *v3.Vec
}

// EvalError is a non-fatal script error, such as a parse error or a bad
// argument to a builtin.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// every Evaluate call runs in a fresh sandbox so results depend only on
// the source text.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs a layout script and returns the declared axes.
//
// Return semantics:
//   - success: specs + nil errors + nil error
//   - script failure: nil + eval errors + nil error
//   - fatal failure (timeout, panic): nil + nil + error
func (e *Engine) Evaluate(source string) ([]AxisSpec, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		specs, evalErrs, err := evaluate(source)
		ch <- evalResult{specs: specs, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate runs one script in a fresh sandbox.
func evaluate(source string) ([]AxisSpec, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil, nil
	}

	// Sandbox mode keeps script code away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	c := &collector{}
	registerBuiltins(env, c)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return c.specs, nil, nil
}

var (
	linePattern      = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)
	linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)
)

// parseZygomysError extracts line information from a zygomys error.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, pat := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := pat.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
