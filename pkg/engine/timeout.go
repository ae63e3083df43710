package engine

import (
	"fmt"
	"sync"
	"time"
)

// EvalTimeout is the hard limit for a single script evaluation.
const EvalTimeout = 5 * time.Second

type evalResult struct {
	specs  []AxisSpec
	errors []EvalError
	err    error
}

// waitWithTimeout waits for a result from ch, failing after EvalTimeout.
// The generation counter discards results of superseded evaluations; a
// timed-out goroutine may still be running, and its late result must not
// be mistaken for the current one.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
) ([]AxisSpec, []EvalError, error) {
	timer := time.NewTimer(EvalTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()
		if gen != current {
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return res.specs, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", EvalTimeout)
	}
}
