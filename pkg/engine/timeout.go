package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/mechtrainer/pkg/catalog"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a course file runs longer than the
	// engine's Timeout.
	ErrTimeout = errors.New("evaluation timed out")

	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one had started.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

type evalResult struct {
	course *catalog.Course
	errors []EvalError
	err    error
}

// begin starts a new evaluation generation and returns it with the
// timeout that applies to it.
func (e *Engine) begin() (uint64, time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = EvalTimeout
	}
	return e.generation, timeout
}

// current reports whether gen is still the newest evaluation.
func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

// await blocks until ch delivers or timeout elapses. A runaway evaluation
// keeps its goroutine; its result is dropped because the generation has
// moved on by the time it arrives.
func (e *Engine) await(ch <-chan evalResult, gen uint64, timeout time.Duration) (*catalog.Course, []EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !e.current(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.course, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}
