package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when a script runs past the engine's Timeout.
	ErrTimeout = errors.New("engine: evaluation timed out")
	// ErrSuperseded is returned to an evaluation overtaken by a newer one.
	ErrSuperseded = errors.New("engine: evaluation superseded by newer request")
)

// evalResult carries one evaluation back from its goroutine.
type evalResult struct {
	plan   *Plan
	errors []EvalError
	err    error
}

// begin starts a new generation and returns its number.
func (e *Engine) begin() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.generation
}

// await blocks for the result of generation gen until ctx ends. The
// interpreter cannot be interrupted: a goroutine left behind by a timeout
// or cancellation runs to completion and its result is dropped.
func (e *Engine) await(ctx context.Context, ch <-chan evalResult, gen uint64) (*Plan, []EvalError, error) {
	select {
	case res := <-ch:
		if !e.current(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.plan, res.errors, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout())
		}
		return nil, nil, ctx.Err()
	}
}

func (e *Engine) timeout() time.Duration {
	if e.Timeout <= 0 {
		return EvalTimeout
	}
	return e.Timeout
}
