// Package engine evaluates graph scripts. A script runs in a sandboxed
// zygomys interpreter and records a Plan of node, property, link and
// connection operations; the Plan is applied to an editor afterwards on
// the caller's goroutine.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/sceneweave/pkg/graph"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// each call to Evaluate creates a fresh sandboxed environment.
type Engine struct {
	// Timeout bounds a single evaluation. Zero means EvalTimeout.
	Timeout time.Duration

	log        *slog.Logger
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine. A nil logger uses slog.Default().
func NewEngine(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{Timeout: EvalTimeout, log: log}
}

// Evaluate runs source and returns the plan it recorded.
//
// Return semantics:
//   - On success: returns plan + nil errors + nil error
//   - On parse/eval failure: returns nil plan + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Plan, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext is Evaluate bounded by ctx as well as the engine's
// Timeout. Cancelling ctx returns ctx.Err().
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*Plan, []EvalError, error) {
	gen := e.begin()
	ctx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		p, evalErrs, err := e.evaluate(source)
		ch <- evalResult{plan: p, errors: evalErrs, err: err}
	}()

	p, evalErrs, err := e.await(ctx, ch, gen)
	switch {
	case err != nil:
		e.log.Error("evaluation failed", "err", err)
	case len(evalErrs) > 0:
		e.log.Warn("evaluation errors", "count", len(evalErrs), "first", evalErrs[0])
	default:
		e.log.Debug("evaluation done", "ops", len(p.Ops), "nodes", p.Nodes())
	}
	return p, evalErrs, err
}

// Run evaluates source and applies the resulting plan to t. Eval errors
// leave t untouched. The returned handles are indexed by plan node.
func (e *Engine) Run(source string, t Target) ([]graph.Handle, []EvalError, error) {
	return e.RunContext(context.Background(), source, t)
}

// RunContext is Run with evaluation bounded by ctx.
func (e *Engine) RunContext(ctx context.Context, source string, t Target) ([]graph.Handle, []EvalError, error) {
	p, evalErrs, err := e.EvaluateContext(ctx, source)
	if err != nil || len(evalErrs) > 0 {
		return nil, evalErrs, err
	}
	handles, err := p.Apply(t)
	return handles, nil, err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Plan, []EvalError, error) {
	p := &Plan{}
	if strings.TrimSpace(source) == "" {
		return p, nil, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, p)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return p, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values,
// extracting the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
