// Package predicate evaluates model.Predicate values against the current form
// values. Expressions are compiled once and cached per evaluator.
package predicate

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-viewbuilder/pkg/model"
	"github.com/goliatone/go-viewbuilder/pkg/predicate/expr"
)

// Evaluator resolves predicates. The zero value is not usable; call New.
type Evaluator struct {
	mu     sync.RWMutex
	cache  map[string]*expr.Program
	extras map[string]any
}

// Option customises an Evaluator.
type Option func(*Evaluator)

// WithExtras exposes additional context (roles, feature flags) to expressions
// under the `extras.` prefix.
func WithExtras(extras map[string]any) Option {
	return func(e *Evaluator) {
		e.extras = extras
	}
}

// New constructs an Evaluator.
func New(options ...Option) *Evaluator {
	e := &Evaluator{cache: make(map[string]*expr.Program)}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

var defaultEvaluator = New()

// Default returns the shared package evaluator.
func Default() *Evaluator { return defaultEvaluator }

// Eval resolves p against values. Nil predicates are false. Static predicates
// return their fixed value without looking at values.
func (e *Evaluator) Eval(p *model.Predicate, values map[string]any) (bool, error) {
	if p == nil {
		return false, nil
	}
	if p.IsStatic() {
		return p.StaticValue(), nil
	}
	if fn := p.Func(); fn != nil {
		return fn(values), nil
	}
	prog, err := e.Compile(p.Expression())
	if err != nil {
		return false, err
	}
	return prog.Eval(expr.Scope{Values: values, Extras: e.extras})
}

// Compile returns the cached program for source.
func (e *Evaluator) Compile(source string) (*expr.Program, error) {
	e.mu.RLock()
	prog, ok := e.cache[source]
	e.mu.RUnlock()
	if ok {
		return prog, nil
	}

	prog, err := expr.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("predicate: compile %q: %w", source, err)
	}

	e.mu.Lock()
	e.cache[source] = prog
	e.mu.Unlock()
	return prog, nil
}

// Cached reports whether source has been compiled by e.
func (e *Evaluator) Cached(source string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.cache[source]
	return ok
}

// Check compiles a computed predicate without evaluating it.
func (e *Evaluator) Check(p *model.Predicate) error {
	if p == nil || p.IsStatic() || p.Func() != nil {
		return nil
	}
	_, err := e.Compile(p.Expression())
	return err
}
