// Package boundary isolates render failures. A guarded render function that
// returns an error or panics is replaced by a fallback panel carrying the
// error message and stack trace; the rest of the page renders normally.
package boundary

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"runtime/debug"
	"strings"
)

// Failure describes a guarded render that did not complete.
type Failure struct {
	Name  string
	Err   error
	Stack string
	Panic bool
}

// Reporter forwards failures to an external diagnostic channel.
type Reporter interface {
	Report(ctx context.Context, failure Failure)
}

// ReporterFunc adapts a function into a Reporter.
type ReporterFunc func(ctx context.Context, failure Failure)

// Report calls fn.
func (fn ReporterFunc) Report(ctx context.Context, failure Failure) { fn(ctx, failure) }

// Fallback renders the replacement markup for a failure.
type Fallback func(failure Failure) string

// Boundary guards render functions.
type Boundary struct {
	logger    *slog.Logger
	reporters []Reporter
	fallback  Fallback
	showStack bool
}

// Option configures a Boundary.
type Option func(*Boundary)

// WithLogger sets the logger failures are written to.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Boundary) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithReporter adds a reporter.
func WithReporter(r Reporter) Option {
	return func(b *Boundary) {
		if r != nil {
			b.reporters = append(b.reporters, r)
		}
	}
}

// WithFallback replaces the default fallback panel.
func WithFallback(fn Fallback) Option {
	return func(b *Boundary) {
		if fn != nil {
			b.fallback = fn
		}
	}
}

// WithStack toggles the stack trace in the default panel. Enabled by default.
func WithStack(show bool) Option {
	return func(b *Boundary) {
		b.showStack = show
	}
}

// New constructs a Boundary.
func New(options ...Option) *Boundary {
	b := &Boundary{logger: slog.Default(), showStack: true}
	for _, opt := range options {
		if opt != nil {
			opt(b)
		}
	}
	if b.fallback == nil {
		b.fallback = b.defaultPanel
	}
	return b
}

// Guard runs fn. On error or panic it logs, reports and returns the fallback
// markup with ok=false. A nil Boundary still recovers, using the default panel.
func (b *Boundary) Guard(ctx context.Context, name string, fn func() (string, error)) (out string, ok bool) {
	if b == nil {
		b = New()
	}
	defer func() {
		if r := recover(); r != nil {
			err, isErr := r.(error)
			if !isErr {
				err = fmt.Errorf("%v", r)
			}
			out = b.fail(ctx, Failure{Name: name, Err: err, Stack: string(debug.Stack()), Panic: true})
			ok = false
		}
	}()

	rendered, err := fn()
	if err != nil {
		return b.fail(ctx, Failure{Name: name, Err: err, Stack: string(debug.Stack())}), false
	}
	return rendered, true
}

func (b *Boundary) fail(ctx context.Context, failure Failure) string {
	b.logger.Error("View rendering error",
		"boundary", failure.Name,
		"error", failure.Err,
		"panic", failure.Panic,
	)
	for _, r := range b.reporters {
		r.Report(ctx, failure)
	}
	return b.fallback(failure)
}

const (
	panelTitle   = "View Rendering Error"
	panelMessage = "An error occurred while rendering this view."
)

func (b *Boundary) defaultPanel(failure Failure) string {
	var sb strings.Builder
	sb.WriteString(`<div class="vb-error-boundary" role="alert" data-boundary="`)
	sb.WriteString(html.EscapeString(failure.Name))
	sb.WriteString(`"><h3>`)
	sb.WriteString(panelTitle)
	sb.WriteString(`</h3><p>`)
	sb.WriteString(panelMessage)
	sb.WriteString(`</p><pre class="vb-error-boundary__message">`)
	if failure.Err != nil {
		sb.WriteString(html.EscapeString(failure.Err.Error()))
	}
	sb.WriteString(`</pre>`)
	if b.showStack && failure.Stack != "" {
		sb.WriteString(`<details><summary>Stack trace</summary><pre class="vb-error-boundary__stack">`)
		sb.WriteString(html.EscapeString(failure.Stack))
		sb.WriteString(`</pre></details>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}
