package boundary

import (
	"context"

	"github.com/getsentry/sentry-go"
)

// SentryReporter sends failures to Sentry through hub. A nil hub uses the
// current hub, so sentry.Init must have been called.
type SentryReporter struct {
	Hub *sentry.Hub
}

// Report captures the failure with the boundary name as a tag.
func (r SentryReporter) Report(ctx context.Context, failure Failure) {
	hub := r.Hub
	if hub == nil {
		hub = sentry.GetHubFromContext(ctx)
	}
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("boundary", failure.Name)
		if failure.Panic {
			scope.SetTag("panic", "true")
		}
		hub.CaptureException(failure.Err)
	})
}
