// Package render names the output formats a resolved form can be written in
// and keeps them in a registry the CLI and server select from.
package render

import (
	"context"

	"github.com/goliatone/go-viewbuilder/pkg/autoform"
)

// Renderer writes a form in one output format.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form *autoform.Form) (string, error)
}
