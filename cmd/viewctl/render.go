package main

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-viewbuilder/pkg/autoform"
	"github.com/goliatone/go-viewbuilder/pkg/render"
	"github.com/goliatone/go-viewbuilder/pkg/render/html"
)

func cmdRender(e *env) *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render a view as an HTML form or a JSON document",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			fileFlag,
			&cli.StringFlag{Name: "values", Usage: "Initial values as a JSON object"},
			&cli.IntFlag{Name: "tab", Usage: "Active tab index"},
			&cli.StringFlag{Name: "action", Usage: "Form action URL"},
			&cli.StringFlag{Name: "format", Value: "html", Usage: "Output format (html, json)"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			view, err := e.loadView(ctx, c)
			if err != nil {
				return err
			}
			values := map[string]any{}
			if raw := c.String("values"); raw != "" {
				if err := json.Unmarshal([]byte(raw), &values); err != nil {
					return goerr.Wrap(err, "--values must be a JSON object")
				}
			}
			relations, err := e.file.RelationRegistry()
			if err != nil {
				return err
			}

			form := autoform.FromSchema(view,
				autoform.WithValues(values),
				autoform.WithRelations(relations),
			)
			form.SelectTab(int(c.Int("tab")))

			renderers, err := render.NewDefault(html.WithAction(c.String("action")))
			if err != nil {
				return goerr.Wrap(err, "failed to create renderers")
			}
			renderer, err := renderers.Get(c.String("format"))
			if err != nil {
				return goerr.Wrap(err, "unsupported format", goerr.V("available", renderers.List()))
			}
			out, err := renderer.Render(ctx, form)
			if err != nil {
				return goerr.Wrap(err, "failed to render view")
			}
			e.printf("%s\n", out)
			return nil
		},
	}
}
