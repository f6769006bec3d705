package main

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-viewbuilder/pkg/importer"
	"github.com/goliatone/go-viewbuilder/pkg/model"
	"github.com/goliatone/go-viewbuilder/pkg/schema"
)

func cmdImport(e *env) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Derive a view from an OpenAPI operation or a JSON Schema",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "operation", Aliases: []string{"op"}, Usage: "OpenAPI operation ID"},
			&cli.BoolFlag{Name: "list", Usage: "List importable OpenAPI operations"},
			&cli.BoolFlag{Name: "json-schema", Usage: "Treat the input as a bare JSON Schema object"},
			&cli.BoolFlag{Name: "validate", Value: true, Usage: "Validate the OpenAPI document first"},
			&cli.StringFlag{Name: "save", Usage: "Store the result under this id"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.Args().First()
			if path == "" {
				return goerr.New("input file is required")
			}
			raw, err := readInput(path)
			if err != nil {
				return goerr.Wrap(err, "failed to read input", goerr.V("path", path))
			}

			if c.Bool("list") {
				ops, err := importer.Operations(ctx, raw, importer.WithValidation(c.Bool("validate")))
				if err != nil {
					return goerr.Wrap(err, "failed to read operations")
				}
				for _, op := range ops {
					e.printf("%-24s %-6s %s\n", op.ID, op.Method, op.Path)
				}
				return nil
			}

			var view *model.ViewSchema
			switch {
			case c.Bool("json-schema"):
				view, err = importer.FromJSONSchema(raw)
			case c.String("operation") != "":
				view, err = importer.FromOpenAPI(ctx, raw, c.String("operation"), importer.WithValidation(c.Bool("validate")))
			default:
				return goerr.New("--operation or --json-schema is required")
			}
			if err != nil {
				return goerr.Wrap(err, "failed to import", goerr.V("path", path))
			}

			if id := c.String("save"); id != "" {
				p, closeFn, err := e.provider(ctx)
				if err != nil {
					return err
				}
				defer closeFn()
				store := schema.NewStore(schema.WithProvider(p), schema.WithSchema(view))
				if _, err := store.Persist(ctx, id); err != nil {
					return goerr.Wrap(err, "failed to save view", goerr.V("id", id))
				}
			}
			return e.printJSON(view)
		},
	}
}
