package main

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-viewbuilder/pkg/editor"
	"github.com/goliatone/go-viewbuilder/pkg/schema"
)

func cmdList(e *env) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List stored views",
		Action: func(ctx context.Context, c *cli.Command) error {
			p, closeFn, err := e.provider(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			ids, err := p.List(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list views")
			}
			for _, id := range ids {
				e.printf("%s\n", id)
			}
			return nil
		},
	}
}

func cmdShow(e *env) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print a stored view",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yaml", Usage: "Print YAML instead of JSON"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			view, err := e.loadView(ctx, c)
			if err != nil {
				return err
			}
			if c.Bool("yaml") {
				data, err := yaml.Marshal(view)
				if err != nil {
					return goerr.Wrap(err, "failed to encode yaml")
				}
				e.printf("%s", data)
				return nil
			}
			return e.printJSON(view)
		},
	}
}

func cmdSave(e *env) *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "Validate a schema file and store it",
		ArgsUsage: "<id> <file>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, path := c.Args().Get(0), c.Args().Get(1)
			if id == "" || path == "" {
				return goerr.New("usage: save <id> <file>")
			}
			view, err := readSchemaFile(path)
			if err != nil {
				return err
			}

			p, closeFn, err := e.provider(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			store := schema.NewStore(schema.WithProvider(p), schema.WithSchema(view))
			saved, err := store.Persist(ctx, id)
			if err != nil {
				return goerr.Wrap(err, "failed to save view", goerr.V("id", id))
			}
			e.printf("%s %s\n", store.State(), saved)
			return nil
		},
	}
}

func cmdDelete(e *env) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a stored view",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.New("view id is required")
			}
			p, closeFn, err := e.provider(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := schema.NewStore(schema.WithProvider(p)).Delete(ctx, id); err != nil {
				return goerr.Wrap(err, "failed to delete view", goerr.V("id", id))
			}
			e.printf("deleted %s\n", id)
			return nil
		},
	}
}

// cmdEdit replaces a stored view with edited JSON text. The text goes through
// the editor so parse and validation failures leave the stored view alone.
func cmdEdit(e *env) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Replace a stored view with JSON read from a file or stdin",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Value: "-", Usage: "JSON file, '-' for stdin"},
			&cli.BoolFlag{Name: "create", Usage: "Start from an empty view when the id does not exist"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.New("view id is required")
			}
			text, err := readInput(c.String("from"))
			if err != nil {
				return goerr.Wrap(err, "failed to read input", goerr.V("from", c.String("from")))
			}

			p, closeFn, err := e.provider(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			store := schema.NewStore(schema.WithProvider(p))
			if err := store.Load(ctx, id); err != nil {
				if !errors.Is(err, schema.ErrViewNotFound) || !c.Bool("create") {
					return goerr.Wrap(err, "failed to load view", goerr.V("id", id))
				}
			}

			ed := editor.New(store)
			defer ed.Close()
			if err := ed.Edit(string(text)); err != nil {
				return goerr.Wrap(err, "invalid JSON")
			}
			if err := ed.Apply(); err != nil {
				var verr *editor.ValidationError
				if errors.As(err, &verr) {
					for _, issue := range verr.Issues {
						e.printf("%s\n", issue)
					}
				}
				return goerr.Wrap(err, "invalid view schema", goerr.V("id", id))
			}

			saved, err := store.Persist(ctx, id)
			if err != nil {
				return goerr.Wrap(err, "failed to save view", goerr.V("id", id))
			}
			e.printf("%s %s\n", store.State(), saved)
			return nil
		},
	}
}

func cmdAddField(e *env) *cli.Command {
	return &cli.Command{
		Name:      "add-field",
		Usage:     "Append a predefined field (text, email, number) to a stored view",
		ArgsUsage: "<id> <kind>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, kind := c.Args().Get(0), c.Args().Get(1)
			if id == "" || kind == "" {
				return goerr.New("usage: add-field <id> <kind>")
			}
			p, closeFn, err := e.provider(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			store := schema.NewStore(schema.WithProvider(p))
			if err := store.Load(ctx, id); err != nil {
				return goerr.Wrap(err, "failed to load view", goerr.V("id", id))
			}
			field, err := schema.NewToolbox(store, time.Now).Add(kind)
			if err != nil {
				return goerr.Wrap(err, "failed to add field", goerr.V("kind", kind))
			}
			if _, err := store.Persist(ctx, id); err != nil {
				return goerr.Wrap(err, "failed to save view", goerr.V("id", id))
			}
			e.printf("%s\n", field.Name)
			return nil
		},
	}
}
