package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-viewbuilder/internal/config"
	"github.com/goliatone/go-viewbuilder/internal/logging"
	"github.com/goliatone/go-viewbuilder/pkg/model"
	"github.com/goliatone/go-viewbuilder/pkg/schema"
	"github.com/goliatone/go-viewbuilder/pkg/storage"
)

// env is shared by every command.
type env struct {
	out     io.Writer
	version string
	app     config.App
	logger  config.Logger
	storage config.Storage
	file    *config.AppConfig
}

func run(ctx context.Context, args []string, out io.Writer, version string) error {
	e := &env{out: out, version: version, file: &config.AppConfig{}}
	var closer func()

	var flags []cli.Flag
	flags = append(flags, e.app.Flags()...)
	flags = append(flags, e.logger.Flags()...)
	flags = append(flags, e.storage.Flags()...)

	app := &cli.Command{
		Name:    "viewctl",
		Usage:   "Manage, validate and render view schemas",
		Version: version,
		Writer:  out,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := e.logger.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			file, err := e.app.Configure()
			if err != nil {
				return ctx, err
			}
			e.file = file

			logging.Default().Debug("Starting viewctl", "logger", e.logger, "config", e.app.Path())
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdList(e),
			cmdShow(e),
			cmdSave(e),
			cmdDelete(e),
			cmdEdit(e),
			cmdAddField(e),
			cmdValidate(e),
			cmdRender(e),
			cmdFill(e),
			cmdImport(e),
			cmdWatch(e),
			cmdServe(e),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run viewctl", "error", err)
		return err
	}
	return nil
}

// provider opens the configured storage. The returned func closes it.
func (e *env) provider(ctx context.Context) (storage.Provider, func(), error) {
	p, err := e.storage.Configure(ctx, e.file.Storage)
	if err != nil {
		return nil, nil, err
	}
	return p, func() {
		if err := storage.Close(p); err != nil {
			logging.Default().Error("failed to close storage", "error", err)
		}
	}, nil
}

// readSchemaFile reads and validates a JSON or YAML schema file.
func readSchemaFile(path string) (*model.ViewSchema, error) {
	doc, err := schema.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read schema file", goerr.V("path", path))
	}
	res := doc.Validate()
	if !res.Success {
		return nil, goerr.Wrap(res.Error, "invalid schema file", goerr.V("path", path), goerr.V("issues", res.Issues))
	}
	return res.Data, nil
}

var fileFlag = &cli.StringFlag{
	Name:  "file",
	Usage: "Read the schema from a JSON or YAML file instead of storage",
}

// loadView resolves the schema for commands that accept either a stored id or
// --file.
func (e *env) loadView(ctx context.Context, c *cli.Command) (*model.ViewSchema, error) {
	if path := c.String("file"); path != "" {
		return readSchemaFile(path)
	}
	id := c.Args().First()
	if id == "" {
		return nil, goerr.New("view id or --file is required")
	}
	p, closeFn, err := e.provider(ctx)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	view, err := p.Load(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load view", goerr.V("id", id))
	}
	if view == nil {
		return nil, goerr.Wrap(schema.ErrViewNotFound, "failed to load view", goerr.V("id", id))
	}
	return view, nil
}

func (e *env) printJSON(v any) error {
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to write output")
	}
	return nil
}

func (e *env) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(e.out, format, args...); err != nil {
		logging.Default().Error("failed to write output", "error", err)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
