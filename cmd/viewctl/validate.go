package main

import (
	"context"
	"runtime"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-viewbuilder/pkg/schema"
)

var errInvalidFiles = goerr.New("one or more schema files are invalid")

func cmdValidate(e *env) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate schema files",
		ArgsUsage: "<file>...",
		Action: func(ctx context.Context, c *cli.Command) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return goerr.New("at least one file is required")
			}

			results := make([]schema.Result, len(paths))
			readErrs := make([]error, len(paths))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(runtime.GOMAXPROCS(0))
			for i, path := range paths {
				g.Go(func() error {
					if err := gctx.Err(); err != nil {
						return err
					}
					doc, err := schema.ReadFile(path)
					if err != nil {
						readErrs[i] = err
						return nil
					}
					results[i] = doc.Validate()
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return goerr.Wrap(err, "validation interrupted")
			}

			failed := 0
			for i, path := range paths {
				switch {
				case readErrs[i] != nil:
					failed++
					e.printf("FAIL %s: %v\n", path, readErrs[i])
				case !results[i].Success:
					failed++
					e.printf("FAIL %s\n", path)
					for _, issue := range results[i].Issues {
						e.printf("  %s\n", issue)
					}
				default:
					e.printf("ok   %s (%d fields)\n", path, len(results[i].Data.Fields))
				}
			}
			if failed > 0 {
				return goerr.Wrap(errInvalidFiles, "validation failed", goerr.V("failed", failed))
			}
			return nil
		},
	}
}
