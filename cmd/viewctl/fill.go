package main

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-viewbuilder/internal/logging"
	"github.com/goliatone/go-viewbuilder/pkg/autoform"
	"github.com/goliatone/go-viewbuilder/pkg/tui"
)

// newDriver is replaced in tests.
var newDriver = func() tui.PromptDriver { return tui.NewSurveyDriver() }

func cmdFill(e *env) *cli.Command {
	return &cli.Command{
		Name:      "fill",
		Usage:     "Fill a view interactively and print the values as JSON",
		ArgsUsage: "[id]",
		Flags:     []cli.Flag{fileFlag},
		Action: func(ctx context.Context, c *cli.Command) error {
			view, err := e.loadView(ctx, c)
			if err != nil {
				return err
			}
			relations, err := e.file.RelationRegistry()
			if err != nil {
				return err
			}

			form := autoform.FromSchema(view,
				autoform.WithRelations(relations),
				autoform.WithValidateOnSubmit(true),
				autoform.WithLogger(logging.Default()),
			)
			session := tui.New(form, tui.WithPromptDriver(newDriver()), tui.WithLogger(logging.Default()))
			values, err := session.Run(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to fill form")
			}
			if errs := form.Validate(); len(errs) > 0 {
				for name, messages := range errs {
					for _, msg := range messages {
						e.printf("%s: %s\n", name, msg)
					}
				}
				return goerr.New("submitted values are invalid", goerr.V("fields", len(errs)))
			}

			out, err := tui.Encode(values)
			if err != nil {
				return goerr.Wrap(err, "failed to encode values")
			}
			e.printf("%s\n", out)
			return nil
		},
	}
}
