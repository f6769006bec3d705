package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-viewbuilder/internal/logging"
	"github.com/goliatone/go-viewbuilder/internal/watch"
	"github.com/goliatone/go-viewbuilder/pkg/storage"
)

func cmdWatch(e *env) *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Re-validate schema files in a directory as they change",
		ArgsUsage: "<dir>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "sync", Usage: "Store valid files under their file name"},
			&cli.DurationFlag{Name: "debounce", Value: watch.DefaultDebounce, Usage: "Quiet period before validating"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			dir := c.Args().First()
			if dir == "" {
				return goerr.New("directory is required")
			}

			opts := []watch.Option{
				watch.WithDebounce(c.Duration("debounce")),
				watch.WithLogger(logging.Default()),
			}
			if c.Bool("sync") {
				p, closeFn, err := e.provider(ctx)
				if err != nil {
					return err
				}
				defer closeFn()
				opts = append(opts, watch.WithProvider(p))
			}
			return watchDir(ctx, dir, opts...)
		},
	}
}

// watchDir blocks until ctx ends or the process is signalled.
func watchDir(ctx context.Context, dir string, opts ...watch.Option) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(dir, opts...)
	if err != nil {
		return err
	}
	defer w.Stop()
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// startWatch runs a watcher alongside another long-running command. When dir
// is the storage directory itself, files are only validated.
func startWatch(ctx context.Context, dir string, p storage.Provider) (func(), error) {
	w, err := watch.New(dir, watch.WithProvider(p), watch.WithLogger(logging.Default()))
	if errors.Is(err, watch.ErrWatchingStorage) {
		logging.Default().Warn("watch directory is the storage directory, sync disabled", "dir", dir)
		w, err = watch.New(dir, watch.WithLogger(logging.Default()))
	}
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return nil, err
	}
	return w.Stop, nil
}
