package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-viewbuilder/internal/config"
	"github.com/goliatone/go-viewbuilder/internal/logging"
	"github.com/goliatone/go-viewbuilder/internal/server"
	"github.com/goliatone/go-viewbuilder/pkg/boundary"
	"github.com/goliatone/go-viewbuilder/pkg/i18n"
	"github.com/goliatone/go-viewbuilder/pkg/render/html"
)

func cmdServe(e *env) *cli.Command {
	var serverCfg config.Server
	var sentryCfg config.Sentry
	var watchDir string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "watch",
			Usage:       "Directory of schema files to keep in sync with storage",
			Sources:     cli.EnvVars("VIEWBUILDER_WATCH"),
			Destination: &watchDir,
		},
	}
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			p, closeFn, err := e.provider(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize storage")
			}
			defer closeFn()

			relations, err := e.file.RelationRegistry()
			if err != nil {
				return goerr.Wrap(err, "failed to configure relation sources")
			}

			reporter, flush, err := sentryCfg.Configure(e.version)
			if err != nil {
				return err
			}
			defer flush()

			renderer, err := html.New(html.WithBoundary(boundary.New(
				boundary.WithLogger(logging.Default()),
				boundary.WithReporter(reporter),
			)))
			if err != nil {
				return goerr.Wrap(err, "failed to create renderer")
			}

			opts := []server.Options{
				server.WithRelations(relations),
				server.WithRenderer(renderer),
			}
			if dir := e.file.I18n.Dir; dir != "" {
				catalog := i18n.NewCatalog()
				if err := catalog.LoadFS(os.DirFS(dir)); err != nil {
					return goerr.Wrap(err, "failed to load translations", goerr.V("dir", dir))
				}
				opts = append(opts, server.WithTranslator(catalog, serverCfg.Locale(e.file.I18n)))
				logging.Default().Info("Translations loaded", "dir", dir, "locales", catalog.Locales())
			}

			handler, err := server.New(p, opts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			if watchDir != "" {
				stopWatch, err := startWatch(ctx, watchDir, p)
				if err != nil {
					return goerr.Wrap(err, "failed to watch schema directory")
				}
				defer stopWatch()
			}

			addr := serverCfg.Addr(e.file.Server)
			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server")
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logging.Default().Info("Shutting down HTTP server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout())
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				logging.Default().Info("Server shutdown completed")
				return nil
			})
			return g.Wait()
		},
	}
}
