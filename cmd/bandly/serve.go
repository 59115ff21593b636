package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bandly-go/internal/app"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), opts)
		},
	}
}

func serve(ctx context.Context, opts *rootOptions) error {
	log := opts.log
	log.Info("app: starting")

	application, err := app.New(ctx, opts.cfg, log)
	if err != nil {
		log.Critical("app: init failed", "err", err)
		return err
	}

	srv := application.HTTPServer()
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("http: listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Critical("http: server failed", "addr", srv.Addr, "err", err)
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("app: shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http: graceful shutdown failed", "err", err)
			return err
		}
		return nil
	})

	runErr := group.Wait()

	if err := application.Close(); err != nil {
		log.Error("app: close failed", "err", err)
		if runErr == nil {
			runErr = err
		}
	}

	if runErr == nil {
		log.Info("app: stopped")
	}
	return runErr
}
