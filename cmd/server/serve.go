package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"grunnlag/internal/grunnlag/handler"
	"grunnlag/internal/platform/httpserver"
	platformmetrics "grunnlag/internal/platform/metrics"
)

func newServeCmd() *cobra.Command {
	var (
		withRelay bool
		migrate   bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the grunnlag HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), withRelay, migrate)
		},
	}
	cmd.Flags().BoolVar(&withRelay, "relay", true, "Run the outbox relay in-process when Kafka is configured")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply database migrations before serving")
	return cmd
}

func runServe(ctx context.Context, withRelay, migrate bool) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if migrate {
		if err := a.migrate(ctx); err != nil {
			return err
		}
	}
	if err := a.connectRedis(ctx); err != nil {
		return err
	}
	if err := a.connectKafka(); err != nil {
		return err
	}

	h := handler.New(a.service(), a.logger, platformmetrics.New())
	srv := httpserver.New(a.cfg.Server.Addr, httpserver.NewRouter(a.healthChecks(), a.cfg.Server.AllowedOrigins, h))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.InfoContext(gctx, "starting grunnlag", "addr", a.cfg.Server.Addr, "store", a.cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		a.logger.InfoContext(shutdownCtx, "shutting down grunnlag")
		return srv.Shutdown(shutdownCtx)
	})
	if withRelay && a.kafka != nil {
		relay, err := a.relay()
		if err != nil {
			return err
		}
		g.Go(func() error {
			return relay.Run(gctx)
		})
	}
	return g.Wait()
}
