package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"phishgraph/internal/api"
	"phishgraph/internal/api/handler/v1handler"
	"phishgraph/internal/config"
	"phishgraph/pkg/logger"
	"phishgraph/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config) func(ctx context.Context) {
	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal(ctx, "could not register metrics", zap.Error(err))
	}

	s, err := newScanner(cfg, m)
	if err != nil {
		logger.Fatal(ctx, "could not create scanner", zap.Error(err))
	}

	server, err := api.NewServer(api.Deps{
		Deps:    v1handler.Deps{Scanner: s},
		Metrics: m,
	}, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the API server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			stopWebserver := setupServer(ctx, cfg)

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
		},
	}

	return cmd
}
