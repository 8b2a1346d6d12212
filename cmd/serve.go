package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"uribeacon/internal/advertiser"
	"uribeacon/internal/api"
	"uribeacon/internal/api/handler/v1handler"
	"uribeacon/internal/config"
	"uribeacon/pkg/logger"
	"uribeacon/pkg/metrics"
	"uribeacon/pkg/urlcodec"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server := api.NewServer(deps, api.NewOptions(cfg))

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

// setupBroadcaster starts the broadcaster in the background. The returned
// function waits for it to stop after ctx is done.
func setupBroadcaster(ctx context.Context, b *advertiser.Broadcaster) func() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info(ctx, "starting broadcaster...")
		if err := b.Run(ctx); err != nil {
			logger.Error(ctx, "broadcaster stopped", zap.Error(err))
		}
	}()

	return func() {
		logger.Info(ctx, "waiting for broadcaster to stop...")
		<-done
	}
}

func serveCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the API server and the broadcaster",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := a.cfg
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mp, err := metrics.NewMeterProvider(prometheus.DefaultRegisterer)
			if err != nil {
				logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
			}
			codecMetrics, err := metrics.NewCodec(mp)
			if err != nil {
				logger.Fatal(ctx, "could not create codec metrics", zap.Error(err))
			}
			beaconMetrics, err := metrics.NewBeacon(mp)
			if err != nil {
				logger.Fatal(ctx, "could not create beacon metrics", zap.Error(err))
			}

			opts, err := advertiser.NewOptions(cfg)
			if err != nil {
				logger.Fatal(ctx, "invalid beacon config", zap.Error(err))
			}
			opts.Metrics = beaconMetrics
			broadcaster, err := advertiser.New(advertiser.NewLogAdvertiser(logger.Slog(ctx)), urlcodec.Default, opts)
			if err != nil {
				logger.Fatal(ctx, "could not create broadcaster", zap.Error(err))
			}

			stopWebserver := setupServer(ctx, cfg, api.Deps{Deps: v1handler.Deps{
				Codec:   urlcodec.Default,
				Beacon:  broadcaster,
				Metrics: codecMetrics,
			}})
			waitBroadcaster := setupBroadcaster(ctx, broadcaster)

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
			waitBroadcaster()
			if err := mp.Shutdown(shutdownCtx); err != nil {
				logger.Warn(ctx, "could not shut down meter provider", zap.Error(err))
			}
		},
	}

	return cmd
}
