package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edvin/alertboard/internal/alerting"
	"github.com/edvin/alertboard/internal/api"
	"github.com/edvin/alertboard/internal/config"
	"github.com/edvin/alertboard/internal/logging"
	"github.com/edvin/alertboard/internal/metrics"
	"github.com/edvin/alertboard/internal/telemetry"
	"github.com/edvin/alertboard/internal/view"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("dashboard"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.InitTraceProvider(ctx, cfg.OTLPEndpoint, cfg.ServiceName, version)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	tlsConfig, err := cfg.BackendTLS()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure backend TLS")
	}
	if tlsConfig != nil {
		logger.Info().Msg("backend mTLS enabled")
	}
	backend := alerting.NewBackend(alerting.Config{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.BackendTimeout(),
		TLS:     tlsConfig,
	}, alerting.Endpoints{
		Incidents:  cfg.IncidentsEndpoint,
		Teams:      cfg.TeamsEndpoint,
		Annotation: cfg.AnnotationEndpoint,
	}, logger)

	// Dashboards fetch through our own proxy routes, never the backend directly.
	client := alerting.NewClient(alerting.Config{
		BaseURL: cfg.PublicURL,
		Timeout: cfg.BackendTimeout(),
	}, cfg.Location(), logger)

	sessions := view.NewSessions(func(team string) *view.Dashboard {
		return view.NewDashboard(team, client, backend, logger)
	}, cfg.SessionIdleTimeout, logger)
	if err := sessions.Start(view.DefaultSweepSchedule); err != nil {
		logger.Fatal().Err(err).Msg("failed to start session sweeper")
	}
	defer sessions.Stop()

	srv := api.NewServer(logger, api.Deps{
		Backend:  backend,
		Sessions: sessions,
		Teams:    client,
	}, cfg)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.BackendTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Str("backend", cfg.BackendURL).Msg("starting dashboard server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	var metricsServer *http.Server
	if cfg.MetricsListenAddr != "" {
		metricsServer = metrics.NewServer(cfg.MetricsListenAddr, backend.Ping)
		go func() {
			logger.Info().Str("addr", cfg.MetricsListenAddr).Msg("starting metrics server")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	if metricsServer != nil {
		metricsServer.Shutdown(shutdownCtx)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("failed to flush traces")
	}
}
