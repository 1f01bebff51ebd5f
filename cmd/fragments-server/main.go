package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"github.com/tendant/simple-fragments/pkg/fragments/api"
	"github.com/tendant/simple-fragments/pkg/fragments/config"
	"github.com/tendant/simple-fragments/pkg/fragments/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "fragments-server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	flags := pflag.NewFlagSet("fragments-server", pflag.ContinueOnError)
	configFile := flags.StringP("config", "c", "", "YAML config file, applied before the environment")
	port := flags.StringP("port", "p", "", "listen port (overrides PORT)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	opts := []config.Option{config.WithFile(*configFile), config.WithEnv()}
	if *port != "" {
		opts = append(opts, config.WithPort(*port))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := cfg.NewLogger(stdout)
	slog.SetDefault(logger)

	server, cleanup, err := newServer(ctx, cfg, logger, prometheus.DefaultRegisterer, promhttp.Handler())
	if err != nil {
		return err
	}
	defer cleanup()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Fragments server starting",
			"port", cfg.Port, "database", cfg.DatabaseType, "storage", cfg.Storage.Type, "auth", cfg.Auth.Mode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exiting")
	return nil
}

// newServer wires the service, metrics and router into an http.Server
func newServer(ctx context.Context, cfg *config.ServerConfig, logger *slog.Logger, reg prometheus.Registerer, metricsHandler http.Handler) (*http.Server, func(), error) {
	sink, err := metrics.NewEventSink(reg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	svc, cleanup, err := cfg.BuildService(ctx, logger, sink)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build service: %w", err)
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	requestLogger := httplog.NewLogger("fragments", httplog.Options{
		JSON:     cfg.LogFormat == "json",
		LogLevel: level,
		Concise:  true,
		Tags:     map[string]string{"env": cfg.Environment},
	})

	router := api.NewRouter(svc, api.RouterConfig{
		APIURL:        cfg.APIURL,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		Auth:          api.NewAuthenticator(cfg.Auth.Mode, cfg.Auth.BasicUsers, cfg.Auth.JWTSecret),
		RequestLogger: requestLogger,
		Metrics:       metricsHandler,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server, cleanup, nil
}
