// @title Book Review API
// @version 1.0
// @description Books, reviews and derived rating aggregates.
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookreview/internal/app"
	"bookreview/internal/auth"
	"bookreview/internal/config"
	"bookreview/internal/httpx"
	"bookreview/internal/platform/logging"
	"bookreview/internal/platform/telemetry"
)

const (
	version         = "1.0.0"
	revocationSweep = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.Setup(os.Stdout, cfg.LogLevel, cfg.Development())
	httpx.SetDevelopment(cfg.Development())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, version)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	repos, err := app.OpenRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Close()

	services := app.NewServices(repos, cfg, logger)
	handler, closeRouter := newRouter(cfg, services, repos.Ping)
	defer closeRouter()

	go purgeRevokedTokens(ctx, services.Auth, revocationSweep, logger)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Addr, "env", cfg.Env, "store", cfg.StoreDriver)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// purgeRevokedTokens drops expired revocations every interval until ctx ends.
func purgeRevokedTokens(ctx context.Context, svc *auth.Service, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		n, err := svc.PurgeRevoked(ctx)
		if err != nil {
			logger.WarnContext(ctx, "purge revoked tokens", "error", err)
			continue
		}
		if n > 0 {
			logger.DebugContext(ctx, "purged revoked tokens", "count", n)
		}
	}
}
