package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"budgetmanage/internal/cli"
	apphttp "budgetmanage/internal/http"
	"budgetmanage/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentHTTP)
	cfg := cli.LoadAndValidateConfig(logger)

	result := cli.InitBackend(context.Background(), logger, cfg)

	srv := apphttp.NewServer(":"+cfg.Port, result.Service, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
		Ready:              result.Ready,
	})
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting budget API", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
