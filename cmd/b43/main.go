package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"b43/internal/api"
	"b43/internal/cache"
	"b43/internal/cli"
	apphttp "b43/internal/http"
	"b43/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	backend := api.New(cfg.APIBaseURL, cfg.RequestTimeout)

	cacheManager := cache.NewManager()
	cacheManager.StartCleanup(time.Minute)

	svc := services.NewExpenseService(backend, cacheManager, cfg.CacheSize, cfg.CacheTTL)

	srv := apphttp.NewServer(":"+cfg.Port, svc, backend.BaseURL())
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
	})

	logger.Info("Starting b43 server", "port", cfg.Port, "api_base_url", cfg.APIBaseURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	<-done
	logger.Info("Server stopped gracefully")
}
