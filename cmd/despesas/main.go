package main

import (
	"context"
	"os"
	"time"

	"despesas/internal/cache"
	"despesas/internal/cli"
	apphttp "despesas/internal/http"
	"despesas/internal/log"
)

func main() {
	app, err := cli.Bootstrap(context.Background(), log.ComponentApp)
	if err != nil {
		log.OrDefault(nil, log.ComponentApp).Error("Startup failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := app.Logger
	cfg := app.Config

	cacheManager := cache.NewManager(logger)
	cacheManager.Register(app.Service.Cache())
	cacheManager.StartCleanup(time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, app.Service, apphttp.Options{
		MaxUploadBytes:    cfg.MaxUploadBytes,
		RequestsPerMinute: cfg.RequestsPerMinute,
		TrustedProxies:    cfg.TrustedProxies,
		Logger:            logger,
	})

	ctx := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting despesas server",
		"port", cfg.Port,
		log.FieldStorageRoot, cfg.StorageRoot,
		"month_locale", cfg.MonthLocale)
	if err := srv.Start(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		app.Close()
		os.Exit(1)
	}

	<-ctx.Done()
	cacheManager.Stop()
	if err := app.Close(); err != nil {
		logger.Error("Close failed", log.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
