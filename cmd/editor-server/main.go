package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tendant/help-center/pkg/helpcenter/api"
	"github.com/tendant/help-center/pkg/helpcenter/config"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if cfg.EditorKey == "" {
		logger.Warn("no EDITOR_KEY configured, editor API will reject all requests")
	}
	if cfg.DatabaseURL != "" {
		if err := config.PingPostgres(cfg.DatabaseURL); err != nil {
			logger.Error("database unreachable", "error", err)
			os.Exit(1)
		}
	}

	svc, err := cfg.BuildService(logger)
	if err != nil {
		logger.Error("failed to build service", "error", err)
		os.Exit(1)
	}

	limiter, err := cfg.BuildLimiter(context.Background(), logger)
	if err != nil {
		logger.Error("failed to build rate limiter", "error", err)
		os.Exit(1)
	}

	router := api.NewRouter(api.Config{
		Service:   svc,
		Limiter:   limiter,
		EditorKey: cfg.EditorKey,
		Logger:    logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Uploads can be slow on bad links; keep write generous.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("editor server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down editor server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("editor server stopped")
}
