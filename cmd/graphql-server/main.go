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
	"github.com/tendant/help-center/pkg/helpcenter/config"
	"github.com/tendant/help-center/pkg/helpcenter/graphqlapi"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
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

	router, err := graphqlapi.NewRouter(graphqlapi.Config{
		Service:        svc,
		Limiter:        limiter,
		AllowedOrigins: cfg.Origins(),
		Logger:         logger,
	})
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("graphql server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down graphql server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("graphql server stopped")
}
