package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/acme/vapi-caller/internal/api"
	"github.com/acme/vapi-caller/internal/app"
	"github.com/acme/vapi-caller/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to configuration file (optional)")
	flag.Parse()

	container, err := app.Build(ctx, *configPath)
	if err != nil {
		log.Fatalf("failed to bootstrap application: %v", err)
	}
	defer container.Close(context.Background())

	lg := container.Logger
	cfg := container.Config

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.App, "api")
	if err != nil {
		lg.Fatal("telemetry setup failed", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			lg.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	if err := container.EnsureTopics(ctx); err != nil {
		lg.Warn("ensure kafka topics failed", zap.Error(err))
	}

	server := api.NewServer(cfg.HTTP, container.HandlerSet())

	lg.Info("starting api server", zap.Int("port", cfg.HTTP.Port), zap.String("env", cfg.App.Env))
	if err := server.Start(ctx); err != nil {
		lg.Error("server terminated", zap.Error(err))
	}
}
