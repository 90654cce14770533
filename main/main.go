package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"

	"github.com/Nazarious-ucu/watchface-weather-relay/internal/app"
	"github.com/Nazarious-ucu/watchface-weather-relay/internal/config"
	"github.com/Nazarious-ucu/watchface-weather-relay/internal/services/metrics"
	"github.com/Nazarious-ucu/watchface-weather-relay/pkg/logger"
)

const serviceName = "watchface_relay"

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Panicf("failed to load configuration: %v", err)
	}

	l := logger.NewLogger(cfg.LogsPath, serviceName, logger.ParseLevel(cfg.LogLevel))
	m := metrics.NewMetrics(serviceName)

	application := app.New(*cfg, l, m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		l.Fatal().Err(err).Msg("watchface relay failed")
	}
}
