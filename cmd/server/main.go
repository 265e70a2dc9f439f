package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	webAdapter "stocktrack/internal/adapters/web"
	"stocktrack/internal/app"
	"stocktrack/internal/config"
	"stocktrack/internal/core"
	"stocktrack/internal/db"
	"stocktrack/internal/eventbus"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	var publisher *eventbus.Publisher
	if cfg.RabbitMQURL != "" {
		publisher, err = eventbus.NewPublisher(cfg.RabbitMQURL, cfg.EventExchangeName, cfg.EventRoutingKey)
		if err != nil {
			// Event publishing is best-effort; the server still runs without it.
			log.Warn().Err(err).Msg("RabbitMQ unavailable, stock movement events disabled")
			publisher = nil
		}
		defer publisher.Close()
	}

	ledger := core.NewUnitLedger(pool)
	svc := app.NewAppService(
		ledger,
		core.NewTransactionService(pool, ledger),
		core.NewCatalogService(pool),
		core.NewReportingService(pool),
		core.NewUserService(pool),
		core.NewClientService(pool),
		core.NewScheduleService(pool),
		publisher,
	)

	handler := webAdapter.NewHandler(svc, cfg.AllowedOrigins, cfg.JWTSecret)

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	log.Info().Str("app", cfg.AppName).Str("addr", addr).Msg("Server starting")
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Error().Err(err).Msg("Server stopped")
		os.Exit(1)
	}
}
