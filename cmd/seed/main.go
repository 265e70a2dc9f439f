// seed is a one-shot tool that loads the baseline reference data: the two
// stock transaction types and an initial admin user. Existing rows are left
// untouched, so re-running is safe.
//
// Usage: ADMIN_PASSWORD=... go run ./cmd/seed
package main

import (
	"context"
	"os"

	"stocktrack/internal/config"
	"stocktrack/internal/db"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	log.Info().Msg("Seeding transaction types...")
	_, err = tx.Exec(ctx, `
		INSERT INTO transaction_types (name, description, is_inflow)
		VALUES
			('Entrada', 'Stock inflow', true),
			('Saida', 'Stock outflow', false)
		ON CONFLICT (name) DO NOTHING
	`)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed transaction types")
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Fatal().Msg("ADMIN_PASSWORD is not set")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash admin password")
	}

	log.Info().Msg("Seeding admin user...")
	_, err = tx.Exec(ctx, `
		INSERT INTO users (username, email, first_name, last_name, password_hash, role)
		VALUES ('admin', 'admin@localhost', 'Admin', '', $1, 'admin')
		ON CONFLICT (username) DO NOTHING
	`, string(hash))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admin user")
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to commit seed")
	}
	log.Info().Msg("Seed complete")
}
