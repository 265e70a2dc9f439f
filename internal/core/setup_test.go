package core_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Clean and seed test DB
	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE items, transactions, products, categories, transaction_types,
			appointments, clients, technicians, systems, users RESTART IDENTITY CASCADE;

		INSERT INTO users (id, username, email, first_name, last_name, password_hash, role) VALUES
		(1, 'tester', 'tester@example.com', 'Test', 'User', 'x', 'admin');

		INSERT INTO transaction_types (id, name, is_inflow) VALUES
		(1, 'Purchase', true),
		(2, 'Sale', false);

		INSERT INTO categories (id, name, description) VALUES
		(1, 'Peripherals', 'Input and output devices');

		INSERT INTO products (id, name, description, category_id, responsible_user_id) VALUES
		(1, 'USB Receipt Printer', '80mm thermal', 1, 1),
		(2, 'Barcode Scanner', '', 1, 1);

		SELECT setval(pg_get_serial_sequence('users', 'id'), 10);
		SELECT setval(pg_get_serial_sequence('transaction_types', 'id'), 10);
		SELECT setval(pg_get_serial_sequence('categories', 'id'), 10);
		SELECT setval(pg_get_serial_sequence('products', 'id'), 10);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}
