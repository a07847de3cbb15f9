// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"pvcflow/internal/core/id"
	"pvcflow/internal/infrastructure/storage/postgres"
	"pvcflow/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := seedAdminUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoTransactions(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@pvcflow.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, name, is_active, is_admin, roles, version)
		VALUES ($1, $2, $3, 'System Admin', true, true, '{admin}', 1)
	`, userID, adminEmail, string(passwordHash))
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", userID)
	return nil
}

func seedDemoTransactions(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM production_transactions`).Scan(&count); err != nil {
		return fmt.Errorf("count transactions: %w", err)
	}
	if count > 0 {
		log.Infow("transactions already present, skipping demo data", "count", count)
		return nil
	}

	type demoTx struct {
		product  string
		quantity float64
		unit     string
		daysAgo  int
		invoice  string
	}

	demo := []demoTx{
		{"PVC Resin Pipe Grade", 1200, "kg", 0, "INV-2026-00001"},
		{"PVC Fitting Compound", 450, "kg", 1, "INV-2026-00002"},
		{"PVC Resin Pipe Grade", 980, "kg", 3, "INV-2026-00003"},
		{"Rigid PVC Sheet", 300, "kg", 8, "INV-2026-00004"},
		{"PVC Cable Compound", 640, "kg", 15, "INV-2026-00005"},
	}

	now := time.Now().UTC()
	for _, d := range demo {
		_, err := pool.Exec(ctx, `
			INSERT INTO production_transactions
				(id, product_name, quantity, unit, date, stock_source, report_status, invoice_no, version)
			VALUES ($1, $2, $3, $4, $5, 'MANUFACTURED', 'PENDING', $6, 1)
		`, id.New(), d.product, d.quantity, d.unit, now.AddDate(0, 0, -d.daysAgo), d.invoice)
		if err != nil {
			return fmt.Errorf("insert demo transaction: %w", err)
		}
	}

	log.Infow("demo transactions created", "count", len(demo))
	return nil
}
