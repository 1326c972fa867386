package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ds124wfegd/voucher-reminder/config"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Successfully connected to PostgreSQL")
	return db, nil
}

// RunMigrations creates the collections the reminder sweep reads and writes.
// Every statement is idempotent.
func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(128) PRIMARY KEY,
			email VARCHAR(255),
			name VARCHAR(255),
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS establishments (
			id VARCHAR(128) PRIMARY KEY,
			user_id VARCHAR(128),
			name VARCHAR(255),
			voucher_usage_conditions TEXT,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS vouchers (
			id VARCHAR(128) PRIMARY KEY,
			code VARCHAR(64) NOT NULL,
			value NUMERIC(10, 2),
			expiry_date TIMESTAMPTZ,
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			last_reminder_sent TIMESTAMPTZ,
			last_reminder_type VARCHAR(20),
			days_until_expiry_at_reminder INTEGER,
			buyer_id VARCHAR(128),
			boutique_id VARCHAR(128),
			shop_id VARCHAR(128),
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS mail (
			id UUID PRIMARY KEY,
			recipient VARCHAR(255) NOT NULL,
			subject TEXT NOT NULL,
			html TEXT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_vouchers_status_expiry ON vouchers(status, expiry_date)`,
		`CREATE INDEX IF NOT EXISTS idx_establishments_user_id ON establishments(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_mail_status ON mail(status)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}
