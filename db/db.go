package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // Import postgres driver
)

func Connect(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Warn("failed to close database handle after ping error", slog.Any("error", closeErr))
		}
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, nil
}

// schema is idempotent; the unique index enforces one standing per
// (name, series) pair regardless of letter case.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS player_standings (
		id      uuid PRIMARY KEY,
		name    text NOT NULL,
		series  text NOT NULL,
		points  bigint NOT NULL DEFAULT 0 CHECK (points >= 0),
		results text NOT NULL DEFAULT '',
		updated timestamptz NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS player_standings_identity_idx
		ON player_standings (lower(name), lower(series))`,
	`CREATE INDEX IF NOT EXISTS player_standings_series_idx
		ON player_standings (lower(series))`,
}

// Migrate applies the schema inside one transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin transaction: %w", err)
	}
	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit: %w", err)
	}
	return nil
}
