// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS operation_receipts (
			receipt_id UUID PRIMARY KEY,
			operation VARCHAR(50) NOT NULL,
			caller VARCHAR(255) NOT NULL,
			target VARCHAR(255),
			amount VARCHAR(80),
			result VARCHAR(80),
			success BOOLEAN NOT NULL,
			error_message TEXT,
			operation_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_operation_receipts_timestamp ON operation_receipts(operation_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_operation_receipts_operation ON operation_receipts(operation);
		CREATE INDEX IF NOT EXISTS idx_operation_receipts_caller ON operation_receipts(caller);

		CREATE TABLE IF NOT EXISTS vault_snapshots (
			snapshot_id SERIAL PRIMARY KEY,
			cycle_number INTEGER NOT NULL,
			snapshot_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,

			-- Share ledger
			total_shares VARCHAR(80) NOT NULL,
			total_assets VARCHAR(80) NOT NULL,
			deposit_fee_bps BIGINT NOT NULL,
			withdrawal_fee_bps BIGINT NOT NULL,
			performance_fee_bps BIGINT NOT NULL,
			fee_recipient VARCHAR(255),
			min_liquidity_reserve VARCHAR(80) NOT NULL,
			holders JSONB,

			-- Interest ledger
			total_principal VARCHAR(80) NOT NULL,
			annual_rate_bps BIGINT NOT NULL,
			last_accrual_instant BIGINT NOT NULL,
			pool_accounts JSONB
		);
		CREATE INDEX IF NOT EXISTS idx_vault_snapshots_timestamp ON vault_snapshots(snapshot_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_vault_snapshots_cycle ON vault_snapshots(cycle_number DESC);
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
