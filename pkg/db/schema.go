// pkg/db/schema.go
package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaStatements create all tables required by the application. Statements
// are idempotent so the bootstrap can run on every startup.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS plans (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) UNIQUE NOT NULL,
		price NUMERIC(20, 4) NOT NULL DEFAULT 0,
		currency VARCHAR(10) NOT NULL DEFAULT 'INR',
		captcha_limit INT NOT NULL DEFAULT 0,
		validity_days INT NOT NULL DEFAULT 0,
		earnings_per_captcha NUMERIC(20, 4) NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		plan_id BIGINT REFERENCES plans(id),
		plan_expiry TIMESTAMPTZ,
		total_captchas_solved BIGINT NOT NULL DEFAULT 0,
		total_earnings NUMERIC(20, 4) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS wallets (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		balance NUMERIC(20, 4) NOT NULL DEFAULT 0 CHECK (balance >= 0),
		total_earned NUMERIC(20, 4) NOT NULL DEFAULT 0 CHECK (total_earned >= 0),
		total_withdrawn NUMERIC(20, 4) NOT NULL DEFAULT 0 CHECK (total_withdrawn >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		wallet_id BIGINT NOT NULL REFERENCES wallets(id) ON DELETE CASCADE,
		type VARCHAR(10) NOT NULL,
		amount NUMERIC(20, 4) NOT NULL CHECK (amount > 0),
		description TEXT NOT NULL DEFAULT '',
		reference_id TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'completed',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_user_created
		ON transactions (user_id, created_at DESC);`,
	`CREATE TABLE IF NOT EXISTS withdrawals (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		amount NUMERIC(20, 4) NOT NULL CHECK (amount > 0),
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		account_holder VARCHAR(100) NOT NULL DEFAULT '',
		account_number VARCHAR(50) NOT NULL DEFAULT '',
		bank_name VARCHAR(100) NOT NULL DEFAULT '',
		ifsc_code VARCHAR(20) NOT NULL DEFAULT '',
		upi_id VARCHAR(100) NOT NULL DEFAULT '',
		remarks TEXT NOT NULL DEFAULT '',
		approved_by BIGINT REFERENCES users(id),
		approval_date TIMESTAMPTZ,
		completion_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_withdrawals_user_created
		ON withdrawals (user_id, created_at DESC);`,
	`CREATE TABLE IF NOT EXISTS payments (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		plan_id BIGINT NOT NULL REFERENCES plans(id),
		amount NUMERIC(20, 4) NOT NULL,
		currency VARCHAR(10) NOT NULL DEFAULT 'INR',
		order_id VARCHAR(100) UNIQUE NOT NULL,
		gateway_ref TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'initiated',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS proof_redemptions (
		proof_id TEXT PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		redeemed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
}

// EnsureSchema creates the application tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
