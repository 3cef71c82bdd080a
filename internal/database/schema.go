package database

import (
	"context"
	"fmt"

	"github.com/aquaflow/aquaflow/internal/config"
)

// EnsureSchema creates the application tables when they do not exist. The
// session table lives alongside the business schema but is independent of it:
// no foreign key, so stale sessions never block user management.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	stmts := postgresSchema
	if b.Dialect == config.DialectMySQL {
		stmts = mysqlSchema
	}
	for _, stmt := range stmts {
		if _, err := b.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		mobile        VARCHAR(20) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		email         VARCHAR(255),
		first_name    VARCHAR(100),
		last_name     VARCHAR(100),
		role          VARCHAR(20) NOT NULL DEFAULT 'technician',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		sid        VARCHAR(128) PRIMARY KEY,
		user_id    BIGINT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions (expires_at)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id             BIGSERIAL PRIMARY KEY,
		name           VARCHAR(255) NOT NULL,
		mobile         VARCHAR(20) NOT NULL UNIQUE,
		address        TEXT,
		purifier_model VARCHAR(100),
		monthly_rent   BIGINT NOT NULL DEFAULT 0,
		status         VARCHAR(20) NOT NULL DEFAULT 'active',
		notes          TEXT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS services (
		id             BIGSERIAL PRIMARY KEY,
		customer_id    BIGINT NOT NULL REFERENCES customers(id),
		service_type   VARCHAR(30) NOT NULL,
		scheduled_date DATE NOT NULL,
		status         VARCHAR(20) NOT NULL DEFAULT 'pending',
		assigned_to    BIGINT,
		notes          TEXT,
		completed_at   TIMESTAMPTZ,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_services_scheduled_date ON services (scheduled_date)`,
	`CREATE TABLE IF NOT EXISTS rent_dues (
		id          BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers(id),
		amount      BIGINT NOT NULL,
		due_date    DATE NOT NULL,
		status      VARCHAR(20) NOT NULL DEFAULT 'due',
		paid_at     TIMESTAMPTZ,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rent_dues_due_date ON rent_dues (due_date)`,
	`CREATE TABLE IF NOT EXISTS purchases (
		id            BIGSERIAL PRIMARY KEY,
		customer_name VARCHAR(255) NOT NULL,
		item          VARCHAR(255) NOT NULL,
		amount        BIGINT NOT NULL,
		purchase_date DATE NOT NULL,
		paid          BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id            BIGSERIAL PRIMARY KEY,
		name          VARCHAR(255) NOT NULL UNIQUE,
		category      VARCHAR(100),
		quantity      BIGINT NOT NULL DEFAULT 0,
		unit          VARCHAR(20) NOT NULL DEFAULT 'pcs',
		reorder_level BIGINT NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		mobile        VARCHAR(20) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		email         VARCHAR(255),
		first_name    VARCHAR(100),
		last_name     VARCHAR(100),
		role          VARCHAR(20) NOT NULL DEFAULT 'technician',
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		sid        VARCHAR(128) PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		expires_at DATETIME NOT NULL,
		KEY idx_sessions_expires_at (expires_at)
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name           VARCHAR(255) NOT NULL,
		mobile         VARCHAR(20) NOT NULL UNIQUE,
		address        TEXT,
		purifier_model VARCHAR(100),
		monthly_rent   BIGINT NOT NULL DEFAULT 0,
		status         VARCHAR(20) NOT NULL DEFAULT 'active',
		notes          TEXT,
		created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS services (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		customer_id    BIGINT UNSIGNED NOT NULL,
		service_type   VARCHAR(30) NOT NULL,
		scheduled_date DATE NOT NULL,
		status         VARCHAR(20) NOT NULL DEFAULT 'pending',
		assigned_to    BIGINT UNSIGNED,
		notes          TEXT,
		completed_at   DATETIME,
		created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_services_scheduled_date (scheduled_date),
		CONSTRAINT fk_services_customer FOREIGN KEY (customer_id) REFERENCES customers(id)
	)`,
	`CREATE TABLE IF NOT EXISTS rent_dues (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		customer_id BIGINT UNSIGNED NOT NULL,
		amount      BIGINT NOT NULL,
		due_date    DATE NOT NULL,
		status      VARCHAR(20) NOT NULL DEFAULT 'due',
		paid_at     DATETIME,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_rent_dues_due_date (due_date),
		CONSTRAINT fk_rent_dues_customer FOREIGN KEY (customer_id) REFERENCES customers(id)
	)`,
	`CREATE TABLE IF NOT EXISTS purchases (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		customer_name VARCHAR(255) NOT NULL,
		item          VARCHAR(255) NOT NULL,
		amount        BIGINT NOT NULL,
		purchase_date DATE NOT NULL,
		paid          BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(255) NOT NULL UNIQUE,
		category      VARCHAR(100),
		quantity      BIGINT NOT NULL DEFAULT 0,
		unit          VARCHAR(20) NOT NULL DEFAULT 'pcs',
		reorder_level BIGINT NOT NULL DEFAULT 0,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
}
