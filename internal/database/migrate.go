package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(255) NOT NULL,
		email         VARCHAR(255) NOT NULL,
		password_hash TEXT NOT NULL,
		role          ENUM('student','tutor','admin') NOT NULL DEFAULT 'student',
		oauth_id      VARCHAR(255) NULL,
		is_oauth_user BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		updated_at    DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		deleted_at    DATETIME(3) NULL,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT AUTO_INCREMENT PRIMARY KEY,
		token_hash CHAR(64) NOT NULL,
		user_id    BIGINT NOT NULL,
		has_access BOOLEAN NOT NULL DEFAULT TRUE,
		expires_at DATETIME(3) NOT NULL,
		created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
		deleted_at DATETIME(3) NULL,
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_user (user_id),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id)
			REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	// Rows here are only ever locked, never read; see repository.AcquireAdvisoryLock.
	`CREATE TABLE IF NOT EXISTS advisory_locks (
		lock_key BIGINT PRIMARY KEY
	) ENGINE=InnoDB`,
}

// Migrate creates the tables this service owns.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
