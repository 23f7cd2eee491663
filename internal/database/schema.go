package database

import (
	"context"
	"database/sql"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		login_id VARCHAR(64) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,

	// One entry per user and day. The unique constraint backs the
	// read-then-write upsert against concurrent submissions.
	`CREATE TABLE IF NOT EXISTS emotions (
		id UUID PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		emotion VARCHAR(16) NOT NULL CHECK (emotion IN ('very-happy', 'happy', 'neutral', 'sad', 'angry')),
		reason TEXT,
		date VARCHAR(10) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, date)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_users_login_id ON users(login_id)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		login_id TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS emotions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		emotion TEXT NOT NULL CHECK (emotion IN ('very-happy', 'happy', 'neutral', 'sad', 'angry')),
		reason TEXT,
		date TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, date)
	)`,
}

// InitTables creates all necessary tables if they don't exist.
func InitTables(ctx context.Context, db *sql.DB, d Dialect) error {
	queries := postgresSchema
	if d == SQLite {
		queries = sqliteSchema
	}
	for _, query := range queries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("init %s schema: %w", d, err)
		}
	}
	return nil
}
