package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// ConnectPostgres opens a pooled PostgreSQL connection and makes sure the
// schema exists.
func ConnectPostgres(ctx context.Context, postgresURI string) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	if err = InitTables(ctx, db, Postgres); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
