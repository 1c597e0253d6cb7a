package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults and applies the
// schema migration.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		return nil, err
	}
	return &DB{Client: db}, nil
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      VARCHAR(80) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role          VARCHAR(20) NOT NULL DEFAULT 'user',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username));

	CREATE TABLE IF NOT EXISTS pointages (
		id         BIGSERIAL PRIMARY KEY,
		nom        VARCHAR(120) NOT NULL,
		jour       DATE NOT NULL,
		arrivee    VARCHAR(5) NOT NULL,
		depart     VARCHAR(5),
		service    VARCHAR(20),
		note       TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_pointages_jour ON pointages (jour);
	CREATE INDEX IF NOT EXISTS idx_pointages_nom  ON pointages (nom);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

// Ready answers the readiness probe with a trivial count query.
func (d *DB) Ready(ctx context.Context) bool {
	if d == nil || d.Client == nil {
		return false
	}
	var n int64
	return d.Client.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n) == nil
}
