package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/chessman8212-ai/poinatge-app/internal/policy"
)

// PGStore persists accounts in Postgres.
type PGStore struct {
	db *sql.DB
}

// NewPGStore creates a Postgres-backed account store.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, acct *Account) error {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, acct.Username, acct.PasswordHash, acct.Role)
	if err := row.Scan(&acct.ID, &acct.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateUsername
		}
		return err
	}
	return nil
}

func (s *PGStore) GetByUsername(ctx context.Context, username string) (*Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users WHERE username = $1
	`, username)
	return scanAccount(row)
}

func (s *PGStore) GetByID(ctx context.Context, id int64) (*Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users WHERE id = $1
	`, id)
	return scanAccount(row)
}

func (s *PGStore) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE LOWER(username) = LOWER($1)
	`, username).Scan(&count)
	return count > 0, err
}

func (s *PGStore) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users WHERE role = $1
	`, policy.RoleAdmin).Scan(&count)
	return count, err
}

// Delete removes the account inside one transaction. When the target is an
// admin the remaining admin rows are locked and re-counted in the same
// transaction, so two concurrent deletions cannot both observe "more than
// one admin" and leave zero behind.
func (s *PGStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var role string
	err = tx.QueryRowContext(ctx, `SELECT role FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if role == policy.RoleAdmin {
		rows, err := tx.QueryContext(ctx, `SELECT id FROM users WHERE role = $1 FOR UPDATE`, policy.RoleAdmin)
		if err != nil {
			return err
		}
		var admins int64
		for rows.Next() {
			var adminID int64
			if err := rows.Scan(&adminID); err != nil {
				rows.Close()
				return err
			}
			admins++
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PGStore) List(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Account
	for rows.Next() {
		var acct Account
		if err := rows.Scan(&acct.ID, &acct.Username, &acct.PasswordHash, &acct.Role, &acct.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, acct)
	}
	return res, rows.Err()
}

func scanAccount(row *sql.Row) (*Account, error) {
	var acct Account
	if err := row.Scan(&acct.ID, &acct.Username, &acct.PasswordHash, &acct.Role, &acct.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &acct, nil
}
