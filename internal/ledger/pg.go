package ledger

import (
	"context"
	"database/sql"
	"time"
)

// PGStore persists records in Postgres.
type PGStore struct {
	db *sql.DB
}

// NewPGStore creates a Postgres-backed record store.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Insert(ctx context.Context, rec *Record) error {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO pointages (nom, jour, arrivee, depart, service, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, rec.Owner, rec.Day, rec.Arrival, nullable(rec.Departure), nullable(rec.Category), nullable(rec.Note))
	return row.Scan(&rec.ID, &rec.CreatedAt)
}

func (s *PGStore) ListDay(ctx context.Context, day, ownerFilter string) ([]Record, error) {
	query := `
		SELECT id, nom, jour, arrivee, depart, service, note, created_at
		FROM pointages WHERE jour = $1`
	args := []any{day}
	if ownerFilter != "" {
		query += ` AND nom = $2`
		args = append(args, ownerFilter)
	}
	query += ` ORDER BY arrivee ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PGStore) ListAll(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, nom, jour, arrivee, depart, service, note, created_at
		FROM pointages ORDER BY jour DESC, arrivee ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *PGStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pointages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) DailyStats(ctx context.Context) ([]DayStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT jour, COUNT(*) FROM pointages GROUP BY jour ORDER BY jour DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var stats []DayStat
	for rows.Next() {
		var day time.Time
		var stat DayStat
		if err := rows.Scan(&day, &stat.Count); err != nil {
			return nil, err
		}
		stat.Day = day.Format("2006-01-02")
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var res []Record
	for rows.Next() {
		var rec Record
		var day time.Time
		var depart, service, note sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Owner, &day, &rec.Arrival, &depart, &service, &note, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Day = day.Format("2006-01-02")
		rec.Departure = depart.String
		rec.Category = service.String
		rec.Note = note.String
		res = append(res, rec)
	}
	return res, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
