package ledger

import "context"

// Store persists pointage records.
type Store interface {
	// Insert writes the record and fills in ID and CreatedAt.
	Insert(ctx context.Context, rec *Record) error
	// ListDay returns records for one day ordered by arrival ascending.
	// A non-empty ownerFilter restricts rows to that owner inside the query.
	ListDay(ctx context.Context, day, ownerFilter string) ([]Record, error)
	// ListAll returns every record, day descending then arrival ascending.
	ListAll(ctx context.Context) ([]Record, error)
	// Delete removes a record permanently. Returns ErrNotFound when absent.
	Delete(ctx context.Context, id int64) error
	// DailyStats returns per-day record counts, day descending.
	DailyStats(ctx context.Context) ([]DayStat, error)
}
