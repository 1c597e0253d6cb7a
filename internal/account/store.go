package account

import "context"

// Store persists accounts. Lookup by username is exact-match; duplicate
// detection is case-insensitive so near-identical usernames cannot coexist.
type Store interface {
	// Create inserts the account and fills in ID and CreatedAt. Returns
	// ErrDuplicateUsername on a case-insensitive collision.
	Create(ctx context.Context, acct *Account) error
	// GetByUsername returns nil, nil when no such account exists.
	GetByUsername(ctx context.Context, username string) (*Account, error)
	GetByID(ctx context.Context, id int64) (*Account, error)
	// UsernameTaken reports a case-insensitive username collision.
	UsernameTaken(ctx context.Context, username string) (bool, error)
	CountAdmins(ctx context.Context) (int64, error)
	// Delete removes the account. The last-admin guard is re-checked inside
	// the same transaction as the delete. Returns ErrNotFound or ErrLastAdmin.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Account, error)
}
