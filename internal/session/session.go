// Package session binds opaque tokens to server-side principals. The token
// is the only thing a client ever holds; identity and role never leave the
// server.
package session

import (
	"context"

	"github.com/chessman8212-ai/poinatge-app/internal/policy"
)

// CookieName is the session cookie used by the HTTP layer.
const CookieName = "pointage_session"

// Store is the abstraction over session backends.
type Store interface {
	// Establish binds the principal to a fresh opaque token.
	Establish(ctx context.Context, p policy.Principal) (string, error)
	// Current resolves a token to its principal. Missing, invalid, and
	// expired tokens all resolve to nil, nil; only backend faults error.
	Current(ctx context.Context, token string) (*policy.Principal, error)
	// Terminate invalidates the token. Idempotent.
	Terminate(ctx context.Context, token string) error
}
