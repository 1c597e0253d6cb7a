package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chessman8212-ai/poinatge-app/internal/policy"
)

func TestEstablishAndCurrent(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	token, err := store.Establish(ctx, policy.Principal{ID: 1, Username: "alice", Role: policy.RoleUser})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	p, err := store.Current(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, "alice", p.Username)
	require.Equal(t, policy.RoleUser, p.Role)

	// Tokens are unique per session.
	other, err := store.Establish(ctx, policy.Principal{ID: 1, Username: "alice", Role: policy.RoleUser})
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}

func TestCurrentUnknownToken(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	p, err := store.Current(ctx, "")
	require.NoError(t, err)
	require.Nil(t, p)

	p, err = store.Current(ctx, "no-such-token")
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestExpiry(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	token, err := store.Establish(ctx, policy.Principal{ID: 1, Username: "alice", Role: policy.RoleUser})
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	p, err := store.Current(ctx, token)
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestTerminateIdempotent(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	token, err := store.Establish(ctx, policy.Principal{ID: 1, Username: "alice", Role: policy.RoleUser})
	require.NoError(t, err)

	require.NoError(t, store.Terminate(ctx, token))
	p, err := store.Current(ctx, token)
	require.NoError(t, err)
	require.Nil(t, p)

	// Terminating an already-invalid session is a no-op.
	require.NoError(t, store.Terminate(ctx, token))
	require.NoError(t, store.Terminate(ctx, "never-existed"))
}
