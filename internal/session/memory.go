package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chessman8212-ai/poinatge-app/internal/policy"
)

type memoryEntry struct {
	principal policy.Principal
	expiresAt time.Time
}

// MemoryStore is the in-process session backend for dev and tests.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (s *MemoryStore) Establish(ctx context.Context, p policy.Principal) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.sessions[token] = memoryEntry{principal: p, expiresAt: s.now().Add(s.ttl)}
	return token, nil
}

func (s *MemoryStore) Current(ctx context.Context, token string) (*policy.Principal, error) {
	if token == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.sessions, token)
		return nil, nil
	}
	p := entry.principal
	return &p, nil
}

func (s *MemoryStore) Terminate(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
