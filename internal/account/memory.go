package account

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chessman8212-ai/poinatge-app/internal/policy"
)

// MemoryStore is the in-process backend for dev and tests.
type MemoryStore struct {
	mu       sync.Mutex
	seq      int64
	accounts map[int64]Account
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[int64]Account)}
}

func (s *MemoryStore) Create(ctx context.Context, acct *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if strings.EqualFold(existing.Username, acct.Username) {
			return ErrDuplicateUsername
		}
	}
	s.seq++
	acct.ID = s.seq
	acct.CreatedAt = time.Now().UTC()
	s.accounts[acct.ID] = *acct
	return nil
}

func (s *MemoryStore) GetByUsername(ctx context.Context, username string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range s.accounts {
		if acct.Username == username {
			copied := acct
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id int64) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct, ok := s.accounts[id]; ok {
		copied := acct
		return &copied, nil
	}
	return nil, nil
}

func (s *MemoryStore) UsernameTaken(ctx context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acct := range s.accounts {
		if strings.EqualFold(acct.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) CountAdmins(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countAdminsLocked(), nil
}

func (s *MemoryStore) countAdminsLocked() int64 {
	var count int64
	for _, acct := range s.accounts {
		if acct.Role == policy.RoleAdmin {
			count++
		}
	}
	return count
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[id]
	if !ok {
		return ErrNotFound
	}
	if acct.Role == policy.RoleAdmin && s.countAdminsLocked() <= 1 {
		return ErrLastAdmin
	}
	delete(s.accounts, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]Account, 0, len(s.accounts))
	for _, acct := range s.accounts {
		res = append(res, acct)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Username < res[j].Username })
	return res, nil
}
