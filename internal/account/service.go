package account

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/chessman8212-ai/poinatge-app/internal/policy"
)

// Service owns account provisioning, credential verification, and guarded
// deletion.
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Provision creates an account with a bcrypt-hashed password. Usernames
// colliding case-insensitively with an existing account are rejected.
func (s *Service) Provision(ctx context.Context, username, password, role string) (*Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username required")
	}
	if password == "" {
		return nil, errors.New("password required")
	}
	if !ValidRole(role) {
		return nil, ErrInvalidRole
	}

	taken, err := s.store.UsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateUsername
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	acct := &Account{Username: username, PasswordHash: hash, Role: role}
	if err := s.store.Create(ctx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// dummyHash absorbs a bcrypt comparison when the username is unknown, so
// failure latency does not reveal whether the account exists.
var dummyHash, _ = HashPassword("pointage-dummy-credential")

// Verify checks a username/password pair. The failure is uniform: an unknown
// username and a wrong password are indistinguishable to the caller, in both
// error value and bcrypt cost.
func (s *Service) Verify(ctx context.Context, username, password string) (*Account, error) {
	acct, err := s.store.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if acct == nil {
		CheckPasswordHash(password, dummyHash)
		return nil, ErrInvalidCredentials
	}
	if !CheckPasswordHash(password, acct.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return acct, nil
}

// BootstrapAdmin ensures an admin account exists at startup. It is
// idempotent: a second run with the same inputs does nothing. When the
// default username is already held by a non-admin account the bootstrap is
// skipped rather than silently escalating that account's privileges.
func (s *Service) BootstrapAdmin(ctx context.Context, username, password string) error {
	admins, err := s.store.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if admins > 0 {
		return nil
	}

	taken, err := s.store.UsernameTaken(ctx, username)
	if err != nil {
		return err
	}
	if taken {
		log.Printf("bootstrap: username %q exists without admin role, skipping admin creation", username)
		return nil
	}

	if _, err := s.Provision(ctx, username, password, policy.RoleAdmin); err != nil {
		return err
	}
	log.Printf("bootstrap: created admin account %q", username)
	return nil
}

// Delete removes an account on behalf of acting. Self-deletion is refused
// regardless of role; deleting the last remaining admin is refused by the
// store inside the delete transaction.
func (s *Service) Delete(ctx context.Context, id int64, acting *policy.Principal) error {
	if acting != nil && acting.ID == id {
		return ErrSelfDeletion
	}
	return s.store.Delete(ctx, id)
}

// List returns all accounts ordered by username.
func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.store.List(ctx)
}
