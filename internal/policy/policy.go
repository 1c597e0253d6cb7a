package policy

import (
	"errors"
	"strings"
)

// Roles recognized across the service.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Principal is the authenticated identity attached to the current operation.
type Principal struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the principal carries the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

var (
	ErrNotAuthenticated = errors.New("authentication required")
	ErrInsufficientRole = errors.New("admin role required")
)

// RequireAuthenticated allows any signed-in principal.
func RequireAuthenticated(p *Principal) error {
	if p == nil {
		return ErrNotAuthenticated
	}
	return nil
}

// RequireAdmin allows admins only. A missing principal reads as
// not-authenticated rather than insufficient role.
func RequireAdmin(p *Principal) error {
	if p == nil {
		return ErrNotAuthenticated
	}
	if p.Role != RoleAdmin {
		return ErrInsufficientRole
	}
	return nil
}

// OwnerFilter returns the owner scope to apply inside ledger queries: empty
// for admins (all rows), the principal's own username otherwise. Scoping in
// the query keeps row existence from leaking through post-filters.
func OwnerFilter(p *Principal) string {
	if p.IsAdmin() {
		return ""
	}
	return p.Username
}

// SafeRedirect validates a caller-supplied post-login target. Only
// same-origin relative paths pass; anything absolute, protocol-relative, or
// backslash-mangled falls back.
func SafeRedirect(next, fallback string) string {
	if next == "" {
		return fallback
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return fallback
	}
	if strings.Contains(next, "\\") || strings.Contains(next, "://") {
		return fallback
	}
	return next
}
