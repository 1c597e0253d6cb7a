package account

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/chessman8212-ai/poinatge-app/internal/policy"
)

// Account represents a login account.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

var (
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRole        = errors.New("unknown role")
	ErrSelfDeletion       = errors.New("cannot delete own account")
	ErrLastAdmin          = errors.New("cannot delete the last admin")
	ErrNotFound           = errors.New("account not found")
)

// ValidRole reports whether role is one of the recognized roles.
func ValidRole(role string) bool {
	return role == policy.RoleUser || role == policy.RoleAdmin
}

// HashPassword derives a bcrypt hash from a plaintext password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a plaintext password against a stored hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
