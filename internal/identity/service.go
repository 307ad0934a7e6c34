// internal/identity/service.go
package identity

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the identity service.
type Service interface {
	Register(ctx context.Context, username, password string) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	// EnsureAdmin creates the admin account if it does not exist yet and
	// reports whether it was created.
	EnsureAdmin(ctx context.Context, username, password string) (*User, bool, error)
}

// Store persists user accounts.
type Store interface {
	InsertUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}
