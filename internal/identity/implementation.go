// internal/identity/implementation.go
package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"shelfwise/internal/apperr"
)

// service implements the Service interface.
type service struct {
	store       Store
	rateLimiter *rate.Limiter
}

// NewService creates a new identity service instance. The limiter throttles
// register and login attempts; pass rate.NewLimiter(rate.Inf, 0) to disable.
func NewService(store Store, limiter *rate.Limiter) Service {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(time.Minute), 5)
	}
	return &service{
		store:       store,
		rateLimiter: limiter,
	}
}

// Register creates a new member account.
func (s *service) Register(ctx context.Context, username, password string) (*User, error) {
	if !s.rateLimiter.Allow() {
		return nil, apperr.New(apperr.KindValidation, "Too many attempts, try again later")
	}
	return s.createUser(ctx, username, password, RoleMember)
}

func (s *service) createUser(ctx context.Context, username, password string, role Role) (*User, error) {
	username = strings.TrimSpace(username)
	if fields := validateCredentials(username, password); len(fields) > 0 {
		return nil, apperr.Validation(fields...)
	}

	passwordHash, salt, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Salt:         salt,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.InsertUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func validateCredentials(username, password string) []apperr.FieldError {
	var fields []apperr.FieldError
	if len(username) < 3 {
		fields = append(fields, apperr.FieldError{
			Field:   "username",
			Message: "Username must be at least 3 characters long",
		})
	}
	if len(password) < 6 {
		fields = append(fields, apperr.FieldError{
			Field:   "password",
			Message: "Password must be at least 6 characters long",
		})
	}
	return fields
}

// Authenticate verifies credentials and returns the user if successful.
// Unknown usernames and bad passwords are indistinguishable to the caller.
func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	if !s.rateLimiter.Allow() {
		return nil, apperr.AuthRequired("Too many attempts, try again later")
	}

	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.AuthRequired("Invalid credentials")
		}
		return nil, err
	}

	ok, err := verifyPassword(password, user.Salt, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, apperr.AuthRequired("Invalid credentials")
	}

	return user, nil
}

// GetUser retrieves a user by id.
func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.store.GetUser(ctx, id)
}

// EnsureAdmin creates the admin account if it does not exist yet.
func (s *service) EnsureAdmin(ctx context.Context, username, password string) (*User, bool, error) {
	existing, err := s.store.GetUserByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, false, err
	}

	user, err := s.createUser(ctx, username, password, RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}
