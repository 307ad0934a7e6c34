package memstore

import (
	"context"

	"github.com/google/uuid"

	"shelfwise/internal/apperr"
	"shelfwise/internal/identity"
)

// UserStore implements identity.Store over the shared store.
type UserStore struct {
	s *Store
}

func (us *UserStore) InsertUser(_ context.Context, u *identity.User) error {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	for _, existing := range us.s.users {
		if existing.Username == u.Username {
			return apperr.Conflict("Username is already taken")
		}
	}

	clone := *u
	us.s.users[u.ID] = &clone
	return nil
}

func (us *UserStore) GetUser(_ context.Context, id uuid.UUID) (*identity.User, error) {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	user, ok := us.s.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	clone := *user
	return &clone, nil
}

func (us *UserStore) GetUserByUsername(_ context.Context, username string) (*identity.User, error) {
	us.s.mu.Lock()
	defer us.s.mu.Unlock()

	for _, user := range us.s.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}
