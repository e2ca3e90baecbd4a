// Package memory holds process-local implementations of the user store and
// local storage, used in development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/gradeflow/assignment-portal/internal/core/domain"
	"github.com/gradeflow/assignment-portal/internal/core/ports"
)

// UserRepository keeps users in a map guarded by a mutex.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string // email -> id
}

var _ ports.UserRepository = (*UserRepository)(nil)

// NewUserRepository returns a repository holding seed.
func NewUserRepository(seed ...domain.User) *UserRepository {
	r := &UserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
	for i := range seed {
		u := seed[i]
		r.byID[u.ID] = &u
		r.byEmail[u.Email] = u.ID
	}
	return r
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[user.Email]; taken {
		return nil, domain.ErrUserExists
	}
	if _, taken := r.byID[user.ID]; taken {
		return nil, domain.ErrUserExists
	}
	stored := *user
	r.byID[stored.ID] = &stored
	r.byEmail[stored.Email] = stored.ID
	out := stored
	return &out, nil
}

// Update replaces the user with the same id. Changing to an email owned by
// another user fails with domain.ErrUserExists.
func (r *UserRepository) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.byID[user.ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if owner, taken := r.byEmail[user.Email]; taken && owner != user.ID {
		return nil, domain.ErrUserExists
	}
	delete(r.byEmail, old.Email)
	stored := *user
	r.byID[stored.ID] = &stored
	r.byEmail[stored.Email] = stored.ID
	out := stored
	return &out, nil
}
