package repositories

import (
	"context"
	"errors"
	"sync"

	"github.com/communityhub/server/internal/domain/user"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetBySubject(ctx context.Context, subject string) (*user.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]user.User, error)
}

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]user.User
}

func NewInMemoryUserRepo() UserRepository {
	return &inMemoryUserRepo{users: make(map[string]user.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Subject == u.Subject {
			return ErrDuplicate
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *inMemoryUserRepo) GetBySubject(ctx context.Context, subject string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Subject == subject {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *inMemoryUserRepo) ListByIDs(ctx context.Context, ids []string) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]user.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}
