package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/communityhub/server/internal/domain/community"
)

type CommunityRepository interface {
	Create(ctx context.Context, c *community.Community) error
	GetByID(ctx context.Context, id string) (*community.Community, error)
	GetBySlug(ctx context.Context, slug string) (*community.Community, error)
	Update(ctx context.Context, c *community.Community) error
	// ListActive returns non-archived communities ordered by creation time.
	ListActive(ctx context.Context) ([]community.Community, error)
}

type inMemoryCommunityRepo struct {
	mu    sync.RWMutex
	items map[string]community.Community
}

func NewInMemoryCommunityRepo() CommunityRepository {
	return &inMemoryCommunityRepo{items: make(map[string]community.Community)}
}

func (r *inMemoryCommunityRepo) Create(ctx context.Context, c *community.Community) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.Slug == c.Slug {
			return ErrDuplicate
		}
	}
	r.items[c.ID] = *c
	return nil
}

func (r *inMemoryCommunityRepo) GetByID(ctx context.Context, id string) (*community.Community, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *inMemoryCommunityRepo) GetBySlug(ctx context.Context, slug string) (*community.Community, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.items {
		if c.Slug == slug {
			out := c
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *inMemoryCommunityRepo) Update(ctx context.Context, c *community.Community) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		return ErrNotFound
	}
	r.items[c.ID] = *c
	return nil
}

func (r *inMemoryCommunityRepo) ListActive(ctx context.Context) ([]community.Community, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]community.Community, 0, len(r.items))
	for _, c := range r.items {
		if c.ArchivedAt == nil {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
