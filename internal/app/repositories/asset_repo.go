package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/communityhub/server/internal/domain/asset"
)

type AssetRepository interface {
	Create(ctx context.Context, a *asset.Asset) error
	GetByID(ctx context.Context, id string) (*asset.Asset, error)
	Update(ctx context.Context, a *asset.Asset) error
	Delete(ctx context.Context, id string) error
	ListUploadedByUser(ctx context.Context, userID string) ([]asset.Asset, error)
}

type inMemoryAssetRepo struct {
	mu    sync.RWMutex
	items map[string]asset.Asset
}

func NewInMemoryAssetRepo() AssetRepository {
	return &inMemoryAssetRepo{items: make(map[string]asset.Asset)}
}

func (r *inMemoryAssetRepo) Create(ctx context.Context, a *asset.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[a.ID]; exists {
		return ErrDuplicate
	}
	r.items[a.ID] = *a
	return nil
}

func (r *inMemoryAssetRepo) GetByID(ctx context.Context, id string) (*asset.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *inMemoryAssetRepo) Update(ctx context.Context, a *asset.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[a.ID]; !ok {
		return ErrNotFound
	}
	r.items[a.ID] = *a
	return nil
}

func (r *inMemoryAssetRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *inMemoryAssetRepo) ListUploadedByUser(ctx context.Context, userID string) ([]asset.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]asset.Asset, 0)
	for _, a := range r.items {
		if a.UserID == userID && a.IsUploaded {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
