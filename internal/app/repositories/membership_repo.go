package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/communityhub/server/internal/domain/community"
)

type MembershipRepository interface {
	// Create inserts a membership row; ErrDuplicate when the (user, community)
	// pair already exists.
	Create(ctx context.Context, m *community.Membership) error
	Get(ctx context.Context, userID, communityID string) (*community.Membership, error)
	Delete(ctx context.Context, userID, communityID string) error
	ListByCommunity(ctx context.Context, communityID string) ([]community.Membership, error)
	CountByCommunity(ctx context.Context, communityID string) (int, error)
}

type inMemoryMembershipRepo struct {
	mu    sync.RWMutex
	items map[string]community.Membership
}

func NewInMemoryMembershipRepo() MembershipRepository {
	return &inMemoryMembershipRepo{items: make(map[string]community.Membership)}
}

func membershipKey(userID, communityID string) string {
	return userID + "|" + communityID
}

func (r *inMemoryMembershipRepo) Create(ctx context.Context, m *community.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := membershipKey(m.UserID, m.CommunityID)
	if _, exists := r.items[key]; exists {
		return ErrDuplicate
	}
	r.items[key] = *m
	return nil
}

func (r *inMemoryMembershipRepo) Get(ctx context.Context, userID, communityID string) (*community.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.items[membershipKey(userID, communityID)]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (r *inMemoryMembershipRepo) Delete(ctx context.Context, userID, communityID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := membershipKey(userID, communityID)
	if _, ok := r.items[key]; !ok {
		return ErrNotFound
	}
	delete(r.items, key)
	return nil
}

func (r *inMemoryMembershipRepo) ListByCommunity(ctx context.Context, communityID string) ([]community.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]community.Membership, 0)
	for _, m := range r.items {
		if m.CommunityID == communityID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r *inMemoryMembershipRepo) CountByCommunity(ctx context.Context, communityID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, m := range r.items {
		if m.CommunityID == communityID {
			count++
		}
	}
	return count, nil
}
