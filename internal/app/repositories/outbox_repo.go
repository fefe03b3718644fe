package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/communityhub/server/internal/domain/outbox"
)

type OutboxRepository interface {
	// Enqueue appends a message; rows are never updated by producers.
	Enqueue(ctx context.Context, m *outbox.Message) error
	// ListUnsent returns up to limit undelivered messages in creation order.
	// A previous failure does not exclude a row from the next sweep.
	ListUnsent(ctx context.Context, limit int) ([]outbox.Message, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id, errMsg string) error
}

type inMemoryOutboxRepo struct {
	mu    sync.RWMutex
	items map[string]outbox.Message
	seq   int
	order map[string]int
}

func NewInMemoryOutboxRepo() OutboxRepository {
	return &inMemoryOutboxRepo{
		items: make(map[string]outbox.Message),
		order: make(map[string]int),
	}
}

func (r *inMemoryOutboxRepo) Enqueue(ctx context.Context, m *outbox.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[m.ID]; exists {
		return ErrDuplicate
	}
	r.items[m.ID] = *m
	r.order[m.ID] = r.seq
	r.seq++
	return nil
}

func (r *inMemoryOutboxRepo) ListUnsent(ctx context.Context, limit int) ([]outbox.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]outbox.Message, 0)
	for _, m := range r.items {
		if m.SentAt == nil {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.order[out[i].ID] < r.order[out[j].ID] })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *inMemoryOutboxRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	sent := at
	m.SentAt = &sent
	m.Error = ""
	r.items[id] = m
	return nil
}

func (r *inMemoryOutboxRepo) MarkFailed(ctx context.Context, id, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	m.Error = errMsg
	r.items[id] = m
	return nil
}
