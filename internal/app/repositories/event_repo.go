package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/communityhub/server/internal/domain/event"
)

// EventOrder selects the sort applied to a listing.
type EventOrder int

const (
	OrderByStartAsc EventOrder = iota
	OrderByPublishedDesc
)

// TimeRange is an inclusive [From, To] window.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// EventFilter is the typed query for event listings. Zero values mean "no
// constraint".
type EventFilter struct {
	CommunityID     string
	Statuses        []event.Status
	StartsWithin    *TimeRange
	PublishedWithin *TimeRange
	StartsAfter     *time.Time
	Order           EventOrder
}

type EventRepository interface {
	Create(ctx context.Context, e *event.Event) error
	GetByID(ctx context.Context, id string) (*event.Event, error)
	Update(ctx context.Context, e *event.Event) error
	List(ctx context.Context, filter EventFilter) ([]event.Event, error)
}

type inMemoryEventRepo struct {
	mu    sync.RWMutex
	items map[string]event.Event
}

func NewInMemoryEventRepo() EventRepository {
	return &inMemoryEventRepo{items: make(map[string]event.Event)}
}

func (r *inMemoryEventRepo) Create(ctx context.Context, e *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[e.ID]; exists {
		return ErrDuplicate
	}
	r.items[e.ID] = *e
	return nil
}

func (r *inMemoryEventRepo) GetByID(ctx context.Context, id string) (*event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (r *inMemoryEventRepo) Update(ctx context.Context, e *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[e.ID]; !ok {
		return ErrNotFound
	}
	r.items[e.ID] = *e
	return nil
}

func (r *inMemoryEventRepo) List(ctx context.Context, filter EventFilter) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]event.Event, 0)
	for _, e := range r.items {
		if matchesFilter(&e, filter) {
			out = append(out, e)
		}
	}
	switch filter.Order {
	case OrderByPublishedDesc:
		sort.Slice(out, func(i, j int) bool {
			pi, pj := out[i].PublishedAt, out[j].PublishedAt
			switch {
			case pi == nil && pj == nil:
				return out[i].ID < out[j].ID
			case pi == nil:
				return false
			case pj == nil:
				return true
			default:
				return pj.Before(*pi)
			}
		})
	default:
		sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	}
	return out, nil
}

func matchesFilter(e *event.Event, filter EventFilter) bool {
	if filter.CommunityID != "" && e.CommunityID != filter.CommunityID {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, s := range filter.Statuses {
			if e.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if w := filter.StartsWithin; w != nil {
		if e.StartAt.Before(w.From) || e.StartAt.After(w.To) {
			return false
		}
	}
	if w := filter.PublishedWithin; w != nil {
		if e.PublishedAt == nil || e.PublishedAt.Before(w.From) || e.PublishedAt.After(w.To) {
			return false
		}
	}
	if after := filter.StartsAfter; after != nil && !e.StartAt.After(*after) {
		return false
	}
	return true
}
