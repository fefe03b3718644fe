package event

import "time"

// Status is the explicit lifecycle state of a calendar event. The publish and
// cancel timestamps are kept as metadata; hidden is distinguishable from
// draft even though both have no publish timestamp.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusHidden    Status = "hidden"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusHidden, StatusCancelled:
		return true
	}
	return false
}

// Event is a calendar event scoped to exactly one community. Cancellation is
// terminal; events are never hard-deleted.
type Event struct {
	ID          string     `json:"id"`
	CommunityID string     `json:"community_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartAt     time.Time  `json:"start_at"`
	EndAt       time.Time  `json:"end_at"`
	Timezone    string     `json:"timezone"`
	Status      Status     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateInput contains the payload required to create a draft event.
type CreateInput struct {
	CommunityID string    `json:"community_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Timezone    string    `json:"timezone,omitempty"`
}

// UpdateInput carries a partial update; nil fields are left unchanged.
// Publish=true on an unpublished event is equivalent to an explicit publish.
type UpdateInput struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartAt     *time.Time `json:"start_at,omitempty"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	Timezone    *string    `json:"timezone,omitempty"`
	Publish     bool       `json:"publish,omitempty"`
}
