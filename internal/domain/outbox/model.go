package outbox

import "time"

// Message is one pending or delivered email. Rows are append-only on the
// producer side; the worker stamps SentAt on success or Error on failure.
// A failed row stays eligible for the next sweep.
type Message struct {
	ID        string     `json:"id"`
	To        string     `json:"to"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}
