package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/communityhub/server/internal/domain/outbox"
)

func TestOutboxListUnsentOrderAndLimit(t *testing.T) {
	repo := NewInMemoryOutboxRepo()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		m := &outbox.Message{
			ID:        uuid.NewString(),
			To:        fmt.Sprintf("user%d@example.com", i),
			Subject:   "s",
			Body:      "b",
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.Enqueue(ctx, m); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
		ids = append(ids, m.ID)
	}

	got, err := repo.ListUnsent(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	for i := range got {
		if got[i].ID != ids[i] {
			t.Fatalf("messages not in enqueue order at %d", i)
		}
	}
}

func TestOutboxMarkSentExcludesFromSweep(t *testing.T) {
	repo := NewInMemoryOutboxRepo()
	ctx := context.Background()
	m := &outbox.Message{ID: uuid.NewString(), To: "a@example.com", Subject: "s", Body: "b", CreatedAt: time.Now().UTC()}
	if err := repo.Enqueue(ctx, m); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := repo.MarkSent(ctx, m.ID, time.Now().UTC()); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	got, err := repo.ListUnsent(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("sent message must not reappear, got %d", len(got))
	}
}

func TestOutboxMarkFailedKeepsEligible(t *testing.T) {
	repo := NewInMemoryOutboxRepo()
	ctx := context.Background()
	m := &outbox.Message{ID: uuid.NewString(), To: "a@example.com", Subject: "s", Body: "b", CreatedAt: time.Now().UTC()}
	if err := repo.Enqueue(ctx, m); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := repo.MarkFailed(ctx, m.ID, "relay refused"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	got, err := repo.ListUnsent(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("failed message must stay eligible, got %d", len(got))
	}
	if got[0].Error != "relay refused" {
		t.Fatalf("expected recorded error, got %q", got[0].Error)
	}

	// A later success clears the error.
	if err := repo.MarkSent(ctx, m.ID, time.Now().UTC()); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	got, _ = repo.ListUnsent(ctx, 0)
	if len(got) != 0 {
		t.Fatalf("expected empty outbox after delivery")
	}
}
