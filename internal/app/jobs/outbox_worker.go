package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/communityhub/server/internal/app/repositories"
)

const outboxBatchSize = 10

// OutboxWorker drains the email outbox: each sweep picks up to a batch of the
// oldest unsent messages and attempts delivery. A failed message records its
// error and stays eligible for the next sweep; it never blocks the rest of
// the batch.
type OutboxWorker struct {
	outbox repositories.OutboxRepository
	sender MailSender
	log    *slog.Logger
}

func NewOutboxWorker(outbox repositories.OutboxRepository, sender MailSender, log *slog.Logger) *OutboxWorker {
	return &OutboxWorker{outbox: outbox, sender: sender, log: log}
}

// Drain processes one batch and returns the number of messages delivered.
func (w *OutboxWorker) Drain(ctx context.Context) (int, error) {
	messages, err := w.outbox.ListUnsent(ctx, outboxBatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, m := range messages {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if err := w.sender.Send(m.To, m.Subject, m.Body); err != nil {
			if markErr := w.outbox.MarkFailed(ctx, m.ID, err.Error()); markErr != nil {
				w.log.Error("failed to record delivery error", "message_id", m.ID, "error", markErr)
			}
			w.log.Warn("failed to deliver email", "message_id", m.ID, "to", m.To, "error", err)
			continue
		}
		if err := w.outbox.MarkSent(ctx, m.ID, time.Now().UTC()); err != nil {
			w.log.Error("failed to mark email sent", "message_id", m.ID, "error", err)
			continue
		}
		sent++
		w.log.Info("email delivered", "message_id", m.ID, "to", m.To)
	}
	return sent, nil
}

// Run drains the outbox on a fixed interval until the context is cancelled.
func (w *OutboxWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := w.Drain(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Error("outbox sweep failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
