package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/communityhub/server/internal/app/repositories"
	"github.com/communityhub/server/internal/domain/apperr"
	"github.com/communityhub/server/internal/domain/outbox"
)

// EmailService is the outbox producer. Enqueueing is a pure insert: no
// dedupe, no priority, delivery happens in a separate worker.
type EmailService interface {
	SendEventPublished(ctx context.Context, eventTitle string, recipients []string) error
	SendEventUpdated(ctx context.Context, eventTitle string, recipients []string) error
	SendEventCancelled(ctx context.Context, eventTitle string, recipients []string) error
	SendGeneric(ctx context.Context, recipients []string, subject, body string) error
}

type emailService struct {
	outbox repositories.OutboxRepository
}

func NewEmailService(outboxRepo repositories.OutboxRepository) EmailService {
	return &emailService{outbox: outboxRepo}
}

func (s *emailService) SendEventPublished(ctx context.Context, eventTitle string, recipients []string) error {
	subject := fmt.Sprintf("Event Published: %s", eventTitle)
	body := fmt.Sprintf("Event %q has been published and is now available for registration.", eventTitle)
	return s.SendGeneric(ctx, recipients, subject, body)
}

func (s *emailService) SendEventUpdated(ctx context.Context, eventTitle string, recipients []string) error {
	subject := fmt.Sprintf("Event Updated: %s", eventTitle)
	body := fmt.Sprintf("Event %q has been updated. Please check the latest details.", eventTitle)
	return s.SendGeneric(ctx, recipients, subject, body)
}

func (s *emailService) SendEventCancelled(ctx context.Context, eventTitle string, recipients []string) error {
	subject := fmt.Sprintf("Event Cancelled: %s", eventTitle)
	body := fmt.Sprintf("Event %q has been cancelled. We apologize for any inconvenience.", eventTitle)
	return s.SendGeneric(ctx, recipients, subject, body)
}

func (s *emailService) SendGeneric(ctx context.Context, recipients []string, subject, body string) error {
	now := time.Now().UTC()
	for _, to := range recipients {
		if to == "" {
			continue
		}
		msg := &outbox.Message{
			ID:        uuid.NewString(),
			To:        to,
			Subject:   subject,
			Body:      body,
			CreatedAt: now,
		}
		if err := s.outbox.Enqueue(ctx, msg); err != nil {
			return apperr.Internal("enqueue outbox message", err)
		}
	}
	return nil
}
