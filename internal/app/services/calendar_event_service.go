package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/communityhub/server/internal/app/repositories"
	"github.com/communityhub/server/internal/domain/apperr"
	"github.com/communityhub/server/internal/domain/community"
	"github.com/communityhub/server/internal/domain/event"
	"github.com/communityhub/server/pkg/eventlog"
)

// CalendarEventService owns the event lifecycle: draft, published, hidden,
// cancelled. Every mutation re-resolves the owning community and requires the
// caller to be its owner. Notifications are best-effort and never roll back
// a completed transition.
type CalendarEventService interface {
	Create(ctx context.Context, in event.CreateInput, callerID string) (*event.Event, error)
	Get(ctx context.Context, eventID, callerID string) (*event.Event, error)
	Update(ctx context.Context, eventID string, in event.UpdateInput, callerID string) (*event.Event, error)
	Publish(ctx context.Context, eventID, callerID string) (*event.Event, error)
	Hide(ctx context.Context, eventID, callerID string) (*event.Event, error)
	Unpublish(ctx context.Context, eventID, callerID string) (*event.Event, error)
	Cancel(ctx context.Context, eventID, callerID string) (*event.Event, error)
	List(ctx context.Context, communityID, callerID string) ([]event.Event, error)
}

type calendarEventService struct {
	events      repositories.EventRepository
	communities repositories.CommunityRepository
	memberships repositories.MembershipRepository
	users       repositories.UserRepository
	email       EmailService
	audit       *eventlog.Writer
	log         *slog.Logger
}

func NewCalendarEventService(
	events repositories.EventRepository,
	communities repositories.CommunityRepository,
	memberships repositories.MembershipRepository,
	users repositories.UserRepository,
	email EmailService,
	audit *eventlog.Writer,
	log *slog.Logger,
) CalendarEventService {
	return &calendarEventService{
		events:      events,
		communities: communities,
		memberships: memberships,
		users:       users,
		email:       email,
		audit:       audit,
		log:         log,
	}
}

func (s *calendarEventService) Create(ctx context.Context, in event.CreateInput, callerID string) (*event.Event, error) {
	if _, err := s.requireCommunityOwner(ctx, in.CommunityID, callerID); err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, apperr.BadRequest("title is required")
	}
	if !in.StartAt.Before(in.EndAt) {
		return nil, apperr.BadRequest("start date must be before end date")
	}

	tz := in.Timezone
	if tz == "" {
		tz = "UTC"
	}
	now := time.Now().UTC()
	ev := &event.Event{
		ID:          uuid.NewString(),
		CommunityID: in.CommunityID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		StartAt:     in.StartAt,
		EndAt:       in.EndAt,
		Timezone:    tz,
		Status:      event.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.events.Create(ctx, ev); err != nil {
		return nil, apperr.Internal("create calendar event", err)
	}
	s.writeAudit("create", ev)
	return ev, nil
}

func (s *calendarEventService) Get(ctx context.Context, eventID, callerID string) (*event.Event, error) {
	ev, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	comm, err := s.loadCommunity(ctx, ev.CommunityID)
	if err != nil {
		return nil, err
	}
	if comm.OwnerID == callerID {
		return ev, nil
	}
	if _, err := s.membership(ctx, callerID, ev.CommunityID); err != nil {
		return nil, apperr.Forbidden("you must be a member of the community to view events")
	}
	// Members never see unpublished or cancelled events, even by direct id.
	if ev.Status != event.StatusPublished {
		return nil, apperr.NotFound("calendar event not found")
	}
	return ev, nil
}

func (s *calendarEventService) Update(ctx context.Context, eventID string, in event.UpdateInput, callerID string) (*event.Event, error) {
	ev, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireCommunityOwner(ctx, ev.CommunityID, callerID); err != nil {
		return nil, err
	}

	if in.Title != nil {
		ev.Title = *in.Title
	}
	if in.Description != nil {
		ev.Description = *in.Description
	}
	if in.Location != nil {
		ev.Location = *in.Location
	}
	if in.StartAt != nil {
		ev.StartAt = *in.StartAt
	}
	if in.EndAt != nil {
		ev.EndAt = *in.EndAt
	}
	if in.Timezone != nil {
		ev.Timezone = *in.Timezone
	}
	// Validate the effective post-merge window.
	if !ev.StartAt.Before(ev.EndAt) {
		return nil, apperr.BadRequest("start date must be before end date")
	}

	justPublished := false
	if in.Publish && ev.Status != event.StatusPublished {
		if ev.Status == event.StatusCancelled {
			return nil, apperr.BadRequest("cannot publish a cancelled event")
		}
		now := time.Now().UTC()
		ev.Status = event.StatusPublished
		ev.PublishedAt = &now
		justPublished = true
	}

	ev.UpdatedAt = time.Now().UTC()
	if err := s.events.Update(ctx, ev); err != nil {
		return nil, apperr.Internal("update calendar event", err)
	}
	s.writeAudit("update", ev)

	// A publish via update notifies the same way an explicit publish does;
	// editing an already-published event notifies with the update template.
	switch {
	case justPublished:
		s.notify(ctx, ev, s.email.SendEventPublished)
	case ev.Status == event.StatusPublished:
		s.notify(ctx, ev, s.email.SendEventUpdated)
	}
	return ev, nil
}

func (s *calendarEventService) Publish(ctx context.Context, eventID, callerID string) (*event.Event, error) {
	ev, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireCommunityOwner(ctx, ev.CommunityID, callerID); err != nil {
		return nil, err
	}
	if ev.Status == event.StatusPublished {
		return nil, apperr.BadRequest("event is already published")
	}
	if ev.Status == event.StatusCancelled {
		return nil, apperr.BadRequest("cannot publish a cancelled event")
	}

	now := time.Now().UTC()
	ev.Status = event.StatusPublished
	ev.PublishedAt = &now
	ev.UpdatedAt = now
	if err := s.events.Update(ctx, ev); err != nil {
		return nil, apperr.Internal("publish calendar event", err)
	}
	s.writeAudit("publish", ev)
	s.notify(ctx, ev, s.email.SendEventPublished)
	return ev, nil
}

func (s *calendarEventService) Hide(ctx context.Context, eventID, callerID string) (*event.Event, error) {
	return s.clearPublication(ctx, eventID, callerID, "hide")
}

func (s *calendarEventService) Unpublish(ctx context.Context, eventID, callerID string) (*event.Event, error) {
	// TODO: reject when the event has signups once a signup table exists.
	return s.clearPublication(ctx, eventID, callerID, "unpublish")
}

func (s *calendarEventService) clearPublication(ctx context.Context, eventID, callerID, action string) (*event.Event, error) {
	ev, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireCommunityOwner(ctx, ev.CommunityID, callerID); err != nil {
		return nil, err
	}
	if ev.Status != event.StatusPublished {
		return nil, apperr.BadRequest("event is not published")
	}

	ev.Status = event.StatusHidden
	ev.PublishedAt = nil
	ev.UpdatedAt = time.Now().UTC()
	if err := s.events.Update(ctx, ev); err != nil {
		return nil, apperr.Internal(action+" calendar event", err)
	}
	s.writeAudit(action, ev)
	return ev, nil
}

func (s *calendarEventService) Cancel(ctx context.Context, eventID, callerID string) (*event.Event, error) {
	ev, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireCommunityOwner(ctx, ev.CommunityID, callerID); err != nil {
		return nil, err
	}
	if ev.Status == event.StatusCancelled {
		return nil, apperr.BadRequest("event is already cancelled")
	}

	wasPublished := ev.Status == event.StatusPublished
	now := time.Now().UTC()
	ev.Status = event.StatusCancelled
	ev.CancelledAt = &now
	ev.UpdatedAt = now
	if err := s.events.Update(ctx, ev); err != nil {
		return nil, apperr.Internal("cancel calendar event", err)
	}
	s.writeAudit("cancel", ev)

	if wasPublished {
		s.notify(ctx, ev, s.email.SendEventCancelled)
	}
	return ev, nil
}

func (s *calendarEventService) List(ctx context.Context, communityID, callerID string) ([]event.Event, error) {
	comm, err := s.loadCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}

	filter := repositories.EventFilter{CommunityID: communityID, Order: repositories.OrderByStartAsc}
	if comm.OwnerID != callerID {
		if _, err := s.membership(ctx, callerID, communityID); err != nil {
			return nil, apperr.Forbidden("you must be a member of the community to view events")
		}
		filter.Statuses = []event.Status{event.StatusPublished}
	}
	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("list calendar events", err)
	}
	return events, nil
}

func (s *calendarEventService) requireCommunityOwner(ctx context.Context, communityID, callerID string) (*community.Community, error) {
	comm, err := s.loadCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if comm.OwnerID != callerID {
		return nil, apperr.Forbidden("only community owners can manage events")
	}
	return comm, nil
}

func (s *calendarEventService) loadCommunity(ctx context.Context, communityID string) (*community.Community, error) {
	comm, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("community not found")
		}
		return nil, apperr.Internal("load community", err)
	}
	return comm, nil
}

func (s *calendarEventService) loadEvent(ctx context.Context, eventID string) (*event.Event, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("calendar event not found")
		}
		return nil, apperr.Internal("load calendar event", err)
	}
	return ev, nil
}

func (s *calendarEventService) membership(ctx context.Context, userID, communityID string) (*community.Membership, error) {
	return s.memberships.Get(ctx, userID, communityID)
}

// memberEmails resolves recipient addresses at the moment of the transition.
// Members without an email address are skipped.
func (s *calendarEventService) memberEmails(ctx context.Context, communityID string) ([]string, error) {
	members, err := s.memberships.ListByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(users))
	for _, u := range users {
		if u.Email != "" {
			emails = append(emails, u.Email)
		}
	}
	return emails, nil
}

func (s *calendarEventService) notify(ctx context.Context, ev *event.Event, send func(context.Context, string, []string) error) {
	emails, err := s.memberEmails(ctx, ev.CommunityID)
	if err != nil {
		s.log.Warn("failed to resolve member emails", "event_id", ev.ID, "error", err)
		return
	}
	if len(emails) == 0 {
		return
	}
	if err := send(ctx, ev.Title, emails); err != nil {
		s.log.Warn("failed to enqueue event notification", "event_id", ev.ID, "error", err)
	}
}

func (s *calendarEventService) writeAudit(action string, ev *event.Event) {
	if !s.audit.Enabled() {
		return
	}
	if err := s.audit.Write("calendar_event", action, ev.ID, ev); err != nil {
		s.log.Warn("failed to write audit record", "action", action, "event_id", ev.ID, "error", err)
	}
}
