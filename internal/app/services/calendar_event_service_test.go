package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/communityhub/server/internal/app/repositories"
	"github.com/communityhub/server/internal/domain/apperr"
	"github.com/communityhub/server/internal/domain/community"
	"github.com/communityhub/server/internal/domain/event"
	"github.com/communityhub/server/internal/domain/user"
	"github.com/communityhub/server/pkg/logger"
)

type eventFixture struct {
	users       repositories.UserRepository
	communities repositories.CommunityRepository
	memberships repositories.MembershipRepository
	events      repositories.EventRepository
	outbox      repositories.OutboxRepository
	svc         CalendarEventService
	owner       *user.User
	comm        *community.Community
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	f := &eventFixture{
		users:       repositories.NewInMemoryUserRepo(),
		communities: repositories.NewInMemoryCommunityRepo(),
		memberships: repositories.NewInMemoryMembershipRepo(),
		events:      repositories.NewInMemoryEventRepo(),
		outbox:      repositories.NewInMemoryOutboxRepo(),
	}
	email := NewEmailService(f.outbox)
	f.svc = NewCalendarEventService(f.events, f.communities, f.memberships, f.users, email, nil, logger.InitForTests().App)

	f.owner = f.addUser(t, "owner@example.com")
	f.comm = &community.Community{
		ID:        uuid.NewString(),
		Name:      "Chess Club",
		Slug:      "chessclub",
		OwnerID:   f.owner.ID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := f.communities.Create(context.Background(), f.comm); err != nil {
		t.Fatalf("seed community: %v", err)
	}
	return f
}

func (f *eventFixture) addUser(t *testing.T, email string) *user.User {
	t.Helper()
	u := &user.User{
		ID:        uuid.NewString(),
		Subject:   "sub-" + email,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (f *eventFixture) addMember(t *testing.T, email string) *user.User {
	t.Helper()
	u := f.addUser(t, email)
	m := &community.Membership{UserID: u.ID, CommunityID: f.comm.ID, JoinedAt: time.Now().UTC()}
	if err := f.memberships.Create(context.Background(), m); err != nil {
		t.Fatalf("seed membership: %v", err)
	}
	return u
}

func (f *eventFixture) createDraft(t *testing.T) *event.Event {
	t.Helper()
	start := time.Now().UTC().Add(48 * time.Hour)
	ev, err := f.svc.Create(context.Background(), event.CreateInput{
		CommunityID: f.comm.ID,
		Title:       "Weekly Tournament",
		StartAt:     start,
		EndAt:       start.Add(2 * time.Hour),
	}, f.owner.ID)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return ev
}

func (f *eventFixture) unsentCount(t *testing.T) int {
	t.Helper()
	msgs, err := f.outbox.ListUnsent(context.Background(), 0)
	if err != nil {
		t.Fatalf("list outbox: %v", err)
	}
	return len(msgs)
}

func TestCreateEventStartsAsDraft(t *testing.T) {
	f := newEventFixture(t)
	ev := f.createDraft(t)
	if ev.Status != event.StatusDraft {
		t.Fatalf("expected draft status, got %s", ev.Status)
	}
	if ev.PublishedAt != nil {
		t.Fatalf("expected no publish timestamp on a draft")
	}
	if ev.Timezone != "UTC" {
		t.Fatalf("expected UTC default timezone, got %s", ev.Timezone)
	}
}

func TestCreateEventRejectsInvertedDates(t *testing.T) {
	f := newEventFixture(t)
	start := time.Now().UTC().Add(48 * time.Hour)
	_, err := f.svc.Create(context.Background(), event.CreateInput{
		CommunityID: f.comm.ID,
		Title:       "Backwards",
		StartAt:     start,
		EndAt:       start,
	}, f.owner.ID)
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for start >= end, got %v", err)
	}
}

func TestCreateEventRequiresOwner(t *testing.T) {
	f := newEventFixture(t)
	member := f.addMember(t, "member@example.com")
	start := time.Now().UTC().Add(24 * time.Hour)
	in := event.CreateInput{
		CommunityID: f.comm.ID,
		Title:       "Not Allowed",
		StartAt:     start,
		EndAt:       start.Add(time.Hour),
	}
	if _, err := f.svc.Create(context.Background(), in, member.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for member, got %v", err)
	}
	stranger := f.addUser(t, "stranger@example.com")
	if _, err := f.svc.Create(context.Background(), in, stranger.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for non-member, got %v", err)
	}
}

func TestPublishNotifiesEachMemberOnce(t *testing.T) {
	f := newEventFixture(t)
	f.addMember(t, "a@example.com")
	f.addMember(t, "b@example.com")
	ev := f.createDraft(t)

	published, err := f.svc.Publish(context.Background(), ev.ID, f.owner.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.Status != event.StatusPublished {
		t.Fatalf("expected published status, got %s", published.Status)
	}
	if published.PublishedAt == nil {
		t.Fatalf("expected publish timestamp")
	}
	if got := f.unsentCount(t); got != 2 {
		t.Fatalf("expected 2 outbox messages, got %d", got)
	}
}

func TestPublishTwiceFails(t *testing.T) {
	f := newEventFixture(t)
	ev := f.createDraft(t)
	if _, err := f.svc.Publish(context.Background(), ev.ID, f.owner.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := f.svc.Publish(context.Background(), ev.ID, f.owner.ID); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request on double publish, got %v", err)
	}
}

func TestPublishCancelledFails(t *testing.T) {
	f := newEventFixture(t)
	ev := f.createDraft(t)
	if _, err := f.svc.Cancel(context.Background(), ev.ID, f.owner.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.Publish(context.Background(), ev.ID, f.owner.ID); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request publishing a cancelled event, got %v", err)
	}
}

func TestHideRequiresPublished(t *testing.T) {
	f := newEventFixture(t)
	ev := f.createDraft(t)
	if _, err := f.svc.Hide(context.Background(), ev.ID, f.owner.ID); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request hiding a draft, got %v", err)
	}
}

func TestHideClearsPublication(t *testing.T) {
	f := newEventFixture(t)
	f.addMember(t, "a@example.com")
	ev := f.createDraft(t)
	if _, err := f.svc.Publish(context.Background(), ev.ID, f.owner.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}
	before := f.unsentCount(t)

	hidden, err := f.svc.Hide(context.Background(), ev.ID, f.owner.ID)
	if err != nil {
		t.Fatalf("hide: %v", err)
	}
	if hidden.Status != event.StatusHidden {
		t.Fatalf("expected hidden status, got %s", hidden.Status)
	}
	if hidden.PublishedAt != nil {
		t.Fatalf("expected publish timestamp cleared")
	}
	if got := f.unsentCount(t); got != before {
		t.Fatalf("hide must not notify members, outbox grew from %d to %d", before, got)
	}
}

func TestCancelPublishedNotifiesMembers(t *testing.T) {
	f := newEventFixture(t)
	f.addMember(t, "a@example.com")
	f.addMember(t, "b@example.com")
	f.addMember(t, "c@example.com")
	ev := f.createDraft(t)
	if _, err := f.svc.Publish(context.Background(), ev.ID, f.owner.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}
	before := f.unsentCount(t)

	cancelled, err := f.svc.Cancel(context.Background(), ev.ID, f.owner.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != event.StatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Fatalf("expected cancel timestamp")
	}
	if got := f.unsentCount(t) - before; got != 3 {
		t.Fatalf("expected exactly one cancellation message per member, got %d", got)
	}
}

func TestCancelDraftIsSilent(t *testing.T) {
	f := newEventFixture(t)
	f.addMember(t, "a@example.com")
	ev := f.createDraft(t)

	if _, err := f.svc.Cancel(context.Background(), ev.ID, f.owner.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := f.unsentCount(t); got != 0 {
		t.Fatalf("cancelling a draft must not notify anyone, got %d messages", got)
	}
}

func TestCancelTwiceFails(t *testing.T) {
	f := newEventFixture(t)
	ev := f.createDraft(t)
	if _, err := f.svc.Cancel(context.Background(), ev.ID, f.owner.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), ev.ID, f.owner.ID); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request on double cancel, got %v", err)
	}
}

func TestUpdateWithPublishFlagPublishes(t *testing.T) {
	f := newEventFixture(t)
	f.addMember(t, "a@example.com")
	ev := f.createDraft(t)

	title := "Grand Tournament"
	updated, err := f.svc.Update(context.Background(), ev.ID, event.UpdateInput{Title: &title, Publish: true}, f.owner.ID)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != event.StatusPublished {
		t.Fatalf("expected published status, got %s", updated.Status)
	}
	if updated.Title != title {
		t.Fatalf("expected merged title, got %s", updated.Title)
	}
	if got := f.unsentCount(t); got != 1 {
		t.Fatalf("expected publish notification, got %d messages", got)
	}
}

func TestUpdatePublishFlagOnCancelledFails(t *testing.T) {
	f := newEventFixture(t)
	ev := f.createDraft(t)
	if _, err := f.svc.Cancel(context.Background(), ev.ID, f.owner.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err := f.svc.Update(context.Background(), ev.ID, event.UpdateInput{Publish: true}, f.owner.ID)
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestUpdateValidatesMergedDates(t *testing.T) {
	f := newEventFixture(t)
	ev := f.createDraft(t)
	badEnd := ev.StartAt.Add(-time.Hour)
	_, err := f.svc.Update(context.Background(), ev.ID, event.UpdateInput{EndAt: &badEnd}, f.owner.ID)
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for end before start, got %v", err)
	}
}

func TestGetVisibility(t *testing.T) {
	f := newEventFixture(t)
	member := f.addMember(t, "member@example.com")
	stranger := f.addUser(t, "stranger@example.com")
	ev := f.createDraft(t)
	ctx := context.Background()

	if _, err := f.svc.Get(ctx, ev.ID, f.owner.ID); err != nil {
		t.Fatalf("owner must see a draft: %v", err)
	}
	if _, err := f.svc.Get(ctx, ev.ID, member.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("member must not see a draft, got %v", err)
	}
	if _, err := f.svc.Get(ctx, ev.ID, stranger.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("non-member must be rejected, got %v", err)
	}

	if _, err := f.svc.Publish(ctx, ev.ID, f.owner.ID); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := f.svc.Get(ctx, ev.ID, member.ID); err != nil {
		t.Fatalf("member must see a published event: %v", err)
	}
	if _, err := f.svc.Get(ctx, ev.ID, stranger.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("non-member must stay rejected after publish, got %v", err)
	}
}

func TestListVisibility(t *testing.T) {
	f := newEventFixture(t)
	member := f.addMember(t, "member@example.com")
	stranger := f.addUser(t, "stranger@example.com")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ev := f.createDraft(t)
		if i > 0 {
			continue
		}
		if _, err := f.svc.Publish(ctx, ev.ID, f.owner.ID); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	ownerView, err := f.svc.List(ctx, f.comm.ID, f.owner.ID)
	if err != nil {
		t.Fatalf("owner list: %v", err)
	}
	if len(ownerView) != 3 {
		t.Fatalf("owner must see all events, got %d", len(ownerView))
	}

	memberView, err := f.svc.List(ctx, f.comm.ID, member.ID)
	if err != nil {
		t.Fatalf("member list: %v", err)
	}
	if len(memberView) != 1 {
		t.Fatalf("member must see only published events, got %d", len(memberView))
	}
	if memberView[0].Status != event.StatusPublished {
		t.Fatalf("member view leaked status %s", memberView[0].Status)
	}

	if _, err := f.svc.List(ctx, f.comm.ID, stranger.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("non-member list must be rejected, got %v", err)
	}
}

func TestListOrdersByStartTime(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(24 * time.Hour)
	for _, offset := range []time.Duration{72 * time.Hour, 0, 24 * time.Hour} {
		start := base.Add(offset)
		_, err := f.svc.Create(ctx, event.CreateInput{
			CommunityID: f.comm.ID,
			Title:       fmt.Sprintf("Event +%s", offset),
			StartAt:     start,
			EndAt:       start.Add(time.Hour),
		}, f.owner.ID)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	events, err := f.svc.List(ctx, f.comm.ID, f.owner.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(events); i++ {
		if events[i].StartAt.Before(events[i-1].StartAt) {
			t.Fatalf("events not ordered by start time")
		}
	}
}
