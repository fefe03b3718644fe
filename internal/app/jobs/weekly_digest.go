package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/communityhub/server/internal/app/repositories"
	"github.com/communityhub/server/internal/app/services"
	"github.com/communityhub/server/internal/domain/community"
	"github.com/communityhub/server/internal/domain/event"
	"github.com/communityhub/server/pkg/retry"
)

const digestWindow = 7 * 24 * time.Hour

// WeeklyDigestJob enqueues one digest email per member of every active
// community. The digest covers published events starting in the coming week
// plus events published during the past week with a future start date.
// A failure in one community never blocks the others.
type WeeklyDigestJob struct {
	communities repositories.CommunityRepository
	memberships repositories.MembershipRepository
	users       repositories.UserRepository
	events      repositories.EventRepository
	email       services.EmailService
	log         *slog.Logger
}

func NewWeeklyDigestJob(
	communities repositories.CommunityRepository,
	memberships repositories.MembershipRepository,
	users repositories.UserRepository,
	events repositories.EventRepository,
	email services.EmailService,
	log *slog.Logger,
) *WeeklyDigestJob {
	return &WeeklyDigestJob{
		communities: communities,
		memberships: memberships,
		users:       users,
		events:      events,
		email:       email,
		log:         log,
	}
}

// Run executes the digest sweep inside the standard retry envelope: 1s
// initial delay doubling up to 1h, giving up after 72h.
func (j *WeeklyDigestJob) Run(ctx context.Context) error {
	return retry.Do(ctx, retry.DefaultOptions(), func() error {
		return j.runOnce(ctx)
	})
}

func (j *WeeklyDigestJob) runOnce(ctx context.Context) error {
	communities, err := j.communities.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list communities: %w", err)
	}

	now := time.Now().UTC()
	for _, comm := range communities {
		if err := ctx.Err(); err != nil {
			return err
		}
		queued, err := j.digestCommunity(ctx, comm.ID, comm.Name, now)
		if err != nil {
			j.log.Error("failed to queue digest", "community", comm.Name, "error", err)
			continue
		}
		if queued > 0 {
			j.log.Info("queued digest", "community", comm.Name, "members", queued)
		}
	}
	return nil
}

func (j *WeeklyDigestJob) digestCommunity(ctx context.Context, communityID, name string, now time.Time) (int, error) {
	members, err := j.memberships.ListByCommunity(ctx, communityID)
	if err != nil {
		return 0, err
	}
	if len(members) == 0 {
		return 0, nil
	}

	upcoming, err := j.events.List(ctx, repositories.EventFilter{
		CommunityID:  communityID,
		Statuses:     []event.Status{event.StatusPublished},
		StartsWithin: &repositories.TimeRange{From: now, To: now.Add(digestWindow)},
		Order:        repositories.OrderByStartAsc,
	})
	if err != nil {
		return 0, err
	}
	recent, err := j.events.List(ctx, repositories.EventFilter{
		CommunityID:     communityID,
		Statuses:        []event.Status{event.StatusPublished},
		PublishedWithin: &repositories.TimeRange{From: now.Add(-digestWindow), To: now},
		StartsAfter:     &now,
		Order:           repositories.OrderByPublishedDesc,
	})
	if err != nil {
		return 0, err
	}

	emails, err := j.memberEmails(ctx, members)
	if err != nil {
		return 0, err
	}
	if len(emails) == 0 {
		return 0, nil
	}

	subject := fmt.Sprintf("Weekly Digest: Upcoming Events in %s", name)
	body := buildDigestBody(upcoming, recent)
	if err := j.email.SendGeneric(ctx, emails, subject, body); err != nil {
		return 0, err
	}
	return len(members), nil
}

func (j *WeeklyDigestJob) memberEmails(ctx context.Context, members []community.Membership) ([]string, error) {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	users, err := j.users.ListByIDs(ctx, ids)
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

func buildDigestBody(upcoming, recent []event.Event) string {
	var b strings.Builder
	b.WriteString("Hello!\n\nHere are the upcoming events in your community for the next week:\n\n")
	b.WriteString(formatEventList(upcoming))
	b.WriteString("\n\n---\n\nRecently Published Events (with future dates):\n\n")
	b.WriteString(formatEventList(recent))
	b.WriteString("\n\nSee you there!")
	return b.String()
}

func formatEventList(events []event.Event) string {
	if len(events) == 0 {
		return "No upcoming events this week."
	}
	lines := make([]string, 0, len(events))
	for _, e := range events {
		line := fmt.Sprintf("- %s (%s", e.Title, e.StartAt.Format("Mon, 02 Jan 2006 15:04 MST"))
		if e.Location != "" {
			line += " @ " + e.Location
		}
		line += ")"
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
