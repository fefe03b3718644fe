package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/communityhub/server/internal/app/repositories"
	"github.com/communityhub/server/internal/domain/apperr"
	"github.com/communityhub/server/internal/domain/community"
)

func newCommunityService() (CommunityService, repositories.CommunityRepository, repositories.MembershipRepository) {
	communities := repositories.NewInMemoryCommunityRepo()
	memberships := repositories.NewInMemoryMembershipRepo()
	authz := NewAuthorizationService(communities, memberships)
	return NewCommunityService(communities, memberships, authz), communities, memberships
}

func TestCreateCommunityNormalizesSlug(t *testing.T) {
	svc, _, _ := newCommunityService()
	comm, err := svc.Create(context.Background(), community.CreateInput{Name: "Chess Club", Slug: "  ChessClub  "}, uuid.NewString())
	if err != nil {
		t.Fatalf("expected nil err got %v", err)
	}
	if comm.Slug != "chessclub" {
		t.Fatalf("expected lowercase trimmed slug, got %q", comm.Slug)
	}
}

func TestCreateCommunityRejectsBadSlug(t *testing.T) {
	svc, _, _ := newCommunityService()
	for _, slug := range []string{"", "has space", "bad_slug!", "-leading"} {
		_, err := svc.Create(context.Background(), community.CreateInput{Name: "X", Slug: slug}, uuid.NewString())
		if !apperr.Is(err, apperr.KindBadRequest) {
			t.Fatalf("slug %q: expected bad request, got %v", slug, err)
		}
	}
}

func TestCreateCommunityDuplicateSlug(t *testing.T) {
	svc, _, _ := newCommunityService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, community.CreateInput{Name: "First", Slug: "club"}, uuid.NewString()); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, community.CreateInput{Name: "Second", Slug: "club"}, uuid.NewString())
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	svc, _, memberships := newCommunityService()
	ctx := context.Background()
	comm, err := svc.Create(ctx, community.CreateInput{Name: "Club", Slug: "club"}, uuid.NewString())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	userID := uuid.NewString()
	if _, err := svc.Join(ctx, comm.ID, userID); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if _, err := svc.Join(ctx, comm.ID, userID); err != nil {
		t.Fatalf("second join must be a no-op: %v", err)
	}
	count, err := memberships.CountByCommunity(ctx, comm.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 membership, got %d", count)
	}
}

func TestOwnerCannotLeave(t *testing.T) {
	svc, _, _ := newCommunityService()
	ctx := context.Background()
	ownerID := uuid.NewString()
	comm, err := svc.Create(ctx, community.CreateInput{Name: "Club", Slug: "club"}, ownerID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Leave(ctx, comm.ID, ownerID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGetBySlugHidesPrivateDataFromStrangers(t *testing.T) {
	svc, _, _ := newCommunityService()
	ctx := context.Background()
	ownerID := uuid.NewString()
	comm, err := svc.Create(ctx, community.CreateInput{Name: "Club", Slug: "club"}, ownerID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	memberID := uuid.NewString()
	if _, err := svc.Join(ctx, comm.ID, memberID); err != nil {
		t.Fatalf("join: %v", err)
	}

	strangerView, err := svc.GetBySlug(ctx, "club", uuid.NewString())
	if err != nil {
		t.Fatalf("stranger get: %v", err)
	}
	if strangerView.Private != nil {
		t.Fatalf("stranger must not see private profile")
	}
	if strangerView.IsMember || strangerView.IsOwner {
		t.Fatalf("stranger flags wrong: %+v", strangerView)
	}

	memberView, err := svc.GetBySlug(ctx, "club", memberID)
	if err != nil {
		t.Fatalf("member get: %v", err)
	}
	if memberView.Private == nil {
		t.Fatalf("member must see private profile")
	}
	if memberView.Private.MemberCount != 1 {
		t.Fatalf("expected member count 1, got %d", memberView.Private.MemberCount)
	}

	ownerView, err := svc.GetBySlug(ctx, "club", ownerID)
	if err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if !ownerView.IsOwner || ownerView.Private == nil {
		t.Fatalf("owner view wrong: %+v", ownerView)
	}
}

func TestArchiveRemovesFromListing(t *testing.T) {
	svc, _, _ := newCommunityService()
	ctx := context.Background()
	ownerID := uuid.NewString()
	comm, err := svc.Create(ctx, community.CreateInput{Name: "Club", Slug: "club"}, ownerID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Archive(ctx, comm.ID, ownerID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("archived community must not be listed, got %d", len(list))
	}
	if _, err := svc.Join(ctx, comm.ID, uuid.NewString()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("joining an archived community must fail, got %v", err)
	}
}

func TestUpdateRequiresOwner(t *testing.T) {
	svc, _, _ := newCommunityService()
	ctx := context.Background()
	comm, err := svc.Create(ctx, community.CreateInput{Name: "Club", Slug: "club"}, uuid.NewString())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	name := "Renamed"
	if _, err := svc.Update(ctx, comm.ID, community.UpdateInput{Name: &name}, uuid.NewString()); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
