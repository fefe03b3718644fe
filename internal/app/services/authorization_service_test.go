package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/communityhub/server/internal/app/repositories"
	"github.com/communityhub/server/internal/domain/apperr"
	"github.com/communityhub/server/internal/domain/community"
)

func seedCommunity(t *testing.T, repo repositories.CommunityRepository, ownerID string) *community.Community {
	t.Helper()
	comm := &community.Community{
		ID:        uuid.NewString(),
		Name:      "Book Club",
		Slug:      "bookclub",
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), comm); err != nil {
		t.Fatalf("seed community: %v", err)
	}
	return comm
}

func TestCheckAccessOwner(t *testing.T) {
	communities := repositories.NewInMemoryCommunityRepo()
	memberships := repositories.NewInMemoryMembershipRepo()
	svc := NewAuthorizationService(communities, memberships)

	ownerID := uuid.NewString()
	comm := seedCommunity(t, communities, ownerID)

	access, err := svc.CheckAccess(context.Background(), ownerID, comm.ID)
	if err != nil {
		t.Fatalf("expected nil err got %v", err)
	}
	if !access.IsOwner {
		t.Fatalf("expected owner access")
	}
	if !access.IsMember {
		t.Fatalf("ownership must imply membership")
	}
}

func TestCheckAccessMember(t *testing.T) {
	communities := repositories.NewInMemoryCommunityRepo()
	memberships := repositories.NewInMemoryMembershipRepo()
	svc := NewAuthorizationService(communities, memberships)

	comm := seedCommunity(t, communities, uuid.NewString())
	memberID := uuid.NewString()
	m := &community.Membership{UserID: memberID, CommunityID: comm.ID, JoinedAt: time.Now().UTC()}
	if err := memberships.Create(context.Background(), m); err != nil {
		t.Fatalf("seed membership: %v", err)
	}

	access, err := svc.CheckAccess(context.Background(), memberID, comm.ID)
	if err != nil {
		t.Fatalf("expected nil err got %v", err)
	}
	if access.IsOwner {
		t.Fatalf("member must not be owner")
	}
	if !access.IsMember {
		t.Fatalf("expected member access")
	}
}

func TestCheckAccessStranger(t *testing.T) {
	communities := repositories.NewInMemoryCommunityRepo()
	memberships := repositories.NewInMemoryMembershipRepo()
	svc := NewAuthorizationService(communities, memberships)

	comm := seedCommunity(t, communities, uuid.NewString())

	access, err := svc.CheckAccess(context.Background(), uuid.NewString(), comm.ID)
	if err != nil {
		t.Fatalf("expected nil err got %v", err)
	}
	if access.IsOwner || access.IsMember {
		t.Fatalf("stranger must have no access, got %+v", access)
	}
}

func TestCheckAccessUnknownCommunity(t *testing.T) {
	svc := NewAuthorizationService(repositories.NewInMemoryCommunityRepo(), repositories.NewInMemoryMembershipRepo())
	_, err := svc.CheckAccess(context.Background(), uuid.NewString(), uuid.NewString())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRequireMemberAndOwner(t *testing.T) {
	communities := repositories.NewInMemoryCommunityRepo()
	memberships := repositories.NewInMemoryMembershipRepo()
	svc := NewAuthorizationService(communities, memberships)

	ownerID := uuid.NewString()
	comm := seedCommunity(t, communities, ownerID)
	memberID := uuid.NewString()
	m := &community.Membership{UserID: memberID, CommunityID: comm.ID, JoinedAt: time.Now().UTC()}
	if err := memberships.Create(context.Background(), m); err != nil {
		t.Fatalf("seed membership: %v", err)
	}

	if _, err := svc.RequireMember(context.Background(), memberID, comm.ID); err != nil {
		t.Fatalf("member must pass RequireMember: %v", err)
	}
	if _, err := svc.RequireMember(context.Background(), uuid.NewString(), comm.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("stranger must fail RequireMember, got %v", err)
	}
	if err := svc.RequireOwner(context.Background(), ownerID, comm.ID); err != nil {
		t.Fatalf("owner must pass RequireOwner: %v", err)
	}
	if err := svc.RequireOwner(context.Background(), memberID, comm.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("member must fail RequireOwner, got %v", err)
	}
}
