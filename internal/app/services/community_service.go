package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/communityhub/server/internal/app/repositories"
	"github.com/communityhub/server/internal/domain/apperr"
	"github.com/communityhub/server/internal/domain/community"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// CommunityService manages community records and membership.
type CommunityService interface {
	Create(ctx context.Context, in community.CreateInput, ownerID string) (*community.Community, error)
	List(ctx context.Context) ([]community.Community, error)
	GetBySlug(ctx context.Context, slug, callerID string) (*community.Profile, error)
	Update(ctx context.Context, communityID string, in community.UpdateInput, callerID string) (*community.Community, error)
	Archive(ctx context.Context, communityID, callerID string) error
	Join(ctx context.Context, communityID, callerID string) (*community.Membership, error)
	Leave(ctx context.Context, communityID, callerID string) error
}

type communityService struct {
	communities repositories.CommunityRepository
	memberships repositories.MembershipRepository
	authz       AuthorizationService
}

func NewCommunityService(
	communities repositories.CommunityRepository,
	memberships repositories.MembershipRepository,
	authz AuthorizationService,
) CommunityService {
	return &communityService{communities: communities, memberships: memberships, authz: authz}
}

func (s *communityService) Create(ctx context.Context, in community.CreateInput, ownerID string) (*community.Community, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.BadRequest("community name is required")
	}
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, apperr.BadRequest("slug must contain only lowercase letters, digits and hyphens")
	}

	now := time.Now().UTC()
	comm := &community.Community{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(in.Description),
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.communities.Create(ctx, comm); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict("a community with this slug already exists")
		}
		return nil, apperr.Internal("create community", err)
	}
	return comm, nil
}

func (s *communityService) List(ctx context.Context) ([]community.Community, error) {
	communities, err := s.communities.ListActive(ctx)
	if err != nil {
		return nil, apperr.Internal("list communities", err)
	}
	return communities, nil
}

func (s *communityService) GetBySlug(ctx context.Context, slug, callerID string) (*community.Profile, error) {
	comm, err := s.communities.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("community not found")
		}
		return nil, apperr.Internal("load community", err)
	}

	access, err := s.authz.CheckAccess(ctx, callerID, comm.ID)
	if err != nil {
		return nil, err
	}
	profile := &community.Profile{
		Community: comm,
		IsMember:  access.IsMember,
		IsOwner:   access.IsOwner,
	}
	if access.IsMember || access.IsOwner {
		count, err := s.memberships.CountByCommunity(ctx, comm.ID)
		if err != nil {
			return nil, apperr.Internal("count members", err)
		}
		profile.Private = &community.PrivateProfile{MemberCount: count}
	}
	return profile, nil
}

func (s *communityService) Update(ctx context.Context, communityID string, in community.UpdateInput, callerID string) (*community.Community, error) {
	comm, err := s.requireOwned(ctx, communityID, callerID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.BadRequest("community name is required")
		}
		comm.Name = name
	}
	if in.Description != nil {
		comm.Description = strings.TrimSpace(*in.Description)
	}
	comm.UpdatedAt = time.Now().UTC()
	if err := s.communities.Update(ctx, comm); err != nil {
		return nil, apperr.Internal("update community", err)
	}
	return comm, nil
}

func (s *communityService) Archive(ctx context.Context, communityID, callerID string) error {
	comm, err := s.requireOwned(ctx, communityID, callerID)
	if err != nil {
		return err
	}
	if comm.Archived() {
		return nil
	}
	now := time.Now().UTC()
	comm.ArchivedAt = &now
	comm.UpdatedAt = now
	if err := s.communities.Update(ctx, comm); err != nil {
		return apperr.Internal("archive community", err)
	}
	return nil
}

func (s *communityService) Join(ctx context.Context, communityID, callerID string) (*community.Membership, error) {
	comm, err := s.loadCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if comm.Archived() {
		return nil, apperr.NotFound("community not found")
	}
	if comm.OwnerID == callerID {
		return nil, apperr.BadRequest("owners cannot join their own community")
	}

	m := &community.Membership{
		UserID:      callerID,
		CommunityID: communityID,
		JoinedAt:    time.Now().UTC(),
	}
	if err := s.memberships.Create(ctx, m); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// Joining twice is a no-op, not an error.
			return s.memberships.Get(ctx, callerID, communityID)
		}
		return nil, apperr.Internal("join community", err)
	}
	return m, nil
}

func (s *communityService) Leave(ctx context.Context, communityID, callerID string) error {
	comm, err := s.loadCommunity(ctx, communityID)
	if err != nil {
		return err
	}
	if comm.OwnerID == callerID {
		return apperr.Forbidden("owners cannot leave their own community")
	}
	if err := s.memberships.Delete(ctx, callerID, communityID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperr.NotFound("membership not found")
		}
		return apperr.Internal("leave community", err)
	}
	return nil
}

func (s *communityService) requireOwned(ctx context.Context, communityID, callerID string) (*community.Community, error) {
	comm, err := s.loadCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if comm.OwnerID != callerID {
		return nil, apperr.Forbidden("you must be the owner of the community to perform this action")
	}
	return comm, nil
}

func (s *communityService) loadCommunity(ctx context.Context, communityID string) (*community.Community, error) {
	comm, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("community not found")
		}
		return nil, apperr.Internal("load community", err)
	}
	return comm, nil
}
