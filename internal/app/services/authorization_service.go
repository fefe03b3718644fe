package services

import (
	"context"
	"errors"

	"github.com/communityhub/server/internal/app/repositories"
	"github.com/communityhub/server/internal/domain/apperr"
)

// Access describes the caller's relationship to a community. Ownership
// implies membership.
type Access struct {
	IsOwner  bool `json:"is_owner"`
	IsMember bool `json:"is_member"`
}

// AuthorizationService derives access rights from the membership directory.
// It performs no writes and is safe to call repeatedly per request.
type AuthorizationService interface {
	CheckAccess(ctx context.Context, userID, communityID string) (Access, error)
	RequireMember(ctx context.Context, userID, communityID string) (Access, error)
	RequireOwner(ctx context.Context, userID, communityID string) error
}

type authorizationService struct {
	communities repositories.CommunityRepository
	memberships repositories.MembershipRepository
}

func NewAuthorizationService(communities repositories.CommunityRepository, memberships repositories.MembershipRepository) AuthorizationService {
	return &authorizationService{communities: communities, memberships: memberships}
}

func (s *authorizationService) CheckAccess(ctx context.Context, userID, communityID string) (Access, error) {
	comm, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Access{}, apperr.NotFound("community not found")
		}
		return Access{}, apperr.Internal("load community", err)
	}
	if comm.OwnerID == userID {
		return Access{IsOwner: true, IsMember: true}, nil
	}

	_, err = s.memberships.Get(ctx, userID, communityID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Access{}, nil
		}
		return Access{}, apperr.Internal("load membership", err)
	}
	return Access{IsMember: true}, nil
}

func (s *authorizationService) RequireMember(ctx context.Context, userID, communityID string) (Access, error) {
	access, err := s.CheckAccess(ctx, userID, communityID)
	if err != nil {
		return Access{}, err
	}
	if !access.IsMember {
		return Access{}, apperr.Forbidden("you must be a member of the community to perform this action")
	}
	return access, nil
}

func (s *authorizationService) RequireOwner(ctx context.Context, userID, communityID string) error {
	access, err := s.CheckAccess(ctx, userID, communityID)
	if err != nil {
		return err
	}
	if !access.IsOwner {
		return apperr.Forbidden("you must be the owner of the community to perform this action")
	}
	return nil
}
