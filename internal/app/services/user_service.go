package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/communityhub/server/internal/app/repositories"
	"github.com/communityhub/server/internal/domain/apperr"
	"github.com/communityhub/server/internal/domain/user"
	"github.com/communityhub/server/pkg/token"
)

// UserService maps verified identity subjects to user records and issues
// bearer tokens for them.
type UserService interface {
	Register(ctx context.Context, in user.RegisterInput) (*user.User, error)
	Authenticate(ctx context.Context, bearer string) (*user.User, error)
	IssueToken(ctx context.Context, subject string) (string, error)
	GetByID(ctx context.Context, userID string) (*user.User, error)
}

type userService struct {
	users    repositories.UserRepository
	verifier *token.Verifier
}

func NewUserService(users repositories.UserRepository, verifier *token.Verifier) UserService {
	return &userService{users: users, verifier: verifier}
}

func (s *userService) Register(ctx context.Context, in user.RegisterInput) (*user.User, error) {
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		return nil, apperr.BadRequest("subject is required")
	}

	u := &user.User{
		ID:        uuid.NewString(),
		Subject:   subject,
		Email:     strings.TrimSpace(in.Email),
		Name:      strings.TrimSpace(in.Name),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict("a user with this subject already exists")
		}
		return nil, apperr.Internal("create user", err)
	}
	return u, nil
}

// Authenticate verifies a bearer token and resolves the user it belongs to.
func (s *userService) Authenticate(ctx context.Context, bearer string) (*user.User, error) {
	raw := strings.TrimSpace(bearer)
	if raw == "" {
		return nil, apperr.Unauthenticated("missing bearer token")
	}
	subject, err := s.verifier.Verify(raw)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return nil, apperr.Unauthenticated("token expired")
		}
		return nil, apperr.Unauthenticated("invalid token")
	}

	u, err := s.users.GetBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.Unauthenticated("unknown user")
		}
		return nil, apperr.Internal("load user", err)
	}
	return u, nil
}

func (s *userService) IssueToken(ctx context.Context, subject string) (string, error) {
	u, err := s.users.GetBySubject(ctx, strings.TrimSpace(subject))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", apperr.NotFound("user not found")
		}
		return "", apperr.Internal("load user", err)
	}
	signed, err := s.verifier.Issue(u.Subject)
	if err != nil {
		return "", apperr.Internal("sign token", err)
	}
	return signed, nil
}

func (s *userService) GetByID(ctx context.Context, userID string) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("load user", err)
	}
	return u, nil
}
