// Package service implements user and group administration. Deactivating a
// user revokes their sessions but leaves their portfolio intact; stale
// leads flow to other sellers through the capture transfer rule.
package service

import (
	"context"
	"errors"

	"salescrm_backend/internal/auth/password"
	authrepo "salescrm_backend/internal/auth/repository"
	"salescrm_backend/internal/identity/domain"
	"salescrm_backend/internal/identity/repository"
	"salescrm_backend/internal/identity/transport"
	"salescrm_backend/platform/apperr"

	"github.com/google/uuid"
)

// Sessions revokes refresh tokens when a user is deactivated.
type Sessions interface {
	RevokeAllRefreshTokens(ctx context.Context, userID uuid.UUID) error
}

type Service struct {
	repo     *repository.Repository
	sessions Sessions
}

func New(repo *repository.Repository, sessions Sessions) *Service {
	return &Service{repo: repo, sessions: sessions}
}

func (s *Service) CreateUser(ctx context.Context, req transport.CreateUserRequest) (transport.UserResponse, error) {
	hash, err := password.Hash(req.Password)
	if err != nil {
		return transport.UserResponse{}, apperr.Wrap(apperr.KindInternal, "could not hash password", err)
	}

	user, err := s.repo.CreateUser(ctx, repository.CreateUserParams{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		GroupID:      req.GroupID,
	})
	if errors.Is(err, repository.ErrEmailTaken) {
		return transport.UserResponse{}, apperr.Conflict("email already in use").WithField("email")
	}
	if err != nil {
		return transport.UserResponse{}, apperr.Wrap(apperr.KindInternal, "could not create user", err)
	}
	return transport.ToUserResponse(user), nil
}

func (s *Service) ListUsers(ctx context.Context) ([]transport.UserResponse, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not list users", err)
	}
	out := make([]transport.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, transport.ToUserResponse(u))
	}
	return out, nil
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req transport.UpdateUserRequest) (transport.UserResponse, error) {
	if req.GroupID != nil && req.ClearGroup {
		return transport.UserResponse{}, apperr.Validation("groupId and clearGroup are mutually exclusive").WithField("groupId")
	}

	params := repository.UpdateUserParams{
		Name:   req.Name,
		Role:   req.Role,
		Status: req.Status,
	}
	if req.GroupID != nil || req.ClearGroup {
		params.GroupID = req.GroupID
		params.GroupIDSet = true
	}

	user, err := s.repo.UpdateUser(ctx, id, params)
	if errors.Is(err, repository.ErrUserNotFound) {
		return transport.UserResponse{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return transport.UserResponse{}, apperr.Wrap(apperr.KindInternal, "could not update user", err)
	}

	if req.Status != nil && *req.Status == domain.UserStatusInactive {
		if err := s.sessions.RevokeAllRefreshTokens(ctx, id); err != nil {
			return transport.UserResponse{}, apperr.Wrap(apperr.KindInternal, "could not revoke sessions", err)
		}
	}
	return transport.ToUserResponse(user), nil
}

// GetName implements identity.NameProvider.
func (s *Service) GetName(ctx context.Context, id uuid.UUID) (string, error) {
	name, err := s.repo.GetNameByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", apperr.NotFound("user not found")
	}
	return name, err
}

func (s *Service) CreateGroup(ctx context.Context, req transport.CreateGroupRequest) (transport.GroupResponse, error) {
	group, err := s.repo.CreateGroup(ctx, req.Name)
	if err != nil {
		return transport.GroupResponse{}, apperr.Wrap(apperr.KindInternal, "could not create group", err)
	}
	return transport.ToGroupResponse(group), nil
}

func (s *Service) ListGroups(ctx context.Context) ([]transport.GroupResponse, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not list groups", err)
	}
	out := make([]transport.GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, transport.ToGroupResponse(g))
	}
	return out, nil
}

func (s *Service) RenameGroup(ctx context.Context, id uuid.UUID, req transport.CreateGroupRequest) (transport.GroupResponse, error) {
	group, err := s.repo.RenameGroup(ctx, id, req.Name)
	if errors.Is(err, repository.ErrGroupNotFound) {
		return transport.GroupResponse{}, apperr.NotFound("group not found")
	}
	if err != nil {
		return transport.GroupResponse{}, apperr.Wrap(apperr.KindInternal, "could not rename group", err)
	}
	return transport.ToGroupResponse(group), nil
}

func (s *Service) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	err := s.repo.DeleteGroup(ctx, id)
	if errors.Is(err, repository.ErrGroupNotFound) {
		return apperr.NotFound("group not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "could not delete group", err)
	}
	return nil
}

var _ domain.NameProvider = (*Service)(nil)
var _ Sessions = (*authrepo.Repository)(nil)
