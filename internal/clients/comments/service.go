// Package comments handles the user-authored part of a client's timeline.
// System comments are written by the capture and pipeline services inside
// their own transactions.
package comments

import (
	"context"
	"errors"

	"salescrm_backend/internal/clients/repository"
	"salescrm_backend/internal/clients/transport"
	"salescrm_backend/platform/apperr"
	"salescrm_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Repository is the data access slice the comments service needs.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Client, error)
	repository.CommentReader
	repository.CommentWriter
}

// Users resolves author display names.
type Users interface {
	GetName(ctx context.Context, id uuid.UUID) (string, error)
}

type Service struct {
	repo  Repository
	users Users
}

func New(repo Repository, users Users) *Service {
	return &Service{repo: repo, users: users}
}

// List returns a client's timeline oldest first.
func (s *Service) List(ctx context.Context, clientID uuid.UUID) ([]transport.CommentResponse, error) {
	if _, err := s.repo.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("client not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "client lookup failed", err)
	}

	comments, err := s.repo.ListComments(ctx, clientID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not list comments", err)
	}

	out := make([]transport.CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, transport.ToCommentResponse(c))
	}
	return out, nil
}

// Add appends a user comment to a client's timeline.
func (s *Service) Add(ctx context.Context, clientID uuid.UUID, req transport.AddCommentRequest, authorID uuid.UUID) (transport.CommentResponse, error) {
	if _, err := s.repo.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.CommentResponse{}, apperr.NotFound("client not found")
		}
		return transport.CommentResponse{}, apperr.Wrap(apperr.KindInternal, "client lookup failed", err)
	}

	authorName, err := s.users.GetName(ctx, authorID)
	if err != nil {
		return transport.CommentResponse{}, apperr.Wrap(apperr.KindInternal, "could not resolve author", err)
	}

	comment, err := s.repo.CreateComment(ctx, repository.CommentParams{
		ClientID:   clientID,
		UserID:     &authorID,
		AuthorName: authorName,
		Kind:       repository.CommentKindUser,
		Body:       sanitize.Text(req.Body),
	})
	if err != nil {
		return transport.CommentResponse{}, apperr.Wrap(apperr.KindInternal, "could not create comment", err)
	}
	return transport.ToCommentResponse(comment), nil
}
