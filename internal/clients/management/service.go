// Package management covers the plain CRUD side of the client portfolio:
// listing, detail views, field updates and deletion.
package management

import (
	"context"
	"errors"

	"salescrm_backend/internal/clients/repository"
	"salescrm_backend/internal/clients/transport"
	"salescrm_backend/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Repository is the data access slice the management service needs.
type Repository interface {
	repository.ClientReader
	UpdateFields(ctx context.Context, id uuid.UUID, params repository.UpdateClientParams) (repository.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListComments(ctx context.Context, clientID uuid.UUID) ([]repository.Comment, error)
	ListSalesByClient(ctx context.Context, clientID uuid.UUID) ([]repository.Sale, error)
}

// Service implements portfolio CRUD.
type Service struct {
	repo Repository
}

// New creates a management service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns a page of clients. When req.Mine is set the result is scoped
// to the requesting seller.
func (s *Service) List(ctx context.Context, req transport.ListClientsRequest, requesterID uuid.UUID) ([]transport.ClientResponse, error) {
	params := repository.ListClientsParams{
		Search: req.Search,
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.Status != "" {
		params.Status = &req.Status
	}
	if req.Mine {
		params.OwnerID = &requesterID
	}
	if params.Limit <= 0 || params.Limit > maxPageSize {
		params.Limit = defaultPageSize
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	clients, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not list clients", err)
	}

	out := make([]transport.ClientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, transport.ToClientResponse(c))
	}
	return out, nil
}

// GetDetail returns a client with its full timeline and sale history.
func (s *Service) GetDetail(ctx context.Context, clientID uuid.UUID) (transport.ClientDetailResponse, error) {
	client, err := s.repo.GetByID(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.ClientDetailResponse{}, apperr.NotFound("client not found")
	}
	if err != nil {
		return transport.ClientDetailResponse{}, apperr.Wrap(apperr.KindInternal, "client lookup failed", err)
	}

	var (
		comments []repository.Comment
		sales    []repository.Sale
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comments, err = s.repo.ListComments(gctx, clientID)
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = s.repo.ListSalesByClient(gctx, clientID)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.ClientDetailResponse{}, apperr.Wrap(apperr.KindInternal, "could not load client history", err)
	}

	detail := transport.ClientDetailResponse{
		ClientResponse: transport.ToClientResponse(client),
		Comments:       make([]transport.CommentResponse, 0, len(comments)),
		Sales:          make([]transport.SaleResponse, 0, len(sales)),
	}
	for _, c := range comments {
		detail.Comments = append(detail.Comments, transport.ToCommentResponse(c))
	}
	for _, sale := range sales {
		detail.Sales = append(detail.Sales, transport.ToSaleResponse(sale))
	}
	return detail, nil
}

// Update applies partial field changes. Contact and status are handled by
// their own services and cannot be changed here.
func (s *Service) Update(ctx context.Context, clientID uuid.UUID, req transport.UpdateClientRequest) (transport.ClientResponse, error) {
	params := repository.UpdateClientParams{
		Name:           req.Name,
		City:           req.City,
		DesiredProduct: req.DesiredProduct,
	}
	if req.TagIDs != nil {
		params.TagIDs = *req.TagIDs
		params.TagIDsSet = true
	}

	client, err := s.repo.UpdateFields(ctx, clientID, params)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.ClientResponse{}, apperr.NotFound("client not found")
	}
	if err != nil {
		return transport.ClientResponse{}, apperr.Wrap(apperr.KindInternal, "client update failed", err)
	}
	return transport.ToClientResponse(client), nil
}

// Delete removes a client and, through the schema's cascades, its comments
// and sales.
func (s *Service) Delete(ctx context.Context, clientID uuid.UUID) error {
	err := s.repo.Delete(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("client not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "client delete failed", err)
	}
	return nil
}
