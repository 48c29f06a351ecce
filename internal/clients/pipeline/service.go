// Package pipeline implements client status transitions: the permissive
// status machine, the Closed transition that records a Sale, and sale
// cancellation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salescrm_backend/internal/clients/domain"
	"salescrm_backend/internal/clients/repository"
	"salescrm_backend/internal/clients/transport"
	"salescrm_backend/internal/events"
	"salescrm_backend/platform/apperr"
	"salescrm_backend/platform/currency"

	"github.com/google/uuid"
)

// Repository is the data access slice the pipeline service needs.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Client, error)
	repository.StatusWriter
}

// Users resolves seller display names for system comments.
type Users interface {
	GetName(ctx context.Context, id uuid.UUID) (string, error)
}

// Service applies status transitions and their sale side effects.
type Service struct {
	repo  Repository
	users Users
	bus   events.Bus
	now   func() time.Time
}

// New creates a pipeline service.
func New(repo Repository, users Users, bus events.Bus) *Service {
	return &Service{repo: repo, users: users, bus: bus, now: time.Now}
}

// UpdateStatus moves a client to the requested status. Entering Closed from
// a non-Closed status additionally records a Sale and its comment; every
// other move is a plain field update.
func (s *Service) UpdateStatus(ctx context.Context, clientID uuid.UUID, req transport.UpdateStatusRequest, sellerID uuid.UUID) (transport.CloseResult, error) {
	client, err := s.repo.GetByID(ctx, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.CloseResult{}, apperr.NotFound("client not found")
	}
	if err != nil {
		return transport.CloseResult{}, apperr.Wrap(apperr.KindInternal, "client lookup failed", err)
	}

	effect, err := domain.PlanTransition(client.Status, req.Status)
	if err != nil {
		return transport.CloseResult{}, apperr.Validation(err.Error()).WithField("status")
	}

	if effect == domain.EffectRecordSale {
		return s.close(ctx, client, req.SaleValueCents, sellerID)
	}

	updated, err := s.repo.UpdateStatus(ctx, clientID, req.Status)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.CloseResult{}, apperr.NotFound("client not found")
	}
	if err != nil {
		return transport.CloseResult{}, apperr.Wrap(apperr.KindInternal, "status update failed", err)
	}
	return transport.CloseResult{Client: transport.ToClientResponse(updated)}, nil
}

func (s *Service) close(ctx context.Context, client repository.Client, valueCents *int64, sellerID uuid.UUID) (transport.CloseResult, error) {
	if valueCents == nil || *valueCents <= 0 {
		return transport.CloseResult{}, apperr.
			Validation("a positive sale value is required to close a lead").
			WithField("saleValueCents")
	}

	sellerName, err := s.users.GetName(ctx, sellerID)
	if err != nil {
		return transport.CloseResult{}, apperr.Wrap(apperr.KindInternal, "could not resolve seller", err)
	}

	updated, sale, err := s.repo.CloseWithSale(ctx, repository.CloseSaleParams{
		ClientID:   client.ID,
		SellerID:   sellerID,
		ValueCents: *valueCents,
		Comment: repository.CommentParams{
			UserID:     &sellerID,
			AuthorName: sellerName,
			Kind:       repository.CommentKindSystem,
			Body:       fmt.Sprintf("Sale closed by %s: %s", sellerName, currency.FormatBRLCents(*valueCents)),
		},
	})
	if errors.Is(err, repository.ErrAlreadyClosed) {
		// Lost the race with another close; the timestamp moved but no
		// duplicate sale was created.
		return transport.CloseResult{Client: transport.ToClientResponse(updated)}, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return transport.CloseResult{}, apperr.NotFound("client not found")
	}
	if err != nil {
		return transport.CloseResult{}, apperr.Wrap(apperr.KindInternal, "could not close sale", err)
	}

	s.bus.Publish(ctx, events.SaleClosed{
		BaseEvent:  events.NewBaseEvent(),
		SaleID:     sale.ID,
		ClientID:   client.ID,
		SellerID:   sellerID,
		ValueCents: sale.ValueCents,
	})

	saleResp := transport.ToSaleResponse(sale)
	return transport.CloseResult{
		Client: transport.ToClientResponse(updated),
		Sale:   &saleResp,
	}, nil
}

// CancelSale deletes a sale owned by the requester and reverts the client to
// Post-sale. Ownership is checked against the sale's recorded seller, not
// the client's current owner.
func (s *Service) CancelSale(ctx context.Context, saleID, requesterID uuid.UUID) (transport.ClientResponse, error) {
	sellerName, err := s.users.GetName(ctx, requesterID)
	if err != nil {
		return transport.ClientResponse{}, apperr.Wrap(apperr.KindInternal, "could not resolve seller", err)
	}

	client, err := s.repo.CancelSale(ctx, saleID, requesterID, repository.CommentParams{
		UserID:     &requesterID,
		AuthorName: sellerName,
		Kind:       repository.CommentKindSystem,
		Body:       fmt.Sprintf("Sale cancelled by %s", sellerName),
	})
	if errors.Is(err, repository.ErrSaleNotFound) {
		return transport.ClientResponse{}, apperr.NotFound("sale not found")
	}
	if errors.Is(err, repository.ErrSaleNotOwned) {
		return transport.ClientResponse{}, apperr.Forbidden("sale belongs to another seller")
	}
	if err != nil {
		return transport.ClientResponse{}, apperr.Wrap(apperr.KindInternal, "could not cancel sale", err)
	}

	s.bus.Publish(ctx, events.SaleCancelled{
		BaseEvent: events.NewBaseEvent(),
		SaleID:    saleID,
		ClientID:  client.ID,
		SellerID:  requesterID,
	})

	return transport.ToClientResponse(client), nil
}
