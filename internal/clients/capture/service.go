// Package capture implements the lead ownership resolver: deciding, for a
// submitted contact, whether to create a new client, reject the capture, or
// transfer a stale client to the submitting seller.
package capture

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
	"salescrm_backend/platform/phone"
	"salescrm_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Repository is the data access slice the resolver needs.
type Repository interface {
	repository.ClientReader
	repository.ClientWriter
}

// Users resolves seller display names for system comments and conflict
// messages.
type Users interface {
	GetName(ctx context.Context, id uuid.UUID) (string, error)
}

// Archiver stores raw bulk-import files for later audit. Optional; a nil
// archiver skips archiving.
type Archiver interface {
	Archive(ctx context.Context, fileName, contentType string, data []byte) (string, error)
}

// Service decides how a captured contact is persisted.
type Service struct {
	repo    Repository
	users   Users
	bus     events.Bus
	archive Archiver
	now     func() time.Time
}

// New creates a capture service.
func New(repo Repository, users Users, bus events.Bus, archive Archiver) *Service {
	return &Service{repo: repo, users: users, bus: bus, archive: archive, now: time.Now}
}

// Capture runs the ownership resolution for one submitted contact. Exactly
// one of {create, reject, transfer} happens per call.
func (s *Service) Capture(ctx context.Context, req transport.CaptureClientRequest, sellerID uuid.UUID) (transport.CaptureResult, error) {
	key := phone.ContactKey(req.Contact)
	if !phone.IsUsableDedupKey(key) {
		return transport.CaptureResult{}, apperr.Validation("contact must have at least 8 digits").WithField("contact")
	}

	sellerName, err := s.users.GetName(ctx, sellerID)
	if err != nil {
		return transport.CaptureResult{}, apperr.Wrap(apperr.KindInternal, "could not resolve seller", err)
	}

	existing, err := s.repo.GetByDedupKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return s.create(ctx, req, key, sellerID, sellerName)
	}
	if err != nil {
		return transport.CaptureResult{}, apperr.Wrap(apperr.KindInternal, "contact lookup failed", err)
	}

	if existing.UserID != nil && *existing.UserID == sellerID {
		return transport.CaptureResult{}, apperr.Conflict("this contact is already in your portfolio").WithField("contact")
	}

	// An owned client updated within the staleness window is protected from
	// poaching; an unowned client is claimable immediately.
	if existing.UserID != nil && !domain.IsStale(existing.UpdatedAt, s.now()) {
		ownerName, nameErr := s.users.GetName(ctx, *existing.UserID)
		if nameErr != nil {
			ownerName = "another seller"
		}
		return transport.CaptureResult{}, apperr.
			Conflict(fmt.Sprintf("this contact is an active lead of %s", ownerName)).
			WithField("contact")
	}

	return s.transfer(ctx, existing, sellerID, sellerName)
}

func (s *Service) create(ctx context.Context, req transport.CaptureClientRequest, key string, sellerID uuid.UUID, sellerName string) (transport.CaptureResult, error) {
	params := repository.CreateClientParams{
		Name:              sanitize.Text(req.Name),
		NormalizedContact: key,
		OwnerID:           sellerID,
		TagIDs:            req.TagIDs,
	}
	if req.City != "" {
		params.City = &req.City
	}
	if req.DesiredProduct != "" {
		params.DesiredProduct = &req.DesiredProduct
	}

	client, err := s.repo.CreateWithComment(ctx, params, repository.CommentParams{
		UserID:     &sellerID,
		AuthorName: sellerName,
		Kind:       repository.CommentKindSystem,
		Body:       fmt.Sprintf("Lead created by %s", sellerName),
	})
	if err != nil {
		return transport.CaptureResult{}, apperr.Wrap(apperr.KindInternal, "could not create client", err)
	}

	s.bus.Publish(ctx, events.ClientCaptured{
		BaseEvent:  events.NewBaseEvent(),
		ClientID:   client.ID,
		ClientName: client.Name,
		OwnerID:    sellerID,
	})

	return transport.CaptureResult{
		Outcome: transport.OutcomeCreated,
		Client:  transport.ToClientResponse(client),
	}, nil
}

func (s *Service) transfer(ctx context.Context, existing repository.Client, sellerID uuid.UUID, sellerName string) (transport.CaptureResult, error) {
	staleBefore := s.now()
	if existing.UserID != nil {
		staleBefore = s.now().Add(-domain.StaleAfter)
	}

	client, err := s.repo.TransferOwnership(ctx, repository.TransferParams{
		ClientID:    existing.ID,
		FromOwnerID: existing.UserID,
		NewOwnerID:  sellerID,
		StaleBefore: staleBefore,
		Comment: repository.CommentParams{
			UserID:     &sellerID,
			AuthorName: sellerName,
			Kind:       repository.CommentKindSystem,
			Body:       fmt.Sprintf("Lead transferred to %s", sellerName),
		},
	})
	if errors.Is(err, repository.ErrOwnershipChanged) {
		return transport.CaptureResult{}, apperr.Conflict("this contact was just claimed by another seller").WithField("contact")
	}
	if err != nil {
		return transport.CaptureResult{}, apperr.Wrap(apperr.KindInternal, "could not transfer client", err)
	}

	// Claiming an unowned lead is not a transfer: there is no previous
	// owner, so no event and nobody to notify.
	if existing.UserID != nil {
		s.bus.Publish(ctx, events.ClientTransferred{
			BaseEvent:       events.NewBaseEvent(),
			ClientID:        client.ID,
			ClientName:      client.Name,
			PreviousOwnerID: existing.UserID,
			NewOwnerID:      sellerID,
			NewOwnerName:    sellerName,
		})
	}

	return transport.CaptureResult{
		Outcome: transport.OutcomeTransferred,
		Client:  transport.ToClientResponse(client),
	}, nil
}

// CheckAvailability answers the live-typing contact check without writing.
// It must mirror Capture exactly: same dedup key, same owner comparison,
// same staleness window, or the UI and the write path disagree.
func (s *Service) CheckAvailability(ctx context.Context, rawContact string, sellerID uuid.UUID) (transport.AvailabilityResponse, error) {
	key := phone.ContactKey(rawContact)
	if !phone.IsUsableDedupKey(key) {
		return transport.AvailabilityResponse{}, apperr.Validation("contact must have at least 8 digits").WithField("contact")
	}

	existing, err := s.repo.GetByDedupKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.AvailabilityResponse{Status: transport.AvailabilityAvailable}, nil
	}
	if err != nil {
		return transport.AvailabilityResponse{}, apperr.Wrap(apperr.KindInternal, "contact lookup failed", err)
	}

	if existing.UserID == nil {
		return transport.AvailabilityResponse{Status: transport.AvailabilityTransferable}, nil
	}

	if *existing.UserID == sellerID {
		return transport.AvailabilityResponse{Status: transport.AvailabilityAlreadyYours}, nil
	}

	ownerName, nameErr := s.users.GetName(ctx, *existing.UserID)
	if nameErr != nil {
		ownerName = "another seller"
	}

	if domain.IsStale(existing.UpdatedAt, s.now()) {
		return transport.AvailabilityResponse{
			Status:    transport.AvailabilityTransferable,
			OwnerName: ownerName,
		}, nil
	}

	return transport.AvailabilityResponse{
		Status:    transport.AvailabilityBlocked,
		OwnerName: ownerName,
	}, nil
}
