// Package transport defines the request/response DTOs for the clients module.
package transport

import (
	"time"

	"salescrm_backend/internal/clients/repository"

	"github.com/google/uuid"
)

// Capture outcomes returned by the ownership resolver.
const (
	OutcomeCreated     = "created"
	OutcomeTransferred = "transferred"
)

// Availability statuses for the read-only contact check.
const (
	AvailabilityAvailable    = "available"
	AvailabilityAlreadyYours = "already-yours"
	AvailabilityTransferable = "transferable"
	AvailabilityBlocked      = "blocked"
)

type CaptureClientRequest struct {
	Name           string      `json:"name" validate:"required,min=2,max=160"`
	Contact        string      `json:"contact" validate:"required"`
	City           string      `json:"city,omitempty" validate:"max=120"`
	DesiredProduct string      `json:"desiredProduct,omitempty" validate:"max=160"`
	TagIDs         []uuid.UUID `json:"tagIds,omitempty"`
}

type CaptureResult struct {
	Outcome string         `json:"outcome"`
	Client  ClientResponse `json:"client"`
}

type AvailabilityResponse struct {
	Status    string `json:"status"`
	OwnerName string `json:"ownerName,omitempty"`
}

type UpdateClientRequest struct {
	Name           *string      `json:"name,omitempty" validate:"omitempty,min=2,max=160"`
	City           *string      `json:"city,omitempty" validate:"omitempty,max=120"`
	DesiredProduct *string      `json:"desiredProduct,omitempty" validate:"omitempty,max=160"`
	TagIDs         *[]uuid.UUID `json:"tagIds,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	// SaleValueCents is required when moving to Closed.
	SaleValueCents *int64 `json:"saleValueCents,omitempty"`
}

type AddCommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

type ListClientsRequest struct {
	Status string `form:"status"`
	Mine   bool   `form:"mine"`
	Search string `form:"search"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

type ImportRow struct {
	Name           string `json:"name"`
	Contact        string `json:"contact"`
	City           string `json:"city,omitempty"`
	DesiredProduct string `json:"desiredProduct,omitempty"`
}

type ImportRowResult struct {
	Row     int    `json:"row"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

type ImportReport struct {
	Created     int               `json:"created"`
	Transferred int               `json:"transferred"`
	Skipped     int               `json:"skipped"`
	Rows        []ImportRowResult `json:"rows"`
	ArchiveKey  string            `json:"archiveKey,omitempty"`
}

type ClientResponse struct {
	ID                uuid.UUID   `json:"id"`
	Name              string      `json:"name"`
	City              *string     `json:"city,omitempty"`
	NormalizedContact string      `json:"normalizedContact"`
	Status            string      `json:"status"`
	DesiredProduct    *string     `json:"desiredProduct,omitempty"`
	OwnerID           *uuid.UUID  `json:"ownerId,omitempty"`
	TagIDs            []uuid.UUID `json:"tagIds"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

type CommentResponse struct {
	ID         uuid.UUID  `json:"id"`
	UserID     *uuid.UUID `json:"userId,omitempty"`
	AuthorName string     `json:"authorName"`
	Kind       string     `json:"kind"`
	Body       string     `json:"body"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type SaleResponse struct {
	ID         uuid.UUID `json:"id"`
	ClientID   uuid.UUID `json:"clientId"`
	SellerID   uuid.UUID `json:"sellerId"`
	ValueCents int64     `json:"valueCents"`
	SaleDate   time.Time `json:"saleDate"`
}

type CloseResult struct {
	Client ClientResponse `json:"client"`
	Sale   *SaleResponse  `json:"sale,omitempty"`
}

type ClientDetailResponse struct {
	ClientResponse
	Comments []CommentResponse `json:"comments"`
	Sales    []SaleResponse    `json:"sales"`
}

// ToClientResponse maps a repository row to its API shape.
func ToClientResponse(c repository.Client) ClientResponse {
	tagIDs := c.TagIDs
	if tagIDs == nil {
		tagIDs = []uuid.UUID{}
	}
	return ClientResponse{
		ID:                c.ID,
		Name:              c.Name,
		City:              c.City,
		NormalizedContact: c.NormalizedContact,
		Status:            c.Status,
		DesiredProduct:    c.DesiredProduct,
		OwnerID:           c.UserID,
		TagIDs:            tagIDs,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

// ToCommentResponse maps a repository comment to its API shape.
func ToCommentResponse(c repository.Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		UserID:     c.UserID,
		AuthorName: c.AuthorName,
		Kind:       c.Kind,
		Body:       c.Body,
		CreatedAt:  c.CreatedAt,
	}
}

// ToSaleResponse maps a repository sale to its API shape.
func ToSaleResponse(s repository.Sale) SaleResponse {
	return SaleResponse{
		ID:         s.ID,
		ClientID:   s.ClientID,
		SellerID:   s.UserID,
		ValueCents: s.ValueCents,
		SaleDate:   s.SaleDate,
	}
}
