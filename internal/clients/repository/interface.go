package repository

import (
	"context"

	"github.com/google/uuid"
)

// Consumer-driven interfaces. Each service composes only the slices it needs,
// which keeps fakes in tests small.

type ClientReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Client, error)
	GetByDedupKey(ctx context.Context, key string) (Client, error)
	List(ctx context.Context, params ListClientsParams) ([]Client, error)
}

type ClientWriter interface {
	CreateWithComment(ctx context.Context, params CreateClientParams, comment CommentParams) (Client, error)
	TransferOwnership(ctx context.Context, params TransferParams) (Client, error)
	UpdateFields(ctx context.Context, id uuid.UUID, params UpdateClientParams) (Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type StatusWriter interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (Client, error)
	CloseWithSale(ctx context.Context, params CloseSaleParams) (Client, Sale, error)
	CancelSale(ctx context.Context, saleID, requesterID uuid.UUID, comment CommentParams) (Client, error)
}

type CommentReader interface {
	ListComments(ctx context.Context, clientID uuid.UUID) ([]Comment, error)
}

type CommentWriter interface {
	CreateComment(ctx context.Context, params CommentParams) (Comment, error)
}

type SaleReader interface {
	ListSalesByClient(ctx context.Context, clientID uuid.UUID) ([]Sale, error)
}

// compile-time checks
var (
	_ ClientReader  = (*Repository)(nil)
	_ ClientWriter  = (*Repository)(nil)
	_ StatusWriter  = (*Repository)(nil)
	_ CommentReader = (*Repository)(nil)
	_ CommentWriter = (*Repository)(nil)
	_ SaleReader    = (*Repository)(nil)
)
