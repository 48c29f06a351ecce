package repository

import (
	"context"
	"errors"
	"time"

	"salescrm_backend/internal/clients/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrSaleNotFound = errors.New("sale not found")

// ErrSaleNotOwned is returned when the requester is not the seller recorded
// on the sale. The check uses the sale's user_id, not the client's current
// owner; the client may have been transferred since the sale was closed.
var ErrSaleNotOwned = errors.New("sale not owned by requester")

// ErrAlreadyClosed is returned when a close-with-sale finds the row already
// Closed under the lock; the caller bumped the timestamp but no sale was
// created.
var ErrAlreadyClosed = errors.New("client already closed")

type Sale struct {
	ID         uuid.UUID
	ClientID   uuid.UUID
	UserID     uuid.UUID
	ValueCents int64
	SaleDate   time.Time
	CreatedAt  time.Time
}

type CloseSaleParams struct {
	ClientID   uuid.UUID
	SellerID   uuid.UUID
	ValueCents int64
	Comment    CommentParams
}

// CloseWithSale transitions a client to Closed and records the Sale plus its
// comment in one transaction. If the locked row is already Closed, only the
// timestamp is bumped and ErrAlreadyClosed is returned with the client, so a
// concurrent double-close never produces two sales.
func (r *Repository) CloseWithSale(ctx context.Context, params CloseSaleParams) (Client, Sale, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Client{}, Sale{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1 FOR UPDATE`, params.ClientID)
	current, err := scanClient(row)
	if err != nil {
		return Client{}, Sale{}, err
	}

	if current.Status == domain.StatusClosed {
		row = tx.QueryRow(ctx, `
			UPDATE clients SET updated_at = NOW() WHERE id = $1
			RETURNING `+clientColumns, params.ClientID)
		client, scanErr := scanClient(row)
		if scanErr != nil {
			return Client{}, Sale{}, scanErr
		}
		if err := tx.Commit(ctx); err != nil {
			return Client{}, Sale{}, err
		}
		return client, Sale{}, ErrAlreadyClosed
	}

	var sale Sale
	err = tx.QueryRow(ctx, `
		INSERT INTO sales (client_id, user_id, value_cents, sale_date)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, client_id, user_id, value_cents, sale_date, created_at`,
		params.ClientID, params.SellerID, params.ValueCents,
	).Scan(&sale.ID, &sale.ClientID, &sale.UserID, &sale.ValueCents, &sale.SaleDate, &sale.CreatedAt)
	if err != nil {
		return Client{}, Sale{}, err
	}

	comment := params.Comment
	comment.ClientID = params.ClientID
	if err := insertComment(ctx, tx, comment); err != nil {
		return Client{}, Sale{}, err
	}

	row = tx.QueryRow(ctx, `
		UPDATE clients SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+clientColumns,
		params.ClientID, domain.StatusClosed,
	)
	client, err := scanClient(row)
	if err != nil {
		return Client{}, Sale{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Client{}, Sale{}, err
	}
	return client, sale, nil
}

// CancelSale deletes a sale owned by the requester and reverts the linked
// client to Post-sale, atomically.
func (r *Repository) CancelSale(ctx context.Context, saleID, requesterID uuid.UUID, comment CommentParams) (Client, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Client{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var sale Sale
	err = tx.QueryRow(ctx, `
		SELECT id, client_id, user_id, value_cents, sale_date, created_at
		FROM sales WHERE id = $1 FOR UPDATE`, saleID,
	).Scan(&sale.ID, &sale.ClientID, &sale.UserID, &sale.ValueCents, &sale.SaleDate, &sale.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrSaleNotFound
	}
	if err != nil {
		return Client{}, err
	}

	if sale.UserID != requesterID {
		return Client{}, ErrSaleNotOwned
	}

	if _, err := tx.Exec(ctx, `DELETE FROM sales WHERE id = $1`, saleID); err != nil {
		return Client{}, err
	}

	row := tx.QueryRow(ctx, `
		UPDATE clients SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+clientColumns,
		sale.ClientID, domain.StatusPostSale,
	)
	client, err := scanClient(row)
	if err != nil {
		return Client{}, err
	}

	comment.ClientID = sale.ClientID
	if err := insertComment(ctx, tx, comment); err != nil {
		return Client{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Client{}, err
	}
	return client, nil
}

// ListSalesByClient returns a client's sales, newest first.
func (r *Repository) ListSalesByClient(ctx context.Context, clientID uuid.UUID) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, client_id, user_id, value_cents, sale_date, created_at
		FROM sales WHERE client_id = $1
		ORDER BY sale_date DESC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]Sale, 0)
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.ClientID, &s.UserID, &s.ValueCents, &s.SaleDate, &s.CreatedAt); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}
