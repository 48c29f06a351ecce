package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("client not found")

// ErrOwnershipChanged is returned when a transfer finds the client row no
// longer in the state the caller based its decision on (another capture won
// the row lock first).
var ErrOwnershipChanged = errors.New("client ownership changed")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Client struct {
	ID                uuid.UUID
	Name              string
	City              *string
	NormalizedContact string
	Status            string
	DesiredProduct    *string
	UserID            *uuid.UUID
	TagIDs            []uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const clientColumns = `id, name, city, normalized_contact, status, desired_product, user_id, tag_ids, created_at, updated_at`

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(
		&c.ID, &c.Name, &c.City, &c.NormalizedContact, &c.Status,
		&c.DesiredProduct, &c.UserID, &c.TagIDs, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrNotFound
	}
	if err != nil {
		return Client{}, err
	}
	return c, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	return scanClient(row)
}

// GetByDedupKey looks a client up by its normalized contact. The same lookup
// backs both the capture write path and the read-only availability check.
func (r *Repository) GetByDedupKey(ctx context.Context, key string) (Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE normalized_contact = $1`, key)
	return scanClient(row)
}

type ListClientsParams struct {
	Status  *string
	OwnerID *uuid.UUID
	Search  string
	Limit   int
	Offset  int
}

func (r *Repository) List(ctx context.Context, params ListClientsParams) ([]Client, error) {
	where := []string{"TRUE"}
	args := []any{}

	if params.Status != nil {
		args = append(args, *params.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.OwnerID != nil {
		args = append(args, *params.OwnerID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR normalized_contact LIKE $%d)", len(args), len(args)))
	}

	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `SELECT ` + clientColumns + ` FROM clients WHERE ` + strings.Join(where, " AND ") +
		fmt.Sprintf(" ORDER BY updated_at DESC LIMIT %d OFFSET %d", limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]Client, 0)
	for rows.Next() {
		var c Client
		if err := rows.Scan(
			&c.ID, &c.Name, &c.City, &c.NormalizedContact, &c.Status,
			&c.DesiredProduct, &c.UserID, &c.TagIDs, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

type CreateClientParams struct {
	Name              string
	City              *string
	NormalizedContact string
	DesiredProduct    *string
	OwnerID           uuid.UUID
	TagIDs            []uuid.UUID
}

// CreateWithComment inserts a client and its creation comment in one
// transaction, so a client row never exists without its audit trail.
func (r *Repository) CreateWithComment(ctx context.Context, params CreateClientParams, comment CommentParams) (Client, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Client{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tagIDs := params.TagIDs
	if tagIDs == nil {
		tagIDs = []uuid.UUID{}
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO clients (name, city, normalized_contact, desired_product, user_id, tag_ids)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+clientColumns,
		params.Name, params.City, params.NormalizedContact, params.DesiredProduct, params.OwnerID, tagIDs,
	)
	client, err := scanClient(row)
	if err != nil {
		return Client{}, err
	}

	comment.ClientID = client.ID
	if err := insertComment(ctx, tx, comment); err != nil {
		return Client{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Client{}, err
	}
	return client, nil
}

type TransferParams struct {
	ClientID    uuid.UUID
	FromOwnerID *uuid.UUID
	NewOwnerID  uuid.UUID
	// StaleBefore guards the transfer: the row must not have been touched at
	// or after this instant. Re-checked under the row lock so concurrent
	// captures of the same contact serialize instead of both transferring.
	StaleBefore time.Time
	Comment     CommentParams
}

// TransferOwnership reassigns a stale client to a new seller and records the
// audit comment, atomically. Returns ErrOwnershipChanged when the locked row
// no longer matches the owner/staleness the caller observed.
func (r *Repository) TransferOwnership(ctx context.Context, params TransferParams) (Client, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Client{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1 FOR UPDATE`, params.ClientID)
	current, err := scanClient(row)
	if err != nil {
		return Client{}, err
	}

	sameOwner := current.UserID == nil && params.FromOwnerID == nil ||
		current.UserID != nil && params.FromOwnerID != nil && *current.UserID == *params.FromOwnerID
	if !sameOwner || current.UpdatedAt.After(params.StaleBefore) {
		return Client{}, ErrOwnershipChanged
	}

	row = tx.QueryRow(ctx, `
		UPDATE clients SET user_id = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+clientColumns,
		params.ClientID, params.NewOwnerID,
	)
	client, err := scanClient(row)
	if err != nil {
		return Client{}, err
	}

	comment := params.Comment
	comment.ClientID = client.ID
	if err := insertComment(ctx, tx, comment); err != nil {
		return Client{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Client{}, err
	}
	return client, nil
}

type UpdateClientParams struct {
	Name           *string
	City           *string
	DesiredProduct *string
	TagIDs         []uuid.UUID
	TagIDsSet      bool
}

func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, params UpdateClientParams) (Client, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}

	if params.Name != nil {
		args = append(args, *params.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if params.City != nil {
		args = append(args, *params.City)
		sets = append(sets, fmt.Sprintf("city = $%d", len(args)))
	}
	if params.DesiredProduct != nil {
		args = append(args, *params.DesiredProduct)
		sets = append(sets, fmt.Sprintf("desired_product = $%d", len(args)))
	}
	if params.TagIDsSet {
		tagIDs := params.TagIDs
		if tagIDs == nil {
			tagIDs = []uuid.UUID{}
		}
		args = append(args, tagIDs)
		sets = append(sets, fmt.Sprintf("tag_ids = $%d", len(args)))
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE clients SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+clientColumns, args...)
	return scanClient(row)
}

// Delete removes a client permanently. Comments and sales cascade in the
// schema; clients are only ever deleted by explicit user action.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus moves a client to a new status with a bumped timestamp. Used
// for every transition that does not create or delete a Sale; those moves
// carry no side records.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (Client, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE clients SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+clientColumns,
		id, status,
	)
	return scanClient(row)
}
