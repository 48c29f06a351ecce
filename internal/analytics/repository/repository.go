// Package repository fetches the flat fact collections the aggregator
// consumes. Aggregation itself happens in memory; these queries only narrow
// by group when a team scope is requested.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClientFact is the slice of a client row the aggregator needs.
type ClientFact struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaleFact is the slice of a sale row the aggregator needs.
type SaleFact struct {
	ID         uuid.UUID
	ClientID   uuid.UUID
	UserID     uuid.UUID
	ValueCents int64
	SaleDate   time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListClientFacts returns every client, or only clients owned by sellers of
// the given group.
func (r *Repository) ListClientFacts(ctx context.Context, groupID *uuid.UUID) ([]ClientFact, error) {
	query := `SELECT c.id, c.user_id, c.status, c.created_at, c.updated_at FROM clients c`
	args := []any{}
	if groupID != nil {
		query += ` JOIN users u ON u.id = c.user_id WHERE u.group_id = $1`
		args = append(args, *groupID)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list client facts: %w", err)
	}
	defer rows.Close()

	var facts []ClientFact
	for rows.Next() {
		var f ClientFact
		if err := rows.Scan(&f.ID, &f.UserID, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan client fact: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// ListSaleFacts returns every sale in chronological order, or only sales by
// sellers of the given group. The ordering matters: repurchase detection
// scans the list oldest first.
func (r *Repository) ListSaleFacts(ctx context.Context, groupID *uuid.UUID) ([]SaleFact, error) {
	query := `SELECT s.id, s.client_id, s.user_id, s.value_cents, s.sale_date FROM sales s`
	args := []any{}
	if groupID != nil {
		query += ` JOIN users u ON u.id = s.user_id WHERE u.group_id = $1`
		args = append(args, *groupID)
	}
	query += ` ORDER BY s.sale_date ASC, s.created_at ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sale facts: %w", err)
	}
	defer rows.Close()

	var facts []SaleFact
	for rows.Next() {
		var f SaleFact
		if err := rows.Scan(&f.ID, &f.ClientID, &f.UserID, &f.ValueCents, &f.SaleDate); err != nil {
			return nil, fmt.Errorf("scan sale fact: %w", err)
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// SellerNames resolves display names for a set of seller ids. Sellers that
// no longer exist are simply absent from the result.
func (r *Repository) SellerNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]string{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id, name FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("seller names: %w", err)
	}
	defer rows.Close()

	names := make(map[uuid.UUID]string, len(ids))
	for rows.Next() {
		var (
			id   uuid.UUID
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan seller name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}
