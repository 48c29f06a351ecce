package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	CommentKindSystem = "system"
	CommentKindUser   = "user"
)

// Comment is an append-only timeline entry scoped to a client. System
// comments record captures, transfers and sale events; user comments are
// free text.
type Comment struct {
	ID         uuid.UUID
	ClientID   uuid.UUID
	UserID     *uuid.UUID
	AuthorName string
	Kind       string
	Body       string
	CreatedAt  time.Time
}

type CommentParams struct {
	ClientID   uuid.UUID
	UserID     *uuid.UUID
	AuthorName string
	Kind       string
	Body       string
}

// insertComment appends a comment inside an existing transaction. Every
// multi-document write path funnels through this so the audit entry commits
// with the write it describes.
func insertComment(ctx context.Context, tx pgx.Tx, params CommentParams) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO comments (client_id, user_id, author_name, kind, body)
		VALUES ($1, $2, $3, $4, $5)`,
		params.ClientID, params.UserID, params.AuthorName, params.Kind, params.Body,
	)
	return err
}

// CreateComment appends a free-standing comment (user-authored notes).
func (r *Repository) CreateComment(ctx context.Context, params CommentParams) (Comment, error) {
	var c Comment
	err := r.pool.QueryRow(ctx, `
		INSERT INTO comments (client_id, user_id, author_name, kind, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, client_id, user_id, author_name, kind, body, created_at`,
		params.ClientID, params.UserID, params.AuthorName, params.Kind, params.Body,
	).Scan(&c.ID, &c.ClientID, &c.UserID, &c.AuthorName, &c.Kind, &c.Body, &c.CreatedAt)
	if err != nil {
		return Comment{}, err
	}
	return c, nil
}

// ListComments returns a client's timeline, oldest first.
func (r *Repository) ListComments(ctx context.Context, clientID uuid.UUID) ([]Comment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, client_id, user_id, author_name, kind, body, created_at
		FROM comments
		WHERE client_id = $1
		ORDER BY created_at ASC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]Comment, 0)
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ClientID, &c.UserID, &c.AuthorName, &c.Kind, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
