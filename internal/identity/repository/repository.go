// Package repository provides data access for user and group
// administration.
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

var ErrUserNotFound = errors.New("user not found")
var ErrGroupNotFound = errors.New("group not found")
var ErrEmailTaken = errors.New("email already in use")

type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Role      string
	Status    string
	GroupID   *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Group struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, name, email, role, status, group_id, created_at, updated_at`

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
	GroupID      *uuid.UUID
}

func (r *Repository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, status, group_id, created_at, updated_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, 'active', $5, NOW(), NOW())
		ON CONFLICT (email) DO NOTHING
		RETURNING `+userColumns,
		params.Name, params.Email, params.PasswordHash, params.Role, params.GroupID,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.GroupID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrEmailTaken
	}
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.GroupID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetEmailByID resolves a user's address for notification delivery.
func (r *Repository) GetEmailByID(ctx context.Context, id uuid.UUID) (string, error) {
	var email string
	err := r.pool.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, id).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get user email: %w", err)
	}
	return email, nil
}

// GetNameByID resolves a user's display name.
func (r *Repository) GetNameByID(ctx context.Context, id uuid.UUID) (string, error) {
	var name string
	err := r.pool.QueryRow(ctx, `SELECT name FROM users WHERE id = $1`, id).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get user name: %w", err)
	}
	return name, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.GroupID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListAdminEmailsByGroup returns the addresses of active admins in one
// group, or of admins outside any group when groupID is nil.
func (r *Repository) ListAdminEmailsByGroup(ctx context.Context, groupID *uuid.UUID) ([]string, error) {
	if groupID == nil {
		return r.listAdminEmails(ctx,
			`SELECT email FROM users WHERE role = 'admin' AND status = 'active' AND group_id IS NULL ORDER BY email ASC`)
	}
	return r.listAdminEmails(ctx,
		`SELECT email FROM users WHERE role = 'admin' AND status = 'active' AND group_id = $1 ORDER BY email ASC`, *groupID)
}

func (r *Repository) listAdminEmails(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list admin emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan admin email: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// ListGroupIDs returns the ids of all groups.
func (r *Repository) ListGroupIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM groups ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list group ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type UpdateUserParams struct {
	Name       *string
	Role       *string
	Status     *string
	GroupID    *uuid.UUID
	GroupIDSet bool
}

func (r *Repository) UpdateUser(ctx context.Context, id uuid.UUID, params UpdateUserParams) (User, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{id}

	if params.Name != nil {
		args = append(args, *params.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if params.Role != nil {
		args = append(args, *params.Role)
		sets = append(sets, fmt.Sprintf("role = $%d", len(args)))
	}
	if params.Status != nil {
		args = append(args, *params.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.GroupIDSet {
		args = append(args, params.GroupID)
		sets = append(sets, fmt.Sprintf("group_id = $%d", len(args)))
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + userColumns

	var u User
	err := r.pool.QueryRow(ctx, query, args...).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.GroupID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (r *Repository) CreateGroup(ctx context.Context, name string) (Group, error) {
	var g Group
	err := r.pool.QueryRow(ctx, `
		INSERT INTO groups (id, name, created_at)
		VALUES (gen_random_uuid(), $1, NOW())
		RETURNING id, name, created_at`,
		name,
	).Scan(&g.ID, &g.Name, &g.CreatedAt)
	if err != nil {
		return Group{}, fmt.Errorf("create group: %w", err)
	}
	return g, nil
}

func (r *Repository) ListGroups(ctx context.Context) ([]Group, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM groups ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *Repository) RenameGroup(ctx context.Context, id uuid.UUID, name string) (Group, error) {
	var g Group
	err := r.pool.QueryRow(ctx,
		`UPDATE groups SET name = $2 WHERE id = $1 RETURNING id, name, created_at`, id, name).
		Scan(&g.ID, &g.Name, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, ErrGroupNotFound
	}
	if err != nil {
		return Group{}, fmt.Errorf("rename group: %w", err)
	}
	return g, nil
}

// DeleteGroup removes a group. Member users keep their accounts; their
// group_id is cleared by the schema's ON DELETE SET NULL.
func (r *Repository) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGroupNotFound
	}
	return nil
}
