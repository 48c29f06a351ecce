// Package domain holds the identity declarations shared across the identity
// subpackages and other bounded contexts: role and status constants and the
// NameProvider interface. Keeping them in a leaf package lets identity/service
// use them without importing the root identity package that wires the module.
package domain

import (
	"context"

	"github.com/google/uuid"
)

// User roles. A user has exactly one role.
const (
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// User account statuses. Inactive users cannot sign in and keep their
// portfolio until an admin reassigns it.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// NameProvider resolves user display names for other domains.
type NameProvider interface {
	GetName(ctx context.Context, id uuid.UUID) (string, error)
}
