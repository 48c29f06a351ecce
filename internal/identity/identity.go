// Package identity owns user and group administration. This file defines
// the public API of the identity bounded context; other domains import only
// what is declared here. The declarations live in identity/domain so the
// service subpackage can share them without importing this root package.
package identity

import (
	"salescrm_backend/internal/identity/domain"
)

// User roles. A user has exactly one role.
const (
	RoleSeller = domain.RoleSeller
	RoleAdmin  = domain.RoleAdmin
)

// User account statuses. Inactive users cannot sign in and keep their
// portfolio until an admin reassigns it.
const (
	UserStatusActive   = domain.UserStatusActive
	UserStatusInactive = domain.UserStatusInactive
)

// NameProvider resolves user display names for other domains.
type NameProvider = domain.NameProvider
