package transport

import (
	"time"

	"salescrm_backend/internal/identity/repository"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Name     string     `json:"name" validate:"required,min=2,max=120"`
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=8"`
	Role     string     `json:"role" validate:"required,oneof=seller admin"`
	GroupID  *uuid.UUID `json:"groupId,omitempty"`
}

type UpdateUserRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Role   *string `json:"role,omitempty" validate:"omitempty,oneof=seller admin"`
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	// GroupID moves the user into a group; ClearGroup removes the current
	// membership. Setting both is a validation error.
	GroupID    *uuid.UUID `json:"groupId,omitempty"`
	ClearGroup bool       `json:"clearGroup,omitempty"`
}

type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}

type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	GroupID   *uuid.UUID `json:"groupId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type GroupResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func ToUserResponse(u repository.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		GroupID:   u.GroupID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToGroupResponse(g repository.Group) GroupResponse {
	return GroupResponse{ID: g.ID, Name: g.Name, CreatedAt: g.CreatedAt}
}
