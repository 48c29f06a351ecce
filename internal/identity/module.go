// This file defines the module that encapsulates identity setup and route
// registration.
package identity

import (
	authrepo "salescrm_backend/internal/auth/repository"
	apphttp "salescrm_backend/internal/http"
	"salescrm_backend/internal/identity/handler"
	"salescrm_backend/internal/identity/repository"
	"salescrm_backend/internal/identity/service"
	"salescrm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the identity bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the identity module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, authrepo.New(pool))
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "identity"
}

// NameProvider returns the display name resolver other domains consume.
func (m *Module) NameProvider() NameProvider {
	return m.service
}

// Repository exposes the identity repository for the digest recipient list.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts identity routes. All of them are admin only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin)
}

var _ apphttp.Module = (*Module)(nil)
