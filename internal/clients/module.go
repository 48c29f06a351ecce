// Package clients provides the client portfolio bounded context module:
// capture with ownership resolution, status pipeline, timeline comments and
// portfolio CRUD.
package clients

import (
	"salescrm_backend/internal/clients/capture"
	"salescrm_backend/internal/clients/comments"
	"salescrm_backend/internal/clients/handler"
	"salescrm_backend/internal/clients/management"
	"salescrm_backend/internal/clients/pipeline"
	"salescrm_backend/internal/clients/repository"
	"salescrm_backend/internal/events"
	apphttp "salescrm_backend/internal/http"
	"salescrm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the clients bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	capture    *capture.Service
	pipeline   *pipeline.Service
	management *management.Service
}

// NewModule wires the clients module. users resolves seller names from the
// identity context; archive may be nil when import archiving is disabled.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, users capture.Users, archive capture.Archiver) *Module {
	repo := repository.New(pool)

	captureSvc := capture.New(repo, users, eventBus, archive)
	pipelineSvc := pipeline.New(repo, users, eventBus)
	mgmtSvc := management.New(repo)
	commentsSvc := comments.New(repo, users)

	h := handler.New(captureSvc, pipelineSvc, mgmtSvc, commentsSvc, val)

	return &Module{
		handler:    h,
		capture:    captureSvc,
		pipeline:   pipelineSvc,
		management: mgmtSvc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "clients"
}

// CaptureService returns the capture service for external use.
func (m *Module) CaptureService() *capture.Service {
	return m.capture
}

// RegisterRoutes mounts clients routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/clients"))
	m.handler.RegisterSaleRoutes(ctx.Protected.Group("/sales"))
}

var _ apphttp.Module = (*Module)(nil)
