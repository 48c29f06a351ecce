// Package analytics provides the admin reporting bounded context module:
// the dashboard endpoint and the daily digest.
package analytics

import (
	"salescrm_backend/internal/analytics/digest"
	"salescrm_backend/internal/analytics/handler"
	"salescrm_backend/internal/analytics/repository"
	"salescrm_backend/internal/analytics/service"
	apphttp "salescrm_backend/internal/http"
	"salescrm_backend/platform/config"
	"salescrm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the analytics bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	digest  *digest.Service
}

// NewModule wires the analytics module. recipients and sender feed the
// daily digest; sender may be nil when email delivery is disabled, and
// enqueuer may be nil when no job queue is configured.
func NewModule(pool *pgxpool.Pool, cfg config.AnalyticsConfig, recipients digest.Recipients, sender digest.Sender, enqueuer handler.DigestEnqueuer, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg)
	digestSvc := digest.New(repo, recipients, sender, digest.NewPgStore(pool), cfg, log)

	return &Module{
		handler: handler.New(svc, enqueuer),
		digest:  digestSvc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "analytics"
}

// DigestService returns the daily digest service for the scheduler worker.
func (m *Module) DigestService() *digest.Service {
	return m.digest
}

// RegisterRoutes mounts analytics routes. Dashboards expose cross-team
// data, so the whole group is admin only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/analytics"))
}

var _ apphttp.Module = (*Module)(nil)
