// Package service assembles the analytics dashboard: it fetches the fact
// collections concurrently and hands them to the in-memory aggregator.
package service

import (
	"context"
	"time"

	"salescrm_backend/internal/analytics/period"
	"salescrm_backend/internal/analytics/repository"
	"salescrm_backend/internal/analytics/transport"
	"salescrm_backend/platform/apperr"
	"salescrm_backend/platform/config"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Repository is the data access slice the dashboard needs.
type Repository interface {
	ListClientFacts(ctx context.Context, groupID *uuid.UUID) ([]repository.ClientFact, error)
	ListSaleFacts(ctx context.Context, groupID *uuid.UUID) ([]repository.SaleFact, error)
	SellerNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type Service struct {
	repo   Repository
	offset time.Duration
	now    func() time.Time
}

func New(repo Repository, cfg config.AnalyticsConfig) *Service {
	return &Service{
		repo:   repo,
		offset: cfg.GetBusinessTZOffset(),
		now:    time.Now,
	}
}

// Dashboard computes the current-vs-previous metrics, activity series and
// seller ranking for the requested period, optionally scoped to one group.
func (s *Service) Dashboard(ctx context.Context, req transport.DashboardRequest) (transport.DashboardResponse, error) {
	kind, err := period.ParseKind(req.Period)
	if err != nil {
		return transport.DashboardResponse{}, apperr.Validation(err.Error()).WithField("period")
	}

	var (
		clients []repository.ClientFact
		sales   []repository.SaleFact
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clients, err = s.repo.ListClientFacts(gctx, req.GroupID)
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = s.repo.ListSaleFacts(gctx, req.GroupID)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.DashboardResponse{}, apperr.Wrap(apperr.KindInternal, "could not load analytics facts", err)
	}

	names, err := s.repo.SellerNames(ctx, sellerIDs(sales))
	if err != nil {
		return transport.DashboardResponse{}, apperr.Wrap(apperr.KindInternal, "could not resolve seller names", err)
	}

	return BuildDashboard(clients, sales, names, kind, s.now(), s.offset), nil
}

func sellerIDs(sales []repository.SaleFact) []uuid.UUID {
	set := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, s := range sales {
		if _, ok := set[s.UserID]; ok {
			continue
		}
		set[s.UserID] = struct{}{}
		ids = append(ids, s.UserID)
	}
	return ids
}
