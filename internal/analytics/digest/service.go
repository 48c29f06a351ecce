// Package digest produces the daily metrics summary that is emailed to
// admins and archived for later inspection. The scheduler triggers it once
// per day; re-runs for the same business day overwrite the stored row
// instead of duplicating it. Group admins receive their group's numbers,
// admins outside any group receive the company-wide ones.
package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"salescrm_backend/internal/analytics/period"
	"salescrm_backend/internal/analytics/repository"
	"salescrm_backend/internal/analytics/service"
	"salescrm_backend/internal/analytics/transport"
	"salescrm_backend/platform/config"
	"salescrm_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Facts is the analytics data access the digest needs.
type Facts interface {
	ListClientFacts(ctx context.Context, groupID *uuid.UUID) ([]repository.ClientFact, error)
	ListSaleFacts(ctx context.Context, groupID *uuid.UUID) ([]repository.SaleFact, error)
	SellerNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Recipients resolves which admins receive which digest. A nil groupID
// addresses admins outside any group.
type Recipients interface {
	ListGroupIDs(ctx context.Context) ([]uuid.UUID, error)
	ListAdminEmailsByGroup(ctx context.Context, groupID *uuid.UUID) ([]string, error)
}

// Sender delivers the digest email. A nil sender skips delivery, which is
// how local environments run without SMTP.
type Sender interface {
	SendDailyDigest(ctx context.Context, to []string, date time.Time, dashboard transport.DashboardResponse) error
}

// Store archives one digest per business day.
type Store interface {
	SaveDigest(ctx context.Context, date time.Time, payload []byte) error
}

type Service struct {
	facts      Facts
	recipients Recipients
	sender     Sender
	store      Store
	offset     time.Duration
	log        *logger.Logger
	now        func() time.Time
}

func New(facts Facts, recipients Recipients, sender Sender, store Store, cfg config.AnalyticsConfig, log *logger.Logger) *Service {
	return &Service{
		facts:      facts,
		recipients: recipients,
		sender:     sender,
		store:      store,
		offset:     cfg.GetBusinessTZOffset(),
		log:        log,
		now:        time.Now,
	}
}

// Run builds yesterday's daily dashboards, archives the company-wide one
// and emails each group's admins their own numbers. The reference instant
// is shifted back one day so a 06:00 run summarizes the completed business
// day, not the few hours of the current one.
func (s *Service) Run(ctx context.Context) error {
	reference := s.now().Add(-24 * time.Hour)
	digestDay := period.BusinessTime(reference, s.offset).Truncate(24 * time.Hour)

	global, err := s.buildDashboard(ctx, nil, reference)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(global)
	if err != nil {
		return fmt.Errorf("marshal digest: %w", err)
	}
	if err := s.store.SaveDigest(ctx, digestDay, payload); err != nil {
		return fmt.Errorf("archive digest: %w", err)
	}

	if s.sender == nil {
		s.log.Info("digest email disabled, archived only", "date", digestDay.Format("2006-01-02"))
		return nil
	}

	s.email(ctx, nil, digestDay, global)

	groupIDs, err := s.recipients.ListGroupIDs(ctx)
	if err != nil {
		return fmt.Errorf("list digest groups: %w", err)
	}
	for _, groupID := range groupIDs {
		groupID := groupID
		dashboard, err := s.buildDashboard(ctx, &groupID, reference)
		if err != nil {
			s.log.Error("group digest failed", "error", err, "groupId", groupID)
			continue
		}
		s.email(ctx, &groupID, digestDay, dashboard)
	}
	return nil
}

// buildDashboard computes the daily dashboard for one scope: company-wide
// when groupID is nil, one group otherwise.
func (s *Service) buildDashboard(ctx context.Context, groupID *uuid.UUID, reference time.Time) (transport.DashboardResponse, error) {
	var (
		clients []repository.ClientFact
		sales   []repository.SaleFact
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		clients, err = s.facts.ListClientFacts(gctx, groupID)
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = s.facts.ListSaleFacts(gctx, groupID)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.DashboardResponse{}, fmt.Errorf("load digest facts: %w", err)
	}

	names, err := s.facts.SellerNames(ctx, sellerIDs(sales))
	if err != nil {
		return transport.DashboardResponse{}, fmt.Errorf("resolve seller names: %w", err)
	}

	return service.BuildDashboard(clients, sales, names, period.KindDaily, reference, s.offset), nil
}

// email sends one scope's digest to its admins. Delivery problems are
// logged, not propagated: one broken mailbox must not stop the other
// groups' digests.
func (s *Service) email(ctx context.Context, groupID *uuid.UUID, digestDay time.Time, dashboard transport.DashboardResponse) {
	emails, err := s.recipients.ListAdminEmailsByGroup(ctx, groupID)
	if err != nil {
		s.log.Error("digest recipient lookup failed", "error", err, "groupId", groupLabel(groupID))
		return
	}
	if len(emails) == 0 {
		s.log.Warn("no admin recipients for daily digest",
			"date", digestDay.Format("2006-01-02"),
			"groupId", groupLabel(groupID),
		)
		return
	}

	if err := s.sender.SendDailyDigest(ctx, emails, digestDay, dashboard); err != nil {
		s.log.Error("digest delivery failed", "error", err, "groupId", groupLabel(groupID))
		return
	}

	s.log.Info("daily digest sent",
		"date", digestDay.Format("2006-01-02"),
		"groupId", groupLabel(groupID),
		"recipients", len(emails),
	)
}

func groupLabel(groupID *uuid.UUID) string {
	if groupID == nil {
		return "all"
	}
	return groupID.String()
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
