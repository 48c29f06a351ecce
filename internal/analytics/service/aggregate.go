package service

import (
	"sort"
	"time"

	"salescrm_backend/internal/analytics/period"
	"salescrm_backend/internal/analytics/repository"
	"salescrm_backend/internal/analytics/transport"
	"salescrm_backend/internal/clients/domain"
	"salescrm_backend/platform/currency"

	"github.com/google/uuid"
)

// seriesDays is the length of the trailing daily activity series.
const seriesDays = 30

const (
	seriesKeyFormat   = "2006-01-02"
	seriesLabelFormat = "02/01"

	monthKeyFormat   = "2006-01"
	monthLabelFormat = "01/2006"
)

// BuildDashboard aggregates the fetched fact collections into the dashboard
// payload. It is a pure function: all scoping and ordering has already been
// applied by the repository, and sales must arrive oldest first.
func BuildDashboard(clients []repository.ClientFact, sales []repository.SaleFact, names map[uuid.UUID]string, kind period.Kind, now time.Time, offset time.Duration) transport.DashboardResponse {
	rng := period.Resolve(kind, now, offset)

	resp := transport.DashboardResponse{
		Period:         string(kind),
		Leads:          countMetric(leadTimes(clients), rng, offset),
		AbandonedLeads: countAbandoned(clients, now),
		Series:         buildSeries(clients, sales, kind, now, offset),
		Ranking:        buildRanking(sales, names, rng, offset),
	}

	var curSales, prevSales, curRevenue, prevRevenue float64
	for _, s := range sales {
		bt := period.BusinessTime(s.SaleDate, offset)
		switch {
		case rng.Contains(bt):
			curSales++
			curRevenue += float64(s.ValueCents)
		case rng.ContainsPrevious(bt):
			prevSales++
			prevRevenue += float64(s.ValueCents)
		}
	}
	resp.Sales = newMetric(curSales, prevSales)
	resp.RevenueCents = newMetric(curRevenue, prevRevenue)
	resp.ConversionRate = newMetric(
		conversionRate(curSales, resp.Leads.Current),
		conversionRate(prevSales, resp.Leads.Previous),
	)
	return resp
}

func newMetric(current, previous float64) transport.Metric {
	return transport.Metric{
		Current:   current,
		Previous:  previous,
		ChangePct: period.CalculateChange(current, previous),
	}
}

func leadTimes(clients []repository.ClientFact) []time.Time {
	times := make([]time.Time, 0, len(clients))
	for _, c := range clients {
		times = append(times, c.CreatedAt)
	}
	return times
}

func countMetric(times []time.Time, rng period.Range, offset time.Duration) transport.Metric {
	var current, previous float64
	for _, t := range times {
		bt := period.BusinessTime(t, offset)
		switch {
		case rng.Contains(bt):
			current++
		case rng.ContainsPrevious(bt):
			previous++
		}
	}
	return newMetric(current, previous)
}

func conversionRate(sales, leads float64) float64 {
	if leads == 0 {
		return 0
	}
	return sales / leads * 100
}

// countAbandoned counts New or Negotiating leads whose last update is past
// the same staleness threshold the ownership resolver uses for transfers.
func countAbandoned(clients []repository.ClientFact, now time.Time) int {
	count := 0
	for _, c := range clients {
		if c.Status != domain.StatusNew && c.Status != domain.StatusNegotiating {
			continue
		}
		if domain.IsStale(c.UpdatedAt, now) {
			count++
		}
	}
	return count
}

// buildSeries produces the zero-filled activity series. Daily, weekly and
// monthly dashboards show the trailing 30 days; yearly and total show month
// buckets. Bucketing uses business local dates.
func buildSeries(clients []repository.ClientFact, sales []repository.SaleFact, kind period.Kind, now time.Time, offset time.Duration) []transport.SeriesPoint {
	if kind == period.KindYearly || kind == period.KindTotal {
		return buildMonthSeries(clients, sales, kind, now, offset)
	}

	today := period.BusinessTime(now, offset).Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(seriesDays - 1))

	buckets := make(map[string]*transport.SeriesPoint, seriesDays)
	keys := make([]string, 0, seriesDays)
	for i := 0; i < seriesDays; i++ {
		day := start.AddDate(0, 0, i)
		key := day.Format(seriesKeyFormat)
		buckets[key] = &transport.SeriesPoint{
			Date:  key,
			Label: day.Format(seriesLabelFormat),
		}
		keys = append(keys, key)
	}

	for _, c := range clients {
		if p, ok := buckets[period.BusinessTime(c.CreatedAt, offset).Format(seriesKeyFormat)]; ok {
			p.Leads++
		}
	}
	for _, s := range sales {
		if p, ok := buckets[period.BusinessTime(s.SaleDate, offset).Format(seriesKeyFormat)]; ok {
			p.Sales++
		}
	}

	series := make([]transport.SeriesPoint, 0, seriesDays)
	for _, key := range keys {
		series = append(series, *buckets[key])
	}
	return series
}

// buildMonthSeries buckets by calendar month. Yearly covers January through
// the current month; total starts at the earliest lead or sale on record.
func buildMonthSeries(clients []repository.ClientFact, sales []repository.SaleFact, kind period.Kind, now time.Time, offset time.Duration) []transport.SeriesPoint {
	bt := period.BusinessTime(now, offset)
	last := time.Date(bt.Year(), bt.Month(), 1, 0, 0, 0, 0, time.UTC)
	first := time.Date(bt.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	if kind == period.KindTotal {
		first = last
		for _, c := range clients {
			if t := period.BusinessTime(c.CreatedAt, offset); t.Before(first) {
				first = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
			}
		}
		for _, s := range sales {
			if t := period.BusinessTime(s.SaleDate, offset); t.Before(first) {
				first = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
			}
		}
	}

	buckets := make(map[string]*transport.SeriesPoint)
	keys := make([]string, 0, 12)
	for month := first; !month.After(last); month = month.AddDate(0, 1, 0) {
		key := month.Format(monthKeyFormat)
		buckets[key] = &transport.SeriesPoint{
			Date:  key,
			Label: month.Format(monthLabelFormat),
		}
		keys = append(keys, key)
	}

	for _, c := range clients {
		if p, ok := buckets[period.BusinessTime(c.CreatedAt, offset).Format(monthKeyFormat)]; ok {
			p.Leads++
		}
	}
	for _, s := range sales {
		if p, ok := buckets[period.BusinessTime(s.SaleDate, offset).Format(monthKeyFormat)]; ok {
			p.Sales++
		}
	}

	series := make([]transport.SeriesPoint, 0, len(keys))
	for _, key := range keys {
		series = append(series, *buckets[key])
	}
	return series
}

// buildRanking groups the current period's sales by seller. Repurchase
// detection walks the full chronological history, so a sale counts as a
// repurchase even when the client's first sale predates the period.
func buildRanking(sales []repository.SaleFact, names map[uuid.UUID]string, rng period.Range, offset time.Duration) []transport.SellerPerformance {
	perf := make(map[uuid.UUID]*transport.SellerPerformance)
	seen := make(map[uuid.UUID]bool)

	for _, s := range sales {
		repurchase := seen[s.ClientID]
		seen[s.ClientID] = true

		if !rng.Contains(period.BusinessTime(s.SaleDate, offset)) {
			continue
		}

		row, ok := perf[s.UserID]
		if !ok {
			row = &transport.SellerPerformance{
				SellerID:   s.UserID,
				SellerName: names[s.UserID],
			}
			perf[s.UserID] = row
		}
		row.SalesCount++
		row.RevenueCents += s.ValueCents
		if repurchase {
			row.Repurchases++
		}
	}

	ranking := make([]transport.SellerPerformance, 0, len(perf))
	for _, row := range perf {
		row.Revenue = currency.FormatBRLCents(row.RevenueCents)
		ranking = append(ranking, *row)
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].RevenueCents != ranking[j].RevenueCents {
			return ranking[i].RevenueCents > ranking[j].RevenueCents
		}
		if ranking[i].SalesCount != ranking[j].SalesCount {
			return ranking[i].SalesCount > ranking[j].SalesCount
		}
		return ranking[i].SellerName < ranking[j].SellerName
	})
	return ranking
}
