package service

import (
	"testing"
	"time"

	"salescrm_backend/internal/analytics/period"
	"salescrm_backend/internal/analytics/repository"
	"salescrm_backend/internal/clients/domain"

	"github.com/google/uuid"
)

func clientAt(created time.Time) repository.ClientFact {
	return repository.ClientFact{
		ID:        uuid.New(),
		Status:    domain.StatusNew,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func saleAt(seller, client uuid.UUID, valueCents int64, date time.Time) repository.SaleFact {
	return repository.SaleFact{
		ID:         uuid.New(),
		ClientID:   client,
		UserID:     seller,
		ValueCents: valueCents,
		SaleDate:   date,
	}
}

func TestBuildDashboard_WeeklyHandComputed(t *testing.T) {
	// Thursday 2026-03-12; current week is Mon 09 through Sun 15, previous
	// week Mon 02 through Sun 08.
	now := time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC)
	seller := uuid.New()

	clients := []repository.ClientFact{
		clientAt(time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)),  // current
		clientAt(time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)), // current
		clientAt(time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)), // current
		clientAt(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)),  // previous
		clientAt(time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)), // neither
	}
	sales := []repository.SaleFact{
		saleAt(seller, uuid.New(), 10000, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)),  // previous
		saleAt(seller, uuid.New(), 20000, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)), // current
		saleAt(seller, uuid.New(), 30000, time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)), // current
	}

	resp := BuildDashboard(clients, sales, map[uuid.UUID]string{seller: "Maria"}, period.KindWeekly, now, 0)

	if resp.Leads.Current != 3 || resp.Leads.Previous != 1 {
		t.Fatalf("leads = %+v, want 3 current / 1 previous", resp.Leads)
	}
	if resp.Leads.ChangePct != 200 {
		t.Fatalf("leads change = %v, want 200", resp.Leads.ChangePct)
	}
	if resp.Sales.Current != 2 || resp.Sales.Previous != 1 {
		t.Fatalf("sales = %+v, want 2 current / 1 previous", resp.Sales)
	}
	if resp.RevenueCents.Current != 50000 || resp.RevenueCents.Previous != 10000 {
		t.Fatalf("revenue = %+v", resp.RevenueCents)
	}
	if resp.RevenueCents.ChangePct != 400 {
		t.Fatalf("revenue change = %v, want 400", resp.RevenueCents.ChangePct)
	}
	// 2 sales over 3 leads vs 1 sale over 1 lead.
	wantCur := 2.0 / 3.0 * 100
	if resp.ConversionRate.Current != wantCur || resp.ConversionRate.Previous != 100 {
		t.Fatalf("conversion = %+v", resp.ConversionRate)
	}
}

func TestBuildDashboard_GrowthFromZeroReportsHundred(t *testing.T) {
	now := time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC)
	seller := uuid.New()

	sales := []repository.SaleFact{
		saleAt(seller, uuid.New(), 5000, time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)),
	}

	resp := BuildDashboard(nil, sales, map[uuid.UUID]string{seller: "Maria"}, period.KindWeekly, now, 0)

	if resp.Sales.ChangePct != 100 {
		t.Fatalf("sales change = %v, want 100", resp.Sales.ChangePct)
	}
	if resp.Leads.ChangePct != 0 {
		t.Fatalf("leads change = %v, want 0 when both periods are empty", resp.Leads.ChangePct)
	}
}

func TestBuildRanking_RepurchaseFlagsOnlySecondSaleOfClient(t *testing.T) {
	now := time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC)
	seller := uuid.New()
	client1, client2 := uuid.New(), uuid.New()

	// Chronological: A(client1), B(client2), C(client1). Only C is a
	// repurchase.
	sales := []repository.SaleFact{
		saleAt(seller, client1, 10000, time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)),
		saleAt(seller, client2, 10000, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)),
		saleAt(seller, client1, 10000, time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)),
	}

	resp := BuildDashboard(nil, sales, map[uuid.UUID]string{seller: "Maria"}, period.KindWeekly, now, 0)

	if len(resp.Ranking) != 1 {
		t.Fatalf("expected one ranked seller, got %d", len(resp.Ranking))
	}
	if resp.Ranking[0].Repurchases != 1 {
		t.Fatalf("repurchases = %d, want exactly 1", resp.Ranking[0].Repurchases)
	}
	if resp.Ranking[0].SalesCount != 3 {
		t.Fatalf("sales count = %d, want 3", resp.Ranking[0].SalesCount)
	}
}

func TestBuildRanking_FirstSaleBeforePeriodStillMakesRepurchase(t *testing.T) {
	now := time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC)
	seller := uuid.New()
	client := uuid.New()

	sales := []repository.SaleFact{
		saleAt(seller, client, 10000, time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)),  // before period
		saleAt(seller, client, 20000, time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)), // current week
	}

	resp := BuildDashboard(nil, sales, map[uuid.UUID]string{seller: "Maria"}, period.KindWeekly, now, 0)

	if len(resp.Ranking) != 1 {
		t.Fatalf("expected one ranked seller, got %d", len(resp.Ranking))
	}
	if resp.Ranking[0].SalesCount != 1 {
		t.Fatalf("only the in-period sale counts, got %d", resp.Ranking[0].SalesCount)
	}
	if resp.Ranking[0].Repurchases != 1 {
		t.Fatalf("in-period second sale of a client is a repurchase, got %d", resp.Ranking[0].Repurchases)
	}
}

func TestBuildRanking_SortsByRevenueThenCount(t *testing.T) {
	now := time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC)
	low, high, tied := uuid.New(), uuid.New(), uuid.New()
	day := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)

	sales := []repository.SaleFact{
		saleAt(low, uuid.New(), 10000, day),
		saleAt(high, uuid.New(), 50000, day),
		// Same revenue as low but spread over two sales.
		saleAt(tied, uuid.New(), 4000, day),
		saleAt(tied, uuid.New(), 6000, day),
	}
	names := map[uuid.UUID]string{low: "Ana", high: "Bruno", tied: "Carla"}

	resp := BuildDashboard(nil, sales, names, period.KindWeekly, now, 0)

	if len(resp.Ranking) != 3 {
		t.Fatalf("expected three ranked sellers, got %d", len(resp.Ranking))
	}
	if resp.Ranking[0].SellerName != "Bruno" {
		t.Fatalf("top seller = %s, want Bruno", resp.Ranking[0].SellerName)
	}
	// Tie on revenue broken by sale count.
	if resp.Ranking[1].SellerName != "Carla" || resp.Ranking[2].SellerName != "Ana" {
		t.Fatalf("tie break wrong: %s then %s", resp.Ranking[1].SellerName, resp.Ranking[2].SellerName)
	}
	if resp.Ranking[0].Revenue != "R$ 500,00" {
		t.Fatalf("formatted revenue = %q", resp.Ranking[0].Revenue)
	}
}

func TestBuildSeries_ZeroFilledAndBucketedByBusinessDay(t *testing.T) {
	now := time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC)
	offset := -3 * time.Hour
	seller := uuid.New()

	clients := []repository.ClientFact{
		// 01:00 UTC on the 10th is still the 9th in business time.
		clientAt(time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)),
	}
	sales := []repository.SaleFact{
		saleAt(seller, uuid.New(), 10000, time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)),
	}

	resp := BuildDashboard(clients, sales, map[uuid.UUID]string{seller: "Maria"}, period.KindWeekly, now, offset)

	if len(resp.Series) != 30 {
		t.Fatalf("series length = %d, want 30", len(resp.Series))
	}
	byDate := make(map[string]int)
	leads := make(map[string]int)
	salesByDate := make(map[string]int)
	for i, p := range resp.Series {
		byDate[p.Date] = i
		leads[p.Date] = p.Leads
		salesByDate[p.Date] = p.Sales
	}
	if leads["2026-03-09"] != 1 || leads["2026-03-10"] != 0 {
		t.Fatalf("lead bucketed on wrong business day: %v", leads)
	}
	if salesByDate["2026-03-11"] != 1 {
		t.Fatalf("sale missing from its bucket: %v", salesByDate)
	}
	if byDate["2026-03-09"] > byDate["2026-03-11"] {
		t.Fatal("series must be chronological")
	}
	last := resp.Series[len(resp.Series)-1]
	if last.Date != "2026-03-12" || last.Label != "12/03" {
		t.Fatalf("last point = %+v", last)
	}
}

func TestBuildSeries_YearlyUsesMonthBuckets(t *testing.T) {
	now := time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC)
	seller := uuid.New()

	clients := []repository.ClientFact{
		clientAt(time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)),
		clientAt(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)),
	}
	sales := []repository.SaleFact{
		saleAt(seller, uuid.New(), 10000, time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)),
	}

	resp := BuildDashboard(clients, sales, map[uuid.UUID]string{seller: "Maria"}, period.KindYearly, now, 0)

	if len(resp.Series) != 3 {
		t.Fatalf("series length = %d, want 3 (Jan through Mar)", len(resp.Series))
	}
	if resp.Series[0].Date != "2026-01" || resp.Series[0].Label != "01/2026" {
		t.Fatalf("first point = %+v", resp.Series[0])
	}
	if resp.Series[0].Leads != 1 || resp.Series[1].Sales != 1 || resp.Series[2].Leads != 1 {
		t.Fatalf("month buckets wrong: %+v", resp.Series)
	}
}

func TestBuildSeries_TotalStartsAtEarliestRecord(t *testing.T) {
	now := time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC)
	seller := uuid.New()

	sales := []repository.SaleFact{
		saleAt(seller, uuid.New(), 10000, time.Date(2025, 11, 5, 12, 0, 0, 0, time.UTC)),
	}

	resp := BuildDashboard(nil, sales, map[uuid.UUID]string{seller: "Maria"}, period.KindTotal, now, 0)

	if len(resp.Series) != 5 {
		t.Fatalf("series length = %d, want 5 (Nov 2025 through Mar 2026)", len(resp.Series))
	}
	if resp.Series[0].Date != "2025-11" || resp.Series[0].Sales != 1 {
		t.Fatalf("first point = %+v", resp.Series[0])
	}
}

func TestCountAbandoned_UsesSharedStalenessThreshold(t *testing.T) {
	now := time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC)

	fresh := clientAt(now.Add(-24 * time.Hour))
	stale := clientAt(now.Add(-31 * 24 * time.Hour))
	staleClosed := clientAt(now.Add(-31 * 24 * time.Hour))
	staleClosed.Status = domain.StatusClosed
	staleNegotiating := clientAt(now.Add(-31 * 24 * time.Hour))
	staleNegotiating.Status = domain.StatusNegotiating

	clients := []repository.ClientFact{fresh, stale, staleClosed, staleNegotiating}

	resp := BuildDashboard(clients, nil, nil, period.KindTotal, now, 0)

	if resp.AbandonedLeads != 2 {
		t.Fatalf("abandoned = %d, want 2 (stale New and stale Negotiating)", resp.AbandonedLeads)
	}
}
