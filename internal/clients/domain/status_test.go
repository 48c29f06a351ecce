package domain

import (
	"testing"
	"time"
)

func TestPlanTransition_ClosingRecordsSale(t *testing.T) {
	effect, err := PlanTransition(StatusNegotiating, StatusClosed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if effect != EffectRecordSale {
		t.Fatalf("expected EffectRecordSale, got %v", effect)
	}
}

func TestPlanTransition_RecloseIsPlainUpdate(t *testing.T) {
	effect, err := PlanTransition(StatusClosed, StatusClosed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if effect != EffectNone {
		t.Fatalf("expected EffectNone, got %v", effect)
	}
}

func TestPlanTransition_AnyToAnyIsAllowed(t *testing.T) {
	statuses := []string{StatusNew, StatusNegotiating, StatusClosed, StatusPostSale}
	for _, from := range statuses {
		for _, to := range statuses {
			if _, err := PlanTransition(from, to); err != nil {
				t.Fatalf("transition %s -> %s should be allowed: %v", from, to, err)
			}
		}
	}
}

func TestPlanTransition_UnknownTargetRejected(t *testing.T) {
	if _, err := PlanTransition(StatusNew, "Archived"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestIsStale(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	if IsStale(now.Add(-29*24*time.Hour), now) {
		t.Fatal("29 days old should not be stale")
	}
	if !IsStale(now.Add(-31*24*time.Hour), now) {
		t.Fatal("31 days old should be stale")
	}
	if !IsStale(time.Time{}, now) {
		t.Fatal("never-updated should be stale")
	}
}
