// Package domain holds the client pipeline rules shared by the capture and
// status services.
package domain

import "fmt"

const (
	StatusNew         = "New"
	StatusNegotiating = "Negotiating"
	StatusClosed      = "Closed"
	StatusPostSale    = "Post-sale"
)

var knownStatuses = map[string]struct{}{
	StatusNew:         {},
	StatusNegotiating: {},
	StatusClosed:      {},
	StatusPostSale:    {},
}

// IsKnownStatus reports whether status is one of the pipeline statuses.
func IsKnownStatus(status string) bool {
	_, ok := knownStatuses[status]
	return ok
}

// Effect is the side record a status move must produce alongside the
// status update itself.
type Effect int

const (
	// EffectNone is a plain status update.
	EffectNone Effect = iota
	// EffectRecordSale means a Sale record must be created with the move.
	EffectRecordSale
)

// PlanTransition resolves the effect of moving a client from current to
// target status. The machine is deliberately permissive: every move is
// allowed, and entering Closed from any other status is the single edge
// that carries a side effect. Re-closing an already Closed client updates
// the status row only, so a duplicate Sale is never produced.
func PlanTransition(current, target string) (Effect, error) {
	if !IsKnownStatus(target) {
		return EffectNone, fmt.Errorf("unknown status %q", target)
	}

	if target == StatusClosed && current != StatusClosed {
		return EffectRecordSale, nil
	}
	return EffectNone, nil
}
