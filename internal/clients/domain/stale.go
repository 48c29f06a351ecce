package domain

import "time"

// StaleAfter is how long a client may sit untouched before it counts as
// stale. A stale client is transferable to another seller, and a stale
// New/Negotiating client counts as abandoned in analytics. Both rules
// intentionally share this single constant.
const StaleAfter = 30 * 24 * time.Hour

// IsStale reports whether a client last touched at updatedAt is stale at
// the given instant. A zero updatedAt (never updated) is always stale.
func IsStale(updatedAt, now time.Time) bool {
	if updatedAt.IsZero() {
		return true
	}
	return now.Sub(updatedAt) > StaleAfter
}
