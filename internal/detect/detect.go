// Package detect decides which offers became bookable since the previous run.
package detect

import (
	"time"

	"github.com/rsilvagit/examwatch/internal/model"
	"github.com/rsilvagit/examwatch/internal/state"
)

// Result is the outcome of one comparison.
type Result struct {
	// NewlyBookable lists offers that are bookable now but were not in prev,
	// in fetch order.
	NewlyBookable []model.NormalizedOffer

	// Next is the snapshot to persist for the following run.
	Next state.Snapshot
}

// ComputeTransitions compares the current offers against prev.
//
// An offer is newly bookable when it is bookable now and prev does not record
// it as bookable; an unseen key counts as not bookable. The decision is made
// against prev only, so duplicate keys in one fetch yield at most one entry,
// while the last duplicate decides the key's entry in Next.
//
// Keys present in prev but missing from offers are carried into Next as not
// bookable, so an offer that disappears and later comes back is reported again.
//
// prev is not modified.
func ComputeTransitions(offers []model.Offer, prev state.Snapshot, now time.Time) Result {
	next := make(state.Snapshot, max(len(offers), len(prev)))
	reported := make(map[string]bool)
	var newlyBookable []model.NormalizedOffer

	for _, o := range offers {
		key := o.Key()
		bookable := o.Bookable()
		wasBookable := prev[key].Bookable

		if bookable && !wasBookable && !reported[key] {
			reported[key] = true
			newlyBookable = append(newlyBookable, o.Normalize())
		}

		next[key] = state.Entry{Bookable: bookable, LastSeen: now}
	}

	for key := range prev {
		if _, ok := next[key]; !ok {
			next[key] = state.Entry{Bookable: false, LastSeen: now}
		}
	}

	return Result{NewlyBookable: newlyBookable, Next: next}
}
