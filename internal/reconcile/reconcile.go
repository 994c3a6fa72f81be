package reconcile

import (
	"vectorclock/internal/clock"
)

// Version is a value stamped with the vector clock it was written at.
// Source names where the version came from (a replica, a peer, a log).
type Version[T any] struct {
	Source string
	Value  T
	Clock  clock.VectorClock
}

// Result represents the result of reconciling multiple versions.
type Result[T any] struct {
	// Winners is the maximal set of versions no other version precedes.
	// If len(Winners) == 1, there's a single winner.
	// If len(Winners) > 1, there are concurrent versions (conflicts).
	Winners []Version[T]

	// Stale maps Source to the stale version it returned.
	// A version is stale if at least one other version precedes it.
	// Sources are expected to be unique; when several stale versions share
	// a Source, the one latest in input order is kept.
	Stale map[string]Version[T]
}

// Reconcile computes the maximal set of versions from the given list.
// Winners keep input order; versions with equal clocks collapse to the
// first one seen.
func Reconcile[T any](versions []Version[T]) Result[T] {
	winners := make([]Version[T], 0, len(versions))
	stale := make(map[string]Version[T])

	for i, v1 := range versions {
		isStale := false
		for j, v2 := range versions {
			if i != j && v1.Clock.Precedes(v2.Clock) {
				isStale = true
				break
			}
		}

		if isStale {
			stale[v1.Source] = v1
			continue
		}

		isDuplicate := false
		for _, w := range winners {
			if v1.Clock.Equal(w.Clock) {
				isDuplicate = true
				break
			}
		}
		if !isDuplicate {
			winners = append(winners, v1)
		}
	}

	return Result[T]{
		Winners: winners,
		Stale:   stale,
	}
}

// HasConflict returns true if there are multiple winners (conflicts).
func (r *Result[T]) HasConflict() bool {
	return len(r.Winners) > 1
}

// IsResolved returns true if there's exactly one winner (no conflict).
func (r *Result[T]) IsResolved() bool {
	return len(r.Winners) == 1
}

// IsEmpty returns true if there are no winners.
func (r *Result[T]) IsEmpty() bool {
	return len(r.Winners) == 0
}

// MergedClock returns the merge of every winner's clock. A write that
// resolves the conflict should increment this clock so it supersedes
// all siblings.
func (r *Result[T]) MergedClock() clock.VectorClock {
	merged := clock.New()
	for _, w := range r.Winners {
		merged = merged.Merge(w.Clock)
	}
	return merged
}
