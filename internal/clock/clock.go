package clock

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrCounterOverflow is the panic value raised when an increment would wrap
// a counter past math.MaxUint64.
var ErrCounterOverflow = errors.New("vector clock counter overflow")

// VectorClock represents a vector clock as a map from identifier to counter.
// An identifier that is not present behaves as if its counter were 0.
// Thread-safe operations should be handled by the caller, or use SyncVectorClock.
type VectorClock map[string]uint64

// New creates a new empty vector clock.
func New() VectorClock {
	return make(VectorClock)
}

// Increment increments the counter for id and returns the clock, so calls
// can be chained: New().Increment("a").Increment("b").
// The receiver is modified; the returned value is the same map.
func (vc VectorClock) Increment(id string) VectorClock {
	vc.bump(id)
	return vc
}

// IncrementInPlace increments the counter for id.
// If id doesn't exist, it's initialized to 1.
func (vc VectorClock) IncrementInPlace(id string) {
	vc.bump(id)
}

func (vc VectorClock) bump(id string) {
	c := vc[id]
	if c == math.MaxUint64 {
		panic(fmt.Errorf("%w: %s", ErrCounterOverflow, id))
	}
	vc[id] = c + 1
}

// Get returns the counter value for id, or 0 if not present.
func (vc VectorClock) Get(id string) uint64 {
	return vc[id]
}

// Len returns the number of distinct identifiers tracked.
func (vc VectorClock) Len() int {
	return len(vc)
}

// Precedes reports whether vc happened before other: no counter in vc is
// greater than its counterpart in other, and at least one is smaller.
// Identifiers known only to other count as smaller in vc when their
// counter is non-zero, so New() precedes {A:1} and {A:1} precedes
// {A:1, B:1}. A scan over vc's identifiers alone would report false for
// both.
func (vc VectorClock) Precedes(other VectorClock) bool {
	strictLess := false
	for id, c := range vc {
		oc := other[id]
		if c > oc {
			return false
		}
		if c < oc {
			strictLess = true
		}
	}
	if strictLess {
		return true
	}
	for id, oc := range other {
		if _, ok := vc[id]; !ok && oc > 0 {
			return true
		}
	}
	return false
}

// Concurrent reports whether neither clock precedes the other.
// Two identical clocks are concurrent; use Compare to tell them apart.
func (vc VectorClock) Concurrent(other VectorClock) bool {
	return !vc.Precedes(other) && !other.Precedes(vc)
}

// Merge returns a new clock holding, for every identifier in either clock,
// the maximum of the two counters. Neither input is modified.
func (vc VectorClock) Merge(other VectorClock) VectorClock {
	merged := make(VectorClock, max(len(vc), len(other)))
	for id, c := range vc {
		merged[id] = c
	}
	for id, c := range other {
		if cur, ok := merged[id]; !ok || cur < c {
			merged[id] = c
		}
	}
	return merged
}

// Clone creates a deep copy of the vector clock.
func (vc VectorClock) Clone() VectorClock {
	cp := make(VectorClock, len(vc))
	for k, v := range vc {
		cp[k] = v
	}
	return cp
}

// Equal checks if two vector clocks track the same identifiers with the
// same counters. This is stricter than causal equivalence: {a:1} and
// {a:1, b:0} are not equal.
func (vc VectorClock) Equal(other VectorClock) bool {
	if len(vc) != len(other) {
		return false
	}
	for id, c := range vc {
		oc, ok := other[id]
		if !ok || oc != c {
			return false
		}
	}
	return true
}

// Ordering represents the result of comparing two vector clocks.
type Ordering int

const (
	// Before: the receiver precedes the argument.
	Before Ordering = iota
	// After: the argument precedes the receiver.
	After
	// Concurrent: the clocks differ and neither precedes the other.
	Concurrent
	// Equal: both clocks hold the same identifiers with the same counters.
	// An explicit 0 and an absent identifier are not Equal.
	Equal
)

func (o Ordering) String() string {
	switch o {
	case Before:
		return "before"
	case After:
		return "after"
	case Concurrent:
		return "concurrent"
	case Equal:
		return "equal"
	default:
		return fmt.Sprintf("Ordering(%d)", int(o))
	}
}

// Compare compares two vector clocks and returns their relationship.
// Returns:
//   - Equal: if Equal reports true
//   - Before: if this clock precedes other
//   - After: if other precedes this clock
//   - Concurrent: otherwise
func (vc VectorClock) Compare(other VectorClock) Ordering {
	switch {
	case vc.Equal(other):
		return Equal
	case vc.Precedes(other):
		return Before
	case other.Precedes(vc):
		return After
	default:
		return Concurrent
	}
}

// Descends returns true if this clock is equal to or happened after other.
func (vc VectorClock) Descends(other VectorClock) bool {
	return vc.Equal(other) || other.Precedes(vc)
}

// IDs returns the tracked identifiers in sorted order.
func (vc VectorClock) IDs() []string {
	ids := make([]string, 0, len(vc))
	for id := range vc {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// String returns a string representation of the vector clock.
func (vc VectorClock) String() string {
	if len(vc) == 0 {
		return "{}"
	}

	ids := vc.IDs()
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s:%d", id, vc[id]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
