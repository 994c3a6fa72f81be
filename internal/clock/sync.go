package clock

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
)

// ErrPoisoned is wrapped by the panic value raised when a SyncVectorClock is
// used after a write on it panicked.
var ErrPoisoned = errors.New("vector clock poisoned by panic during write")

// instanceSeq orders lock acquisition when an operation reads two clocks.
var instanceSeq atomic.Uint64

// SyncVectorClock wraps a VectorClock behind a reader/writer lock so one
// clock can be shared between goroutines. Reads run in parallel; increments
// and merges into the clock are exclusive.
//
// The inner map is never exposed. Snapshot returns a copy.
// The zero value is an empty clock ready for use.
type SyncVectorClock struct {
	mu       sync.RWMutex
	clock    VectorClock
	seq      atomic.Uint64
	poisoned atomic.Bool
}

// NewSync creates a new empty synchronized vector clock.
func NewSync() *SyncVectorClock {
	return newSync(New())
}

// NewSyncFrom creates a synchronized vector clock holding a copy of vc.
func NewSyncFrom(vc VectorClock) *SyncVectorClock {
	return newSync(vc.Clone())
}

func newSync(vc VectorClock) *SyncVectorClock {
	s := &SyncVectorClock{clock: vc}
	s.seq.Store(instanceSeq.Add(1))
	return s
}

// order returns the lock-ordering sequence number of s, assigning one on
// first use for zero-value instances.
func (s *SyncVectorClock) order() uint64 {
	if n := s.seq.Load(); n != 0 {
		return n
	}
	s.seq.CompareAndSwap(0, instanceSeq.Add(1))
	return s.seq.Load()
}

// Increment increments the counter for id and returns s for chaining.
func (s *SyncVectorClock) Increment(id string) *SyncVectorClock {
	s.write(func(vc VectorClock) { vc.IncrementInPlace(id) })
	return s
}

// IncrementInPlace increments the counter for id.
func (s *SyncVectorClock) IncrementInPlace(id string) {
	s.write(func(vc VectorClock) { vc.IncrementInPlace(id) })
}

// MergeFrom folds a received clock value into s, keeping the maximum
// counter per identifier. remote is not modified.
func (s *SyncVectorClock) MergeFrom(remote VectorClock) {
	s.write(func(vc VectorClock) {
		for id, c := range remote {
			if cur, ok := vc[id]; !ok || cur < c {
				vc[id] = c
			}
		}
	})
}

// Get returns the counter value for id, or 0 if not present.
func (s *SyncVectorClock) Get(id string) uint64 {
	s.rlock()
	defer s.mu.RUnlock()
	return s.clock.Get(id)
}

// Len returns the number of distinct identifiers tracked.
func (s *SyncVectorClock) Len() int {
	s.rlock()
	defer s.mu.RUnlock()
	return s.clock.Len()
}

// Precedes reports whether s happened before other.
func (s *SyncVectorClock) Precedes(other *SyncVectorClock) bool {
	var res bool
	s.readBoth(other, func(a, b VectorClock) { res = a.Precedes(b) })
	return res
}

// Concurrent reports whether neither s nor other precedes the other.
func (s *SyncVectorClock) Concurrent(other *SyncVectorClock) bool {
	var res bool
	s.readBoth(other, func(a, b VectorClock) { res = a.Concurrent(b) })
	return res
}

// Compare compares s with other. See VectorClock.Compare.
func (s *SyncVectorClock) Compare(other *SyncVectorClock) Ordering {
	var res Ordering
	s.readBoth(other, func(a, b VectorClock) { res = a.Compare(b) })
	return res
}

// Equal checks if s and other hold equal clocks.
func (s *SyncVectorClock) Equal(other *SyncVectorClock) bool {
	var res bool
	s.readBoth(other, func(a, b VectorClock) { res = a.Equal(b) })
	return res
}

// Merge returns a new SyncVectorClock holding the merge of s and other.
// Neither operand is modified. s and other may be the same instance.
func (s *SyncVectorClock) Merge(other *SyncVectorClock) *SyncVectorClock {
	var merged VectorClock
	s.readBoth(other, func(a, b VectorClock) { merged = a.Merge(b) })
	return newSync(merged)
}

// Clone returns an independent SyncVectorClock with a copy of the clock.
func (s *SyncVectorClock) Clone() *SyncVectorClock {
	return newSync(s.Snapshot())
}

// Snapshot returns a copy of the current clock value.
func (s *SyncVectorClock) Snapshot() VectorClock {
	s.rlock()
	defer s.mu.RUnlock()
	return s.clock.Clone()
}

// String returns a string representation of the current clock value.
func (s *SyncVectorClock) String() string {
	s.rlock()
	defer s.mu.RUnlock()
	return s.clock.String()
}

// Poisoned reports whether a write on s has panicked. Once poisoned, every
// other operation on s panics with an error wrapping ErrPoisoned.
func (s *SyncVectorClock) Poisoned() bool {
	return s.poisoned.Load()
}

// write runs fn under the write lock. If fn panics, s is marked poisoned
// before the lock is released and the panic continues to the caller.
func (s *SyncVectorClock) write(fn func(VectorClock)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkPoisoned()
	if s.clock == nil {
		s.clock = New()
	}

	done := false
	defer func() {
		if !done {
			s.poisoned.Store(true)
			log.Printf("[clock#%d] Poisoned: write panicked, clock=%s", s.order(), s.clock)
		}
	}()
	fn(s.clock)
	done = true
}

// rlock takes the read lock and panics if s is poisoned.
func (s *SyncVectorClock) rlock() {
	s.mu.RLock()
	if s.poisoned.Load() {
		s.mu.RUnlock()
		panic(s.poisonErr())
	}
}

// readBoth runs fn with read access to both clocks. Locks on distinct
// instances are taken in ascending seq order; the same instance is locked
// once.
func (s *SyncVectorClock) readBoth(other *SyncVectorClock, fn func(a, b VectorClock)) {
	if s == other {
		s.rlock()
		defer s.mu.RUnlock()
		fn(s.clock, s.clock)
		return
	}

	first, second := s, other
	if second.order() < first.order() {
		first, second = second, first
	}
	first.rlock()
	defer first.mu.RUnlock()
	second.rlock()
	defer second.mu.RUnlock()
	fn(s.clock, other.clock)
}

func (s *SyncVectorClock) checkPoisoned() {
	if s.poisoned.Load() {
		panic(s.poisonErr())
	}
}

func (s *SyncVectorClock) poisonErr() error {
	return fmt.Errorf("clock#%d: %w", s.order(), ErrPoisoned)
}
