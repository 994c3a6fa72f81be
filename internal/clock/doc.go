// Package clock provides a vector clock for tracking causality between
// distributed participants without synchronized wall-clock time.
// VectorClock is the unsynchronized core with increment, precedence,
// concurrency and merge; SyncVectorClock shares one clock between
// goroutines behind a reader/writer lock.
package clock
