// Package reconcile picks the causally newest values out of a set of
// vector-clock stamped versions. Versions preceded by another version are
// stale; the rest are winners, and more than one winner means the values
// were written concurrently.
package reconcile
