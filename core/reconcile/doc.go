// Package reconcile merges two ordered element collections into one
// conflict-free, order-stable result.
//
// The local collection holds the changes pending on this side; the remote
// collection is what the store currently holds. Reconciliation is a pure
// function: no I/O, no clock, no randomness, and the same inputs always give
// the same output.
//
// # Conflict policy
//
// For an id present on both sides:
//
//  1. The higher per-record version wins.
//  2. On equal versions a live element beats a tombstone.
//  3. Otherwise the local element wins.
//
// Ids present on one side only are always kept.
//
// # Ordering
//
// When every winning element carries a valid fractional index, the result is
// ordered by (index, id). Otherwise the order is an anchor merge: the remote
// order is the base and every local-only element is placed directly after the
// closest preceding local neighbour that also exists remotely. Missing or
// non-increasing indices are then regenerated between their neighbours so the
// result always carries a strictly increasing order key.
//
// # Usage
//
//	merged := reconcile.Reconcile(local, remote, &reconcile.AppState{})
//
//	// With statistics and editing hints
//	report := reconcile.ReconcileWithReport(local, remote, appState)
//	fmt.Println(report.Summary.RemoteWins, report.Interrupted)
package reconcile
