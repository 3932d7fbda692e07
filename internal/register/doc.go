// Package register implements the delta-state register at the center of deltastate.
//
// A Register holds a base snapshot and an XOR accumulator of the deltas applied
// since that snapshot. The current value is always base ^ accumulator and is
// recomputed on read, never refolded from history.
//
// XOR is the merge operator because it is commutative, associative, has zero as
// its identity and is its own inverse (d ^ d == 0). Those properties give:
//   - Order independence: deltas may be applied in any order
//   - Cancellation: applying a delta twice removes it
//   - Rollback: re-applying the newest retained deltas undoes them
//
// # Bounded History
//
// Applied deltas are kept in a bounded ring (default 4096 entries). When the ring
// is full the oldest delta is evicted from history but its contribution stays in
// the accumulator until the next Load. Rollback works only on deltas still
// retained, newest first. Eviction is FIFO, rollback is LIFO.
//
// # Ownership
//
// A Register is a single-owner container with no internal locking. Callers that
// feed one register from several goroutines must serialize calls themselves.
package register
