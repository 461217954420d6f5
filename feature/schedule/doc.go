// Package schedule is the reservation reconciliation and timed-action engine.
//
// A periodic pass fetches the current reservation events, diffs them against
// the in-memory reservation table and arranges one-shot jobs for the
// check-in, check-out and arriving-soon transitions. Reservations that
// changed get their timers cancelled and rebuilt; reservations that vanished
// from the feed are treated as cancellations, with mid-stay cancellations
// either running check-out immediately or leaving the original check-out
// timer live, per configuration. Running the same pass twice produces no
// further churn.
//
// Late-checkout overrides are persisted per reservation and applied while
// they are later than the feed-derived end and still in the future; stale
// overrides are pruned as a side effect of reconciliation.
//
// Fired timers dispatch through a single handler that re-resolves the entry
// by reservation id, so jobs that outlive a reschedule act on nothing. The
// Executor maps each transition onto the lock programmer and mode controller;
// every sub-action is best-effort.
//
// # HTTP Endpoints
//
//   - GET /schedules : current reservation table.
//   - POST /schedules/reconcile : force an immediate pass.
//   - PUT /schedules/:id/late-checkout : set an override (future, after check-in).
//   - DELETE /schedules/:id/late-checkout : remove an override.
package schedule
