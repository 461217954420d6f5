// Package timer provides one-shot job scheduling at absolute instants.
//
// The reconciliation engine and the manual visit scheduler both arrange future
// lifecycle transitions (check-in, check-out, arriving-soon, visit mode
// changes) through this package. Each scheduled job is described by a typed
// Job descriptor rather than a closure over mutable state: the generic fired
// callback re-resolves current state by identifier, which makes a job firing
// after its owning entry was rescheduled harmless.
//
// Cancellation is cooperative: Handle.Cancel only prevents a future firing and
// never interrupts a callback already in flight. Cancel is always safe to
// call, including on nil handles.
package timer
