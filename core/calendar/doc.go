// Package calendar supplies normalized reservation events to the
// reconciliation engine.
//
// Each configured platform feed (Airbnb, VRBO) is an ICS document fetched
// over HTTP. Feeds sometimes return empty documents transiently, so fetches
// retry a bounded number of times with a fixed interval. Placeholder
// "unavailable" blocks are excluded during parsing. Events are ephemeral and
// regenerated on every pass; nothing in this package holds state between
// passes.
package calendar
