// Package modes applies idempotent, cooldown-guarded house mode changes.
//
// The controller resolves mode names case-insensitively against the hub's
// mode list, short-circuits when the mode is already active, and keeps a
// transient (mode, reason) -> last-applied memo so overlapping schedules
// firing the same transition twice within the cooldown window only reach the
// hub once. Memo entries expire with the window and are pruned lazily.
package modes
