// Package store persists manual visits and late-checkout overrides.
//
// The rest of the system treats the store as an opaque document backend: read
// the visit list, add or delete a visit, read or mutate the override map. Two
// backends implement the Store interface:
//
//   - file: two JSON documents (visits.json, late_checkouts.json) in a
//     configured directory. An fsnotify watcher detects external edits and
//     invalidates the in-memory cache. Our own writes are masked from the
//     watcher by a write-in-progress flag and a short post-write cooldown.
//   - database: GORM-backed tables, sqlite by default or mysql.
//
// The persisted visit list is the authoritative record; in-memory timer
// handles are a derived projection rebuilt on process start.
package store
