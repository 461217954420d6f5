package store

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound reports that the requested record does not exist in the store.
var ErrNotFound = errors.New("record not found")

// ModeChange is one timed mode transition within a manual visit. The Mode
// field carries a transition tag (checkin, checkout, arriving_soon); the
// actual house mode name is resolved from configuration when the entry fires.
type ModeChange struct {
	// Time is the absolute instant the change fires at.
	Time time.Time `json:"time"`
	// Mode is the transition tag: "checkin", "checkout" or "arriving_soon".
	Mode string `json:"mode"`
}

// Visit is an operator-entered one-off visit with an ordered list of mode
// changes. The persisted visit list is authoritative; timer handles are a
// derived projection rebuilt on process start.
type Visit struct {
	// ID is assigned at creation.
	ID string `json:"id"`
	// Name is an optional human label.
	Name string `json:"name,omitempty"`
	// Phone is the optional 4-digit lock-code payload.
	Phone string `json:"phone,omitempty"`
	// ModeChanges is the ordered list of timed transitions.
	ModeChanges []ModeChange `json:"modeChanges"`
}

// FinalChange returns the instant of the visit's last mode change. ok is
// false for a visit with no mode changes.
func (v Visit) FinalChange() (time.Time, bool) {
	if len(v.ModeChanges) == 0 {
		return time.Time{}, false
	}
	last := v.ModeChanges[0].Time
	for _, mc := range v.ModeChanges[1:] {
		if mc.Time.After(last) {
			last = mc.Time
		}
	}
	return last, true
}

// Store is the persisted backend for manual visits and late-checkout
// overrides. Implementations are safe for concurrent use.
type Store interface {
	// Visits returns all persisted visits.
	Visits() ([]Visit, error)
	// AddVisit persists a new visit.
	AddVisit(v Visit) error
	// DeleteVisit removes a visit by id. Returns ErrNotFound if absent.
	DeleteVisit(id string) error

	// Overrides returns the late-checkout override map, keyed by
	// reservation identifier.
	Overrides() (map[string]time.Time, error)
	// SetOverride records a late-checkout override for a reservation.
	SetOverride(id string, t time.Time) error
	// DeleteOverride removes an override. Removing an absent override is
	// not an error; reconciliation prunes stale overrides freely.
	DeleteOverride(id string) error

	// Close releases backend resources (watchers, connections).
	Close() error
}

// Open creates the store selected by the configuration.
func Open(cfg Config, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case BackendFile:
		return newFileStore(cfg, logger)
	case BackendDatabase:
		return newDatabaseStore(cfg.Database, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
