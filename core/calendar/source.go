package calendar

import (
	"context"
	"time"
)

// Event is one normalized reservation event from a feed. Events are
// ephemeral: the full set is regenerated on every reconciliation pass.
type Event struct {
	// Start is the reservation's first calendar day.
	Start time.Time
	// End is the reservation's last calendar day (the check-out day).
	End time.Time
	// Summary is the event's free-text title.
	Summary string
	// Description is free text encoding the reservation identifier and the
	// guest's phone last-4, in a platform-specific shape.
	Description string
	// Platform tags which feed the event came from ("airbnb", "vrbo").
	Platform string
}

// Source supplies the reservation events for one reconciliation pass.
type Source interface {
	Events(ctx context.Context) ([]Event, error)
}

// MultiSource concatenates several feeds. A failing feed is skipped so one
// unreachable calendar does not blank out the others; the error of the last
// failing feed is returned only if every feed failed.
type MultiSource []Source

func (m MultiSource) Events(ctx context.Context) ([]Event, error) {
	var all []Event
	var lastErr error
	failed := 0

	for _, src := range m {
		events, err := src.Events(ctx)
		if err != nil {
			failed++
			lastErr = err
			continue
		}
		all = append(all, events...)
	}

	if failed == len(m) && lastErr != nil {
		return nil, lastErr
	}
	return all, nil
}
