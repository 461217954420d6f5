package schedule

import (
	"time"

	"guesthub/core/timer"
)

// Entry is the engine's record of one reservation. The engine owns all
// entries exclusively; nothing outside this package mutates them.
type Entry struct {
	// ReservationID is the stable key extracted from the event description.
	ReservationID string
	// Phone is the 4-digit lock-code payload.
	Phone string
	// Platform tags which feed the reservation came from.
	Platform string
	// Start is the check-in instant.
	Start time.Time
	// End is the check-out instant, including a late-checkout override
	// when one is applied.
	End time.Time
	// FeedEnd is the check-out instant as computed from the feed, kept so
	// a removed override can restore it.
	FeedEnd time.Time
	// Arriving is the arriving-soon instant; zero when disabled.
	Arriving time.Time
	// LateCheckout reports whether End comes from an override.
	LateCheckout bool

	// Live timer handles. A handle is present only while its instant is in
	// the future and the job has not fired.
	startJob    *timer.Handle
	endJob      *timer.Handle
	arrivingJob *timer.Handle
}

// cancelTimers cancels every live timer of the entry. Safe on entries whose
// handles are nil or already fired.
func (e *Entry) cancelTimers() {
	e.startJob.Cancel()
	e.endJob.Cancel()
	e.arrivingJob.Cancel()
	e.startJob, e.endJob, e.arrivingJob = nil, nil, nil
}

// View is the JSON projection of an Entry served by the HTTP API.
type View struct {
	ReservationID string     `json:"reservation_id"`
	Phone         string     `json:"phone"`
	Platform      string     `json:"platform"`
	Start         time.Time  `json:"start"`
	End           time.Time  `json:"end"`
	Arriving      *time.Time `json:"arriving,omitempty"`
	LateCheckout  bool       `json:"late_checkout"`
}

func (e *Entry) view() View {
	v := View{
		ReservationID: e.ReservationID,
		Phone:         e.Phone,
		Platform:      e.Platform,
		Start:         e.Start,
		End:           e.End,
		LateCheckout:  e.LateCheckout,
	}
	if !e.Arriving.IsZero() {
		arriving := e.Arriving
		v.Arriving = &arriving
	}
	return v
}
