package timer

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobKind identifies the lifecycle transition a job represents.
type JobKind string

const (
	// JobCheckIn fires at a reservation's check-in instant.
	JobCheckIn JobKind = "check-in"
	// JobCheckOut fires at a reservation's check-out instant.
	JobCheckOut JobKind = "check-out"
	// JobArrivingSoon fires at a reservation's arriving-soon instant.
	JobArrivingSoon JobKind = "arriving-soon"
	// JobModeChange fires at one mode-change entry of a manual visit.
	JobModeChange JobKind = "mode-change"
)

// Job is the typed descriptor passed to a fired callback. Callbacks look up
// current state by ID instead of capturing it at scheduling time, so a job
// firing after its entry was replaced never acts on stale data.
type Job struct {
	// Kind is the transition this job triggers.
	Kind JobKind
	// ID is the reservation identifier or visit identifier the job belongs to.
	ID string
	// Seq disambiguates multiple jobs of the same kind within one owner
	// (the index of a visit's mode-change entry). Zero otherwise.
	Seq int
	// FiresAt is the absolute instant the job was scheduled for.
	FiresAt time.Time
}

// Handle represents one pending job. Cancel is safe to call on a nil handle,
// a fired handle, or an already-cancelled handle.
type Handle struct {
	mu        sync.Mutex
	timer     *time.Timer
	fired     bool
	cancelled bool
}

// Cancel prevents a future firing. It does not interrupt a callback that has
// already started running.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelled || h.fired {
		return
	}
	h.cancelled = true
	if h.timer != nil {
		h.timer.Stop()
	}
}

// Pending reports whether the job has neither fired nor been cancelled.
func (h *Handle) Pending() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.fired && !h.cancelled
}

func (h *Handle) markFired() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelled {
		return false
	}
	h.fired = true
	return true
}

// Scheduler arranges one-shot jobs at absolute instants. Callbacks run on
// their own goroutine and may overlap with each other and with reconciliation
// passes; they must not assume mutual exclusion.
type Scheduler struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduler creates a scheduler. The now function is injectable for tests;
// pass nil to use the wall clock.
func NewScheduler(logger *zap.Logger, now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{logger: logger, now: now}
}

// Schedule arranges fn to be called with job at the given instant and returns
// a cancellable handle. An instant already in the past fires immediately.
func (s *Scheduler) Schedule(at time.Time, job Job, fn func(Job)) *Handle {
	d := at.Sub(s.now())
	if d < 0 {
		d = 0
	}

	h := &Handle{}
	h.timer = time.AfterFunc(d, func() {
		// A Stop that lost the race against firing still wins here.
		if !h.markFired() {
			return
		}
		fn(job)
	})

	s.logger.Debug("Scheduled job",
		zap.String("kind", string(job.Kind)),
		zap.String("id", job.ID),
		zap.Time("fires_at", at),
	)

	return h
}
