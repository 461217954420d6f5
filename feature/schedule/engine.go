package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"guesthub/core/calendar"
	"guesthub/core/store"
	"guesthub/core/timer"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrUnknownReservation reports an operation against a reservation that is
// not in the table.
var ErrUnknownReservation = errors.New("unknown reservation")

// ErrInvalidOverride reports a late-checkout override that fails validation.
var ErrInvalidOverride = errors.New("invalid late-checkout override")

// Engine owns the in-memory reservation table. Each reconciliation pass
// diffs the freshly fetched events against the table, arranges or cancels
// timed jobs, and applies late-checkout overrides. All table access goes
// through the engine's mutex.
type Engine struct {
	source calendar.Source
	sched  *timer.Scheduler
	exec   *Executor
	store  store.Store
	logger *zap.Logger
	now    func() time.Time

	loc                       *time.Location
	checkinHour, checkinMin   int
	checkoutHour, checkoutMin int
	arrivingHour, arrivingMin int
	arrivingEnabled           bool
	arrivingDaysBefore        int
	interval                  time.Duration
	immediateCheckout         bool

	mu      sync.Mutex
	entries map[string]*Entry

	sf singleflight.Group
}

// NewEngine creates a reconciliation engine. Configuration is resolved once
// here; a bad clock-time or timezone string fails startup instead of every
// pass. The now function is injectable for tests; pass nil for wall clock.
func NewEngine(source calendar.Source, sched *timer.Scheduler, exec *Executor, st store.Store, cfg Config, logger *zap.Logger, now func() time.Time) (*Engine, error) {
	if now == nil {
		now = time.Now
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("bad timezone: %w", err)
	}

	interval := time.Duration(cfg.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	e := &Engine{
		source:             source,
		sched:              sched,
		exec:               exec,
		store:              st,
		logger:             logger,
		now:                now,
		loc:                loc,
		arrivingDaysBefore: cfg.ArrivingSoonDaysBefore,
		interval:           interval,
		immediateCheckout:  cfg.RunCheckoutImmediatelyIfReservationIsCancelledMidStay,
		entries:            make(map[string]*Entry),
	}

	if e.checkinHour, e.checkinMin, err = ParseClockTime(cfg.CheckinTime); err != nil {
		return nil, fmt.Errorf("bad checkin_time: %w", err)
	}
	if e.checkoutHour, e.checkoutMin, err = ParseClockTime(cfg.CheckoutTime); err != nil {
		return nil, fmt.Errorf("bad checkout_time: %w", err)
	}
	if cfg.ArrivingSoonTime != "" {
		if e.arrivingHour, e.arrivingMin, err = ParseClockTime(cfg.ArrivingSoonTime); err != nil {
			return nil, fmt.Errorf("bad arriving_soon_time: %w", err)
		}
		e.arrivingEnabled = true
	}

	return e, nil
}

// Run drives periodic reconciliation until the context is cancelled. The
// first pass runs immediately.
func (e *Engine) Run(ctx context.Context) {
	if err := e.ForceReconcile(ctx); err != nil {
		e.logger.Error("Reconciliation failed", zap.Error(err))
	}

	t := time.NewTicker(e.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := e.ForceReconcile(ctx); err != nil {
				e.logger.Error("Reconciliation failed", zap.Error(err))
			}
		}
	}
}

// ForceReconcile runs a pass now, collapsing concurrent triggers (the ticker
// and HTTP-forced passes) into a single execution.
func (e *Engine) ForceReconcile(ctx context.Context) error {
	_, err, _ := e.sf.Do("reconcile", func() (any, error) {
		return nil, e.Reconcile(ctx)
	})
	return err
}

// Reconcile fetches the current events and diffs them against the
// reservation table. A feed failure aborts the pass and leaves the table
// untouched; per-event failures skip only their own event.
func (e *Engine) Reconcile(ctx context.Context) error {
	events, err := e.source.Events(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	// One captured instant per pass; every comparison below uses it.
	now := e.now()

	overrides, err := e.store.Overrides()
	if err != nil {
		e.logger.Warn("Failed to load late-checkout overrides", zap.Error(err))
		overrides = nil
	}

	current := make(map[string]struct{})

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, ev := range events {
		e.reconcileEvent(ev, now, overrides, current)
	}

	for id, entry := range e.entries {
		if _, ok := current[id]; ok {
			continue
		}
		e.reconcileDisappeared(id, entry, now)
	}

	e.logger.Info("Reconciliation pass complete",
		zap.Int("events", len(events)),
		zap.Int("schedules", len(e.entries)),
	)
	return nil
}

// reconcileEvent processes one feed event. Callers hold e.mu.
func (e *Engine) reconcileEvent(ev calendar.Event, now time.Time, overrides map[string]time.Time, current map[string]struct{}) {
	res, err := extractReservation(ev)
	if err != nil {
		e.logger.Warn("Skipping event", zap.String("summary", ev.Summary), zap.Error(err))
		return
	}

	start := e.at(ev.Start, e.checkinHour, e.checkinMin)
	end := e.at(ev.End, e.checkoutHour, e.checkoutMin)
	feedEnd := end

	var arriving time.Time
	if e.arrivingEnabled {
		arriving = e.at(ev.Start, e.arrivingHour, e.arrivingMin).AddDate(0, 0, -e.arrivingDaysBefore)
	}

	lateCheckout := false
	if ov, ok := overrides[res.ID]; ok {
		if ov.After(end) && ov.After(now) {
			end = ov
			lateCheckout = true
		} else {
			// Stale override: superseded by the feed or already past.
			if err := e.store.DeleteOverride(res.ID); err != nil {
				e.logger.Warn("Failed to prune stale override",
					zap.String("reservation", res.ID), zap.Error(err))
			} else {
				e.logger.Info("Pruned stale late-checkout override",
					zap.String("reservation", res.ID), zap.Time("override", ov))
			}
		}
	}

	// A reservation that already ended contributes nothing this cycle.
	if !end.After(now) {
		return
	}

	if existing, ok := e.entries[res.ID]; ok {
		if existing.Start.Equal(start) && existing.End.Equal(end) && existing.Platform == ev.Platform {
			// Unchanged. The phone fragment may still be corrected in
			// place; jobs resolve it at fire time.
			existing.Phone = res.Phone
			current[res.ID] = struct{}{}
			return
		}

		e.logger.Info("Reservation changed, rescheduling",
			zap.String("reservation", res.ID),
			zap.Time("start", start), zap.Time("end", end),
			zap.String("platform", ev.Platform),
		)
		existing.cancelTimers()
		delete(e.entries, res.ID)
	} else {
		e.logger.Info("New reservation",
			zap.String("reservation", res.ID),
			zap.Time("start", start), zap.Time("end", end),
			zap.String("platform", ev.Platform),
		)
	}

	entry := &Entry{
		ReservationID: res.ID,
		Phone:         res.Phone,
		Platform:      ev.Platform,
		Start:         start,
		End:           end,
		FeedEnd:       feedEnd,
		Arriving:      arriving,
		LateCheckout:  lateCheckout,
	}
	e.scheduleEntry(entry, now)
	e.entries[res.ID] = entry
	current[res.ID] = struct{}{}
}

// scheduleEntry arranges the entry's start/end/arriving jobs, skipping any
// whose instant is already past. Callers hold e.mu.
func (e *Engine) scheduleEntry(entry *Entry, now time.Time) {
	id := entry.ReservationID
	if entry.Start.After(now) {
		entry.startJob = e.sched.Schedule(entry.Start,
			timer.Job{Kind: timer.JobCheckIn, ID: id, FiresAt: entry.Start}, e.onJob)
	}
	if entry.End.After(now) {
		entry.endJob = e.sched.Schedule(entry.End,
			timer.Job{Kind: timer.JobCheckOut, ID: id, FiresAt: entry.End}, e.onJob)
	}
	if !entry.Arriving.IsZero() && entry.Arriving.After(now) {
		entry.arrivingJob = e.sched.Schedule(entry.Arriving,
			timer.Job{Kind: timer.JobArrivingSoon, ID: id, FiresAt: entry.Arriving}, e.onJob)
	}
}

// reconcileDisappeared handles a reservation that vanished from the feed.
// Callers hold e.mu.
func (e *Engine) reconcileDisappeared(id string, entry *Entry, now time.Time) {
	// The start and arriving jobs are always wrong for a cancelled
	// reservation; the end job depends on where "now" falls.
	entry.startJob.Cancel()
	entry.startJob = nil
	entry.arrivingJob.Cancel()
	entry.arrivingJob = nil

	switch {
	case now.Before(entry.Start):
		// Cancelled before arrival: drop it, no actions.
		entry.endJob.Cancel()
		delete(e.entries, id)
		e.logger.Info("Reservation cancelled before arrival",
			zap.String("reservation", id))

	case now.Before(entry.End):
		// Guest is in residence.
		if e.immediateCheckout {
			entry.endJob.Cancel()
			delete(e.entries, id)
			e.logger.Info("Reservation cancelled mid-stay, running check-out now",
				zap.String("reservation", id))
			go e.exec.CheckOut(context.Background(), id, entry.Phone)
		} else {
			e.logger.Info("Reservation cancelled mid-stay, keeping scheduled check-out",
				zap.String("reservation", id), zap.Time("end", entry.End))
		}

	default:
		// Already over; the end job fired or never existed.
		entry.endJob.Cancel()
		delete(e.entries, id)
	}
}

// onJob is the single dispatch point for fired timers. It resolves the
// current entry by reservation id, so a job that outlived a reschedule acts
// on nothing.
func (e *Engine) onJob(job timer.Job) {
	ctx := context.Background()

	e.mu.Lock()
	entry, ok := e.entries[job.ID]
	if !ok {
		e.mu.Unlock()
		e.logger.Debug("Job fired for vanished reservation",
			zap.String("reservation", job.ID), zap.String("kind", string(job.Kind)))
		return
	}

	var expected time.Time
	switch job.Kind {
	case timer.JobCheckIn:
		expected = entry.Start
	case timer.JobCheckOut:
		expected = entry.End
	case timer.JobArrivingSoon:
		expected = entry.Arriving
	}
	if !job.FiresAt.Equal(expected) {
		// The entry was replaced between firing and dispatch.
		e.mu.Unlock()
		e.logger.Debug("Job fired for superseded schedule",
			zap.String("reservation", job.ID), zap.String("kind", string(job.Kind)))
		return
	}

	phone := entry.Phone
	switch job.Kind {
	case timer.JobCheckIn:
		entry.startJob = nil
	case timer.JobArrivingSoon:
		entry.arrivingJob = nil
	case timer.JobCheckOut:
		entry.endJob = nil
		// The stay is over; the entry has nothing left to do.
		delete(e.entries, job.ID)
	}
	e.mu.Unlock()

	switch job.Kind {
	case timer.JobCheckIn:
		e.exec.CheckIn(ctx, job.ID, phone)
	case timer.JobCheckOut:
		e.exec.CheckOut(ctx, job.ID, phone)
	case timer.JobArrivingSoon:
		e.exec.ArrivingSoon(ctx, job.ID)
	}
}

// Entries returns the reservation table sorted by start time.
func (e *Engine) Entries() []View {
	e.mu.Lock()
	defer e.mu.Unlock()

	views := make([]View, 0, len(e.entries))
	for _, entry := range e.entries {
		views = append(views, entry.view())
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].Start.Before(views[j].Start)
	})
	return views
}

// SetLateCheckout validates, persists and applies a late-checkout override
// for a reservation currently in the table. The override must be in the
// future and after the reservation's check-in instant.
func (e *Engine) SetLateCheckout(id string, at time.Time) error {
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownReservation, id)
	}
	if !at.After(now) {
		return fmt.Errorf("%w: %s is not in the future", ErrInvalidOverride, at)
	}
	if !at.After(entry.Start) {
		return fmt.Errorf("%w: %s is not after check-in %s", ErrInvalidOverride, at, entry.Start)
	}

	if err := e.store.SetOverride(id, at); err != nil {
		return fmt.Errorf("failed to persist override: %w", err)
	}

	if at.After(entry.End) {
		entry.endJob.Cancel()
		entry.End = at
		entry.LateCheckout = true
		entry.endJob = e.sched.Schedule(at,
			timer.Job{Kind: timer.JobCheckOut, ID: id, FiresAt: at}, e.onJob)
		e.logger.Info("Late checkout applied",
			zap.String("reservation", id), zap.Time("end", at))
	}
	return nil
}

// RemoveLateCheckout deletes a reservation's override and restores the
// feed-derived check-out instant.
func (e *Engine) RemoveLateCheckout(id string) error {
	if err := e.store.DeleteOverride(id); err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}

	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.entries[id]
	if !ok || !entry.LateCheckout {
		return nil
	}

	entry.endJob.Cancel()
	entry.endJob = nil
	entry.End = entry.FeedEnd
	entry.LateCheckout = false
	if entry.End.After(now) {
		entry.endJob = e.sched.Schedule(entry.End,
			timer.Job{Kind: timer.JobCheckOut, ID: id, FiresAt: entry.End}, e.onJob)
	}
	e.logger.Info("Late checkout removed",
		zap.String("reservation", id), zap.Time("end", entry.End))
	return nil
}

// at combines an event's calendar day with a configured time of day in the
// property's timezone.
func (e *Engine) at(day time.Time, hour, minute int) time.Time {
	d := day.In(e.loc)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, e.loc)
}
