package visits

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"guesthub/core/store"
	"guesthub/core/timer"
	"guesthub/feature/locks"
	"guesthub/feature/modes"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mode-change tags a visit entry may carry. The tag names the transition;
// the actual house mode comes from configuration.
const (
	TagCheckin      = "checkin"
	TagCheckout     = "checkout"
	TagArrivingSoon = "arriving_soon"
)

// ModeNames maps transition tags to configured house mode names. An empty
// name means no mode is configured for that transition.
type ModeNames struct {
	CheckIn      string
	CheckOut     string
	ArrivingSoon string
}

// Service schedules operator-entered visits. The persisted visit list is
// authoritative; the in-memory handle map is a projection rebuilt by
// Initialize on process start.
type Service struct {
	store  store.Store
	sched  *timer.Scheduler
	locks  *locks.Programmer
	modes  *modes.Controller
	names  ModeNames
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	handles map[string][]*timer.Handle
}

// NewService creates a manual visit scheduler. The now function is
// injectable for tests; pass nil for wall clock.
func NewService(st store.Store, sched *timer.Scheduler, programmer *locks.Programmer, controller *modes.Controller, names ModeNames, logger *zap.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:   st,
		sched:   sched,
		locks:   programmer,
		modes:   controller,
		names:   names,
		logger:  logger,
		now:     now,
		handles: make(map[string][]*timer.Handle),
	}
}

// Initialize loads the persisted visits, drops the ones that are entirely in
// the past and schedules the rest.
func (s *Service) Initialize() error {
	visits, err := s.store.Visits()
	if err != nil {
		return fmt.Errorf("failed to load visits: %w", err)
	}

	now := s.now()
	scheduled := 0
	for _, v := range visits {
		final, ok := v.FinalChange()
		if !ok || !final.After(now) {
			if err := s.store.DeleteVisit(v.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
				s.logger.Warn("Failed to drop expired visit",
					zap.String("visit", v.ID), zap.Error(err))
			} else {
				s.logger.Info("Dropped expired visit", zap.String("visit", v.ID))
			}
			continue
		}
		s.scheduleVisit(v, now)
		scheduled++
	}

	s.logger.Info("Visit scheduler initialized", zap.Int("scheduled", scheduled))
	return nil
}

// Add assigns an identifier, persists the visit and schedules its mode
// changes.
func (s *Service) Add(v store.Visit) (store.Visit, error) {
	if len(v.ModeChanges) == 0 {
		return store.Visit{}, fmt.Errorf("visit has no mode changes")
	}
	for _, mc := range v.ModeChanges {
		switch mc.Mode {
		case TagCheckin, TagCheckout, TagArrivingSoon:
		default:
			return store.Visit{}, fmt.Errorf("unknown mode-change tag %q", mc.Mode)
		}
	}

	v.ID = uuid.NewString()
	if err := s.store.AddVisit(v); err != nil {
		return store.Visit{}, err
	}

	s.scheduleVisit(v, s.now())
	s.logger.Info("Visit added",
		zap.String("visit", v.ID),
		zap.Int("mode_changes", len(v.ModeChanges)),
	)
	return v, nil
}

// Remove deletes a visit from the store and cancels its live timers.
func (s *Service) Remove(id string) error {
	if err := s.store.DeleteVisit(id); err != nil {
		return err
	}
	s.dropHandles(id)
	s.logger.Info("Visit removed", zap.String("visit", id))
	return nil
}

// List returns the persisted visits.
func (s *Service) List() ([]store.Visit, error) {
	return s.store.Visits()
}

// scheduleVisit arranges a timer for every future mode change of the visit.
func (s *Service) scheduleVisit(v store.Visit, now time.Time) {
	var hs []*timer.Handle
	for i, mc := range v.ModeChanges {
		if !mc.Time.After(now) {
			continue
		}
		job := timer.Job{Kind: timer.JobModeChange, ID: v.ID, Seq: i, FiresAt: mc.Time}
		hs = append(hs, s.sched.Schedule(mc.Time, job, s.onJob))
	}

	s.mu.Lock()
	s.handles[v.ID] = hs
	s.mu.Unlock()
}

func (s *Service) dropHandles(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.handles[id] {
		h.Cancel()
	}
	delete(s.handles, id)
}

// onJob runs one fired mode change. The visit is re-read from the store, so
// a job surviving a deleted or edited visit acts on nothing.
func (s *Service) onJob(job timer.Job) {
	ctx := context.Background()

	visits, err := s.store.Visits()
	if err != nil {
		s.logger.Error("Visit job fired but store is unreadable",
			zap.String("visit", job.ID), zap.Error(err))
		return
	}

	var visit *store.Visit
	for i := range visits {
		if visits[i].ID == job.ID {
			visit = &visits[i]
			break
		}
	}
	if visit == nil || job.Seq >= len(visit.ModeChanges) {
		s.logger.Debug("Visit job fired for vanished visit", zap.String("visit", job.ID))
		return
	}

	mc := visit.ModeChanges[job.Seq]
	if !mc.Time.Equal(job.FiresAt) {
		s.logger.Debug("Visit job fired for superseded entry", zap.String("visit", job.ID))
		return
	}

	s.runModeChange(ctx, *visit, mc)

	// The visit self-destructs after its final mode change.
	if final, ok := visit.FinalChange(); ok && !final.After(job.FiresAt) {
		if err := s.store.DeleteVisit(visit.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			s.logger.Error("Failed to delete completed visit",
				zap.String("visit", visit.ID), zap.Error(err))
		} else {
			s.logger.Info("Visit completed", zap.String("visit", visit.ID))
		}
		s.dropHandles(visit.ID)
	}
}

func (s *Service) runModeChange(ctx context.Context, v store.Visit, mc store.ModeChange) {
	label := v.Name
	if label == "" {
		label = v.ID
	}

	var modeName string
	switch mc.Mode {
	case TagCheckin:
		modeName = s.names.CheckIn
		if v.Phone != "" {
			s.locks.SetCode(ctx, v.Phone, label)
		}
	case TagCheckout:
		modeName = s.names.CheckOut
		s.locks.RemoveCode(ctx)
	case TagArrivingSoon:
		modeName = s.names.ArrivingSoon
	default:
		s.logger.Error("Visit has unknown mode-change tag",
			zap.String("visit", v.ID), zap.String("tag", mc.Mode))
		return
	}

	if modeName == "" {
		s.logger.Error("No mode configured for visit transition",
			zap.String("visit", v.ID), zap.String("tag", mc.Mode))
		return
	}
	if err := s.modes.Activate(ctx, modeName, mc.Mode+":visit:"+v.ID); err != nil {
		s.logger.Error("Visit mode change failed",
			zap.String("visit", v.ID), zap.String("mode", modeName), zap.Error(err))
	}
}
