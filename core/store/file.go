package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	visitsFile    = "visits.json"
	overridesFile = "late_checkouts.json"
)

// fileStore persists visits and overrides as plain JSON documents and keeps
// an in-memory cache of both. A filesystem watcher invalidates the cache when
// the files are edited externally; a write-in-progress flag plus a short
// cooldown keep our own writes from invalidating it.
type fileStore struct {
	dir      string
	cooldown time.Duration
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	done     chan struct{}

	mu             sync.Mutex
	visits         []Visit
	visitsValid    bool
	overrides      map[string]time.Time
	overridesValid bool
	writing        bool
	lastWrite      time.Time
}

func newFileStore(cfg Config, logger *zap.Logger) (*fileStore, error) {
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create store watcher: %w", err)
	}
	if err := watcher.Add(cfg.Path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch store directory: %w", err)
	}

	s := &fileStore{
		dir:      cfg.Path,
		cooldown: time.Duration(cfg.WriteCooldownSeconds) * time.Second,
		logger:   logger,
		watcher:  watcher,
		done:     make(chan struct{}),
	}
	go s.watch()
	return s, nil
}

// watch invalidates the in-memory cache when a store file changes on disk.
func (s *fileStore) watch() {
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Base(ev.Name)
			if name != visitsFile && name != overridesFile {
				continue
			}

			s.mu.Lock()
			if s.writing || time.Since(s.lastWrite) < s.cooldown {
				// Self-inflicted write; the cache already holds it.
				s.mu.Unlock()
				continue
			}
			if name == visitsFile {
				s.visitsValid = false
			} else {
				s.overridesValid = false
			}
			s.mu.Unlock()

			s.logger.Info("Store file changed externally, cache invalidated",
				zap.String("file", name))
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("Store watcher error", zap.Error(err))
		}
	}
}

// readJSON loads a store document, treating a missing file as empty.
func (s *fileStore) readJSON(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

// writeJSON persists a store document. Callers must hold s.mu.
func (s *fileStore) writeJSON(name string, in any) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	s.writing = true
	err = os.WriteFile(filepath.Join(s.dir, name), data, 0o644)
	s.writing = false
	s.lastWrite = time.Now()

	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// loadVisits refreshes the visit cache if invalid. Callers must hold s.mu.
func (s *fileStore) loadVisits() error {
	if s.visitsValid {
		return nil
	}
	visits := []Visit{}
	if err := s.readJSON(visitsFile, &visits); err != nil {
		return err
	}
	s.visits = visits
	s.visitsValid = true
	return nil
}

// loadOverrides refreshes the override cache if invalid. Callers must hold s.mu.
func (s *fileStore) loadOverrides() error {
	if s.overridesValid {
		return nil
	}
	overrides := map[string]time.Time{}
	if err := s.readJSON(overridesFile, &overrides); err != nil {
		return err
	}
	s.overrides = overrides
	s.overridesValid = true
	return nil
}

func (s *fileStore) Visits() ([]Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadVisits(); err != nil {
		return nil, err
	}
	out := make([]Visit, len(s.visits))
	copy(out, s.visits)
	return out, nil
}

func (s *fileStore) AddVisit(v Visit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadVisits(); err != nil {
		return err
	}
	s.visits = append(s.visits, v)
	return s.writeJSON(visitsFile, s.visits)
}

func (s *fileStore) DeleteVisit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadVisits(); err != nil {
		return err
	}

	kept := s.visits[:0]
	found := false
	for _, v := range s.visits {
		if v.ID == id {
			found = true
			continue
		}
		kept = append(kept, v)
	}
	if !found {
		return ErrNotFound
	}
	s.visits = kept
	return s.writeJSON(visitsFile, s.visits)
}

func (s *fileStore) Overrides() (map[string]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadOverrides(); err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(s.overrides))
	for k, v := range s.overrides {
		out[k] = v
	}
	return out, nil
}

func (s *fileStore) SetOverride(id string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadOverrides(); err != nil {
		return err
	}
	s.overrides[id] = t
	return s.writeJSON(overridesFile, s.overrides)
}

func (s *fileStore) DeleteOverride(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadOverrides(); err != nil {
		return err
	}
	if _, ok := s.overrides[id]; !ok {
		return nil
	}
	delete(s.overrides, id)
	return s.writeJSON(overridesFile, s.overrides)
}

func (s *fileStore) Close() error {
	close(s.done)
	return s.watcher.Close()
}
