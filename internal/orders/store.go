package orders

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-wms/internal/lineitems"
)

// Draft is one open create or edit form.
type Draft struct {
	ID       string
	Kind     lineitems.Kind
	RecordID int64

	mu         sync.Mutex
	editor     *lineitems.Editor
	submitting bool
	touched    time.Time
}

// Editing reports whether the draft updates an existing record.
func (d *Draft) Editing() bool {
	return d.RecordID > 0
}

// Store keeps open drafts in memory.
type Store struct {
	mu     sync.Mutex
	drafts map[string]*Draft
	now    func() time.Time
}

// NewStore constructs an empty draft store.
func NewStore() *Store {
	return &Store{drafts: make(map[string]*Draft), now: time.Now}
}

// Add registers a new draft and returns it.
func (s *Store) Add(kind lineitems.Kind, recordID int64, editor *lineitems.Editor) *Draft {
	d := &Draft{ID: uuid.NewString(), Kind: kind, RecordID: recordID, editor: editor}
	s.mu.Lock()
	d.touched = s.now()
	s.drafts[d.ID] = d
	s.mu.Unlock()
	return d
}

// Get returns the draft and marks it as recently used.
func (s *Store) Get(id string) (*Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if ok {
		d.touched = s.now()
	}
	return d, ok
}

// Delete discards the draft.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[id]; !ok {
		return false
	}
	delete(s.drafts, id)
	return true
}

// Len returns the number of open drafts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

// Sweep drops drafts untouched for longer than idle and returns how many were dropped.
func (s *Store) Sweep(idle time.Duration) int {
	if idle <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-idle)
	dropped := 0
	for id, d := range s.drafts {
		if d.touched.Before(cutoff) {
			delete(s.drafts, id)
			dropped++
		}
	}
	return dropped
}

// RunSweeper sweeps idle drafts every interval until ctx is cancelled.
func (s *Store) RunSweeper(ctx context.Context, idle, interval time.Duration, logger *slog.Logger) {
	if idle <= 0 || interval <= 0 {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(idle); n > 0 {
				logger.Info("swept idle drafts", slog.Int("count", n))
			}
		}
	}
}
