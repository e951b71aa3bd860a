package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MatheusPlinio/DotWysion/internal/attendance/models"
	"github.com/MatheusPlinio/DotWysion/pkg/platform/sentinel"
)

// MemoryStore keeps the ledger in process memory. Used by unit tests and
// local development; the mutex gives the same per-user append atomicity the
// postgres store gets from its conditional insert.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	events map[string][]models.Event
}

func NewMemory() *MemoryStore {
	return &MemoryStore{events: make(map[string][]models.Event)}
}

func (s *MemoryStore) GetLatest(_ context.Context, userID string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latestLocked(userID), nil
}

func (s *MemoryStore) AppendAfter(_ context.Context, event models.Event, afterID *int64) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := s.latestLocked(event.UserID)
	switch {
	case latest == nil && afterID != nil:
		return nil, sentinel.ErrConflict
	case latest != nil && (afterID == nil || *afterID != latest.ID):
		return nil, sentinel.ErrConflict
	}

	s.nextID++
	event.ID = s.nextID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	s.events[event.UserID] = append(s.events[event.UserID], event)
	return &event, nil
}

func (s *MemoryStore) Query(_ context.Context, userID string, from, to time.Time) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Event
	for _, ev := range s.events[userID] {
		if ev.OccurredAt.Before(from) || ev.OccurredAt.After(to) {
			continue
		}
		out = append(out, ev)
	}
	sortAscending(out)
	return out, nil
}

func (s *MemoryStore) ListRecent(_ context.Context, userID string, limit int) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.events[userID]
	out := make([]models.Event, len(all))
	copy(out, all)
	sortAscending(out)

	// newest first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// latestLocked assumes the caller holds at least a read lock.
func (s *MemoryStore) latestLocked(userID string) *models.Event {
	var latest *models.Event
	for i := range s.events[userID] {
		ev := &s.events[userID][i]
		if latest == nil || after(ev, latest) {
			latest = ev
		}
	}
	if latest == nil {
		return nil
	}
	copied := *latest
	return &copied
}

// after reports whether a sorts after b in (occurred_at, id) order.
func after(a, b *models.Event) bool {
	if a.OccurredAt.Equal(b.OccurredAt) {
		return a.ID > b.ID
	}
	return a.OccurredAt.After(b.OccurredAt)
}

func sortAscending(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return after(&events[j], &events[i])
	})
}
