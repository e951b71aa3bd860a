//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/MatheusPlinio/DotWysion/internal/attendance/models"
	"github.com/MatheusPlinio/DotWysion/internal/attendance/store"
	"github.com/MatheusPlinio/DotWysion/pkg/platform/sentinel"
	"github.com/MatheusPlinio/DotWysion/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background(), "attendance_events"))
}

func event(userID string, kind models.Kind, ts time.Time) models.Event {
	return models.Event{UserID: userID, UserName: "Test User", Kind: kind, OccurredAt: ts}
}

func (s *PostgresStoreSuite) TestLatestAndAppend() {
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	latest, err := s.store.GetLatest(ctx, "u1")
	s.Require().NoError(err)
	s.Nil(latest)

	first, err := s.store.AppendAfter(ctx, event("u1", models.KindClockIn, base), nil)
	s.Require().NoError(err)
	s.NotZero(first.ID)

	latest, err = s.store.GetLatest(ctx, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(latest)
	s.Equal(models.KindClockIn, latest.Kind)
	s.Equal(first.ID, latest.ID)

	_, err = s.store.AppendAfter(ctx, event("u1", models.KindClockIn, base.Add(time.Minute)), nil)
	s.ErrorIs(err, sentinel.ErrConflict)

	_, err = s.store.AppendAfter(ctx, event("u1", models.KindClockOut, base.Add(8*time.Hour)), &first.ID)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestQueryWindowAndOrdering() {
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	var lastID *int64
	kinds := []models.Kind{models.KindClockIn, models.KindBreakStart, models.KindBreakEnd, models.KindClockOut}
	for i, kind := range kinds {
		ev, err := s.store.AppendAfter(ctx, event("u1", kind, base.Add(time.Duration(i)*time.Hour)), lastID)
		s.Require().NoError(err)
		lastID = &ev.ID
	}

	events, err := s.store.Query(ctx, "u1", base, base.Add(90*time.Minute))
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(models.KindClockIn, events[0].Kind)
	s.Equal(models.KindBreakStart, events[1].Kind)

	recent, err := s.store.ListRecent(ctx, "u1", 3)
	s.Require().NoError(err)
	s.Require().Len(recent, 3)
	s.Equal(models.KindClockOut, recent[0].Kind)
}

func (s *PostgresStoreSuite) TestNoteRoundTrip() {
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	ev := event("u1", models.KindClockIn, base)
	ev.Note = "doctor appointment at noon"
	appended, err := s.store.AppendAfter(ctx, ev, nil)
	s.Require().NoError(err)

	latest, err := s.store.GetLatest(ctx, "u1")
	s.Require().NoError(err)
	s.Equal(appended.ID, latest.ID)
	s.Equal("doctor appointment at noon", latest.Note)
}

// TestConcurrentAppendSingleWinner verifies the per-user serialization under
// real postgres: concurrent first punches for one user produce exactly one
// row.
func (s *PostgresStoreSuite) TestConcurrentAppendSingleWinner() {
	ctx := context.Background()
	ts := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.AppendAfter(ctx, event("u1", models.KindClockIn, ts), nil)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one append should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load())

	events, err := s.store.Query(ctx, "u1", ts.Add(-time.Hour), ts.Add(time.Hour))
	s.Require().NoError(err)
	s.Len(events, 1)
}
