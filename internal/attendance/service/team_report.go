package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MatheusPlinio/DotWysion/internal/attendance/ledger"
	dErrors "github.com/MatheusPlinio/DotWysion/pkg/domain-errors"
	pstrings "github.com/MatheusPlinio/DotWysion/pkg/platform/strings"
)

// teamReportConcurrency bounds parallel store reads for a team report.
const teamReportConcurrency = 8

// TeamReport aggregates the same window for several users, fanning the
// per-user queries out concurrently. Reports for different users are fully
// independent, so order of evaluation does not matter; results come back
// keyed by user ID.
func (s *Service) TeamReport(ctx context.Context, userIDs []string, from, to time.Time) (map[string]ledger.Summary, error) {
	unique := pstrings.DedupeAndTrim(userIDs)
	if len(unique) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "at least one user id is required")
	}
	if err := validateWindow(from, to); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	out := make(map[string]ledger.Summary, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(teamReportConcurrency)
	for _, userID := range unique {
		g.Go(func() error {
			events, err := s.store.Query(gctx, userID, from, to)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to query events")
			}
			summary := ledger.Aggregate(events, from, to)

			mu.Lock()
			out[userID] = summary
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.metrics.IncReportGenerated()
	return out, nil
}
