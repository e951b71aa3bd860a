// Package ledger reconstructs worked and break durations from an ordered
// event log. Aggregation is a pure function: it never touches the store and
// is safe to run concurrently with event recording.
package ledger

import (
	"time"

	"github.com/MatheusPlinio/DotWysion/internal/attendance/models"
)

// Summary is the result of aggregating a window of a user's ledger.
type Summary struct {
	Worked time.Duration `json:"worked"`
	Breaks time.Duration `json:"breaks"`
}

// Net is the reported worked time: gross worked minus closed breaks. Breaks
// are treated as nested inside a shift and subtracted even when their
// timestamps fall outside one.
func (s Summary) Net() time.Duration {
	return s.Worked - s.Breaks
}

// Aggregate scans events ascending by timestamp and sums fully closed
// clock-in/clock-out and break intervals inside [from, to] inclusive.
//
// The scan is deliberately tolerant of malformed logs:
//   - a second clock-in (or break-start) while one is open overwrites the
//     previous open marker; the discarded interval contributes nothing;
//   - a clock-out (or break-end) with no matching open marker is ignored;
//   - intervals still open when the scan ends are not counted, so a report
//     over an ongoing shift reports only what has closed.
//
// Deltas are added as-is: an end timestamp earlier than its open marker
// produces a negative contribution rather than being clamped or rejected.
func Aggregate(events []models.Event, from, to time.Time) Summary {
	var sum Summary
	var openClockIn, openBreak *time.Time

	for i := range events {
		ev := &events[i]
		if ev.OccurredAt.Before(from) || ev.OccurredAt.After(to) {
			continue
		}

		switch ev.Kind {
		case models.KindClockIn:
			t := ev.OccurredAt
			openClockIn = &t
		case models.KindClockOut:
			if openClockIn != nil {
				sum.Worked += ev.OccurredAt.Sub(*openClockIn)
				openClockIn = nil
			}
		case models.KindBreakStart:
			t := ev.OccurredAt
			openBreak = &t
		case models.KindBreakEnd:
			if openBreak != nil {
				sum.Breaks += ev.OccurredAt.Sub(*openBreak)
				openBreak = nil
			}
		}
	}

	return sum
}
