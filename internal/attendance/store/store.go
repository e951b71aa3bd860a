// Package store persists the attendance ledger. Implementations are pure
// I/O; transition legality and aggregation live in the service and ledger
// packages.
package store

import (
	"context"
	"time"

	"github.com/MatheusPlinio/DotWysion/internal/attendance/models"
)

// Store is the record-store port the attendance core consumes. The ledger is
// append-only: no update or delete operations exist.
type Store interface {
	// GetLatest returns the user's most recent event by (occurred_at, id),
	// or nil when the user has no events yet. A nil event is a normal
	// value, not an error.
	GetLatest(ctx context.Context, userID string) (*models.Event, error)

	// AppendAfter appends the event if and only if the user's latest event
	// ID still equals afterID (nil meaning "no events yet"). A concurrent
	// writer that appended first surfaces as sentinel.ErrConflict and
	// nothing is written. This is the at-most-one-winner guarantee the
	// state machine depends on.
	AppendAfter(ctx context.Context, event models.Event, afterID *int64) (*models.Event, error)

	// Query returns the user's events with occurred_at in [from, to]
	// inclusive, ascending by (occurred_at, id).
	Query(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error)

	// ListRecent returns the user's most recent events, newest first.
	ListRecent(ctx context.Context, userID string, limit int) ([]models.Event, error)
}
