// Package notifier fans recorded attendance events out to the chat surface.
// The core only knows the Publisher port; rendering, buttons, and platform
// transport live entirely on the consuming side.
package notifier

import (
	"context"

	"github.com/MatheusPlinio/DotWysion/internal/attendance/models"
)

// Publisher receives every accepted event after it has been committed to the
// store. Implementations must not block the punch path for long; failures
// are logged by the caller and never undo the write.
type Publisher interface {
	Publish(ctx context.Context, event models.Event) error
}

// Noop discards events. Used when no chat surface is configured.
type Noop struct{}

func (Noop) Publish(context.Context, models.Event) error { return nil }
