// Package service orchestrates the attendance state machine: it is the single
// authority on whether a punch is legal, and it owns the read-validate-append
// sequence against the record store.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MatheusPlinio/DotWysion/internal/attendance/ledger"
	"github.com/MatheusPlinio/DotWysion/internal/attendance/metrics"
	"github.com/MatheusPlinio/DotWysion/internal/attendance/models"
	"github.com/MatheusPlinio/DotWysion/internal/attendance/store"
	"github.com/MatheusPlinio/DotWysion/internal/notifier"
	dErrors "github.com/MatheusPlinio/DotWysion/pkg/domain-errors"
	"github.com/MatheusPlinio/DotWysion/pkg/platform/sentinel"
	"github.com/MatheusPlinio/DotWysion/pkg/requestcontext"
)

// ListRecentDefault and ListRecentMax bound the recent-events listing.
const (
	ListRecentDefault = 10
	ListRecentMax     = 100
)

// Service wires the store, metrics, and notification fan-out behind the
// attendance operations. It holds no state of its own: the user's current
// state is always recomputed from the store's latest record so the service
// stays correct across restarts and multiple instances.
type Service struct {
	store     store.Store
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher notifier.Publisher
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPublisher(p notifier.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func New(st store.Store, logger *slog.Logger, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("attendance store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{store: st, logger: logger, publisher: notifier.Noop{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Status is the derived view of a user's ledger position, recomputed from
// the latest event on every call.
type Status struct {
	State       models.State  `json:"state"`
	AllowedNext []models.Kind `json:"allowed_next"`
	Latest      *models.Event `json:"latest,omitempty"`
}

// Status derives the user's current state and the punches legal from it.
// The presentation layer renders its offered actions from this; it must not
// cache or duplicate the decision.
func (s *Service) Status(ctx context.Context, userID string) (*Status, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user id is required")
	}
	latest, err := s.store.GetLatest(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read latest event")
	}
	var latestKind *models.Kind
	if latest != nil {
		latestKind = &latest.Kind
	}
	return &Status{
		State:       models.StateOf(latestKind),
		AllowedNext: models.AllowedNext(latestKind),
		Latest:      latest,
	}, nil
}

// RecordEvent validates the requested punch against the user's latest event
// and appends it. The append is conditional on the latest event the
// validation saw, so two racing punches cannot both pass a stale check: the
// loser's conditional append fails and is re-evaluated against the fresh
// latest event, which by construction refuses it.
func (s *Service) RecordEvent(ctx context.Context, userID, userName string, kind models.Kind, occurredAt time.Time, note string) (*models.Event, error) {
	event := models.Event{
		UserID:     userID,
		UserName:   userName,
		Kind:       kind,
		OccurredAt: occurredAt.UTC(),
		Note:       note,
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}

	latest, err := s.store.GetLatest(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read latest event")
	}

	latestKind, afterID := kindAndID(latest)
	if !kind.CanFollow(latestKind) {
		s.metrics.IncTransitionRejected(kind.String())
		return nil, models.Reject(latestKind, kind)
	}

	recorded, err := s.store.AppendAfter(ctx, event, afterID)
	if errors.Is(err, sentinel.ErrConflict) {
		// A concurrent punch won the race. Refuse against the event that
		// actually landed; the caller sees the same rejection it would have
		// seen arriving a moment later.
		fresh, ferr := s.store.GetLatest(ctx, userID)
		if ferr != nil {
			return nil, dErrors.Wrap(ferr, dErrors.CodeInternal, "failed to read latest event")
		}
		freshKind, _ := kindAndID(fresh)
		s.metrics.IncTransitionRejected(kind.String())
		return nil, models.Reject(freshKind, kind)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append event")
	}

	s.metrics.IncEventRecorded(kind.String())
	s.notify(ctx, *recorded)
	return recorded, nil
}

// Report aggregates the user's ledger over [from, to] inclusive.
func (s *Service) Report(ctx context.Context, userID string, from, to time.Time) (ledger.Summary, error) {
	if userID == "" {
		return ledger.Summary{}, dErrors.New(dErrors.CodeBadRequest, "user id is required")
	}
	if err := validateWindow(from, to); err != nil {
		return ledger.Summary{}, err
	}

	events, err := s.store.Query(ctx, userID, from, to)
	if err != nil {
		return ledger.Summary{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query events")
	}

	s.metrics.IncReportGenerated()
	return ledger.Aggregate(events, from, to), nil
}

// ListRecent returns the user's latest punches, newest first.
func (s *Service) ListRecent(ctx context.Context, userID string, limit int) ([]models.Event, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user id is required")
	}
	if limit <= 0 {
		limit = ListRecentDefault
	}
	if limit > ListRecentMax {
		limit = ListRecentMax
	}
	events, err := s.store.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}
	return events, nil
}

func (s *Service) notify(ctx context.Context, event models.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		// The event is already committed; notification loss is the chat
		// surface's problem, not the ledger's.
		s.logger.WarnContext(ctx, "failed to publish recorded event",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", event.UserID,
			"kind", event.Kind.String(),
			"error", err.Error(),
		)
	}
}

func kindAndID(latest *models.Event) (*models.Kind, *int64) {
	if latest == nil {
		return nil, nil
	}
	return &latest.Kind, &latest.ID
}

func validateWindow(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "report window bounds are required")
	}
	if to.Before(from) {
		return dErrors.New(dErrors.CodeBadRequest, "report window end precedes start")
	}
	return nil
}
