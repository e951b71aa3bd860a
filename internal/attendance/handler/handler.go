// Package handler is the thin HTTP presentation layer over the attendance
// service. It owns request decoding and response shaping only; every
// legality decision stays in the service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MatheusPlinio/DotWysion/internal/attendance/ledger"
	"github.com/MatheusPlinio/DotWysion/internal/attendance/metrics"
	"github.com/MatheusPlinio/DotWysion/internal/attendance/models"
	"github.com/MatheusPlinio/DotWysion/internal/attendance/service"
	"github.com/MatheusPlinio/DotWysion/internal/platform/middleware"
	dErrors "github.com/MatheusPlinio/DotWysion/pkg/domain-errors"
	"github.com/MatheusPlinio/DotWysion/pkg/platform/httputil"
	"github.com/MatheusPlinio/DotWysion/pkg/requestcontext"
)

// Service is the attendance surface the handler needs.
type Service interface {
	RecordEvent(ctx context.Context, userID, userName string, kind models.Kind, occurredAt time.Time, note string) (*models.Event, error)
	Status(ctx context.Context, userID string) (*service.Status, error)
	Report(ctx context.Context, userID string, from, to time.Time) (ledger.Summary, error)
	TeamReport(ctx context.Context, userIDs []string, from, to time.Time) (map[string]ledger.Summary, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]models.Event, error)
}

type Handler struct {
	logger       *slog.Logger
	attendance   Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

func New(attendance Service, logger *slog.Logger, m *metrics.Metrics, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		attendance:   attendance,
		metrics:      m,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the attendance routes with the shared middleware chain.
func (h *Handler) Register(r chi.Router, requestTimeout time.Duration) {
	ar := chi.NewRouter()
	ar.Use(middleware.Recovery(h.logger))
	ar.Use(middleware.RequestID)
	ar.Use(middleware.RequestTime)
	ar.Use(middleware.Logger(h.logger))
	ar.Use(middleware.Timeout(requestTimeout))
	ar.Use(middleware.ContentTypeJSON)
	ar.Use(middleware.Latency(h.metrics))
	ar.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

	ar.Post("/attendance/events", h.handleRecordEvent)
	ar.Get("/attendance/events", h.handleListEvents)
	ar.Get("/attendance/status", h.handleStatus)
	ar.Get("/attendance/report", h.handleReport)
	ar.Get("/attendance/report/team", h.handleTeamReport)

	r.Mount("/", ar)
}

type recordEventRequest struct {
	Kind string `json:"kind"`
	Note string `json:"note,omitempty"`
}

func (h *Handler) handleRecordEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID == "" {
		// Should never happen behind RequireAuth.
		h.logger.ErrorContext(ctx, "user id missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req recordEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	kind, err := models.ParseKind(req.Kind)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	event, err := h.attendance.RecordEvent(ctx, userID, requestcontext.UserName(ctx), kind, requestcontext.Now(ctx), req.Note)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidTransition) || dErrors.HasCode(err, dErrors.CodeBadRequest) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to record event",
			"request_id", requestcontext.RequestID(ctx),
			"kind", kind.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to record event"))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, event)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status, err := h.attendance.Status(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to derive status")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = n
	}

	events, err := h.attendance.ListRecent(ctx, requestcontext.UserID(ctx), limit)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to list events")
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

type reportResponse struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Worked string    `json:"worked"`
	Breaks string    `json:"breaks"`
	Net    string    `json:"net"`
}

func newReportResponse(s ledger.Summary, from, to time.Time) reportResponse {
	return reportResponse{
		From:   from,
		To:     to,
		Worked: s.Worked.String(),
		Breaks: s.Breaks.String(),
		Net:    s.Net().String(),
	}
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	from, to, err := parseWindow(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	summary, err := h.attendance.Report(ctx, requestcontext.UserID(ctx), from, to)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to generate report")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newReportResponse(summary, from, to))
}

func (h *Handler) handleTeamReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	from, to, err := parseWindow(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	userIDs := r.URL.Query()["user_id"]

	summaries, err := h.attendance.TeamReport(ctx, userIDs, from, to)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to generate team report")
		return
	}

	out := make(map[string]reportResponse, len(summaries))
	for userID, summary := range summaries {
		out[userID] = newReportResponse(summary, from, to)
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"reports": out})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if code := dErrors.CodeOf(err); code != dErrors.CodeInternal {
		httputil.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(r.Context(), msg,
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err.Error(),
	)
	httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, msg))
}

// parseWindow accepts RFC 3339 timestamps or plain dates. A date-only "to"
// bound covers that entire day.
func parseWindow(fromRaw, toRaw string) (time.Time, time.Time, error) {
	if fromRaw == "" || toRaw == "" {
		return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeBadRequest, "from and to are required")
	}

	from, _, err := parseBound(fromRaw)
	if err != nil {
		return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeBadRequest, "invalid from bound: "+fromRaw)
	}
	to, dateOnly, err := parseBound(toRaw)
	if err != nil {
		return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeBadRequest, "invalid to bound: "+toRaw)
	}
	if dateOnly {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, dErrors.New(dErrors.CodeBadRequest, "report window end precedes start")
	}
	return from, to, nil
}

func parseBound(raw string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), false, nil
	}
	if t, err = time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), true, nil
	}
	return time.Time{}, false, err
}
