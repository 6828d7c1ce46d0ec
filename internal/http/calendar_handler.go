package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/booking-server/internal/application"
)

type calendarService interface {
	CreateCalendar(ctx context.Context, principal application.Principal, input application.CalendarInput) (application.Calendar, error)
	CalendarByHost(ctx context.Context, hostID int64) (application.Calendar, error)
	UpdateCalendar(ctx context.Context, principal application.Principal, input application.CalendarInput) (application.Calendar, error)
}

type CalendarHandler struct {
	service   calendarService
	responder responder
	logger    *slog.Logger
}

func NewCalendarHandler(service calendarService, logger *slog.Logger) *CalendarHandler {
	base := defaultLogger(logger)
	return &CalendarHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CalendarHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CalendarHandler", operation, attrs...)
}

func (h *CalendarHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingAuthToken)
		return
	}

	var req calendarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode calendar request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "host_id", principal.UserID)

	calendar, err := h.service.CreateCalendar(r.Context(), principal, application.CalendarInput{
		Topics:           req.Topics,
		Description:      req.Description,
		GoogleCalendarID: req.GoogleCalendarID,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "calendar creation rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("calendar_id", calendar.ID).InfoContext(r.Context(), "calendar created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toCalendarDTO(calendar))
}

func (h *CalendarHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingAuthToken)
		return
	}

	calendar, err := h.service.CalendarByHost(r.Context(), principal.UserID)
	if err != nil {
		h.log(r.Context(), "GetMine", "host_id", principal.UserID).ErrorContext(r.Context(), "calendar lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCalendarDTO(calendar))
}

func (h *CalendarHandler) UpdateMine(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingAuthToken)
		return
	}

	var req calendarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateMine", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode calendar request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateMine", "host_id", principal.UserID)

	calendar, err := h.service.UpdateCalendar(r.Context(), principal, application.CalendarInput{
		Topics:           req.Topics,
		Description:      req.Description,
		GoogleCalendarID: req.GoogleCalendarID,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "calendar update rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("calendar_id", calendar.ID).InfoContext(r.Context(), "calendar updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCalendarDTO(calendar))
}

type calendarRequest struct {
	Topics           []string `json:"topics"`
	Description      string   `json:"description"`
	GoogleCalendarID string   `json:"google_calendar_id"`
}

type calendarDTO struct {
	ID               int64    `json:"id"`
	HostID           int64    `json:"host_id"`
	Topics           []string `json:"topics"`
	Description      string   `json:"description"`
	GoogleCalendarID string   `json:"google_calendar_id,omitempty"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

func toCalendarDTO(calendar application.Calendar) calendarDTO {
	topics := calendar.Topics
	if topics == nil {
		topics = []string{}
	}
	return calendarDTO{
		ID:               calendar.ID,
		HostID:           calendar.HostID,
		Topics:           topics,
		Description:      calendar.Description,
		GoogleCalendarID: calendar.GoogleCalendarID,
		CreatedAt:        calendar.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:        calendar.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
