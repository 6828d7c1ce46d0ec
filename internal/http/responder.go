package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/booking-server/internal/application"
)

var (
	errBadRequestBody   = errors.New("the request body is malformed")
	errInvalidID        = errors.New("the identifier in the path is invalid")
	errInvalidMonthArgs = errors.New("year and month query parameters must be valid integers")
	errMissingAuthToken = errors.New("an access token is required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError translates application errors into HTTP responses.
//
// Duplicate identity errors report 422 rather than 409; clients treat them
// as corrections to the submitted form, not as state conflicts.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID_CREDENTIALS",
			Message:   "The username or password is incorrect.",
		})
	case errors.Is(err, application.ErrTokenExpired):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_TOKEN_EXPIRED",
			Message:   "The access token has expired. Please log in again.",
		})
	case errors.Is(err, application.ErrInvalidToken):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_TOKEN_INVALID",
			Message:   "The access token is invalid. Please log in again.",
		})
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "You do not have permission to perform this operation.",
		})
	case errors.Is(err, application.ErrSlotNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "The requested time slot was not found."})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "The requested resource was not found."})
	case errors.Is(err, application.ErrSlotAlreadyBooked):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "The time slot is already booked on that date."})
	case errors.Is(err, application.ErrCalendarExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "A calendar already exists for this host."})
	case errors.Is(err, application.ErrDuplicateUsername):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{Message: "The username is already taken."})
	case errors.Is(err, application.ErrDuplicateEmail):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{Message: "The email address is already registered."})
	case errors.Is(err, application.ErrInvalidRange):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{Message: "The start time must be before the end time."})
	case errors.Is(err, application.ErrInvalidWeekday):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{Message: "Weekdays must be between 0 (Monday) and 6 (Sunday)."})
	case errors.Is(err, application.ErrWeekdayNotBookable):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{Message: "The time slot is not available on that weekday."})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "The submitted input is invalid.",
				Errors:  vErr.FieldErrors,
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "An internal server error occurred."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "The request is malformed."
	case http.StatusUnauthorized:
		return "Authentication is required."
	case http.StatusForbidden:
		return "You do not have permission to perform this operation."
	case http.StatusNotFound:
		return "The requested resource was not found."
	case http.StatusConflict:
		return "The request conflicts with the current state of the resource."
	case http.StatusUnprocessableEntity:
		return "The submitted input is invalid."
	default:
		return "An internal server error occurred."
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
