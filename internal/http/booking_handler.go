package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/booking-server/internal/application"
	"github.com/example/booking-server/internal/calendargrid"
)

type bookingService interface {
	CreateTimeSlot(ctx context.Context, principal application.Principal, calendarID int64, input application.TimeSlotInput) (application.TimeSlot, error)
	TimeSlotsForCalendar(ctx context.Context, calendarID int64) ([]application.TimeSlot, error)
	ListBookableDays(ctx context.Context, calendarID int64, year, month int) ([]application.BookableDay, error)
	CreateBooking(ctx context.Context, principal application.Principal, slotID int64, input application.BookingInput) (application.Booking, error)
	BookingsForGuest(ctx context.Context, principal application.Principal) ([]application.Booking, error)
	CancelBooking(ctx context.Context, principal application.Principal, bookingID int64) error
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) CreateTimeSlot(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingAuthToken)
		return
	}

	calendarID, err := pathID(r, "calendarID")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req timeSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateTimeSlot", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode time slot request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, err)
		return
	}

	logger := h.log(r.Context(), "CreateTimeSlot", "calendar_id", calendarID)

	slot, err := h.service.CreateTimeSlot(r.Context(), principal, calendarID, input)
	if err != nil {
		logger.ErrorContext(r.Context(), "time slot creation rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("time_slot_id", slot.ID).InfoContext(r.Context(), "time slot created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toTimeSlotDTO(slot))
}

func (h *BookingHandler) ListTimeSlots(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	calendarID, err := pathID(r, "calendarID")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	slots, err := h.service.TimeSlotsForCalendar(r.Context(), calendarID)
	if err != nil {
		h.log(r.Context(), "ListTimeSlots", "calendar_id", calendarID).ErrorContext(r.Context(), "time slot listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]timeSlotDTO, 0, len(slots))
	for _, slot := range slots {
		payload = append(payload, toTimeSlotDTO(slot))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

func (h *BookingHandler) ListBookableDays(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	calendarID, err := pathID(r, "calendarID")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMonthArgs)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMonthArgs)
		return
	}

	days, err := h.service.ListBookableDays(r.Context(), calendarID, year, month)
	if err != nil {
		if errors.Is(err, calendargrid.ErrInvalidMonth) {
			h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, err)
			return
		}
		h.log(r.Context(), "ListBookableDays", "calendar_id", calendarID).ErrorContext(r.Context(), "bookable day listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]bookableDayDTO, 0, len(days))
	for _, day := range days {
		payload = append(payload, bookableDayDTO{Day: day.Day, SlotIDs: day.SlotIDs})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookableDaysResponse{
		Year:  year,
		Month: month,
		Days:  payload,
	})
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingAuthToken)
		return
	}

	slotID, err := pathID(r, "slotID")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateBooking", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	when, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), time.UTC)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusUnprocessableEntity, fmt.Errorf("date must use the YYYY-MM-DD format"))
		return
	}

	logger := h.log(r.Context(), "CreateBooking", "time_slot_id", slotID, "guest_id", principal.UserID)

	booking, err := h.service.CreateBooking(r.Context(), principal, slotID, application.BookingInput{
		When:        when,
		Topic:       req.Topic,
		Description: req.Description,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toBookingDTO(booking))
}

func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingAuthToken)
		return
	}

	bookings, err := h.service.BookingsForGuest(r.Context(), principal)
	if err != nil {
		h.log(r.Context(), "ListBookings", "guest_id", principal.UserID).ErrorContext(r.Context(), "booking listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]bookingDTO, 0, len(bookings))
	for _, booking := range bookings {
		payload = append(payload, toBookingDTO(booking))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingAuthToken)
		return
	}

	bookingID, err := pathID(r, "bookingID")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	logger := h.log(r.Context(), "CancelBooking", "booking_id", bookingID, "guest_id", principal.UserID)

	if err := h.service.CancelBooking(r.Context(), principal, bookingID); err != nil {
		logger.ErrorContext(r.Context(), "booking cancellation rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type timeSlotRequest struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Weekdays []int  `json:"weekdays"`
}

func (req timeSlotRequest) toInput() (application.TimeSlotInput, error) {
	start, err := parseClock(req.Start)
	if err != nil {
		return application.TimeSlotInput{}, fmt.Errorf("start must use the HH:MM format")
	}
	end, err := parseClock(req.End)
	if err != nil {
		return application.TimeSlotInput{}, fmt.Errorf("end must use the HH:MM format")
	}
	return application.TimeSlotInput{StartMinute: start, EndMinute: end, Weekdays: req.Weekdays}, nil
}

type timeSlotDTO struct {
	ID         int64  `json:"id"`
	CalendarID int64  `json:"calendar_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Weekdays   []int  `json:"weekdays"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toTimeSlotDTO(slot application.TimeSlot) timeSlotDTO {
	weekdays := slot.Weekdays
	if weekdays == nil {
		weekdays = []int{}
	}
	return timeSlotDTO{
		ID:         slot.ID,
		CalendarID: slot.CalendarID,
		Start:      formatClock(slot.StartMinute),
		End:        formatClock(slot.EndMinute),
		Weekdays:   weekdays,
		CreatedAt:  slot.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  slot.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type bookingRequest struct {
	Date        string `json:"date"`
	Topic       string `json:"topic"`
	Description string `json:"description"`
}

type bookingDTO struct {
	ID          int64  `json:"id"`
	TimeSlotID  int64  `json:"time_slot_id"`
	GuestID     int64  `json:"guest_id"`
	Date        string `json:"date"`
	Topic       string `json:"topic"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toBookingDTO(booking application.Booking) bookingDTO {
	return bookingDTO{
		ID:          booking.ID,
		TimeSlotID:  booking.TimeSlotID,
		GuestID:     booking.GuestID,
		Date:        booking.When.UTC().Format("2006-01-02"),
		Topic:       booking.Topic,
		Description: booking.Description,
		CreatedAt:   booking.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   booking.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type bookableDayDTO struct {
	Day     int     `json:"day"`
	SlotIDs []int64 `json:"slot_ids"`
}

type bookableDaysResponse struct {
	Year  int              `json:"year"`
	Month int              `json:"month"`
	Days  []bookableDayDTO `json:"days"`
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return 0, errInvalidID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// parseClock converts an HH:MM wall clock value to minutes since midnight.
// "24:00" is accepted as the end-of-day boundary.
func parseClock(value string) (int, error) {
	value = strings.TrimSpace(value)
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	if minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	if hour < 0 || hour > 24 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	return hour*60 + minute, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
