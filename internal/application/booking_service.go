package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/booking-server/internal/calendargrid"
	"github.com/example/booking-server/internal/persistence"
)

const minutesPerDay = 24 * 60

// BookingService manages time slots, bookable-day queries, and guest
// bookings.
type BookingService struct {
	calendars persistence.CalendarRepository
	slots     persistence.TimeSlotRepository
	bookings  persistence.BookingRepository
	logger    *slog.Logger
}

func NewBookingService(calendars persistence.CalendarRepository, slots persistence.TimeSlotRepository, bookings persistence.BookingRepository, logger *slog.Logger) *BookingService {
	return &BookingService{
		calendars: calendars,
		slots:     slots,
		bookings:  bookings,
		logger:    defaultLogger(logger),
	}
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// CreateTimeSlot adds a recurring availability window to the host's
// calendar. Weekdays are deduplicated and stored sorted.
func (s *BookingService) CreateTimeSlot(ctx context.Context, principal Principal, calendarID int64, input TimeSlotInput) (slot TimeSlot, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.calendars == nil || s.slots == nil {
		err = fmt.Errorf("repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateTimeSlot", "calendar_id", calendarID, "host_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "time slot creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("time_slot_id", slot.ID).InfoContext(ctx, "time slot created")
	}()

	calendar, err := s.calendars.GetCalendar(ctx, calendarID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrNotFound
		}
		return
	}
	if calendar.HostID != principal.UserID {
		err = ErrUnauthorized
		return
	}

	if input.StartMinute < 0 || input.EndMinute > minutesPerDay || input.StartMinute >= input.EndMinute {
		err = ErrInvalidRange
		return
	}

	weekdays, err := normalizeWeekdays(input.Weekdays)
	if err != nil {
		return
	}

	persisted, err := s.slots.CreateTimeSlot(ctx, persistence.TimeSlot{
		CalendarID:  calendarID,
		StartMinute: input.StartMinute,
		EndMinute:   input.EndMinute,
		Weekdays:    weekdays,
	})
	if err != nil {
		return
	}

	slot = toTimeSlot(persisted)
	return
}

// TimeSlotsForCalendar lists the calendar's availability windows ordered
// by start time.
func (s *BookingService) TimeSlotsForCalendar(ctx context.Context, calendarID int64) ([]TimeSlot, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	if s.calendars == nil || s.slots == nil {
		return nil, fmt.Errorf("repositories not configured")
	}

	if _, err := s.calendars.GetCalendar(ctx, calendarID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	persisted, err := s.slots.ListTimeSlotsForCalendar(ctx, calendarID)
	if err != nil {
		return nil, err
	}

	slots := make([]TimeSlot, 0, len(persisted))
	for _, slot := range persisted {
		slots = append(slots, toTimeSlot(slot))
	}
	return slots, nil
}

// CreateBooking reserves a time slot on a concrete date for the
// authenticated guest.
//
// The availability count is an optimistic pre-check for a precise error;
// the unique constraint on (slot, date) remains authoritative, so two
// racing guests cannot both win.
func (s *BookingService) CreateBooking(ctx context.Context, principal Principal, slotID int64, input BookingInput) (booking Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.slots == nil || s.bookings == nil {
		err = fmt.Errorf("repositories not configured")
		return
	}

	when := truncateToDate(input.When)

	logger := s.loggerWith(ctx, "CreateBooking", "time_slot_id", slotID, "guest_id", principal.UserID, "booked_on", when.Format("2006-01-02"))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("booking_id", booking.ID).InfoContext(ctx, "booking created")
	}()

	slot, err := s.slots.GetTimeSlot(ctx, slotID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrSlotNotFound
		}
		return
	}

	if !slotCoversWeekday(slot, calendargrid.FromTimeWeekday(when.Weekday())) {
		err = ErrWeekdayNotBookable
		return
	}

	count, err := s.bookings.CountBookingsForSlotOn(ctx, slotID, when)
	if err != nil {
		return
	}
	if count > 0 {
		err = ErrSlotAlreadyBooked
		return
	}

	persisted, err := s.bookings.CreateBooking(ctx, persistence.Booking{
		TimeSlotID:  slotID,
		GuestID:     principal.UserID,
		BookedOn:    when,
		Topic:       strings.TrimSpace(input.Topic),
		Description: strings.TrimSpace(input.Description),
	})
	if err != nil {
		switch {
		case errors.Is(err, persistence.ErrDuplicate):
			err = ErrSlotAlreadyBooked
		case errors.Is(err, persistence.ErrForeignKeyViolation):
			err = ErrNotFound
		}
		return
	}

	booking = toBooking(persisted)
	return
}

// ListBookableDays reports every day of the month with the time slots
// whose weekday sets cover it. Grid padding cells are dropped; days with
// no eligible slots still appear.
func (s *BookingService) ListBookableDays(ctx context.Context, calendarID int64, year, month int) ([]BookableDay, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	if s.calendars == nil || s.slots == nil {
		return nil, fmt.Errorf("repositories not configured")
	}

	if _, err := s.calendars.GetCalendar(ctx, calendarID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	grid, err := calendargrid.MonthGrid(year, month)
	if err != nil {
		return nil, err
	}

	slots, err := s.slots.ListTimeSlotsForCalendar(ctx, calendarID)
	if err != nil {
		return nil, err
	}

	days := make([]BookableDay, 0, len(grid))
	for _, day := range grid {
		if day == calendargrid.EmptyCell {
			continue
		}
		entry := BookableDay{Day: day, SlotIDs: []int64{}}
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		weekday := calendargrid.FromTimeWeekday(date.Weekday())
		for _, slot := range slots {
			if slotCoversWeekday(slot, weekday) {
				entry.SlotIDs = append(entry.SlotIDs, slot.ID)
			}
		}
		days = append(days, entry)
	}
	return days, nil
}

// BookingsForGuest lists the guest's bookings ordered by date.
func (s *BookingService) BookingsForGuest(ctx context.Context, principal Principal) ([]Booking, error) {
	if s == nil {
		return nil, fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return nil, fmt.Errorf("repositories not configured")
	}

	persisted, err := s.bookings.ListBookingsForGuest(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	bookings := make([]Booking, 0, len(persisted))
	for _, booking := range persisted {
		bookings = append(bookings, toBooking(booking))
	}
	return bookings, nil
}

// CancelBooking deletes a booking owned by the authenticated guest.
func (s *BookingService) CancelBooking(ctx context.Context, principal Principal, bookingID int64) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}
	if s.bookings == nil {
		return fmt.Errorf("repositories not configured")
	}

	logger := s.loggerWith(ctx, "CancelBooking", "booking_id", bookingID, "guest_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "booking cancellation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking cancelled")
	}()

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrNotFound
		}
		return
	}
	if booking.GuestID != principal.UserID {
		err = ErrUnauthorized
		return
	}

	if err = s.bookings.DeleteBooking(ctx, bookingID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrNotFound
		}
		return
	}
	return
}

func normalizeWeekdays(weekdays []int) ([]int, error) {
	seen := make(map[int]bool, len(weekdays))
	normalized := make([]int, 0, len(weekdays))
	for _, day := range weekdays {
		if day < 0 || day > 6 {
			return nil, ErrInvalidWeekday
		}
		if seen[day] {
			continue
		}
		seen[day] = true
		normalized = append(normalized, day)
	}
	sort.Ints(normalized)
	return normalized, nil
}

func slotCoversWeekday(slot persistence.TimeSlot, weekday int) bool {
	for _, day := range slot.Weekdays {
		if day == weekday {
			return true
		}
	}
	return false
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func toTimeSlot(model persistence.TimeSlot) TimeSlot {
	return TimeSlot{
		ID:          model.ID,
		CalendarID:  model.CalendarID,
		StartMinute: model.StartMinute,
		EndMinute:   model.EndMinute,
		Weekdays:    model.Weekdays,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toBooking(model persistence.Booking) Booking {
	return Booking{
		ID:          model.ID,
		TimeSlotID:  model.TimeSlotID,
		GuestID:     model.GuestID,
		When:        model.BookedOn,
		Topic:       model.Topic,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
