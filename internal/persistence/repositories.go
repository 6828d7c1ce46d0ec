package persistence

import (
	"context"
	"time"
)

// UserRepository exposes CRUD operations for user accounts.
//
// Create methods return the stored record with its assigned identity and
// server-set timestamps.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	CountUsersByUsername(ctx context.Context, username string) (int, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// CalendarRepository exposes CRUD operations for host calendars.
type CalendarRepository interface {
	CreateCalendar(ctx context.Context, calendar Calendar) (Calendar, error)
	GetCalendar(ctx context.Context, id int64) (Calendar, error)
	GetCalendarByHost(ctx context.Context, hostID int64) (Calendar, error)
	UpdateCalendar(ctx context.Context, calendar Calendar) (Calendar, error)
	DeleteCalendar(ctx context.Context, id int64) error
}

// TimeSlotRepository stores recurring availability windows.
type TimeSlotRepository interface {
	CreateTimeSlot(ctx context.Context, slot TimeSlot) (TimeSlot, error)
	GetTimeSlot(ctx context.Context, id int64) (TimeSlot, error)
	ListTimeSlotsForCalendar(ctx context.Context, calendarID int64) ([]TimeSlot, error)
	UpdateTimeSlot(ctx context.Context, slot TimeSlot) (TimeSlot, error)
	DeleteTimeSlot(ctx context.Context, id int64) error
}

// BookingRepository stores guest reservations against time slots.
type BookingRepository interface {
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	GetBooking(ctx context.Context, id int64) (Booking, error)
	ListBookingsForGuest(ctx context.Context, guestID int64) ([]Booking, error)
	ListBookingsForTimeSlot(ctx context.Context, timeSlotID int64) ([]Booking, error)
	CountBookingsForSlotOn(ctx context.Context, timeSlotID int64, bookedOn time.Time) (int, error)
	DeleteBooking(ctx context.Context, id int64) error
}
