package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/booking-server/internal/persistence"
)

var (
	userCounter     uint64
	calendarCounter uint64
	timeSlotCounter uint64
	bookingCounter  uint64
)

var referenceTime = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It falls on a Monday so weekday assertions stay readable.
func ReferenceTime() time.Time {
	return referenceTime
}

// UserOption configures a generated user fixture.
type UserOption func(*persistence.User)

// NewUserFixture returns a deterministic user record with optional overrides.
// The identity field is left unset so storage can assign it.
func NewUserFixture(opts ...UserOption) persistence.User {
	idx := atomic.AddUint64(&userCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	user := persistence.User{
		Username:     fmt.Sprintf("user%03d", idx),
		Email:        fmt.Sprintf("user%03d@example.com", idx),
		DisplayName:  fmt.Sprintf("User %03d", idx),
		IsHost:       false,
		PasswordHash: fmt.Sprintf("$argon2id$test-hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithUsername overrides the generated username.
func WithUsername(username string) UserOption {
	return func(u *persistence.User) {
		u.Username = username
	}
}

// WithEmail overrides the generated email address.
func WithEmail(email string) UserOption {
	return func(u *persistence.User) {
		u.Email = email
	}
}

// WithHost marks the generated user as a host.
func WithHost() UserOption {
	return func(u *persistence.User) {
		u.IsHost = true
	}
}

// WithPasswordHash overrides the generated credential hash.
func WithPasswordHash(hash string) UserOption {
	return func(u *persistence.User) {
		u.PasswordHash = hash
	}
}

// CalendarOption configures a generated calendar fixture.
type CalendarOption func(*persistence.Calendar)

// NewCalendarFixture returns a deterministic calendar record for the given
// host.
func NewCalendarFixture(hostID int64, opts ...CalendarOption) persistence.Calendar {
	idx := atomic.AddUint64(&calendarCounter, 1)
	calendar := persistence.Calendar{
		HostID:      hostID,
		Topics:      []string{fmt.Sprintf("topic-%03d", idx)},
		Description: fmt.Sprintf("Calendar %03d", idx),
	}
	for _, opt := range opts {
		opt(&calendar)
	}
	return calendar
}

// WithTopics overrides the generated topic list.
func WithTopics(topics ...string) CalendarOption {
	return func(c *persistence.Calendar) {
		c.Topics = topics
	}
}

// WithDescription overrides the generated description.
func WithDescription(description string) CalendarOption {
	return func(c *persistence.Calendar) {
		c.Description = description
	}
}

// WithGoogleCalendarID sets the external calendar reference.
func WithGoogleCalendarID(id string) CalendarOption {
	return func(c *persistence.Calendar) {
		c.GoogleCalendarID = id
	}
}

// TimeSlotOption configures a generated time slot fixture.
type TimeSlotOption func(*persistence.TimeSlot)

// NewTimeSlotFixture returns a deterministic availability window under the
// given calendar. Successive fixtures shift by an hour so ordering tests get
// distinct start times.
func NewTimeSlotFixture(calendarID int64, opts ...TimeSlotOption) persistence.TimeSlot {
	idx := atomic.AddUint64(&timeSlotCounter, 1)
	start := 9*60 + int(idx%8)*60
	slot := persistence.TimeSlot{
		CalendarID:  calendarID,
		StartMinute: start,
		EndMinute:   start + 60,
		Weekdays:    []int{0, 2, 4},
	}
	for _, opt := range opts {
		opt(&slot)
	}
	return slot
}

// WithWindow overrides the start and end minutes.
func WithWindow(startMinute, endMinute int) TimeSlotOption {
	return func(s *persistence.TimeSlot) {
		s.StartMinute = startMinute
		s.EndMinute = endMinute
	}
}

// WithWeekdays overrides the weekday set.
func WithWeekdays(weekdays ...int) TimeSlotOption {
	return func(s *persistence.TimeSlot) {
		s.Weekdays = weekdays
	}
}

// BookingOption configures a generated booking fixture.
type BookingOption func(*persistence.Booking)

// NewBookingFixture returns a deterministic booking of the given slot by the
// given guest. Successive fixtures land on consecutive weeks of the same
// weekday as ReferenceTime.
func NewBookingFixture(timeSlotID, guestID int64, opts ...BookingOption) persistence.Booking {
	idx := atomic.AddUint64(&bookingCounter, 1)
	booking := persistence.Booking{
		TimeSlotID: timeSlotID,
		GuestID:    guestID,
		BookedOn:   referenceTime.Truncate(24 * time.Hour).AddDate(0, 0, int(idx)*7),
		Topic:      fmt.Sprintf("Topic %03d", idx),
	}
	for _, opt := range opts {
		opt(&booking)
	}
	return booking
}

// WithBookedOn overrides the booking date.
func WithBookedOn(date time.Time) BookingOption {
	return func(b *persistence.Booking) {
		b.BookedOn = date
	}
}

// WithTopic overrides the booking topic.
func WithTopic(topic string) BookingOption {
	return func(b *persistence.Booking) {
		b.Topic = topic
	}
}
