package persistence

import "time"

// User represents an account record. Identity fields are unique across all
// users; IsHost marks accounts permitted to own a calendar.
type User struct {
	ID           int64
	Username     string
	Email        string
	DisplayName  string
	IsHost       bool
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Calendar represents a host's calendar. HostID carries a uniqueness
// constraint: a host owns at most one calendar.
type Calendar struct {
	ID               int64
	HostID           int64
	Topics           []string
	Description      string
	GoogleCalendarID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TimeSlot represents a recurring weekly availability window under a
// calendar. StartMinute and EndMinute are minutes since midnight;
// Weekdays uses Monday=0 .. Sunday=6 numbering.
type TimeSlot struct {
	ID          int64
	CalendarID  int64
	StartMinute int
	EndMinute   int
	Weekdays    []int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Booking represents a guest's reservation of a time slot on a concrete
// date. BookedOn is a calendar date stored at UTC midnight; the pair
// (TimeSlotID, BookedOn) is unique.
type Booking struct {
	ID          int64
	TimeSlotID  int64
	GuestID     int64
	BookedOn    time.Time
	Topic       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
