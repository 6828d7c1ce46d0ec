package application

import "time"

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID int64
	IsHost bool
}

// User represents an account exposed by the application services. The
// credential hash never leaves the service layer.
type User struct {
	ID          int64
	Username    string
	Email       string
	DisplayName string
	IsHost      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SignupInput captures caller provided signup fields. DisplayName may be
// empty, in which case a random 8-character name is assigned.
type SignupInput struct {
	Username    string
	Email       string
	DisplayName string
	Password    string
	IsHost      bool
}

// LoginParams captures the data required to authenticate a user.
type LoginParams struct {
	Username string
	Password string
}

// LoginResult captures the outcome of a successful login.
type LoginResult struct {
	User        User
	AccessToken string
	ExpiresAt   time.Time
}

// Calendar represents a host's calendar.
type Calendar struct {
	ID               int64
	HostID           int64
	Topics           []string
	Description      string
	GoogleCalendarID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CalendarInput captures caller provided calendar fields.
type CalendarInput struct {
	Topics           []string
	Description      string
	GoogleCalendarID string
}

// TimeSlot represents a recurring weekly availability window.
type TimeSlot struct {
	ID          int64
	CalendarID  int64
	StartMinute int
	EndMinute   int
	Weekdays    []int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TimeSlotInput captures caller provided time slot fields. Minutes count
// from midnight; weekdays use Monday=0 .. Sunday=6 numbering.
type TimeSlotInput struct {
	StartMinute int
	EndMinute   int
	Weekdays    []int
}

// Booking represents a guest's reservation of a time slot on a date.
type Booking struct {
	ID          int64
	TimeSlotID  int64
	GuestID     int64
	When        time.Time
	Topic       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BookingInput captures caller provided booking fields. When is a calendar
// date; any time component is discarded.
type BookingInput struct {
	When        time.Time
	Topic       string
	Description string
}

// BookableDay reports which time slots are eligible on one real day of a
// month. Days carrying no eligible slots still appear with an empty set.
type BookableDay struct {
	Day     int
	SlotIDs []int64
}
