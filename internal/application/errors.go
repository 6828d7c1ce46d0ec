package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidCredentials is returned when a login attempt provides an unknown
	// username or a mismatched password.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrInvalidToken is returned when a presented auth token cannot be verified.
	ErrInvalidToken = errors.New("application: invalid token")
	// ErrTokenExpired is returned when a presented auth token is past its expiry.
	ErrTokenExpired = errors.New("application: token expired")

	// ErrDuplicateUsername is returned when a signup reuses an existing username.
	ErrDuplicateUsername = errors.New("application: duplicate username")
	// ErrDuplicateEmail is returned when a signup reuses an existing email address.
	ErrDuplicateEmail = errors.New("application: duplicate email")

	// ErrCalendarExists is returned when a host that already owns a calendar
	// attempts to create another.
	ErrCalendarExists = errors.New("application: host already owns a calendar")

	// ErrInvalidRange is returned when a time slot's start is not before its end.
	ErrInvalidRange = errors.New("application: start must be before end")
	// ErrInvalidWeekday is returned when a weekday value falls outside 0..6.
	ErrInvalidWeekday = errors.New("application: weekday must be between 0 and 6")

	// ErrSlotNotFound is returned when a booking references a time slot that
	// does not exist.
	ErrSlotNotFound = errors.New("application: time slot not found")
	// ErrWeekdayNotBookable is returned when a booking date falls on a weekday
	// the slot does not recur on.
	ErrWeekdayNotBookable = errors.New("application: weekday not bookable for this slot")
	// ErrSlotAlreadyBooked is returned when a booking would occupy a slot and
	// date that already carry a booking. Callers may retry with a different
	// date or slot; the service itself never retries.
	ErrSlotAlreadyBooked = errors.New("application: slot already booked on that date")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
