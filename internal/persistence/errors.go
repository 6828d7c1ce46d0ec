package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when an insert or update violates a
	// uniqueness constraint.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrForeignKeyViolation is returned when a write references a record
	// that does not exist.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrConstraintViolation is returned for CHECK constraint failures and
	// other integrity errors without a more specific mapping.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)

var (
	// ErrDuplicateUsername narrows ErrDuplicate to the users.username
	// constraint so callers can report which identity field collided.
	ErrDuplicateUsername = fmt.Errorf("%w: users.username", ErrDuplicate)
	// ErrDuplicateEmail narrows ErrDuplicate to the users.email constraint.
	ErrDuplicateEmail = fmt.Errorf("%w: users.email", ErrDuplicate)
)
