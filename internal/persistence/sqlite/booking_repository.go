package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/booking-server/internal/persistence"
)

// dateLayout is the storage format for booking dates. Dates are stored
// without a time component so the UNIQUE(time_slot_id, booked_on)
// constraint compares calendar days, not instants.
const dateLayout = "2006-01-02"

// BookingRepository implements persistence.BookingRepository using SQLite.
type BookingRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewBookingRepository creates a new SQLite booking repository. The clock
// stamps created_at and updated_at on writes; nil falls back to time.Now.
func NewBookingRepository(pool *ConnectionPool, now func() time.Time) *BookingRepository {
	if now == nil {
		now = time.Now
	}
	return &BookingRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    now,
	}
}

// CreateBooking inserts a new booking. A UNIQUE(time_slot_id, booked_on)
// violation surfaces as persistence.ErrDuplicate, which is the
// authoritative double-booking check regardless of any optimistic
// pre-check the caller performed.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking persistence.Booking) (persistence.Booking, error) {
	now := r.now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.helper.Exec(ctx, `
		INSERT INTO bookings (time_slot_id, guest_id, booked_on, topic, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		booking.TimeSlotID,
		booking.GuestID,
		booking.BookedOn.UTC().Format(dateLayout),
		booking.Topic,
		booking.Description,
		booking.CreatedAt.Format(time.RFC3339),
		booking.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return persistence.Booking{}, r.mapper.MapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to read inserted booking id: %w", err)
	}

	return r.GetBooking(ctx, id)
}

// GetBooking retrieves a booking by ID.
func (r *BookingRepository) GetBooking(ctx context.Context, id int64) (persistence.Booking, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, time_slot_id, guest_id, booked_on, topic, description, created_at, updated_at
		FROM bookings WHERE id = ?`, id)
	return scanBooking(row)
}

// ListBookingsForGuest returns a guest's bookings ordered by date then ID.
func (r *BookingRepository) ListBookingsForGuest(ctx context.Context, guestID int64) ([]persistence.Booking, error) {
	return r.listBookings(ctx, `
		SELECT id, time_slot_id, guest_id, booked_on, topic, description, created_at, updated_at
		FROM bookings
		WHERE guest_id = ?
		ORDER BY booked_on ASC, id ASC`, guestID)
}

// ListBookingsForTimeSlot returns a slot's bookings ordered by date then ID.
func (r *BookingRepository) ListBookingsForTimeSlot(ctx context.Context, timeSlotID int64) ([]persistence.Booking, error) {
	return r.listBookings(ctx, `
		SELECT id, time_slot_id, guest_id, booked_on, topic, description, created_at, updated_at
		FROM bookings
		WHERE time_slot_id = ?
		ORDER BY booked_on ASC, id ASC`, timeSlotID)
}

// CountBookingsForSlotOn reports how many bookings occupy the slot on the
// given date. Used as the optimistic half of the double-booking check.
func (r *BookingRepository) CountBookingsForSlotOn(ctx context.Context, timeSlotID int64, bookedOn time.Time) (int, error) {
	var count int
	err := r.helper.QueryRow(ctx,
		"SELECT COUNT(*) FROM bookings WHERE time_slot_id = ? AND booked_on = ?",
		timeSlotID, bookedOn.UTC().Format(dateLayout)).Scan(&count)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	return count, nil
}

// DeleteBooking removes a booking by ID.
func (r *BookingRepository) DeleteBooking(ctx context.Context, id int64) error {
	result, err := r.helper.Exec(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) listBookings(ctx context.Context, query string, args ...any) ([]persistence.Booking, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var bookings []persistence.Booking
	for rows.Next() {
		var booking persistence.Booking
		var bookedOn, createdAt, updatedAt string

		err := rows.Scan(
			&booking.ID,
			&booking.TimeSlotID,
			&booking.GuestID,
			&bookedOn,
			&booking.Topic,
			&booking.Description,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}

		booking, err = finishBooking(booking, bookedOn, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return bookings, nil
}

func scanBooking(row *sql.Row) (persistence.Booking, error) {
	var booking persistence.Booking
	var bookedOn, createdAt, updatedAt string

	err := row.Scan(
		&booking.ID,
		&booking.TimeSlotID,
		&booking.GuestID,
		&bookedOn,
		&booking.Topic,
		&booking.Description,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Booking{}, persistence.ErrNotFound
		}
		return persistence.Booking{}, NewErrorMapper().MapError(err)
	}

	return finishBooking(booking, bookedOn, createdAt, updatedAt)
}

func finishBooking(booking persistence.Booking, bookedOn, createdAt, updatedAt string) (persistence.Booking, error) {
	var err error
	if booking.BookedOn, err = time.ParseInLocation(dateLayout, bookedOn, time.UTC); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse booked_on: %w", err)
	}
	if booking.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if booking.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Booking{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return booking, nil
}
