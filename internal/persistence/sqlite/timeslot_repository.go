package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/booking-server/internal/persistence"
)

// TimeSlotRepository implements persistence.TimeSlotRepository using SQLite.
//
// The weekday set is stored as a bitmask: bit N set means weekday N
// (Monday=0 .. Sunday=6) is bookable.
type TimeSlotRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewTimeSlotRepository creates a new SQLite time slot repository. The clock
// stamps created_at and updated_at on writes; nil falls back to time.Now.
func NewTimeSlotRepository(pool *ConnectionPool, now func() time.Time) *TimeSlotRepository {
	if now == nil {
		now = time.Now
	}
	return &TimeSlotRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    now,
	}
}

// CreateTimeSlot inserts a new time slot under its calendar.
func (r *TimeSlotRepository) CreateTimeSlot(ctx context.Context, slot persistence.TimeSlot) (persistence.TimeSlot, error) {
	now := r.now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now

	result, err := r.helper.Exec(ctx, `
		INSERT INTO time_slots (calendar_id, start_minute, end_minute, weekday_mask, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		slot.CalendarID,
		slot.StartMinute,
		slot.EndMinute,
		encodeWeekdays(slot.Weekdays),
		slot.CreatedAt.Format(time.RFC3339),
		slot.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return persistence.TimeSlot{}, r.mapper.MapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.TimeSlot{}, fmt.Errorf("failed to read inserted time slot id: %w", err)
	}

	return r.GetTimeSlot(ctx, id)
}

// GetTimeSlot retrieves a time slot by ID.
func (r *TimeSlotRepository) GetTimeSlot(ctx context.Context, id int64) (persistence.TimeSlot, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, calendar_id, start_minute, end_minute, weekday_mask, created_at, updated_at
		FROM time_slots WHERE id = ?`, id)
	return scanTimeSlot(row)
}

// ListTimeSlotsForCalendar returns a calendar's slots ordered by start time
// then ID.
func (r *TimeSlotRepository) ListTimeSlotsForCalendar(ctx context.Context, calendarID int64) ([]persistence.TimeSlot, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, calendar_id, start_minute, end_minute, weekday_mask, created_at, updated_at
		FROM time_slots
		WHERE calendar_id = ?
		ORDER BY start_minute ASC, id ASC`, calendarID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var slots []persistence.TimeSlot
	for rows.Next() {
		slot, err := scanTimeSlotRows(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return slots, nil
}

// UpdateTimeSlot updates the window and weekday set of an existing slot.
func (r *TimeSlotRepository) UpdateTimeSlot(ctx context.Context, slot persistence.TimeSlot) (persistence.TimeSlot, error) {
	slot.UpdatedAt = r.now().UTC()

	result, err := r.helper.Exec(ctx, `
		UPDATE time_slots
		SET start_minute = ?, end_minute = ?, weekday_mask = ?, updated_at = ?
		WHERE id = ?`,
		slot.StartMinute,
		slot.EndMinute,
		encodeWeekdays(slot.Weekdays),
		slot.UpdatedAt.Format(time.RFC3339),
		slot.ID,
	)
	if err != nil {
		return persistence.TimeSlot{}, r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.TimeSlot{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.TimeSlot{}, persistence.ErrNotFound
	}

	return r.GetTimeSlot(ctx, slot.ID)
}

// DeleteTimeSlot removes a slot and its bookings.
func (r *TimeSlotRepository) DeleteTimeSlot(ctx context.Context, id int64) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := r.helper.ExecTx(tx, "DELETE FROM bookings WHERE time_slot_id = ?", id); err != nil {
			return r.mapper.MapError(err)
		}

		result, err := r.helper.ExecTx(tx, "DELETE FROM time_slots WHERE id = ?", id)
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
	})
}

func scanTimeSlot(row *sql.Row) (persistence.TimeSlot, error) {
	var slot persistence.TimeSlot
	var mask int64
	var createdAt, updatedAt string

	err := row.Scan(
		&slot.ID,
		&slot.CalendarID,
		&slot.StartMinute,
		&slot.EndMinute,
		&mask,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.TimeSlot{}, persistence.ErrNotFound
		}
		return persistence.TimeSlot{}, NewErrorMapper().MapError(err)
	}

	return finishTimeSlot(slot, mask, createdAt, updatedAt)
}

func scanTimeSlotRows(rows *sql.Rows) (persistence.TimeSlot, error) {
	var slot persistence.TimeSlot
	var mask int64
	var createdAt, updatedAt string

	err := rows.Scan(
		&slot.ID,
		&slot.CalendarID,
		&slot.StartMinute,
		&slot.EndMinute,
		&mask,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.TimeSlot{}, NewErrorMapper().MapError(err)
	}

	return finishTimeSlot(slot, mask, createdAt, updatedAt)
}

func finishTimeSlot(slot persistence.TimeSlot, mask int64, createdAt, updatedAt string) (persistence.TimeSlot, error) {
	var err error
	slot.Weekdays = decodeWeekdays(mask)
	if slot.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.TimeSlot{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if slot.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.TimeSlot{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return slot, nil
}

// encodeWeekdays encodes a weekday set (Monday=0 .. Sunday=6) as a bitmask
// for storage.
func encodeWeekdays(weekdays []int) int64 {
	var mask int64
	for _, day := range weekdays {
		if day < 0 || day > 6 {
			continue
		}
		mask |= 1 << uint(day)
	}
	return mask
}

// decodeWeekdays decodes a weekday bitmask into a sorted weekday set.
func decodeWeekdays(mask int64) []int {
	weekdays := make([]int, 0, 7)
	for day := 0; day <= 6; day++ {
		if mask&(1<<uint(day)) != 0 {
			weekdays = append(weekdays, day)
		}
	}
	return weekdays
}
