package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/booking-server/internal/persistence"
)

// CalendarRepository implements persistence.CalendarRepository using SQLite.
//
// Topic labels are stored as a JSON array in a TEXT column, preserving
// order.
type CalendarRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewCalendarRepository creates a new SQLite calendar repository. The clock
// stamps created_at and updated_at on writes; nil falls back to time.Now.
func NewCalendarRepository(pool *ConnectionPool, now func() time.Time) *CalendarRepository {
	if now == nil {
		now = time.Now
	}
	return &CalendarRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		now:    now,
	}
}

// CreateCalendar inserts a new calendar. The UNIQUE constraint on host_id
// enforces the one-calendar-per-host rule; violations surface as
// persistence.ErrDuplicate.
func (r *CalendarRepository) CreateCalendar(ctx context.Context, calendar persistence.Calendar) (persistence.Calendar, error) {
	topics, err := encodeTopics(calendar.Topics)
	if err != nil {
		return persistence.Calendar{}, err
	}

	now := r.now().UTC()
	calendar.CreatedAt = now
	calendar.UpdatedAt = now

	result, err := r.helper.Exec(ctx, `
		INSERT INTO calendars (host_id, topics, description, google_calendar_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		calendar.HostID,
		topics,
		calendar.Description,
		calendar.GoogleCalendarID,
		calendar.CreatedAt.Format(time.RFC3339),
		calendar.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return persistence.Calendar{}, r.mapper.MapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Calendar{}, fmt.Errorf("failed to read inserted calendar id: %w", err)
	}

	return r.GetCalendar(ctx, id)
}

// GetCalendar retrieves a calendar by ID.
func (r *CalendarRepository) GetCalendar(ctx context.Context, id int64) (persistence.Calendar, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, host_id, topics, description, google_calendar_id, created_at, updated_at
		FROM calendars WHERE id = ?`, id)
	return scanCalendar(row)
}

// GetCalendarByHost retrieves the calendar owned by the given host user.
func (r *CalendarRepository) GetCalendarByHost(ctx context.Context, hostID int64) (persistence.Calendar, error) {
	row := r.helper.QueryRow(ctx, `
		SELECT id, host_id, topics, description, google_calendar_id, created_at, updated_at
		FROM calendars WHERE host_id = ?`, hostID)
	return scanCalendar(row)
}

// UpdateCalendar updates mutable calendar fields and refreshes updated_at.
func (r *CalendarRepository) UpdateCalendar(ctx context.Context, calendar persistence.Calendar) (persistence.Calendar, error) {
	topics, err := encodeTopics(calendar.Topics)
	if err != nil {
		return persistence.Calendar{}, err
	}

	calendar.UpdatedAt = r.now().UTC()

	result, err := r.helper.Exec(ctx, `
		UPDATE calendars
		SET topics = ?, description = ?, google_calendar_id = ?, updated_at = ?
		WHERE id = ?`,
		topics,
		calendar.Description,
		calendar.GoogleCalendarID,
		calendar.UpdatedAt.Format(time.RFC3339),
		calendar.ID,
	)
	if err != nil {
		return persistence.Calendar{}, r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Calendar{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.Calendar{}, persistence.ErrNotFound
	}

	return r.GetCalendar(ctx, calendar.ID)
}

// DeleteCalendar removes a calendar and its dependent slots and bookings.
func (r *CalendarRepository) DeleteCalendar(ctx context.Context, id int64) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := r.helper.ExecTx(tx, `
			DELETE FROM bookings WHERE time_slot_id IN
			(SELECT id FROM time_slots WHERE calendar_id = ?)`, id); err != nil {
			return r.mapper.MapError(err)
		}
		if _, err := r.helper.ExecTx(tx, "DELETE FROM time_slots WHERE calendar_id = ?", id); err != nil {
			return r.mapper.MapError(err)
		}

		result, err := r.helper.ExecTx(tx, "DELETE FROM calendars WHERE id = ?", id)
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

func scanCalendar(row *sql.Row) (persistence.Calendar, error) {
	var calendar persistence.Calendar
	var topics, createdAt, updatedAt string

	err := row.Scan(
		&calendar.ID,
		&calendar.HostID,
		&topics,
		&calendar.Description,
		&calendar.GoogleCalendarID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Calendar{}, persistence.ErrNotFound
		}
		return persistence.Calendar{}, NewErrorMapper().MapError(err)
	}

	if calendar.Topics, err = decodeTopics(topics); err != nil {
		return persistence.Calendar{}, err
	}
	if calendar.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Calendar{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if calendar.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Calendar{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return calendar, nil
}

func encodeTopics(topics []string) (string, error) {
	if topics == nil {
		topics = []string{}
	}
	encoded, err := json.Marshal(topics)
	if err != nil {
		return "", fmt.Errorf("failed to encode topics: %w", err)
	}
	return string(encoded), nil
}

func decodeTopics(encoded string) ([]string, error) {
	if encoded == "" {
		return []string{}, nil
	}
	var topics []string
	if err := json.Unmarshal([]byte(encoded), &topics); err != nil {
		return nil, fmt.Errorf("failed to decode topics: %w", err)
	}
	return topics, nil
}
