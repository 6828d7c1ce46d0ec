package testfixtures

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/booking-server/internal/persistence"
	"github.com/example/booking-server/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Pool      *sqlite.ConnectionPool
	Clock     *Clock
	Users     persistence.UserRepository
	Calendars persistence.CalendarRepository
	TimeSlots persistence.TimeSlotRepository
	Bookings  persistence.BookingRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a harness over a temporary database file that
// is migrated automatically. The repositories run on the harness clock, so
// tests can advance it and observe write timestamps deterministically.
// Cleanup is registered with the provided testing.TB; callers may also
// invoke Close themselves.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "booking.db")

	pool, err := sqlite.NewConnectionPool("file:" + path)
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate database: %v", err)
	}

	clock := NewClock(time.Time{})

	harness := &SQLiteHarness{
		Pool:      pool,
		Clock:     clock,
		Users:     sqlite.NewUserRepository(pool, clock.Now),
		Calendars: sqlite.NewCalendarRepository(pool, clock.Now),
		TimeSlots: sqlite.NewTimeSlotRepository(pool, clock.Now),
		Bookings:  sqlite.NewBookingRepository(pool, clock.Now),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
