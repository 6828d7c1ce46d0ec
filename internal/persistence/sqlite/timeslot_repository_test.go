package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/booking-server/internal/persistence"
	"github.com/example/booking-server/internal/testfixtures"
)

func createCalendar(t *testing.T, harness *testfixtures.SQLiteHarness) persistence.Calendar {
	t.Helper()
	host := createHost(t, harness)
	calendar, err := harness.Calendars.CreateCalendar(context.Background(), testfixtures.NewCalendarFixture(host.ID))
	require.NoError(t, err)
	return calendar
}

func TestTimeSlotRepositoryRoundTrip(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	calendar := createCalendar(t, harness)

	fixture := testfixtures.NewTimeSlotFixture(calendar.ID,
		testfixtures.WithWindow(9*60+30, 10*60+15),
		testfixtures.WithWeekdays(0, 3, 6),
	)

	created, err := harness.TimeSlots.CreateTimeSlot(ctx, fixture)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.Equal(t, 9*60+30, created.StartMinute)
	assert.Equal(t, 10*60+15, created.EndMinute)
	assert.Equal(t, []int{0, 3, 6}, created.Weekdays)

	fetched, err := harness.TimeSlots.GetTimeSlot(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
}

func TestTimeSlotRepositoryWeekdayMaskBoundaries(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	calendar := createCalendar(t, harness)

	cases := []struct {
		name     string
		weekdays []int
	}{
		{"monday only", []int{0}},
		{"sunday only", []int{6}},
		{"full week", []int{0, 1, 2, 3, 4, 5, 6}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			created, err := harness.TimeSlots.CreateTimeSlot(ctx, testfixtures.NewTimeSlotFixture(calendar.ID, testfixtures.WithWeekdays(tc.weekdays...)))
			require.NoError(t, err)

			fetched, err := harness.TimeSlots.GetTimeSlot(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.weekdays, fetched.Weekdays)
		})
	}
}

func TestTimeSlotRepositoryListOrdersByStart(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	calendar := createCalendar(t, harness)

	late, err := harness.TimeSlots.CreateTimeSlot(ctx, testfixtures.NewTimeSlotFixture(calendar.ID, testfixtures.WithWindow(15*60, 16*60)))
	require.NoError(t, err)
	early, err := harness.TimeSlots.CreateTimeSlot(ctx, testfixtures.NewTimeSlotFixture(calendar.ID, testfixtures.WithWindow(8*60, 9*60)))
	require.NoError(t, err)

	slots, err := harness.TimeSlots.ListTimeSlotsForCalendar(ctx, calendar.ID)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, early.ID, slots[0].ID)
	assert.Equal(t, late.ID, slots[1].ID)

	empty, err := harness.TimeSlots.ListTimeSlotsForCalendar(ctx, 99999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTimeSlotRepositoryRejectsInvertedWindow(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	calendar := createCalendar(t, harness)

	_, err := harness.TimeSlots.CreateTimeSlot(context.Background(), testfixtures.NewTimeSlotFixture(calendar.ID, testfixtures.WithWindow(10*60, 9*60)))
	require.ErrorIs(t, err, persistence.ErrConstraintViolation)
}

func TestTimeSlotRepositoryDeleteCascadesBookings(t *testing.T) {
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()
	calendar := createCalendar(t, harness)
	guest, err := harness.Users.CreateUser(ctx, testfixtures.NewUserFixture())
	require.NoError(t, err)

	slot, err := harness.TimeSlots.CreateTimeSlot(ctx, testfixtures.NewTimeSlotFixture(calendar.ID, testfixtures.WithWeekdays(0, 1, 2, 3, 4, 5, 6)))
	require.NoError(t, err)
	booking, err := harness.Bookings.CreateBooking(ctx, testfixtures.NewBookingFixture(slot.ID, guest.ID))
	require.NoError(t, err)

	require.NoError(t, harness.TimeSlots.DeleteTimeSlot(ctx, slot.ID))

	_, err = harness.TimeSlots.GetTimeSlot(ctx, slot.ID)
	require.ErrorIs(t, err, persistence.ErrNotFound)
	_, err = harness.Bookings.GetBooking(ctx, booking.ID)
	require.ErrorIs(t, err, persistence.ErrNotFound)
}
