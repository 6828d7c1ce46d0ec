package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/booking-server/internal/persistence"
	"github.com/example/booking-server/internal/testfixtures"
)

type bookingScene struct {
	harness *testfixtures.SQLiteHarness
	slot    persistence.TimeSlot
	guest   persistence.User
}

func newBookingScene(t *testing.T) bookingScene {
	t.Helper()
	harness := testfixtures.NewSQLiteHarness(t)
	ctx := context.Background()

	calendar := createCalendar(t, harness)
	slot, err := harness.TimeSlots.CreateTimeSlot(ctx, testfixtures.NewTimeSlotFixture(calendar.ID, testfixtures.WithWeekdays(0, 1, 2, 3, 4, 5, 6)))
	require.NoError(t, err)
	guest, err := harness.Users.CreateUser(ctx, testfixtures.NewUserFixture())
	require.NoError(t, err)

	return bookingScene{harness: harness, slot: slot, guest: guest}
}

func TestBookingRepositoryRoundTrip(t *testing.T) {
	scene := newBookingScene(t)
	ctx := context.Background()

	date := time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC)
	fixture := testfixtures.NewBookingFixture(scene.slot.ID, scene.guest.ID,
		testfixtures.WithBookedOn(date),
		testfixtures.WithTopic("intro call"),
	)

	created, err := scene.harness.Bookings.CreateBooking(ctx, fixture)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.True(t, created.BookedOn.Equal(date))
	assert.Equal(t, "intro call", created.Topic)

	fetched, err := scene.harness.Bookings.GetBooking(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
}

func TestBookingRepositorySlotDateUniqueness(t *testing.T) {
	scene := newBookingScene(t)
	ctx := context.Background()

	date := time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC)
	_, err := scene.harness.Bookings.CreateBooking(ctx, testfixtures.NewBookingFixture(scene.slot.ID, scene.guest.ID, testfixtures.WithBookedOn(date)))
	require.NoError(t, err)

	other, err := scene.harness.Users.CreateUser(ctx, testfixtures.NewUserFixture())
	require.NoError(t, err)

	_, err = scene.harness.Bookings.CreateBooking(ctx, testfixtures.NewBookingFixture(scene.slot.ID, other.ID, testfixtures.WithBookedOn(date)))
	require.ErrorIs(t, err, persistence.ErrDuplicate)

	// Another date on the same slot is fine.
	_, err = scene.harness.Bookings.CreateBooking(ctx, testfixtures.NewBookingFixture(scene.slot.ID, other.ID, testfixtures.WithBookedOn(date.AddDate(0, 0, 1))))
	require.NoError(t, err)
}

func TestBookingRepositoryCountBookingsForSlotOn(t *testing.T) {
	scene := newBookingScene(t)
	ctx := context.Background()

	date := time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC)

	count, err := scene.harness.Bookings.CountBookingsForSlotOn(ctx, scene.slot.ID, date)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = scene.harness.Bookings.CreateBooking(ctx, testfixtures.NewBookingFixture(scene.slot.ID, scene.guest.ID, testfixtures.WithBookedOn(date)))
	require.NoError(t, err)

	count, err = scene.harness.Bookings.CountBookingsForSlotOn(ctx, scene.slot.ID, date)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// A time component on the queried date must not change the answer.
	count, err = scene.harness.Bookings.CountBookingsForSlotOn(ctx, scene.slot.ID, date.Add(13*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBookingRepositoryListings(t *testing.T) {
	scene := newBookingScene(t)
	ctx := context.Background()

	later := time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC)

	second, err := scene.harness.Bookings.CreateBooking(ctx, testfixtures.NewBookingFixture(scene.slot.ID, scene.guest.ID, testfixtures.WithBookedOn(later)))
	require.NoError(t, err)
	first, err := scene.harness.Bookings.CreateBooking(ctx, testfixtures.NewBookingFixture(scene.slot.ID, scene.guest.ID, testfixtures.WithBookedOn(earlier)))
	require.NoError(t, err)

	byGuest, err := scene.harness.Bookings.ListBookingsForGuest(ctx, scene.guest.ID)
	require.NoError(t, err)
	require.Len(t, byGuest, 2)
	assert.Equal(t, first.ID, byGuest[0].ID)
	assert.Equal(t, second.ID, byGuest[1].ID)

	bySlot, err := scene.harness.Bookings.ListBookingsForTimeSlot(ctx, scene.slot.ID)
	require.NoError(t, err)
	assert.Len(t, bySlot, 2)

	none, err := scene.harness.Bookings.ListBookingsForGuest(ctx, 99999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBookingRepositoryDelete(t *testing.T) {
	scene := newBookingScene(t)
	ctx := context.Background()

	created, err := scene.harness.Bookings.CreateBooking(ctx, testfixtures.NewBookingFixture(scene.slot.ID, scene.guest.ID))
	require.NoError(t, err)

	require.NoError(t, scene.harness.Bookings.DeleteBooking(ctx, created.ID))

	_, err = scene.harness.Bookings.GetBooking(ctx, created.ID)
	require.ErrorIs(t, err, persistence.ErrNotFound)

	require.ErrorIs(t, scene.harness.Bookings.DeleteBooking(ctx, created.ID), persistence.ErrNotFound)
}

func TestBookingRepositoryRejectsUnknownSlot(t *testing.T) {
	scene := newBookingScene(t)

	_, err := scene.harness.Bookings.CreateBooking(context.Background(), testfixtures.NewBookingFixture(99999, scene.guest.ID))
	require.ErrorIs(t, err, persistence.ErrForeignKeyViolation)
}
