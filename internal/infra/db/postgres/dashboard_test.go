package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayadmin/internal/domain/booking"
)

func TestDashboardStats(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookingRepository(db)
	queries := NewDashboardQueries(db)
	g := seedGuest(t, db)
	a := seedApartment(t, db, "Sea View")
	seedApartment(t, db, "Hill View")
	ctx := context.Background()
	now := time.Date(2025, 7, 6, 10, 0, 0, 0, time.UTC)

	// arrives today, currently occupying the apartment
	current := newBooking(g.ID, a.ID, now.Add(-2*time.Hour), now.AddDate(0, 0, 3))
	current.BookingStatus = booking.StatusCheckedIn
	require.NoError(t, repo.CreateGuarded(ctx, current))

	cancelled := newBooking(g.ID, a.ID, stay(20), stay(22))
	cancelled.BookingStatus = booking.StatusCancelled
	require.NoError(t, repo.CreateGuarded(ctx, cancelled))

	stats, err := queries.Stats(ctx, now)
	require.NoError(t, err)

	assert.EqualValues(t, 2, stats.TotalBookings)
	assert.EqualValues(t, 1, stats.ActiveBookings)
	assert.EqualValues(t, 1, stats.TodayCheckIns)
	assert.EqualValues(t, 0, stats.TodayCheckOuts)
	assert.EqualValues(t, 1, stats.CurrentGuests)
	assert.EqualValues(t, 2, stats.TotalApartments)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("330")), "revenue %s", stats.TotalRevenue)
	assert.True(t, stats.PendingPayments.Equal(decimal.RequireFromString("330")), "pending %s", stats.PendingPayments)
	assert.InDelta(t, 50.0, stats.OccupancyRate, 0.01)
}

func TestMonthlyRevenueBucketsByCheckInMonth(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookingRepository(db)
	queries := NewDashboardQueries(db)
	g := seedGuest(t, db)
	a := seedApartment(t, db, "Sea View")
	ctx := context.Background()
	now := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)

	june := newBooking(g.ID, a.ID, time.Date(2025, 6, 5, 14, 0, 0, 0, time.UTC), time.Date(2025, 6, 8, 11, 0, 0, 0, time.UTC))
	require.NoError(t, repo.CreateGuarded(ctx, june))
	july := newBooking(g.ID, a.ID, time.Date(2025, 7, 2, 14, 0, 0, 0, time.UTC), time.Date(2025, 7, 5, 11, 0, 0, 0, time.UTC))
	require.NoError(t, repo.CreateGuarded(ctx, july))

	months, err := queries.MonthlyRevenue(ctx, now, 3)
	require.NoError(t, err)
	require.Len(t, months, 3)

	assert.Equal(t, "2025-05", months[0].Month)
	assert.Equal(t, 0, months[0].Bookings)
	assert.Equal(t, "2025-06", months[1].Month)
	assert.Equal(t, 1, months[1].Bookings)
	assert.True(t, months[1].Revenue.Equal(decimal.RequireFromString("330")))
	assert.Equal(t, "2025-07", months[2].Month)
	assert.Equal(t, 1, months[2].Bookings)
}

func TestDistributions(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookingRepository(db)
	queries := NewDashboardQueries(db)
	g := seedGuest(t, db)
	a := seedApartment(t, db, "Sea View")
	ctx := context.Background()

	require.NoError(t, repo.CreateGuarded(ctx, newBooking(g.ID, a.ID, stay(1), stay(3))))
	draft := newBooking(g.ID, a.ID, stay(10), stay(12))
	draft.BookingStatus = booking.StatusDraft
	require.NoError(t, repo.CreateGuarded(ctx, draft))

	statuses, err := queries.StatusDistribution(ctx)
	require.NoError(t, err)
	assert.Len(t, statuses, 2)

	types, err := queries.GuestTypeDistribution(ctx)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "local", types[0].GuestType)
	assert.EqualValues(t, 2, types[0].Count)
}

func TestUpcomingSchedule(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookingRepository(db)
	queries := NewDashboardQueries(db)
	g := seedGuest(t, db)
	a := seedApartment(t, db, "Sea View")
	b := seedApartment(t, db, "Hill View")
	ctx := context.Background()
	now := stay(1)

	arriving := newBooking(g.ID, a.ID, stay(3), stay(12))
	require.NoError(t, repo.CreateGuarded(ctx, arriving))
	departing := newBooking(g.ID, b.ID, now.AddDate(0, 0, -3), stay(4))
	departing.BookingStatus = booking.StatusCheckedIn
	require.NoError(t, repo.CreateGuarded(ctx, departing))
	farFuture := newBooking(g.ID, a.ID, stay(25), stay(28))
	require.NoError(t, repo.CreateGuarded(ctx, farFuture))

	sched, err := queries.UpcomingSchedule(ctx, now, 7)
	require.NoError(t, err)
	require.Len(t, sched.CheckIns, 1)
	assert.Equal(t, arriving.ID, sched.CheckIns[0].ID)
	require.Len(t, sched.CheckOuts, 1)
	assert.Equal(t, departing.ID, sched.CheckOuts[0].ID)
}
