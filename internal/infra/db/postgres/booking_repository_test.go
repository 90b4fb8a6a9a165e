package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"stayadmin/internal/domain/apartment"
	"stayadmin/internal/domain/booking"
	"stayadmin/internal/domain/guest"
	"stayadmin/internal/domain/pricing"
)

func seedGuest(t *testing.T, db *gorm.DB) *guest.Guest {
	t.Helper()
	g := &guest.Guest{Name: "Asha Verma", Phone: "555-0101", Email: "asha@example.com", GuestType: guest.TypeLocal, Introduced: "no"}
	require.NoError(t, db.Create(g).Error)
	return g
}

func seedApartment(t *testing.T, db *gorm.DB, name string) *apartment.Apartment {
	t.Helper()
	a := &apartment.Apartment{Name: name, Floor: "2", Unit: "2B", IsActive: true}
	require.NoError(t, db.Create(a).Error)
	return a
}

func stay(d int) time.Time {
	return time.Date(2025, 7, d, 14, 0, 0, 0, time.UTC)
}

func newBooking(guestID, apartmentID uint, from, to time.Time) *booking.Booking {
	return &booking.Booking{
		GuestID:       guestID,
		ApartmentID:   apartmentID,
		FromDatetime:  from,
		ToDatetime:    to,
		Days:          booking.StayDays(from, to),
		Season:        pricing.SeasonRegular,
		BaseRate:      decimal.RequireFromString("100"),
		Multiplier:    decimal.RequireFromString("1.0"),
		Subtotal:      decimal.RequireFromString("300"),
		Discount:      decimal.Zero,
		Tax:           decimal.RequireFromString("30"),
		GrandTotal:    decimal.RequireFromString("330"),
		PaymentType:   booking.PaymentTypeFull,
		AmountPaid:    decimal.Zero,
		PaymentStatus: booking.PaymentPending,
		PaymentMethod: "cash",
		BookingStatus: booking.StatusConfirmed,
	}
}

func TestOverlappingIncludesTouchingBoundaries(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookingRepository(db)
	g := seedGuest(t, db)
	a := seedApartment(t, db, "Sea View")
	ctx := context.Background()

	existing := newBooking(g.ID, a.ID, stay(5), stay(8))
	require.NoError(t, repo.CreateGuarded(ctx, existing))

	cases := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{"disjoint before", stay(1), stay(3), 0},
		{"disjoint after", stay(10), stay(12), 0},
		{"inside", stay(6), stay(7), 1},
		{"touching checkout", stay(1), stay(5), 1},
		{"touching checkin", stay(8), stay(11), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conflicts, err := repo.Overlapping(ctx, booking.ConflictQuery{ApartmentID: a.ID, From: tc.from, To: tc.to})
			require.NoError(t, err)
			assert.Len(t, conflicts, tc.want)
		})
	}
}

func TestOverlappingIgnoresCancelledAndOtherApartments(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookingRepository(db)
	g := seedGuest(t, db)
	a := seedApartment(t, db, "Sea View")
	b := seedApartment(t, db, "Hill View")
	ctx := context.Background()

	cancelled := newBooking(g.ID, a.ID, stay(5), stay(8))
	cancelled.BookingStatus = booking.StatusCancelled
	require.NoError(t, repo.CreateGuarded(ctx, cancelled))
	other := newBooking(g.ID, b.ID, stay(5), stay(8))
	require.NoError(t, repo.CreateGuarded(ctx, other))

	conflicts, err := repo.Overlapping(ctx, booking.ConflictQuery{ApartmentID: a.ID, From: stay(6), To: stay(7)})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestOverlappingExcludesSelf(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookingRepository(db)
	g := seedGuest(t, db)
	a := seedApartment(t, db, "Sea View")
	ctx := context.Background()

	existing := newBooking(g.ID, a.ID, stay(5), stay(8))
	require.NoError(t, repo.CreateGuarded(ctx, existing))

	conflicts, err := repo.Overlapping(ctx, booking.ConflictQuery{
		ApartmentID: a.ID, From: stay(5), To: stay(9), ExcludeID: existing.ID,
	})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestCreateGuardedRejectsOverlapInStatement(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookingRepository(db)
	g := seedGuest(t, db)
	a := seedApartment(t, db, "Sea View")
	ctx := context.Background()

	first := newBooking(g.ID, a.ID, stay(5), stay(8))
	require.NoError(t, repo.CreateGuarded(ctx, first))
	assert.NotZero(t, first.ID)

	// no pre-check here: the insert statement itself must refuse
	second := newBooking(g.ID, a.ID, stay(7), stay(10))
	err := repo.CreateGuarded(ctx, second)
	var conflict *booking.ConflictError
	require.ErrorAs(t, err, &conflict)

	var count int64
	require.NoError(t, db.Model(&booking.Booking{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateGuardedConcurrentWritersOneWins(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookingRepository(db)
	g := seedGuest(t, db)
	a := seedApartment(t, db, "Sea View")
	ctx := context.Background()

	// one connection keeps sqlite from throwing table-lock errors while the
	// two writers race; each insert still runs its own guard
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	errs := make(chan error, 2)
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		go func() {
			<-start
			errs <- repo.CreateGuarded(ctx, newBooking(g.ID, a.ID, stay(5), stay(8)))
		}()
	}
	close(start)

	var ok, conflicted int
	for i := 0; i < 2; i++ {
		err := <-errs
		if err == nil {
			ok++
			continue
		}
		var conflict *booking.ConflictError
		require.ErrorAs(t, err, &conflict)
		conflicted++
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicted)

	var count int64
	require.NoError(t, db.Model(&booking.Booking{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateGuardedAllowsOverlapWithCancelled(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookingRepository(db)
	g := seedGuest(t, db)
	a := seedApartment(t, db, "Sea View")
	ctx := context.Background()

	cancelled := newBooking(g.ID, a.ID, stay(5), stay(8))
	cancelled.BookingStatus = booking.StatusCancelled
	require.NoError(t, repo.CreateGuarded(ctx, cancelled))

	replacement := newBooking(g.ID, a.ID, stay(5), stay(8))
	require.NoError(t, repo.CreateGuarded(ctx, replacement))
}

func TestUpdateGuarded(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookingRepository(db)
	g := seedGuest(t, db)
	a := seedApartment(t, db, "Sea View")
	ctx := context.Background()

	first := newBooking(g.ID, a.ID, stay(5), stay(8))
	require.NoError(t, repo.CreateGuarded(ctx, first))
	second := newBooking(g.ID, a.ID, stay(10), stay(12))
	require.NoError(t, repo.CreateGuarded(ctx, second))

	// moving within its own slot is not a self-conflict
	first.ToDatetime = stay(9)
	first.Days = booking.StayDays(first.FromDatetime, first.ToDatetime)
	require.NoError(t, repo.UpdateGuarded(ctx, first))

	// moving onto the other booking is refused
	first.ToDatetime = stay(11)
	err := repo.UpdateGuarded(ctx, first)
	var conflict *booking.ConflictError
	require.ErrorAs(t, err, &conflict)

	missing := newBooking(g.ID, a.ID, stay(20), stay(22))
	missing.ID = 9999
	assert.ErrorIs(t, repo.UpdateGuarded(ctx, missing), booking.ErrNotFound)
}

func TestMarkEmailSent(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookingRepository(db)
	g := seedGuest(t, db)
	a := seedApartment(t, db, "Sea View")
	ctx := context.Background()

	b := newBooking(g.ID, a.ID, stay(5), stay(8))
	require.NoError(t, repo.CreateGuarded(ctx, b))
	require.NoError(t, repo.MarkEmailSent(ctx, b.ID))

	reloaded, err := repo.ByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.EmailSent)
}

func TestListFiltersAndPages(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookingRepository(db)
	g := seedGuest(t, db)
	a := seedApartment(t, db, "Sea View")
	ctx := context.Background()

	require.NoError(t, repo.CreateGuarded(ctx, newBooking(g.ID, a.ID, stay(1), stay(3))))
	paid := newBooking(g.ID, a.ID, stay(10), stay(12))
	paid.PaymentStatus = booking.PaymentPaid
	require.NoError(t, repo.CreateGuarded(ctx, paid))

	items, total, err := repo.List(ctx, booking.Filter{PaymentStatus: string(booking.PaymentPaid)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, paid.ID, items[0].ID)

	items, total, err = repo.List(ctx, booking.Filter{Search: "Asha"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)
}
