package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditsvc "stayadmin/internal/app/services/audit"
	domainapartment "stayadmin/internal/domain/apartment"
	domainaudit "stayadmin/internal/domain/audit"
	domainbooking "stayadmin/internal/domain/booking"
	domainguest "stayadmin/internal/domain/guest"
	domainpricing "stayadmin/internal/domain/pricing"
	"stayadmin/internal/infra/db/postgres"
	"stayadmin/internal/infra/mail"
)

type fakeMailer struct {
	sent []mail.BookingConfirmation
	err  error
}

func (m *fakeMailer) SendBookingConfirmation(data mail.BookingConfirmation) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, data)
	return nil
}

type fakeProducer struct {
	published []string
}

func (p *fakeProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	p.published = append(p.published, key)
	return nil
}

type fixture struct {
	db        *gorm.DB
	service   *Service
	mailer    *fakeMailer
	apartment *domainapartment.Apartment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	apt := &domainapartment.Apartment{Name: "Sea View", Floor: "2", Unit: "2B", IsActive: true}
	require.NoError(t, db.Create(apt).Error)

	rule := &domainpricing.Rule{
		Rate13:        decimal.RequireFromString("100"),
		Rate46:        decimal.RequireFromString("90"),
		Rate7Plus:     decimal.RequireFromString("80"),
		SeasonRegular: decimal.RequireFromString("1.0"),
		SeasonPeak:    decimal.RequireFromString("1.2"),
		SeasonOffpeak: decimal.RequireFromString("0.8"),
		TaxPercent:    decimal.RequireFromString("10"),
		Currency:      "USD",
		EffectiveDate: time.Now().AddDate(0, 0, -1),
	}
	require.NoError(t, db.Create(rule).Error)

	mailer := &fakeMailer{}
	service := &Service{
		UoW:        postgres.Factory{DB: db},
		Bookings:   postgres.NewBookingRepository(db),
		Apartments: postgres.NewApartmentRepository(db),
		Rules:      postgres.NewPricingRepository(db),
		Calculator: domainpricing.Calculator{},
		Policy:     domainbooking.PermissivePolicy{},
		Audit:      &auditsvc.Recorder{},
		Mailer:     mailer,
	}
	return &fixture{db: db, service: service, mailer: mailer, apartment: apt}
}

func (f *fixture) writeParams(from, to time.Time) WriteParams {
	return WriteParams{
		Guest: GuestDetails{
			Name:  "Asha Verma",
			Phone: "555-0101",
			Email: "asha@example.com",
		},
		ApartmentID:   f.apartment.ID,
		FromDatetime:  from,
		ToDatetime:    to,
		Season:        "regular",
		BookingStatus: "draft",
	}
}

func stay(d int) time.Time {
	return time.Date(2025, 7, d, 14, 0, 0, 0, time.UTC)
}

func TestCreateComputesTotalsAndAudits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.service.Create(ctx, f.writeParams(stay(1), stay(4)), 7)
	require.NoError(t, err)

	assert.Equal(t, 3, b.Days)
	assert.True(t, b.Subtotal.Equal(decimal.RequireFromString("300")), "subtotal %s", b.Subtotal)
	assert.True(t, b.Tax.Equal(decimal.RequireFromString("30")), "tax %s", b.Tax)
	assert.True(t, b.GrandTotal.Equal(decimal.RequireFromString("330")), "total %s", b.GrandTotal)
	assert.Equal(t, "2B", b.UnitNo)
	assert.EqualValues(t, 7, b.BookingByUser)

	var g domainguest.Guest
	require.NoError(t, f.db.Where("phone = ?", "555-0101").First(&g).Error)
	assert.Equal(t, g.ID, b.GuestID)

	var entries []domainaudit.Entry
	require.NoError(t, f.db.Where("entity = ? AND entity_id = ?", "booking", b.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, domainaudit.ActionCreate, entries[0].Action)
	assert.EqualValues(t, 7, entries[0].UserID)

	assert.Empty(t, f.mailer.sent, "draft bookings get no mail")
}

func TestAuditEventReachesBrokerOnlyAfterCommit(t *testing.T) {
	f := newFixture(t)
	producer := &fakeProducer{}
	f.service.Audit = &auditsvc.Recorder{Producer: producer, Topic: "audit.events.v1"}
	ctx := context.Background()

	b, err := f.service.Create(ctx, f.writeParams(stay(1), stay(4)), 1)
	require.NoError(t, err)
	require.Len(t, producer.published, 1)
	assert.Equal(t, fmt.Sprintf("booking:%d", b.ID), producer.published[0])

	// the conflicting create rolls back, so nothing new may reach the broker
	_, err = f.service.Create(ctx, f.writeParams(stay(2), stay(3)), 1)
	var conflict *domainbooking.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Len(t, producer.published, 1)
}

func TestCreateReusesGuestByPhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, f.writeParams(stay(1), stay(3)), 1)
	require.NoError(t, err)
	second, err := f.service.Create(ctx, f.writeParams(stay(10), stay(12)), 1)
	require.NoError(t, err)

	assert.Equal(t, first.GuestID, second.GuestID)
	var count int64
	require.NoError(t, f.db.Model(&domainguest.Guest{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateConflictCarriesConflictList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.writeParams(stay(5), stay(8)), 1)
	require.NoError(t, err)

	_, err = f.service.Create(ctx, f.writeParams(stay(7), stay(10)), 1)
	var conflict *domainbooking.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Len(t, conflict.Conflicts, 1)

	var count int64
	require.NoError(t, f.db.Model(&domainbooking.Booking{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateConfirmedSendsMailOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	params := f.writeParams(stay(1), stay(4))
	params.BookingStatus = "confirmed"
	b, err := f.service.Create(ctx, params, 1)
	require.NoError(t, err)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "asha@example.com", f.mailer.sent[0].GuestEmail)
	assert.Equal(t, "Sea View", f.mailer.sent[0].ApartmentName)
	assert.True(t, b.EmailSent)

	reloaded, err := f.service.Bookings.ByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.EmailSent)
}

func TestCreateMailFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp down")
	ctx := context.Background()

	params := f.writeParams(stay(1), stay(4))
	params.BookingStatus = "confirmed"
	b, err := f.service.Create(ctx, params, 1)
	require.NoError(t, err)
	assert.False(t, b.EmailSent)
}

func TestCreateWithoutPricingRule(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Where("1 = 1").Delete(&domainpricing.Rule{}).Error)

	_, err := f.service.Create(context.Background(), f.writeParams(stay(1), stay(4)), 1)
	assert.ErrorIs(t, err, domainpricing.ErrNoRule)
}

func TestCreateRejectsInvalidStayAndSeason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	params := f.writeParams(stay(4), stay(1))
	_, err := f.service.Create(ctx, params, 1)
	assert.ErrorIs(t, err, domainbooking.ErrInvalidStay)

	params = f.writeParams(stay(1), stay(4))
	params.Season = "monsoon"
	_, err = f.service.Create(ctx, params, 1)
	assert.ErrorIs(t, err, domainpricing.ErrInvalidSeason)
}

func TestUpdateRecomputesAndExcludesSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.service.Create(ctx, f.writeParams(stay(1), stay(4)), 1)
	require.NoError(t, err)

	// extend into the 4-6 tier, overlapping its own old window
	params := f.writeParams(stay(2), stay(7))
	updated, err := f.service.Update(ctx, b.ID, params, 1)
	require.NoError(t, err)

	assert.Equal(t, 5, updated.Days)
	assert.True(t, updated.BaseRate.Equal(decimal.RequireFromString("90")))
	assert.True(t, updated.Subtotal.Equal(decimal.RequireFromString("450")), "subtotal %s", updated.Subtotal)

	var entries []domainaudit.Entry
	require.NoError(t, f.db.Where("entity = ? AND action = ?", "booking", domainaudit.ActionUpdate).Find(&entries).Error)
	assert.Len(t, entries, 1)
}

func TestUpdateConflictsWithOtherBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.writeParams(stay(5), stay(8)), 1)
	require.NoError(t, err)
	b, err := f.service.Create(ctx, f.writeParams(stay(10), stay(12)), 1)
	require.NoError(t, err)

	params := f.writeParams(stay(7), stay(11))
	_, err = f.service.Update(ctx, b.ID, params, 1)
	var conflict *domainbooking.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.NotEmpty(t, conflict.Conflicts)
}

func TestUpdateHonorsStrictTransitionPolicy(t *testing.T) {
	f := newFixture(t)
	f.service.Policy = domainbooking.StrictPolicy{}
	ctx := context.Background()

	b, err := f.service.Create(ctx, f.writeParams(stay(1), stay(4)), 1)
	require.NoError(t, err)

	params := f.writeParams(stay(1), stay(4))
	params.BookingStatus = "checked-in"
	_, err = f.service.Update(ctx, b.ID, params, 1)
	assert.ErrorIs(t, err, domainbooking.ErrTransitionNotAllowed)

	params.BookingStatus = "tentative"
	_, err = f.service.Update(ctx, b.ID, params, 1)
	assert.NoError(t, err)
}

func TestUpdateIntoConfirmedTriggersMail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.service.Create(ctx, f.writeParams(stay(1), stay(4)), 1)
	require.NoError(t, err)
	assert.Empty(t, f.mailer.sent)

	params := f.writeParams(stay(1), stay(4))
	params.BookingStatus = "confirmed"
	updated, err := f.service.Update(ctx, b.ID, params, 1)
	require.NoError(t, err)
	assert.Len(t, f.mailer.sent, 1)
	assert.True(t, updated.EmailSent)

	// staying confirmed must not mail again
	_, err = f.service.Update(ctx, b.ID, params, 1)
	require.NoError(t, err)
	assert.Len(t, f.mailer.sent, 1)
}

func TestDeleteRemovesAndAudits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.service.Create(ctx, f.writeParams(stay(1), stay(4)), 1)
	require.NoError(t, err)
	require.NoError(t, f.service.Delete(ctx, b.ID, 2))

	_, err = f.service.Bookings.ByID(ctx, b.ID)
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)

	var entries []domainaudit.Entry
	require.NoError(t, f.db.Where("entity = ? AND action = ?", "booking", domainaudit.ActionDelete).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.EqualValues(t, 2, entries[0].UserID)
}

func TestSendConfirmationGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.service.Create(ctx, f.writeParams(stay(1), stay(4)), 1)
	require.NoError(t, err)
	assert.ErrorIs(t, f.service.SendConfirmation(ctx, b.ID), ErrNotConfirmed)

	params := f.writeParams(stay(1), stay(4))
	params.BookingStatus = "confirmed"
	confirmed, err := f.service.Update(ctx, b.ID, params, 1)
	require.NoError(t, err)
	require.True(t, confirmed.EmailSent)

	assert.ErrorIs(t, f.service.SendConfirmation(ctx, b.ID), ErrEmailSent)
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.writeParams(stay(5), stay(8)), 1)
	require.NoError(t, err)

	available, conflicts, err := f.service.CheckAvailability(ctx, domainbooking.ConflictQuery{
		ApartmentID: f.apartment.ID, From: stay(1), To: stay(3),
	})
	require.NoError(t, err)
	assert.True(t, available)
	assert.Empty(t, conflicts)

	available, conflicts, err = f.service.CheckAvailability(ctx, domainbooking.ConflictQuery{
		ApartmentID: f.apartment.ID, From: stay(8), To: stay(10),
	})
	require.NoError(t, err)
	assert.False(t, available)
	assert.Len(t, conflicts, 1)
}
