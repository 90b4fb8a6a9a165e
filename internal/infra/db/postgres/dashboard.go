package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stayadmin/internal/domain/apartment"
	"stayadmin/internal/domain/booking"
)

// DashboardQueries serves the read-only aggregates behind the dashboard
// endpoints. Date bucketing happens in Go so the same queries run on both
// postgres and the sqlite test store.
type DashboardQueries struct {
	db *gorm.DB
}

func NewDashboardQueries(db *gorm.DB) *DashboardQueries {
	return &DashboardQueries{db: db}
}

type Stats struct {
	TotalBookings   int64           `json:"totalBookings"`
	ActiveBookings  int64           `json:"activeBookings"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	PendingPayments decimal.Decimal `json:"pendingPayments"`
	TodayCheckIns   int64           `json:"todayCheckIns"`
	TodayCheckOuts  int64           `json:"todayCheckOuts"`
	CurrentGuests   int64           `json:"currentGuests"`
	TotalApartments int64           `json:"totalApartments"`
	OccupancyRate   float64         `json:"occupancyRate"`
}

func (d *DashboardQueries) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	var s Stats
	bookings := func() *gorm.DB { return d.db.WithContext(ctx).Model(&booking.Booking{}) }

	if err := bookings().Count(&s.TotalBookings).Error; err != nil {
		return nil, wrapStoreErr("dashboard: total bookings", err)
	}
	if err := bookings().
		Where("booking_status IN ?", []booking.Status{booking.StatusConfirmed, booking.StatusCheckedIn}).
		Count(&s.ActiveBookings).Error; err != nil {
		return nil, wrapStoreErr("dashboard: active bookings", err)
	}
	if err := bookings().
		Where("booking_status <> ?", booking.StatusCancelled).
		Select("COALESCE(SUM(grand_total), 0)").Scan(&s.TotalRevenue).Error; err != nil {
		return nil, wrapStoreErr("dashboard: revenue", err)
	}
	if err := bookings().
		Where("booking_status <> ?", booking.StatusCancelled).
		Where("payment_status <> ?", booking.PaymentPaid).
		Select("COALESCE(SUM(grand_total - amount_paid), 0)").Scan(&s.PendingPayments).Error; err != nil {
		return nil, wrapStoreErr("dashboard: pending payments", err)
	}
	if err := bookings().
		Where("booking_status <> ?", booking.StatusCancelled).
		Where("from_datetime BETWEEN ? AND ?", dayStart, dayEnd).
		Count(&s.TodayCheckIns).Error; err != nil {
		return nil, wrapStoreErr("dashboard: today check-ins", err)
	}
	if err := bookings().
		Where("booking_status <> ?", booking.StatusCancelled).
		Where("to_datetime BETWEEN ? AND ?", dayStart, dayEnd).
		Count(&s.TodayCheckOuts).Error; err != nil {
		return nil, wrapStoreErr("dashboard: today check-outs", err)
	}
	if err := bookings().
		Where("booking_status = ?", booking.StatusCheckedIn).
		Count(&s.CurrentGuests).Error; err != nil {
		return nil, wrapStoreErr("dashboard: current guests", err)
	}
	if err := d.db.WithContext(ctx).Model(&apartment.Apartment{}).
		Where("is_active = ?", true).Count(&s.TotalApartments).Error; err != nil {
		return nil, wrapStoreErr("dashboard: apartments", err)
	}

	var occupied int64
	if err := bookings().
		Where("booking_status IN ?", []booking.Status{booking.StatusConfirmed, booking.StatusCheckedIn}).
		Where("from_datetime <= ? AND to_datetime >= ?", now, now).
		Distinct("apartment_id").Count(&occupied).Error; err != nil {
		return nil, wrapStoreErr("dashboard: occupancy", err)
	}
	if s.TotalApartments > 0 {
		s.OccupancyRate = float64(occupied) / float64(s.TotalApartments) * 100
	}
	return &s, nil
}

type MonthRevenue struct {
	Month    string          `json:"month"`
	Revenue  decimal.Decimal `json:"revenue"`
	Bookings int             `json:"bookings"`
}

// MonthlyRevenue buckets non-cancelled bookings by check-in month over the
// trailing window, oldest month first. Months without bookings still appear.
func (d *DashboardQueries) MonthlyRevenue(ctx context.Context, now time.Time, months int) ([]MonthRevenue, error) {
	if months <= 0 {
		months = 12
	}
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
		AddDate(0, -(months - 1), 0)

	var rows []booking.Booking
	err := d.db.WithContext(ctx).Model(&booking.Booking{}).
		Select("from_datetime", "grand_total").
		Where("booking_status <> ?", booking.StatusCancelled).
		Where("from_datetime >= ?", windowStart).
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreErr("dashboard: monthly revenue", err)
	}

	byMonth := make(map[string]*MonthRevenue, months)
	out := make([]MonthRevenue, 0, months)
	for i := 0; i < months; i++ {
		key := windowStart.AddDate(0, i, 0).Format("2006-01")
		out = append(out, MonthRevenue{Month: key, Revenue: decimal.Zero})
		byMonth[key] = &out[len(out)-1]
	}
	for _, b := range rows {
		m, ok := byMonth[b.FromDatetime.Format("2006-01")]
		if !ok {
			continue
		}
		m.Revenue = m.Revenue.Add(b.GrandTotal)
		m.Bookings++
	}
	return out, nil
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func (d *DashboardQueries) StatusDistribution(ctx context.Context) ([]StatusCount, error) {
	var out []StatusCount
	err := d.db.WithContext(ctx).Model(&booking.Booking{}).
		Select("booking_status AS status, COUNT(*) AS count").
		Group("booking_status").Order("count DESC").
		Scan(&out).Error
	if err != nil {
		return nil, wrapStoreErr("dashboard: status distribution", err)
	}
	return out, nil
}

type GuestTypeCount struct {
	GuestType string `json:"guestType"`
	Count     int64  `json:"count"`
}

func (d *DashboardQueries) GuestTypeDistribution(ctx context.Context) ([]GuestTypeCount, error) {
	var out []GuestTypeCount
	err := d.db.WithContext(ctx).Model(&booking.Booking{}).
		Joins("LEFT JOIN guests ON guests.id = bookings.guest_id").
		Where("bookings.booking_status <> ?", booking.StatusCancelled).
		Select("guests.guest_type AS guest_type, COUNT(*) AS count").
		Group("guests.guest_type").Order("count DESC").
		Scan(&out).Error
	if err != nil {
		return nil, wrapStoreErr("dashboard: guest type distribution", err)
	}
	return out, nil
}

type Schedule struct {
	CheckIns  []booking.Booking `json:"checkIns"`
	CheckOuts []booking.Booking `json:"checkOuts"`
}

// UpcomingSchedule lists arrivals and departures over the next few days.
func (d *DashboardQueries) UpcomingSchedule(ctx context.Context, now time.Time, days int) (*Schedule, error) {
	if days <= 0 {
		days = 7
	}
	until := now.AddDate(0, 0, days)

	var sched Schedule
	err := d.db.WithContext(ctx).
		Where("booking_status <> ?", booking.StatusCancelled).
		Where("from_datetime BETWEEN ? AND ?", now, until).
		Order("from_datetime").
		Preload("Guest").Preload("Apartment").
		Find(&sched.CheckIns).Error
	if err != nil {
		return nil, wrapStoreErr("dashboard: upcoming check-ins", err)
	}
	err = d.db.WithContext(ctx).
		Where("booking_status IN ?", []booking.Status{booking.StatusConfirmed, booking.StatusCheckedIn}).
		Where("to_datetime BETWEEN ? AND ?", now, until).
		Order("to_datetime").
		Preload("Guest").Preload("Apartment").
		Find(&sched.CheckOuts).Error
	if err != nil {
		return nil, wrapStoreErr("dashboard: upcoming check-outs", err)
	}
	return &sched, nil
}
