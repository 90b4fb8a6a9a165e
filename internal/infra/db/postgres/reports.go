package postgres

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stayadmin/internal/domain/booking"
	"stayadmin/internal/domain/guest"
)

// ReportQueries serves the analytics endpoints. Like DashboardQueries, any
// date bucketing happens in Go so the queries run unchanged on the sqlite
// test store. Zero time bounds mean unbounded.
type ReportQueries struct {
	db *gorm.DB
}

func NewReportQueries(db *gorm.DB) *ReportQueries {
	return &ReportQueries{db: db}
}

type RevenuePeriod struct {
	Period              string          `json:"period"`
	Revenue             decimal.Decimal `json:"revenue"`
	Bookings            int64           `json:"bookings"`
	AverageBookingValue decimal.Decimal `json:"averageBookingValue"`
}

type RevenueReport struct {
	Periods       []RevenuePeriod `json:"periods"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TotalBookings int64           `json:"totalBookings"`
}

// Revenue buckets paid bookings by booking date. groupBy is day, month or
// year; anything else falls back to month. Periods come newest first.
func (r *ReportQueries) Revenue(ctx context.Context, from, to time.Time, groupBy string) (*RevenueReport, error) {
	layout := "2006-01"
	switch groupBy {
	case "day":
		layout = "2006-01-02"
	case "year":
		layout = "2006"
	}

	q := r.db.WithContext(ctx).Model(&booking.Booking{}).
		Select("created_at", "grand_total").
		Where("payment_status = ?", booking.PaymentPaid)
	q = betweenCreated(q, from, to)

	var rows []booking.Booking
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrapStoreErr("reports: revenue", err)
	}

	byPeriod := make(map[string]*RevenuePeriod)
	report := &RevenueReport{Periods: []RevenuePeriod{}, TotalRevenue: decimal.Zero}
	for _, b := range rows {
		key := b.CreatedAt.Format(layout)
		p, ok := byPeriod[key]
		if !ok {
			p = &RevenuePeriod{Period: key, Revenue: decimal.Zero}
			byPeriod[key] = p
		}
		p.Revenue = p.Revenue.Add(b.GrandTotal)
		p.Bookings++
		report.TotalRevenue = report.TotalRevenue.Add(b.GrandTotal)
		report.TotalBookings++
	}
	for _, p := range byPeriod {
		p.AverageBookingValue = p.Revenue.Div(decimal.NewFromInt(p.Bookings)).Round(2)
		report.Periods = append(report.Periods, *p)
	}
	sort.Slice(report.Periods, func(i, j int) bool {
		return report.Periods[i].Period > report.Periods[j].Period
	})
	return report, nil
}

type OccupancyDay struct {
	Date               string  `json:"date"`
	OccupiedApartments int64   `json:"occupiedApartments"`
	OccupancyRate      float64 `json:"occupancyRate"`
}

type OccupancyReport struct {
	Days             []OccupancyDay `json:"days"`
	TotalApartments  int64          `json:"totalApartments"`
	AverageOccupancy float64        `json:"averageOccupancy"`
}

// Occupancy groups confirmed and checked-in stays by check-in day and
// reports how many distinct apartments each day filled.
func (r *ReportQueries) Occupancy(ctx context.Context, from, to time.Time) (*OccupancyReport, error) {
	var total int64
	if err := r.db.WithContext(ctx).Table("apartments").
		Where("is_active = ?", true).Count(&total).Error; err != nil {
		return nil, wrapStoreErr("reports: occupancy apartments", err)
	}

	q := r.db.WithContext(ctx).Model(&booking.Booking{}).
		Select("from_datetime", "apartment_id").
		Where("booking_status IN ?", []booking.Status{booking.StatusConfirmed, booking.StatusCheckedIn})
	if !from.IsZero() {
		q = q.Where("from_datetime >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("to_datetime <= ?", to)
	}

	var rows []booking.Booking
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrapStoreErr("reports: occupancy", err)
	}

	byDay := make(map[string]map[uint]struct{})
	for _, b := range rows {
		key := b.FromDatetime.Format("2006-01-02")
		if byDay[key] == nil {
			byDay[key] = make(map[uint]struct{})
		}
		byDay[key][b.ApartmentID] = struct{}{}
	}

	report := &OccupancyReport{Days: make([]OccupancyDay, 0, len(byDay)), TotalApartments: total}
	var rateSum float64
	for key, apartments := range byDay {
		day := OccupancyDay{Date: key, OccupiedApartments: int64(len(apartments))}
		if total > 0 {
			day.OccupancyRate = float64(len(apartments)) / float64(total) * 100
		}
		rateSum += day.OccupancyRate
		report.Days = append(report.Days, day)
	}
	sort.Slice(report.Days, func(i, j int) bool { return report.Days[i].Date < report.Days[j].Date })
	if len(report.Days) > 0 {
		report.AverageOccupancy = rateSum / float64(len(report.Days))
	}
	return report, nil
}

type MovementsReport struct {
	Date       string            `json:"date"`
	Arrivals   []booking.Booking `json:"arrivals"`
	Departures []booking.Booking `json:"departures"`
}

// ArrivalsDepartures lists who checks in and out on the given day.
func (r *ReportQueries) ArrivalsDepartures(ctx context.Context, day time.Time) (*MovementsReport, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	report := &MovementsReport{Date: dayStart.Format("2006-01-02")}
	err := r.db.WithContext(ctx).
		Where("booking_status IN ?", []booking.Status{booking.StatusConfirmed, booking.StatusCheckedIn}).
		Where("from_datetime BETWEEN ? AND ?", dayStart, dayEnd).
		Order("from_datetime").
		Preload("Guest").Preload("Apartment").
		Find(&report.Arrivals).Error
	if err != nil {
		return nil, wrapStoreErr("reports: arrivals", err)
	}
	err = r.db.WithContext(ctx).
		Where("booking_status IN ?", []booking.Status{booking.StatusConfirmed, booking.StatusCheckedIn, booking.StatusCheckedOut}).
		Where("to_datetime BETWEEN ? AND ?", dayStart, dayEnd).
		Order("to_datetime").
		Preload("Guest").Preload("Apartment").
		Find(&report.Departures).Error
	if err != nil {
		return nil, wrapStoreErr("reports: departures", err)
	}
	return report, nil
}

type OutstandingReport struct {
	Bookings         []booking.Booking `json:"bookings"`
	TotalOutstanding decimal.Decimal   `json:"totalOutstanding"`
	Count            int               `json:"count"`
}

// OutstandingBalances lists non-cancelled bookings that still owe money,
// largest balance first.
func (r *ReportQueries) OutstandingBalances(ctx context.Context) (*OutstandingReport, error) {
	report := &OutstandingReport{TotalOutstanding: decimal.Zero}
	err := r.db.WithContext(ctx).
		Where("payment_status IN ?", []booking.PaymentStatus{booking.PaymentPending, booking.PaymentPartiallyPaid}).
		Where("booking_status <> ?", booking.StatusCancelled).
		Order("(grand_total - amount_paid) DESC").
		Preload("Guest").Preload("Apartment").
		Find(&report.Bookings).Error
	if err != nil {
		return nil, wrapStoreErr("reports: outstanding balances", err)
	}
	for _, b := range report.Bookings {
		report.TotalOutstanding = report.TotalOutstanding.Add(b.GrandTotal.Sub(b.AmountPaid))
	}
	report.Count = len(report.Bookings)
	return report, nil
}

type GuestTypeShare struct {
	GuestType  string  `json:"guestType"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

type TopGuest struct {
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	GuestType  string          `json:"guestType"`
	Bookings   int64           `gorm:"column:total_bookings" json:"bookings"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}

type MonthGuestCount struct {
	Month     string `json:"month"`
	NewGuests int64  `json:"newGuests"`
}

type GuestStatistics struct {
	TypeShares        []GuestTypeShare  `json:"typeShares"`
	TopGuests         []TopGuest        `json:"topGuests"`
	NewGuestsPerMonth []MonthGuestCount `json:"newGuestsPerMonth"`
}

func (r *ReportQueries) GuestStatistics(ctx context.Context, from, to time.Time) (*GuestStatistics, error) {
	stats := &GuestStatistics{}

	// qualified so the filter survives the bookings join below
	guests := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&guest.Guest{})
		if !from.IsZero() {
			q = q.Where("guests.created_at >= ?", from)
		}
		if !to.IsZero() {
			q = q.Where("guests.created_at <= ?", to)
		}
		return q
	}

	if err := guests().
		Select("guest_type AS guest_type, COUNT(*) AS count").
		Group("guest_type").
		Scan(&stats.TypeShares).Error; err != nil {
		return nil, wrapStoreErr("reports: guest types", err)
	}
	var totalGuests int64
	for _, s := range stats.TypeShares {
		totalGuests += s.Count
	}
	for i := range stats.TypeShares {
		if totalGuests > 0 {
			stats.TypeShares[i].Percentage = float64(stats.TypeShares[i].Count) / float64(totalGuests) * 100
		}
	}

	if err := guests().
		Select("guests.name, guests.phone, guests.guest_type, COUNT(bookings.id) AS total_bookings, COALESCE(SUM(bookings.grand_total), 0) AS total_spent").
		Joins("JOIN bookings ON bookings.guest_id = guests.id").
		Group("guests.id, guests.name, guests.phone, guests.guest_type").
		Order("total_bookings DESC").
		Limit(10).
		Scan(&stats.TopGuests).Error; err != nil {
		return nil, wrapStoreErr("reports: top guests", err)
	}

	var rows []guest.Guest
	if err := guests().Select("created_at").Find(&rows).Error; err != nil {
		return nil, wrapStoreErr("reports: new guests", err)
	}
	byMonth := make(map[string]int64)
	for _, g := range rows {
		byMonth[g.CreatedAt.Format("2006-01")]++
	}
	for month, count := range byMonth {
		stats.NewGuestsPerMonth = append(stats.NewGuestsPerMonth, MonthGuestCount{Month: month, NewGuests: count})
	}
	sort.Slice(stats.NewGuestsPerMonth, func(i, j int) bool {
		return stats.NewGuestsPerMonth[i].Month > stats.NewGuestsPerMonth[j].Month
	})
	if len(stats.NewGuestsPerMonth) > 12 {
		stats.NewGuestsPerMonth = stats.NewGuestsPerMonth[:12]
	}
	return stats, nil
}

type ApartmentPerformance struct {
	ApartmentName       string          `json:"apartmentName"`
	Floor               string          `json:"floor"`
	Bookings            int64           `gorm:"column:total_bookings" json:"bookings"`
	Revenue             decimal.Decimal `json:"revenue"`
	AverageBookingValue decimal.Decimal `json:"averageBookingValue"`
	DaysBooked          int64           `json:"daysBooked"`
	OccupancyRate       float64         `json:"occupancyRate"`
}

// ApartmentPerformance ranks active apartments by revenue over the window.
// Occupancy is booked days against the window length.
func (r *ReportQueries) ApartmentPerformance(ctx context.Context, from, to time.Time, now time.Time) ([]ApartmentPerformance, error) {
	join := "LEFT JOIN bookings ON bookings.apartment_id = apartments.id AND bookings.booking_status <> ?"
	args := []any{booking.StatusCancelled}
	if !from.IsZero() {
		join += " AND bookings.from_datetime >= ?"
		args = append(args, from)
	}
	if !to.IsZero() {
		join += " AND bookings.to_datetime <= ?"
		args = append(args, to)
	}

	var out []ApartmentPerformance
	err := r.db.WithContext(ctx).Table("apartments").
		Select("apartments.name AS apartment_name, apartments.floor, COUNT(bookings.id) AS total_bookings, COALESCE(SUM(bookings.grand_total), 0) AS revenue, COALESCE(SUM(bookings.days), 0) AS days_booked").
		Joins(join, args...).
		Where("apartments.is_active = ?", true).
		Group("apartments.id, apartments.name, apartments.floor").
		Order("revenue DESC").
		Scan(&out).Error
	if err != nil {
		return nil, wrapStoreErr("reports: apartment performance", err)
	}

	windowEnd := to
	if windowEnd.IsZero() {
		windowEnd = now
	}
	windowStart := from
	if windowStart.IsZero() {
		windowStart = time.Date(2020, 1, 1, 0, 0, 0, 0, now.Location())
	}
	windowDays := int64(windowEnd.Sub(windowStart).Hours()/24) + 1

	for i := range out {
		p := &out[i]
		if p.Bookings > 0 {
			p.AverageBookingValue = p.Revenue.Div(decimal.NewFromInt(p.Bookings)).Round(2)
		}
		if windowDays > 0 {
			p.OccupancyRate = float64(p.DaysBooked) / float64(windowDays) * 100
		}
	}
	return out, nil
}

type PaymentBreakdown struct {
	Key        string          `json:"key"`
	Count      int64           `json:"count"`
	Total      decimal.Decimal `json:"total"`
	Percentage float64         `json:"percentage"`
}

type DailyPayments struct {
	Date                string          `json:"date"`
	Bookings            int64           `json:"bookings"`
	Revenue             decimal.Decimal `json:"revenue"`
	AverageBookingValue decimal.Decimal `json:"averageBookingValue"`
}

type PaymentAnalytics struct {
	ByMethod    []PaymentBreakdown `json:"byMethod"`
	ByStatus    []PaymentBreakdown `json:"byStatus"`
	DailyTrends []DailyPayments    `json:"dailyTrends"`
}

func (r *ReportQueries) PaymentAnalytics(ctx context.Context, from, to time.Time) (*PaymentAnalytics, error) {
	out := &PaymentAnalytics{}

	bookings := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&booking.Booking{})
		return betweenCreated(q, from, to)
	}

	if err := bookings().
		Select("payment_method AS key, COUNT(*) AS count, COALESCE(SUM(grand_total), 0) AS total").
		Group("payment_method").
		Scan(&out.ByMethod).Error; err != nil {
		return nil, wrapStoreErr("reports: payment methods", err)
	}
	if err := bookings().
		Select("payment_status AS key, COUNT(*) AS count, COALESCE(SUM(grand_total), 0) AS total").
		Group("payment_status").
		Scan(&out.ByStatus).Error; err != nil {
		return nil, wrapStoreErr("reports: payment statuses", err)
	}
	fillPercentages(out.ByMethod)
	fillPercentages(out.ByStatus)

	var rows []booking.Booking
	if err := bookings().Select("created_at", "grand_total").Find(&rows).Error; err != nil {
		return nil, wrapStoreErr("reports: payment trends", err)
	}
	byDay := make(map[string]*DailyPayments)
	for _, b := range rows {
		key := b.CreatedAt.Format("2006-01-02")
		d, ok := byDay[key]
		if !ok {
			d = &DailyPayments{Date: key, Revenue: decimal.Zero}
			byDay[key] = d
		}
		d.Bookings++
		d.Revenue = d.Revenue.Add(b.GrandTotal)
	}
	for _, d := range byDay {
		d.AverageBookingValue = d.Revenue.Div(decimal.NewFromInt(d.Bookings)).Round(2)
		out.DailyTrends = append(out.DailyTrends, *d)
	}
	sort.Slice(out.DailyTrends, func(i, j int) bool { return out.DailyTrends[i].Date > out.DailyTrends[j].Date })
	if len(out.DailyTrends) > 30 {
		out.DailyTrends = out.DailyTrends[:30]
	}
	return out, nil
}

func fillPercentages(rows []PaymentBreakdown) {
	var total int64
	for _, r := range rows {
		total += r.Count
	}
	if total == 0 {
		return
	}
	for i := range rows {
		rows[i].Percentage = float64(rows[i].Count) / float64(total) * 100
	}
}

func betweenCreated(q *gorm.DB, from, to time.Time) *gorm.DB {
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at <= ?", to)
	}
	return q
}
