package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"stayadmin/internal/domain/booking"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) ByID(ctx context.Context, id uint) (*booking.Booking, error) {
	var b booking.Booking
	err := r.db.WithContext(ctx).Preload("Guest").Preload("Apartment").First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, wrapStoreErr("bookings: load", err)
	}
	return &b, nil
}

var bookingSortColumns = map[string]string{
	"created_at":    "bookings.created_at",
	"from_datetime": "bookings.from_datetime",
	"guest_name":    "guests.name",
}

func (r *BookingRepository) List(ctx context.Context, f booking.Filter) ([]booking.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&booking.Booking{}).
		Joins("LEFT JOIN guests ON guests.id = bookings.guest_id")
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("guests.name LIKE ? OR guests.phone LIKE ? OR CAST(bookings.id AS TEXT) LIKE ?", like, like, like)
	}
	if f.DateFrom != nil {
		q = q.Where("bookings.from_datetime >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("bookings.to_datetime <= ?", *f.DateTo)
	}
	if f.ApartmentID != 0 {
		q = q.Where("bookings.apartment_id = ?", f.ApartmentID)
	}
	if f.GuestType != "" {
		q = q.Where("guests.guest_type = ?", f.GuestType)
	}
	if f.PaymentStatus != "" {
		q = q.Where("bookings.payment_status = ?", f.PaymentStatus)
	}
	if f.BookingStatus != "" {
		q = q.Where("bookings.booking_status = ?", f.BookingStatus)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrapStoreErr("bookings: count", err)
	}

	sortCol, ok := bookingSortColumns[f.Sort]
	if !ok {
		sortCol = "bookings.created_at"
	}
	direction := "DESC"
	if f.Order == "asc" {
		direction = "ASC"
	}
	page, limit := normalizePage(f.Page, f.Limit)

	var items []booking.Booking
	err := q.Order(sortCol + " " + direction).
		Limit(limit).Offset((page - 1) * limit).
		Preload("Guest").Preload("Apartment").
		Find(&items).Error
	if err != nil {
		return nil, 0, wrapStoreErr("bookings: list", err)
	}
	return items, total, nil
}

func (r *BookingRepository) ListByApartment(ctx context.Context, apartmentID uint, status string, limit int) ([]booking.Booking, error) {
	q := r.db.WithContext(ctx).Where("apartment_id = ?", apartmentID)
	if status != "" {
		q = q.Where("booking_status = ?", status)
	}
	if limit <= 0 {
		limit = 20
	}
	var items []booking.Booking
	if err := q.Order("created_at DESC").Limit(limit).Preload("Guest").Find(&items).Error; err != nil {
		return nil, wrapStoreErr("bookings: list by apartment", err)
	}
	return items, nil
}

// Overlapping returns every non-cancelled booking whose interval touches
// [q.From, q.To], boundaries included.
func (r *BookingRepository) Overlapping(ctx context.Context, q booking.ConflictQuery) ([]booking.Booking, error) {
	tx := r.db.WithContext(ctx).
		Where("apartment_id = ?", q.ApartmentID).
		Where("booking_status <> ?", booking.StatusCancelled).
		Where("from_datetime <= ? AND to_datetime >= ?", q.To, q.From)
	if q.ExcludeID != 0 {
		tx = tx.Where("id <> ?", q.ExcludeID)
	}
	var out []booking.Booking
	if err := tx.Order("from_datetime").Preload("Guest").Find(&out).Error; err != nil {
		return nil, wrapStoreErr("bookings: overlap query", err)
	}
	return out, nil
}

const guardedInsertSQL = `
INSERT INTO bookings
	(guest_id, apartment_id, floor, unit_no, from_datetime, to_datetime, days, season,
	 base_rate, multiplier, subtotal, discount, tax, grand_total,
	 payment_type, amount_paid, payment_status, payment_method, booking_status,
	 booking_by_user, email_sent, created_at, updated_at)
SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
WHERE NOT EXISTS (
	SELECT 1 FROM bookings
	WHERE apartment_id = ?
	  AND booking_status <> 'cancelled'
	  AND from_datetime <= ? AND to_datetime >= ?
)
RETURNING id`

// CreateGuarded inserts the booking and re-runs the overlap check inside the
// same statement, so the check and the write cannot be interleaved by a
// concurrent request. A blocked insert yields *booking.ConflictError; the
// caller fills in the conflict list outside the transaction.
func (r *BookingRepository) CreateGuarded(ctx context.Context, b *booking.Booking) error {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	var id uint
	res := r.db.WithContext(ctx).Raw(guardedInsertSQL,
		b.GuestID, b.ApartmentID, b.Floor, b.UnitNo, b.FromDatetime, b.ToDatetime, b.Days, b.Season,
		b.BaseRate, b.Multiplier, b.Subtotal, b.Discount, b.Tax, b.GrandTotal,
		b.PaymentType, b.AmountPaid, b.PaymentStatus, b.PaymentMethod, b.BookingStatus,
		b.BookingByUser, b.EmailSent, b.CreatedAt, b.UpdatedAt,
		b.ApartmentID, b.ToDatetime, b.FromDatetime,
	).Scan(&id)
	if res.Error != nil {
		if isExclusionViolation(res.Error) {
			return &booking.ConflictError{}
		}
		return wrapStoreErr("bookings: insert", res.Error)
	}
	if id == 0 {
		return &booking.ConflictError{}
	}
	b.ID = id
	return nil
}

const guardedUpdateSQL = `
UPDATE bookings SET
	apartment_id = ?, floor = ?, unit_no = ?, from_datetime = ?, to_datetime = ?, days = ?,
	season = ?, base_rate = ?, multiplier = ?, subtotal = ?, discount = ?, tax = ?, grand_total = ?,
	payment_type = ?, amount_paid = ?, payment_status = ?, payment_method = ?, booking_status = ?,
	email_sent = ?, updated_at = ?
WHERE id = ?
  AND NOT EXISTS (
	SELECT 1 FROM bookings other
	WHERE other.apartment_id = ?
	  AND other.id <> ?
	  AND other.booking_status <> 'cancelled'
	  AND other.from_datetime <= ? AND other.to_datetime >= ?
)`

// UpdateGuarded rewrites the booking with freshly computed totals, excluding
// the booking itself from the overlap check.
func (r *BookingRepository) UpdateGuarded(ctx context.Context, b *booking.Booking) error {
	b.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Exec(guardedUpdateSQL,
		b.ApartmentID, b.Floor, b.UnitNo, b.FromDatetime, b.ToDatetime, b.Days,
		b.Season, b.BaseRate, b.Multiplier, b.Subtotal, b.Discount, b.Tax, b.GrandTotal,
		b.PaymentType, b.AmountPaid, b.PaymentStatus, b.PaymentMethod, b.BookingStatus,
		b.EmailSent, b.UpdatedAt,
		b.ID,
		b.ApartmentID, b.ID, b.ToDatetime, b.FromDatetime,
	)
	if res.Error != nil {
		if isExclusionViolation(res.Error) {
			return &booking.ConflictError{}
		}
		return wrapStoreErr("bookings: update", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&booking.Booking{}).Where("id = ?", b.ID).Count(&count).Error; err != nil {
			return wrapStoreErr("bookings: update check", err)
		}
		if count == 0 {
			return booking.ErrNotFound
		}
		return &booking.ConflictError{}
	}
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&booking.Booking{}, id)
	if res.Error != nil {
		return wrapStoreErr("bookings: delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func (r *BookingRepository) MarkEmailSent(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&booking.Booking{}).Where("id = ?", id).
		Update("email_sent", true).Error
	if err != nil {
		return wrapStoreErr("bookings: mark email sent", err)
	}
	return nil
}

func (r *BookingRepository) CountByApartment(ctx context.Context, apartmentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&booking.Booking{}).
		Where("apartment_id = ?", apartmentID).Count(&count).Error
	if err != nil {
		return 0, wrapStoreErr("bookings: count by apartment", err)
	}
	return count, nil
}

// 23P01 is exclusion_violation; raised when the gist constraint catches a
// concurrent overlapping write the NOT EXISTS guard could not see.
func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

var _ booking.Repository = (*BookingRepository)(nil)
