package booking

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stayadmin/internal/domain/apartment"
	"stayadmin/internal/domain/guest"
	"stayadmin/internal/domain/pricing"
)

var (
	ErrNotFound    = errors.New("booking: not found")
	ErrInvalidStay = errors.New("booking: check-in must be before check-out")
	ErrBadStatus   = errors.New("booking: unknown booking status")
)

type Status string

const (
	StatusDraft      Status = "draft"
	StatusTentative  Status = "tentative"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked-in"
	StatusCheckedOut Status = "checked-out"
	StatusCancelled  Status = "cancelled"
)

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusDraft, StatusTentative, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		return s, nil
	default:
		return "", ErrBadStatus
	}
}

type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentPaid          PaymentStatus = "paid"
)

type PaymentType string

const (
	PaymentTypeFull    PaymentType = "full"
	PaymentTypeAdvance PaymentType = "advance"
	PaymentTypeOther   PaymentType = "other"
)

// Booking is a stay reservation with its full price breakdown denormalized
// onto the row. Totals are recomputed from scratch on every update, never
// patched incrementally.
type Booking struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	GuestID       uint            `gorm:"not null;index" json:"guest_id"`
	ApartmentID   uint            `gorm:"not null;index" json:"apartment_id"`
	Floor         string          `json:"floor,omitempty"`
	UnitNo        string          `json:"unit_no,omitempty"`
	FromDatetime  time.Time       `gorm:"not null;index" json:"from_datetime"`
	ToDatetime    time.Time       `gorm:"not null;index" json:"to_datetime"`
	Days          int             `gorm:"not null" json:"days"`
	Season        pricing.Season  `gorm:"type:varchar(10);not null;default:regular" json:"season"`
	BaseRate      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"base_rate"`
	Multiplier    decimal.Decimal `gorm:"type:decimal(6,3);not null" json:"multiplier"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Discount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax"`
	GrandTotal    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"grand_total"`
	PaymentType   PaymentType     `gorm:"type:varchar(10);not null" json:"payment_type"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount_paid"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:pending" json:"payment_status"`
	PaymentMethod string          `gorm:"type:varchar(20);not null;default:cash" json:"payment_method"`
	BookingStatus Status          `gorm:"type:varchar(15);not null;default:draft;index" json:"booking_status"`
	BookingByUser uint            `json:"booking_by_user"`
	EmailSent     bool            `gorm:"not null;default:false" json:"email_sent"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Guest     *guest.Guest         `gorm:"foreignKey:GuestID" json:"guest,omitempty"`
	Apartment *apartment.Apartment `gorm:"foreignKey:ApartmentID" json:"apartment,omitempty"`
}

func (Booking) TableName() string { return "bookings" }

// ValidateStay rejects non-chronological intervals. Both bounds are
// instants, not bare dates.
func ValidateStay(from, to time.Time) error {
	if !from.Before(to) {
		return ErrInvalidStay
	}
	return nil
}

// StayDays counts billable days as the stay span rounded up to whole days,
// so a 46-hour stay bills two days.
func StayDays(from, to time.Time) int {
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}
