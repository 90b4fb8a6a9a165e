package booking

import (
	"context"
	"time"
)

// Filter narrows and pages booking listings.
type Filter struct {
	Search        string
	DateFrom      *time.Time
	DateTo        *time.Time
	ApartmentID   uint
	GuestType     string
	PaymentStatus string
	BookingStatus string
	Sort          string
	Order         string
	Page          int
	Limit         int
}

// Repository is the booking store. CreateGuarded and UpdateGuarded perform
// the write and the overlap check as one atomic statement so two concurrent
// writers for the same interval cannot both succeed; the loser gets a
// *ConflictError.
type Repository interface {
	ByID(ctx context.Context, id uint) (*Booking, error)
	List(ctx context.Context, f Filter) ([]Booking, int64, error)
	ListByApartment(ctx context.Context, apartmentID uint, status string, limit int) ([]Booking, error)
	Overlapping(ctx context.Context, q ConflictQuery) ([]Booking, error)
	CreateGuarded(ctx context.Context, b *Booking) error
	UpdateGuarded(ctx context.Context, b *Booking) error
	Delete(ctx context.Context, id uint) error
	MarkEmailSent(ctx context.Context, id uint) error
	CountByApartment(ctx context.Context, apartmentID uint) (int64, error)
}
