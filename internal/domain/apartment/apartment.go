package apartment

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("apartment: not found")
	ErrNameTaken   = errors.New("apartment: name already exists")
	ErrHasBookings = errors.New("apartment: cannot delete apartment with existing bookings")
)

// Apartment is a rentable unit. Deletion is soft: IsActive flips to false
// and the record stays for historical bookings.
type Apartment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;index" json:"name"`
	Floor     string    `gorm:"type:varchar(10)" json:"floor,omitempty"`
	Unit      string    `gorm:"type:varchar(50)" json:"unit,omitempty"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Apartment) TableName() string { return "apartments" }

type Repository interface {
	ByID(ctx context.Context, id uint) (*Apartment, error)
	ListActive(ctx context.Context) ([]Apartment, error)
	NameExists(ctx context.Context, name string, excludeID uint) (bool, error)
	Create(ctx context.Context, a *Apartment) error
	Update(ctx context.Context, a *Apartment) error
	Deactivate(ctx context.Context, id uint) error
	CountActive(ctx context.Context) (int64, error)
}
