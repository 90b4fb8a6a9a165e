package guest

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("guest: not found")
	ErrBadType  = errors.New("guest: guest type must be local or foreign")
)

type Type string

const (
	TypeLocal   Type = "local"
	TypeForeign Type = "foreign"
)

func ParseType(raw string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeLocal:
		return TypeLocal, nil
	case TypeForeign:
		return TypeForeign, nil
	default:
		return "", ErrBadType
	}
}

type Guest struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"not null;index" json:"name"`
	Phone          string    `gorm:"not null;index" json:"phone"`
	Email          string    `json:"email,omitempty"`
	Address        string    `json:"address,omitempty"`
	GuestType      Type      `gorm:"type:varchar(10);not null;default:local" json:"guest_type"`
	PlaceOrCountry string    `json:"place_or_country,omitempty"`
	Introduced     string    `gorm:"type:varchar(3);not null;default:no" json:"introduced"`
	IntroducedBy   string    `json:"introduced_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Guest) TableName() string { return "guests" }

type Filter struct {
	Search    string
	GuestType string
	Sort      string
	Order     string
	Page      int
	Limit     int
}

type Repository interface {
	ByID(ctx context.Context, id uint) (*Guest, error)
	ByPhone(ctx context.Context, phone string) (*Guest, error)
	List(ctx context.Context, f Filter) ([]Guest, int64, error)
	Create(ctx context.Context, g *Guest) error
	Update(ctx context.Context, g *Guest) error
	Delete(ctx context.Context, id uint) error
}
