package user

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound         = errors.New("user: not found")
	ErrEmailAlreadyUsed = errors.New("user: email already in use")
	ErrEmailRequired    = errors.New("user: email required")
	ErrNameRequired     = errors.New("user: name required")
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"type:varchar(15);not null;default:admin" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u User) IsSuperAdmin() bool { return u.Role == RoleSuperAdmin }

// NormalizeEmail lowercases and trims an email for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

type Repository interface {
	ByID(ctx context.Context, id uint) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	Deactivate(ctx context.Context, id uint) error
}
