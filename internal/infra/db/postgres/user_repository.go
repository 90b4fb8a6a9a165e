package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"stayadmin/internal/domain/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) ByID(ctx context.Context, id uint) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, wrapStoreErr("users: load", err)
	}
	return &u, nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", user.NormalizeEmail(email), true).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, wrapStoreErr("users: load by email", err)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	var users []user.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, wrapStoreErr("users: list", err)
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	u.Email = user.NormalizeEmail(u.Email)
	err := r.db.WithContext(ctx).Create(u).Error
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrEmailAlreadyUsed
		}
		return wrapStoreErr("users: create", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	u.Email = user.NormalizeEmail(u.Email)
	res := r.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", u.ID).
		Select("name", "email", "role", "is_active", "updated_at").
		Updates(u)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return user.ErrEmailAlreadyUsed
		}
		return wrapStoreErr("users: update", res.Error)
	}
	if res.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := r.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", id).
		Updates(map[string]any{"password_hash": hash, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return wrapStoreErr("users: update password", res.Error)
	}
	if res.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Deactivate(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&user.User{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return wrapStoreErr("users: deactivate", res.Error)
	}
	if res.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// sqlite (tests) reports unique violations as plain errors
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}

var _ user.Repository = (*UserRepository)(nil)
