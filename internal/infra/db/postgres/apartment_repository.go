package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"stayadmin/internal/domain/apartment"
)

type ApartmentRepository struct {
	db *gorm.DB
}

func NewApartmentRepository(db *gorm.DB) *ApartmentRepository {
	return &ApartmentRepository{db: db}
}

func (r *ApartmentRepository) ByID(ctx context.Context, id uint) (*apartment.Apartment, error) {
	var a apartment.Apartment
	err := r.db.WithContext(ctx).Where("is_active = ?", true).First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apartment.ErrNotFound
	}
	if err != nil {
		return nil, wrapStoreErr("apartments: load", err)
	}
	return &a, nil
}

func (r *ApartmentRepository) ListActive(ctx context.Context) ([]apartment.Apartment, error) {
	var items []apartment.Apartment
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&items).Error
	if err != nil {
		return nil, wrapStoreErr("apartments: list", err)
	}
	return items, nil
}

func (r *ApartmentRepository) NameExists(ctx context.Context, name string, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&apartment.Apartment{}).
		Where("name = ? AND is_active = ?", name, true)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, wrapStoreErr("apartments: name check", err)
	}
	return count > 0, nil
}

func (r *ApartmentRepository) Create(ctx context.Context, a *apartment.Apartment) error {
	a.IsActive = true
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return wrapStoreErr("apartments: create", err)
	}
	return nil
}

func (r *ApartmentRepository) Update(ctx context.Context, a *apartment.Apartment) error {
	res := r.db.WithContext(ctx).Model(&apartment.Apartment{}).
		Where("id = ? AND is_active = ?", a.ID, true).
		Select("name", "floor", "unit", "updated_at").
		Updates(a)
	if res.Error != nil {
		return wrapStoreErr("apartments: update", res.Error)
	}
	if res.RowsAffected == 0 {
		return apartment.ErrNotFound
	}
	return nil
}

func (r *ApartmentRepository) Deactivate(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&apartment.Apartment{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return wrapStoreErr("apartments: deactivate", res.Error)
	}
	if res.RowsAffected == 0 {
		return apartment.ErrNotFound
	}
	return nil
}

func (r *ApartmentRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&apartment.Apartment{}).
		Where("is_active = ?", true).Count(&count).Error
	if err != nil {
		return 0, wrapStoreErr("apartments: count", err)
	}
	return count, nil
}

var _ apartment.Repository = (*ApartmentRepository)(nil)
