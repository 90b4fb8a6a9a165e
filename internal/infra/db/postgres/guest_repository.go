package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"stayadmin/internal/domain/guest"
)

type GuestRepository struct {
	db *gorm.DB
}

func NewGuestRepository(db *gorm.DB) *GuestRepository {
	return &GuestRepository{db: db}
}

func (r *GuestRepository) ByID(ctx context.Context, id uint) (*guest.Guest, error) {
	var g guest.Guest
	err := r.db.WithContext(ctx).First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, guest.ErrNotFound
	}
	if err != nil {
		return nil, wrapStoreErr("guests: load", err)
	}
	return &g, nil
}

// ByPhone backs the find-or-create step on the booking write path.
func (r *GuestRepository) ByPhone(ctx context.Context, phone string) (*guest.Guest, error) {
	var g guest.Guest
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, guest.ErrNotFound
	}
	if err != nil {
		return nil, wrapStoreErr("guests: load by phone", err)
	}
	return &g, nil
}

var guestSortColumns = map[string]string{
	"name":       "name",
	"phone":      "phone",
	"created_at": "created_at",
}

func (r *GuestRepository) List(ctx context.Context, f guest.Filter) ([]guest.Guest, int64, error) {
	q := r.db.WithContext(ctx).Model(&guest.Guest{})
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("name LIKE ? OR phone LIKE ? OR email LIKE ?", like, like, like)
	}
	if f.GuestType != "" {
		q = q.Where("guest_type = ?", f.GuestType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrapStoreErr("guests: count", err)
	}

	sortCol, ok := guestSortColumns[f.Sort]
	if !ok {
		sortCol = "created_at"
	}
	direction := "DESC"
	if f.Order == "asc" {
		direction = "ASC"
	}
	page, limit := normalizePage(f.Page, f.Limit)

	var items []guest.Guest
	err := q.Order(sortCol + " " + direction).
		Limit(limit).Offset((page - 1) * limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, wrapStoreErr("guests: list", err)
	}
	return items, total, nil
}

func (r *GuestRepository) Create(ctx context.Context, g *guest.Guest) error {
	if err := r.db.WithContext(ctx).Create(g).Error; err != nil {
		return wrapStoreErr("guests: create", err)
	}
	return nil
}

func (r *GuestRepository) Update(ctx context.Context, g *guest.Guest) error {
	res := r.db.WithContext(ctx).Model(&guest.Guest{}).Where("id = ?", g.ID).
		Select("name", "phone", "email", "address", "guest_type",
			"place_or_country", "introduced", "introduced_by", "updated_at").
		Updates(g)
	if res.Error != nil {
		return wrapStoreErr("guests: update", res.Error)
	}
	if res.RowsAffected == 0 {
		return guest.ErrNotFound
	}
	return nil
}

func (r *GuestRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&guest.Guest{}, id)
	if res.Error != nil {
		return wrapStoreErr("guests: delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return guest.ErrNotFound
	}
	return nil
}

var _ guest.Repository = (*GuestRepository)(nil)
