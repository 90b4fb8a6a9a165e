package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"stayadmin/internal/domain/pricing"
)

type PricingRepository struct {
	db *gorm.DB
}

func NewPricingRepository(db *gorm.DB) *PricingRepository {
	return &PricingRepository{db: db}
}

// Current resolves the rule in force: the latest effective date that is not
// in the future. ErrNoRule when nothing qualifies.
func (r *PricingRepository) Current(ctx context.Context, at time.Time) (*pricing.Rule, error) {
	var rule pricing.Rule
	err := r.db.WithContext(ctx).
		Where("effective_date <= ?", at).
		Order("effective_date DESC").
		First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pricing.ErrNoRule
	}
	if err != nil {
		return nil, wrapStoreErr("pricing: current rule", err)
	}
	return &rule, nil
}

func (r *PricingRepository) ByID(ctx context.Context, id uint) (*pricing.Rule, error) {
	var rule pricing.Rule
	err := r.db.WithContext(ctx).
		Select("pricing_rules.*, users.name AS updated_by_name").
		Joins("LEFT JOIN users ON users.id = pricing_rules.updated_by").
		Where("pricing_rules.id = ?", id).
		First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pricing.ErrRuleNotFound
	}
	if err != nil {
		return nil, wrapStoreErr("pricing: load rule", err)
	}
	return &rule, nil
}

func (r *PricingRepository) List(ctx context.Context) ([]pricing.Rule, error) {
	var rules []pricing.Rule
	err := r.db.WithContext(ctx).Model(&pricing.Rule{}).
		Select("pricing_rules.*, users.name AS updated_by_name").
		Joins("LEFT JOIN users ON users.id = pricing_rules.updated_by").
		Order("pricing_rules.effective_date DESC").
		Find(&rules).Error
	if err != nil {
		return nil, wrapStoreErr("pricing: list rules", err)
	}
	return rules, nil
}

func (r *PricingRepository) History(ctx context.Context, limit int) ([]pricing.Rule, error) {
	if limit <= 0 {
		limit = 10
	}
	var rules []pricing.Rule
	err := r.db.WithContext(ctx).Model(&pricing.Rule{}).
		Select("pricing_rules.*, users.name AS updated_by_name").
		Joins("LEFT JOIN users ON users.id = pricing_rules.updated_by").
		Order("pricing_rules.effective_date DESC").
		Limit(limit).
		Find(&rules).Error
	if err != nil {
		return nil, wrapStoreErr("pricing: history", err)
	}
	return rules, nil
}

func (r *PricingRepository) Create(ctx context.Context, rule *pricing.Rule) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return wrapStoreErr("pricing: create rule", err)
	}
	return nil
}

func (r *PricingRepository) Update(ctx context.Context, rule *pricing.Rule) error {
	res := r.db.WithContext(ctx).Model(&pricing.Rule{}).Where("id = ?", rule.ID).
		Select("rate_1_3", "rate_4_6", "rate_7_plus",
			"season_regular", "season_peak", "season_offpeak",
			"tax_percent", "currency", "effective_date", "updated_by", "updated_at").
		Updates(rule)
	if res.Error != nil {
		return wrapStoreErr("pricing: update rule", res.Error)
	}
	if res.RowsAffected == 0 {
		return pricing.ErrRuleNotFound
	}
	return nil
}

func (r *PricingRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&pricing.Rule{}, id)
	if res.Error != nil {
		return wrapStoreErr("pricing: delete rule", res.Error)
	}
	if res.RowsAffected == 0 {
		return pricing.ErrRuleNotFound
	}
	return nil
}

var _ pricing.Repository = (*PricingRepository)(nil)
