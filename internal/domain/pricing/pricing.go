package pricing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNoRule          = errors.New("pricing: no pricing rule in effect")
	ErrRuleNotFound    = errors.New("pricing: rule not found")
	ErrInvalidSeason   = errors.New("pricing: unknown season")
	ErrRuleIsActive    = errors.New("pricing: cannot delete the currently active rule")
	ErrEffectiveInPast = errors.New("pricing: effective date must be today or later")
)

type Season string

const (
	SeasonRegular Season = "regular"
	SeasonPeak    Season = "peak"
	SeasonOffpeak Season = "offpeak"
)

// ParseSeason normalizes and validates a season name coming from the API.
func ParseSeason(raw string) (Season, error) {
	switch Season(strings.ToLower(strings.TrimSpace(raw))) {
	case SeasonRegular:
		return SeasonRegular, nil
	case SeasonPeak:
		return SeasonPeak, nil
	case SeasonOffpeak:
		return SeasonOffpeak, nil
	default:
		return "", ErrInvalidSeason
	}
}

// Rule holds the tiered day rates, season multipliers and tax that were in
// force from EffectiveDate on. Rules are append-only history; the rule with
// the latest effective date that is not in the future wins.
type Rule struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Rate13        decimal.Decimal `gorm:"column:rate_1_3;type:decimal(10,2);not null" json:"rate_1_3"`
	Rate46        decimal.Decimal `gorm:"column:rate_4_6;type:decimal(10,2);not null" json:"rate_4_6"`
	Rate7Plus     decimal.Decimal `gorm:"column:rate_7_plus;type:decimal(10,2);not null" json:"rate_7_plus"`
	SeasonRegular decimal.Decimal `gorm:"type:decimal(6,3);not null" json:"season_regular"`
	SeasonPeak    decimal.Decimal `gorm:"type:decimal(6,3);not null" json:"season_peak"`
	SeasonOffpeak decimal.Decimal `gorm:"type:decimal(6,3);not null" json:"season_offpeak"`
	TaxPercent    decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_percent"`
	Currency      string          `gorm:"type:char(3);not null;default:USD" json:"currency"`
	EffectiveDate time.Time       `gorm:"not null;index" json:"effective_date"`
	UpdatedBy     uint            `json:"updated_by"`
	UpdatedByName string          `gorm:"->;-:migration" json:"updated_by_name,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Rule) TableName() string { return "pricing_rules" }

// BaseRate selects the per-day tier rate for a stay length. The tier
// boundaries are inclusive on their upper end: a 3-day stay is still the
// 1-3 tier, a 4-day stay is already the 4-6 tier.
func (r Rule) BaseRate(days int) decimal.Decimal {
	switch {
	case days <= 3:
		return r.Rate13
	case days <= 6:
		return r.Rate46
	default:
		return r.Rate7Plus
	}
}

// Multiplier returns the season factor via an explicit lookup. An
// unrecognized season is a configuration error, never a silent 1.0.
func (r Rule) Multiplier(season Season) (decimal.Decimal, error) {
	switch season {
	case SeasonRegular:
		return r.SeasonRegular, nil
	case SeasonPeak:
		return r.SeasonPeak, nil
	case SeasonOffpeak:
		return r.SeasonOffpeak, nil
	default:
		return decimal.Decimal{}, ErrInvalidSeason
	}
}

// Repository is the pricing rule store. Current returns ErrNoRule when no
// rule has an effective date at or before the given instant.
type Repository interface {
	Current(ctx context.Context, at time.Time) (*Rule, error)
	ByID(ctx context.Context, id uint) (*Rule, error)
	List(ctx context.Context) ([]Rule, error)
	History(ctx context.Context, limit int) ([]Rule, error)
	Create(ctx context.Context, rule *Rule) error
	Update(ctx context.Context, rule *Rule) error
	Delete(ctx context.Context, id uint) error
}
