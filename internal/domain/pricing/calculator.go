package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDays      = errors.New("pricing: days must be at least 1")
	ErrNegativeDiscount = errors.New("pricing: discount cannot be negative")
)

// Quote is a fully computed price breakdown for a stay. All amounts carry
// two fractional digits and recomputing with identical inputs yields an
// identical quote.
type Quote struct {
	Days       int             `json:"days"`
	Season     Season          `json:"season"`
	BaseRate   decimal.Decimal `json:"baseRate"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	Currency   string          `json:"currency"`
}

// Calculator prices a stay against a pricing rule.
//
// ClampSubtotal controls what happens when the discount exceeds the
// pre-discount amount: off (the default) reproduces the legacy behaviour of
// letting subtotal, tax and grand total go negative; on floors the subtotal
// at zero before tax.
type Calculator struct {
	ClampSubtotal bool
}

var oneHundred = decimal.NewFromInt(100)

// Calculate prices a stay: tier rate by length, season multiplier, discount
// applied once after the multiplier, then tax on the discounted subtotal.
func (c Calculator) Calculate(days int, season Season, discount decimal.Decimal, rule *Rule) (Quote, error) {
	if days < 1 {
		return Quote{}, ErrInvalidDays
	}
	if discount.IsNegative() {
		return Quote{}, ErrNegativeDiscount
	}
	if rule == nil {
		return Quote{}, ErrNoRule
	}
	multiplier, err := rule.Multiplier(season)
	if err != nil {
		return Quote{}, err
	}

	baseRate := rule.BaseRate(days)
	subtotal := baseRate.Mul(decimal.NewFromInt(int64(days))).Mul(multiplier).Sub(discount).Round(2)
	if c.ClampSubtotal && subtotal.IsNegative() {
		subtotal = decimal.Zero.Round(2)
	}
	tax := subtotal.Mul(rule.TaxPercent).Div(oneHundred).Round(2)
	grandTotal := subtotal.Add(tax).Round(2)

	return Quote{
		Days:       days,
		Season:     season,
		BaseRate:   baseRate,
		Multiplier: multiplier,
		Subtotal:   subtotal,
		Discount:   discount.Round(2),
		Tax:        tax,
		GrandTotal: grandTotal,
		Currency:   rule.Currency,
	}, nil
}
