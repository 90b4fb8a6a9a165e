package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testRule() *Rule {
	return &Rule{
		ID:            1,
		Rate13:        dec("100"),
		Rate46:        dec("90"),
		Rate7Plus:     dec("80"),
		SeasonRegular: dec("1.0"),
		SeasonPeak:    dec("1.2"),
		SeasonOffpeak: dec("0.8"),
		TaxPercent:    dec("10"),
		Currency:      "USD",
		EffectiveDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func assertDecEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "want %s, got %s", want, got)
}

func TestCalculateRegularShortStay(t *testing.T) {
	quote, err := Calculator{}.Calculate(3, SeasonRegular, decimal.Zero, testRule())
	require.NoError(t, err)

	assertDecEqual(t, "100", quote.BaseRate)
	assertDecEqual(t, "300", quote.Subtotal)
	assertDecEqual(t, "30", quote.Tax)
	assertDecEqual(t, "330", quote.GrandTotal)
	assert.Equal(t, "USD", quote.Currency)
}

func TestCalculateTierBoundaries(t *testing.T) {
	cases := []struct {
		days int
		rate string
	}{
		{1, "100"},
		{3, "100"},
		{4, "90"},
		{6, "90"},
		{7, "80"},
		{30, "80"},
	}
	for _, tc := range cases {
		quote, err := Calculator{}.Calculate(tc.days, SeasonRegular, decimal.Zero, testRule())
		require.NoError(t, err, "days=%d", tc.days)
		assertDecEqual(t, tc.rate, quote.BaseRate)
	}
}

func TestCalculatePeakWeekWithDiscount(t *testing.T) {
	quote, err := Calculator{}.Calculate(7, SeasonPeak, dec("50"), testRule())
	require.NoError(t, err)

	// 7 * 80 * 1.2 = 672, minus 50 = 622, tax 10% = 62.20
	assertDecEqual(t, "622", quote.Subtotal)
	assertDecEqual(t, "62.2", quote.Tax)
	assertDecEqual(t, "684.2", quote.GrandTotal)
}

func TestCalculateOffpeakMultiplier(t *testing.T) {
	quote, err := Calculator{}.Calculate(2, SeasonOffpeak, decimal.Zero, testRule())
	require.NoError(t, err)

	assertDecEqual(t, "160", quote.Subtotal)
	assertDecEqual(t, "176", quote.GrandTotal)
}

func TestCalculateIsDeterministic(t *testing.T) {
	first, err := Calculator{}.Calculate(5, SeasonPeak, dec("12.34"), testRule())
	require.NoError(t, err)
	second, err := Calculator{}.Calculate(5, SeasonPeak, dec("12.34"), testRule())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculateOversizedDiscountGoesNegative(t *testing.T) {
	quote, err := Calculator{}.Calculate(1, SeasonRegular, dec("500"), testRule())
	require.NoError(t, err)

	assertDecEqual(t, "-400", quote.Subtotal)
	assertDecEqual(t, "-40", quote.Tax)
	assertDecEqual(t, "-440", quote.GrandTotal)
}

func TestCalculateClampedSubtotalFloorsAtZero(t *testing.T) {
	quote, err := Calculator{ClampSubtotal: true}.Calculate(1, SeasonRegular, dec("500"), testRule())
	require.NoError(t, err)

	assertDecEqual(t, "0", quote.Subtotal)
	assertDecEqual(t, "0", quote.Tax)
	assertDecEqual(t, "0", quote.GrandTotal)
}

func TestCalculateRejectsBadInputs(t *testing.T) {
	_, err := Calculator{}.Calculate(0, SeasonRegular, decimal.Zero, testRule())
	assert.ErrorIs(t, err, ErrInvalidDays)

	_, err = Calculator{}.Calculate(2, SeasonRegular, dec("-1"), testRule())
	assert.ErrorIs(t, err, ErrNegativeDiscount)

	_, err = Calculator{}.Calculate(2, Season("monsoon"), decimal.Zero, testRule())
	assert.ErrorIs(t, err, ErrInvalidSeason)

	_, err = Calculator{}.Calculate(2, SeasonRegular, decimal.Zero, nil)
	assert.ErrorIs(t, err, ErrNoRule)
}

func TestParseSeason(t *testing.T) {
	season, err := ParseSeason("  Peak ")
	require.NoError(t, err)
	assert.Equal(t, SeasonPeak, season)

	_, err = ParseSeason("summer")
	assert.ErrorIs(t, err, ErrInvalidSeason)
}
