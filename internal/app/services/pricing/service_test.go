package pricing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditsvc "stayadmin/internal/app/services/audit"
	domainaudit "stayadmin/internal/domain/audit"
	domainpricing "stayadmin/internal/domain/pricing"
	"stayadmin/internal/infra/db/postgres"
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return &Service{
		UoW:        postgres.Factory{DB: db},
		Rules:      postgres.NewPricingRepository(db),
		Calculator: domainpricing.Calculator{},
		Audit:      &auditsvc.Recorder{},
	}, db
}

func ruleParams(effective time.Time) RuleParams {
	return RuleParams{
		Rate13:        decimal.RequireFromString("100"),
		Rate46:        decimal.RequireFromString("90"),
		Rate7Plus:     decimal.RequireFromString("80"),
		SeasonRegular: decimal.RequireFromString("1.0"),
		SeasonPeak:    decimal.RequireFromString("1.2"),
		SeasonOffpeak: decimal.RequireFromString("0.8"),
		TaxPercent:    decimal.RequireFromString("10"),
		EffectiveDate: effective,
	}
}

func TestCreateRejectsBackdatedRule(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), ruleParams(time.Now().AddDate(0, 0, -2)), 1)
	assert.ErrorIs(t, err, domainpricing.ErrEffectiveInPast)
}

func TestCreateAcceptsTodayAndAudits(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	rule, err := svc.Create(ctx, ruleParams(time.Now()), 3)
	require.NoError(t, err)
	assert.NotZero(t, rule.ID)
	assert.Equal(t, "USD", rule.Currency)
	assert.EqualValues(t, 3, rule.UpdatedBy)

	var entries []domainaudit.Entry
	require.NoError(t, db.Where("entity = ?", "pricing_rule").Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, domainaudit.ActionCreate, entries[0].Action)
}

func TestDeleteProtectsActiveRule(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	active := ruleParams(time.Now())
	rule, err := svc.Create(ctx, active, 1)
	require.NoError(t, err)

	// backdate directly; the service only accepts future dates
	require.NoError(t, db.Model(&domainpricing.Rule{}).Where("id = ?", rule.ID).
		Update("effective_date", time.Now().AddDate(0, -1, 0)).Error)

	assert.ErrorIs(t, svc.Delete(ctx, rule.ID, 1), domainpricing.ErrRuleIsActive)

	future, err := svc.Create(ctx, ruleParams(time.Now().AddDate(0, 0, 5)), 1)
	require.NoError(t, err)
	assert.NoError(t, svc.Delete(ctx, future.ID, 1))
}

func TestQuoteUsesCurrentRule(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	rule, err := svc.Create(ctx, ruleParams(time.Now()), 1)
	require.NoError(t, err)
	require.NoError(t, db.Model(&domainpricing.Rule{}).Where("id = ?", rule.ID).
		Update("effective_date", time.Now().AddDate(0, 0, -1)).Error)

	quote, err := svc.Quote(ctx, 7, "peak", decimal.RequireFromString("50"))
	require.NoError(t, err)
	assert.True(t, quote.Subtotal.Equal(decimal.RequireFromString("622")), "subtotal %s", quote.Subtotal)
	assert.True(t, quote.GrandTotal.Equal(decimal.RequireFromString("684.2")), "total %s", quote.GrandTotal)
}

func TestQuoteWithoutRule(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Quote(context.Background(), 3, "regular", decimal.Zero)
	assert.ErrorIs(t, err, domainpricing.ErrNoRule)
}

func TestUpdateReplacesRuleFields(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	rule, err := svc.Create(ctx, ruleParams(time.Now().AddDate(0, 0, 2)), 1)
	require.NoError(t, err)

	params := ruleParams(time.Now().AddDate(0, 0, 3))
	params.Rate13 = decimal.RequireFromString("140")
	updated, err := svc.Update(ctx, rule.ID, params, 2)
	require.NoError(t, err)

	reloaded, err := svc.ByID(ctx, updated.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Rate13.Equal(decimal.RequireFromString("140")))
	assert.EqualValues(t, 2, reloaded.UpdatedBy)
}
