package pricing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	auditsvc "stayadmin/internal/app/services/audit"
	"stayadmin/internal/app/uow"
	domainaudit "stayadmin/internal/domain/audit"
	domainpricing "stayadmin/internal/domain/pricing"
)

// Service manages the append-only pricing rule history and serves quotes.
type Service struct {
	UoW        uow.Factory
	Rules      domainpricing.Repository
	Calculator domainpricing.Calculator
	Audit      *auditsvc.Recorder
	Logger     *slog.Logger
}

func (s *Service) List(ctx context.Context) ([]domainpricing.Rule, error) {
	return s.Rules.List(ctx)
}

func (s *Service) History(ctx context.Context, limit int) ([]domainpricing.Rule, error) {
	return s.Rules.History(ctx, limit)
}

func (s *Service) ByID(ctx context.Context, id uint) (*domainpricing.Rule, error) {
	return s.Rules.ByID(ctx, id)
}

func (s *Service) Current(ctx context.Context) (*domainpricing.Rule, error) {
	return s.Rules.Current(ctx, time.Now())
}

type RuleParams struct {
	Rate13        decimal.Decimal
	Rate46        decimal.Decimal
	Rate7Plus     decimal.Decimal
	SeasonRegular decimal.Decimal
	SeasonPeak    decimal.Decimal
	SeasonOffpeak decimal.Decimal
	TaxPercent    decimal.Decimal
	Currency      string
	EffectiveDate time.Time
}

// validateEffective rejects backdated rules so the published history never
// silently reprices past bookings. Today counts as valid.
func validateEffective(effective, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if effective.Before(today) {
		return domainpricing.ErrEffectiveInPast
	}
	return nil
}

func (s *Service) Create(ctx context.Context, params RuleParams, actorID uint) (*domainpricing.Rule, error) {
	if err := validateEffective(params.EffectiveDate, time.Now()); err != nil {
		return nil, err
	}
	rule := ruleFromParams(params)
	rule.UpdatedBy = actorID

	tx, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)
	if err := tx.PricingRules().Create(ctx, rule); err != nil {
		return nil, err
	}
	entry := s.Audit.Record(ctx, tx.Audit(), auditsvc.Change{
		Entity: "pricing_rule", EntityID: rule.ID, Action: domainaudit.ActionCreate,
		New: rule, UserID: actorID,
	})
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.Audit.Publish(ctx, entry)
	if s.Logger != nil {
		s.Logger.Info("pricing rule created", "rule_id", rule.ID, "effective", rule.EffectiveDate)
	}
	return rule, nil
}

func (s *Service) Update(ctx context.Context, id uint, params RuleParams, actorID uint) (*domainpricing.Rule, error) {
	existing, err := s.Rules.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateEffective(params.EffectiveDate, time.Now()); err != nil {
		return nil, err
	}
	rule := ruleFromParams(params)
	rule.ID = existing.ID
	rule.UpdatedBy = actorID
	rule.CreatedAt = existing.CreatedAt

	tx, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)
	if err := tx.PricingRules().Update(ctx, rule); err != nil {
		return nil, err
	}
	entry := s.Audit.Record(ctx, tx.Audit(), auditsvc.Change{
		Entity: "pricing_rule", EntityID: rule.ID, Action: domainaudit.ActionUpdate,
		Old: existing, New: rule, UserID: actorID,
	})
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.Audit.Publish(ctx, entry)
	if s.Logger != nil {
		s.Logger.Info("pricing rule updated", "rule_id", rule.ID)
	}
	return rule, nil
}

// Delete removes a rule unless it is the one currently in effect.
func (s *Service) Delete(ctx context.Context, id uint, actorID uint) error {
	existing, err := s.Rules.ByID(ctx, id)
	if err != nil {
		return err
	}
	current, err := s.Rules.Current(ctx, time.Now())
	if err != nil && !errors.Is(err, domainpricing.ErrNoRule) {
		return err
	}
	if current != nil && current.ID == id {
		return domainpricing.ErrRuleIsActive
	}

	tx, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := tx.PricingRules().Delete(ctx, id); err != nil {
		return err
	}
	entry := s.Audit.Record(ctx, tx.Audit(), auditsvc.Change{
		Entity: "pricing_rule", EntityID: id, Action: domainaudit.ActionDelete,
		Old: existing, UserID: actorID,
	})
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.Audit.Publish(ctx, entry)
	if s.Logger != nil {
		s.Logger.Info("pricing rule deleted", "rule_id", id)
	}
	return nil
}

// Quote prices a hypothetical stay against the rule in effect right now.
func (s *Service) Quote(ctx context.Context, days int, season string, discount decimal.Decimal) (domainpricing.Quote, error) {
	parsed, err := domainpricing.ParseSeason(season)
	if err != nil {
		return domainpricing.Quote{}, err
	}
	rule, err := s.Rules.Current(ctx, time.Now())
	if err != nil {
		return domainpricing.Quote{}, err
	}
	return s.Calculator.Calculate(days, parsed, discount, rule)
}

func ruleFromParams(p RuleParams) *domainpricing.Rule {
	currency := p.Currency
	if currency == "" {
		currency = "USD"
	}
	return &domainpricing.Rule{
		Rate13:        p.Rate13,
		Rate46:        p.Rate46,
		Rate7Plus:     p.Rate7Plus,
		SeasonRegular: p.SeasonRegular,
		SeasonPeak:    p.SeasonPeak,
		SeasonOffpeak: p.SeasonOffpeak,
		TaxPercent:    p.TaxPercent,
		Currency:      currency,
		EffectiveDate: p.EffectiveDate,
	}
}
