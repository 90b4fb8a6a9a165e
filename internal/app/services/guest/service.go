package guest

import (
	"context"
	"log/slog"

	auditsvc "stayadmin/internal/app/services/audit"
	"stayadmin/internal/app/uow"
	domainaudit "stayadmin/internal/domain/audit"
	domainguest "stayadmin/internal/domain/guest"
)

type Service struct {
	UoW    uow.Factory
	Guests domainguest.Repository
	Audit  *auditsvc.Recorder
	Logger *slog.Logger
}

func (s *Service) ByID(ctx context.Context, id uint) (*domainguest.Guest, error) {
	return s.Guests.ByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f domainguest.Filter) ([]domainguest.Guest, int64, error) {
	return s.Guests.List(ctx, f)
}

type WriteParams struct {
	Name           string
	Phone          string
	Email          string
	Address        string
	GuestType      string
	PlaceOrCountry string
	Introduced     string
	IntroducedBy   string
}

func (s *Service) Create(ctx context.Context, params WriteParams, actorID uint) (*domainguest.Guest, error) {
	g, err := guestFromParams(params)
	if err != nil {
		return nil, err
	}
	tx, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)
	if err := tx.Guests().Create(ctx, g); err != nil {
		return nil, err
	}
	entry := s.Audit.Record(ctx, tx.Audit(), auditsvc.Change{
		Entity: "guest", EntityID: g.ID, Action: domainaudit.ActionCreate,
		New: g, UserID: actorID,
	})
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.Audit.Publish(ctx, entry)
	return g, nil
}

func (s *Service) Update(ctx context.Context, id uint, params WriteParams, actorID uint) (*domainguest.Guest, error) {
	existing, err := s.Guests.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	g, err := guestFromParams(params)
	if err != nil {
		return nil, err
	}
	g.ID = existing.ID
	g.CreatedAt = existing.CreatedAt

	tx, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)
	if err := tx.Guests().Update(ctx, g); err != nil {
		return nil, err
	}
	entry := s.Audit.Record(ctx, tx.Audit(), auditsvc.Change{
		Entity: "guest", EntityID: g.ID, Action: domainaudit.ActionUpdate,
		Old: existing, New: g, UserID: actorID,
	})
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.Audit.Publish(ctx, entry)
	return g, nil
}

func (s *Service) Delete(ctx context.Context, id uint, actorID uint) error {
	existing, err := s.Guests.ByID(ctx, id)
	if err != nil {
		return err
	}
	tx, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := tx.Guests().Delete(ctx, id); err != nil {
		return err
	}
	entry := s.Audit.Record(ctx, tx.Audit(), auditsvc.Change{
		Entity: "guest", EntityID: id, Action: domainaudit.ActionDelete,
		Old: existing, UserID: actorID,
	})
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.Audit.Publish(ctx, entry)
	return nil
}

func guestFromParams(p WriteParams) (*domainguest.Guest, error) {
	gtype := domainguest.TypeLocal
	if p.GuestType != "" {
		var err error
		gtype, err = domainguest.ParseType(p.GuestType)
		if err != nil {
			return nil, err
		}
	}
	introduced := p.Introduced
	if introduced == "" {
		introduced = "no"
	}
	return &domainguest.Guest{
		Name:           p.Name,
		Phone:          p.Phone,
		Email:          p.Email,
		Address:        p.Address,
		GuestType:      gtype,
		PlaceOrCountry: p.PlaceOrCountry,
		Introduced:     introduced,
		IntroducedBy:   p.IntroducedBy,
	}, nil
}
