package apartment

import (
	"context"
	"log/slog"

	auditsvc "stayadmin/internal/app/services/audit"
	"stayadmin/internal/app/uow"
	domainapartment "stayadmin/internal/domain/apartment"
	domainaudit "stayadmin/internal/domain/audit"
	domainbooking "stayadmin/internal/domain/booking"
)

type Service struct {
	UoW        uow.Factory
	Apartments domainapartment.Repository
	Bookings   domainbooking.Repository
	Audit      *auditsvc.Recorder
	Logger     *slog.Logger
}

func (s *Service) ByID(ctx context.Context, id uint) (*domainapartment.Apartment, error) {
	return s.Apartments.ByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domainapartment.Apartment, error) {
	return s.Apartments.ListActive(ctx)
}

func (s *Service) BookingsFor(ctx context.Context, apartmentID uint, status string, limit int) ([]domainbooking.Booking, error) {
	if _, err := s.Apartments.ByID(ctx, apartmentID); err != nil {
		return nil, err
	}
	return s.Bookings.ListByApartment(ctx, apartmentID, status, limit)
}

type WriteParams struct {
	Name  string
	Floor string
	Unit  string
}

// Create enforces name uniqueness among active apartments.
func (s *Service) Create(ctx context.Context, params WriteParams, actorID uint) (*domainapartment.Apartment, error) {
	taken, err := s.Apartments.NameExists(ctx, params.Name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domainapartment.ErrNameTaken
	}
	a := &domainapartment.Apartment{
		Name:     params.Name,
		Floor:    params.Floor,
		Unit:     params.Unit,
		IsActive: true,
	}
	tx, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)
	if err := tx.Apartments().Create(ctx, a); err != nil {
		return nil, err
	}
	entry := s.Audit.Record(ctx, tx.Audit(), auditsvc.Change{
		Entity: "apartment", EntityID: a.ID, Action: domainaudit.ActionCreate,
		New: a, UserID: actorID,
	})
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.Audit.Publish(ctx, entry)
	return a, nil
}

func (s *Service) Update(ctx context.Context, id uint, params WriteParams, actorID uint) (*domainapartment.Apartment, error) {
	existing, err := s.Apartments.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.Apartments.NameExists(ctx, params.Name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domainapartment.ErrNameTaken
	}
	a := &domainapartment.Apartment{
		ID:        existing.ID,
		Name:      params.Name,
		Floor:     params.Floor,
		Unit:      params.Unit,
		IsActive:  existing.IsActive,
		CreatedAt: existing.CreatedAt,
	}
	tx, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)
	if err := tx.Apartments().Update(ctx, a); err != nil {
		return nil, err
	}
	entry := s.Audit.Record(ctx, tx.Audit(), auditsvc.Change{
		Entity: "apartment", EntityID: a.ID, Action: domainaudit.ActionUpdate,
		Old: existing, New: a, UserID: actorID,
	})
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.Audit.Publish(ctx, entry)
	return a, nil
}

// Delete deactivates an apartment. Apartments with booking history are kept
// to preserve referential integrity.
func (s *Service) Delete(ctx context.Context, id uint, actorID uint) error {
	existing, err := s.Apartments.ByID(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.Bookings.CountByApartment(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domainapartment.ErrHasBookings
	}
	tx, err := s.UoW.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := tx.Apartments().Deactivate(ctx, id); err != nil {
		return err
	}
	entry := s.Audit.Record(ctx, tx.Audit(), auditsvc.Change{
		Entity: "apartment", EntityID: id, Action: domainaudit.ActionDelete,
		Old: existing, UserID: actorID,
	})
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.Audit.Publish(ctx, entry)
	return nil
}
