package postgres

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"stayadmin/internal/app/uow"
	domainapartment "stayadmin/internal/domain/apartment"
	domainaudit "stayadmin/internal/domain/audit"
	domainbooking "stayadmin/internal/domain/booking"
	domainguest "stayadmin/internal/domain/guest"
	domainpricing "stayadmin/internal/domain/pricing"
	domainuser "stayadmin/internal/domain/user"
)

// Factory wires gorm transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *gorm.DB
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	txOpts := &sql.TxOptions{ReadOnly: opts.ReadOnly}
	tx := f.DB.WithContext(ctx).Begin(txOpts)
	if tx.Error != nil {
		return nil, wrapStoreErr("uow: begin", tx.Error)
	}
	return &Unit{tx: tx}, nil
}

type Unit struct {
	tx *gorm.DB
}

func (u *Unit) Bookings() domainbooking.Repository     { return NewBookingRepository(u.tx) }
func (u *Unit) Guests() domainguest.Repository         { return NewGuestRepository(u.tx) }
func (u *Unit) Apartments() domainapartment.Repository { return NewApartmentRepository(u.tx) }
func (u *Unit) PricingRules() domainpricing.Repository { return NewPricingRepository(u.tx) }
func (u *Unit) Users() domainuser.Repository           { return NewUserRepository(u.tx) }
func (u *Unit) Audit() domainaudit.Repository          { return NewAuditRepository(u.tx) }

func (u *Unit) Commit(ctx context.Context) error {
	if err := u.tx.Commit().Error; err != nil {
		return wrapStoreErr("uow: commit", err)
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	if err := u.tx.Rollback().Error; err != nil {
		return wrapStoreErr("uow: rollback", err)
	}
	return nil
}

var _ uow.Factory = Factory{}
var _ uow.UnitOfWork = (*Unit)(nil)
