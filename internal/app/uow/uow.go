package uow

import (
	"context"

	domainapartment "stayadmin/internal/domain/apartment"
	domainaudit "stayadmin/internal/domain/audit"
	domainbooking "stayadmin/internal/domain/booking"
	domainguest "stayadmin/internal/domain/guest"
	domainpricing "stayadmin/internal/domain/pricing"
	domainuser "stayadmin/internal/domain/user"
)

// UnitOfWork coordinates repositories inside a transaction boundary. The
// booking write path runs its conflict-guarded insert and the audit record
// in one unit so a failed write never leaves a stray audit row.
type UnitOfWork interface {
	Bookings() domainbooking.Repository
	Guests() domainguest.Repository
	Apartments() domainapartment.Repository
	PricingRules() domainpricing.Repository
	Users() domainuser.Repository
	Audit() domainaudit.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts unit of work instances.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
