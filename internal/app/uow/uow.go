package uow

import (
	"context"

	domainavailability "stayhub/internal/domain/availability"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
)

// UnitOfWork groups the repositories a command touches under one transaction.
type UnitOfWork interface {
	Listings() domainlistings.ListingRepository
	Availability() domainavailability.Repository
	Booking() domainbooking.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}

// ContextInjector is implemented by units that bind a driver session to the context.
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}
