package memory

import (
	"context"
	"errors"
	"sync"

	"stayhub/internal/app/uow"
	domainavailability "stayhub/internal/domain/availability"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
)

var ErrUnitClosed = errors.New("memory: unit of work already finished")

// Factory opens units over a Store. Writing units are serialized so a
// check-then-reserve sequence cannot interleave with another writer.
type Factory struct {
	Store   *Store
	writeMu *sync.Mutex
}

func NewFactory(store *Store) *Factory {
	return &Factory{Store: store, writeMu: &sync.Mutex{}}
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Store == nil {
		return nil, errors.New("memory: store required")
	}
	u := &Unit{store: f.Store, pending: newChangeSet(), readOnly: opts.ReadOnly}
	if !opts.ReadOnly {
		f.writeMu.Lock()
		u.release = f.writeMu.Unlock
	}
	return u, nil
}

// Unit buffers saves until Commit.
type Unit struct {
	store    *Store
	pending  *changeSet
	readOnly bool
	release  func()
	done     bool
}

func (u *Unit) Listings() domainlistings.ListingRepository {
	return listingRepository{store: u.store, pending: u.pending}
}

func (u *Unit) Availability() domainavailability.Repository {
	return availabilityRepository{store: u.store, pending: u.pending}
}

func (u *Unit) Booking() domainbooking.Repository {
	return bookingRepository{store: u.store, pending: u.pending}
}

func (u *Unit) Commit(ctx context.Context) error {
	if u.done {
		return ErrUnitClosed
	}
	if !u.readOnly {
		u.store.apply(u.pending)
	}
	u.finish()
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.finish()
	return nil
}

func (u *Unit) finish() {
	u.done = true
	u.pending = newChangeSet()
	if u.release != nil {
		u.release()
		u.release = nil
	}
}

var _ uow.UoWFactory = (*Factory)(nil)
