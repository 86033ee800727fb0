package memory

import (
	"context"

	"stayhub/internal/app/uow"
	domainbooking "stayhub/internal/domain/booking"
	domainlistings "stayhub/internal/domain/listings"
	domainuser "stayhub/internal/domain/user"
)

// UnitOfWorkFactory hands out units that write straight to the store.
// Rollback cannot undo those writes; callers rely on compensation instead.
type UnitOfWorkFactory struct {
	Store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{Store: store}
}

func (f *UnitOfWorkFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	return &unit{store: f.Store}, nil
}

type unit struct {
	store *Store
}

func (u *unit) Listings() domainlistings.Repository { return u.store.Listings() }

func (u *unit) Bookings() domainbooking.Repository { return u.store.Bookings() }

func (u *unit) Users() domainuser.Repository { return u.store.Users() }

func (u *unit) Commit(context.Context) error { return nil }

func (u *unit) Rollback(context.Context) error { return nil }
