package memory

import (
	"context"
	"errors"

	"foodmarket/internal/core/ports"
)

var ErrNoActiveTransaction = errors.New("no active transaction")

var (
	_ ports.UnitOfWork        = (*UnitOfWork)(nil)
	_ ports.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
)

// Store is the shared in-process state behind every unit of work.
type Store struct {
	orders  *OrderRepository
	vendors *VendorRepository
}

func NewStore() *Store {
	return &Store{
		orders:  NewOrderRepository(),
		vendors: NewVendorRepository(),
	}
}

func (s *Store) Orders() *OrderRepository {
	return s.orders
}

func (s *Store) Vendors() *VendorRepository {
	return s.vendors
}

// UnitOfWorkFactory hands out units of work over one shared store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// UnitOfWork mirrors the postgres lifecycle without real isolation: each repository
// call commits on its own and Rollback does not undo earlier writes. Every command
// performs at most one write, so this is enough for the single-process mode.
type UnitOfWork struct {
	store  *Store
	active bool
}

// Begin is safe to call twice.
func (u *UnitOfWork) Begin(_ context.Context) error {
	u.active = true
	return nil
}

func (u *UnitOfWork) Commit(_ context.Context) error {
	if !u.active {
		return ErrNoActiveTransaction
	}
	u.active = false
	return nil
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	if !u.active {
		return ErrNoActiveTransaction
	}
	u.active = false
	return nil
}

func (u *UnitOfWork) OrderRepository() ports.OrderRepository {
	return u.store.orders
}

func (u *UnitOfWork) VendorRepository() ports.VendorRepository {
	return u.store.vendors
}
