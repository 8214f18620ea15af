// Package memory provides in-process implementations of the persistence ports.
// Every operation is atomic on its own; the unit of work only tracks its lifecycle.
package memory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/errs"
)

var _ ports.OrderRepository = (*OrderRepository)(nil)

// OrderRepository keeps orders as snapshots and hands out detached copies, so callers
// can never mutate stored state outside UpdateIfMatches.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[kernel.UUID]order.Snapshot
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[kernel.UUID]order.Snapshot)}
}

func (r *OrderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[aggregate.ID()]; ok {
		return errs.NewValueIsInvalidErrorWithCause("id", errors.New("order already exists"))
	}
	r.orders[aggregate.ID()] = aggregate.Snapshot()
	return nil
}

func (r *OrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return order.RestoreOrder(snap)
}

// UpdateIfMatches holds the write lock across read, condition, mutation and write.
func (r *OrderRepository) UpdateIfMatches(
	_ context.Context,
	id kernel.UUID,
	cond order.Condition,
	mutate order.Mutation,
) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, ok := r.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	current, err := order.RestoreOrder(snap)
	if err != nil {
		return nil, err
	}
	if cond != nil {
		if err = cond(current); err != nil {
			return nil, err
		}
	}
	if mutate != nil {
		if err = mutate(current); err != nil {
			return nil, err
		}
	}

	r.orders[id] = current.Snapshot()
	return order.RestoreOrder(current.Snapshot())
}

func (r *OrderRepository) DeleteIfMatches(_ context.Context, id kernel.UUID, cond order.Condition) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, ok := r.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	current, err := order.RestoreOrder(snap)
	if err != nil {
		return nil, err
	}
	if cond != nil {
		if err = cond(current); err != nil {
			return nil, err
		}
	}
	delete(r.orders, id)
	return current, nil
}

func (r *OrderRepository) ListByCustomer(_ context.Context, customerID kernel.Identity) ([]*order.Order, error) {
	return r.list(func(o *order.Order) bool {
		return o.CustomerID().Matches(customerID)
	}, newestFirst)
}

func (r *OrderRepository) ListByVendorSet(
	_ context.Context,
	set kernel.IdentitySet,
	filter ports.OrderFilter,
) ([]*order.Order, error) {
	return r.list(func(o *order.Order) bool {
		if !o.HasVendor(set) {
			return false
		}
		return !filter.OnlyPickup || (o.Status().IsClaimable() && !o.IsClaimed())
	}, newestFirst)
}

func (r *OrderRepository) ListExpiredCheckouts(_ context.Context, cutoff time.Time, limit int) ([]*order.Order, error) {
	out, err := r.list(func(o *order.Order) bool {
		return o.Status() == order.Processing && !o.PaymentConfirmed() && o.CreatedAt().Before(cutoff)
	}, func(a, b *order.Order) int {
		return a.CreatedAt().Compare(b.CreatedAt())
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *OrderRepository) list(keep func(o *order.Order) bool, less func(a, b *order.Order) int) ([]*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*order.Order, 0)
	for _, snap := range r.orders {
		o, err := order.RestoreOrder(snap)
		if err != nil {
			return nil, err
		}
		if keep(o) {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, less)
	return out, nil
}

func newestFirst(a, b *order.Order) int {
	return cmp.Or(b.CreatedAt().Compare(a.CreatedAt()), cmp.Compare(a.ID().String(), b.ID().String()))
}
