// Package ports defines the contracts between the core and its adapters:
// persistence, transaction boundaries and change publication.
package ports

import (
	"context"
	"time"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"
)

// OrderFilter narrows vendor and agent order listings.
type OrderFilter struct {
	// OnlyPickup keeps unclaimed orders in AcceptedByVendor or ReadyForPickup.
	OnlyPickup bool
}

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get returns the order or an errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// UpdateIfMatches is the only way to change a stored order. It evaluates cond
	// against the current persisted order and, if cond passes, applies mutate and
	// writes the result, all while holding the order exclusively. Two concurrent
	// calls on the same order are serialized, so the second one sees the first one's
	// write when evaluating its condition.
	//
	// Returns errs.ObjectNotFoundError when the order does not exist, the error of cond
	// or mutate unchanged when either fails (nothing is written), or the updated order.
	UpdateIfMatches(ctx context.Context, id kernel.UUID, cond order.Condition, mutate order.Mutation) (*order.Order, error)

	// DeleteIfMatches removes the order when cond passes against the current persisted
	// state and returns what was removed. Used only for failed payments.
	DeleteIfMatches(ctx context.Context, id kernel.UUID, cond order.Condition) (*order.Order, error)

	// ListByCustomer returns the customer's orders, newest first.
	ListByCustomer(ctx context.Context, customerID kernel.Identity) ([]*order.Order, error)

	// ListByVendorSet returns orders with at least one item referencing a member of
	// set, newest first. Items are not filtered.
	ListByVendorSet(ctx context.Context, set kernel.IdentitySet, filter OrderFilter) ([]*order.Order, error)

	// ListExpiredCheckouts returns unpaid Processing orders created before cutoff,
	// oldest first, at most limit of them.
	ListExpiredCheckouts(ctx context.Context, cutoff time.Time, limit int) ([]*order.Order, error)
}
