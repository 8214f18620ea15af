package queries

import (
	"context"
	"errors"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/services"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/errs"
	"foodmarket/internal/pkg/guard"
)

var ErrGetVendorOrdersQueryIsNotConstructed = errors.New(
	"GetVendorOrdersQuery must be created via NewGetVendorOrdersQuery constructor",
)

// GetVendorOrdersQuery lists the orders containing items of the requester's vendor.
// Each order carries only that vendor's items; the rest of the cart belongs to other
// vendors and is left out.
//
// Example:
//
//	query, err := NewGetVendorOrdersQuery(ownerID)
//	if err != nil {
//	    return err
//	}
//
//	orders, err := handler.Handle(ctx, query)
//	for _, o := range orders {
//	    fmt.Printf("%s: %d of my items, %s\n", o.ID, len(o.Items), o.Status.Label())
//	}
type GetVendorOrdersQuery struct {
	requester kernel.Identity

	guard guard.ConstructorGuard
}

func NewGetVendorOrdersQuery(requester kernel.Identity) (GetVendorOrdersQuery, error) {
	if err := validateIdentity("requesterId", requester); err != nil {
		return GetVendorOrdersQuery{}, err
	}
	return GetVendorOrdersQuery{requester: requester, guard: guard.NewConstructorGuard()}, nil
}

func (q GetVendorOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetVendorOrdersQueryIsNotConstructed)
}

func (q GetVendorOrdersQuery) Requester() kernel.Identity {
	return q.requester
}

type GetVendorOrdersQueryHandler struct {
	orders   ports.OrderRepository
	vendors  ports.VendorDirectory
	resolver services.IdentityResolver
}

func NewGetVendorOrdersQueryHandler(orders ports.OrderRepository, vendors ports.VendorDirectory) GetVendorOrdersQueryHandler {
	return GetVendorOrdersQueryHandler{
		orders:   orders,
		vendors:  vendors,
		resolver: services.NewIdentityResolver(),
	}
}

// Handle fails with NotAuthorizedError when the requester owns no vendor.
func (h GetVendorOrdersQueryHandler) Handle(ctx context.Context, query GetVendorOrdersQuery) ([]OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	owned, err := ownedVendor(ctx, h.vendors, query.Requester())
	if err != nil {
		return nil, err
	}
	if owned == nil {
		return nil, errs.NewNotAuthorizedError("list vendor orders", "")
	}

	set := h.resolver.ResolveVendorIdentitySet(owned)
	orders, err := h.orders.ListByVendorSet(ctx, set, ports.OrderFilter{})
	if err != nil {
		return nil, err
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, newOrderResponse(o, h.resolver.ItemsMatchingIdentitySet(o, set)))
	}
	return out, nil
}
