package queries

import (
	"context"
	"errors"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/services"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/guard"
)

var ErrGetDeliveryOrdersQueryIsNotConstructed = errors.New(
	"GetDeliveryOrdersQuery must be created via NewGetDeliveryOrdersQuery constructor",
)

// GetDeliveryOrdersQuery lists the orders of every vendor whose roster contains the
// agent. With onlyPickup only unclaimed orders waiting in AcceptedByVendor or
// ReadyForPickup are returned.
type GetDeliveryOrdersQuery struct {
	agentID    kernel.Identity
	onlyPickup bool

	guard guard.ConstructorGuard
}

func NewGetDeliveryOrdersQuery(agentID kernel.Identity, onlyPickup bool) (GetDeliveryOrdersQuery, error) {
	if err := validateIdentity("agentId", agentID); err != nil {
		return GetDeliveryOrdersQuery{}, err
	}
	return GetDeliveryOrdersQuery{
		agentID:    agentID,
		onlyPickup: onlyPickup,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (q GetDeliveryOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryOrdersQueryIsNotConstructed)
}

func (q GetDeliveryOrdersQuery) AgentID() kernel.Identity {
	return q.agentID
}

func (q GetDeliveryOrdersQuery) OnlyPickup() bool {
	return q.onlyPickup
}

type GetDeliveryOrdersQueryHandler struct {
	orders   ports.OrderRepository
	vendors  ports.VendorDirectory
	resolver services.IdentityResolver
}

func NewGetDeliveryOrdersQueryHandler(orders ports.OrderRepository, vendors ports.VendorDirectory) GetDeliveryOrdersQueryHandler {
	return GetDeliveryOrdersQueryHandler{
		orders:   orders,
		vendors:  vendors,
		resolver: services.NewIdentityResolver(),
	}
}

// Handle returns an empty list for an agent on no roster. Items are filtered to the
// agent's vendors.
func (h GetDeliveryOrdersQueryHandler) Handle(ctx context.Context, query GetDeliveryOrdersQuery) ([]OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	vendors, err := h.vendors.ListByRosterMember(ctx, query.AgentID())
	if err != nil {
		return nil, err
	}
	set := h.resolver.UnionIdentitySet(vendors)
	if set.Len() == 0 {
		return []OrderResponse{}, nil
	}

	orders, err := h.orders.ListByVendorSet(ctx, set, ports.OrderFilter{OnlyPickup: query.OnlyPickup()})
	if err != nil {
		return nil, err
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, newOrderResponse(o, h.resolver.ItemsMatchingIdentitySet(o, set)))
	}
	return out, nil
}
