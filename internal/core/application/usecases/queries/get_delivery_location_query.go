package queries

import (
	"context"
	"errors"
	"time"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/services"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/errs"
	"foodmarket/internal/pkg/guard"
)

var ErrGetDeliveryLocationQueryIsNotConstructed = errors.New(
	"GetDeliveryLocationQuery must be created via NewGetDeliveryLocationQuery constructor",
)

// GetDeliveryLocationQuery reads the newest location sample of an order.
type GetDeliveryLocationQuery struct {
	orderID   kernel.UUID
	requester kernel.Identity

	guard guard.ConstructorGuard
}

func NewGetDeliveryLocationQuery(orderID kernel.UUID, requester kernel.Identity) (GetDeliveryLocationQuery, error) {
	if err := errors.Join(
		orderID.Validate(),
		validateIdentity("requesterId", requester),
	); err != nil {
		return GetDeliveryLocationQuery{}, err
	}
	return GetDeliveryLocationQuery{orderID: orderID, requester: requester, guard: guard.NewConstructorGuard()}, nil
}

func (q GetDeliveryLocationQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliveryLocationQueryIsNotConstructed)
}

func (q GetDeliveryLocationQuery) OrderID() kernel.UUID {
	return q.orderID
}

func (q GetDeliveryLocationQuery) Requester() kernel.Identity {
	return q.requester
}

// GetDeliveryLocationQueryResponse is the newest sample and who reported it.
type GetDeliveryLocationQueryResponse struct {
	OrderID    kernel.UUID
	Lat        float64
	Lng        float64
	ReportedBy kernel.Identity
	UpdatedAt  time.Time
}

// GetDeliveryLocationQueryHandler answers for the customer, the claim holder, the
// pre-assigned agent and the owner of a vendor with an item in the order. Everyone
// else gets NotAuthorizedError.
type GetDeliveryLocationQueryHandler struct {
	orders   ports.OrderRepository
	vendors  ports.VendorDirectory
	resolver services.IdentityResolver
}

func NewGetDeliveryLocationQueryHandler(
	orders ports.OrderRepository,
	vendors ports.VendorDirectory,
) GetDeliveryLocationQueryHandler {
	return GetDeliveryLocationQueryHandler{
		orders:   orders,
		vendors:  vendors,
		resolver: services.NewIdentityResolver(),
	}
}

// Handle returns nil without an error when nothing was reported yet.
func (h GetDeliveryLocationQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryLocationQuery,
) (*GetDeliveryLocationQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	o, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}

	owned, err := ownedVendor(ctx, h.vendors, query.Requester())
	if err != nil {
		return nil, err
	}
	vendorSet := h.resolver.RequesterIdentitySet(owned, query.Requester())
	if !o.CanViewLocation(query.Requester(), vendorSet) {
		return nil, errs.NewNotAuthorizedError("view location", "order "+o.ID().String())
	}

	loc := o.Location()
	if loc == nil {
		return nil, nil
	}
	return &GetDeliveryLocationQueryResponse{
		OrderID:    o.ID(),
		Lat:        loc.Point().Lat(),
		Lng:        loc.Point().Lng(),
		ReportedBy: loc.ReportedBy(),
		UpdatedAt:  loc.SampledAt(),
	}, nil
}
