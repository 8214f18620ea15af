// Package queries contains read operations of the CQRS architecture. Handlers never
// change state; they read through the repository ports so the same queries serve the
// postgres and the in-memory storage.
package queries

import (
	"context"
	"errors"
	"maps"
	"time"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/domain/model/vendor"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/errs"
)

// OrderItemResponse is one ordered line.
type OrderItemResponse struct {
	VendorRef kernel.Identity
	Name      string
	Price     float64
	Quantity  int
}

// OrderResponse is the read model of an order. Vendor and agent listings carry only
// the items that belong to the requester's vendors.
type OrderResponse struct {
	ID               kernel.UUID
	CustomerID       kernel.Identity
	Items            []OrderItemResponse
	Amount           float64
	Address          map[string]any
	PaymentConfirmed bool
	Status           order.Status
	ClaimedBy        kernel.Identity
	AssignedDelivery kernel.Identity
	PickedAt         *time.Time
	DeliveredAt      *time.Time
	CreatedAt        time.Time
}

// OrderResponseOf builds the full read model of o, all items included. Transports
// use it to render the result of a command.
func OrderResponseOf(o *order.Order) OrderResponse {
	return newOrderResponse(o, o.Items())
}

func newOrderResponse(o *order.Order, items []order.Item) OrderResponse {
	resp := OrderResponse{
		ID:               o.ID(),
		CustomerID:       o.CustomerID(),
		Items:            make([]OrderItemResponse, 0, len(items)),
		Amount:           o.Amount(),
		Address:          maps.Clone(o.Address()),
		PaymentConfirmed: o.PaymentConfirmed(),
		Status:           o.Status(),
		ClaimedBy:        o.ClaimedBy(),
		AssignedDelivery: o.AssignedDelivery(),
		PickedAt:         o.PickedAt(),
		DeliveredAt:      o.DeliveredAt(),
		CreatedAt:        o.CreatedAt(),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, OrderItemResponse{
			VendorRef: item.VendorRef(),
			Name:      item.Name(),
			Price:     item.Price(),
			Quantity:  item.Quantity(),
		})
	}
	return resp
}

// VendorResponse is the read model of a vendor.
type VendorResponse struct {
	ID      kernel.UUID
	OwnerID kernel.Identity
	Name    string
	Phone   string
	Roster  []kernel.Identity
}

// VendorResponseOf builds the read model of v.
func VendorResponseOf(v *vendor.Vendor) VendorResponse {
	return newVendorResponse(v)
}

func newVendorResponse(v *vendor.Vendor) VendorResponse {
	return VendorResponse{
		ID:      v.ID(),
		OwnerID: v.OwnerID(),
		Name:    v.Name(),
		Phone:   v.Phone(),
		Roster:  v.Roster(),
	}
}

func newVendorResponses(vendors []*vendor.Vendor) []VendorResponse {
	out := make([]VendorResponse, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, newVendorResponse(v))
	}
	return out
}

// ownedVendor returns nil without an error when requester owns no vendor.
func ownedVendor(ctx context.Context, vendors ports.VendorDirectory, requester kernel.Identity) (*vendor.Vendor, error) {
	v, err := vendors.GetByOwner(ctx, requester)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, nil
	}
	return v, err
}

func validateIdentity(paramName string, id kernel.Identity) error {
	if id.IsEmpty() {
		return errs.NewValueIsRequiredError(paramName)
	}
	return nil
}
