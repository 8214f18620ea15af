package commands

import (
	"errors"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/pkg/guard"
)

var ErrUpdateVendorStatusCommandIsNotConstructed = errors.New(
	"UpdateVendorStatusCommand must be created via NewUpdateVendorStatusCommand constructor",
)

// UpdateVendorStatusCommand moves an order within the vendor phase. The status is
// parsed leniently: "ready_for_pickup", "Ready for pickup" and "ReadyForPickup" are the
// same target. Only AcceptedByVendor and ReadyForPickup are accepted as targets by the
// state machine.
type UpdateVendorStatusCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	requester kernel.Identity
	status    order.Status

	guard guard.ConstructorGuard
}

func NewUpdateVendorStatusCommand(orderID kernel.UUID, requester kernel.Identity, status string) (UpdateVendorStatusCommand, error) {
	target, statusErr := order.ParseStatus(status)
	if err := errors.Join(
		orderID.Validate(),
		validateIdentity("requesterId", requester),
		statusErr,
	); err != nil {
		return UpdateVendorStatusCommand{}, err
	}

	return UpdateVendorStatusCommand{
		orderID:   orderID,
		requester: requester,
		status:    target,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateVendorStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateVendorStatusCommandIsNotConstructed)
}

func (c UpdateVendorStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c UpdateVendorStatusCommand) Requester() kernel.Identity {
	return c.requester
}

func (c UpdateVendorStatusCommand) Status() order.Status {
	return c.status
}
