package commands

import (
	"errors"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/pkg/guard"
)

var ErrPickupOrderCommandIsNotConstructed = errors.New(
	"PickupOrderCommand must be created via NewPickupOrderCommand constructor",
)

// PickupOrderCommand records that the claim holder collected the food.
type PickupOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	agentID kernel.Identity

	guard guard.ConstructorGuard
}

func NewPickupOrderCommand(orderID kernel.UUID, agentID kernel.Identity) (PickupOrderCommand, error) {
	if err := errors.Join(
		orderID.Validate(),
		validateIdentity("agentId", agentID),
	); err != nil {
		return PickupOrderCommand{}, err
	}

	return PickupOrderCommand{
		orderID: orderID,
		agentID: agentID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c PickupOrderCommand) Validate() error {
	return c.guard.Validate(ErrPickupOrderCommandIsNotConstructed)
}

func (c PickupOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c PickupOrderCommand) AgentID() kernel.Identity {
	return c.agentID
}
