package commands

import (
	"errors"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/pkg/guard"
)

var ErrAssignDeliveryCommandIsNotConstructed = errors.New(
	"AssignDeliveryCommand must be created via NewAssignDeliveryCommand constructor",
)

// AssignDeliveryCommand lets a vendor owner pre-assign one of its roster agents to an
// order. Assignment does not claim the order; it only allows the agent to report
// location and see the order's location.
type AssignDeliveryCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	requester kernel.Identity
	agentID   kernel.Identity

	guard guard.ConstructorGuard
}

func NewAssignDeliveryCommand(
	orderID kernel.UUID,
	requester kernel.Identity,
	agentID kernel.Identity,
) (AssignDeliveryCommand, error) {
	if err := errors.Join(
		orderID.Validate(),
		validateIdentity("requesterId", requester),
		validateIdentity("agentId", agentID),
	); err != nil {
		return AssignDeliveryCommand{}, err
	}

	return AssignDeliveryCommand{
		orderID:   orderID,
		requester: requester,
		agentID:   agentID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c AssignDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrAssignDeliveryCommandIsNotConstructed)
}

func (c AssignDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c AssignDeliveryCommand) Requester() kernel.Identity {
	return c.requester
}

func (c AssignDeliveryCommand) AgentID() kernel.Identity {
	return c.agentID
}
