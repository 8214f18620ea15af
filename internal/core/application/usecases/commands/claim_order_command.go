package commands

import (
	"errors"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/pkg/guard"
)

var ErrClaimOrderCommandIsNotConstructed = errors.New(
	"ClaimOrderCommand must be created via NewClaimOrderCommand constructor",
)

// ClaimOrderCommand asks for exclusive delivery of an order.
//
// Example:
//
//	cmd, err := NewClaimOrderCommand(orderID, agentID)
//	if err != nil {
//	    return err
//	}
//
//	claimed, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrClaimConflict) {
//	    // another agent was first
//	}
type ClaimOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	agentID kernel.Identity

	guard guard.ConstructorGuard
}

func NewClaimOrderCommand(orderID kernel.UUID, agentID kernel.Identity) (ClaimOrderCommand, error) {
	if err := errors.Join(
		orderID.Validate(),
		validateIdentity("agentId", agentID),
	); err != nil {
		return ClaimOrderCommand{}, err
	}

	return ClaimOrderCommand{
		orderID: orderID,
		agentID: agentID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c ClaimOrderCommand) Validate() error {
	return c.guard.Validate(ErrClaimOrderCommandIsNotConstructed)
}

func (c ClaimOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ClaimOrderCommand) AgentID() kernel.Identity {
	return c.agentID
}
