package commands

import (
	"errors"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/pkg/guard"
)

var ErrVerifyPaymentCommandIsNotConstructed = errors.New(
	"VerifyPaymentCommand must be created via NewVerifyPaymentCommand constructor",
)

// VerifyPaymentCommand carries the outcome of the payment provider's redirect. A
// successful payment confirms the order; a failed one discards it.
type VerifyPaymentCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	requester kernel.Identity
	success   bool

	guard guard.ConstructorGuard
}

func NewVerifyPaymentCommand(orderID kernel.UUID, requester kernel.Identity, success bool) (VerifyPaymentCommand, error) {
	if err := errors.Join(
		orderID.Validate(),
		validateIdentity("requesterId", requester),
	); err != nil {
		return VerifyPaymentCommand{}, err
	}

	return VerifyPaymentCommand{
		orderID:   orderID,
		requester: requester,
		success:   success,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c VerifyPaymentCommand) Validate() error {
	return c.guard.Validate(ErrVerifyPaymentCommandIsNotConstructed)
}

func (c VerifyPaymentCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c VerifyPaymentCommand) Requester() kernel.Identity {
	return c.requester
}

func (c VerifyPaymentCommand) Success() bool {
	return c.success
}
