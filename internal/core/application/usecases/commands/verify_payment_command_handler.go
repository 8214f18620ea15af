package commands

import (
	"context"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/errs"
)

// VerifyPaymentCommandHandler settles a checkout. Only the customer who placed the
// order may verify it.
//
// On success the order is marked paid (confirming twice changes nothing). On failure
// the order is deleted, but only while it is still unpaid, in Processing and untouched
// by vendors and agents; otherwise InvalidTransitionError is returned and the order
// stays.
type VerifyPaymentCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.ChangePublisher
	now        Clock
}

func NewVerifyPaymentCommandHandler(uowFactory UoWFactory, publisher ports.ChangePublisher) VerifyPaymentCommandHandler {
	return VerifyPaymentCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		now:        systemClock,
	}
}

// Handle returns the confirmed order, or the removed one when the payment failed.
func (h *VerifyPaymentCommandHandler) Handle(ctx context.Context, cmd VerifyPaymentCommand) (_ *order.Order, err error) {
	ctx, span := startSpan(ctx, "VerifyPayment")
	defer func() { endSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	if !cmd.Success() {
		return h.discard(ctx, cmd)
	}

	var confirmed bool
	updated, err := updateOrder(ctx, h.uowFactory, cmd.OrderID(),
		customerOnly(cmd.Requester(), "verify payment"),
		func(o *order.Order) error {
			confirmed = o.ConfirmPayment()
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	if confirmed {
		h.publisher.Publish(ctx, updated.NewChange(order.ChangeUpdated, map[string]any{
			"paymentConfirmed": true,
		}, h.now()))
	}

	return updated, nil
}

func (h *VerifyPaymentCommandHandler) discard(ctx context.Context, cmd VerifyPaymentCommand) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	authorize := customerOnly(cmd.Requester(), "verify payment")
	removed, err := uow.OrderRepository().DeleteIfMatches(ctx, cmd.OrderID(), func(o *order.Order) error {
		if err := authorize(o); err != nil {
			return err
		}
		return o.ValidateDiscard()
	})
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publisher.Publish(ctx, removed.NewChange(order.ChangeRemoved, map[string]any{
		"reason": "payment_failed",
	}, h.now()))

	return removed, nil
}

func customerOnly(requester kernel.Identity, action string) order.Condition {
	return func(o *order.Order) error {
		if !o.CustomerID().Matches(requester) {
			return errs.NewNotAuthorizedError(action, "order "+o.ID().String())
		}
		return nil
	}
}
