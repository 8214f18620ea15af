package commands

import (
	"context"

	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/ports"
)

// PlaceOrderCommandHandler stores a new order in Processing status and announces it to
// the customer and every vendor referenced by its items.
type PlaceOrderCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.ChangePublisher
	now        Clock
}

func NewPlaceOrderCommandHandler(uowFactory UoWFactory, publisher ports.ChangePublisher) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		now:        systemClock,
	}
}

// Handle persists the order and returns it. Nothing is published when the commit fails.
func (h *PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (_ *order.Order, err error) {
	ctx, span := startSpan(ctx, "PlaceOrder")
	defer func() { endSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	now := h.now()
	placed, err := order.NewOrder(cmd.OrderID(), cmd.CustomerID(), cmd.Items(), cmd.Amount(), cmd.Address(), now)
	if err != nil {
		return nil, err
	}
	if cmd.CashOnDelivery() {
		placed.ConfirmPayment()
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, placed); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publisher.Publish(ctx, placed.NewChange(order.ChangeCreated, map[string]any{
		"status":           placed.Status().Label(),
		"amount":           placed.Amount(),
		"paymentConfirmed": placed.PaymentConfirmed(),
		"createdAt":        placed.CreatedAt(),
	}, now))

	return placed, nil
}
