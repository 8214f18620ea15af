package commands

import (
	"context"

	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/ports"
)

// DeliverOrderCommandHandler completes a picked up order. Only the claim holder may
// do so; deliveredAt is never earlier than pickedAt.
type DeliverOrderCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.ChangePublisher
	now        Clock
}

func NewDeliverOrderCommandHandler(uowFactory UoWFactory, publisher ports.ChangePublisher) DeliverOrderCommandHandler {
	return DeliverOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		now:        systemClock,
	}
}

func (h *DeliverOrderCommandHandler) Handle(ctx context.Context, cmd DeliverOrderCommand) (_ *order.Order, err error) {
	ctx, span := startSpan(ctx, "DeliverOrder")
	defer func() { endSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	agent := cmd.AgentID()
	now := h.now()
	updated, err := updateOrder(ctx, h.uowFactory, cmd.OrderID(),
		func(o *order.Order) error {
			return o.AuthorizeHolder(agent, "deliver")
		},
		func(o *order.Order) error {
			return o.MarkDelivered(agent, now)
		},
	)
	if err != nil {
		return nil, err
	}

	h.publisher.Publish(ctx, updated.StatusChange(now))

	return updated, nil
}
