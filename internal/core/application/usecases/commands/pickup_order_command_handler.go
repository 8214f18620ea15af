package commands

import (
	"context"

	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/ports"
)

// PickupOrderCommandHandler moves a claimed order to PickedUp. Only the claim holder
// may do so; pickedAt is never earlier than the order's creation.
type PickupOrderCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.ChangePublisher
	now        Clock
}

func NewPickupOrderCommandHandler(uowFactory UoWFactory, publisher ports.ChangePublisher) PickupOrderCommandHandler {
	return PickupOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		now:        systemClock,
	}
}

func (h *PickupOrderCommandHandler) Handle(ctx context.Context, cmd PickupOrderCommand) (_ *order.Order, err error) {
	ctx, span := startSpan(ctx, "PickupOrder")
	defer func() { endSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	agent := cmd.AgentID()
	now := h.now()
	updated, err := updateOrder(ctx, h.uowFactory, cmd.OrderID(),
		func(o *order.Order) error {
			return o.AuthorizeHolder(agent, "pickup")
		},
		func(o *order.Order) error {
			return o.MarkPickedUp(agent, now)
		},
	)
	if err != nil {
		return nil, err
	}

	h.publisher.Publish(ctx, updated.StatusChange(now))

	return updated, nil
}
