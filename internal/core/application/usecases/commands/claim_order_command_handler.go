package commands

import (
	"context"

	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/ports"
)

// ClaimOrderCommandHandler arbitrates concurrent claims. The claim condition is
// evaluated by the store against the persisted order while it holds the order
// exclusively, so of any number of agents racing for one order exactly one wins and
// the rest get ClaimConflictError. A repeated claim by the holder succeeds, changes
// nothing and publishes nothing.
type ClaimOrderCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.ChangePublisher
	now        Clock
}

func NewClaimOrderCommandHandler(uowFactory UoWFactory, publisher ports.ChangePublisher) ClaimOrderCommandHandler {
	return ClaimOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		now:        systemClock,
	}
}

func (h *ClaimOrderCommandHandler) Handle(ctx context.Context, cmd ClaimOrderCommand) (_ *order.Order, err error) {
	ctx, span := startSpan(ctx, "ClaimOrder")
	defer func() { endSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	agent := cmd.AgentID()
	var changed bool
	updated, err := updateOrder(ctx, h.uowFactory, cmd.OrderID(),
		func(o *order.Order) error {
			return o.CheckClaim(agent)
		},
		func(o *order.Order) error {
			var err error
			changed, err = o.Claim(agent)
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	if changed {
		h.publisher.Publish(ctx, updated.StatusChange(h.now()))
	}

	return updated, nil
}
