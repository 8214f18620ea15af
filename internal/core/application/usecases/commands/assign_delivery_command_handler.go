package commands

import (
	"context"

	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/errs"
)

// AssignDeliveryCommandHandler pre-assigns a delivery agent. The requester must own a
// vendor with an item in the order and the agent must be on that vendor's roster.
type AssignDeliveryCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.ChangePublisher
	now        Clock
}

func NewAssignDeliveryCommandHandler(uowFactory UoWFactory, publisher ports.ChangePublisher) AssignDeliveryCommandHandler {
	return AssignDeliveryCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		now:        systemClock,
	}
}

func (h *AssignDeliveryCommandHandler) Handle(ctx context.Context, cmd AssignDeliveryCommand) (_ *order.Order, err error) {
	ctx, span := startSpan(ctx, "AssignDelivery")
	defer func() { endSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	owned, err := requireOwnedVendor(ctx, uow.VendorRepository(), cmd.Requester(), "assign delivery")
	if err != nil {
		return nil, err
	}
	if !owned.HasOnRoster(cmd.AgentID()) {
		return nil, errs.NewValueIsInvalidError("agentId")
	}

	set := owned.IdentitySet()
	var changed bool
	updated, err := uow.OrderRepository().UpdateIfMatches(ctx, cmd.OrderID(),
		func(o *order.Order) error {
			return o.AuthorizeVendor(set, "assign delivery")
		},
		func(o *order.Order) error {
			var err error
			changed, err = o.AssignDelivery(cmd.AgentID())
			return err
		},
	)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if changed {
		h.publisher.Publish(ctx, updated.NewChange(order.ChangeUpdated, map[string]any{
			"assignedDelivery": updated.AssignedDelivery().String(),
		}, h.now()))
	}

	return updated, nil
}
