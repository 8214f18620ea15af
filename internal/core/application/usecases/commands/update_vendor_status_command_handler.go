package commands

import (
	"context"

	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/domain/services"
	"foodmarket/internal/core/ports"
)

// UpdateVendorStatusCommandHandler lets a vendor advance an order that contains at
// least one of its items. The requester is matched against items by its own id and,
// when it owns a vendor, by that vendor's record id and owner id. Items are never
// touched.
type UpdateVendorStatusCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.ChangePublisher
	resolver   services.IdentityResolver
	now        Clock
}

func NewUpdateVendorStatusCommandHandler(
	uowFactory UoWFactory,
	publisher ports.ChangePublisher,
) UpdateVendorStatusCommandHandler {
	return UpdateVendorStatusCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		resolver:   services.NewIdentityResolver(),
		now:        systemClock,
	}
}

func (h *UpdateVendorStatusCommandHandler) Handle(
	ctx context.Context,
	cmd UpdateVendorStatusCommand,
) (_ *order.Order, err error) {
	ctx, span := startSpan(ctx, "UpdateVendorStatus")
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

	owned, err := ownedVendor(ctx, uow.VendorRepository(), cmd.Requester())
	if err != nil {
		return nil, err
	}
	set := h.resolver.RequesterIdentitySet(owned, cmd.Requester())

	var changed bool
	updated, err := uow.OrderRepository().UpdateIfMatches(ctx, cmd.OrderID(),
		func(o *order.Order) error {
			return o.AuthorizeVendor(set, "update status")
		},
		func(o *order.Order) error {
			var err error
			changed, err = o.SetStatusByVendor(cmd.Status())
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
		h.publisher.Publish(ctx, updated.StatusChange(h.now()))
	}

	return updated, nil
}
