package commands

import (
	"context"

	"foodmarket/internal/core/domain/model/vendor"
)

// UpdateRosterCommandHandler applies a roster change. Adding an agent that is already
// linked, or removing one that is not, succeeds without a change.
type UpdateRosterCommandHandler struct {
	uowFactory UoWFactory
}

func NewUpdateRosterCommandHandler(uowFactory UoWFactory) UpdateRosterCommandHandler {
	return UpdateRosterCommandHandler{
		uowFactory: uowFactory,
	}
}

func (h *UpdateRosterCommandHandler) Handle(ctx context.Context, cmd UpdateRosterCommand) (_ *vendor.Vendor, err error) {
	ctx, span := startSpan(ctx, "UpdateRoster")
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

	vendorRepo := uow.VendorRepository()
	vendorID := cmd.VendorID()
	if cmd.Op().byOwner() {
		owned, ownerErr := requireOwnedVendor(ctx, vendorRepo, cmd.Requester(), "update roster")
		if ownerErr != nil {
			return nil, ownerErr
		}
		vendorID = owned.ID()
	}

	updated, err := vendorRepo.UpdateWith(ctx, vendorID, func(v *vendor.Vendor) error {
		if cmd.Op().adds() {
			v.AddToRoster(cmd.AgentID())
		} else {
			v.RemoveFromRoster(cmd.AgentID())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return updated, nil
}
