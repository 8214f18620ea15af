package commands

import (
	"context"

	"foodmarket/internal/core/domain/model/vendor"
)

type UpdateVendorProfileCommandHandler struct {
	uowFactory UoWFactory
}

func NewUpdateVendorProfileCommandHandler(uowFactory UoWFactory) UpdateVendorProfileCommandHandler {
	return UpdateVendorProfileCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle updates the vendor owned by the requester. A requester without a vendor gets
// NotAuthorizedError.
func (h *UpdateVendorProfileCommandHandler) Handle(
	ctx context.Context,
	cmd UpdateVendorProfileCommand,
) (_ *vendor.Vendor, err error) {
	ctx, span := startSpan(ctx, "UpdateVendorProfile")
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
	owned, err := requireOwnedVendor(ctx, vendorRepo, cmd.Requester(), "update vendor")
	if err != nil {
		return nil, err
	}

	updated, err := vendorRepo.UpdateWith(ctx, owned.ID(), func(v *vendor.Vendor) error {
		return v.UpdateProfile(cmd.Name(), cmd.Phone())
	})
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return updated, nil
}
