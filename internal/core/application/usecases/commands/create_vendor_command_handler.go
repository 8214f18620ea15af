package commands

import (
	"context"

	"foodmarket/internal/core/domain/model/vendor"
)

type CreateVendorCommandHandler struct {
	uowFactory UoWFactory
}

func NewCreateVendorCommandHandler(uowFactory UoWFactory) CreateVendorCommandHandler {
	return CreateVendorCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle stores the vendor. A second vendor for the same owner fails with
// ValueIsInvalidError on ownerId.
func (h *CreateVendorCommandHandler) Handle(ctx context.Context, cmd CreateVendorCommand) (_ *vendor.Vendor, err error) {
	ctx, span := startSpan(ctx, "CreateVendor")
	defer func() { endSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	created, err := vendor.NewVendor(cmd.VendorID(), cmd.OwnerID(), cmd.Name(), cmd.Phone())
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.VendorRepository().Add(ctx, created); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return created, nil
}
