package commands

import (
	"errors"
	"strings"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/pkg/errs"
	"foodmarket/internal/pkg/guard"
)

var ErrCreateVendorCommandIsNotConstructed = errors.New(
	"CreateVendorCommand must be created via NewCreateVendorCommand constructor",
)

// CreateVendorCommand registers the vendor of a principal. A principal owns at most one
// vendor.
type CreateVendorCommand struct { //nolint:recvcheck //using for validation
	vendorID kernel.UUID
	ownerID  kernel.Identity
	name     string
	phone    string

	guard guard.ConstructorGuard
}

func NewCreateVendorCommand(vendorID kernel.UUID, ownerID kernel.Identity, name, phone string) (CreateVendorCommand, error) {
	name = strings.TrimSpace(name)
	var nameErr error
	if name == "" {
		nameErr = errs.NewValueIsRequiredError("name")
	}

	if err := errors.Join(
		vendorID.Validate(),
		validateIdentity("ownerId", ownerID),
		nameErr,
	); err != nil {
		return CreateVendorCommand{}, err
	}

	return CreateVendorCommand{
		vendorID: vendorID,
		ownerID:  ownerID,
		name:     name,
		phone:    strings.TrimSpace(phone),
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c CreateVendorCommand) Validate() error {
	return c.guard.Validate(ErrCreateVendorCommandIsNotConstructed)
}

func (c CreateVendorCommand) VendorID() kernel.UUID {
	return c.vendorID
}

func (c CreateVendorCommand) OwnerID() kernel.Identity {
	return c.ownerID
}

func (c CreateVendorCommand) Name() string {
	return c.name
}

func (c CreateVendorCommand) Phone() string {
	return c.phone
}
