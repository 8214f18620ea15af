package commands

import (
	"errors"
	"strings"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/pkg/errs"
	"foodmarket/internal/pkg/guard"
)

var ErrUpdateVendorProfileCommandIsNotConstructed = errors.New(
	"UpdateVendorProfileCommand must be created via NewUpdateVendorProfileCommand constructor",
)

// UpdateVendorProfileCommand renames the requester's vendor and replaces its phone.
type UpdateVendorProfileCommand struct { //nolint:recvcheck //using for validation
	requester kernel.Identity
	name      string
	phone     string

	guard guard.ConstructorGuard
}

func NewUpdateVendorProfileCommand(requester kernel.Identity, name, phone string) (UpdateVendorProfileCommand, error) {
	name = strings.TrimSpace(name)
	var nameErr error
	if name == "" {
		nameErr = errs.NewValueIsRequiredError("name")
	}

	if err := errors.Join(
		validateIdentity("requesterId", requester),
		nameErr,
	); err != nil {
		return UpdateVendorProfileCommand{}, err
	}

	return UpdateVendorProfileCommand{
		requester: requester,
		name:      name,
		phone:     strings.TrimSpace(phone),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateVendorProfileCommand) Validate() error {
	return c.guard.Validate(ErrUpdateVendorProfileCommandIsNotConstructed)
}

func (c UpdateVendorProfileCommand) Requester() kernel.Identity {
	return c.requester
}

func (c UpdateVendorProfileCommand) Name() string {
	return c.name
}

func (c UpdateVendorProfileCommand) Phone() string {
	return c.phone
}
