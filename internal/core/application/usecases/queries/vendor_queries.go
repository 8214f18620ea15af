package queries

import (
	"context"
	"errors"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/guard"
)

var (
	ErrGetMyVendorQueryIsNotConstructed = errors.New(
		"GetMyVendorQuery must be created via NewGetMyVendorQuery constructor",
	)
	ErrGetAssignedVendorsQueryIsNotConstructed = errors.New(
		"GetAssignedVendorsQuery must be created via NewGetAssignedVendorsQuery constructor",
	)
	ErrListVendorsQueryIsNotConstructed = errors.New(
		"ListVendorsQuery must be created via NewListVendorsQuery constructor",
	)
)

// GetMyVendorQuery returns the vendor owned by the requester.
type GetMyVendorQuery struct {
	ownerID kernel.Identity

	guard guard.ConstructorGuard
}

func NewGetMyVendorQuery(ownerID kernel.Identity) (GetMyVendorQuery, error) {
	if err := validateIdentity("ownerId", ownerID); err != nil {
		return GetMyVendorQuery{}, err
	}
	return GetMyVendorQuery{ownerID: ownerID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetMyVendorQuery) Validate() error {
	return q.guard.Validate(ErrGetMyVendorQueryIsNotConstructed)
}

type GetMyVendorQueryHandler struct {
	vendors ports.VendorDirectory
}

func NewGetMyVendorQueryHandler(vendors ports.VendorDirectory) GetMyVendorQueryHandler {
	return GetMyVendorQueryHandler{vendors: vendors}
}

// Handle fails with ObjectNotFoundError when the requester owns no vendor.
func (h GetMyVendorQueryHandler) Handle(ctx context.Context, query GetMyVendorQuery) (VendorResponse, error) {
	if err := query.Validate(); err != nil {
		return VendorResponse{}, err
	}

	v, err := h.vendors.GetByOwner(ctx, query.ownerID)
	if err != nil {
		return VendorResponse{}, err
	}
	return newVendorResponse(v), nil
}

// GetAssignedVendorsQuery returns the vendors whose roster contains the agent under
// any representation of its id.
type GetAssignedVendorsQuery struct {
	agentID kernel.Identity

	guard guard.ConstructorGuard
}

func NewGetAssignedVendorsQuery(agentID kernel.Identity) (GetAssignedVendorsQuery, error) {
	if err := validateIdentity("agentId", agentID); err != nil {
		return GetAssignedVendorsQuery{}, err
	}
	return GetAssignedVendorsQuery{agentID: agentID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetAssignedVendorsQuery) Validate() error {
	return q.guard.Validate(ErrGetAssignedVendorsQueryIsNotConstructed)
}

type GetAssignedVendorsQueryHandler struct {
	vendors ports.VendorDirectory
}

func NewGetAssignedVendorsQueryHandler(vendors ports.VendorDirectory) GetAssignedVendorsQueryHandler {
	return GetAssignedVendorsQueryHandler{vendors: vendors}
}

func (h GetAssignedVendorsQueryHandler) Handle(ctx context.Context, query GetAssignedVendorsQuery) ([]VendorResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	vendors, err := h.vendors.ListByRosterMember(ctx, query.agentID)
	if err != nil {
		return nil, err
	}
	return newVendorResponses(vendors), nil
}

// ListVendorsQuery returns every vendor ordered by name.
type ListVendorsQuery struct {
	guard guard.ConstructorGuard
}

func NewListVendorsQuery() ListVendorsQuery {
	return ListVendorsQuery{guard: guard.NewConstructorGuard()}
}

func (q ListVendorsQuery) Validate() error {
	return q.guard.Validate(ErrListVendorsQueryIsNotConstructed)
}

type ListVendorsQueryHandler struct {
	vendors ports.VendorRepository
}

func NewListVendorsQueryHandler(vendors ports.VendorRepository) ListVendorsQueryHandler {
	return ListVendorsQueryHandler{vendors: vendors}
}

func (h ListVendorsQueryHandler) Handle(ctx context.Context, query ListVendorsQuery) ([]VendorResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	vendors, err := h.vendors.List(ctx)
	if err != nil {
		return nil, err
	}
	return newVendorResponses(vendors), nil
}
