package ports

import (
	"context"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/vendor"
)

// VendorDirectory resolves principals and item references to vendors.
type VendorDirectory interface {
	// FindByRef resolves an item vendor reference, which may be either a vendor record
	// id or an owner id. Returns errs.ObjectNotFoundError when nothing matches.
	FindByRef(ctx context.Context, ref kernel.Identity) (*vendor.Vendor, error)

	// GetByOwner returns the vendor owned by owner or errs.ObjectNotFoundError.
	GetByOwner(ctx context.Context, owner kernel.Identity) (*vendor.Vendor, error)

	// ListByRosterMember returns every vendor whose roster contains agent under any
	// representation.
	ListByRosterMember(ctx context.Context, agent kernel.Identity) ([]*vendor.Vendor, error)
}

// VendorRepository defines the persistence contract for vendor aggregates.
type VendorRepository interface {
	VendorDirectory

	// Add persists a new vendor. An owner may have one vendor only.
	Add(ctx context.Context, aggregate *vendor.Vendor) error

	// Get returns the vendor or errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*vendor.Vendor, error)

	// UpdateWith applies mutate to the current persisted vendor while holding it
	// exclusively and writes the result. A mutate error aborts the write.
	UpdateWith(ctx context.Context, id kernel.UUID, mutate func(v *vendor.Vendor) error) (*vendor.Vendor, error)

	// List returns all vendors ordered by name.
	List(ctx context.Context) ([]*vendor.Vendor, error)
}
