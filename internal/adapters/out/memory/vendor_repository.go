package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/vendor"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/errs"
)

var _ ports.VendorRepository = (*VendorRepository)(nil)

type vendorRecord struct {
	id      kernel.UUID
	ownerID kernel.Identity
	name    string
	phone   string
	roster  []kernel.Identity
}

type VendorRepository struct {
	mu      sync.RWMutex
	vendors map[kernel.UUID]vendorRecord
}

func NewVendorRepository() *VendorRepository {
	return &VendorRepository{vendors: make(map[kernel.UUID]vendorRecord)}
}

func (r *VendorRepository) Add(_ context.Context, aggregate *vendor.Vendor) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vendors[aggregate.ID()]; ok {
		return errs.NewValueIsInvalidErrorWithCause("id", errors.New("vendor already exists"))
	}
	for _, rec := range r.vendors {
		if rec.ownerID.Matches(aggregate.OwnerID()) {
			return errs.NewValueIsInvalidErrorWithCause("ownerId", errors.New("owner already has a vendor"))
		}
	}
	r.vendors[aggregate.ID()] = toRecord(aggregate)
	return nil
}

func (r *VendorRepository) Get(_ context.Context, id kernel.UUID) (*vendor.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.vendors[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("vendor", id.String())
	}
	return rec.restore()
}

func (r *VendorRepository) UpdateWith(
	_ context.Context,
	id kernel.UUID,
	mutate func(v *vendor.Vendor) error,
) (*vendor.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.vendors[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("vendor", id.String())
	}
	current, err := rec.restore()
	if err != nil {
		return nil, err
	}
	if err = mutate(current); err != nil {
		return nil, err
	}
	r.vendors[id] = toRecord(current)
	return r.vendors[id].restore()
}

func (r *VendorRepository) List(_ context.Context) ([]*vendor.Vendor, error) {
	out, err := r.collect(func(vendorRecord) bool { return true })
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b *vendor.Vendor) int {
		if c := strings.Compare(a.Name(), b.Name()); c != 0 {
			return c
		}
		return strings.Compare(a.ID().String(), b.ID().String())
	})
	return out, nil
}

// FindByRef tries the record id first, then the owner id.
func (r *VendorRepository) FindByRef(_ context.Context, ref kernel.Identity) (*vendor.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id, err := kernel.UUIDFromString(ref.Canonical()); err == nil {
		if rec, ok := r.vendors[id]; ok {
			return rec.restore()
		}
	}
	for _, rec := range r.vendors {
		if rec.ownerID.Matches(ref) {
			return rec.restore()
		}
	}
	return nil, errs.NewObjectNotFoundError("vendorRef", ref.String())
}

func (r *VendorRepository) GetByOwner(_ context.Context, owner kernel.Identity) (*vendor.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.vendors {
		if rec.ownerID.Matches(owner) {
			return rec.restore()
		}
	}
	return nil, errs.NewObjectNotFoundError("ownerId", owner.String())
}

func (r *VendorRepository) ListByRosterMember(_ context.Context, agent kernel.Identity) ([]*vendor.Vendor, error) {
	if agent.IsEmpty() {
		return []*vendor.Vendor{}, nil
	}
	out, err := r.collect(func(rec vendorRecord) bool {
		return slices.ContainsFunc(rec.roster, agent.Matches)
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b *vendor.Vendor) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return out, nil
}

func (r *VendorRepository) collect(keep func(rec vendorRecord) bool) ([]*vendor.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*vendor.Vendor, 0, len(r.vendors))
	for _, rec := range r.vendors {
		if !keep(rec) {
			continue
		}
		v, err := rec.restore()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func toRecord(v *vendor.Vendor) vendorRecord {
	return vendorRecord{
		id:      v.ID(),
		ownerID: v.OwnerID(),
		name:    v.Name(),
		phone:   v.Phone(),
		roster:  v.Roster(),
	}
}

func (rec vendorRecord) restore() (*vendor.Vendor, error) {
	return vendor.RestoreVendor(rec.id, rec.ownerID, rec.name, rec.phone, slices.Clone(rec.roster))
}
