package services

import (
	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/domain/model/vendor"
)

// IdentityResolver answers "does this principal correspond to this vendor, agent or
// item" questions. Vendors are known by two ids at once (record id and owner id) and
// ids arrive in several textual shapes, so every comparison goes through canonical
// identity sets. It never fails: unknown or empty input yields empty results.
//
// Example:
//
//	resolver := services.NewIdentityResolver()
//	set := resolver.ResolveVendorIdentitySet(v)
//	mine := resolver.ItemsMatchingIdentitySet(o, set)
type IdentityResolver struct{}

func NewIdentityResolver() IdentityResolver {
	return IdentityResolver{}
}

// ResolveVendorIdentitySet returns {record id, owner id}, or an empty set for nil.
func (IdentityResolver) ResolveVendorIdentitySet(v *vendor.Vendor) kernel.IdentitySet {
	if v == nil {
		return kernel.NewIdentitySet()
	}
	return v.IdentitySet()
}

// UnionIdentitySet merges the identity sets of all vendors.
func (r IdentityResolver) UnionIdentitySet(vendors []*vendor.Vendor) kernel.IdentitySet {
	union := kernel.NewIdentitySet()
	for _, v := range vendors {
		for _, id := range r.ResolveVendorIdentitySet(v).Members() {
			union.Add(id)
		}
	}
	return union
}

// RequesterIdentitySet is the set a vendor-side requester acts under: the identities
// of the vendor it owns (owned may be nil) plus its own id, since items may name the
// owner directly before any vendor record exists.
func (r IdentityResolver) RequesterIdentitySet(owned *vendor.Vendor, requester kernel.Identity) kernel.IdentitySet {
	set := r.ResolveVendorIdentitySet(owned)
	set.Add(requester)
	return set
}

// ItemsMatchingIdentitySet returns the items of o sold by the vendor behind set.
func (IdentityResolver) ItemsMatchingIdentitySet(o *order.Order, set kernel.IdentitySet) []order.Item {
	if o == nil {
		return []order.Item{}
	}
	return o.ItemsMatching(set)
}
