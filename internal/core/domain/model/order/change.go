package order

import (
	"maps"
	"time"

	"foodmarket/internal/core/domain/model/kernel"
)

// ChangeType names the kind of committed change, as seen by subscribers.
type ChangeType string

const (
	ChangeCreated  ChangeType = "order:new"
	ChangeUpdated  ChangeType = "order:update"
	ChangeLocation ChangeType = "order:location"
	ChangeRemoved  ChangeType = "order:removed"
)

// Change describes one committed order change. Fields carries only what changed;
// CustomerID and VendorRefs are kept so the change can be routed without a reload.
type Change struct {
	Type       ChangeType
	OrderID    kernel.UUID
	CustomerID kernel.Identity
	VendorRefs []kernel.Identity
	Fields     map[string]any
	OccurredAt time.Time
}

// NewChange builds a change for o.
func (o *Order) NewChange(typ ChangeType, fields map[string]any, at time.Time) Change {
	return Change{
		Type:       typ,
		OrderID:    o.id,
		CustomerID: o.customerID,
		VendorRefs: o.VendorRefs(),
		Fields:     maps.Clone(fields),
		OccurredAt: at.UTC(),
	}
}

// StatusChange carries the new status plus the field that moved with it.
func (o *Order) StatusChange(at time.Time) Change {
	fields := map[string]any{"status": o.status.Label()}
	switch {
	case o.status == AcceptedByDelivery:
		fields["claimedBy"] = o.claimedBy.String()
	case o.status == PickedUp && o.pickedAt != nil:
		fields["pickedAt"] = *o.pickedAt
	case o.status == Delivered && o.deliveredAt != nil:
		fields["deliveredAt"] = *o.deliveredAt
	}
	return o.NewChange(ChangeUpdated, fields, at)
}

// LocationChange carries the newest location sample.
func (o *Order) LocationChange(at time.Time) Change {
	fields := map[string]any{}
	if o.location != nil {
		fields["lat"] = o.location.point.Lat()
		fields["lng"] = o.location.point.Lng()
		fields["updatedAt"] = o.location.sampledAt
	}
	return o.NewChange(ChangeLocation, fields, at)
}
