// Package orderrepo persists order aggregates with GORM. Every identity column has a
// companion *_key column holding its canonical form, so lookups by principal match
// any representation of the same id.
package orderrepo

import (
	"encoding/json"
	"fmt"
	"time"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO is the orders row.
type OrderDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID       string
	CustomerKey      string `gorm:"index"`
	Amount           float64
	Address          string `gorm:"type:jsonb"`
	PaymentConfirmed bool
	Status           int
	ClaimedBy        string
	ClaimedKey       string
	AssignedDelivery string
	AssignedKey      string
	PickedAt         *time.Time
	DeliveredAt      *time.Time
	Location         LocationDTO `gorm:"embedded;embeddedPrefix:location_"`
	CreatedAt        time.Time
	Items            []OrderItemDTO `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// LocationDTO holds the latest delivery location; all columns are NULL until the
// first report.
type LocationDTO struct {
	Lat        *float64
	Lng        *float64
	SampledAt  *time.Time
	ReportedBy *string
}

// OrderItemDTO is one order_items row. Position keeps the checkout order of items.
type OrderItemDTO struct {
	OrderID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position  int       `gorm:"primaryKey;autoIncrement:false"`
	VendorRef string
	VendorKey string `gorm:"index"`
	Name      string
	Price     float64
	Quantity  int
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

func fromDomain(o *order.Order) (OrderDTO, error) {
	snap := o.Snapshot()

	address := "{}"
	if len(snap.Address) > 0 {
		raw, err := json.Marshal(snap.Address)
		if err != nil {
			return OrderDTO{}, fmt.Errorf("encode address: %w", err)
		}
		address = string(raw)
	}

	dto := OrderDTO{
		ID:               snap.ID.Bytes(),
		CustomerID:       snap.CustomerID.String(),
		CustomerKey:      snap.CustomerID.Canonical(),
		Amount:           snap.Amount,
		Address:          address,
		PaymentConfirmed: snap.PaymentConfirmed,
		Status:           int(snap.Status),
		ClaimedBy:        snap.ClaimedBy.String(),
		ClaimedKey:       snap.ClaimedBy.Canonical(),
		AssignedDelivery: snap.AssignedDelivery.String(),
		AssignedKey:      snap.AssignedDelivery.Canonical(),
		PickedAt:         snap.PickedAt,
		DeliveredAt:      snap.DeliveredAt,
		CreatedAt:        snap.CreatedAt,
		Items:            make([]OrderItemDTO, 0, len(snap.Items)),
	}

	if loc := snap.Location; loc != nil {
		lat, lng := loc.Point().Lat(), loc.Point().Lng()
		sampledAt := loc.SampledAt()
		reportedBy := loc.ReportedBy().String()
		dto.Location = LocationDTO{Lat: &lat, Lng: &lng, SampledAt: &sampledAt, ReportedBy: &reportedBy}
	}

	for i, item := range snap.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			OrderID:   dto.ID,
			Position:  i,
			VendorRef: item.VendorRef().String(),
			VendorKey: item.VendorRef().Canonical(),
			Name:      item.Name(),
			Price:     item.Price(),
			Quantity:  item.Quantity(),
		})
	}

	return dto, nil
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var address map[string]any
	if dto.Address != "" {
		if err = json.Unmarshal([]byte(dto.Address), &address); err != nil {
			return nil, fmt.Errorf("decode address of order %s: %w", id, err)
		}
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, row := range dto.Items {
		item, itemErr := order.NewItem(kernel.NewIdentity(row.VendorRef), row.Name, row.Price, row.Quantity)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	var location *order.DeliveryLocation
	if l := dto.Location; l.Lat != nil && l.Lng != nil {
		point, pointErr := kernel.NewGeoPoint(*l.Lat, *l.Lng)
		if pointErr != nil {
			return nil, pointErr
		}
		var (
			reportedBy kernel.Identity
			sampledAt  time.Time
		)
		if l.ReportedBy != nil {
			reportedBy = kernel.NewIdentity(*l.ReportedBy)
		}
		if l.SampledAt != nil {
			sampledAt = *l.SampledAt
		}
		loc, locErr := order.NewDeliveryLocation(point, reportedBy, sampledAt)
		if locErr != nil {
			return nil, locErr
		}
		location = &loc
	}

	return order.RestoreOrder(order.Snapshot{
		ID:               id,
		CustomerID:       kernel.NewIdentity(dto.CustomerID),
		Items:            items,
		Amount:           dto.Amount,
		Address:          address,
		PaymentConfirmed: dto.PaymentConfirmed,
		Status:           order.Status(dto.Status),
		ClaimedBy:        kernel.NewIdentity(dto.ClaimedBy),
		AssignedDelivery: kernel.NewIdentity(dto.AssignedDelivery),
		PickedAt:         dto.PickedAt,
		DeliveredAt:      dto.DeliveredAt,
		Location:         location,
		CreatedAt:        dto.CreatedAt,
	})
}
