package http

import (
	"time"

	"foodmarket/internal/core/application/usecases/queries"
)

type OrderItemDTO struct {
	VendorID string  `json:"vendorId" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity int     `json:"quantity" validate:"gte=1"`
}

type PlaceOrderRequest struct {
	Items          []OrderItemDTO `json:"items" validate:"required,min=1,dive"`
	Amount         float64        `json:"amount" validate:"gte=0"`
	Address        map[string]any `json:"address"`
	CashOnDelivery bool           `json:"cashOnDelivery"`
}

type VerifyPaymentRequest struct {
	Success *bool `json:"success" validate:"required"`
}

type VendorStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AssignDeliveryRequest struct {
	AgentID string `json:"agentId" validate:"required"`
}

type ReportLocationRequest struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}

type VendorProfileRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
}

// OrderDTO is the wire shape of an order. Status carries the display label and
// Payment keeps the name clients have always read.
type OrderDTO struct {
	ID               string         `json:"id"`
	CustomerID       string         `json:"customerId"`
	Items            []OrderItemDTO `json:"items"`
	Amount           float64        `json:"amount"`
	Address          map[string]any `json:"address,omitempty"`
	Payment          bool           `json:"payment"`
	Status           string         `json:"status"`
	ClaimedBy        string         `json:"claimedBy,omitempty"`
	AssignedDelivery string         `json:"assignedDelivery,omitempty"`
	PickedAt         *time.Time     `json:"pickedAt,omitempty"`
	DeliveredAt      *time.Time     `json:"deliveredAt,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
}

type LocationDTO struct {
	OrderID    string    `json:"orderId"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	ReportedBy string    `json:"reportedBy"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type VendorDTO struct {
	ID             string   `json:"id"`
	OwnerID        string   `json:"ownerId"`
	Name           string   `json:"name"`
	Phone          string   `json:"phone,omitempty"`
	DeliveryRoster []string `json:"deliveryRoster"`
}

func toOrderDTO(o queries.OrderResponse) OrderDTO {
	dto := OrderDTO{
		ID:               o.ID.String(),
		CustomerID:       o.CustomerID.String(),
		Items:            make([]OrderItemDTO, 0, len(o.Items)),
		Amount:           o.Amount,
		Address:          o.Address,
		Payment:          o.PaymentConfirmed,
		Status:           o.Status.Label(),
		ClaimedBy:        o.ClaimedBy.String(),
		AssignedDelivery: o.AssignedDelivery.String(),
		PickedAt:         o.PickedAt,
		DeliveredAt:      o.DeliveredAt,
		CreatedAt:        o.CreatedAt,
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			VendorID: item.VendorRef.String(),
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return dto
}

func toOrderDTOs(orders []queries.OrderResponse) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderDTO(o))
	}
	return out
}

func toVendorDTO(v queries.VendorResponse) VendorDTO {
	roster := make([]string, 0, len(v.Roster))
	for _, agent := range v.Roster {
		roster = append(roster, agent.String())
	}
	return VendorDTO{
		ID:             v.ID.String(),
		OwnerID:        v.OwnerID.String(),
		Name:           v.Name,
		Phone:          v.Phone,
		DeliveryRoster: roster,
	}
}

func toVendorDTOs(vendors []queries.VendorResponse) []VendorDTO {
	out := make([]VendorDTO, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, toVendorDTO(v))
	}
	return out
}
