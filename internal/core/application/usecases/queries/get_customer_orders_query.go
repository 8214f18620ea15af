package queries

import (
	"context"
	"errors"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/guard"
)

var ErrGetCustomerOrdersQueryIsNotConstructed = errors.New(
	"GetCustomerOrdersQuery must be created via NewGetCustomerOrdersQuery constructor",
)

// GetCustomerOrdersQuery lists the orders a customer placed, newest first, with all
// their items.
type GetCustomerOrdersQuery struct {
	customerID kernel.Identity

	guard guard.ConstructorGuard
}

func NewGetCustomerOrdersQuery(customerID kernel.Identity) (GetCustomerOrdersQuery, error) {
	if err := validateIdentity("customerId", customerID); err != nil {
		return GetCustomerOrdersQuery{}, err
	}
	return GetCustomerOrdersQuery{customerID: customerID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetCustomerOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetCustomerOrdersQueryIsNotConstructed)
}

func (q GetCustomerOrdersQuery) CustomerID() kernel.Identity {
	return q.customerID
}

type GetCustomerOrdersQueryHandler struct {
	orders ports.OrderRepository
}

func NewGetCustomerOrdersQueryHandler(orders ports.OrderRepository) GetCustomerOrdersQueryHandler {
	return GetCustomerOrdersQueryHandler{orders: orders}
}

func (h GetCustomerOrdersQueryHandler) Handle(ctx context.Context, query GetCustomerOrdersQuery) ([]OrderResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders, err := h.orders.ListByCustomer(ctx, query.CustomerID())
	if err != nil {
		return nil, err
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, newOrderResponse(o, o.Items()))
	}
	return out, nil
}
