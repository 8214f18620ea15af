package commands

import (
	"errors"
	"maps"
	"slices"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/pkg/errs"
	"foodmarket/internal/pkg/guard"
)

var ErrPlaceOrderCommandIsNotConstructed = errors.New(
	"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
)

// PlaceOrderCommand represents a checkout: a customer submits a cart of items that
// may come from several vendors. With cash on delivery the order starts paid.
//
// Example:
//
//	item, _ := order.NewItem(kernel.NewIdentity(vendorID), "Pad thai", 9.5, 2)
//	cmd, err := NewPlaceOrderCommand(kernel.NewUUID(), customerID, []order.Item{item}, 19, address, false)
//	if err != nil {
//	    return fmt.Errorf("invalid checkout: %w", err)
//	}
//
//	placed, err := handler.Handle(ctx, cmd)
type PlaceOrderCommand struct { //nolint:recvcheck //using for validation
	orderID        kernel.UUID
	customerID     kernel.Identity
	items          []order.Item
	amount         float64
	address        map[string]any
	cashOnDelivery bool

	guard guard.ConstructorGuard
}

// NewPlaceOrderCommand validates the checkout data. The amount is taken as given and
// must not be negative.
func NewPlaceOrderCommand(
	orderID kernel.UUID,
	customerID kernel.Identity,
	items []order.Item,
	amount float64,
	address map[string]any,
	cashOnDelivery bool,
) (PlaceOrderCommand, error) {
	cmd := PlaceOrderCommand{
		address:        maps.Clone(address),
		cashOnDelivery: cashOnDelivery,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		validateIdentity("customerId", customerID),
		cmd.setItems(items),
		cmd.setAmount(amount),
	); err != nil {
		return PlaceOrderCommand{}, err
	}
	cmd.customerID = customerID

	return cmd, nil
}

func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

func (c PlaceOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c PlaceOrderCommand) CustomerID() kernel.Identity {
	return c.customerID
}

func (c PlaceOrderCommand) Items() []order.Item {
	return slices.Clone(c.items)
}

func (c PlaceOrderCommand) Amount() float64 {
	return c.amount
}

func (c PlaceOrderCommand) Address() map[string]any {
	return maps.Clone(c.address)
}

func (c PlaceOrderCommand) CashOnDelivery() bool {
	return c.cashOnDelivery
}

func (c *PlaceOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *PlaceOrderCommand) setItems(items []order.Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	c.items = slices.Clone(items)
	return nil
}

func (c *PlaceOrderCommand) setAmount(amount float64) error {
	if amount < 0 {
		return errs.NewValueIsInvalidError("amount")
	}
	c.amount = amount
	return nil
}
