package order

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/pkg/errs"
	"foodmarket/internal/pkg/guard"
)

var ErrItemIsNotConstructed = errs.NewValueIsRequiredError("item must be created via NewItem")

// Item is one ordered line. VendorRef may hold either a vendor record id or the
// vendor owner's id; both resolve to the same vendor.
type Item struct { //nolint:recvcheck //using for validation
	vendorRef kernel.Identity
	name      string
	price     float64
	quantity  int
	guard     guard.ConstructorGuard
}

func NewItem(vendorRef kernel.Identity, name string, price float64, quantity int) (Item, error) {
	item := Item{guard: guard.NewConstructorGuard()}
	if err := errors.Join(
		item.setVendorRef(vendorRef),
		item.setName(name),
		item.setPrice(price),
		item.setQuantity(quantity),
	); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (i Item) VendorRef() kernel.Identity {
	return i.vendorRef
}

func (i Item) Name() string {
	return i.name
}

func (i Item) Price() float64 {
	return i.price
}

func (i Item) Quantity() int {
	return i.quantity
}

func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

func (i *Item) setVendorRef(ref kernel.Identity) error {
	if ref.IsEmpty() {
		return errs.NewValueIsRequiredError("vendorRef")
	}
	i.vendorRef = ref
	return nil
}

func (i *Item) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	i.name = name
	return nil
}

func (i *Item) setPrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return errs.NewValueIsInvalidErrorWithCause("price", fmt.Errorf("%v is not a non-negative amount", price))
	}
	i.price = price
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity < 1 {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is less than 1", quantity))
	}
	i.quantity = quantity
	return nil
}
