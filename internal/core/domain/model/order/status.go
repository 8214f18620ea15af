package order

import (
	"fmt"
	"strings"

	"foodmarket/internal/pkg/errs"
)

// Status is the fulfillment state of an order.
//
// State transitions:
//
//	Processing -> AcceptedByVendor -> ReadyForPickup       vendor (Processing may jump to ReadyForPickup)
//	AcceptedByVendor | ReadyForPickup -> AcceptedByDelivery  claim
//	AcceptedByDelivery -> PickedUp -> Delivered              claim holder
//
// Statuses are ordered: a later constant never moves back to an earlier one.
type Status int

const (
	// Unknown is the zero value and is never a valid stored state.
	Unknown Status = iota

	// Processing is the state after checkout; payment may still be unconfirmed.
	Processing

	// AcceptedByVendor means a vendor owning one of the items has taken the order.
	AcceptedByVendor

	// ReadyForPickup means the food waits for an agent.
	ReadyForPickup

	// AcceptedByDelivery means exactly one agent holds the claim.
	AcceptedByDelivery

	// PickedUp means the claim holder has collected the food.
	PickedUp

	// Delivered is terminal.
	Delivered
)

// statusNames pairs the enum name with the display label clients have always shown.
type statusNames struct {
	name  string
	label string
}

func getStatusNames() map[Status]statusNames {
	return map[Status]statusNames{
		Processing:         {"Processing", "Food Processing"},
		AcceptedByVendor:   {"AcceptedByVendor", "Accepted by vendor"},
		ReadyForPickup:     {"ReadyForPickup", "Ready for pickup"},
		AcceptedByDelivery: {"AcceptedByDelivery", "Accepted by delivery"},
		PickedUp:           {"PickedUp", "Picked up"},
		Delivered:          {"Delivered", "Delivered"},
	}
}

// ParseStatus accepts the enum name or the display label, ignoring case, spaces,
// underscores and hyphens. "ready_for_pickup", "Ready for pickup" and
// "ReadyForPickup" all parse to ReadyForPickup.
func ParseStatus(s string) (Status, error) {
	want := foldStatus(s)
	if want != "" {
		for st, names := range getStatusNames() {
			if foldStatus(names.name) == want || foldStatus(names.label) == want {
				return st, nil
			}
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a known status", s))
}

func foldStatus(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

func (s Status) Validate() error {
	if _, ok := getStatusNames()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if names, ok := getStatusNames()[s]; ok {
		return names.name
	}
	return "Unknown"
}

// Label returns the display string, e.g. "Ready for pickup".
func (s Status) Label() string {
	if names, ok := getStatusNames()[s]; ok {
		return names.label
	}
	return "Unknown"
}

// IsVendorPhase reports whether the order is still under vendor control.
func (s Status) IsVendorPhase() bool {
	return s == Processing || s == AcceptedByVendor || s == ReadyForPickup
}

// IsClaimable reports whether an unclaimed order may be claimed from this state.
func (s Status) IsClaimable() bool {
	return s == AcceptedByVendor || s == ReadyForPickup
}

// ValidateVendorMove checks a vendor-driven move to target. Re-setting the
// current state is allowed; moving backwards or out of the vendor phase is not.
func (s Status) ValidateVendorMove(target Status) error {
	if target != AcceptedByVendor && target != ReadyForPickup {
		return errs.NewInvalidTransitionError(s.String(), target.String())
	}
	if !s.IsVendorPhase() || target < s {
		return errs.NewInvalidTransitionError(s.String(), target.String())
	}
	return nil
}

// Claim returns the status after a successful fresh claim.
func (s Status) Claim() (Status, error) {
	if !s.IsClaimable() {
		return s, errs.NewInvalidTransitionError(s.String(), AcceptedByDelivery.String())
	}
	return AcceptedByDelivery, nil
}

// PickUp returns the status after pickup.
func (s Status) PickUp() (Status, error) {
	if s != AcceptedByDelivery {
		return s, errs.NewInvalidTransitionError(s.String(), PickedUp.String())
	}
	return PickedUp, nil
}

// Deliver returns the status after delivery.
func (s Status) Deliver() (Status, error) {
	if s != PickedUp {
		return s, errs.NewInvalidTransitionError(s.String(), Delivered.String())
	}
	return Delivered, nil
}
