package order

import (
	"errors"
	"maps"
	"slices"
	"time"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Condition is evaluated against the current persisted order while the store holds
// it exclusively. A non-nil error aborts the update and is returned unchanged.
type Condition func(o *Order) error

// Mutation applies a change to the order after its Condition passed. A non-nil error
// aborts the update and nothing is written.
type Mutation func(o *Order) error

// Order is the aggregate root of the fulfillment core.
//
// Invariants:
//   - claimedBy moves from empty to exactly one agent and never changes owner
//   - pickedAt >= createdAt and deliveredAt >= pickedAt; neither is ever cleared
//   - items are fixed at checkout; vendor actions never touch them
//   - status only moves forward, see Status
type Order struct {
	id               kernel.UUID
	customerID       kernel.Identity
	items            []Item
	amount           float64
	address          map[string]any
	paymentConfirmed bool
	status           Status
	claimedBy        kernel.Identity
	assignedDelivery kernel.Identity
	pickedAt         *time.Time
	deliveredAt      *time.Time
	location         *DeliveryLocation
	createdAt        time.Time

	isConstructed bool
}

// NewOrder creates an order in Processing status. It fails unless the customer is a
// non-empty identity and there is at least one constructed item.
func NewOrder(
	id kernel.UUID,
	customerID kernel.Identity,
	items []Item,
	amount float64,
	address map[string]any,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		status:        Processing,
		createdAt:     createdAt.UTC(),
		amount:        amount,
		address:       maps.Clone(address),
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Snapshot is the full persisted state of an order. It is used by repositories to
// restore aggregates and by adapters that need a detached copy.
type Snapshot struct {
	ID               kernel.UUID
	CustomerID       kernel.Identity
	Items            []Item
	Amount           float64
	Address          map[string]any
	PaymentConfirmed bool
	Status           Status
	ClaimedBy        kernel.Identity
	AssignedDelivery kernel.Identity
	PickedAt         *time.Time
	DeliveredAt      *time.Time
	Location         *DeliveryLocation
	CreatedAt        time.Time
}

// RestoreOrder rebuilds an order from persistence, re-checking the invariants that
// can be checked on a single snapshot.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		amount:           s.Amount,
		address:          maps.Clone(s.Address),
		paymentConfirmed: s.PaymentConfirmed,
		claimedBy:        s.ClaimedBy,
		assignedDelivery: s.AssignedDelivery,
		pickedAt:         cloneTime(s.PickedAt),
		deliveredAt:      cloneTime(s.DeliveredAt),
		createdAt:        s.CreatedAt.UTC(),
		isConstructed:    true,
	}
	if s.Location != nil {
		loc := *s.Location
		o.location = &loc
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setCustomerID(s.CustomerID),
		o.setItems(s.Items),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}
	o.status = s.Status

	return o, nil
}

// Snapshot returns a detached copy of the order state.
func (o *Order) Snapshot() Snapshot {
	s := Snapshot{
		ID:               o.id,
		CustomerID:       o.customerID,
		Items:            slices.Clone(o.items),
		Amount:           o.amount,
		Address:          maps.Clone(o.address),
		PaymentConfirmed: o.paymentConfirmed,
		Status:           o.status,
		ClaimedBy:        o.claimedBy,
		AssignedDelivery: o.assignedDelivery,
		PickedAt:         cloneTime(o.pickedAt),
		DeliveredAt:      cloneTime(o.deliveredAt),
		CreatedAt:        o.createdAt,
	}
	if o.location != nil {
		loc := *o.location
		s.Location = &loc
	}
	return s
}

// Validate ensures the order was created through NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) CustomerID() kernel.Identity {
	return o.customerID
}

// Items returns a copy of the ordered lines.
func (o *Order) Items() []Item {
	return slices.Clone(o.items)
}

func (o *Order) Amount() float64 {
	return o.amount
}

func (o *Order) Address() map[string]any {
	return maps.Clone(o.address)
}

func (o *Order) PaymentConfirmed() bool {
	return o.paymentConfirmed
}

func (o *Order) Status() Status {
	return o.status
}

// ClaimedBy returns the agent holding the claim, or "" when unclaimed.
func (o *Order) ClaimedBy() kernel.Identity {
	return o.claimedBy
}

// AssignedDelivery returns the agent pre-assigned by the vendor, or "".
func (o *Order) AssignedDelivery() kernel.Identity {
	return o.assignedDelivery
}

func (o *Order) PickedAt() *time.Time {
	return cloneTime(o.pickedAt)
}

func (o *Order) DeliveredAt() *time.Time {
	return cloneTime(o.deliveredAt)
}

// Location returns the latest reported position, or nil.
func (o *Order) Location() *DeliveryLocation {
	if o.location == nil {
		return nil
	}
	loc := *o.location
	return &loc
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) IsClaimed() bool {
	return !o.claimedBy.IsEmpty()
}

// VendorRefs returns the distinct vendor references of the items, in item order.
func (o *Order) VendorRefs() []kernel.Identity {
	seen := kernel.NewIdentitySet()
	refs := make([]kernel.Identity, 0, len(o.items))
	for _, item := range o.items {
		if seen.Contains(item.vendorRef) {
			continue
		}
		seen.Add(item.vendorRef)
		refs = append(refs, item.vendorRef)
	}
	return refs
}

// ItemsMatching returns the items whose vendor reference is in set, in item order.
func (o *Order) ItemsMatching(set kernel.IdentitySet) []Item {
	out := make([]Item, 0, len(o.items))
	for _, item := range o.items {
		if set.Contains(item.vendorRef) {
			out = append(out, item)
		}
	}
	return out
}

// HasVendor reports whether any item references a member of the vendor identity set.
func (o *Order) HasVendor(set kernel.IdentitySet) bool {
	return set.Intersects(o.VendorRefs()...)
}

// AuthorizeVendor fails with NotAuthorizedError unless the vendor identity set
// matches at least one item.
func (o *Order) AuthorizeVendor(set kernel.IdentitySet, action string) error {
	if !o.HasVendor(set) {
		return errs.NewNotAuthorizedError(action, "order "+o.id.String())
	}
	return nil
}

// AuthorizeHolder fails with NotAuthorizedError unless agent holds the claim.
func (o *Order) AuthorizeHolder(agent kernel.Identity, action string) error {
	if !o.claimedBy.Matches(agent) {
		return errs.NewNotAuthorizedError(action, "order "+o.id.String())
	}
	return nil
}

// AuthorizeLocationReporter fails unless agent is the claim holder or the pre-assigned
// agent. When neither is set nobody may report.
func (o *Order) AuthorizeLocationReporter(agent kernel.Identity) error {
	if o.claimedBy.Matches(agent) || o.assignedDelivery.Matches(agent) {
		return nil
	}
	return errs.NewNotAuthorizedError("report location", "order "+o.id.String())
}

// CanViewLocation reports whether requester may read the delivery location: the
// customer, the claim holder, the assigned agent, or a vendor whose identity set
// matches an item.
func (o *Order) CanViewLocation(requester kernel.Identity, vendorSet kernel.IdentitySet) bool {
	if o.customerID.Matches(requester) || o.claimedBy.Matches(requester) || o.assignedDelivery.Matches(requester) {
		return true
	}
	return o.HasVendor(vendorSet)
}

// ConfirmPayment marks the order as paid. Confirming twice is a no-op.
func (o *Order) ConfirmPayment() bool {
	if o.paymentConfirmed {
		return false
	}
	o.paymentConfirmed = true
	return true
}

// ValidateDiscard checks that a failed payment may still remove the order: it must
// be unpaid, in Processing, and untouched by vendors and agents.
func (o *Order) ValidateDiscard() error {
	if o.paymentConfirmed || o.status != Processing || !o.claimedBy.IsEmpty() || !o.assignedDelivery.IsEmpty() {
		return errs.NewInvalidTransitionError(o.status.String(), "PaymentFailed")
	}
	return nil
}

// SetStatusByVendor moves the order within the vendor phase. It reports whether the
// status actually changed.
func (o *Order) SetStatusByVendor(target Status) (bool, error) {
	if err := o.status.ValidateVendorMove(target); err != nil {
		return false, err
	}
	if o.status == target {
		return false, nil
	}
	o.status = target
	return true, nil
}

// CheckClaim is the atomic claim condition: the order is unclaimed or already held by
// agent. Another holder yields ClaimConflictError.
func (o *Order) CheckClaim(agent kernel.Identity) error {
	if agent.IsEmpty() {
		return errs.NewValueIsRequiredError("agentId")
	}
	if o.IsClaimed() && !o.claimedBy.Matches(agent) {
		return errs.NewClaimConflictError(o.id.String())
	}
	return nil
}

// Claim hands the order to agent. A repeated claim by the holder succeeds without
// changing anything and reports false.
func (o *Order) Claim(agent kernel.Identity) (bool, error) {
	if err := o.CheckClaim(agent); err != nil {
		return false, err
	}
	if o.claimedBy.Matches(agent) {
		return false, nil
	}

	next, err := o.status.Claim()
	if err != nil {
		return false, err
	}

	o.claimedBy = agent
	o.status = next
	return true, nil
}

// MarkPickedUp records the pickup by the claim holder. The timestamp is never
// earlier than createdAt.
func (o *Order) MarkPickedUp(agent kernel.Identity, now time.Time) error {
	if err := o.AuthorizeHolder(agent, "pickup"); err != nil {
		return err
	}
	next, err := o.status.PickUp()
	if err != nil {
		return err
	}

	at := latest(now.UTC(), o.createdAt)
	o.status = next
	o.pickedAt = &at
	return nil
}

// MarkDelivered records the delivery by the claim holder. The timestamp is never
// earlier than pickedAt.
func (o *Order) MarkDelivered(agent kernel.Identity, now time.Time) error {
	if err := o.AuthorizeHolder(agent, "deliver"); err != nil {
		return err
	}
	next, err := o.status.Deliver()
	if err != nil {
		return err
	}

	at := now.UTC()
	if o.pickedAt != nil {
		at = latest(at, *o.pickedAt)
	}
	o.status = next
	o.deliveredAt = &at
	return nil
}

// AssignDelivery pre-assigns agent before pickup. It does not claim the order.
func (o *Order) AssignDelivery(agent kernel.Identity) (bool, error) {
	if agent.IsEmpty() {
		return false, errs.NewValueIsRequiredError("agentId")
	}
	if o.status >= PickedUp {
		return false, errs.NewInvalidTransitionError(o.status.String(), "AssignDelivery")
	}
	if o.assignedDelivery.Matches(agent) {
		return false, nil
	}
	o.assignedDelivery = agent
	return true, nil
}

// ReportLocation overwrites the delivery location with the newest sample.
func (o *Order) ReportLocation(agent kernel.Identity, point kernel.GeoPoint, now time.Time) error {
	if err := o.AuthorizeLocationReporter(agent); err != nil {
		return err
	}
	loc, err := NewDeliveryLocation(point, agent, now)
	if err != nil {
		return err
	}
	o.location = &loc
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerID(customerID kernel.Identity) error {
	if customerID.IsEmpty() {
		return errs.NewValueIsRequiredError("customerId")
	}
	o.customerID = customerID
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	o.items = slices.Clone(items)
	return nil
}

func latest(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
