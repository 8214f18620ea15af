package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"foodmarket/internal/adapters/out/memory"
	"foodmarket/internal/core/application/usecases/commands"
	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/domain/model/vendor"
	"foodmarket/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) UpdateIfMatches(
	ctx context.Context,
	id kernel.UUID,
	cond order.Condition,
	mutate order.Mutation,
) (*order.Order, error) {
	args := m.Called(ctx, id, cond, mutate)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) DeleteIfMatches(ctx context.Context, id kernel.UUID, cond order.Condition) (*order.Order, error) {
	args := m.Called(ctx, id, cond)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) ListByCustomer(ctx context.Context, customerID kernel.Identity) ([]*order.Order, error) {
	args := m.Called(ctx, customerID)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepository) ListByVendorSet(
	ctx context.Context,
	set kernel.IdentitySet,
	filter ports.OrderFilter,
) ([]*order.Order, error) {
	args := m.Called(ctx, set, filter)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepository) ListExpiredCheckouts(ctx context.Context, cutoff time.Time, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, cutoff, limit)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) VendorRepository() ports.VendorRepository {
	args := m.Called()
	return args.Get(0).(ports.VendorRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

// recordingPublisher keeps every published change.
type recordingPublisher struct {
	mu      sync.Mutex
	changes []order.Change
}

func (p *recordingPublisher) Publish(_ context.Context, change order.Change) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, change)
}

func (p *recordingPublisher) Changes() []order.Change {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]order.Change(nil), p.changes...)
}

type fixture struct {
	store     *memory.Store
	factory   *memory.UnitOfWorkFactory
	publisher *recordingPublisher
}

func newFixture() *fixture {
	store := memory.NewStore()
	return &fixture{
		store:     store,
		factory:   memory.NewUnitOfWorkFactory(store),
		publisher: &recordingPublisher{},
	}
}

// seedOrder stores an order for customer with one item per vendor ref, moved to
// status by a vendor when status is not Processing.
func (f *fixture) seedOrder(t *testing.T, customer string, status order.Status, vendorRefs ...string) *order.Order {
	t.Helper()

	items := make([]order.Item, 0, len(vendorRefs))
	for _, ref := range vendorRefs {
		item, err := order.NewItem(kernel.NewIdentity(ref), "Pad thai", 10, 1)
		require.NoError(t, err)
		items = append(items, item)
	}
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewIdentity(customer), items, 10*float64(len(items)), nil,
		time.Now().Add(-time.Hour))
	require.NoError(t, err)
	if status != order.Processing {
		_, err = o.SetStatusByVendor(status)
		require.NoError(t, err)
	}

	require.NoError(t, f.store.Orders().Add(t.Context(), o))
	return o
}

func (f *fixture) seedVendor(t *testing.T, owner string, roster ...string) *vendor.Vendor {
	t.Helper()

	v, err := vendor.NewVendor(kernel.NewUUID(), kernel.NewIdentity(owner), "Thai Corner", "555-0100")
	require.NoError(t, err)
	for _, agent := range roster {
		v.AddToRoster(kernel.NewIdentity(agent))
	}
	require.NoError(t, f.store.Vendors().Add(t.Context(), v))
	return v
}

func (f *fixture) reload(t *testing.T, id kernel.UUID) *order.Order {
	t.Helper()

	o, err := f.store.Orders().Get(t.Context(), id)
	require.NoError(t, err)
	return o
}
