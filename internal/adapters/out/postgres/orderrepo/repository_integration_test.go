package orderrepo_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	postgres_adapter "foodmarket/internal/adapters/out/postgres"
	"foodmarket/internal/adapters/out/postgres/orderrepo"
	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// OrderRepositoryIntegrationTestSuite runs the order repository against a real
// PostgreSQL container with the embedded migrations applied.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := postgres_adapter.Open(connStr)
	suite.Require().NoError(err)
	suite.db = db
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE order_items, orders").Error)

	suite.repository = orderrepo.NewGormOrderRepository(suite.db)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAddGet_RoundTripsAggregate() {
	ctx := context.Background()
	o := suite.createOrder("C1", baseTime, "V1", "507F1F77BCF86CD799439011")

	suite.Require().NoError(suite.repository.Add(ctx, o))

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.True(got.ID().IsEqual(o.ID()))
	suite.Equal(kernel.Identity("C1"), got.CustomerID())
	suite.Equal(order.Processing, got.Status())
	suite.Equal("Pune", got.Address()["city"])
	suite.Require().Len(got.Items(), 2)
	suite.Equal(kernel.Identity("V1"), got.Items()[0].VendorRef())
	suite.Equal(kernel.Identity("507F1F77BCF86CD799439011"), got.Items()[1].VendorRef())
	suite.True(got.CreatedAt().Equal(baseTime))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_DuplicateID_ReturnsValidationError() {
	ctx := context.Background()
	o := suite.createOrder("C1", baseTime, "V1")
	suite.Require().NoError(suite.repository.Add(ctx, o))

	err := suite.repository.Add(ctx, o)

	suite.Require().ErrorIs(err, errs.ErrValueIsInvalid)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFoundError() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdateIfMatches_FullLifecycle() {
	ctx := context.Background()
	o := suite.createOrder("C1", baseTime, "V1")
	suite.Require().NoError(suite.repository.Add(ctx, o))
	agent := kernel.Identity("agent-1")

	_, err := suite.repository.UpdateIfMatches(ctx, o.ID(), nil, func(cur *order.Order) error {
		_, err := cur.SetStatusByVendor(order.ReadyForPickup)
		return err
	})
	suite.Require().NoError(err)

	_, err = suite.repository.UpdateIfMatches(ctx, o.ID(),
		func(cur *order.Order) error { return cur.CheckClaim(agent) },
		func(cur *order.Order) error {
			_, err := cur.Claim(agent)
			return err
		})
	suite.Require().NoError(err)

	point, err := kernel.NewGeoPoint(18.52, 73.85)
	suite.Require().NoError(err)
	_, err = suite.repository.UpdateIfMatches(ctx, o.ID(), nil, func(cur *order.Order) error {
		return cur.ReportLocation(agent, point, baseTime.Add(5*time.Minute))
	})
	suite.Require().NoError(err)

	_, err = suite.repository.UpdateIfMatches(ctx, o.ID(), nil, func(cur *order.Order) error {
		return cur.MarkPickedUp(agent, baseTime.Add(10*time.Minute))
	})
	suite.Require().NoError(err)

	stored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.PickedUp, stored.Status())
	suite.Equal(agent, stored.ClaimedBy())
	suite.Require().NotNil(stored.PickedAt())
	suite.True(stored.PickedAt().Equal(baseTime.Add(10 * time.Minute)))
	suite.Require().NotNil(stored.Location())
	suite.InDelta(18.52, stored.Location().Point().Lat(), 1e-9)
	suite.InDelta(73.85, stored.Location().Point().Lng(), 1e-9)
	suite.Equal(agent, stored.Location().ReportedBy())
	suite.Len(stored.Items(), 1)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdateIfMatches_FailedCondition_WritesNothing() {
	ctx := context.Background()
	o := suite.createOrder("C1", baseTime, "V1")
	suite.Require().NoError(suite.repository.Add(ctx, o))

	_, err := suite.repository.UpdateIfMatches(ctx, o.ID(),
		func(*order.Order) error { return errs.NewClaimConflictError(o.ID().String()) },
		func(cur *order.Order) error {
			cur.ConfirmPayment()
			return nil
		})

	suite.Require().ErrorIs(err, errs.ErrClaimConflict)
	stored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.False(stored.PaymentConfirmed())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdateIfMatches_NonExistentOrder_ReturnsNotFoundError() {
	_, err := suite.repository.UpdateIfMatches(context.Background(), kernel.NewUUID(), nil, nil)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

// TestUpdateIfMatches_ConcurrentClaims races agents on separate connections; the row
// lock must let exactly one of them win.
func (suite *OrderRepositoryIntegrationTestSuite) TestUpdateIfMatches_ConcurrentClaims() {
	ctx := context.Background()
	o := suite.createOrder("C1", baseTime, "V1")
	_, err := o.SetStatusByVendor(order.ReadyForPickup)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	const agents = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   []kernel.Identity
		conflicts int
		failures  []error
	)
	start := make(chan struct{})
	for i := range agents {
		agent := kernel.Identity("agent-" + string(rune('a'+i)))
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, claimErr := suite.repository.UpdateIfMatches(ctx, o.ID(),
				func(cur *order.Order) error { return cur.CheckClaim(agent) },
				func(cur *order.Order) error {
					_, err := cur.Claim(agent)
					return err
				})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case claimErr == nil:
				winners = append(winners, agent)
			case errors.Is(claimErr, errs.ErrClaimConflict):
				conflicts++
			default:
				failures = append(failures, claimErr)
			}
		}()
	}
	close(start)
	wg.Wait()

	suite.Empty(failures)
	suite.Require().Len(winners, 1)
	suite.Equal(agents-1, conflicts)

	stored, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(winners[0], stored.ClaimedBy())
	suite.Equal(order.AcceptedByDelivery, stored.Status())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestDeleteIfMatches() {
	ctx := context.Background()
	unpaid := suite.createOrder("C1", baseTime, "V1")
	paid := suite.createOrder("C1", baseTime, "V1")
	paid.ConfirmPayment()
	suite.Require().NoError(suite.repository.Add(ctx, unpaid))
	suite.Require().NoError(suite.repository.Add(ctx, paid))

	removed, err := suite.repository.DeleteIfMatches(ctx, unpaid.ID(), (*order.Order).ValidateDiscard)
	suite.Require().NoError(err)
	suite.True(removed.ID().IsEqual(unpaid.ID()))

	_, err = suite.repository.DeleteIfMatches(ctx, paid.ID(), (*order.Order).ValidateDiscard)
	suite.Require().ErrorIs(err, errs.ErrInvalidTransition)

	suite.assertOrderCount(1)
	var items int64
	suite.Require().NoError(suite.db.Model(&orderrepo.OrderItemDTO{}).Count(&items).Error)
	suite.Equal(int64(1), items)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestListByCustomer_MatchesCanonicalForm() {
	ctx := context.Background()
	customer := "507f1f77bcf86cd799439011"
	older := suite.createOrder(customer, baseTime, "V1")
	newer := suite.createOrder(customer, baseTime.Add(time.Hour), "V2")
	other := suite.createOrder("C2", baseTime, "V1")
	for _, o := range []*order.Order{older, newer, other} {
		suite.Require().NoError(suite.repository.Add(ctx, o))
	}

	got, err := suite.repository.ListByCustomer(ctx, kernel.Identity(`ObjectId("507F1F77BCF86CD799439011")`))

	suite.Require().NoError(err)
	suite.Require().Len(got, 2)
	suite.True(got[0].ID().IsEqual(newer.ID()))
	suite.True(got[1].ID().IsEqual(older.ID()))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestListByVendorSet_WithPickupFilter() {
	ctx := context.Background()
	processing := suite.createOrder("C1", baseTime, "V1")
	ready := suite.createOrder("C2", baseTime.Add(time.Hour), "owner-1", "V9")
	claimed := suite.createOrder("C3", baseTime.Add(2*time.Hour), "V1")
	unrelated := suite.createOrder("C4", baseTime, "V9")

	_, err := ready.SetStatusByVendor(order.ReadyForPickup)
	suite.Require().NoError(err)
	_, err = claimed.SetStatusByVendor(order.AcceptedByVendor)
	suite.Require().NoError(err)
	_, err = claimed.Claim("agent-1")
	suite.Require().NoError(err)
	for _, o := range []*order.Order{processing, ready, claimed, unrelated} {
		suite.Require().NoError(suite.repository.Add(ctx, o))
	}
	set := kernel.NewIdentitySet("V1", "owner-1")

	all, err := suite.repository.ListByVendorSet(ctx, set, ports.OrderFilter{})
	suite.Require().NoError(err)
	suite.Require().Len(all, 3)
	suite.True(all[0].ID().IsEqual(claimed.ID()))
	suite.True(all[1].ID().IsEqual(ready.ID()))
	suite.Len(all[1].Items(), 2)

	pickup, err := suite.repository.ListByVendorSet(ctx, set, ports.OrderFilter{OnlyPickup: true})
	suite.Require().NoError(err)
	suite.Require().Len(pickup, 1)
	suite.True(pickup[0].ID().IsEqual(ready.ID()))

	none, err := suite.repository.ListByVendorSet(ctx, kernel.NewIdentitySet(), ports.OrderFilter{})
	suite.Require().NoError(err)
	suite.Empty(none)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestListExpiredCheckouts() {
	ctx := context.Background()
	stale := suite.createOrder("C1", baseTime, "V1")
	fresh := suite.createOrder("C1", baseTime.Add(2*time.Hour), "V1")
	paid := suite.createOrder("C1", baseTime, "V1")
	paid.ConfirmPayment()
	for _, o := range []*order.Order{stale, fresh, paid} {
		suite.Require().NoError(suite.repository.Add(ctx, o))
	}

	got, err := suite.repository.ListExpiredCheckouts(ctx, baseTime.Add(time.Hour), 10)

	suite.Require().NoError(err)
	suite.Require().Len(got, 1)
	suite.True(got[0].ID().IsEqual(stale.ID()))
}

func (suite *OrderRepositoryIntegrationTestSuite) createOrder(
	customer string, createdAt time.Time, vendorRefs ...string,
) *order.Order {
	items := make([]order.Item, 0, len(vendorRefs))
	for _, ref := range vendorRefs {
		item, err := order.NewItem(kernel.Identity(ref), "Paneer Tikka", 9.5, 2)
		suite.Require().NoError(err)
		items = append(items, item)
	}
	o, err := order.NewOrder(kernel.NewUUID(), kernel.Identity(customer), items, 19, map[string]any{"city": "Pune"}, createdAt)
	suite.Require().NoError(err)
	return o
}

func (suite *OrderRepositoryIntegrationTestSuite) assertOrderCount(expected int) {
	var count int64
	err := suite.db.Model(&orderrepo.OrderDTO{}).Count(&count).Error
	suite.Require().NoError(err)
	suite.Equal(int64(expected), count)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
