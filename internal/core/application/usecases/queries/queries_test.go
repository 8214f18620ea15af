package queries_test

import (
	"testing"
	"time"

	"foodmarket/internal/adapters/out/memory"
	"foodmarket/internal/core/application/usecases/queries"
	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/domain/model/vendor"
	"foodmarket/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hexOwner = "5f8d0d55b54764421b7156c3"
	hexAgent = "507f1f77bcf86cd799439011"
)

type line struct {
	vendorRef string
	name      string
}

func seedOrder(t *testing.T, store *memory.Store, customer string, createdAt time.Time, lines ...line) *order.Order {
	t.Helper()

	items := make([]order.Item, 0, len(lines))
	for _, l := range lines {
		item, err := order.NewItem(kernel.NewIdentity(l.vendorRef), l.name, 5, 1)
		require.NoError(t, err)
		items = append(items, item)
	}
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewIdentity(customer), items, 5*float64(len(items)), nil, createdAt)
	require.NoError(t, err)
	require.NoError(t, store.Orders().Add(t.Context(), o))
	return o
}

func seedVendor(t *testing.T, store *memory.Store, owner, name string, roster ...string) *vendor.Vendor {
	t.Helper()

	v, err := vendor.NewVendor(kernel.NewUUID(), kernel.NewIdentity(owner), name, "")
	require.NoError(t, err)
	for _, agent := range roster {
		v.AddToRoster(kernel.NewIdentity(agent))
	}
	require.NoError(t, store.Vendors().Add(t.Context(), v))
	return v
}

func itemNames(resp queries.OrderResponse) []string {
	names := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		names = append(names, item.Name)
	}
	return names
}

func TestGetCustomerOrdersQueryHandler(t *testing.T) {
	store := memory.NewStore()
	now := time.Now()
	older := seedOrder(t, store, "customer-1", now.Add(-time.Hour), line{"v1", "Soup"})
	newer := seedOrder(t, store, "customer-1", now, line{"v1", "Soup"}, line{"v2", "Tea"})
	seedOrder(t, store, "customer-2", now, line{"v1", "Soup"})

	h := queries.NewGetCustomerOrdersQueryHandler(store.Orders())
	query, err := queries.NewGetCustomerOrdersQuery("customer-1")
	require.NoError(t, err)

	orders, err := h.Handle(t.Context(), query)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID(), orders[0].ID)
	assert.Equal(t, older.ID(), orders[1].ID)
	assert.Len(t, orders[0].Items, 2)
}

func TestGetVendorOrdersQueryHandler(t *testing.T) {
	store := memory.NewStore()
	v := seedVendor(t, store, hexOwner, "Thai Corner")
	byRecord := seedOrder(t, store, "customer-1", time.Now().Add(-time.Minute),
		line{v.ID().String(), "Pad thai"}, line{"other-vendor", "Burger"})
	byOwner := seedOrder(t, store, "customer-2", time.Now(), line{`ObjectId("5F8D0D55B54764421B7156C3")`, "Green curry"})
	seedOrder(t, store, "customer-3", time.Now(), line{"other-vendor", "Fries"})

	h := queries.NewGetVendorOrdersQueryHandler(store.Orders(), store.Vendors())

	t.Run("should list orders under both vendor ids with only the vendor's items", func(t *testing.T) {
		query, err := queries.NewGetVendorOrdersQuery(hexOwner)
		require.NoError(t, err)

		orders, err := h.Handle(t.Context(), query)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, byOwner.ID(), orders[0].ID)
		assert.Equal(t, []string{"Green curry"}, itemNames(orders[0]))
		assert.Equal(t, byRecord.ID(), orders[1].ID)
		assert.Equal(t, []string{"Pad thai"}, itemNames(orders[1]))
	})

	t.Run("should refuse a requester without a vendor", func(t *testing.T) {
		query, err := queries.NewGetVendorOrdersQuery("customer-1")
		require.NoError(t, err)

		_, err = h.Handle(t.Context(), query)
		require.ErrorIs(t, err, errs.ErrNotAuthorized)
	})
}

func TestGetDeliveryOrdersQueryHandler(t *testing.T) {
	store := memory.NewStore()
	thai := seedVendor(t, store, "owner-1", "Thai Corner", hexAgent)
	seedVendor(t, store, "owner-2", "Pizza Place", "507F1F77BCF86CD799439011")
	seedVendor(t, store, "owner-3", "Sushi Bar", "agent-2")

	waiting := seedOrder(t, store, "customer-1", time.Now().Add(-2*time.Minute),
		line{thai.ID().String(), "Pad thai"}, line{"owner-3", "Maki"})
	_, err := store.Orders().UpdateIfMatches(t.Context(), waiting.ID(), nil, func(o *order.Order) error {
		_, err := o.SetStatusByVendor(order.ReadyForPickup)
		return err
	})
	require.NoError(t, err)
	processing := seedOrder(t, store, "customer-2", time.Now().Add(-time.Minute), line{"owner-2", "Margherita"})
	seedOrder(t, store, "customer-3", time.Now(), line{"owner-3", "Nigiri"})

	h := queries.NewGetDeliveryOrdersQueryHandler(store.Orders(), store.Vendors())

	t.Run("should union the agent's vendors and filter items", func(t *testing.T) {
		query, err := queries.NewGetDeliveryOrdersQuery(hexAgent, false)
		require.NoError(t, err)

		orders, err := h.Handle(t.Context(), query)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, processing.ID(), orders[0].ID)
		assert.Equal(t, []string{"Margherita"}, itemNames(orders[0]))
		assert.Equal(t, []string{"Pad thai"}, itemNames(orders[1]))
	})

	t.Run("should keep only unclaimed orders waiting for pickup", func(t *testing.T) {
		query, err := queries.NewGetDeliveryOrdersQuery(hexAgent, true)
		require.NoError(t, err)

		orders, err := h.Handle(t.Context(), query)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, waiting.ID(), orders[0].ID)
		assert.Equal(t, order.ReadyForPickup, orders[0].Status)
	})

	t.Run("should return nothing for an agent on no roster", func(t *testing.T) {
		query, err := queries.NewGetDeliveryOrdersQuery("agent-9", false)
		require.NoError(t, err)

		orders, err := h.Handle(t.Context(), query)
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestGetDeliveryLocationQueryHandler(t *testing.T) {
	store := memory.NewStore()
	v := seedVendor(t, store, "owner-1", "Thai Corner", "agent-1")
	seedVendor(t, store, "owner-2", "Pizza Place")
	o := seedOrder(t, store, "customer-1", time.Now().Add(-time.Minute), line{v.ID().String(), "Pad thai"})

	point, err := kernel.NewGeoPoint(12.97, 77.59)
	require.NoError(t, err)
	_, err = store.Orders().UpdateIfMatches(t.Context(), o.ID(), nil, func(o *order.Order) error {
		if _, err := o.SetStatusByVendor(order.ReadyForPickup); err != nil {
			return err
		}
		if _, err := o.Claim("agent-1"); err != nil {
			return err
		}
		return o.ReportLocation("agent-1", point, time.Now())
	})
	require.NoError(t, err)

	h := queries.NewGetDeliveryLocationQueryHandler(store.Orders(), store.Vendors())

	for _, requester := range []kernel.Identity{"customer-1", "agent-1", "owner-1"} {
		query, err := queries.NewGetDeliveryLocationQuery(o.ID(), requester)
		require.NoError(t, err)

		loc, err := h.Handle(t.Context(), query)
		require.NoError(t, err, requester)
		require.NotNil(t, loc, requester)
		assert.InDelta(t, 12.97, loc.Lat, 0.0001)
		assert.Equal(t, kernel.Identity("agent-1"), loc.ReportedBy)
	}

	for _, requester := range []kernel.Identity{"customer-2", "owner-2", "agent-2"} {
		query, err := queries.NewGetDeliveryLocationQuery(o.ID(), requester)
		require.NoError(t, err)

		_, err = h.Handle(t.Context(), query)
		require.ErrorIs(t, err, errs.ErrNotAuthorized, requester)
	}

	t.Run("should return nil before the first sample", func(t *testing.T) {
		fresh := seedOrder(t, store, "customer-1", time.Now(), line{"owner-1", "Soup"})
		query, err := queries.NewGetDeliveryLocationQuery(fresh.ID(), "customer-1")
		require.NoError(t, err)

		loc, err := h.Handle(t.Context(), query)
		require.NoError(t, err)
		assert.Nil(t, loc)
	})

	t.Run("should let a seller named directly on an item read without a vendor record", func(t *testing.T) {
		direct := seedOrder(t, store, "customer-1", time.Now(), line{hexOwner, "Momo"})
		query, err := queries.NewGetDeliveryLocationQuery(direct.ID(), `ObjectId("5F8D0D55B54764421B7156C3")`)
		require.NoError(t, err)

		loc, err := h.Handle(t.Context(), query)
		require.NoError(t, err)
		assert.Nil(t, loc)
	})

	t.Run("should report a missing order", func(t *testing.T) {
		query, err := queries.NewGetDeliveryLocationQuery(kernel.NewUUID(), "customer-1")
		require.NoError(t, err)

		_, err = h.Handle(t.Context(), query)
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestVendorQueryHandlers(t *testing.T) {
	store := memory.NewStore()
	thai := seedVendor(t, store, "owner-1", "Thai Corner", "agent-1")
	seedVendor(t, store, "owner-2", "Burger Hut")

	t.Run("get my vendor", func(t *testing.T) {
		h := queries.NewGetMyVendorQueryHandler(store.Vendors())
		query, err := queries.NewGetMyVendorQuery("owner-1")
		require.NoError(t, err)

		resp, err := h.Handle(t.Context(), query)
		require.NoError(t, err)
		assert.Equal(t, thai.ID(), resp.ID)
		assert.Equal(t, []kernel.Identity{"agent-1"}, resp.Roster)

		query, _ = queries.NewGetMyVendorQuery("agent-1")
		_, err = h.Handle(t.Context(), query)
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("get assigned vendors", func(t *testing.T) {
		h := queries.NewGetAssignedVendorsQueryHandler(store.Vendors())
		query, err := queries.NewGetAssignedVendorsQuery(" agent-1 ")
		require.NoError(t, err)

		resp, err := h.Handle(t.Context(), query)
		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, "Thai Corner", resp[0].Name)
	})

	t.Run("list vendors", func(t *testing.T) {
		h := queries.NewListVendorsQueryHandler(store.Vendors())

		resp, err := h.Handle(t.Context(), queries.NewListVendorsQuery())
		require.NoError(t, err)
		require.Len(t, resp, 2)
		assert.Equal(t, "Burger Hut", resp[0].Name)
	})
}

func TestQueries_NotConstructed(t *testing.T) {
	assert.ErrorIs(t, queries.GetCustomerOrdersQuery{}.Validate(), queries.ErrGetCustomerOrdersQueryIsNotConstructed)
	assert.ErrorIs(t, queries.GetDeliveryOrdersQuery{}.Validate(), queries.ErrGetDeliveryOrdersQueryIsNotConstructed)
	assert.ErrorIs(t, queries.ListVendorsQuery{}.Validate(), queries.ErrListVendorsQueryIsNotConstructed)

	_, err := queries.NewGetVendorOrdersQuery("")
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}
