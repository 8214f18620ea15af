package memory_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"foodmarket/internal/adapters/out/memory"
	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newOrder(t *testing.T, customer string, createdAt time.Time, vendorRefs ...string) *order.Order {
	t.Helper()
	items := make([]order.Item, 0, len(vendorRefs))
	for _, ref := range vendorRefs {
		item, err := order.NewItem(kernel.Identity(ref), "Thali", 8, 1)
		require.NoError(t, err)
		items = append(items, item)
	}
	o, err := order.NewOrder(kernel.NewUUID(), kernel.Identity(customer), items, 8, nil, createdAt)
	require.NoError(t, err)
	return o
}

func readyForPickup(o *order.Order) error {
	_, err := o.SetStatusByVendor(order.ReadyForPickup)
	return err
}

func TestOrderRepository_AddGet(t *testing.T) {
	ctx := t.Context()
	repo := memory.NewOrderRepository()
	o := newOrder(t, "C1", baseTime, "V1")

	t.Run("should store and return a detached copy", func(t *testing.T) {
		require.NoError(t, repo.Add(ctx, o))

		got, err := repo.Get(ctx, o.ID())
		require.NoError(t, err)
		assert.True(t, got.ID().IsEqual(o.ID()))

		_, err = got.SetStatusByVendor(order.AcceptedByVendor)
		require.NoError(t, err)

		again, err := repo.Get(ctx, o.ID())
		require.NoError(t, err)
		assert.Equal(t, order.Processing, again.Status())
	})

	t.Run("should reject a duplicate id", func(t *testing.T) {
		err := repo.Add(ctx, o)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should return not found for unknown id", func(t *testing.T) {
		_, err := repo.Get(ctx, kernel.NewUUID())
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestOrderRepository_UpdateIfMatches(t *testing.T) {
	ctx := t.Context()

	t.Run("should apply mutation when condition passes", func(t *testing.T) {
		repo := memory.NewOrderRepository()
		o := newOrder(t, "C1", baseTime, "V1")
		require.NoError(t, repo.Add(ctx, o))

		updated, err := repo.UpdateIfMatches(ctx, o.ID(), nil, readyForPickup)

		require.NoError(t, err)
		assert.Equal(t, order.ReadyForPickup, updated.Status())
		stored, err := repo.Get(ctx, o.ID())
		require.NoError(t, err)
		assert.Equal(t, order.ReadyForPickup, stored.Status())
	})

	t.Run("should write nothing when condition fails", func(t *testing.T) {
		repo := memory.NewOrderRepository()
		o := newOrder(t, "C1", baseTime, "V1")
		require.NoError(t, repo.Add(ctx, o))
		condErr := errors.New("nope")

		_, err := repo.UpdateIfMatches(ctx, o.ID(),
			func(*order.Order) error { return condErr },
			readyForPickup)

		assert.ErrorIs(t, err, condErr)
		stored, err := repo.Get(ctx, o.ID())
		require.NoError(t, err)
		assert.Equal(t, order.Processing, stored.Status())
	})

	t.Run("should write nothing when mutation fails halfway", func(t *testing.T) {
		repo := memory.NewOrderRepository()
		o := newOrder(t, "C1", baseTime, "V1")
		require.NoError(t, repo.Add(ctx, o))

		_, err := repo.UpdateIfMatches(ctx, o.ID(), nil, func(o *order.Order) error {
			o.ConfirmPayment()
			return errs.NewInvalidTransitionError("Processing", "Delivered")
		})

		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		stored, err := repo.Get(ctx, o.ID())
		require.NoError(t, err)
		assert.False(t, stored.PaymentConfirmed())
	})

	t.Run("should return not found for unknown id", func(t *testing.T) {
		repo := memory.NewOrderRepository()
		_, err := repo.UpdateIfMatches(ctx, kernel.NewUUID(), nil, readyForPickup)
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestOrderRepository_ConcurrentClaim(t *testing.T) {
	ctx := t.Context()
	repo := memory.NewOrderRepository()
	o := newOrder(t, "C1", baseTime, "V1")
	require.NoError(t, readyForPickup(o))
	require.NoError(t, repo.Add(ctx, o))

	const agents = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   []kernel.Identity
		conflicts int
	)
	start := make(chan struct{})
	for i := range agents {
		agent := kernel.Identity(string(rune('A' + i)))
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := repo.UpdateIfMatches(ctx, o.ID(),
				func(cur *order.Order) error { return cur.CheckClaim(agent) },
				func(cur *order.Order) error {
					_, err := cur.Claim(agent)
					return err
				})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, agent)
			case errors.Is(err, errs.ErrClaimConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, agents-1, conflicts)

	stored, err := repo.Get(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, order.AcceptedByDelivery, stored.Status())
	assert.Equal(t, winners[0], stored.ClaimedBy())
}

func TestOrderRepository_DeleteIfMatches(t *testing.T) {
	ctx := t.Context()

	t.Run("should delete an unpaid processing order", func(t *testing.T) {
		repo := memory.NewOrderRepository()
		o := newOrder(t, "C1", baseTime, "V1")
		require.NoError(t, repo.Add(ctx, o))

		removed, err := repo.DeleteIfMatches(ctx, o.ID(), (*order.Order).ValidateDiscard)

		require.NoError(t, err)
		assert.True(t, removed.ID().IsEqual(o.ID()))
		_, err = repo.Get(ctx, o.ID())
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should keep the order when condition fails", func(t *testing.T) {
		repo := memory.NewOrderRepository()
		o := newOrder(t, "C1", baseTime, "V1")
		o.ConfirmPayment()
		require.NoError(t, repo.Add(ctx, o))

		_, err := repo.DeleteIfMatches(ctx, o.ID(), (*order.Order).ValidateDiscard)

		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		_, err = repo.Get(ctx, o.ID())
		assert.NoError(t, err)
	})
}

func TestOrderRepository_Lists(t *testing.T) {
	ctx := t.Context()
	repo := memory.NewOrderRepository()

	older := newOrder(t, "C1", baseTime, "V1")
	newer := newOrder(t, "C1", baseTime.Add(time.Hour), "V2", "V1")
	other := newOrder(t, "C2", baseTime.Add(2*time.Hour), "V3")
	require.NoError(t, readyForPickup(newer))
	for _, o := range []*order.Order{older, newer, other} {
		require.NoError(t, repo.Add(ctx, o))
	}

	t.Run("should list customer orders newest first", func(t *testing.T) {
		got, err := repo.ListByCustomer(ctx, "C1")

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, got[0].ID().IsEqual(newer.ID()))
		assert.True(t, got[1].ID().IsEqual(older.ID()))
	})

	t.Run("should list orders touching the vendor set", func(t *testing.T) {
		got, err := repo.ListByVendorSet(ctx, kernel.NewIdentitySet("V1"), ports.OrderFilter{})

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Len(t, got[0].Items(), 2)
	})

	t.Run("should keep only claimable orders for pickup filter", func(t *testing.T) {
		got, err := repo.ListByVendorSet(ctx, kernel.NewIdentitySet("V1"), ports.OrderFilter{OnlyPickup: true})

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].ID().IsEqual(newer.ID()))
	})

	t.Run("should list expired checkouts oldest first", func(t *testing.T) {
		got, err := repo.ListExpiredCheckouts(ctx, baseTime.Add(3*time.Hour), 10)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.True(t, got[0].ID().IsEqual(older.ID()))
		assert.True(t, got[1].ID().IsEqual(other.ID()))
	})

	t.Run("should honour the limit", func(t *testing.T) {
		got, err := repo.ListExpiredCheckouts(ctx, baseTime.Add(3*time.Hour), 1)

		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}
