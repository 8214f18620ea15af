package jobs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"foodmarket/internal/adapters/out/memory"
	"foodmarket/internal/core/application/usecases/commands"
	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/jobs"
	"foodmarket/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockJob struct {
	mock.Mock
}

func (m *MockJob) Name() string {
	return m.Called().String(0)
}

func (m *MockJob) Start() error {
	return m.Called().Error(0)
}

func (m *MockJob) Stop() {
	m.Called()
}

func seedCheckout(t *testing.T, store *memory.Store, createdAt time.Time, paid bool) *order.Order {
	t.Helper()

	item, err := order.NewItem("vendor-1", "Bao", 4, 1)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), "customer-1", []order.Item{item}, 4, nil, createdAt)
	require.NoError(t, err)
	if paid {
		o.ConfirmPayment()
	}
	require.NoError(t, store.Orders().Add(t.Context(), o))
	return o
}

type nopPublisher struct{}

func (nopPublisher) Publish(_ context.Context, _ order.Change) {}

func TestExpiredCheckoutJob_RunOnce(t *testing.T) {
	store := memory.NewStore()
	handler := commands.NewExpireCheckoutsCommandHandler(memory.NewUnitOfWorkFactory(store), nopPublisher{})
	job := jobs.NewExpiredCheckoutJob(handler, jobs.ExpiredCheckoutConfig{TTL: time.Hour}, discardLogger())

	stale := seedCheckout(t, store, time.Now().Add(-2*time.Hour), false)
	paid := seedCheckout(t, store, time.Now().Add(-2*time.Hour), true)
	fresh := seedCheckout(t, store, time.Now(), false)

	removed, err := job.RunOnce(t.Context())

	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Orders().Get(t.Context(), stale.ID())
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	_, err = store.Orders().Get(t.Context(), paid.ID())
	require.NoError(t, err)
	_, err = store.Orders().Get(t.Context(), fresh.ID())
	require.NoError(t, err)

	removed, err = job.RunOnce(t.Context())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestExpiredCheckoutJob_StartRejectsInvalidSchedule(t *testing.T) {
	store := memory.NewStore()
	handler := commands.NewExpireCheckoutsCommandHandler(memory.NewUnitOfWorkFactory(store), nopPublisher{})
	job := jobs.NewExpiredCheckoutJob(handler, jobs.ExpiredCheckoutConfig{Schedule: "every now and then"}, discardLogger())

	require.Error(t, job.Start())
}

func TestJobManager(t *testing.T) {
	t.Run("should start and stop all jobs", func(t *testing.T) {
		first, second := &MockJob{}, &MockJob{}
		mock.InOrder(
			first.On("Start").Return(nil).Once(),
			second.On("Start").Return(nil).Once(),
			second.On("Stop").Return().Once(),
			first.On("Stop").Return().Once(),
		)

		jm := jobs.NewJobManager(discardLogger(), first, second)
		require.NoError(t, jm.StartAll())
		jm.StopAll()

		first.AssertExpectations(t)
		second.AssertExpectations(t)
	})

	t.Run("should stop started jobs when one fails to start", func(t *testing.T) {
		first, second := &MockJob{}, &MockJob{}
		first.On("Start").Return(nil).Once()
		first.On("Stop").Return().Once()
		second.On("Start").Return(errors.New("bad schedule")).Once()
		second.On("Name").Return("second").Once()

		jm := jobs.NewJobManager(discardLogger(), first, second)
		err := jm.StartAll()

		require.ErrorContains(t, err, "failed to start second job")
		first.AssertExpectations(t)
		second.AssertExpectations(t)
		second.AssertNotCalled(t, "Stop")
	})
}
