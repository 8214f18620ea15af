package guard_test

import (
	"errors"
	"sync"
	"testing"

	"foodmarket/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("constructed guard passes with any error", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errors.New("not constructed")))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero value returns the supplied error", func(t *testing.T) {
		var g guard.ConstructorGuard
		expected := errors.New("Order must be created via NewOrder")

		assert.Equal(t, expected, g.Validate(expected))
	})

	t.Run("zero value falls back to the default error", func(t *testing.T) {
		var g guard.ConstructorGuard

		assert.Equal(t, guard.ErrDefaultConstructorGuard, g.Validate(nil))
		assert.Equal(t, "object must be created via its constructor", guard.ErrDefaultConstructorGuard.Error())
	})

	t.Run("copies keep their state", func(t *testing.T) {
		g := guard.NewConstructorGuard()
		copied := g

		require.NoError(t, copied.Validate(nil))
	})
}

func TestConstructorGuard_EmbeddedInHost(t *testing.T) {
	type coin struct {
		value int
		guard guard.ConstructorGuard
	}
	errCoinIsNotConstructed := errors.New("coin must be created via newCoin")
	newCoin := func(v int) (coin, error) {
		if v <= 0 {
			return coin{}, errors.New("value must be positive")
		}
		return coin{value: v, guard: guard.NewConstructorGuard()}, nil
	}

	t.Run("constructor output is valid", func(t *testing.T) {
		c, err := newCoin(5)
		require.NoError(t, err)
		require.NoError(t, c.guard.Validate(errCoinIsNotConstructed))
	})

	t.Run("failed construction leaves a zero value", func(t *testing.T) {
		c, err := newCoin(0)
		require.Error(t, err)
		assert.Equal(t, errCoinIsNotConstructed, c.guard.Validate(errCoinIsNotConstructed))
	})
}

func TestConstructorGuard_ConcurrentValidate(t *testing.T) {
	g := guard.NewConstructorGuard()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.NoError(t, g.Validate(nil))
			}
		}()
	}
	wg.Wait()
}
