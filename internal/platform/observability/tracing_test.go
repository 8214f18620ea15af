package observability_test

import (
	"bytes"
	"testing"

	"foodmarket/internal/platform/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracing(t *testing.T) {
	t.Run("should export spans when enabled", func(t *testing.T) {
		var out bytes.Buffer
		shutdown, err := observability.InitTracing(t.Context(), "foodmarket-test", true, &out)
		require.NoError(t, err)

		_, span := otel.Tracer("test").Start(t.Context(), "ClaimOrder")
		span.End()
		require.NoError(t, shutdown(t.Context()))

		assert.Contains(t, out.String(), "ClaimOrder")
	})

	t.Run("should do nothing when disabled", func(t *testing.T) {
		shutdown, err := observability.InitTracing(t.Context(), "foodmarket-test", false, &bytes.Buffer{})
		require.NoError(t, err)

		assert.NoError(t, shutdown(t.Context()))
	})
}
