package http

import (
	"strconv"
	"time"

	"foodmarket/internal/adapters/out/jwtauth"
	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/metrics"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const principalKey = "principal"

var tracer = otel.Tracer("foodmarket/http")

// authenticate resolves the caller from the request token and stores the principal
// on the context. Requests without a valid token stop here with 401.
func authenticate(provider ports.IdentityProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := provider.Authenticate(c.Request().Context(), jwtauth.TokenFromRequest(c.Request()))
			if err != nil {
				return problemUnauthenticated.WithDetail("a valid token is required")
			}
			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

func principalOf(c echo.Context) ports.Principal {
	principal, _ := c.Get(principalKey).(ports.Principal)
	return principal
}

func callerOf(c echo.Context) kernel.Identity {
	return principalOf(c).ID
}

// observe records the request count and latency by route template, so /orders/{id}
// does not explode the label space.
func observe() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method
			metrics.HTTPRequestsTotal.WithLabelValues(path, method, strconv.Itoa(c.Response().Status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(path, method).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

// traceRequests opens a server span per request, continuing a trace propagated by
// the caller.
func traceRequests() echo.MiddlewareFunc {
	propagator := propagation.TraceContext{}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := propagator.Extract(req.Context(), propagation.HeaderCarrier(req.Header))
			ctx, span := tracer.Start(ctx, req.Method+" "+c.Path(),
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", req.Method),
					attribute.String("http.route", c.Path()),
					attribute.String("url.path", req.URL.Path),
				),
			)
			defer span.End()
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				span.RecordError(err)
				c.Error(err)
			}

			status := c.Response().Status
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if status >= 500 {
				span.SetStatus(codes.Error, strconv.Itoa(status))
			}
			return nil
		}
	}
}
