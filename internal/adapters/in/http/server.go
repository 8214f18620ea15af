// Package http exposes the marketplace over a JSON API. Every route below /api/v1
// needs a token; failures are rendered as RFC 7807 problem documents.
package http

import (
	"net/http"

	"foodmarket/internal/core/application/usecases/commands"
	"foodmarket/internal/core/application/usecases/queries"
	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/ports"

	"github.com/getkin/kin-openapi/routers"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers bundles the use cases served over HTTP.
type Handlers struct {
	// Command handlers
	PlaceOrder          commands.PlaceOrderCommandHandler
	VerifyPayment       commands.VerifyPaymentCommandHandler
	UpdateVendorStatus  commands.UpdateVendorStatusCommandHandler
	AssignDelivery      commands.AssignDeliveryCommandHandler
	ClaimOrder          commands.ClaimOrderCommandHandler
	PickupOrder         commands.PickupOrderCommandHandler
	DeliverOrder        commands.DeliverOrderCommandHandler
	ReportLocation      commands.ReportLocationCommandHandler
	CreateVendor        commands.CreateVendorCommandHandler
	UpdateRoster        commands.UpdateRosterCommandHandler
	UpdateVendorProfile commands.UpdateVendorProfileCommandHandler

	// Query handlers
	GetCustomerOrders   queries.GetCustomerOrdersQueryHandler
	GetVendorOrders     queries.GetVendorOrdersQueryHandler
	GetDeliveryOrders   queries.GetDeliveryOrdersQueryHandler
	GetDeliveryLocation queries.GetDeliveryLocationQueryHandler
	GetMyVendor         queries.GetMyVendorQueryHandler
	GetAssignedVendors  queries.GetAssignedVendorsQueryHandler
	ListVendors         queries.ListVendorsQueryHandler
}

// Server translates HTTP requests into commands and queries.
type Server struct {
	handlers Handlers
	auth     ports.IdentityProvider
	router   routers.Router
}

// NewServer fails only when the embedded OpenAPI document is broken.
func NewServer(handlers Handlers, auth ports.IdentityProvider) (*Server, error) {
	router, err := newOpenAPIRouter()
	if err != nil {
		return nil, err
	}
	return &Server{handlers: handlers, auth: auth, router: router}, nil
}

// Register installs the error handler, the validator, the middleware chain and all
// routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.HTTPErrorHandler = handleError
	e.Validator = newRequestValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(traceRequests())
	e.Use(observe())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1", authenticate(s.auth), validateRequest(s.router))

	api.POST("/orders", s.placeOrder)
	api.GET("/orders", s.listMyOrders)
	api.POST("/orders/:orderId/verify", s.verifyPayment)
	api.POST("/orders/:orderId/vendor-status", s.updateVendorStatus)
	api.POST("/orders/:orderId/assign-delivery", s.assignDelivery)
	api.POST("/orders/:orderId/claim", s.claimOrder)
	api.POST("/orders/:orderId/pickup", s.pickupOrder)
	api.POST("/orders/:orderId/deliver", s.deliverOrder)
	api.POST("/orders/:orderId/location", s.reportLocation)
	api.GET("/orders/:orderId/location", s.getDeliveryLocation)

	api.GET("/vendor/orders", s.listVendorOrders)
	api.GET("/delivery/orders", s.listDeliveryOrders)

	api.GET("/vendors", s.listVendors)
	api.POST("/vendors", s.createVendor)
	api.GET("/vendors/me", s.getMyVendor)
	api.PUT("/vendors/me", s.updateVendorProfile)
	api.PUT("/vendors/me/roster/:agentId", s.assignRosterAgent)
	api.DELETE("/vendors/me/roster/:agentId", s.unassignRosterAgent)

	api.GET("/delivery/vendors", s.listAssignedVendors)
	api.PUT("/delivery/vendors/:vendorId", s.joinVendor)
	api.DELETE("/delivery/vendors/:vendorId", s.leaveVendor)
}

func uuidParam(c echo.Context, name string) (kernel.UUID, error) {
	var raw string
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &raw,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, problemValidation.WithDetail(err.Error())
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, err
	}
	return id, nil
}

func identityParam(c echo.Context, name string) (kernel.Identity, error) {
	var raw string
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &raw,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", problemValidation.WithDetail(err.Error())
	}
	return kernel.NewIdentity(raw), nil
}

// bind decodes the JSON body into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return problemValidation.WithDetail("malformed request body")
	}
	return c.Validate(req)
}
