package http

import (
	"net/http"

	"foodmarket/internal/core/application/usecases/commands"
	"foodmarket/internal/core/application/usecases/queries"
	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// placeOrder handles POST /api/v1/orders.
func (s *Server) placeOrder(c echo.Context) error {
	var req PlaceOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	items := make([]order.Item, 0, len(req.Items))
	for _, line := range req.Items {
		item, err := order.NewItem(kernel.NewIdentity(line.VendorID), line.Name, line.Price, line.Quantity)
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	cmd, err := commands.NewPlaceOrderCommand(
		kernel.NewUUID(), callerOf(c), items, req.Amount, req.Address, req.CashOnDelivery,
	)
	if err != nil {
		return err
	}

	placed, err := s.handlers.PlaceOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toOrderDTO(queries.OrderResponseOf(placed)))
}

// listMyOrders handles GET /api/v1/orders.
func (s *Server) listMyOrders(c echo.Context) error {
	query, err := queries.NewGetCustomerOrdersQuery(callerOf(c))
	if err != nil {
		return err
	}

	orders, err := s.handlers.GetCustomerOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderDTOs(orders))
}

// verifyPayment handles POST /api/v1/orders/{orderId}/verify. A failed payment
// discards the checkout and answers 204.
func (s *Server) verifyPayment(c echo.Context) error {
	orderID, err := uuidParam(c, "orderId")
	if err != nil {
		return err
	}
	var req VerifyPaymentRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewVerifyPaymentCommand(orderID, callerOf(c), *req.Success)
	if err != nil {
		return err
	}

	verified, err := s.handlers.VerifyPayment.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	if !*req.Success {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, toOrderDTO(queries.OrderResponseOf(verified)))
}

// updateVendorStatus handles POST /api/v1/orders/{orderId}/vendor-status.
func (s *Server) updateVendorStatus(c echo.Context) error {
	orderID, err := uuidParam(c, "orderId")
	if err != nil {
		return err
	}
	var req VendorStatusRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewUpdateVendorStatusCommand(orderID, callerOf(c), req.Status)
	if err != nil {
		return err
	}

	updated, err := s.handlers.UpdateVendorStatus.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderDTO(queries.OrderResponseOf(updated)))
}

// assignDelivery handles POST /api/v1/orders/{orderId}/assign-delivery.
func (s *Server) assignDelivery(c echo.Context) error {
	orderID, err := uuidParam(c, "orderId")
	if err != nil {
		return err
	}
	var req AssignDeliveryRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewAssignDeliveryCommand(orderID, callerOf(c), kernel.NewIdentity(req.AgentID))
	if err != nil {
		return err
	}

	assigned, err := s.handlers.AssignDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderDTO(queries.OrderResponseOf(assigned)))
}

// claimOrder handles POST /api/v1/orders/{orderId}/claim. Claiming an order the
// caller already holds answers 200 again; a claim held by someone else answers 409.
func (s *Server) claimOrder(c echo.Context) error {
	orderID, err := uuidParam(c, "orderId")
	if err != nil {
		return err
	}

	cmd, err := commands.NewClaimOrderCommand(orderID, callerOf(c))
	if err != nil {
		return err
	}

	claimed, err := s.handlers.ClaimOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderDTO(queries.OrderResponseOf(claimed)))
}

func (s *Server) pickupOrder(c echo.Context) error {
	orderID, err := uuidParam(c, "orderId")
	if err != nil {
		return err
	}

	cmd, err := commands.NewPickupOrderCommand(orderID, callerOf(c))
	if err != nil {
		return err
	}

	picked, err := s.handlers.PickupOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderDTO(queries.OrderResponseOf(picked)))
}

func (s *Server) deliverOrder(c echo.Context) error {
	orderID, err := uuidParam(c, "orderId")
	if err != nil {
		return err
	}

	cmd, err := commands.NewDeliverOrderCommand(orderID, callerOf(c))
	if err != nil {
		return err
	}

	delivered, err := s.handlers.DeliverOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderDTO(queries.OrderResponseOf(delivered)))
}

// reportLocation handles POST /api/v1/orders/{orderId}/location.
func (s *Server) reportLocation(c echo.Context) error {
	orderID, err := uuidParam(c, "orderId")
	if err != nil {
		return err
	}
	var req ReportLocationRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewReportLocationCommand(orderID, callerOf(c), *req.Lat, *req.Lng)
	if err != nil {
		return err
	}

	reported, err := s.handlers.ReportLocation.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderDTO(queries.OrderResponseOf(reported)))
}

// getDeliveryLocation handles GET /api/v1/orders/{orderId}/location. Before the
// first report the body is null.
func (s *Server) getDeliveryLocation(c echo.Context) error {
	orderID, err := uuidParam(c, "orderId")
	if err != nil {
		return err
	}

	query, err := queries.NewGetDeliveryLocationQuery(orderID, callerOf(c))
	if err != nil {
		return err
	}

	loc, err := s.handlers.GetDeliveryLocation.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	if loc == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, LocationDTO{
		OrderID:    loc.OrderID.String(),
		Lat:        loc.Lat,
		Lng:        loc.Lng,
		ReportedBy: loc.ReportedBy.String(),
		UpdatedAt:  loc.UpdatedAt,
	})
}

// listVendorOrders handles GET /api/v1/vendor/orders. Each order carries only the
// items of the caller's vendor.
func (s *Server) listVendorOrders(c echo.Context) error {
	query, err := queries.NewGetVendorOrdersQuery(callerOf(c))
	if err != nil {
		return err
	}

	orders, err := s.handlers.GetVendorOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderDTOs(orders))
}

// listDeliveryOrders handles GET /api/v1/delivery/orders?onlyPickup=true.
func (s *Server) listDeliveryOrders(c echo.Context) error {
	var onlyPickup *bool
	if err := runtime.BindQueryParameter("form", true, false, "onlyPickup", c.QueryParams(), &onlyPickup); err != nil {
		return problemValidation.WithDetail(err.Error())
	}

	query, err := queries.NewGetDeliveryOrdersQuery(callerOf(c), onlyPickup != nil && *onlyPickup)
	if err != nil {
		return err
	}

	orders, err := s.handlers.GetDeliveryOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderDTOs(orders))
}
