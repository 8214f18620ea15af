package http

import (
	"net/http"

	"foodmarket/internal/core/application/usecases/commands"
	"foodmarket/internal/core/application/usecases/queries"
	"foodmarket/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

// createVendor handles POST /api/v1/vendors. The caller becomes the owner.
func (s *Server) createVendor(c echo.Context) error {
	var req VendorProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewCreateVendorCommand(kernel.NewUUID(), callerOf(c), req.Name, req.Phone)
	if err != nil {
		return err
	}

	created, err := s.handlers.CreateVendor.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toVendorDTO(queries.VendorResponseOf(created)))
}

func (s *Server) listVendors(c echo.Context) error {
	vendors, err := s.handlers.ListVendors.Handle(c.Request().Context(), queries.NewListVendorsQuery())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toVendorDTOs(vendors))
}

func (s *Server) getMyVendor(c echo.Context) error {
	query, err := queries.NewGetMyVendorQuery(callerOf(c))
	if err != nil {
		return err
	}

	mine, err := s.handlers.GetMyVendor.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toVendorDTO(mine))
}

func (s *Server) updateVendorProfile(c echo.Context) error {
	var req VendorProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewUpdateVendorProfileCommand(callerOf(c), req.Name, req.Phone)
	if err != nil {
		return err
	}

	updated, err := s.handlers.UpdateVendorProfile.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toVendorDTO(queries.VendorResponseOf(updated)))
}

func (s *Server) assignRosterAgent(c echo.Context) error {
	return s.updateRosterByOwner(c, commands.RosterAssign)
}

func (s *Server) unassignRosterAgent(c echo.Context) error {
	return s.updateRosterByOwner(c, commands.RosterUnassign)
}

func (s *Server) joinVendor(c echo.Context) error {
	return s.updateRosterByAgent(c, commands.RosterJoin)
}

func (s *Server) leaveVendor(c echo.Context) error {
	return s.updateRosterByAgent(c, commands.RosterLeave)
}

// listAssignedVendors handles GET /api/v1/delivery/vendors.
func (s *Server) listAssignedVendors(c echo.Context) error {
	query, err := queries.NewGetAssignedVendorsQuery(callerOf(c))
	if err != nil {
		return err
	}

	vendors, err := s.handlers.GetAssignedVendors.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toVendorDTOs(vendors))
}

func (s *Server) updateRosterByOwner(c echo.Context, op commands.RosterOp) error {
	agentID, err := identityParam(c, "agentId")
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateRosterCommand(op, callerOf(c), kernel.UUID{}, agentID)
	if err != nil {
		return err
	}
	return s.updateRoster(c, cmd)
}

func (s *Server) updateRosterByAgent(c echo.Context, op commands.RosterOp) error {
	vendorID, err := uuidParam(c, "vendorId")
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateRosterCommand(op, callerOf(c), vendorID, "")
	if err != nil {
		return err
	}
	return s.updateRoster(c, cmd)
}

func (s *Server) updateRoster(c echo.Context, cmd commands.UpdateRosterCommand) error {
	updated, err := s.handlers.UpdateRoster.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toVendorDTO(queries.VendorResponseOf(updated)))
}
