package commands

import (
	"errors"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/pkg/guard"
)

var ErrReportLocationCommandIsNotConstructed = errors.New(
	"ReportLocationCommand must be created via NewReportLocationCommand constructor",
)

// ReportLocationCommand carries one location sample from a delivery agent.
// Coordinates are range-checked here, before anything is read or written.
type ReportLocationCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	agentID kernel.Identity
	point   kernel.GeoPoint

	guard guard.ConstructorGuard
}

func NewReportLocationCommand(orderID kernel.UUID, agentID kernel.Identity, lat, lng float64) (ReportLocationCommand, error) {
	point, pointErr := kernel.NewGeoPoint(lat, lng)
	if err := errors.Join(
		orderID.Validate(),
		validateIdentity("agentId", agentID),
		pointErr,
	); err != nil {
		return ReportLocationCommand{}, err
	}

	return ReportLocationCommand{
		orderID: orderID,
		agentID: agentID,
		point:   point,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c ReportLocationCommand) Validate() error {
	return c.guard.Validate(ErrReportLocationCommandIsNotConstructed)
}

func (c ReportLocationCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ReportLocationCommand) AgentID() kernel.Identity {
	return c.agentID
}

func (c ReportLocationCommand) Point() kernel.GeoPoint {
	return c.point
}
