package commands

import (
	"context"

	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/ports"
)

// ReportLocationCommandHandler overwrites the order's delivery location with the
// newest sample. Only the claim holder or the pre-assigned agent may report; the last
// writer wins.
type ReportLocationCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.ChangePublisher
	now        Clock
}

func NewReportLocationCommandHandler(uowFactory UoWFactory, publisher ports.ChangePublisher) ReportLocationCommandHandler {
	return ReportLocationCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		now:        systemClock,
	}
}

func (h *ReportLocationCommandHandler) Handle(ctx context.Context, cmd ReportLocationCommand) (_ *order.Order, err error) {
	ctx, span := startSpan(ctx, "ReportLocation")
	defer func() { endSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return nil, err
	}

	agent := cmd.AgentID()
	now := h.now()
	updated, err := updateOrder(ctx, h.uowFactory, cmd.OrderID(),
		func(o *order.Order) error {
			return o.AuthorizeLocationReporter(agent)
		},
		func(o *order.Order) error {
			return o.ReportLocation(agent, cmd.Point(), now)
		},
	)
	if err != nil {
		return nil, err
	}

	h.publisher.Publish(ctx, updated.LocationChange(now))

	return updated, nil
}
