package commands

import (
	"context"
	"errors"

	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/errs"
)

// ExpireCheckoutsCommandHandler removes abandoned checkouts. Each candidate is deleted
// conditionally, so an order that got paid or touched by a vendor after it was listed
// is skipped rather than removed.
type ExpireCheckoutsCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.ChangePublisher
	now        Clock
}

func NewExpireCheckoutsCommandHandler(uowFactory UoWFactory, publisher ports.ChangePublisher) ExpireCheckoutsCommandHandler {
	return ExpireCheckoutsCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		now:        systemClock,
	}
}

// Handle returns the number of removed orders.
func (h *ExpireCheckoutsCommandHandler) Handle(ctx context.Context, cmd ExpireCheckoutsCommand) (_ int, err error) {
	ctx, span := startSpan(ctx, "ExpireCheckouts")
	defer func() { endSpan(span, err) }()

	if err = cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	expired, err := orderRepo.ListExpiredCheckouts(ctx, cmd.Cutoff(), cmd.Limit())
	if err != nil {
		return 0, err
	}

	removed := make([]*order.Order, 0, len(expired))
	for _, candidate := range expired {
		gone, err := orderRepo.DeleteIfMatches(ctx, candidate.ID(), func(o *order.Order) error {
			return o.ValidateDiscard()
		})
		if errors.Is(err, errs.ErrObjectNotFound) || errors.Is(err, errs.ErrInvalidTransition) {
			continue
		}
		if err != nil {
			return 0, err
		}
		removed = append(removed, gone)
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	now := h.now()
	for _, o := range removed {
		h.publisher.Publish(ctx, o.NewChange(order.ChangeRemoved, map[string]any{
			"reason": "checkout_expired",
		}, now))
	}

	return len(removed), nil
}
