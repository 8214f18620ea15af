// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
//
// Every handler validates its command, runs inside a unit of work, changes an order
// only through OrderRepository.UpdateIfMatches and hands the committed change to a
// ports.ChangePublisher after Commit. A failed command publishes nothing.
package commands

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/core/domain/model/order"
	"foodmarket/internal/core/domain/model/vendor"
	"foodmarket/internal/core/ports"
	"foodmarket/internal/pkg/errs"
)

// Unit of Work interfaces provide transaction management for command handlers.
//
// Example:
//
//	uow := factory.Create()
//	err := uow.Begin(ctx)
//	defer uow.Rollback(ctx)
//
//	v, err := uow.VendorRepository().GetByOwner(ctx, requester)
//	o, err := uow.OrderRepository().UpdateIfMatches(ctx, id, cond, mutate)
//
//	err = uow.Commit(ctx)
type (
	UoW        = ports.UnitOfWork
	UoWFactory = ports.UnitOfWorkFactory
)

// Clock returns the current time. Handlers stamp pickup, delivery and location
// samples with it.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

var tracer = otel.Tracer("foodmarket/commands")

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "commands."+name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// updateOrder runs one conditional update inside its own unit of work.
func updateOrder(
	ctx context.Context,
	uowFactory UoWFactory,
	id kernel.UUID,
	cond order.Condition,
	mutate order.Mutation,
) (*order.Order, error) {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	updated, err := uow.OrderRepository().UpdateIfMatches(ctx, id, cond, mutate)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return updated, nil
}

// ownedVendor returns the vendor owned by requester, or nil when requester owns none.
func ownedVendor(ctx context.Context, vendors ports.VendorDirectory, requester kernel.Identity) (*vendor.Vendor, error) {
	v, err := vendors.GetByOwner(ctx, requester)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func requireOwnedVendor(
	ctx context.Context,
	vendors ports.VendorDirectory,
	requester kernel.Identity,
	action string,
) (*vendor.Vendor, error) {
	v, err := ownedVendor(ctx, vendors, requester)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errs.NewNotAuthorizedError(action, "")
	}
	return v, nil
}

func validateIdentity(paramName string, id kernel.Identity) error {
	if id.IsEmpty() {
		return errs.NewValueIsRequiredError(paramName)
	}
	return nil
}
