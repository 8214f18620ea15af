package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork per command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. Repositories obtained after Begin
// run inside the transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error

	// Commit fails when no transaction is active.
	Commit(ctx context.Context) error

	// Rollback fails when no transaction is active. Handlers defer it and ignore the
	// error, so a rollback after Commit is harmless.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository

	VendorRepository() VendorRepository
}
