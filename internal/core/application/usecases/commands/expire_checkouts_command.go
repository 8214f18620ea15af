package commands

import (
	"errors"
	"time"

	"foodmarket/internal/pkg/errs"
	"foodmarket/internal/pkg/guard"
)

var ErrExpireCheckoutsCommandIsNotConstructed = errors.New(
	"ExpireCheckoutsCommand must be created via NewExpireCheckoutsCommand constructor",
)

// ExpireCheckoutsCommand treats checkouts that were never paid as failed payments.
// Orders created before cutoff, still in Processing and unpaid are removed, at most
// limit of them per run.
type ExpireCheckoutsCommand struct { //nolint:recvcheck //using for validation
	cutoff time.Time
	limit  int

	guard guard.ConstructorGuard
}

func NewExpireCheckoutsCommand(cutoff time.Time, limit int) (ExpireCheckoutsCommand, error) {
	var errList []error
	if cutoff.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("cutoff"))
	}
	if limit <= 0 {
		errList = append(errList, errs.NewValueIsInvalidError("limit"))
	}
	if err := errors.Join(errList...); err != nil {
		return ExpireCheckoutsCommand{}, err
	}

	return ExpireCheckoutsCommand{
		cutoff: cutoff.UTC(),
		limit:  limit,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c ExpireCheckoutsCommand) Validate() error {
	return c.guard.Validate(ErrExpireCheckoutsCommandIsNotConstructed)
}

func (c ExpireCheckoutsCommand) Cutoff() time.Time {
	return c.cutoff
}

func (c ExpireCheckoutsCommand) Limit() int {
	return c.limit
}
