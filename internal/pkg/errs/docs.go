// Package errs provides standardized error types for the marketplace core.
//
// Every error type follows the same shape:
//   - a sentinel variable (e.g. ErrClaimConflict) usable with errors.Is
//   - a struct carrying the details of the occurrence
//   - New... constructors, with a WithCause variant where a cause makes sense
//   - Error() for the message and Unwrap() returning the sentinel
//
// Validation errors (ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError)
// come from constructors and setters. NotAuthorizedError, ClaimConflictError and
// InvalidTransitionError come from the fulfillment state machine, and ObjectNotFoundError
// from repositories.
//
// KindOf maps any error in the chain to a stable Kind, which transports use to pick
// a status code without depending on concrete types.
package errs
