// Package order holds the Order aggregate and the fulfillment state machine.
//
// An order is created at checkout in Processing and then moves forward only:
// vendors accept it and mark it ready, one delivery agent claims it, and the
// claim holder picks it up and delivers it. An order whose payment fails while it
// is still untouched in Processing is removed instead.
//
// Every mutation is expressed as a Condition plus a Mutation so that stores can
// evaluate both against the current persisted state under a single exclusive hold.
// Guard methods (AuthorizeVendor, CheckClaim, AuthorizeHolder, ...) return the typed
// errors from internal/pkg/errs; transition methods never partially apply.
package order
