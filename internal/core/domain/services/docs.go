// Package services provides domain services that span more than one aggregate.
//
// The package includes:
//   - IdentityResolver: matches principals against vendors, rosters and order items
//     using canonical identity sets
//
// Services here are pure. They never touch persistence and are safe for concurrent use.
package services
