package commands

import (
	"errors"
	"fmt"

	"foodmarket/internal/core/domain/model/kernel"
	"foodmarket/internal/pkg/errs"
	"foodmarket/internal/pkg/guard"
)

var ErrUpdateRosterCommandIsNotConstructed = errors.New(
	"UpdateRosterCommand must be created via NewUpdateRosterCommand constructor",
)

// RosterOp names a roster change and who may perform it.
type RosterOp string

const (
	// RosterAssign and RosterUnassign are performed by the vendor owner on its own
	// vendor for the given agent.
	RosterAssign   RosterOp = "assign"
	RosterUnassign RosterOp = "unassign"

	// RosterJoin and RosterLeave are performed by the agent itself on the given vendor.
	RosterJoin  RosterOp = "join"
	RosterLeave RosterOp = "leave"
)

func (op RosterOp) byOwner() bool {
	return op == RosterAssign || op == RosterUnassign
}

func (op RosterOp) adds() bool {
	return op == RosterAssign || op == RosterJoin
}

// UpdateRosterCommand links or unlinks a delivery agent and a vendor.
//
// Example:
//
//	// the owner adds an agent to its own vendor
//	cmd, err := NewUpdateRosterCommand(RosterAssign, ownerID, kernel.UUID{}, agentID)
//
//	// an agent joins a vendor by its record id
//	cmd, err := NewUpdateRosterCommand(RosterJoin, agentID, vendorID, "")
type UpdateRosterCommand struct { //nolint:recvcheck //using for validation
	op        RosterOp
	requester kernel.Identity
	vendorID  kernel.UUID
	agentID   kernel.Identity

	guard guard.ConstructorGuard
}

// NewUpdateRosterCommand checks the arguments the operation needs: the agent for
// assign and unassign, the vendor for join and leave.
func NewUpdateRosterCommand(
	op RosterOp,
	requester kernel.Identity,
	vendorID kernel.UUID,
	agentID kernel.Identity,
) (UpdateRosterCommand, error) {
	var opErr error
	switch op {
	case RosterAssign, RosterUnassign:
		opErr = validateIdentity("agentId", agentID)
	case RosterJoin, RosterLeave:
		opErr = vendorID.Validate()
		agentID = requester
	default:
		opErr = errs.NewValueIsInvalidErrorWithCause("op", fmt.Errorf("%q is not a roster operation", op))
	}

	if err := errors.Join(
		validateIdentity("requesterId", requester),
		opErr,
	); err != nil {
		return UpdateRosterCommand{}, err
	}

	return UpdateRosterCommand{
		op:        op,
		requester: requester,
		vendorID:  vendorID,
		agentID:   agentID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateRosterCommand) Validate() error {
	return c.guard.Validate(ErrUpdateRosterCommandIsNotConstructed)
}

func (c UpdateRosterCommand) Op() RosterOp {
	return c.op
}

func (c UpdateRosterCommand) Requester() kernel.Identity {
	return c.requester
}

// VendorID is set for join and leave only.
func (c UpdateRosterCommand) VendorID() kernel.UUID {
	return c.vendorID
}

// AgentID is the requester itself for join and leave.
func (c UpdateRosterCommand) AgentID() kernel.Identity {
	return c.agentID
}
