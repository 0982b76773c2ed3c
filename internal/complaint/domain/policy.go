package domain

import (
	"github.com/disnaker/sipelan/internal/shared/auth"
	"github.com/disnaker/sipelan/internal/shared/errors"
)

// Operation names a workflow operation for authorization purposes.
type Operation string

const (
	OpSubmit      Operation = "submit"
	OpVerify      Operation = "verify"
	OpDispose     Operation = "dispose"
	OpAdvance     Operation = "advance"
	OpGetTimeline Operation = "timeline"
	OpDelete      Operation = "delete"
)

// Authorize is the single permission check consulted by every workflow
// operation. It decides from (actor, operation, target complaint):
//
//	Submit       public (nil actor allowed)
//	Verify       admin
//	Dispose      admin, or unit staff of the complaint's assigned unit
//	Advance      unit staff of the complaint's assigned unit
//	GetTimeline  admin, assigned unit staff (reporters use the tracking code)
//	Delete       admin (administrative override)
//
// A nil complaint is only legal for Submit.
func Authorize(actor *auth.User, op Operation, c *Complaint) error {
	if op == OpSubmit {
		return nil
	}

	if actor == nil {
		return errors.Unauthorized("authentication required")
	}

	switch op {
	case OpVerify, OpDelete:
		if actor.IsAdmin() {
			return nil
		}

	case OpDispose:
		if actor.IsAdmin() {
			return nil
		}
		// Unit staff may only re-dispose complaints already assigned to
		// their own unit.
		if c != nil && c.UnitID != nil && actor.IsStaffOf(*c.UnitID) {
			return nil
		}

	case OpAdvance:
		if c != nil && c.UnitID != nil && actor.IsStaffOf(*c.UnitID) {
			return nil
		}

	case OpGetTimeline:
		if actor.IsAdmin() {
			return nil
		}
		if c != nil && c.UnitID != nil && actor.IsStaffOf(*c.UnitID) {
			return nil
		}
	}

	return errors.Forbidden("not permitted to " + string(op) + " this complaint")
}
