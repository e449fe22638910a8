// Package authz decides whether an operation is permitted for the resolved
// user. Decisions are pure functions of (user, operation, target); a denial
// is a value, never an error or panic, and the gate performs no mutation.
// Handlers re-verify here even when the UI already gated the action.
package authz

import (
	"github.com/google/uuid"

	"github.com/campus-hub/backend/internal/models"
)

// Operation is one of the four permission families.
type Operation int

const (
	// OpBrowse covers read-only listing and detail views. Always allowed,
	// even unauthenticated.
	OpBrowse Operation = iota
	// OpRegisterSelf covers event register/unregister for the caller's
	// own registrations. Students only.
	OpRegisterSelf
	// OpManageClubEvents covers create/update/delete of a club's events.
	// Club staff of that club only.
	OpManageClubEvents
	// OpManageClubs covers club create/update/delete. Admins only.
	OpManageClubs
	// OpManageUsers covers listing users and changing roles. Admins only.
	OpManageUsers
)

// String returns the operation name for deny reasons and logs.
func (o Operation) String() string {
	switch o {
	case OpBrowse:
		return "browse"
	case OpRegisterSelf:
		return "register_self"
	case OpManageClubEvents:
		return "manage_club_events"
	case OpManageClubs:
		return "manage_clubs"
	case OpManageUsers:
		return "manage_users"
	}
	return "unknown"
}

// Target scopes an operation to a specific club or user where relevant.
type Target struct {
	ClubID *uuid.UUID // owning club, for OpManageClubEvents
	UserID *uuid.UUID // subject user, for OpRegisterSelf
}

// Decision is the gate's answer. Reason is set only on denial and exists to
// tell the caller what to render, not to drive control flow.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision        { return Decision{Allowed: true} }
func deny(r string) Decision { return Decision{Allowed: false, Reason: r} }

// Can reports whether user (nil = unauthenticated) may perform op on target.
func Can(user *models.User, op Operation, target Target) Decision {
	if op == OpBrowse {
		return allow()
	}
	if user == nil {
		return deny("sign in required")
	}

	switch user.Role {
	case models.RoleStudent:
		if op == OpRegisterSelf {
			if target.UserID != nil && *target.UserID != user.ID {
				return deny("students may only manage their own registrations")
			}
			return allow()
		}
		return deny("students may not " + op.String())

	case models.RoleClubStaff:
		if op == OpManageClubEvents {
			// Staff with no club assignment are authorized for nothing
			// club-scoped until an admin assigns one.
			if user.ClubID == nil {
				return deny("no club assigned")
			}
			if target.ClubID == nil || *target.ClubID != *user.ClubID {
				return deny("club staff may only manage their own club's events")
			}
			return allow()
		}
		return deny("club staff may not " + op.String())

	case models.RoleAdmin:
		switch op {
		case OpManageClubs, OpManageUsers:
			return allow()
		}
		return deny("admins may not " + op.String())
	}

	return deny("unknown role")
}
