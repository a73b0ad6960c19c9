package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Role is the business role of an actor.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RolePreSales   Role = "presales"
	RoleDesigner   Role = "designer"
	RoleOperations Role = "operations"
	RoleFinance    Role = "finance"
)

// IsValid returns true if the role is known.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RolePreSales, RoleDesigner, RoleOperations, RoleFinance:
		return true
	default:
		return false
	}
}

// ParseRole parses a string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", invalidInput("unknown role %q", s)
	}
	return r, nil
}

// Actor is the user performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// SystemActor is used for entries the engine records on its own behalf.
var SystemActor = Actor{ID: uuid.Nil, Role: RoleAdmin}

// PermissionPolicy answers whether an actor may perform an operation on a subject.
type PermissionPolicy interface {
	CanTransition(actor Actor, subject *Subject, fromIndex, toIndex int) bool
	CanRollback(actor Actor, subject *Subject) bool
	CanEditSubStages(actor Actor, subject *Subject) bool
	CanChangeHold(actor Actor, subject *Subject, from, to HoldStatus) bool
	CanRecordPayment(actor Actor, subject *Subject) bool
	CanDeletePayment(actor Actor, subject *Subject) bool
	CanEditFinancials(actor Actor, subject *Subject) bool
	CanPlan(actor Actor, subject *Subject) bool
}

// RolePolicy is the default role and relationship based policy.
//
// Presales actors work leads assigned to them. Designers work projects
// assigned to them and never move a lead. Operations handles projects.
// Finance owns the ledger. Only admins roll back or reactivate.
type RolePolicy struct{}

// NewRolePolicy creates the default policy.
func NewRolePolicy() RolePolicy {
	return RolePolicy{}
}

// CanTransition reports whether the actor may move the subject between stages.
func (RolePolicy) CanTransition(actor Actor, subject *Subject, fromIndex, toIndex int) bool {
	switch actor.Role {
	case RoleAdmin, RoleManager:
		return true
	case RolePreSales:
		return subject.Type() == SubjectTypeLead && subject.IsAssignedTo(actor.ID)
	case RoleDesigner:
		return subject.Type() == SubjectTypeProject && subject.IsAssignedTo(actor.ID)
	case RoleOperations:
		return subject.Type() == SubjectTypeProject
	default:
		return false
	}
}

// CanRollback reports whether the actor may move a subject to an earlier stage.
func (RolePolicy) CanRollback(actor Actor, _ *Subject) bool {
	return actor.Role == RoleAdmin
}

// CanEditSubStages reports whether the actor may complete or update milestones.
func (RolePolicy) CanEditSubStages(actor Actor, subject *Subject) bool {
	switch actor.Role {
	case RoleAdmin, RoleManager, RoleOperations:
		return true
	case RoleDesigner:
		return subject.IsAssignedTo(actor.ID)
	default:
		return false
	}
}

// CanChangeHold reports whether the actor may move the subject from one hold status to another.
func (RolePolicy) CanChangeHold(actor Actor, subject *Subject, from, to HoldStatus) bool {
	switch actor.Role {
	case RoleAdmin:
		return true
	case RoleManager:
		return !from.IsReactivation(to)
	case RoleDesigner:
		return subject.IsAssignedTo(actor.ID) && from == HoldActive && to == HoldOnHold
	default:
		return false
	}
}

// CanRecordPayment reports whether the actor may add to the payment ledger.
func (RolePolicy) CanRecordPayment(actor Actor, _ *Subject) bool {
	return actor.Role == RoleAdmin || actor.Role == RoleManager || actor.Role == RoleFinance
}

// CanDeletePayment reports whether the actor may remove a ledger record.
func (RolePolicy) CanDeletePayment(actor Actor, _ *Subject) bool {
	return actor.Role == RoleAdmin
}

// CanEditFinancials reports whether the actor may change project value or schedule.
func (RolePolicy) CanEditFinancials(actor Actor, _ *Subject) bool {
	return actor.Role == RoleAdmin || actor.Role == RoleManager || actor.Role == RoleFinance
}

// CanPlan reports whether the actor may set expected stage dates.
func (RolePolicy) CanPlan(actor Actor, subject *Subject) bool {
	switch actor.Role {
	case RoleAdmin, RoleManager:
		return true
	case RoleDesigner, RolePreSales:
		return subject.IsAssignedTo(actor.ID)
	default:
		return false
	}
}
