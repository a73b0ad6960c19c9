package domain

import "strings"

// HoldStatus is the lifecycle overlay that gates every other mutation.
type HoldStatus string

const (
	// HoldActive is the default state; all operations are allowed.
	HoldActive HoldStatus = "active"
	// HoldOnHold temporarily pauses the subject.
	HoldOnHold HoldStatus = "hold"
	// HoldDeactivated is terminal unless an admin reactivates the subject.
	HoldDeactivated HoldStatus = "deactivated"
)

// String returns the string representation of the hold status.
func (s HoldStatus) String() string {
	return string(s)
}

// IsValid returns true if the hold status is a known value.
func (s HoldStatus) IsValid() bool {
	switch s {
	case HoldActive, HoldOnHold, HoldDeactivated:
		return true
	default:
		return false
	}
}

// CanTransitionTo returns true if moving to the target status is a legal move.
// Leaving Deactivated is only legal as a reactivation to Active.
func (s HoldStatus) CanTransitionTo(target HoldStatus) bool {
	switch s {
	case HoldActive:
		return target == HoldOnHold || target == HoldDeactivated
	case HoldOnHold:
		return target == HoldActive || target == HoldDeactivated
	case HoldDeactivated:
		return target == HoldActive
	default:
		return false
	}
}

// IsReactivation returns true for the Deactivated to Active move.
func (s HoldStatus) IsReactivation(target HoldStatus) bool {
	return s == HoldDeactivated && target == HoldActive
}

// ParseHoldStatus parses a string into a HoldStatus.
func ParseHoldStatus(s string) (HoldStatus, error) {
	status := HoldStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", invalidInput("unknown hold status %q", s)
	}
	return status, nil
}

// gate rejects mutations on subjects that are not active.
func (s HoldStatus) gate() error {
	switch s {
	case HoldOnHold:
		return newError(KindSubjectOnHold, "subject is on hold")
	case HoldDeactivated:
		return newError(KindSubjectDeactivated, "subject is deactivated")
	default:
		return nil
	}
}

// HoldChange describes an accepted hold-status transition.
type HoldChange struct {
	From         HoldStatus `json:"from"`
	To           HoldStatus `json:"to"`
	Reason       string     `json:"reason"`
	Reactivation bool       `json:"reactivation"`
}

// ChangeHoldStatus moves the subject to a new hold status. The reason is
// mandatory and is recorded as a system comment.
func (e *Engine) ChangeHoldStatus(s *Subject, actor Actor, target HoldStatus, reason string) (HoldChange, error) {
	reason = strings.TrimSpace(reason)
	if !target.IsValid() {
		return HoldChange{}, invalidInput("unknown hold status %q", target)
	}
	if reason == "" {
		return HoldChange{}, invalidInput("a reason is required to change hold status")
	}

	from := s.holdStatus
	if from == target {
		return HoldChange{}, newError(KindNoChange, "subject is already %s", target)
	}
	if !from.CanTransitionTo(target) {
		return HoldChange{}, invalidInput("cannot move from %s to %s", from, target)
	}
	if !e.policy.CanChangeHold(actor, s, from, target) {
		return HoldChange{}, forbidden("%s may not change hold status from %s to %s", actor.Role, from, target)
	}

	now := e.now()
	s.holdStatus = target
	s.addSystemComment(actor, now, holdComment(from, target, reason))
	s.touch(now)

	change := HoldChange{From: from, To: target, Reason: reason, Reactivation: from.IsReactivation(target)}
	s.AddDomainEvent(NewHoldStatusChanged(s, actor, change, now))
	return change, nil
}

func holdComment(from, to HoldStatus, reason string) string {
	switch {
	case from.IsReactivation(to):
		return "Subject reactivated: " + reason
	case to == HoldOnHold:
		return "Subject put on hold: " + reason
	case to == HoldDeactivated:
		return "Subject deactivated: " + reason
	default:
		return "Subject resumed: " + reason
	}
}
