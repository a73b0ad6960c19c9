package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScheduleDefinitions returns the definitions currently in force for the
// subject: its custom schedule when enabled, the catalog template otherwise.
func (e *Engine) ScheduleDefinitions(s *Subject) []ScheduleDefinition {
	if s.customSchedule {
		return cloneDefinitions(s.customDefs)
	}
	return e.catalog.PaymentTemplate()
}

// ResolveSchedule evaluates the subject's active schedule against its
// current project value.
func (e *Engine) ResolveSchedule(s *Subject) (ResolvedSchedule, error) {
	return ResolveSchedule(e.ScheduleDefinitions(s), s.projectValue)
}

// Financials summarizes the subject's ledger against its active schedule.
func (e *Engine) Financials(s *Subject) (FinancialSummary, error) {
	schedule, err := e.ResolveSchedule(s)
	if err != nil {
		return FinancialSummary{}, err
	}
	return Summarize(schedule, s.payments), nil
}

func (e *Engine) requireProject(s *Subject) error {
	if err := s.holdStatus.gate(); err != nil {
		return err
	}
	if s.subjectType != SubjectTypeProject {
		return invalidInput("financials are only tracked for projects")
	}
	return nil
}

// RecordPayment appends a payment to the ledger.
func (e *Engine) RecordPayment(s *Subject, actor Actor, in PaymentInput) (Payment, error) {
	if err := e.requireProject(s); err != nil {
		return Payment{}, err
	}
	if !e.policy.CanRecordPayment(actor, s) {
		return Payment{}, forbidden("%s may not record payments", actor.Role)
	}
	if err := in.validate(); err != nil {
		return Payment{}, err
	}

	now := e.now()
	p := Payment{
		ID:         uuid.New(),
		Amount:     in.Amount,
		Mode:       in.Mode,
		PaidOn:     in.PaidOn,
		Reference:  strings.TrimSpace(in.Reference),
		RecordedBy: actor.ID,
		RecordedAt: now,
	}
	s.payments = append(s.payments, p)
	s.addSystemComment(actor, now, fmt.Sprintf("Payment of %d received via %s on %s",
		p.Amount, p.Mode, p.PaidOn.Format(time.DateOnly)))
	s.touch(now)
	s.AddDomainEvent(NewPaymentRecorded(s, p))
	return p, nil
}

// DeletePayment removes a ledger record. The deletion is kept in the audit
// feed with its reason.
func (e *Engine) DeletePayment(s *Subject, actor Actor, paymentID uuid.UUID, reason string) (Payment, error) {
	reason = strings.TrimSpace(reason)
	if err := e.requireProject(s); err != nil {
		return Payment{}, err
	}
	if !e.policy.CanDeletePayment(actor, s) {
		return Payment{}, forbidden("only an admin may delete payments")
	}
	if reason == "" {
		return Payment{}, invalidInput("a reason is required to delete a payment")
	}
	idx := s.findPayment(paymentID)
	if idx < 0 {
		return Payment{}, ErrPaymentNotFound
	}

	now := e.now()
	p := s.payments[idx]
	s.payments = append(s.payments[:idx:idx], s.payments[idx+1:]...)
	s.addSystemComment(actor, now, fmt.Sprintf("Payment %s of %d deleted: %s", p.ID, p.Amount, reason))
	s.touch(now)
	s.AddDomainEvent(NewPaymentDeleted(s, actor, p, reason, now))
	return p, nil
}

// UpdateProjectValue changes the contract value. Schedule amounts follow on
// the next read; recorded payments are untouched.
func (e *Engine) UpdateProjectValue(s *Subject, actor Actor, value int64) error {
	if err := e.requireProject(s); err != nil {
		return err
	}
	if !e.policy.CanEditFinancials(actor, s) {
		return forbidden("%s may not edit financials", actor.Role)
	}
	if value < 0 {
		return invalidInput("project value cannot be negative")
	}
	if value == s.projectValue {
		return newError(KindNoChange, "project value is already %d", value)
	}

	now := e.now()
	old := s.projectValue
	s.projectValue = value
	s.addSystemComment(actor, now, fmt.Sprintf("Project value changed from %d to %d", old, value))
	s.touch(now)
	s.AddDomainEvent(NewFinancialsUpdated(s, actor, now))
	return nil
}

// ConfigureSchedule switches between the template and a custom schedule.
// Passing nil definitions with custom enabled reuses the stored custom
// schedule. Disabling keeps the stored definitions for a later toggle.
func (e *Engine) ConfigureSchedule(s *Subject, actor Actor, custom bool, defs []ScheduleDefinition) error {
	if err := e.requireProject(s); err != nil {
		return err
	}
	if !e.policy.CanEditFinancials(actor, s) {
		return forbidden("%s may not edit financials", actor.Role)
	}

	if custom {
		if defs == nil {
			defs = s.customDefs
		}
		if len(defs) == 0 {
			return invalidSchedule("a custom schedule needs at least one entry")
		}
		if err := ValidateScheduleDefinitions(defs); err != nil {
			return err
		}
		catalog, err := e.catalog.For(s.subjectType)
		if err != nil {
			return err
		}
		for _, def := range defs {
			if def.StageKey == "" {
				continue
			}
			if _, err := catalog.IndexOf(def.StageKey); err != nil {
				return err
			}
		}
	} else if !s.customSchedule {
		return newError(KindNoChange, "project already uses the default schedule")
	}

	now := e.now()
	s.customSchedule = custom
	if custom {
		s.customDefs = cloneDefinitions(defs)
		s.addSystemComment(actor, now, fmt.Sprintf("Custom payment schedule applied with %d entries", len(defs)))
	} else {
		s.addSystemComment(actor, now, "Switched to the default payment schedule")
	}
	s.touch(now)
	s.AddDomainEvent(NewFinancialsUpdated(s, actor, now))
	return nil
}

// SetExpectedDate plans or clears the expected completion date of a stage.
func (e *Engine) SetExpectedDate(s *Subject, actor Actor, stageKey string, expected *time.Time) error {
	if err := s.holdStatus.gate(); err != nil {
		return err
	}
	catalog, err := e.catalog.For(s.subjectType)
	if err != nil {
		return err
	}
	idx, err := catalog.IndexOf(stageKey)
	if err != nil {
		return err
	}
	if !e.policy.CanPlan(actor, s) {
		return forbidden("%s may not plan this %s", actor.Role, s.subjectType)
	}

	prev, had := s.expectedDates[stageKey]
	switch {
	case expected == nil && !had:
		return newError(KindNoChange, "stage %q has no expected date", stageKey)
	case expected != nil && had && prev.Equal(*expected):
		return newError(KindNoChange, "stage %q is already planned for %s", stageKey, prev.Format(time.DateOnly))
	}

	now := e.now()
	name := catalog.stages[idx].Name
	if expected == nil {
		delete(s.expectedDates, stageKey)
		s.addSystemComment(actor, now, fmt.Sprintf("Expected date for %q cleared", name))
	} else {
		s.expectedDates[stageKey] = expected.UTC()
		s.addSystemComment(actor, now, fmt.Sprintf("Expected date for %q set to %s", name, expected.Format(time.DateOnly)))
	}
	s.touch(now)
	s.AddDomainEvent(NewPlanUpdated(s, actor, stageKey, expected, now))
	return nil
}
