package domain

import (
	"fmt"
	"time"
)

// Transition describes an accepted stage move.
type Transition struct {
	FromStage     string    `json:"from_stage"`
	ToStage       string    `json:"to_stage"`
	FromIndex     int       `json:"from_index"`
	ToIndex       int       `json:"to_index"`
	SkippedStages []string  `json:"skipped_stages,omitempty"`
	Automatic     bool      `json:"automatic"`
	Rollback      bool      `json:"rollback"`
	At            time.Time `json:"at"`
}

// TransitionStage moves the subject to the requested stage.
//
// Checks run in a fixed order: hold gate, catalog membership, permission,
// no-op, rollback authority. Forward moves of any distance are accepted;
// with SkipRequireGroups every skipped stage must have its groups complete.
func (e *Engine) TransitionStage(s *Subject, actor Actor, requested string) (Transition, error) {
	if err := s.holdStatus.gate(); err != nil {
		return Transition{}, err
	}
	catalog, err := e.catalog.For(s.subjectType)
	if err != nil {
		return Transition{}, err
	}
	to, err := catalog.IndexOf(requested)
	if err != nil {
		return Transition{}, err
	}
	from, err := catalog.IndexOf(s.stage)
	if err != nil {
		return Transition{}, err
	}
	if !e.policy.CanTransition(actor, s, from, to) {
		return Transition{}, forbidden("%s may not move this %s", actor.Role, s.subjectType)
	}
	if to == from {
		return Transition{}, newError(KindNoChange, "subject is already at stage %q", requested)
	}

	if to < from {
		if !e.policy.CanRollback(actor, s) {
			return Transition{}, forbidden("only an admin may roll a %s back from %q to %q", s.subjectType, s.stage, requested)
		}
		return e.rollback(s, catalog, actor, from, to), nil
	}

	if e.skipPolicy == SkipRequireGroups {
		for i := from + 1; i < to; i++ {
			stage := catalog.stages[i]
			if len(stage.Groups) > 0 && !s.stageGroupsComplete(stage) {
				return Transition{}, invalidInput("cannot skip stage %q: its milestones are incomplete", stage.Key)
			}
		}
	}

	return e.moveForward(s, catalog, actor, from, to, false), nil
}

// moveForward applies an already validated forward move and records history.
// Manual skips leave skipped stages undated; automatic chains only pass
// through stages whose groups just completed, so those get today's date.
func (e *Engine) moveForward(s *Subject, catalog *Catalog, actor Actor, from, to int, auto bool) Transition {
	now := e.now()
	kind := TimelineKindForward
	if auto {
		kind = TimelineKindAuto
	}

	left := catalog.stages[from]
	s.appendTimeline(TimelineEntry{
		StageKey:      left.Key,
		Title:         left.Name,
		Status:        TimelineCompleted,
		Kind:          kind,
		ExpectedDate:  s.expectedDatePtr(left.Key),
		CompletedDate: timePtr(now),
		ActorID:       actor.ID,
		RecordedAt:    now,
	})

	t := Transition{
		FromStage: left.Key,
		ToStage:   catalog.stages[to].Key,
		FromIndex: from,
		ToIndex:   to,
		Automatic: auto,
		At:        now,
	}

	for i := from + 1; i < to; i++ {
		stage := catalog.stages[i]
		entry := TimelineEntry{
			StageKey:     stage.Key,
			Title:        stage.Name,
			Status:       TimelineCompleted,
			Kind:         TimelineKindSkipped,
			ExpectedDate: s.expectedDatePtr(stage.Key),
			ActorID:      actor.ID,
			RecordedAt:   now,
		}
		if auto {
			entry.Kind = TimelineKindAuto
			entry.CompletedDate = timePtr(now)
		} else {
			t.SkippedStages = append(t.SkippedStages, stage.Key)
		}
		s.appendTimeline(entry)
	}

	target := catalog.stages[to]
	s.appendTimeline(TimelineEntry{
		StageKey:     target.Key,
		Title:        target.Name,
		Status:       TimelineCurrent,
		Kind:         kind,
		ExpectedDate: s.expectedDatePtr(target.Key),
		ActorID:      actor.ID,
		RecordedAt:   now,
	})

	s.stage = target.Key
	s.touch(now)
	s.addSystemComment(actor, now, transitionComment(actor, left, target, t, now))
	s.AddDomainEvent(NewStageTransitioned(s, actor, t))

	if s.subjectType == SubjectTypeLead && to == catalog.Len()-1 {
		s.AddDomainEvent(NewLeadReadyForConversion(s, now))
	}
	return t
}

func (e *Engine) rollback(s *Subject, catalog *Catalog, actor Actor, from, to int) Transition {
	now := e.now()
	left := catalog.stages[from]
	target := catalog.stages[to]

	s.appendTimeline(TimelineEntry{
		StageKey:     target.Key,
		Title:        target.Name,
		Status:       TimelineCurrent,
		Kind:         TimelineKindRollback,
		ExpectedDate: s.expectedDatePtr(target.Key),
		ActorID:      actor.ID,
		RecordedAt:   now,
	})

	t := Transition{
		FromStage: left.Key,
		ToStage:   target.Key,
		FromIndex: from,
		ToIndex:   to,
		Rollback:  true,
		At:        now,
	}

	s.stage = target.Key
	s.touch(now)
	s.addSystemComment(actor, now, fmt.Sprintf("ROLLBACK by %s (%s): %q -> %q at %s",
		actor.ID, actor.Role, left.Name, target.Name, now.Format(time.RFC3339)))
	s.AddDomainEvent(NewStageRolledBack(s, actor, t))
	return t
}

func transitionComment(actor Actor, from, to StageDefinition, t Transition, at time.Time) string {
	verb := "Stage moved"
	if t.Automatic {
		verb = "Stage advanced on milestone completion"
	}
	msg := fmt.Sprintf("%s by %s (%s): %q -> %q at %s",
		verb, actor.ID, actor.Role, from.Name, to.Name, at.Format(time.RFC3339))
	if len(t.SkippedStages) > 0 {
		msg += fmt.Sprintf(", skipped %v", t.SkippedStages)
	}
	return msg
}

func (s *Subject) expectedDatePtr(stageKey string) *time.Time {
	d, ok := s.expectedDates[stageKey]
	if !ok {
		return nil
	}
	return &d
}

func timePtr(t time.Time) *time.Time {
	return &t
}
