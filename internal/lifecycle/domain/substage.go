package domain

import (
	"fmt"
	"strings"
)

// GroupProgress reports the completion state of one milestone group.
type GroupProgress struct {
	StageKey  string `json:"stage"`
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Satisfied int    `json:"satisfied"`
	Complete  bool   `json:"complete"`
}

// SubStageResult is returned by CompleteSubStage and UpdatePercentage.
type SubStageResult struct {
	SubStageID        string      `json:"sub_stage_id"`
	SubStageCompleted bool        `json:"sub_stage_completed"`
	AutoCompleted     bool        `json:"auto_completed"`
	GroupCompleted    bool        `json:"group_completed"`
	Percent           *int        `json:"percent,omitempty"`
	Advancement       *Transition `json:"advancement,omitempty"`
	// AdvancementBlocked is set when the stage's groups are all satisfied but
	// the actor is not allowed to move the stage.
	AdvancementBlocked bool `json:"advancement_blocked"`
}

// isSatisfied applies the kind-specific completion predicate.
func (s *Subject) isSatisfied(def SubStageDefinition) bool {
	if _, ok := s.completed[def.ID]; ok {
		return true
	}
	if def.Kind == SubStagePercentage {
		if p, ok := s.percentages[def.ID]; ok && p.Percent >= 100 {
			return true
		}
	}
	return false
}

func (s *Subject) isGroupComplete(group SubStageGroup) bool {
	for _, def := range group.SubStages {
		if !s.isSatisfied(def) {
			return false
		}
	}
	return true
}

// stageGroupsComplete returns true if every group of the stage is complete.
// A stage without groups is never satisfied by sub-stages.
func (s *Subject) stageGroupsComplete(stage StageDefinition) bool {
	if len(stage.Groups) == 0 {
		return false
	}
	for _, group := range stage.Groups {
		if !s.isGroupComplete(group) {
			return false
		}
	}
	return true
}

func groupProgress(catalog *Catalog, s *Subject) []GroupProgress {
	var out []GroupProgress
	for _, stage := range catalog.stages {
		for _, group := range stage.Groups {
			gp := GroupProgress{StageKey: stage.Key, Name: group.Name, Total: len(group.SubStages)}
			for _, def := range group.SubStages {
				if s.isSatisfied(def) {
					gp.Satisfied++
				}
			}
			gp.Complete = gp.Satisfied == gp.Total
			out = append(out, gp)
		}
	}
	return out
}

// IsGroupComplete reports whether the named group of a stage is complete.
func (e *Engine) IsGroupComplete(s *Subject, stageKey, groupName string) (bool, error) {
	catalog, err := e.catalog.For(s.subjectType)
	if err != nil {
		return false, err
	}
	idx, err := catalog.IndexOf(stageKey)
	if err != nil {
		return false, err
	}
	for _, group := range catalog.stages[idx].Groups {
		if group.Name == groupName {
			return s.isGroupComplete(group), nil
		}
	}
	return false, newError(KindNotFound, "group %q not found in stage %q", groupName, stageKey)
}

func (e *Engine) subStageFor(s *Subject, actor Actor, id string) (*Catalog, SubStageRef, error) {
	if err := s.holdStatus.gate(); err != nil {
		return nil, SubStageRef{}, err
	}
	catalog, err := e.catalog.For(s.subjectType)
	if err != nil {
		return nil, SubStageRef{}, err
	}
	ref, err := catalog.SubStage(id)
	if err != nil {
		return nil, SubStageRef{}, err
	}
	if !e.policy.CanEditSubStages(actor, s) {
		return nil, SubStageRef{}, forbidden("%s may not update sub-stages of this %s", actor.Role, s.subjectType)
	}
	return catalog, ref, nil
}

// CompleteSubStage marks a binary sub-stage complete. A duplicate completion
// is rejected so callers can tell a double submit from a state error.
func (e *Engine) CompleteSubStage(s *Subject, actor Actor, id string) (SubStageResult, error) {
	catalog, ref, err := e.subStageFor(s, actor, id)
	if err != nil {
		return SubStageResult{}, err
	}
	if ref.Definition.Kind != SubStageBinary {
		return SubStageResult{}, invalidInput("sub-stage %q is percentage based; update its percentage instead", id)
	}
	if s.IsSubStageComplete(id) {
		return SubStageResult{}, newError(KindAlreadyCompleted, "sub-stage %q is already completed", id)
	}

	now := e.now()
	s.addSystemComment(actor, now, fmt.Sprintf("Completed %q", ref.Definition.Name))
	return e.finishSubStage(s, catalog, ref, actor, false), nil
}

// UpdatePercentage overwrites the progress of a percentage sub-stage. At 100
// the sub-stage completes through the same path as CompleteSubStage.
func (e *Engine) UpdatePercentage(s *Subject, actor Actor, id string, percent int, comment string) (SubStageResult, error) {
	comment = strings.TrimSpace(comment)
	catalog, ref, err := e.subStageFor(s, actor, id)
	if err != nil {
		return SubStageResult{}, err
	}
	if ref.Definition.Kind != SubStagePercentage {
		return SubStageResult{}, invalidInput("sub-stage %q is binary; complete it instead", id)
	}
	if percent < 0 || percent > 100 {
		return SubStageResult{}, invalidInput("percent must be between 0 and 100, got %d", percent)
	}
	if comment == "" {
		return SubStageResult{}, invalidInput("a comment is required when updating progress")
	}
	if s.IsSubStageComplete(id) {
		return SubStageResult{}, newError(KindAlreadyCompleted, "sub-stage %q is already completed", id)
	}

	now := e.now()
	progress := PercentageProgress{
		Percent:     percent,
		LastComment: comment,
		UpdatedAt:   now,
		UpdatedBy:   actor.ID,
	}
	s.percentages[id] = progress
	s.addSystemComment(actor, now, fmt.Sprintf("%q progress set to %d%%: %s", ref.Definition.Name, percent, comment))
	s.AddDomainEvent(NewSubStageProgressed(s, actor, id, progress))

	if percent < 100 {
		s.touch(now)
		return SubStageResult{SubStageID: id, Percent: &percent}, nil
	}

	result := e.finishSubStage(s, catalog, ref, actor, true)
	result.Percent = &percent
	return result, nil
}

// finishSubStage records a completion and runs sub-stage driven advancement.
// All validation has already happened, so it cannot fail.
func (e *Engine) finishSubStage(s *Subject, catalog *Catalog, ref SubStageRef, actor Actor, auto bool) SubStageResult {
	now := e.now()
	s.completed[ref.Definition.ID] = now
	s.touch(now)

	group := catalog.stages[ref.StageIndex].Groups[ref.GroupIndex]
	result := SubStageResult{
		SubStageID:        ref.Definition.ID,
		SubStageCompleted: true,
		AutoCompleted:     auto,
		GroupCompleted:    s.isGroupComplete(group),
	}
	s.AddDomainEvent(NewSubStageCompleted(s, actor, ref, result.GroupCompleted, auto, now))

	current, _ := catalog.IndexOf(s.stage)
	if !result.GroupCompleted || ref.StageIndex != current {
		return result
	}

	target := current
	for target < catalog.Len()-1 && s.stageGroupsComplete(catalog.stages[target]) {
		target++
		if len(catalog.stages[target].Groups) == 0 || !s.stageGroupsComplete(catalog.stages[target]) {
			break
		}
	}
	if target == current {
		return result
	}
	if !e.policy.CanTransition(actor, s, current, target) {
		result.AdvancementBlocked = true
		return result
	}

	t := e.moveForward(s, catalog, actor, current, target, true)
	result.Advancement = &t
	return result
}
