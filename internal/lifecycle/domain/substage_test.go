package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteSubStage(t *testing.T) {
	e, _ := newTestEngine(t, SkipAllow)

	t.Run("first of two does not complete the group", func(t *testing.T) {
		s := newProject(t, e)

		res, err := e.CompleteSubStage(s, designer, "booking_amount_received")

		require.NoError(t, err)
		assert.True(t, res.SubStageCompleted)
		assert.False(t, res.GroupCompleted)
		assert.Nil(t, res.Advancement)
		assert.Equal(t, "kickoff", s.Stage())
		assert.Len(t, s.NewComments(), 1)
	})

	t.Run("completing the last group advances the stage", func(t *testing.T) {
		s := newProject(t, e)
		_, err := e.CompleteSubStage(s, designer, "booking_amount_received")
		require.NoError(t, err)

		res, err := e.CompleteSubStage(s, designer, "agreement_signed")

		require.NoError(t, err)
		assert.True(t, res.GroupCompleted)
		require.NotNil(t, res.Advancement)
		assert.True(t, res.Advancement.Automatic)
		assert.Equal(t, "kickoff", res.Advancement.FromStage)
		assert.Equal(t, "site_measurement", res.Advancement.ToStage)
		assert.Equal(t, "site_measurement", s.Stage())
		assert.Contains(t, routingKeys(s), RoutingKeyStageTransitioned)
	})

	t.Run("duplicate completion is rejected", func(t *testing.T) {
		s := newProject(t, e)
		_, err := e.CompleteSubStage(s, designer, "agreement_signed")
		require.NoError(t, err)
		before := s.State()

		_, err = e.CompleteSubStage(s, designer, "agreement_signed")

		assert.ErrorIs(t, err, ErrAlreadyCompleted)
		assert.Equal(t, before, s.State())
	})

	t.Run("unknown sub-stage", func(t *testing.T) {
		s := newProject(t, e)
		_, err := e.CompleteSubStage(s, designer, "wallpaper")
		assert.ErrorIs(t, err, ErrSubStageNotFound)
	})

	t.Run("percentage sub-stage cannot be ticked", func(t *testing.T) {
		s := newProject(t, e)
		_, err := e.CompleteSubStage(s, designer, "renders_progress")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("finance cannot edit sub-stages", func(t *testing.T) {
		s := newProject(t, e)
		_, err := e.CompleteSubStage(s, finance, "agreement_signed")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("completion of a later stage does not advance", func(t *testing.T) {
		s := newProject(t, e)
		_, err := e.CompleteSubStage(s, designer, "site_visit_done")
		require.NoError(t, err)

		res, err := e.CompleteSubStage(s, designer, "measurements_uploaded")

		require.NoError(t, err)
		assert.True(t, res.GroupCompleted)
		assert.Nil(t, res.Advancement)
		assert.Equal(t, "kickoff", s.Stage())
	})
}

func TestCompleteSubStage_ChainsThroughSatisfiedStages(t *testing.T) {
	e, _ := newTestEngine(t, SkipAllow)
	s := newProject(t, e)
	for _, id := range []string{"site_visit_done", "measurements_uploaded", "booking_amount_received"} {
		_, err := e.CompleteSubStage(s, designer, id)
		require.NoError(t, err)
	}

	res, err := e.CompleteSubStage(s, designer, "agreement_signed")

	require.NoError(t, err)
	require.NotNil(t, res.Advancement)
	assert.Equal(t, "design", res.Advancement.ToStage)
	assert.Empty(t, res.Advancement.SkippedStages)

	projected, err := e.Timeline(s)
	require.NoError(t, err)
	assert.NotNil(t, projected[1].CompletedDate)
	assert.Equal(t, TimelineCurrent, projected[2].Status)
}

func TestCompleteSubStage_AdvancementBlocked(t *testing.T) {
	e, _ := newTestEngine(t, SkipAllow)
	s := newProject(t, e)
	e.policy = noTransitionPolicy{RolePolicy{}}

	_, err := e.CompleteSubStage(s, designer, "booking_amount_received")
	require.NoError(t, err)
	res, err := e.CompleteSubStage(s, designer, "agreement_signed")

	require.NoError(t, err)
	assert.True(t, res.GroupCompleted)
	assert.True(t, res.AdvancementBlocked)
	assert.Nil(t, res.Advancement)
	assert.Equal(t, "kickoff", s.Stage())
	assert.True(t, s.IsSubStageComplete("agreement_signed"))
}

type noTransitionPolicy struct {
	RolePolicy
}

func (noTransitionPolicy) CanTransition(Actor, *Subject, int, int) bool { return false }

func TestUpdatePercentage(t *testing.T) {
	e, _ := newTestEngine(t, SkipAllow)

	t.Run("absolute overwrite", func(t *testing.T) {
		s := newProject(t, e)
		_, err := e.UpdatePercentage(s, designer, "renders_progress", 60, "living room done")
		require.NoError(t, err)

		res, err := e.UpdatePercentage(s, designer, "renders_progress", 40, "client asked for changes")

		require.NoError(t, err)
		assert.False(t, res.SubStageCompleted)
		require.NotNil(t, res.Percent)
		assert.Equal(t, 40, *res.Percent)
		p, ok := s.Percentage("renders_progress")
		require.True(t, ok)
		assert.Equal(t, 40, p.Percent)
		assert.Equal(t, "client asked for changes", p.LastComment)
	})

	t.Run("100 auto-completes", func(t *testing.T) {
		s := newProject(t, e)

		res, err := e.UpdatePercentage(s, designer, "renders_progress", 100, "all renders approved")

		require.NoError(t, err)
		assert.True(t, res.SubStageCompleted)
		assert.True(t, res.AutoCompleted)
		assert.True(t, s.IsSubStageComplete("renders_progress"))

		_, err = e.UpdatePercentage(s, designer, "renders_progress", 100, "again")
		assert.ErrorIs(t, err, ErrAlreadyCompleted)
	})

	t.Run("validation", func(t *testing.T) {
		s := newProject(t, e)
		_, err := e.UpdatePercentage(s, designer, "renders_progress", 101, "too much")
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = e.UpdatePercentage(s, designer, "renders_progress", -1, "too little")
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = e.UpdatePercentage(s, designer, "renders_progress", 50, "  ")
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = e.UpdatePercentage(s, designer, "design_signoff", 50, "binary")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestPercentageCompletionMatchesBinaryCompletion(t *testing.T) {
	e, _ := newTestEngine(t, SkipAllow)

	viaPercent := newProject(t, e)
	viaBinary := newProject(t, e)
	moveTo(t, e, viaPercent, 5)
	moveTo(t, e, viaBinary, 5)

	_, err := e.UpdatePercentage(viaPercent, admin, "civil_work", 100, "done")
	require.NoError(t, err)
	_, err = e.UpdatePercentage(viaPercent, admin, "installation", 100, "done")
	require.NoError(t, err)

	// the same end state reached through the shared completion path
	for _, id := range []string{"civil_work", "installation"} {
		project, _ := e.Catalog().For(SubjectTypeProject)
		ref, err := project.SubStage(id)
		require.NoError(t, err)
		e.finishSubStage(viaBinary, project, ref, admin, true)
	}

	assert.Equal(t, viaPercent.Stage(), viaBinary.Stage())
	assert.Equal(t, "handover", viaPercent.Stage())
	assert.Equal(t, viaPercent.CompletedSubStages(), viaBinary.CompletedSubStages())
}

func TestIsGroupComplete(t *testing.T) {
	e, _ := newTestEngine(t, SkipAllow)
	s := newProject(t, e)

	done, err := e.IsGroupComplete(s, "design", "Floor Plan")
	require.NoError(t, err)
	assert.False(t, done)

	for _, id := range []string{"floor_plan_draft", "floor_plan_approved"} {
		_, err := e.CompleteSubStage(s, admin, id)
		require.NoError(t, err)
	}

	done, err = e.IsGroupComplete(s, "design", "Floor Plan")
	require.NoError(t, err)
	assert.True(t, done)

	_, err = e.IsGroupComplete(s, "design", "Lighting")
	assert.ErrorIs(t, err, ErrNotFound)
}
