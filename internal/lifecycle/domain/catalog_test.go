package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStageCatalog(t *testing.T) {
	catalog := DefaultStageCatalog()

	leads, err := catalog.StagesFor(SubjectTypeLead)
	require.NoError(t, err)
	assert.Len(t, leads, 6)
	assert.Equal(t, "new", leads[0].Key)
	assert.Equal(t, "booked", leads[5].Key)

	projects, err := catalog.StagesFor(SubjectTypeProject)
	require.NoError(t, err)
	assert.Len(t, projects, 8)
	for i, stage := range projects {
		assert.Equal(t, i, stage.Index)
	}
	assert.Len(t, projects[2].Groups, 2)
	assert.Empty(t, projects[7].Groups)
}

func TestStageCatalog_IndexOf(t *testing.T) {
	catalog := DefaultStageCatalog()

	t.Run("known stage", func(t *testing.T) {
		idx, err := catalog.IndexOf(SubjectTypeProject, "production")
		require.NoError(t, err)
		assert.Equal(t, 4, idx)
	})

	t.Run("stage of the other subject type", func(t *testing.T) {
		_, err := catalog.IndexOf(SubjectTypeLead, "production")
		assert.True(t, errors.Is(err, ErrUnknownStage))
		assert.Equal(t, KindUnknownStage, KindOf(err))
	})

	t.Run("unknown subject type", func(t *testing.T) {
		_, err := catalog.IndexOf(SubjectType("vendor"), "new")
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})
}

func TestCatalog_SubStage(t *testing.T) {
	project, err := DefaultStageCatalog().For(SubjectTypeProject)
	require.NoError(t, err)

	ref, err := project.SubStage("renders_progress")
	require.NoError(t, err)
	assert.Equal(t, "design", ref.StageKey)
	assert.Equal(t, 2, ref.StageIndex)
	assert.Equal(t, 1, ref.GroupIndex)
	assert.Equal(t, SubStagePercentage, ref.Definition.Kind)

	_, err = project.SubStage("paint_job")
	assert.ErrorIs(t, err, ErrSubStageNotFound)
	assert.NotErrorIs(t, err, ErrPaymentNotFound)
}

func TestNewCatalog_Validation(t *testing.T) {
	binary := func(id string) SubStageDefinition {
		return SubStageDefinition{ID: id, Name: id, Kind: SubStageBinary}
	}

	tests := []struct {
		name   string
		stages []StageDefinition
	}{
		{"empty", nil},
		{"missing key", []StageDefinition{{Name: "No key"}}},
		{"duplicate key", []StageDefinition{{Key: "a"}, {Key: "a"}}},
		{"negative expected days", []StageDefinition{{Key: "a", ExpectedDays: -1}}},
		{"empty group", []StageDefinition{{Key: "a", Groups: []SubStageGroup{{Name: "g"}}}}},
		{"duplicate sub-stage", []StageDefinition{
			{Key: "a", Groups: []SubStageGroup{{Name: "g", SubStages: []SubStageDefinition{binary("x")}}}},
			{Key: "b", Groups: []SubStageGroup{{Name: "h", SubStages: []SubStageDefinition{binary("x")}}}},
		}},
		{"unknown kind", []StageDefinition{
			{Key: "a", Groups: []SubStageGroup{{Name: "g", SubStages: []SubStageDefinition{{ID: "x", Kind: "checklist"}}}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(SubjectTypeProject, tt.stages)
			assert.Error(t, err)
		})
	}
}

func TestNewStageCatalog_TemplateMustReferenceProjectStages(t *testing.T) {
	lead, err := NewCatalog(SubjectTypeLead, DefaultLeadStages())
	require.NoError(t, err)
	project, err := NewCatalog(SubjectTypeProject, DefaultProjectStages())
	require.NoError(t, err)

	template := []ScheduleDefinition{{Label: "Deposit", StageKey: "booked", Type: EntryRemaining}}
	_, err = NewStageCatalog(lead, project, template)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownStage)

	_, err = NewStageCatalog(project, lead, nil)
	assert.Error(t, err)
}
