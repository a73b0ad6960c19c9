package subject

import (
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/atelier/adapter/cli/clitest"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags() {
	holdReason = ""
	planClear = false
	timelineHistory = false
}

func TestShowCmd(t *testing.T) {
	app := clitest.NewLocalApp(t)
	resetFlags()
	id := clitest.CreateProject(t, app, "Mehta residence", 500000)

	out, err := clitest.Run(t, showCmd, id.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Mehta residence")
	assert.Contains(t, out, "Booking amount")
	assert.Contains(t, out, "25,000")
	assert.Contains(t, out, "Project Kickoff")

	viper.Set("json", true)
	out, err = clitest.Run(t, showCmd, id.String())
	require.NoError(t, err)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, id, snap.ID)
	assert.Len(t, snap.Timeline, 8)
}

func TestShowCmd_Errors(t *testing.T) {
	clitest.NewLocalApp(t)

	_, err := clitest.Run(t, showCmd, "nope")
	require.Error(t, err)

	_, err = clitest.Run(t, showCmd, "7a4f1b58-64b4-4c4a-9e55-6e1f3a4cbb10")
	assert.ErrorIs(t, err, domain.ErrSubjectNotFound)
}

func TestMoveCmd_SkipAndRollback(t *testing.T) {
	app := clitest.NewLocalApp(t)
	resetFlags()
	id := clitest.CreateProject(t, app, "Mehta residence", 500000)

	out, err := clitest.Run(t, moveCmd, id.String(), "design")
	require.NoError(t, err)
	assert.Contains(t, out, "Moved kickoff -> design (skipped site_measurement)")

	viper.Set("actor-role", "manager")
	_, err = clitest.Run(t, moveCmd, id.String(), "kickoff")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	viper.Set("actor-role", "admin")
	out, err = clitest.Run(t, moveCmd, id.String(), "kickoff")
	require.NoError(t, err)
	assert.Contains(t, out, "Rolled back design -> kickoff")
	assert.Contains(t, out, "ROLLBACK by")

	_, err = clitest.Run(t, moveCmd, id.String(), "warehouse")
	assert.ErrorIs(t, err, domain.ErrUnknownStage)
}

func TestHoldCmd_GatesMoves(t *testing.T) {
	app := clitest.NewLocalApp(t)
	resetFlags()
	id := clitest.CreateLead(t, app, "Sharma villa")

	_, err := clitest.Run(t, holdCmd, id.String(), "hold")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	holdReason = "client travelling"
	out, err := clitest.Run(t, holdCmd, id.String(), "hold")
	require.NoError(t, err)
	assert.Contains(t, out, "Status active -> hold")
	assert.Contains(t, out, "Subject put on hold: client travelling")

	_, err = clitest.Run(t, moveCmd, id.String(), "contacted")
	assert.ErrorIs(t, err, domain.ErrSubjectOnHold)

	_, err = clitest.Run(t, holdCmd, id.String(), "paused")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPlanAndTimelineCmd(t *testing.T) {
	app := clitest.NewLocalApp(t)
	resetFlags()
	id := clitest.CreateProject(t, app, "Mehta residence", 500000)

	out, err := clitest.Run(t, planCmd, id.String(), "kickoff", "2020-01-15")
	require.NoError(t, err)
	assert.Contains(t, out, "set to 2020-01-15")

	out, err = clitest.Run(t, timelineCmd, id.String())
	require.NoError(t, err)
	assert.Contains(t, out, "2020-01-15")
	assert.Contains(t, out, "Delayed: kickoff")

	_, err = clitest.Run(t, planCmd, id.String(), "kickoff")
	require.Error(t, err)

	planClear = true
	_, err = clitest.Run(t, planCmd, id.String(), "kickoff", "2020-01-15")
	require.Error(t, err)

	out, err = clitest.Run(t, planCmd, id.String(), "kickoff")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared")
}

func TestTimelineCmd_History(t *testing.T) {
	app := clitest.NewLocalApp(t)
	resetFlags()
	id := clitest.CreateLead(t, app, "Sharma villa")

	_, err := app.TransitionStageHandler.Handle(t.Context(), commands.TransitionStageCommand{
		Actor:     app.DefaultActor,
		SubjectID: id,
		Stage:     "contacted",
	})
	require.NoError(t, err)

	timelineHistory = true
	viper.Set("json", true)
	out, err := clitest.Run(t, timelineCmd, id.String())
	require.NoError(t, err)

	var dto struct {
		Stage   string                 `json:"stage"`
		Entries []domain.TimelineEntry `json:"entries"`
		History []domain.TimelineEntry `json:"history"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &dto))
	assert.Equal(t, "contacted", dto.Stage)
	assert.Len(t, dto.Entries, 6)
	assert.NotEmpty(t, dto.History)
}
