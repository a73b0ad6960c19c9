package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoldStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to HoldStatus
		want     bool
	}{
		{HoldActive, HoldOnHold, true},
		{HoldActive, HoldDeactivated, true},
		{HoldOnHold, HoldActive, true},
		{HoldOnHold, HoldDeactivated, true},
		{HoldDeactivated, HoldActive, true},
		{HoldDeactivated, HoldOnHold, false},
		{HoldActive, HoldActive, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestChangeHoldStatus(t *testing.T) {
	e, _ := newTestEngine(t, SkipAllow)

	t.Run("hold and resume with reasons", func(t *testing.T) {
		s := newProject(t, e)

		change, err := e.ChangeHoldStatus(s, designer, HoldOnHold, "client abroad")
		require.NoError(t, err)
		assert.Equal(t, HoldActive, change.From)
		assert.Equal(t, HoldOnHold, s.HoldStatus())
		assert.Contains(t, s.NewComments()[0].Body, "client abroad")

		_, err = e.ChangeHoldStatus(s, manager, HoldActive, "client back")
		require.NoError(t, err)
		assert.True(t, s.IsActive())
		assert.Equal(t, []string{RoutingKeyHoldStatusChanged, RoutingKeyHoldStatusChanged}, routingKeys(s))
	})

	t.Run("reason is mandatory", func(t *testing.T) {
		s := newProject(t, e)
		_, err := e.ChangeHoldStatus(s, admin, HoldOnHold, " ")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("same state is no change", func(t *testing.T) {
		s := newProject(t, e)
		_, err := e.ChangeHoldStatus(s, admin, HoldActive, "noop")
		assert.ErrorIs(t, err, ErrNoChange)
	})

	t.Run("deactivated cannot go on hold", func(t *testing.T) {
		s := newProject(t, e)
		_, err := e.ChangeHoldStatus(s, admin, HoldDeactivated, "lost")
		require.NoError(t, err)
		_, err = e.ChangeHoldStatus(s, admin, HoldOnHold, "oops")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("only admin reactivates", func(t *testing.T) {
		s := newProject(t, e)
		_, err := e.ChangeHoldStatus(s, manager, HoldDeactivated, "budget cut")
		require.NoError(t, err)

		_, err = e.ChangeHoldStatus(s, manager, HoldActive, "budget restored")
		assert.ErrorIs(t, err, ErrForbidden)

		change, err := e.ChangeHoldStatus(s, admin, HoldActive, "budget restored")
		require.NoError(t, err)
		assert.True(t, change.Reactivation)
	})

	t.Run("designer may only put on hold", func(t *testing.T) {
		s := newProject(t, e)
		_, err := e.ChangeHoldStatus(s, designer, HoldDeactivated, "no reply")
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = e.ChangeHoldStatus(s, designer, HoldOnHold, "no reply")
		require.NoError(t, err)
		_, err = e.ChangeHoldStatus(s, designer, HoldActive, "replied")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("designer cannot hold a project assigned to someone else", func(t *testing.T) {
		s := newProject(t, e)
		other := Actor{ID: uuid.New(), Role: RoleDesigner}

		_, err := e.ChangeHoldStatus(s, other, HoldOnHold, "no reply")
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, HoldActive, s.HoldStatus())
	})

	t.Run("presales and finance cannot change hold", func(t *testing.T) {
		s := newProject(t, e)
		_, err := e.ChangeHoldStatus(s, presales, HoldOnHold, "x")
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = e.ChangeHoldStatus(s, finance, HoldOnHold, "x")
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestHeldSubjectRejectsEveryMutation(t *testing.T) {
	e, _ := newTestEngine(t, SkipAllow)
	planned := testStart.AddDate(0, 2, 0)

	mutations := map[string]func(s *Subject) error{
		"transition": func(s *Subject) error {
			_, err := e.TransitionStage(s, admin, "design")
			return err
		},
		"complete sub-stage": func(s *Subject) error {
			_, err := e.CompleteSubStage(s, admin, "agreement_signed")
			return err
		},
		"update percentage": func(s *Subject) error {
			_, err := e.UpdatePercentage(s, admin, "renders_progress", 50, "half")
			return err
		},
		"record payment": func(s *Subject) error {
			_, err := e.RecordPayment(s, admin, PaymentInput{Amount: 1000, Mode: PaymentModeCash, PaidOn: testStart})
			return err
		},
		"delete payment": func(s *Subject) error {
			_, err := e.DeletePayment(s, admin, s.Payments()[0].ID, "duplicate")
			return err
		},
		"update project value": func(s *Subject) error {
			return e.UpdateProjectValue(s, admin, 750000)
		},
		"configure schedule": func(s *Subject) error {
			return e.ConfigureSchedule(s, admin, true, []ScheduleDefinition{{Label: "All", Type: EntryRemaining}})
		},
		"set expected date": func(s *Subject) error {
			return e.SetExpectedDate(s, admin, "design", &planned)
		},
	}

	for _, status := range []HoldStatus{HoldOnHold, HoldDeactivated} {
		for name, mutate := range mutations {
			t.Run(string(status)+"/"+name, func(t *testing.T) {
				s := newProject(t, e)
				_, err := e.RecordPayment(s, admin, PaymentInput{Amount: 25000, Mode: PaymentModeUPI, PaidOn: testStart})
				require.NoError(t, err)
				_, err = e.ChangeHoldStatus(s, admin, status, "paused")
				require.NoError(t, err)
				s.ClearDomainEvents()
				s.ClearNewComments()
				before := s.State()

				err = mutate(s)

				if status == HoldOnHold {
					assert.ErrorIs(t, err, ErrSubjectOnHold)
				} else {
					assert.ErrorIs(t, err, ErrSubjectDeactivated)
				}
				assert.Equal(t, before, s.State())
				assert.Empty(t, s.DomainEvents())
				assert.Empty(t, s.NewComments())
			})
		}
	}
}

func TestHeldSubjectStillAcceptsCommentsAndReads(t *testing.T) {
	e, clock := newTestEngine(t, SkipAllow)
	s := newProject(t, e)
	_, err := e.ChangeHoldStatus(s, admin, HoldOnHold, "site locked")
	require.NoError(t, err)
	clock.Advance(time.Hour)

	c, err := e.AddComment(s, designer, "keys with the security desk")
	require.NoError(t, err)
	assert.Equal(t, CommentUser, c.Kind)

	_, err = e.Snapshot(s)
	assert.NoError(t, err)
	_, err = e.Timeline(s)
	assert.NoError(t, err)
}
