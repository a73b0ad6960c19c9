package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestEngine(t *testing.T, skip SkipPolicy) (*Engine, *testClock) {
	t.Helper()
	clock := &testClock{now: testStart}
	return NewEngine(DefaultStageCatalog(), NewRolePolicy(), Options{SkipPolicy: skip, Now: clock.Now}), clock
}

var (
	admin    = Actor{ID: uuid.New(), Role: RoleAdmin}
	manager  = Actor{ID: uuid.New(), Role: RoleManager}
	designer = Actor{ID: uuid.New(), Role: RoleDesigner}
	presales = Actor{ID: uuid.New(), Role: RolePreSales}
	finance  = Actor{ID: uuid.New(), Role: RoleFinance}
)

func newProject(t *testing.T, e *Engine) *Subject {
	t.Helper()
	s, err := e.CreateSubject(CreateInput{
		Type:         SubjectTypeProject,
		Title:        "3BHK Koramangala",
		AssigneeID:   designer.ID,
		ProjectValue: 500000,
	}, manager)
	require.NoError(t, err)
	s.ClearDomainEvents()
	s.ClearNewComments()
	return s
}

func newLead(t *testing.T, e *Engine) *Subject {
	t.Helper()
	s, err := e.CreateSubject(CreateInput{
		Type:       SubjectTypeLead,
		Title:      "Villa enquiry",
		AssigneeID: presales.ID,
	}, presales)
	require.NoError(t, err)
	s.ClearDomainEvents()
	s.ClearNewComments()
	return s
}

// moveTo puts a subject at a stage index as an admin.
func moveTo(t *testing.T, e *Engine, s *Subject, index int) {
	t.Helper()
	catalog, err := e.Catalog().For(s.Type())
	require.NoError(t, err)
	_, err = e.TransitionStage(s, admin, catalog.Stage(index).Key)
	require.NoError(t, err)
	s.ClearDomainEvents()
	s.ClearNewComments()
}

func routingKeys(s *Subject) []string {
	var keys []string
	for _, ev := range s.DomainEvents() {
		keys = append(keys, ev.RoutingKey())
	}
	return keys
}
