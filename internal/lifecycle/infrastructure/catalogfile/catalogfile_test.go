package catalogfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const studioCatalog = `
lead:
  stages:
    - key: enquiry
      name: Enquiry
    - key: site_visit
      name: Site Visit
    - key: won
      name: Won
project:
  stages:
    - key: kickoff
      name: Kickoff
      expected_days: 3
      groups:
        - name: Booking
          sub_stages:
            - id: advance_paid
              name: Advance paid
              kind: binary
    - key: design
      name: Design
      expected_days: 14
      groups:
        - name: Drawings
          sub_stages:
            - id: drawings_progress
              name: Drawings progress
              kind: percentage
    - key: done
      name: Done
payment_template:
  - label: Advance
    stage: kickoff
    type: percentage
    percentage: "12.5"
  - label: Balance
    stage: done
    type: remaining
`

func TestParse(t *testing.T) {
	catalog, err := Parse([]byte(studioCatalog))
	require.NoError(t, err)

	lead, err := catalog.For(domain.SubjectTypeLead)
	require.NoError(t, err)
	assert.Equal(t, 3, lead.Len())
	assert.Equal(t, "won", lead.Terminal().Key)

	project, err := catalog.For(domain.SubjectTypeProject)
	require.NoError(t, err)
	ref, err := project.SubStage("drawings_progress")
	require.NoError(t, err)
	assert.Equal(t, domain.SubStagePercentage, ref.Definition.Kind)
	assert.Equal(t, 1, ref.StageIndex)

	template := catalog.PaymentTemplate()
	require.Len(t, template, 2)
	assert.Equal(t, "12.5", template[0].Percentage.String())

	resolved, err := domain.ResolveSchedule(template, 100000)
	require.NoError(t, err)
	assert.Equal(t, int64(12500), resolved.Entries[0].Amount)
	assert.Equal(t, int64(87500), resolved.Entries[1].Amount)
}

func TestParse_MissingSectionsKeepDefaults(t *testing.T) {
	catalog, err := Parse([]byte(`
lead:
  stages:
    - key: a
    - key: b
`))
	require.NoError(t, err)

	project, err := catalog.For(domain.SubjectTypeProject)
	require.NoError(t, err)
	assert.Equal(t, len(domain.DefaultProjectStages()), project.Len())
	assert.Len(t, catalog.PaymentTemplate(), len(domain.DefaultPaymentTemplate()))

	lead, err := catalog.For(domain.SubjectTypeLead)
	require.NoError(t, err)
	assert.Equal(t, "a", lead.Initial().Name)
}

func TestParse_Empty(t *testing.T) {
	catalog, err := Parse(nil)
	require.NoError(t, err)
	assert.Len(t, catalog.PaymentTemplate(), len(domain.DefaultPaymentTemplate()))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "leads:\n  stages: []\n"},
		{"duplicate stage", "lead:\n  stages:\n    - key: a\n    - key: a\n"},
		{"bad sub-stage kind", "lead:\n  stages:\n    - key: a\n      groups:\n        - name: g\n          sub_stages:\n            - id: x\n              kind: toggle\n"},
		{"bad percentage", "payment_template:\n  - label: x\n    type: percentage\n    percentage: abc\n"},
		{"two remaining", "payment_template:\n  - label: x\n    type: remaining\n  - label: y\n    type: remaining\n"},
		{"template stage unknown", "payment_template:\n  - label: x\n    stage: nowhere\n    type: remaining\n"},
		{"malformed", "lead: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(domain.DefaultStageCatalog())
	require.NoError(t, err)
	assert.Contains(t, string(data), "payment_template:")

	back, err := Parse(data)
	require.NoError(t, err)

	for _, st := range []domain.SubjectType{domain.SubjectTypeLead, domain.SubjectTypeProject} {
		want, _ := domain.DefaultStageCatalog().StagesFor(st)
		got, err := back.StagesFor(st)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	want := domain.DefaultPaymentTemplate()
	got := back.PaymentTemplate()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Label, got[i].Label)
		assert.True(t, want[i].Percentage.Equal(got[i].Percentage))
	}
}

func TestLoad(t *testing.T) {
	t.Run("reads a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte(studioCatalog), 0o600))

		catalog, err := Load(path)
		require.NoError(t, err)
		idx, err := catalog.IndexOf(domain.SubjectTypeProject, "design")
		require.NoError(t, err)
		assert.Equal(t, 1, idx)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty path gives the stock catalog", func(t *testing.T) {
		catalog, err := LoadOrDefault("")
		require.NoError(t, err)
		assert.NotNil(t, catalog)
	})
}

func TestParseSchedule(t *testing.T) {
	defs, err := ParseSchedule([]byte(`
- label: Advance
  stage: kickoff
  type: fixed
  fixed_amount: 10000
- label: Design
  stage: design
  type: percentage
  percentage: "12.5"
- label: Balance
  type: remaining
`))
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.Equal(t, domain.EntryFixed, defs[0].Type)
	assert.Equal(t, int64(10000), defs[0].FixedAmount)
	assert.Equal(t, "12.5", defs[1].Percentage.String())
	assert.Equal(t, domain.EntryRemaining, defs[2].Type)

	_, err = ParseSchedule(nil)
	assert.Error(t, err)

	_, err = ParseSchedule([]byte("- label: X\n  type: percentage\n  percentage: lots\n"))
	assert.Error(t, err)

	_, err = ParseSchedule([]byte("- label: X\n  amount: 5\n"))
	assert.Error(t, err)
}
