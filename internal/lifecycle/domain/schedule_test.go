package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amounts(entries []ScheduleEntry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.Amount
	}
	return out
}

func TestResolveSchedule(t *testing.T) {
	t.Run("fixed, percentage and remaining", func(t *testing.T) {
		defs := []ScheduleDefinition{
			{Label: "Booking", Type: EntryFixed, FixedAmount: 25000},
			{Label: "Design", Type: EntryPercentage, Percentage: decimal.NewFromInt(10)},
			{Label: "Balance", Type: EntryRemaining},
		}

		resolved, err := ResolveSchedule(defs, 500000)

		require.NoError(t, err)
		assert.Equal(t, []int64{25000, 50000, 425000}, amounts(resolved.Entries))
		assert.Equal(t, int64(500000), resolved.Total)
		assert.False(t, resolved.Mismatch)
	})

	t.Run("remaining is computed last regardless of position", func(t *testing.T) {
		defs := []ScheduleDefinition{
			{Label: "Balance", Type: EntryRemaining},
			{Label: "Booking", Type: EntryFixed, FixedAmount: 25000},
			{Label: "Design", Type: EntryPercentage, Percentage: decimal.NewFromInt(10)},
		}

		resolved, err := ResolveSchedule(defs, 500000)

		require.NoError(t, err)
		assert.Equal(t, []int64{425000, 25000, 50000}, amounts(resolved.Entries))
	})

	t.Run("percentages round half away from zero", func(t *testing.T) {
		defs := []ScheduleDefinition{
			{Label: "A", Type: EntryPercentage, Percentage: decimal.RequireFromString("12.5")},
			{Label: "B", Type: EntryRemaining},
		}

		resolved, err := ResolveSchedule(defs, 1001)

		require.NoError(t, err)
		assert.Equal(t, []int64{125, 876}, amounts(resolved.Entries))
	})

	t.Run("more than one remaining entry is rejected", func(t *testing.T) {
		defs := []ScheduleDefinition{
			{Label: "A", Type: EntryRemaining},
			{Label: "B", Type: EntryRemaining},
		}

		_, err := ResolveSchedule(defs, 1000)

		assert.ErrorIs(t, err, ErrInvalidSchedule)
	})

	t.Run("under allocation is flagged not rejected", func(t *testing.T) {
		defs := []ScheduleDefinition{
			{Label: "A", Type: EntryFixed, FixedAmount: 100000},
			{Label: "B", Type: EntryPercentage, Percentage: decimal.NewFromInt(20)},
		}

		resolved, err := ResolveSchedule(defs, 500000)

		require.NoError(t, err)
		assert.True(t, resolved.Mismatch)
		assert.Equal(t, int64(200000), resolved.Total)
		assert.Equal(t, int64(300000), resolved.Difference)
	})

	t.Run("over allocation makes remaining negative and is flagged", func(t *testing.T) {
		defs := []ScheduleDefinition{
			{Label: "A", Type: EntryFixed, FixedAmount: 600000},
			{Label: "B", Type: EntryRemaining},
		}

		resolved, err := ResolveSchedule(defs, 500000)

		require.NoError(t, err)
		assert.Equal(t, []int64{600000, -100000}, amounts(resolved.Entries))
		assert.Equal(t, int64(500000), resolved.Total)
		assert.True(t, resolved.Mismatch)
		assert.Equal(t, int64(-100000), resolved.Difference)

		summary := Summarize(resolved, []Payment{{Amount: 550000}})
		require.Len(t, summary.Milestones, 2)
		assert.Equal(t, int64(550000), summary.Milestones[0].Collected)
		assert.Equal(t, int64(50000), summary.Milestones[0].Pending)
		assert.Equal(t, int64(0), summary.Milestones[1].Collected)
		assert.Equal(t, int64(0), summary.Milestones[1].Pending)
	})

	t.Run("invalid definitions", func(t *testing.T) {
		bad := [][]ScheduleDefinition{
			{{Label: "", Type: EntryFixed}},
			{{Label: "A", Type: "installment"}},
			{{Label: "A", Type: EntryFixed, FixedAmount: -1}},
			{{Label: "A", Type: EntryPercentage, Percentage: decimal.NewFromInt(101)}},
			{{Label: "A", Type: EntryPercentage, Percentage: decimal.NewFromInt(-5)}},
		}
		for _, defs := range bad {
			_, err := ResolveSchedule(defs, 1000)
			assert.ErrorIs(t, err, ErrInvalidSchedule)
		}
	})

	t.Run("negative project value", func(t *testing.T) {
		_, err := ResolveSchedule(DefaultPaymentTemplate(), -1)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestParsePercent(t *testing.T) {
	p, err := ParsePercent(" 12.5 ")
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.RequireFromString("12.5")))

	_, err = ParsePercent("ten")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
