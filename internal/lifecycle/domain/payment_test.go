package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payments(amounts ...int64) []Payment {
	out := make([]Payment, len(amounts))
	for i, a := range amounts {
		out[i] = Payment{ID: uuid.New(), Amount: a, Mode: PaymentModeUPI, PaidOn: testStart}
	}
	return out
}

func TestSummarize(t *testing.T) {
	schedule, err := ResolveSchedule(DefaultPaymentTemplate(), 500000)
	require.NoError(t, err)

	t.Run("partial collection", func(t *testing.T) {
		summary := Summarize(schedule, payments(100000, 50000))

		assert.Equal(t, int64(150000), summary.TotalCollected)
		assert.Equal(t, int64(350000), summary.BalancePending)
		assert.False(t, summary.Overpaid)
	})

	t.Run("over collection is not clamped", func(t *testing.T) {
		summary := Summarize(schedule, payments(400000, 200000))

		assert.Equal(t, int64(600000), summary.TotalCollected)
		assert.Equal(t, int64(-100000), summary.BalancePending)
		assert.True(t, summary.Overpaid)
	})

	t.Run("milestones fill in schedule order", func(t *testing.T) {
		summary := Summarize(schedule, payments(25000, 30000))

		require.Len(t, summary.Milestones, 4)
		assert.Equal(t, int64(25000), summary.Milestones[0].Collected)
		assert.Equal(t, int64(0), summary.Milestones[0].Pending)
		assert.Equal(t, int64(30000), summary.Milestones[1].Collected)
		assert.Equal(t, int64(20000), summary.Milestones[1].Pending)
		assert.Equal(t, int64(0), summary.Milestones[2].Collected)
	})

	t.Run("empty ledger", func(t *testing.T) {
		summary := Summarize(schedule, nil)

		assert.Zero(t, summary.TotalCollected)
		assert.Equal(t, int64(500000), summary.BalancePending)
	})
}

func TestPaymentInput_Validate(t *testing.T) {
	valid := PaymentInput{Amount: 1000, Mode: PaymentModeCash, PaidOn: time.Now()}
	require.NoError(t, valid.validate())

	tests := map[string]PaymentInput{
		"zero amount":  {Amount: 0, Mode: PaymentModeCash, PaidOn: time.Now()},
		"negative":     {Amount: -10, Mode: PaymentModeCash, PaidOn: time.Now()},
		"unknown mode": {Amount: 10, Mode: "barter", PaidOn: time.Now()},
		"missing date": {Amount: 10, Mode: PaymentModeCash},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, in.validate(), ErrInvalidInput)
		})
	}
}
