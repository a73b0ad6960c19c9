package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentMode is how a payment was received.
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "cash"
	PaymentModeBankTransfer PaymentMode = "bank_transfer"
	PaymentModeUPI          PaymentMode = "upi"
	PaymentModeCheque       PaymentMode = "cheque"
	PaymentModeCard         PaymentMode = "card"
)

// IsValid returns true if the payment mode is known.
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeCash, PaymentModeBankTransfer, PaymentModeUPI, PaymentModeCheque, PaymentModeCard:
		return true
	default:
		return false
	}
}

// ParsePaymentMode parses a string into a PaymentMode.
func ParsePaymentMode(s string) (PaymentMode, error) {
	m := PaymentMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", invalidInput("unknown payment mode %q", s)
	}
	return m, nil
}

// Payment is an immutable ledger record.
type Payment struct {
	ID         uuid.UUID   `json:"id"`
	Amount     int64       `json:"amount"`
	Mode       PaymentMode `json:"mode"`
	PaidOn     time.Time   `json:"paid_on"`
	Reference  string      `json:"reference,omitempty"`
	RecordedBy uuid.UUID   `json:"recorded_by"`
	RecordedAt time.Time   `json:"recorded_at"`
}

// PaymentInput carries the caller-provided fields of a new payment.
type PaymentInput struct {
	Amount    int64
	Mode      PaymentMode
	PaidOn    time.Time
	Reference string
}

func (in PaymentInput) validate() error {
	if in.Amount <= 0 {
		return invalidInput("payment amount must be positive")
	}
	if !in.Mode.IsValid() {
		return invalidInput("unknown payment mode %q", in.Mode)
	}
	if in.PaidOn.IsZero() {
		return invalidInput("payment date is required")
	}
	return nil
}

// MilestoneCollection shows how much of one schedule entry is covered by
// collected money when payments are applied in schedule order.
type MilestoneCollection struct {
	Label     string `json:"label"`
	StageKey  string `json:"stage,omitempty"`
	Amount    int64  `json:"amount"`
	Collected int64  `json:"collected"`
	Pending   int64  `json:"pending"`
}

// FinancialSummary is the derived money view of a project.
type FinancialSummary struct {
	ProjectValue   int64                 `json:"project_value"`
	TotalCollected int64                 `json:"total_collected"`
	BalancePending int64                 `json:"balance_pending"`
	Overpaid       bool                  `json:"overpaid"`
	Milestones     []MilestoneCollection `json:"milestones"`
}

// Summarize totals the ledger against a resolved schedule. Payments are not
// earmarked, so the total is a flat sum and the balance may go negative.
func Summarize(schedule ResolvedSchedule, payments []Payment) FinancialSummary {
	var collected int64
	for _, p := range payments {
		collected += p.Amount
	}

	summary := FinancialSummary{
		ProjectValue:   schedule.ProjectValue,
		TotalCollected: collected,
		BalancePending: schedule.ProjectValue - collected,
		Milestones:     make([]MilestoneCollection, 0, len(schedule.Entries)),
	}
	summary.Overpaid = summary.BalancePending < 0

	pool := collected
	for _, entry := range schedule.Entries {
		// A negative remaining entry owes nothing.
		due := max(entry.Amount, 0)
		covered := min(pool, due)
		pool -= covered
		summary.Milestones = append(summary.Milestones, MilestoneCollection{
			Label:     entry.Label,
			StageKey:  entry.StageKey,
			Amount:    entry.Amount,
			Collected: covered,
			Pending:   due - covered,
		})
	}

	return summary
}
