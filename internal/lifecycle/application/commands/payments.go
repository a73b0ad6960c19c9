package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/google/uuid"
)

// RecordPaymentCommand appends a payment to a project's ledger.
type RecordPaymentCommand struct {
	Actor         domain.Actor
	CorrelationID uuid.UUID
	SubjectID     uuid.UUID
	Amount        int64
	Mode          domain.PaymentMode
	PaidOn        time.Time
	Reference     string
}

// PaymentResult carries the affected ledger record.
type PaymentResult struct {
	Result
	Payment domain.Payment `json:"payment"`
}

// RecordPaymentHandler handles the RecordPaymentCommand.
type RecordPaymentHandler struct {
	m *Mutator
}

// NewRecordPaymentHandler creates a new RecordPaymentHandler.
func NewRecordPaymentHandler(m *Mutator) *RecordPaymentHandler {
	return &RecordPaymentHandler{m: m}
}

// Handle executes the RecordPaymentCommand.
func (h *RecordPaymentHandler) Handle(ctx context.Context, cmd RecordPaymentCommand) (*PaymentResult, error) {
	var p domain.Payment
	res, err := h.m.apply(ctx, "record_payment", cmd.SubjectID, cmd.Actor, cmd.CorrelationID, func(s *domain.Subject) error {
		var err error
		p, err = h.m.engine.RecordPayment(s, cmd.Actor, domain.PaymentInput{
			Amount:    cmd.Amount,
			Mode:      cmd.Mode,
			PaidOn:    cmd.PaidOn,
			Reference: cmd.Reference,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &PaymentResult{Result: res, Payment: p}, nil
}

// DeletePaymentCommand removes a ledger record. Admin only.
type DeletePaymentCommand struct {
	Actor         domain.Actor
	CorrelationID uuid.UUID
	SubjectID     uuid.UUID
	PaymentID     uuid.UUID
	Reason        string
}

// DeletePaymentHandler handles the DeletePaymentCommand.
type DeletePaymentHandler struct {
	m *Mutator
}

// NewDeletePaymentHandler creates a new DeletePaymentHandler.
func NewDeletePaymentHandler(m *Mutator) *DeletePaymentHandler {
	return &DeletePaymentHandler{m: m}
}

// Handle executes the DeletePaymentCommand.
func (h *DeletePaymentHandler) Handle(ctx context.Context, cmd DeletePaymentCommand) (*PaymentResult, error) {
	var p domain.Payment
	res, err := h.m.apply(ctx, "delete_payment", cmd.SubjectID, cmd.Actor, cmd.CorrelationID, func(s *domain.Subject) error {
		var err error
		p, err = h.m.engine.DeletePayment(s, cmd.Actor, cmd.PaymentID, cmd.Reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &PaymentResult{Result: res, Payment: p}, nil
}
