package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/queries"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/infrastructure/catalogfile"
	"github.com/felixgeelhaar/mcp-go"
	"github.com/google/uuid"
)

type paymentInput struct {
	actorInput
	SubjectID string `json:"subject_id" jsonschema:"required"`
	Amount    int64  `json:"amount" jsonschema:"required"`
	Mode      string `json:"mode" jsonschema:"required"`
	PaidOn    string `json:"paid_on,omitempty"`
	Reference string `json:"reference,omitempty"`
}

type deletePaymentInput struct {
	actorInput
	SubjectID string `json:"subject_id" jsonschema:"required"`
	PaymentID string `json:"payment_id" jsonschema:"required"`
	Reason    string `json:"reason" jsonschema:"required"`
}

type valueInput struct {
	actorInput
	SubjectID string `json:"subject_id" jsonschema:"required"`
	Value     int64  `json:"value"`
}

type scheduleEntryInput struct {
	Label       string `json:"label"`
	Stage       string `json:"stage,omitempty"`
	Type        string `json:"type"`
	FixedAmount int64  `json:"fixed_amount,omitempty"`
	Percentage  string `json:"percentage,omitempty"`
}

type scheduleInput struct {
	actorInput
	SubjectID string               `json:"subject_id" jsonschema:"required"`
	Custom    bool                 `json:"custom"`
	Entries   []scheduleEntryInput `json:"entries,omitempty"`
}

type financeTools struct {
	app *cli.App
}

func registerFinanceTools(srv *mcp.Server, deps ToolDependencies) error {
	t := financeTools{app: deps.App}

	srv.Tool("finance.get").
		Description("Get a project's resolved payment schedule, collection per milestone and payment ledger.").
		Handler(t.get)
	srv.Tool("finance.record_payment").
		Description("Record a received payment. mode is cash, bank_transfer, upi, cheque or card; paid_on defaults to today.").
		Handler(t.recordPayment)
	srv.Tool("finance.delete_payment").
		Description("Delete a ledger record with a reason. Admin only.").
		Handler(t.deletePayment)
	srv.Tool("finance.set_value").
		Description("Change a project's contract value. Schedule amounts are recomputed.").
		Handler(t.setValue)
	srv.Tool("finance.configure_schedule").
		Description("Apply a custom payment schedule (custom=true with entries of type fixed, percentage or remaining) or return to the default (custom=false). custom=true without entries re-enables the stored custom schedule.").
		Handler(t.configureSchedule)

	return nil
}

func (t financeTools) get(ctx context.Context, input subjectInput) (*queries.FinancialsDTO, error) {
	if t.app.GetFinancialsHandler == nil {
		return nil, errNoDatabase
	}
	id, err := parseUUID(input.SubjectID)
	if err != nil {
		return nil, err
	}
	return t.app.GetFinancialsHandler.Handle(ctx, queries.GetFinancialsQuery{SubjectID: id})
}

func (t financeTools) recordPayment(ctx context.Context, input paymentInput) (*commands.PaymentResult, error) {
	if t.app.RecordPaymentHandler == nil {
		return nil, errNoDatabase
	}
	actor, err := input.resolve(t.app)
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.SubjectID)
	if err != nil {
		return nil, err
	}
	mode, err := domain.ParsePaymentMode(input.Mode)
	if err != nil {
		return nil, err
	}
	paidOn := time.Now().UTC().Truncate(24 * time.Hour)
	if input.PaidOn != "" {
		if paidOn, err = parseDate(input.PaidOn); err != nil {
			return nil, err
		}
	}
	return t.app.RecordPaymentHandler.Handle(ctx, commands.RecordPaymentCommand{
		Actor:         actor,
		CorrelationID: uuid.New(),
		SubjectID:     id,
		Amount:        input.Amount,
		Mode:          mode,
		PaidOn:        paidOn,
		Reference:     input.Reference,
	})
}

func (t financeTools) deletePayment(ctx context.Context, input deletePaymentInput) (*commands.PaymentResult, error) {
	if t.app.DeletePaymentHandler == nil {
		return nil, errNoDatabase
	}
	actor, err := input.resolve(t.app)
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.SubjectID)
	if err != nil {
		return nil, err
	}
	paymentID, err := parseUUID(input.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("payment_id: %w", err)
	}
	return t.app.DeletePaymentHandler.Handle(ctx, commands.DeletePaymentCommand{
		Actor:         actor,
		CorrelationID: uuid.New(),
		SubjectID:     id,
		PaymentID:     paymentID,
		Reason:        input.Reason,
	})
}

func (t financeTools) setValue(ctx context.Context, input valueInput) (*commands.Result, error) {
	if t.app.UpdateProjectValueHandler == nil {
		return nil, errNoDatabase
	}
	actor, err := input.resolve(t.app)
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.SubjectID)
	if err != nil {
		return nil, err
	}
	return t.app.UpdateProjectValueHandler.Handle(ctx, commands.UpdateProjectValueCommand{
		Actor:         actor,
		CorrelationID: uuid.New(),
		SubjectID:     id,
		Value:         input.Value,
	})
}

func (t financeTools) configureSchedule(ctx context.Context, input scheduleInput) (*commands.Result, error) {
	if t.app.ConfigureScheduleHandler == nil {
		return nil, errNoDatabase
	}
	actor, err := input.resolve(t.app)
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.SubjectID)
	if err != nil {
		return nil, err
	}

	var defs []domain.ScheduleDefinition
	for i, e := range input.Entries {
		def, err := catalogfile.ScheduleEntry{
			Label:       e.Label,
			Stage:       e.Stage,
			Type:        domain.EntryType(e.Type),
			FixedAmount: e.FixedAmount,
			Percentage:  e.Percentage,
		}.Definition()
		if err != nil {
			return nil, fmt.Errorf("entries[%d]: %w", i, err)
		}
		defs = append(defs, def)
	}

	return t.app.ConfigureScheduleHandler.Handle(ctx, commands.ConfigureScheduleCommand{
		Actor:         actor,
		CorrelationID: uuid.New(),
		SubjectID:     id,
		Custom:        input.Custom,
		Definitions:   defs,
	})
}
