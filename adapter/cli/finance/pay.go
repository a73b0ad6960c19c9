package finance

import (
	"fmt"
	"strconv"
	"time"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/spf13/cobra"
)

var (
	payMode      string
	payDate      string
	payReference string
	deleteReason string
)

var payCmd = &cobra.Command{
	Use:   "pay [project-id] [amount]",
	Short: "Record a received payment",
	Long: `Record a payment in the project ledger. Payments are not tied to a milestone;
collection is matched against the schedule in order.

Examples:
  atelier finance pay 3b0d... 25000 --mode upi --ref UTR88120
  atelier finance pay 3b0d... 50000 --mode cheque --date 2026-10-01`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RecordPaymentHandler == nil {
			return cli.ErrNotInitialized
		}
		actor, err := app.Actor()
		if err != nil {
			return err
		}
		id, err := cli.ParseSubjectID(args[0])
		if err != nil {
			return err
		}
		amount, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[1], err)
		}
		mode, err := domain.ParsePaymentMode(payMode)
		if err != nil {
			return err
		}
		paidOn := time.Now().UTC().Truncate(24 * time.Hour)
		if payDate != "" {
			if paidOn, err = cli.ParseDate(payDate); err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		result, err := app.RecordPaymentHandler.Handle(ctx, commands.RecordPaymentCommand{
			Actor:         actor,
			CorrelationID: cli.CorrelationID(ctx),
			SubjectID:     id,
			Amount:        amount,
			Mode:          mode,
			PaidOn:        paidOn,
			Reference:     payReference,
		})
		if err != nil {
			return err
		}
		if !cli.JSONOutput() {
			fmt.Fprintf(cmd.OutOrStdout(), "Payment %s recorded\n", result.Payment.ID)
		}
		return cli.RenderResult(cmd.OutOrStdout(), result, result.Result)
	},
}

var deletePaymentCmd = &cobra.Command{
	Use:   "delete-payment [project-id] [payment-id]",
	Short: "Delete a ledger record (admin only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeletePaymentHandler == nil {
			return cli.ErrNotInitialized
		}
		actor, err := app.Actor()
		if err != nil {
			return err
		}
		id, err := cli.ParseSubjectID(args[0])
		if err != nil {
			return err
		}
		paymentID, err := cli.ParseSubjectID(args[1])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result, err := app.DeletePaymentHandler.Handle(ctx, commands.DeletePaymentCommand{
			Actor:         actor,
			CorrelationID: cli.CorrelationID(ctx),
			SubjectID:     id,
			PaymentID:     paymentID,
			Reason:        deleteReason,
		})
		if err != nil {
			return err
		}
		return cli.RenderResult(cmd.OutOrStdout(), result, result.Result)
	},
}

func init() {
	payCmd.Flags().StringVar(&payMode, "mode", "bank_transfer", "cash, bank_transfer, upi, cheque or card")
	payCmd.Flags().StringVar(&payDate, "date", "", "date received (YYYY-MM-DD, default today)")
	payCmd.Flags().StringVar(&payReference, "ref", "", "bank or cheque reference")
	deletePaymentCmd.Flags().StringVarP(&deleteReason, "reason", "r", "", "why the record is removed (required)")
}
