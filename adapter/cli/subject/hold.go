package subject

import (
	"fmt"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/spf13/cobra"
)

var holdReason string

var holdCmd = &cobra.Command{
	Use:   "hold [id] [active|hold|deactivated]",
	Short: "Change the hold status",
	Long: `Pause, deactivate or resume a subject. A reason is always required.
Only an admin can reactivate a deactivated subject.

Examples:
  atelier subject hold 3b0d... hold -r "client travelling"
  atelier subject hold 3b0d... active -r "client back"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ChangeHoldStatusHandler == nil {
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
		status, err := domain.ParseHoldStatus(args[1])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result, err := app.ChangeHoldStatusHandler.Handle(ctx, commands.ChangeHoldStatusCommand{
			Actor:         actor,
			CorrelationID: cli.CorrelationID(ctx),
			SubjectID:     id,
			Status:        status,
			Reason:        holdReason,
		})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if !cli.JSONOutput() {
			fmt.Fprintf(w, "Status %s -> %s\n", result.Change.From, result.Change.To)
		}
		return cli.RenderResult(w, result, result.Result)
	},
}

func init() {
	holdCmd.Flags().StringVarP(&holdReason, "reason", "r", "", "why the status changes (required)")
}
