package substage

import (
	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete [subject-id] [sub-stage-id]",
	Short: "Mark a binary milestone complete",
	Long: `Examples:
  atelier substage complete 3b0d... booking_amount_received`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CompleteSubStageHandler == nil {
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

		ctx := cmd.Context()
		result, err := app.CompleteSubStageHandler.Handle(ctx, commands.CompleteSubStageCommand{
			Actor:         actor,
			CorrelationID: cli.CorrelationID(ctx),
			SubjectID:     id,
			SubStageID:    args[1],
		})
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), result)
	},
}
