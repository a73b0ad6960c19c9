package substage

import (
	"fmt"
	"strconv"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/spf13/cobra"
)

var progressComment string

var progressCmd = &cobra.Command{
	Use:   "progress [subject-id] [sub-stage-id] [percent]",
	Short: "Set progress on a percentage milestone",
	Long: `Overwrite the progress of a percentage milestone. A comment is required.
At 100 the milestone completes.

Examples:
  atelier substage progress 3b0d... renders_progress 60 -m "living and kitchen done"`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdatePercentageHandler == nil {
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
		percent, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid percent %q: %w", args[2], err)
		}

		ctx := cmd.Context()
		result, err := app.UpdatePercentageHandler.Handle(ctx, commands.UpdatePercentageCommand{
			Actor:         actor,
			CorrelationID: cli.CorrelationID(ctx),
			SubjectID:     id,
			SubStageID:    args[1],
			Percent:       percent,
			Comment:       progressComment,
		})
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), result)
	},
}

func init() {
	progressCmd.Flags().StringVarP(&progressComment, "message", "m", "", "progress note (required)")
}
