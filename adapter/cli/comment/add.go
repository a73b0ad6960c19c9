package comment

import (
	"strings"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [subject-id] [text...]",
	Short: "Add a user comment",
	Long: `Examples:
  atelier comment add 3b0d... client prefers walnut finish`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.AddCommentHandler == nil {
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
		result, err := app.AddCommentHandler.Handle(ctx, commands.AddCommentCommand{
			Actor:         actor,
			CorrelationID: cli.CorrelationID(ctx),
			SubjectID:     id,
			Body:          strings.Join(args[1:], " "),
		})
		if err != nil {
			return err
		}
		return cli.RenderResult(cmd.OutOrStdout(), result, *result)
	},
}
