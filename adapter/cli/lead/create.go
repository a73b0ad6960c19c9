package lead

import (
	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var createAssignee string

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new lead",
	Long: `Create a lead at the first stage of the lead pipeline.

Examples:
  atelier lead create "Mehta residence, 3BHK"
  atelier lead create "Sharma villa" --assignee 6f1c...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateSubjectHandler == nil {
			return cli.ErrNotInitialized
		}
		actor, err := app.Actor()
		if err != nil {
			return err
		}

		var assignee uuid.UUID
		if createAssignee != "" {
			if assignee, err = cli.ParseSubjectID(createAssignee); err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		result, err := app.CreateSubjectHandler.Handle(ctx, commands.CreateSubjectCommand{
			Actor:         actor,
			CorrelationID: cli.CorrelationID(ctx),
			Type:          domain.SubjectTypeLead,
			Title:         args[0],
			AssigneeID:    assignee,
		})
		if err != nil {
			return err
		}
		return cli.RenderResult(cmd.OutOrStdout(), result, result)
	},
}

func init() {
	createCmd.Flags().StringVar(&createAssignee, "assignee", "", "presales owner (user id)")
}
