package project

import (
	"fmt"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	createValue    int64
	createAssignee string
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new project",
	Long: `Create a project at kickoff with its contract value.

Examples:
  atelier project create "Mehta residence" --value 500000
  atelier project create "Sharma villa" --value 1200000 --assignee 6f1c...`,
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
			Type:          domain.SubjectTypeProject,
			Title:         args[0],
			AssigneeID:    assignee,
			ProjectValue:  createValue,
		})
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		return cli.RenderResult(cmd.OutOrStdout(), result, result)
	},
}

func init() {
	createCmd.Flags().Int64Var(&createValue, "value", 0, "contract value in whole currency units")
	createCmd.Flags().StringVar(&createAssignee, "assignee", "", "designer owner (user id)")
}
