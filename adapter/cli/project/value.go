package project

import (
	"fmt"
	"strconv"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/spf13/cobra"
)

var valueCmd = &cobra.Command{
	Use:   "value [project-id] [amount]",
	Short: "Change the contract value",
	Long: `Change a project's contract value. Percentage and remaining milestones
are recomputed; recorded payments are untouched.

Examples:
  atelier project value 3b0d... 650000`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateProjectValueHandler == nil {
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
		value, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[1], err)
		}

		ctx := cmd.Context()
		result, err := app.UpdateProjectValueHandler.Handle(ctx, commands.UpdateProjectValueCommand{
			Actor:         actor,
			CorrelationID: cli.CorrelationID(ctx),
			SubjectID:     id,
			Value:         value,
		})
		if err != nil {
			return err
		}
		return cli.RenderResult(cmd.OutOrStdout(), result, *result)
	},
}
