package subject

import (
	"errors"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/spf13/cobra"
)

var planClear bool

var planCmd = &cobra.Command{
	Use:   "plan [id] [stage] [YYYY-MM-DD]",
	Short: "Plan or clear a stage's expected date",
	Long: `Set the expected completion date of a stage, or clear it with --clear.

Examples:
  atelier subject plan 3b0d... design 2026-11-20
  atelier subject plan 3b0d... design --clear`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SetExpectedDateHandler == nil {
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

		planned := commands.SetExpectedDateCommand{
			Actor:     actor,
			SubjectID: id,
			Stage:     args[1],
		}
		switch {
		case planClear && len(args) == 3:
			return errors.New("pass either a date or --clear")
		case !planClear && len(args) == 2:
			return errors.New("a date is required unless --clear is set")
		case !planClear:
			d, err := cli.ParseDate(args[2])
			if err != nil {
				return err
			}
			planned.ExpectedDate = &d
		}

		ctx := cmd.Context()
		planned.CorrelationID = cli.CorrelationID(ctx)
		result, err := app.SetExpectedDateHandler.Handle(ctx, planned)
		if err != nil {
			return err
		}
		return cli.RenderResult(cmd.OutOrStdout(), result, *result)
	},
}

func init() {
	planCmd.Flags().BoolVar(&planClear, "clear", false, "remove the planned date")
}
