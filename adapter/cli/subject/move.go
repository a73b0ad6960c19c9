package subject

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move [id] [stage]",
	Short: "Move a subject to another stage",
	Long: `Move a subject forward (skipping stages is allowed) or roll it back.
Rollbacks require the admin role.

Examples:
  atelier subject move 3b0d... design
  atelier subject move 3b0d... kickoff --actor-role admin`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.TransitionStageHandler == nil {
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
		result, err := app.TransitionStageHandler.Handle(ctx, commands.TransitionStageCommand{
			Actor:         actor,
			CorrelationID: cli.CorrelationID(ctx),
			SubjectID:     id,
			Stage:         args[1],
		})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(w, result)
		}
		t := result.Transition
		switch {
		case t.Rollback:
			fmt.Fprintf(w, "Rolled back %s -> %s\n", t.FromStage, t.ToStage)
		case len(t.SkippedStages) > 0:
			fmt.Fprintf(w, "Moved %s -> %s (skipped %s)\n", t.FromStage, t.ToStage, strings.Join(t.SkippedStages, ", "))
		default:
			fmt.Fprintf(w, "Moved %s -> %s\n", t.FromStage, t.ToStage)
		}
		return cli.RenderResult(w, result, result.Result)
	},
}
