package substage

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/spf13/cobra"
)

// Cmd is the sub-stage command group
var Cmd = &cobra.Command{
	Use:   "substage",
	Short: "Complete milestones and report progress",
	Long: `Tick binary milestones or report progress on percentage milestones.
When every group of the current stage is complete the subject advances on its own.`,
}

func init() {
	Cmd.AddCommand(completeCmd)
	Cmd.AddCommand(progressCmd)
}

func render(w io.Writer, result *commands.SubStageResult) error {
	if cli.JSONOutput() {
		return cli.PrintJSON(w, result)
	}
	switch {
	case result.SubStage.Advancement != nil:
		fmt.Fprintf(w, "Stage advanced %s -> %s\n", result.SubStage.Advancement.FromStage, result.SubStage.Advancement.ToStage)
	case result.SubStage.AdvancementBlocked:
		fmt.Fprintln(w, "All milestones are complete, but your role cannot move this stage")
	case result.SubStage.GroupCompleted:
		fmt.Fprintln(w, "Group complete")
	}
	return cli.RenderResult(w, result, result.Result)
}
