package subject

import (
	"github.com/spf13/cobra"
)

// Cmd is the subject command group. Every command here works for leads and
// projects alike.
var Cmd = &cobra.Command{
	Use:     "subject",
	Aliases: []string{"s"},
	Short:   "Inspect and move leads and projects",
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(moveCmd)
	Cmd.AddCommand(holdCmd)
	Cmd.AddCommand(planCmd)
	Cmd.AddCommand(timelineCmd)
}
