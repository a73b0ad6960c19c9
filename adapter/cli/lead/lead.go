package lead

import (
	"github.com/spf13/cobra"
)

// Cmd is the lead command group
var Cmd = &cobra.Command{
	Use:   "lead",
	Short: "Manage leads",
	Long:  `Create and list sales leads. Stage moves, milestones and comments live under "atelier subject".`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
}
