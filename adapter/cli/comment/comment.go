package comment

import (
	"github.com/spf13/cobra"
)

// Cmd is the comment command group
var Cmd = &cobra.Command{
	Use:   "comment",
	Short: "Read and write the audit feed",
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
}
