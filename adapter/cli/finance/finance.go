package finance

import (
	"github.com/spf13/cobra"
)

// Cmd is the finance command group
var Cmd = &cobra.Command{
	Use:   "finance",
	Short: "Project payments and schedules",
	Long:  `Record and delete payments, inspect collection against the payment schedule and switch between the default and a custom schedule.`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(payCmd)
	Cmd.AddCommand(deletePaymentCmd)
	Cmd.AddCommand(scheduleCmd)
}
