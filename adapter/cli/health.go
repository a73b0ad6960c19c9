package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/felixgeelhaar/atelier/pkg/observability"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database, lock and broker connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Health == nil {
			return fmt.Errorf("app not initialized")
		}
		report := app.Health.GetOverallHealth(cmd.Context())

		w := cmd.OutOrStdout()
		if JSONOutput() {
			if err := PrintJSON(w, report); err != nil {
				return err
			}
		} else {
			names := make([]string, 0, len(report.Checks))
			for name := range report.Checks {
				names = append(names, name)
			}
			sort.Strings(names)
			tw := NewTable(w)
			tw.AppendHeader(table.Row{"Component", "Status", "Latency", "Message"})
			for _, name := range names {
				r := report.Checks[name]
				tw.AppendRow(table.Row{name, r.Status, r.Duration.Round(time.Microsecond), r.Message})
			}
			tw.Render()
			fmt.Fprintf(w, "overall: %s\n", report.Status)
		}
		if report.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("unhealthy")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
