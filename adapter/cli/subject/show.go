package subject

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/queries"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a lead or project",
	Long: `Show the full state of a subject: stage, milestone groups, timeline and,
for projects, the payment schedule.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetSnapshotHandler == nil {
			return cli.ErrNotInitialized
		}
		id, err := cli.ParseSubjectID(args[0])
		if err != nil {
			return err
		}

		snap, err := app.GetSnapshotHandler.Handle(cmd.Context(), queries.GetSnapshotQuery{SubjectID: id})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(w, snap)
		}
		cli.RenderSnapshot(w, *snap)
		fmt.Fprintln(w)
		cli.RenderGroups(w, snap.Groups)

		if len(snap.Percentages) > 0 {
			keys := make([]string, 0, len(snap.Percentages))
			for k := range snap.Percentages {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				p := snap.Percentages[k]
				fmt.Fprintf(w, "  %s: %d%% (%s)\n", k, p.Percent, p.LastComment)
			}
		}

		fmt.Fprintln(w)
		cli.RenderTimeline(w, snap.Timeline)
		if snap.Schedule != nil {
			fmt.Fprintln(w)
			if snap.CustomSchedule {
				fmt.Fprintln(w, "Custom payment schedule")
			}
			cli.RenderFinancials(w, snap.Schedule, snap.Financials)
		}
		return nil
	},
}
