package subject

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/queries"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var timelineHistory bool

var timelineCmd = &cobra.Command{
	Use:   "timeline [id]",
	Short: "Show the stage timeline",
	Long: `Show one row per stage with its projected status. Stages past their
expected date without a completion are reported as delayed.

Examples:
  atelier subject timeline 3b0d...
  atelier subject timeline 3b0d... --history`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetTimelineHandler == nil {
			return cli.ErrNotInitialized
		}
		id, err := cli.ParseSubjectID(args[0])
		if err != nil {
			return err
		}

		dto, err := app.GetTimelineHandler.Handle(cmd.Context(), queries.GetTimelineQuery{
			SubjectID:   id,
			WithHistory: timelineHistory,
		})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(w, dto)
		}
		cli.RenderTimeline(w, dto.Entries)
		if len(dto.Delayed) > 0 {
			fmt.Fprintf(w, "Delayed: %s\n", strings.Join(dto.Delayed, ", "))
		}
		if timelineHistory && len(dto.History) > 0 {
			fmt.Fprintln(w)
			tw := cli.NewTable(w)
			tw.AppendHeader(table.Row{"Recorded", "Stage", "Kind", "Status", "Actor"})
			for _, h := range dto.History {
				tw.AppendRow(table.Row{h.RecordedAt.Format("2006-01-02 15:04"), h.Title, h.Kind, h.Status, h.ActorID})
			}
			tw.Render()
		}
		return nil
	},
}

func init() {
	timelineCmd.Flags().BoolVar(&timelineHistory, "history", false, "include the raw transition history")
}
