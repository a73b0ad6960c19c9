package finance

import (
	"fmt"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/queries"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [project-id]",
	Short: "Show schedule, collections and the payment ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetFinancialsHandler == nil {
			return cli.ErrNotInitialized
		}
		id, err := cli.ParseSubjectID(args[0])
		if err != nil {
			return err
		}

		dto, err := app.GetFinancialsHandler.Handle(cmd.Context(), queries.GetFinancialsQuery{SubjectID: id})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(w, dto)
		}
		kind := "default"
		if dto.CustomSchedule {
			kind = "custom"
		}
		fmt.Fprintf(w, "Project value %s, %s schedule\n", cli.FormatAmount(dto.Summary.ProjectValue), kind)
		cli.RenderFinancials(w, &dto.Schedule, &dto.Summary)

		if len(dto.Payments) == 0 {
			fmt.Fprintln(w, "No payments recorded.")
			return nil
		}
		fmt.Fprintln(w)
		tw := cli.NewTable(w)
		tw.AppendHeader(table.Row{"Payment", "Paid on", "Mode", "Amount", "Reference"})
		for _, p := range dto.Payments {
			tw.AppendRow(table.Row{p.ID, p.PaidOn.Format("2006-01-02"), p.Mode, cli.FormatAmount(p.Amount), p.Reference})
		}
		tw.Render()
		return nil
	},
}
