package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/infrastructure/catalogfile"
	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/security"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var exportOutput string

// Cmd is the catalog command group
var Cmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the stage catalog in use",
}

var showCmd = &cobra.Command{
	Use:   "show [lead|project]",
	Short: "Show the stages and milestones of a pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Catalog == nil {
			return errors.New("stage catalog not loaded")
		}
		subjectType, err := domain.ParseSubjectType(args[0])
		if err != nil {
			return err
		}
		stages, err := app.Catalog.StagesFor(subjectType)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(w, stages)
		}
		tw := cli.NewTable(w)
		tw.AppendHeader(table.Row{"#", "Key", "Stage", "Days", "Milestones"})
		for i, s := range stages {
			var groups []string
			for _, g := range s.Groups {
				ids := make([]string, 0, len(g.SubStages))
				for _, ss := range g.SubStages {
					ids = append(ids, fmt.Sprintf("%s (%s)", ss.ID, ss.Kind))
				}
				groups = append(groups, g.Name+": "+strings.Join(ids, ", "))
			}
			days := "-"
			if s.ExpectedDays > 0 {
				days = fmt.Sprint(s.ExpectedDays)
			}
			tw.AppendRow(table.Row{i + 1, s.Key, s.Name, days, strings.Join(groups, "\n")})
		}
		tw.Render()
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the catalog as YAML",
	Long: `Write the catalog in the format read by ATELIER_CATALOG_FILE. Use it as a
starting point for a studio specific pipeline.

Examples:
  atelier catalog export > catalog.yaml
  atelier catalog export -o catalog.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Catalog == nil {
			return errors.New("stage catalog not loaded")
		}
		data, err := catalogfile.Marshal(app.Catalog)
		if err != nil {
			return err
		}
		if exportOutput == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := security.WriteDocument(exportOutput, data); err != nil {
			return fmt.Errorf("write catalog: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Catalog written to %s\n", exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "file to write instead of stdout")
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(exportCmd)
}
