package finance

import (
	"fmt"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/infrastructure/catalogfile"
	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/security"
	"github.com/spf13/cobra"
)

var scheduleFile string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Switch a project's payment schedule",
}

var scheduleCustomCmd = &cobra.Command{
	Use:   "custom [project-id]",
	Short: "Apply a custom payment schedule",
	Long: `Apply a custom schedule read from a YAML list of entries. Without --file the
project's previously stored custom schedule is re-enabled.

  - label: Advance
    stage: kickoff
    type: fixed
    fixed_amount: 50000
  - label: Design
    stage: design
    type: percentage
    percentage: "20"
  - label: Balance
    type: remaining`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var defs []domain.ScheduleDefinition
		if scheduleFile != "" {
			data, err := security.ReadDocument(scheduleFile)
			if err != nil {
				return fmt.Errorf("read schedule: %w", err)
			}
			if defs, err = catalogfile.ParseSchedule(data); err != nil {
				return err
			}
		}
		return configure(cmd, args[0], true, defs)
	},
}

var scheduleDefaultCmd = &cobra.Command{
	Use:   "default [project-id]",
	Short: "Return to the default payment schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configure(cmd, args[0], false, nil)
	},
}

func configure(cmd *cobra.Command, rawID string, custom bool, defs []domain.ScheduleDefinition) error {
	app := cli.GetApp()
	if app == nil || app.ConfigureScheduleHandler == nil {
		return cli.ErrNotInitialized
	}
	actor, err := app.Actor()
	if err != nil {
		return err
	}
	id, err := cli.ParseSubjectID(rawID)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	result, err := app.ConfigureScheduleHandler.Handle(ctx, commands.ConfigureScheduleCommand{
		Actor:         actor,
		CorrelationID: cli.CorrelationID(ctx),
		SubjectID:     id,
		Custom:        custom,
		Definitions:   defs,
	})
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if cli.JSONOutput() {
		return cli.PrintJSON(w, result)
	}
	cli.RenderFinancials(w, result.Snapshot.Schedule, result.Snapshot.Financials)
	return nil
}

func init() {
	scheduleCustomCmd.Flags().StringVarP(&scheduleFile, "file", "f", "", "YAML schedule file")
	scheduleCmd.AddCommand(scheduleCustomCmd)
	scheduleCmd.AddCommand(scheduleDefaultCmd)
}
