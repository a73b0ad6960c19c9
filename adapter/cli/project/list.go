package project

import (
	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/queries"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/spf13/cobra"
)

var (
	listStages   []string
	listStatus   []string
	listAssignee string
	listDelayed  bool
	listLimit    int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Long: `List projects, most recently updated first.

Examples:
  atelier project list
  atelier project list --delayed
  atelier project list --stage production --stage site_execution`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListSubjectsHandler == nil {
			return cli.ErrNotInitialized
		}

		query := queries.ListSubjectsQuery{
			Type:        domain.SubjectTypeProject.String(),
			Stages:      listStages,
			HoldStatus:  listStatus,
			DelayedOnly: listDelayed,
			Limit:       listLimit,
		}
		if listAssignee != "" {
			id, err := cli.ParseSubjectID(listAssignee)
			if err != nil {
				return err
			}
			query.AssigneeID = id
		}

		items, err := app.ListSubjectsHandler.Handle(cmd.Context(), query)
		if err != nil {
			return err
		}
		return cli.RenderSubjects(cmd.OutOrStdout(), items)
	},
}

func init() {
	listCmd.Flags().StringSliceVar(&listStages, "stage", nil, "filter by stage key (repeatable)")
	listCmd.Flags().StringSliceVar(&listStatus, "status", nil, "filter by hold status: active, hold, deactivated")
	listCmd.Flags().StringVar(&listAssignee, "assignee", "", "filter by owner")
	listCmd.Flags().BoolVar(&listDelayed, "delayed", false, "only projects with a delayed stage")
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "maximum rows")
}
