package lead

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
	listLimit    int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads",
	Long: `List leads, most recently updated first.

Examples:
  atelier lead list
  atelier lead list --stage quotation_shared
  atelier lead list --status hold --status deactivated`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListSubjectsHandler == nil {
			return cli.ErrNotInitialized
		}

		query := queries.ListSubjectsQuery{
			Type:       domain.SubjectTypeLead.String(),
			Stages:     listStages,
			HoldStatus: listStatus,
			Limit:      listLimit,
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
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "maximum rows")
}
