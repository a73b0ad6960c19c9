package comment

import (
	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/queries"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	listLimit int
	listKind  string
)

var listCmd = &cobra.Command{
	Use:   "list [subject-id]",
	Short: "List a subject's audit feed",
	Long: `List comments oldest first. System comments record every engine change.

Examples:
  atelier comment list 3b0d...
  atelier comment list 3b0d... --kind user --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListAuditFeedHandler == nil {
			return cli.ErrNotInitialized
		}
		id, err := cli.ParseSubjectID(args[0])
		if err != nil {
			return err
		}

		comments, err := app.ListAuditFeedHandler.Handle(cmd.Context(), queries.ListAuditFeedQuery{
			SubjectID: id,
			Limit:     listLimit,
			Kind:      domain.CommentKind(listKind),
		})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(w, comments)
		}
		tw := cli.NewTable(w)
		tw.AppendHeader(table.Row{"When", "Kind", "Author", "Comment"})
		for _, c := range comments {
			tw.AppendRow(table.Row{c.CreatedAt.Format("2006-01-02 15:04"), c.Kind, c.AuthorRole, c.Body})
		}
		tw.Render()
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum comments (0 for all)")
	listCmd.Flags().StringVar(&listKind, "kind", "", "filter by kind: system, user")
}
