package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/queries"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/viper"
)

// JSONOutput reports whether --json (or ATELIER_JSON) is set.
func JSONOutput() bool {
	return viper.GetBool("json")
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewTable returns a table writer mirrored to w.
func NewTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	return tw
}

// FormatAmount renders a whole-unit amount with thousands separators.
func FormatAmount(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatDate renders an optional date as YYYY-MM-DD or "-".
func FormatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateOnly)
}

// ParseDate parses a YYYY-MM-DD flag value.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", raw, err)
	}
	return t, nil
}

// ParseSubjectID parses a subject or payment id argument.
func ParseSubjectID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}

// RenderResult prints a mutation result: the snapshot header followed by
// the comments the change appended to the audit feed.
func RenderResult(w io.Writer, result any, r commands.Result) error {
	if JSONOutput() {
		return PrintJSON(w, result)
	}
	RenderSnapshot(w, r.Snapshot)
	if len(r.Comments) > 0 {
		fmt.Fprintln(w)
		for _, c := range r.Comments {
			fmt.Fprintf(w, "  • %s\n", c.Body)
		}
	}
	return nil
}

// RenderSnapshot prints the header block of a subject.
func RenderSnapshot(w io.Writer, s domain.Snapshot) {
	fmt.Fprintf(w, "%s %s\n", strings.ToUpper(s.Type.String()), s.ID)
	fmt.Fprintf(w, "  title:   %s\n", s.Title)
	fmt.Fprintf(w, "  stage:   %s (%d/%d)\n", s.Stage, s.StageIndex+1, len(s.Timeline))
	fmt.Fprintf(w, "  status:  %s\n", s.HoldStatus)
	if s.AssigneeID != uuid.Nil {
		fmt.Fprintf(w, "  owner:   %s\n", s.AssigneeID)
	}
	if s.Financials != nil {
		fmt.Fprintf(w, "  value:   %s\n", FormatAmount(s.Financials.ProjectValue))
		fmt.Fprintf(w, "  paid:    %s\n", FormatAmount(s.Financials.TotalCollected))
		fmt.Fprintf(w, "  balance: %s\n", FormatAmount(s.Financials.BalancePending))
	}
}

// RenderTimeline prints one row per stage.
func RenderTimeline(w io.Writer, entries []domain.TimelineEntry) {
	tw := NewTable(w)
	tw.AppendHeader(table.Row{"#", "Stage", "Status", "Expected", "Completed"})
	for i, e := range entries {
		tw.AppendRow(table.Row{i + 1, e.Title, e.Status, FormatDate(e.ExpectedDate), FormatDate(e.CompletedDate)})
	}
	tw.Render()
}

// RenderGroups prints milestone group progress.
func RenderGroups(w io.Writer, groups []domain.GroupProgress) {
	if len(groups) == 0 {
		return
	}
	tw := NewTable(w)
	tw.AppendHeader(table.Row{"Stage", "Group", "Done", "Complete"})
	for _, g := range groups {
		done := "no"
		if g.Complete {
			done = "yes"
		}
		tw.AppendRow(table.Row{g.StageKey, g.Name, fmt.Sprintf("%d/%d", g.Satisfied, g.Total), done})
	}
	tw.Render()
}

// RenderFinancials prints the schedule with per-milestone collection.
func RenderFinancials(w io.Writer, schedule *domain.ResolvedSchedule, summary *domain.FinancialSummary) {
	if schedule == nil || summary == nil {
		return
	}
	tw := NewTable(w)
	tw.AppendHeader(table.Row{"Milestone", "Stage", "Type", "Amount", "Collected", "Pending"})
	for i, e := range schedule.Entries {
		var collected, pending int64
		if i < len(summary.Milestones) {
			collected = summary.Milestones[i].Collected
			pending = summary.Milestones[i].Pending
		}
		stage := e.StageKey
		if stage == "" {
			stage = "-"
		}
		tw.AppendRow(table.Row{e.Label, stage, e.Type, FormatAmount(e.Amount), FormatAmount(collected), FormatAmount(pending)})
	}
	tw.AppendFooter(table.Row{"Total", "", "", FormatAmount(schedule.Total), FormatAmount(summary.TotalCollected), FormatAmount(summary.BalancePending)})
	tw.Render()
	if schedule.Mismatch {
		fmt.Fprintf(w, "warning: schedule differs from project value by %s\n", FormatAmount(schedule.Difference))
	}
	if summary.Overpaid {
		fmt.Fprintln(w, "warning: collected exceeds project value")
	}
}

// RenderSubjects prints a subject listing.
func RenderSubjects(w io.Writer, items []queries.SubjectListItemDTO) error {
	if JSONOutput() {
		return PrintJSON(w, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(w, "No subjects found.")
		return nil
	}
	tw := NewTable(w)
	tw.AppendHeader(table.Row{"ID", "Title", "Stage", "Progress", "Status", "Value", "Updated"})
	for _, it := range items {
		stage := it.StageName
		if it.Delayed {
			stage += " (delayed)"
		}
		value := "-"
		if it.Type == domain.SubjectTypeProject {
			value = FormatAmount(it.ProjectValue)
		}
		tw.AppendRow(table.Row{
			it.ID,
			it.Title,
			stage,
			fmt.Sprintf("%d/%d", it.StageIndex+1, it.StageCount),
			it.HoldStatus,
			value,
			it.UpdatedAt.Format(time.DateOnly),
		})
	}
	tw.Render()
	return nil
}
