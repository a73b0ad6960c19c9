package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common pipeline workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	// Pipeline review prompt
	srv.Prompt("pipeline_review").
		Description("Review the whole pipeline: delayed stages, subjects on hold and projects with pending balances.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Pipeline Review", `Let's review the studio pipeline. Please:

1. Read delayed subjects from the atelier://subjects/delayed resource
2. Read subjects on hold from atelier://subjects/on-hold
3. Read all projects from atelier://projects

Then summarize:

**Delays:**
- Which stages are past their expected date, and by how long?
- Which milestones are still open in those stages? Use lifecycle.get for details.

**Holds:**
- Which subjects have been on hold the longest? Check lifecycle.comments for the reason.
- Should any be reactivated or deactivated?

**Collections:**
- Which projects have the largest pending balance? Use finance.get for the milestone breakdown.
- Flag schedules whose total differs from the project value.

Finish with a short list of follow-ups, each naming the subject and the tool that would action it.`), nil
		})

	// Project status prompt
	srv.Prompt("project_status").
		Description("Write a client-ready status update for one project.").
		Argument("subject_id", "Project id", true).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			id := args["subject_id"]
			if id == "" {
				id = "[project id]"
			}
			return userPrompt("Project Status Update", fmt.Sprintf(`Prepare a status update for project %s.

1. Load the snapshot with lifecycle.get
2. Load the stage timeline with lifecycle.timeline
3. Load payments with finance.get
4. Skim recent activity with lifecycle.comments (kind "user")

Write the update in plain language for the client:
- Current stage and what has been completed within it
- Planned dates for the next stages, noting any delay honestly
- Amount collected, the next milestone payment and when it falls due
- Anything we need from the client

Keep internal notes and system comments out of the update.`, id)), nil
		})

	// Lead follow-up prompt
	srv.Prompt("lead_followup").
		Description("Plan follow-ups for open leads assigned to a presales owner.").
		Argument("assignee_id", "Presales owner id (optional)", false).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			scope := "all open leads"
			if assignee := args["assignee_id"]; assignee != "" {
				scope = fmt.Sprintf("leads assigned to %s", assignee)
			}
			return userPrompt("Lead Follow-up", fmt.Sprintf(`Help me follow up on %s.

1. List leads with lifecycle.list (type "lead", hold_status ["active"])
2. For each lead, read its latest comments with lifecycle.comments

For every lead suggest:
- The next action to move it to its next stage
- A date to plan with lifecycle.plan if the stage has none
- Whether it should be put on hold with lifecycle.hold

Do not change anything until I confirm.`, scope)), nil
		})

	return nil
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
