package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/queries"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/infrastructure/catalogfile"
	"github.com/felixgeelhaar/mcp-go"
)

const resourceListLimit = 100

// RegisterResources registers MCP resources that expose pipeline data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App

	listings := []struct {
		uri         string
		name        string
		description string
		query       queries.ListSubjectsQuery
	}{
		{"atelier://subjects", "Subjects", "All leads and projects, most recently updated first", queries.ListSubjectsQuery{}},
		{"atelier://subjects/delayed", "Delayed Subjects", "Active subjects whose current stage is past its expected date", queries.ListSubjectsQuery{DelayedOnly: true}},
		{"atelier://subjects/on-hold", "Subjects On Hold", "Subjects currently on hold", queries.ListSubjectsQuery{HoldStatus: []string{string(domain.HoldOnHold)}}},
		{"atelier://leads", "Leads", "All leads", queries.ListSubjectsQuery{Type: domain.SubjectTypeLead.String()}},
		{"atelier://projects", "Projects", "All projects with value and collection", queries.ListSubjectsQuery{Type: domain.SubjectTypeProject.String()}},
	}
	for _, l := range listings {
		query := l.query
		query.Limit = resourceListLimit
		srv.Resource(l.uri).
			Name(l.name).
			Description(l.description).
			MimeType("application/json").
			Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
				return listResource(ctx, app, uri, query)
			})
	}

	srv.Resource("atelier://catalog").
		Name("Stage Catalog").
		Description("Lead and project pipelines with milestones and the default payment template").
		MimeType("application/yaml").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.Catalog == nil {
				return nil, fmt.Errorf("stage catalog requires initialization")
			}
			data, err := catalogfile.Marshal(app.Catalog)
			if err != nil {
				return nil, err
			}
			return &mcp.ResourceContent{
				URI:      uri,
				MimeType: "application/yaml",
				Text:     string(data),
			}, nil
		})

	return nil
}

func listResource(ctx context.Context, app *cli.App, uri string, query queries.ListSubjectsQuery) (*mcp.ResourceContent, error) {
	if app == nil || app.ListSubjectsHandler == nil {
		return nil, fmt.Errorf("subject listing requires database connection")
	}

	items, err := app.ListSubjectsHandler.Handle(ctx, query)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, err
	}

	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
