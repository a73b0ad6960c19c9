package mcp

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/mcp-go/middleware"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_RegistersLifecycleTools(t *testing.T) {
	srv, err := NewServer(&cli.App{}, nil)
	require.NoError(t, err)

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)

	var names []any
	for _, tool := range tools {
		names = append(names, tool["name"])
	}
	assert.Contains(t, names, "lifecycle.get")
	assert.Contains(t, names, "finance.record_payment")
}

func TestNewServer_RequiresApp(t *testing.T) {
	_, err := NewServer(nil, nil)
	require.Error(t, err)
}

func TestServe_RequiresConfig(t *testing.T) {
	err := Serve(context.Background(), nil, &cli.App{}, nil)
	require.Error(t, err)
}

func TestFieldsToArgs(t *testing.T) {
	args := fieldsToArgs([]middleware.Field{{Key: "tool", Value: "lifecycle.get"}, {Key: "ms", Value: 3}})
	assert.Equal(t, []any{"tool", "lifecycle.get", "ms", 3}, args)
}
