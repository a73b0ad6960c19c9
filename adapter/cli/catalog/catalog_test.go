package catalog

import (
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/adapter/cli/clitest"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/infrastructure/catalogfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowCmd(t *testing.T) {
	cli.SetApp(&cli.App{Catalog: domain.DefaultStageCatalog()})
	t.Cleanup(func() { cli.SetApp(nil) })

	out, err := clitest.Run(t, showCmd, "project")
	require.NoError(t, err)
	assert.Contains(t, out, "site_measurement")
	assert.Contains(t, out, "renders_progress (percentage)")

	out, err = clitest.Run(t, showCmd, "lead")
	require.NoError(t, err)
	assert.Contains(t, out, "floor_plan_creation")

	_, err = clitest.Run(t, showCmd, "client")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExportCmd_RoundTrips(t *testing.T) {
	clitest.NewLocalApp(t)

	exportOutput = ""
	out, err := clitest.Run(t, exportCmd)
	require.NoError(t, err)
	parsed, err := catalogfile.Parse([]byte(out))
	require.NoError(t, err)
	project, err := parsed.For(domain.SubjectTypeProject)
	require.NoError(t, err)
	assert.Equal(t, 8, project.Len())

	exportOutput = filepath.Join(t.TempDir(), "catalog.yaml")
	t.Cleanup(func() { exportOutput = "" })
	out, err = clitest.Run(t, exportCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Catalog written to")

	loaded, err := catalogfile.Load(exportOutput)
	require.NoError(t, err)
	assert.Len(t, loaded.PaymentTemplate(), 4)
}

func TestCatalogNotLoaded(t *testing.T) {
	cli.SetApp(nil)
	_, err := clitest.Run(t, exportCmd)
	require.Error(t, err)
}
