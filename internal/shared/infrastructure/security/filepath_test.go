package security

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	t.Run("rejects empty path", func(t *testing.T) {
		_, err := CleanPath("  ")
		assert.Error(t, err)
	})

	t.Run("rejects shell metacharacters", func(t *testing.T) {
		for _, c := range forbidden {
			_, err := CleanPath("/tmp/catalog" + c + ".yaml")
			assert.Error(t, err, "expected error for %q", c)
		}
	})

	t.Run("makes relative paths absolute", func(t *testing.T) {
		result, err := CleanPath("catalog.yaml")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(result))
	})

	t.Run("resolves symlinks", func(t *testing.T) {
		dir := t.TempDir()
		real := filepath.Join(dir, "real.yaml")
		require.NoError(t, os.WriteFile(real, []byte("lead: []"), 0o644))
		link := filepath.Join(dir, "link.yaml")
		require.NoError(t, os.Symlink(real, link))

		result, err := CleanPath(link)
		require.NoError(t, err)
		expected, _ := filepath.EvalSymlinks(real)
		assert.Equal(t, expected, result)
	})
}

func TestReadDocument(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads a file", func(t *testing.T) {
		path := filepath.Join(dir, "schedule.yaml")
		require.NoError(t, os.WriteFile(path, []byte("- label: Advance\n"), 0o644))

		data, err := ReadDocument(path)
		require.NoError(t, err)
		assert.Equal(t, "- label: Advance\n", string(data))
	})

	t.Run("rejects directories", func(t *testing.T) {
		_, err := ReadDocument(dir)
		assert.Error(t, err)
	})

	t.Run("rejects oversized files", func(t *testing.T) {
		path := filepath.Join(dir, "big.yaml")
		require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", MaxDocumentSize+1)), 0o644))

		_, err := ReadDocument(path)
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadDocument(filepath.Join(dir, "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestWriteDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, WriteDocument(path, []byte("lead: []\n")))

	data, err := ReadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "lead: []\n", string(data))

	assert.Error(t, WriteDocument("out|tee.yaml", nil))
}
